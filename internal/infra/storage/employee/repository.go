package employee

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/vkotlyarr/VF-BookingEngine/internal/domain"
	"github.com/vkotlyarr/VF-BookingEngine/pkg/dbmetrics"
	"github.com/vkotlyarr/VF-BookingEngine/pkg/psqlbuilder"
)

// Repository репозиторий для работы с сотрудниками и их компетенциями
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория сотрудников
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetByID получает сотрудника по ID вместе с набором услуг
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Employee, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"e.id",
		"e.tenant_id",
		"e.name",
		"e.is_active",
		"e.created_at",
		"e.updated_at",
		"COALESCE(ARRAY_AGG(es.service_id) FILTER (WHERE es.service_id IS NOT NULL), '{}') AS service_ids",
	).
		From("employees e").
		LeftJoin("employee_services es ON es.employee_id = e.id").
		Where(squirrel.Eq{"e.id": id}).
		GroupBy("e.id").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	e, err := scanEmployeeRow(executor.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrEmployeeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan employee: %v", ErrScanRow, err)
	}

	return e, nil
}

// ListCapable получает активных сотрудников тенанта, способных оказать услугу
// Используется резолвером назначения как стартовый набор кандидатов
func (r *Repository) ListCapable(ctx context.Context, tenantID, serviceID int64) ([]*domain.Employee, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"e.id",
		"e.tenant_id",
		"e.name",
		"e.is_active",
		"e.created_at",
		"e.updated_at",
		"COALESCE(ARRAY_AGG(es2.service_id) FILTER (WHERE es2.service_id IS NOT NULL), '{}') AS service_ids",
	).
		From("employees e").
		Join("employee_services es ON es.employee_id = e.id").
		LeftJoin("employee_services es2 ON es2.employee_id = e.id").
		Where(squirrel.Eq{"e.tenant_id": tenantID}).
		Where(squirrel.Eq{"e.is_active": true}).
		Where(squirrel.Eq{"es.service_id": serviceID}).
		GroupBy("e.id").
		OrderBy("e.id ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: ListCapable - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListCapable - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	employees := make([]*domain.Employee, 0)
	for rows.Next() {
		e, err := scanEmployeeRow(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: ListCapable - scan row: %v", ErrScanRow, err)
		}
		employees = append(employees, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListCapable - rows error: %v", ErrScanRow, err)
	}

	return employees, nil
}

// rowScanner общий интерфейс *sql.Row и *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanEmployeeRow(row rowScanner) (*domain.Employee, error) {
	var e domain.Employee
	var createdAt, updatedAt sql.NullTime
	var serviceIDs pq.Int64Array

	err := row.Scan(
		&e.ID,
		&e.TenantID,
		&e.Name,
		&e.IsActive,
		&createdAt,
		&updatedAt,
		&serviceIDs,
	)
	if err != nil {
		return nil, err
	}

	e.ServiceIDs = []int64(serviceIDs)
	e.CreatedAt = createdAt.Time
	e.UpdatedAt = updatedAt.Time
	return &e, nil
}
