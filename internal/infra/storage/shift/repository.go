package shift

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/vkotlyarr/VF-BookingEngine/internal/domain"
	"github.com/vkotlyarr/VF-BookingEngine/pkg/dbmetrics"
	"github.com/vkotlyarr/VF-BookingEngine/pkg/psqlbuilder"
)

var shiftColumns = []string{
	"id",
	"tenant_id",
	"service_id",
	"employee_id",
	"weekdays",
	"start_time",
	"end_time",
	"slot_duration_minutes",
	"slot_capacity",
	"created_at",
	"updated_at",
}

// Repository репозиторий для чтения смен (ShiftIndex)
// Смены создаются конфигурацией тенанта на внешней платформе,
// здесь они read-mostly вход для назначения и генерации слотов
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория смен
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetByID получает смену по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Shift, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(shiftColumns...).
		From("shifts").
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	s, err := scanShiftRow(executor.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrShiftNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan shift: %v", ErrScanRow, err)
	}

	return s, nil
}

// ListByEmployees получает смены набора сотрудников
// Используется резолвером для проверки покрытия окна слота
func (r *Repository) ListByEmployees(ctx context.Context, employeeIDs []int64) ([]*domain.Shift, error) {
	if len(employeeIDs) == 0 {
		return []*domain.Shift{}, nil
	}
	return r.list(ctx, squirrel.Eq{"employee_id": employeeIDs})
}

// ListByService получает смены услуги (service_based режим)
func (r *Repository) ListByService(ctx context.Context, tenantID, serviceID int64) ([]*domain.Shift, error) {
	return r.list(ctx, squirrel.And{
		squirrel.Eq{"tenant_id": tenantID},
		squirrel.Eq{"service_id": serviceID},
	})
}

func (r *Repository) list(ctx context.Context, where squirrel.Sqlizer) ([]*domain.Shift, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(shiftColumns...).
		From("shifts").
		Where(where).
		OrderBy("id ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: list - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: list - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	shifts := make([]*domain.Shift, 0)
	for rows.Next() {
		s, err := scanShiftRow(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: list - scan row: %v", ErrScanRow, err)
		}
		shifts = append(shifts, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list - rows error: %v", ErrScanRow, err)
	}

	return shifts, nil
}

// rowScanner общий интерфейс *sql.Row и *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanShiftRow(row rowScanner) (*domain.Shift, error) {
	var s domain.Shift
	var weekdays int16
	var createdAt, updatedAt sql.NullTime

	err := row.Scan(
		&s.ID,
		&s.TenantID,
		&s.ServiceID,
		&s.EmployeeID,
		&weekdays,
		&s.StartTime,
		&s.EndTime,
		&s.SlotDurationMinutes,
		&s.SlotCapacity,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	s.Weekdays = domain.WeekdaySet(weekdays)
	s.CreatedAt = createdAt.Time
	s.UpdatedAt = updatedAt.Time
	return &s, nil
}
