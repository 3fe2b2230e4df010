package outbox

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/vkotlyarr/VF-BookingEngine/internal/domain"
	"github.com/vkotlyarr/VF-BookingEngine/pkg/dbmetrics"
	"github.com/vkotlyarr/VF-BookingEngine/pkg/psqlbuilder"
)

var eventColumns = []string{
	"id",
	"event_type",
	"tenant_id",
	"booking_group_id",
	"payload",
	"status",
	"attempts",
	"last_error",
	"created_at",
	"sent_at",
}

// Repository репозиторий outbox-событий
// Запись события идёт в одной транзакции с бронированием,
// чтение и отметки о доставке — из фонового диспетчера
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория outbox
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает событие (обычно внутри транзакции аллокатора)
func (r *Repository) Create(ctx context.Context, e *domain.OutboxEvent) (*domain.OutboxEvent, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("booking_events").
		Columns(
			"event_type",
			"tenant_id",
			"booking_group_id",
			"payload",
			"status",
		).
		Values(
			e.EventType,
			e.TenantID,
			e.BookingGroupID,
			[]byte(e.Payload),
			domain.EventStatusPending,
		).
		Suffix("RETURNING id, created_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(&e.ID, &createdAt)
	if err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	e.Status = domain.EventStatusPending
	e.CreatedAt = createdAt.Time

	return e, nil
}

// ClaimPending забирает пачку недоставленных событий на обработку
// FOR UPDATE SKIP LOCKED позволяет нескольким инстансам диспетчера
// работать без дублей доставки
func (r *Repository) ClaimPending(ctx context.Context, limit int, maxAttempts int) ([]*domain.OutboxEvent, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(eventColumns...).
		From("booking_events").
		Where(squirrel.Eq{"status": domain.EventStatusPending}).
		Where(squirrel.Lt{"attempts": maxAttempts}).
		OrderBy("id ASC").
		Limit(uint64(limit)).
		Suffix("FOR UPDATE SKIP LOCKED").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: ClaimPending - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ClaimPending - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	events := make([]*domain.OutboxEvent, 0)
	for rows.Next() {
		e, err := scanEventRow(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: ClaimPending - scan row: %v", ErrScanRow, err)
		}
		events = append(events, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ClaimPending - rows error: %v", ErrScanRow, err)
	}

	return events, nil
}

// MarkSent отмечает событие доставленным
func (r *Repository) MarkSent(ctx context.Context, id int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("booking_events").
		Set("status", domain.EventStatusSent).
		Set("sent_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: MarkSent - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: MarkSent - execute update: %v", ErrExecQuery, err)
	}

	return checkAffected(result, "MarkSent")
}

// MarkAttempt фиксирует неудачную попытку доставки
// После maxAttempts попыток событие переводится в failed
func (r *Repository) MarkAttempt(ctx context.Context, id int64, attemptErr string, maxAttempts int) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("booking_events").
		Set("attempts", squirrel.Expr("attempts + 1")).
		Set("last_error", attemptErr).
		Set("status", squirrel.Expr(
			"CASE WHEN attempts + 1 >= ? THEN ? ELSE status END",
			maxAttempts, string(domain.EventStatusFailed),
		)).
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: MarkAttempt - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: MarkAttempt - execute update: %v", ErrExecQuery, err)
	}

	return checkAffected(result, "MarkAttempt")
}

func checkAffected(result sql.Result, method string) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %s - get rows affected: %v", ErrExecQuery, method, err)
	}
	if rowsAffected == 0 {
		return ErrEventNotFound
	}
	return nil
}

// rowScanner общий интерфейс *sql.Row и *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanEventRow(row rowScanner) (*domain.OutboxEvent, error) {
	var e domain.OutboxEvent
	var payload []byte
	var createdAt sql.NullTime

	err := row.Scan(
		&e.ID,
		&e.EventType,
		&e.TenantID,
		&e.BookingGroupID,
		&payload,
		&e.Status,
		&e.Attempts,
		&e.LastError,
		&createdAt,
		&e.SentAt,
	)
	if err != nil {
		return nil, err
	}

	e.Payload = payload
	e.CreatedAt = createdAt.Time
	return &e, nil
}
