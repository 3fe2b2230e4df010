package slot

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/vkotlyarr/VF-BookingEngine/internal/domain"
	"github.com/vkotlyarr/VF-BookingEngine/pkg/dbmetrics"
	"github.com/vkotlyarr/VF-BookingEngine/pkg/psqlbuilder"
)

var slotColumns = []string{
	"id",
	"tenant_id",
	"shift_id",
	"slot_date",
	"start_time",
	"end_time",
	"original_capacity",
	"available_capacity",
	"booked_count",
	"is_available",
	"created_at",
	"updated_at",
}

// Repository репозиторий для работы со слотами и их счётчиками ёмкости
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория слотов
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает новый слот
func (r *Repository) Create(ctx context.Context, s *domain.Slot) (*domain.Slot, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("slots").
		Columns(
			"tenant_id",
			"shift_id",
			"slot_date",
			"start_time",
			"end_time",
			"original_capacity",
			"available_capacity",
			"booked_count",
			"is_available",
		).
		Values(
			s.TenantID,
			s.ShiftID,
			s.SlotDate,
			s.StartTime,
			s.EndTime,
			s.OriginalCapacity,
			s.AvailableCapacity,
			s.BookedCount,
			s.IsAvailable,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&s.ID,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	s.CreatedAt = createdAt.Time
	s.UpdatedAt = updatedAt.Time

	return s, nil
}

// GetByID получает слот по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Slot, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(slotColumns...).
		From("slots").
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	s, err := scanSlotRow(executor.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrSlotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan slot: %v", ErrScanRow, err)
	}

	return s, nil
}

// ListByFilter получает слоты тенанта за период
func (r *Repository) ListByFilter(ctx context.Context, filter domain.SlotsFilter) ([]*domain.Slot, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(slotColumns...).
		From("slots").
		Where(squirrel.Eq{"tenant_id": filter.TenantID}).
		Where(squirrel.GtOrEq{"slot_date": filter.DateFrom}).
		Where(squirrel.LtOrEq{"slot_date": filter.DateTo}).
		OrderBy("slot_date ASC, start_time ASC, id ASC")

	if filter.ShiftID != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"shift_id": *filter.ShiftID})
	}
	if filter.OnlyAvailable {
		selectBuilder = selectBuilder.
			Where(squirrel.Eq{"is_available": true}).
			Where(squirrel.Gt{"available_capacity": 0})
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListByFilter - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListByFilter - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanSlots(rows)
}

// ListByShiftAndDates получает существующие слоты смены на заданные даты
// Используется генератором слотов для защиты от повторной генерации
func (r *Repository) ListByShiftAndDates(ctx context.Context, shiftID int64, dateFrom, dateTo time.Time) ([]*domain.Slot, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(slotColumns...).
		From("slots").
		Where(squirrel.Eq{"shift_id": shiftID}).
		Where(squirrel.GtOrEq{"slot_date": dateFrom}).
		Where(squirrel.LtOrEq{"slot_date": dateTo}).
		OrderBy("slot_date ASC, start_time ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: ListByShiftAndDates - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListByShiftAndDates - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanSlots(rows)
}

// ReserveMany атомарно резервирует места в наборе слотов: всё или ничего.
//
// Дисциплина конкурентности:
//   - обязана вызываться внутри активной транзакции (обычно SERIALIZABLE
//     через txmanager) — иначе ErrNoTransaction;
//   - слоты блокируются SELECT ... FOR UPDATE в каноническом порядке
//     (по возрастанию id), чтобы два пересекающихся bulk-запроса не
//     попали в deadlock;
//   - счётчики перечитываются под блокировкой непосредственно перед
//     декрементом, поэтому ёмкость не может уйти в минус под гонками.
//
// Любая ошибка откатывается вместе с транзакцией вызывающего — частичных
// резервов другие транзакции не видят
func (r *Repository) ReserveMany(ctx context.Context, reservations []domain.SlotReservation) ([]*domain.Slot, error) {
	if !dbmetrics.IsInTransaction(ctx) {
		return nil, ErrNoTransaction
	}
	if len(reservations) == 0 {
		return nil, fmt.Errorf("%w: ReserveMany - empty reservation set", ErrExecQuery)
	}

	// Дубликаты ловим до каких-либо блокировок
	units := make(map[int64]int, len(reservations))
	for _, res := range reservations {
		if _, ok := units[res.SlotID]; ok {
			return nil, fmt.Errorf("%w: slot id=%d", ErrDuplicateSlot, res.SlotID)
		}
		units[res.SlotID] = res.Units
	}

	ids := make([]int64, 0, len(units))
	for id := range units {
		ids = append(ids, id)
	}
	// Канонический порядок захвата блокировок
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	locked, err := r.lockSlots(ctx, ids)
	if err != nil {
		return nil, err
	}

	// Проверяем весь набор до первой мутации
	for _, id := range ids {
		s, ok := locked[id]
		if !ok {
			return nil, fmt.Errorf("%w: slot id=%d", ErrSlotNotFound, id)
		}
		if !s.IsAvailable {
			return nil, fmt.Errorf("%w: slot id=%d", ErrSlotUnavailable, id)
		}
		if s.AvailableCapacity < units[id] {
			return nil, fmt.Errorf("%w: slot id=%d, requested=%d, available=%d",
				ErrInsufficientCapacity, id, units[id], s.AvailableCapacity)
		}
	}

	updated := make([]*domain.Slot, 0, len(ids))
	for _, id := range ids {
		s, err := r.applyDelta(ctx, id, -units[id], units[id])
		if err != nil {
			return nil, err
		}
		updated = append(updated, s)
	}

	return updated, nil
}

// Release возвращает units мест слоту (отмена или перенос брони)
// Требует активной транзакции; блокирует строку перед мутацией
func (r *Repository) Release(ctx context.Context, slotID int64, units int) (*domain.Slot, error) {
	if !dbmetrics.IsInTransaction(ctx) {
		return nil, ErrNoTransaction
	}

	locked, err := r.lockSlots(ctx, []int64{slotID})
	if err != nil {
		return nil, err
	}

	s, ok := locked[slotID]
	if !ok {
		return nil, fmt.Errorf("%w: slot id=%d", ErrSlotNotFound, slotID)
	}
	if s.BookedCount < units {
		return nil, fmt.Errorf("%w: slot id=%d, booked=%d, release=%d",
			ErrReleaseOverflow, slotID, s.BookedCount, units)
	}

	return r.applyDelta(ctx, slotID, units, -units)
}

// SetAvailability переключает флаг доступности слота
func (r *Repository) SetAvailability(ctx context.Context, slotID int64, available bool) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("slots").
		Set("is_available", available).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": slotID}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: SetAvailability - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: SetAvailability - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: SetAvailability - get rows affected: %v", ErrExecQuery, err)
	}
	if rowsAffected == 0 {
		return ErrSlotNotFound
	}

	return nil
}

// lockSlots читает слоты с блокировкой FOR UPDATE в порядке возрастания id
func (r *Repository) lockSlots(ctx context.Context, ids []int64) (map[int64]*domain.Slot, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(slotColumns...).
		From("slots").
		Where(squirrel.Eq{"id": ids}).
		OrderBy("id ASC").
		Suffix("FOR UPDATE").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: lockSlots - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: lockSlots - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	slots, err := scanSlots(rows)
	if err != nil {
		return nil, err
	}

	result := make(map[int64]*domain.Slot, len(slots))
	for _, s := range slots {
		result[s.ID] = s
	}
	return result, nil
}

// applyDelta мутирует счётчики заблокированной строки
// availableDelta и bookedDelta всегда взаимно обратны
func (r *Repository) applyDelta(ctx context.Context, slotID int64, availableDelta, bookedDelta int) (*domain.Slot, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("slots").
		Set("available_capacity", squirrel.Expr("available_capacity + ?", availableDelta)).
		Set("booked_count", squirrel.Expr("booked_count + ?", bookedDelta)).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": slotID}).
		Suffix("RETURNING " + joinColumns(slotColumns)).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: applyDelta - build update query: %v", ErrBuildQuery, err)
	}

	s, err := scanSlotRow(executor.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: slot id=%d", ErrSlotNotFound, slotID)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: applyDelta - scan slot: %v", ErrScanRow, err)
	}

	return s, nil
}

// rowScanner общий интерфейс *sql.Row и *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSlotRow(row rowScanner) (*domain.Slot, error) {
	var s domain.Slot
	var createdAt, updatedAt sql.NullTime

	err := row.Scan(
		&s.ID,
		&s.TenantID,
		&s.ShiftID,
		&s.SlotDate,
		&s.StartTime,
		&s.EndTime,
		&s.OriginalCapacity,
		&s.AvailableCapacity,
		&s.BookedCount,
		&s.IsAvailable,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	s.CreatedAt = createdAt.Time
	s.UpdatedAt = updatedAt.Time
	return &s, nil
}

func scanSlots(rows *sql.Rows) ([]*domain.Slot, error) {
	slots := make([]*domain.Slot, 0)

	for rows.Next() {
		s, err := scanSlotRow(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanSlots - scan row: %v", ErrScanRow, err)
		}
		slots = append(slots, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanSlots - rows error: %v", ErrScanRow, err)
	}

	return slots, nil
}

func joinColumns(cols []string) string {
	return strings.Join(cols, ", ")
}
