package booking

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/vkotlyarr/VF-BookingEngine/internal/domain"
	"github.com/vkotlyarr/VF-BookingEngine/pkg/dbmetrics"
	"github.com/vkotlyarr/VF-BookingEngine/pkg/psqlbuilder"
)

var bookingColumns = []string{
	"id",
	"tenant_id",
	"service_id",
	"slot_id",
	"employee_id",
	"booking_group_id",
	"customer_name",
	"customer_email",
	"customer_phone",
	"visitor_count",
	"adult_count",
	"child_count",
	"reserved_units",
	"total_price",
	"status",
	"notes",
	"ticket_code",
	"scanned",
	"scanned_at",
	"invoice_ref",
	"cancelled_at",
	"created_at",
	"updated_at",
}

// Repository репозиторий для работы с бронированиями
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория бронирований
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает новое бронирование
// Вызывается аллокатором внутри транзакции резервирования ёмкости:
// если вставка упадёт, откат транзакции вернёт зарезервированные места
func (r *Repository) Create(ctx context.Context, b *domain.Booking) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("bookings").
		Columns(
			"tenant_id",
			"service_id",
			"slot_id",
			"employee_id",
			"booking_group_id",
			"customer_name",
			"customer_email",
			"customer_phone",
			"visitor_count",
			"adult_count",
			"child_count",
			"reserved_units",
			"total_price",
			"status",
			"notes",
			"ticket_code",
		).
		Values(
			b.TenantID,
			b.ServiceID,
			b.SlotID,
			b.EmployeeID,
			b.BookingGroupID,
			b.CustomerName,
			b.CustomerEmail,
			b.CustomerPhone,
			b.VisitorCount,
			b.AdultCount,
			b.ChildCount,
			b.ReservedUnits,
			b.TotalPrice,
			b.Status,
			b.Notes,
			b.TicketCode,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&b.ID,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	b.CreatedAt = createdAt.Time
	b.UpdatedAt = updatedAt.Time

	return b, nil
}

// GetByID получает бронирование по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	return r.getOne(ctx, squirrel.Eq{"id": id}, false)
}

// GetByIDForUpdate получает бронирование по ID с блокировкой FOR UPDATE
// Используется lifecycle-операциями (отмена, перенос, скан билета),
// чтобы переходы состояния сериализовались между собой
func (r *Repository) GetByIDForUpdate(ctx context.Context, id int64) (*domain.Booking, error) {
	if !dbmetrics.IsInTransaction(ctx) {
		return nil, ErrNoTransaction
	}
	return r.getOne(ctx, squirrel.Eq{"id": id}, true)
}

// ticketCodeOrder порядок выборки строк, делящих один ticket_code
// (билет группового бронирования): непогашенные активные строки
// первыми, затем погашенные, отменённые последними, внутри каждой
// группы по id
var ticketCodeOrder = []string{
	"(status = 'cancelled') ASC",
	"scanned ASC",
	"id ASC",
}

// GetByTicketCode получает бронирование по коду билета
func (r *Repository) GetByTicketCode(ctx context.Context, code string) (*domain.Booking, error) {
	return r.getOne(ctx, squirrel.Eq{"ticket_code": code}, false, ticketCodeOrder...)
}

// GetByTicketCodeForUpdate получает бронирование по коду билета
// с блокировкой FOR UPDATE. Конкурирующие сканы одного билета
// сериализуются на этой строке. Билет группы допускает по одному
// гашению на каждую строку группы: вызов детерминированно отдаёт
// первую непогашенную строку, а когда таких не осталось, самую
// раннюю погашенную
func (r *Repository) GetByTicketCodeForUpdate(ctx context.Context, code string) (*domain.Booking, error) {
	if !dbmetrics.IsInTransaction(ctx) {
		return nil, ErrNoTransaction
	}
	return r.getOne(ctx, squirrel.Eq{"ticket_code": code}, true, ticketCodeOrder...)
}

// GetByGroupID получает все бронирования группы (bulk-запроса)
func (r *Repository) GetByGroupID(ctx context.Context, groupID string) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"booking_group_id": groupID}).
		OrderBy("id ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByGroupID - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByGroupID - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanBookings(rows)
}

// GetByTenantWithFilter получает бронирования тенанта с гибкой фильтрацией
// по услуге, слоту, периоду дат слота и статусу
func (r *Repository) GetByTenantWithFilter(ctx context.Context, filter domain.TenantBookingsFilter) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(prefixColumns("b", bookingColumns)...).
		From("bookings b").
		Join("slots s ON s.id = b.slot_id").
		Where(squirrel.Eq{"b.tenant_id": filter.TenantID})

	if filter.ServiceID != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"b.service_id": *filter.ServiceID})
	}
	if filter.SlotID != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"b.slot_id": *filter.SlotID})
	}
	if filter.StartDate != nil {
		selectBuilder = selectBuilder.Where(squirrel.GtOrEq{"s.slot_date": *filter.StartDate})
	}
	if filter.EndDate != nil {
		selectBuilder = selectBuilder.Where(squirrel.LtOrEq{"s.slot_date": *filter.EndDate})
	}

	if filter.Status != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"b.status": *filter.Status})
	} else if !filter.IncludeInactive {
		activeStatusStrings := make([]string, len(domain.ActiveStatuses))
		for i, s := range domain.ActiveStatuses {
			activeStatusStrings[i] = string(s)
		}
		selectBuilder = selectBuilder.Where(squirrel.Eq{"b.status": activeStatusStrings})
	}

	selectBuilder = selectBuilder.OrderBy("s.slot_date DESC, s.start_time DESC, b.id DESC")

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByTenantWithFilter - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByTenantWithFilter - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanBookings(rows)
}

// ListEmployeeAssignments получает активные назначения сотрудников на дату
// вместе с окнами их слотов (для проверки конфликтов и ротации).
// Внутри транзакции строки блокируются FOR UPDATE OF b, чтобы два
// конкурирующих назначения на пересекающиеся окна сериализовались
func (r *Repository) ListEmployeeAssignments(ctx context.Context, filter domain.EmployeeWindowFilter) ([]*domain.AssignmentRecord, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	activeStatusStrings := make([]string, len(domain.ActiveStatuses))
	for i, s := range domain.ActiveStatuses {
		activeStatusStrings[i] = string(s)
	}

	selectBuilder := psqlbuilder.Select(
		"b.id",
		"b.employee_id",
		"b.slot_id",
		"s.start_time",
		"s.end_time",
	).
		From("bookings b").
		Join("slots s ON s.id = b.slot_id").
		Where(squirrel.Eq{"b.tenant_id": filter.TenantID}).
		Where(squirrel.Eq{"b.status": activeStatusStrings}).
		Where(squirrel.Eq{"s.slot_date": filter.Date})

	if len(filter.EmployeeIDs) > 0 {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"b.employee_id": filter.EmployeeIDs})
	} else {
		selectBuilder = selectBuilder.Where("b.employee_id IS NOT NULL")
	}

	selectBuilder = selectBuilder.OrderBy("b.id ASC")

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE OF b")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListEmployeeAssignments - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListEmployeeAssignments - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	records := make([]*domain.AssignmentRecord, 0)
	for rows.Next() {
		var rec domain.AssignmentRecord
		if err := rows.Scan(&rec.BookingID, &rec.EmployeeID, &rec.SlotID, &rec.StartTime, &rec.EndTime); err != nil {
			return nil, fmt.Errorf("%w: ListEmployeeAssignments - scan row: %v", ErrScanRow, err)
		}
		records = append(records, &rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListEmployeeAssignments - rows error: %v", ErrScanRow, err)
	}

	return records, nil
}

// UpdateFields обновляет редактируемые поля бронирования
// (контактные данные, заметки, цена); статус меняется отдельно
func (r *Repository) UpdateFields(ctx context.Context, id int64, upd domain.BookingEdit) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	updateBuilder := psqlbuilder.Update("bookings").
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id})

	if upd.CustomerName != nil {
		updateBuilder = updateBuilder.Set("customer_name", *upd.CustomerName)
	}
	if upd.CustomerEmail != nil {
		updateBuilder = updateBuilder.Set("customer_email", *upd.CustomerEmail)
	}
	if upd.CustomerPhone != nil {
		updateBuilder = updateBuilder.Set("customer_phone", *upd.CustomerPhone)
	}
	if upd.Notes != nil {
		updateBuilder = updateBuilder.Set("notes", *upd.Notes)
	}
	if upd.TotalPrice != nil {
		updateBuilder = updateBuilder.Set("total_price", *upd.TotalPrice)
	}

	query, args, err := updateBuilder.ToSql()
	if err != nil {
		return fmt.Errorf("%w: UpdateFields - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: UpdateFields - execute update: %v", ErrExecQuery, err)
	}

	return checkAffected(result, "UpdateFields")
}

// UpdateStatus обновляет статус бронирования
func (r *Repository) UpdateStatus(ctx context.Context, id int64, status domain.BookingStatus) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	updateBuilder := psqlbuilder.Update("bookings").
		Set("status", status).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id})

	if status == domain.StatusCancelled {
		updateBuilder = updateBuilder.Set("cancelled_at", squirrel.Expr("NOW()"))
	}

	query, args, err := updateBuilder.ToSql()
	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - execute update: %v", ErrExecQuery, err)
	}

	return checkAffected(result, "UpdateStatus")
}

// Reschedule переносит бронирование на новый слот и перевыпускает билет:
// новый код, скан-состояние сбрасывается, сотрудник заменяется на
// подобранного под новое окно. Вызывается только внутри транзакции,
// которая одновременно двигает счётчики обоих слотов
func (r *Repository) Reschedule(ctx context.Context, id int64, newSlotID int64, newEmployeeID *int64, newTicketCode string) error {
	if !dbmetrics.IsInTransaction(ctx) {
		return ErrNoTransaction
	}
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("bookings").
		Set("slot_id", newSlotID).
		Set("employee_id", newEmployeeID).
		Set("ticket_code", newTicketCode).
		Set("scanned", false).
		Set("scanned_at", nil).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Reschedule - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Reschedule - execute update: %v", ErrExecQuery, err)
	}

	return checkAffected(result, "Reschedule")
}

// MarkScanned помечает билет отсканированным
// Условие scanned = false гарантирует ровно одну успешную отметку
func (r *Repository) MarkScanned(ctx context.Context, id int64, at time.Time) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("bookings").
		Set("scanned", true).
		Set("scanned_at", at).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		Where(squirrel.Eq{"scanned": false}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: MarkScanned - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: MarkScanned - execute update: %v", ErrExecQuery, err)
	}

	return checkAffected(result, "MarkScanned")
}

// SetInvoiceRef проставляет ссылку на счёт всем бронированиям группы
// Вызывается диспетчером после ответа сервиса счетов
func (r *Repository) SetInvoiceRef(ctx context.Context, groupID string, invoiceRef string) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("bookings").
		Set("invoice_ref", invoiceRef).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"booking_group_id": groupID}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: SetInvoiceRef - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: SetInvoiceRef - execute update: %v", ErrExecQuery, err)
	}

	return checkAffected(result, "SetInvoiceRef")
}

func (r *Repository) getOne(ctx context.Context, where squirrel.Eq, forUpdate bool, orderBy ...string) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(where)

	if len(orderBy) > 0 {
		selectBuilder = selectBuilder.OrderBy(orderBy...).Limit(1)
	}

	if forUpdate {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: getOne - build select query: %v", ErrBuildQuery, err)
	}

	b, err := scanBookingRow(executor.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: getOne - scan booking: %v", ErrScanRow, err)
	}

	return b, nil
}

func checkAffected(result sql.Result, method string) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %s - get rows affected: %v", ErrExecQuery, method, err)
	}
	if rowsAffected == 0 {
		return ErrBookingNotFound
	}
	return nil
}

// rowScanner общий интерфейс *sql.Row и *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBookingRow(row rowScanner) (*domain.Booking, error) {
	var b domain.Booking
	var createdAt, updatedAt sql.NullTime

	err := row.Scan(
		&b.ID,
		&b.TenantID,
		&b.ServiceID,
		&b.SlotID,
		&b.EmployeeID,
		&b.BookingGroupID,
		&b.CustomerName,
		&b.CustomerEmail,
		&b.CustomerPhone,
		&b.VisitorCount,
		&b.AdultCount,
		&b.ChildCount,
		&b.ReservedUnits,
		&b.TotalPrice,
		&b.Status,
		&b.Notes,
		&b.TicketCode,
		&b.Scanned,
		&b.ScannedAt,
		&b.InvoiceRef,
		&b.CancelledAt,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	b.CreatedAt = createdAt.Time
	b.UpdatedAt = updatedAt.Time
	return &b, nil
}

func scanBookings(rows *sql.Rows) ([]*domain.Booking, error) {
	bookings := make([]*domain.Booking, 0)

	for rows.Next() {
		b, err := scanBookingRow(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanBookings - scan row: %v", ErrScanRow, err)
		}
		bookings = append(bookings, b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanBookings - rows error: %v", ErrScanRow, err)
	}

	return bookings, nil
}

func prefixColumns(prefix string, cols []string) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = prefix + "." + c
	}
	return out
}
