package domain

import (
	"time"

	"github.com/vkotlyarr/VF-BookingEngine/pkg/types"
)

// BookingStatus represents the status of a booking
type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusConfirmed BookingStatus = "confirmed"
	StatusCompleted BookingStatus = "completed"
	StatusCancelled BookingStatus = "cancelled"
)

// Booking represents a reserved slot unit (or units) for a visitor.
// Bookings are never physically deleted, only status-transitioned.
type Booking struct {
	ID             int64
	TenantID       int64
	ServiceID      int64
	SlotID         int64
	EmployeeID     *int64  // set in employee_based mode
	BookingGroupID *string // shared by all bookings from one bulk request

	CustomerName  string
	CustomerEmail string
	CustomerPhone *string

	VisitorCount  int
	AdultCount    int
	ChildCount    int
	ReservedUnits int // capacity units held on the slot by this row
	TotalPrice    float64

	Status BookingStatus
	Notes  *string

	// Ticket state: one-shot scan
	TicketCode string
	Scanned    bool
	ScannedAt  *time.Time

	// Set asynchronously by the invoicing collaborator
	InvoiceRef *string

	CancelledAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsActive returns true if the booking still holds its slot units
func (b *Booking) IsActive() bool {
	return b.Status == StatusPending || b.Status == StatusConfirmed
}

// IsCancelled returns true if the booking has been cancelled
func (b *Booking) IsCancelled() bool {
	return b.Status == StatusCancelled
}

// IsTerminal returns true for states that allow no further transitions
func (b *Booking) IsTerminal() bool {
	return b.Status == StatusCancelled || b.Status == StatusCompleted
}

// CanBeCancelled returns true if the booking can transition to cancelled
func (b *Booking) CanBeCancelled() bool {
	return b.Status == StatusPending || b.Status == StatusConfirmed
}

// CanBeEdited returns true if customer fields, notes and price may change
func (b *Booking) CanBeEdited() bool {
	return !b.IsTerminal()
}

// CanTransitionTo validates a status transition:
// pending -> confirmed -> completed, cancelled from pending/confirmed only
func (b *Booking) CanTransitionTo(next BookingStatus) bool {
	if b.Status == next {
		return false
	}
	switch b.Status {
	case StatusPending:
		return next == StatusConfirmed || next == StatusCancelled
	case StatusConfirmed:
		return next == StatusCompleted || next == StatusCancelled
	default:
		return false
	}
}

// BookingEdit частичное обновление редактируемых полей бронирования
// visitor_count намеренно отсутствует: изменение числа посетителей
// требует переноса или отмены с повторным созданием
type BookingEdit struct {
	CustomerName  *string
	CustomerEmail *string
	CustomerPhone *string
	Notes         *string
	TotalPrice    *float64
}

// HasChanges возвращает true, если задано хотя бы одно поле
func (e *BookingEdit) HasChanges() bool {
	return e.CustomerName != nil || e.CustomerEmail != nil ||
		e.CustomerPhone != nil || e.Notes != nil || e.TotalPrice != nil
}

// TenantBookingsFilter фильтр для получения бронирований тенанта
type TenantBookingsFilter struct {
	TenantID        int64
	ServiceID       *int64
	SlotID          *int64
	StartDate       *time.Time
	EndDate         *time.Time
	Status          *BookingStatus
	IncludeInactive bool // включать ли отменённые и завершённые
}

// EmployeeWindowFilter выборка активных назначений сотрудников на дату
// (для проверки конфликтов и ключа справедливости ротации)
type EmployeeWindowFilter struct {
	TenantID    int64
	EmployeeIDs []int64
	Date        time.Time
}

// AssignmentRecord активное назначение сотрудника с окном его слота
type AssignmentRecord struct {
	BookingID  int64
	EmployeeID int64
	SlotID     int64
	StartTime  types.TimeString
	EndTime    types.TimeString
}

// Overlaps возвращает true, если окно назначения пересекается с [start, end)
// Граничные касания пересечением не считаются
func (a *AssignmentRecord) Overlaps(start, end types.TimeString) bool {
	return a.StartTime.IsBefore(end) && a.EndTime.IsAfter(start)
}
