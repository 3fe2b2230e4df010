package reschedule_booking

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vkotlyarr/VF-BookingEngine/internal/domain"
	bookingRepo "github.com/vkotlyarr/VF-BookingEngine/internal/infra/storage/booking"
	slotRepo "github.com/vkotlyarr/VF-BookingEngine/internal/infra/storage/slot"
	settingsRepo "github.com/vkotlyarr/VF-BookingEngine/internal/infra/storage/tenantsettings"
	"github.com/vkotlyarr/VF-BookingEngine/internal/service/assignment"
	"github.com/vkotlyarr/VF-BookingEngine/pkg/ptr"
	"github.com/vkotlyarr/VF-BookingEngine/pkg/types"
)

type fakeBookingRepo struct {
	bookings map[int64]*domain.Booking
}

func (f *fakeBookingRepo) GetByIDForUpdate(_ context.Context, id int64) (*domain.Booking, error) {
	b, ok := f.bookings[id]
	if !ok {
		return nil, bookingRepo.ErrBookingNotFound
	}
	clone := *b
	return &clone, nil
}

func (f *fakeBookingRepo) Reschedule(_ context.Context, id, newSlotID int64, newEmployeeID *int64, newTicketCode string) error {
	b := f.bookings[id]
	b.SlotID = newSlotID
	b.EmployeeID = newEmployeeID
	b.TicketCode = newTicketCode
	b.Scanned = false
	b.ScannedAt = nil
	return nil
}

type fakeSlotRepo struct {
	slots map[int64]*domain.Slot
}

func (f *fakeSlotRepo) snapshot() map[int64]domain.Slot {
	snap := make(map[int64]domain.Slot, len(f.slots))
	for id, s := range f.slots {
		snap[id] = *s
	}
	return snap
}

func (f *fakeSlotRepo) restore(snap map[int64]domain.Slot) {
	for id := range f.slots {
		s := snap[id]
		f.slots[id] = &s
	}
}

func (f *fakeSlotRepo) ReserveMany(_ context.Context, reservations []domain.SlotReservation) ([]*domain.Slot, error) {
	out := make([]*domain.Slot, 0, len(reservations))
	for _, r := range reservations {
		s, ok := f.slots[r.SlotID]
		if !ok {
			return nil, slotRepo.ErrSlotNotFound
		}
		if !s.IsAvailable {
			return nil, slotRepo.ErrSlotUnavailable
		}
		if s.AvailableCapacity < r.Units {
			return nil, slotRepo.ErrInsufficientCapacity
		}
		s.AvailableCapacity -= r.Units
		s.BookedCount += r.Units
		out = append(out, s)
	}
	return out, nil
}

func (f *fakeSlotRepo) Release(_ context.Context, slotID int64, units int) (*domain.Slot, error) {
	s, ok := f.slots[slotID]
	if !ok {
		return nil, slotRepo.ErrSlotNotFound
	}
	if s.BookedCount < units {
		return nil, slotRepo.ErrReleaseOverflow
	}
	s.BookedCount -= units
	s.AvailableCapacity += units
	return s, nil
}

type fakeShiftRepo struct {
	shifts map[int64]*domain.Shift
}

func (f *fakeShiftRepo) GetByID(_ context.Context, id int64) (*domain.Shift, error) {
	s, ok := f.shifts[id]
	if !ok {
		return nil, assert.AnError
	}
	return s, nil
}

type fakeSettingsRepo struct {
	settings *domain.TenantSettings
}

func (f *fakeSettingsRepo) GetByTenant(_ context.Context, _ int64) (*domain.TenantSettings, error) {
	if f.settings == nil {
		return nil, settingsRepo.ErrSettingsNotFound
	}
	return f.settings, nil
}

type fakeOutboxRepo struct {
	events []*domain.OutboxEvent
}

func (f *fakeOutboxRepo) Create(_ context.Context, e *domain.OutboxEvent) (*domain.OutboxEvent, error) {
	f.events = append(f.events, e)
	return e, nil
}

type fakeResolver struct {
	employeeID int64
	err        error
}

func (f *fakeResolver) Resolve(_ context.Context, _ *assignment.Request) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	return f.employeeID, nil
}

// fakeTx откатывает счётчики слотов при ошибке внутри транзакции
type fakeTx struct {
	slots *fakeSlotRepo
}

func (f *fakeTx) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	snap := f.slots.snapshot()
	if err := fn(ctx); err != nil {
		f.slots.restore(snap)
		return err
	}
	return nil
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

type env struct {
	bookings *fakeBookingRepo
	slots    *fakeSlotRepo
	shifts   *fakeShiftRepo
	settings *fakeSettingsRepo
	outbox   *fakeOutboxRepo
	resolver *fakeResolver
	uc       *UseCase
}

func newEnv() *env {
	e := &env{
		bookings: &fakeBookingRepo{bookings: map[int64]*domain.Booking{}},
		slots:    &fakeSlotRepo{slots: map[int64]*domain.Slot{}},
		shifts:   &fakeShiftRepo{shifts: map[int64]*domain.Shift{}},
		settings: &fakeSettingsRepo{},
		outbox:   &fakeOutboxRepo{},
		resolver: &fakeResolver{},
	}
	e.uc = NewUseCase(e.bookings, e.slots, e.shifts, e.settings, e.outbox, e.resolver,
		&fakeTx{slots: e.slots}, nopLogger{})
	return e
}

func (e *env) addSlot(id int64, available, booked int) {
	e.slots.slots[id] = &domain.Slot{
		ID:                id,
		TenantID:          1,
		ShiftID:           5,
		SlotDate:          time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC),
		StartTime:         types.TimeString("10:00"),
		EndTime:           types.TimeString("11:00"),
		OriginalCapacity:  available + booked,
		AvailableCapacity: available,
		BookedCount:       booked,
		IsAvailable:       true,
	}
	e.shifts.shifts[5] = &domain.Shift{ID: 5, TenantID: 1, ServiceID: ptr.Ptr(int64(10))}
}

func (e *env) addBooking(id int64, slotID int64, units int, status domain.BookingStatus) {
	group := "group-1"
	e.bookings.bookings[id] = &domain.Booking{
		ID:             id,
		TenantID:       1,
		ServiceID:      10,
		SlotID:         slotID,
		BookingGroupID: &group,
		ReservedUnits:  units,
		VisitorCount:   units,
		Status:         status,
		TicketCode:     "VFT-old",
		Scanned:        true,
		ScannedAt:      ptr.Ptr(time.Now()),
		CustomerEmail:  "anna@example.com",
	}
}

func TestExecute_Reschedule_MovesCapacity(t *testing.T) {
	e := newEnv()
	e.addSlot(100, 7, 3)
	e.addSlot(200, 5, 0)
	e.addBooking(1, 100, 3, domain.StatusConfirmed)

	resp, err := e.uc.Execute(context.Background(), &Request{BookingID: 1, TenantID: 1, NewSlotID: 200})
	require.NoError(t, err)

	// Места перешли из старого слота в новый
	assert.Equal(t, 10, e.slots.slots[100].AvailableCapacity)
	assert.Equal(t, 0, e.slots.slots[100].BookedCount)
	assert.Equal(t, 2, e.slots.slots[200].AvailableCapacity)
	assert.Equal(t, 3, e.slots.slots[200].BookedCount)

	// Билет перевыпущен, скан-состояние сброшено
	b := resp.Booking
	assert.Equal(t, int64(200), b.SlotID)
	assert.NotEqual(t, "VFT-old", b.TicketCode)
	assert.False(t, b.Scanned)
	assert.Nil(t, b.ScannedAt)

	require.Len(t, e.outbox.events, 1)
	assert.Equal(t, domain.EventBookingRescheduled, e.outbox.events[0].EventType)
}

func TestExecute_Reschedule_TargetFullLeavesBookingIntact(t *testing.T) {
	e := newEnv()
	e.addSlot(100, 7, 3)
	e.addSlot(200, 2, 0) // мест меньше, чем удерживает бронирование
	e.addBooking(1, 100, 3, domain.StatusPending)

	_, err := e.uc.Execute(context.Background(), &Request{BookingID: 1, TenantID: 1, NewSlotID: 200})
	assert.ErrorIs(t, err, ErrInsufficientCapacity)

	// Счётчики обоих слотов не тронуты, бронирование в старом слоте
	assert.Equal(t, 7, e.slots.slots[100].AvailableCapacity)
	assert.Equal(t, 3, e.slots.slots[100].BookedCount)
	assert.Equal(t, 2, e.slots.slots[200].AvailableCapacity)
	assert.Equal(t, int64(100), e.bookings.bookings[1].SlotID)
	assert.Empty(t, e.outbox.events)
}

func TestExecute_Reschedule_SameSlot(t *testing.T) {
	e := newEnv()
	e.addSlot(100, 7, 3)
	e.addBooking(1, 100, 3, domain.StatusPending)

	_, err := e.uc.Execute(context.Background(), &Request{BookingID: 1, TenantID: 1, NewSlotID: 100})
	assert.ErrorIs(t, err, ErrSameSlot)
}

func TestExecute_Reschedule_CancelledBooking(t *testing.T) {
	e := newEnv()
	e.addSlot(100, 10, 0)
	e.addSlot(200, 5, 0)
	e.addBooking(1, 100, 3, domain.StatusCancelled)

	_, err := e.uc.Execute(context.Background(), &Request{BookingID: 1, TenantID: 1, NewSlotID: 200})
	assert.ErrorIs(t, err, ErrNotReschedulable)
}

func TestExecute_Reschedule_EmployeeReassigned(t *testing.T) {
	e := newEnv()
	e.addSlot(100, 7, 3)
	e.addSlot(200, 5, 0)
	e.addBooking(1, 100, 3, domain.StatusConfirmed)
	e.bookings.bookings[1].EmployeeID = ptr.Ptr(int64(7))
	e.settings.settings = &domain.TenantSettings{
		TenantID:         1,
		SchedulingMode:   domain.ModeEmployeeBased,
		AssignmentPolicy: domain.PolicyAutoRotate,
	}
	e.shifts.shifts[5] = &domain.Shift{ID: 5, TenantID: 1, EmployeeID: ptr.Ptr(int64(8))}
	e.resolver.employeeID = 8

	resp, err := e.uc.Execute(context.Background(), &Request{BookingID: 1, TenantID: 1, NewSlotID: 200})
	require.NoError(t, err)
	require.NotNil(t, resp.Booking.EmployeeID)
	assert.Equal(t, int64(8), *resp.Booking.EmployeeID)
}

func TestExecute_Reschedule_EmployeeUnavailableRollsBack(t *testing.T) {
	e := newEnv()
	e.addSlot(100, 7, 3)
	e.addSlot(200, 5, 0)
	e.addBooking(1, 100, 3, domain.StatusConfirmed)
	e.settings.settings = &domain.TenantSettings{
		TenantID:         1,
		SchedulingMode:   domain.ModeEmployeeBased,
		AssignmentPolicy: domain.PolicyAutoRotate,
	}
	e.resolver.err = assignment.ErrNoEligibleEmployees

	_, err := e.uc.Execute(context.Background(), &Request{BookingID: 1, TenantID: 1, NewSlotID: 200})
	assert.ErrorIs(t, err, ErrEmployeeUnavailable)

	assert.Equal(t, 5, e.slots.slots[200].AvailableCapacity)
	assert.Equal(t, 3, e.slots.slots[100].BookedCount)
}

func TestExecute_Reschedule_WrongTenant(t *testing.T) {
	e := newEnv()
	e.addSlot(100, 7, 3)
	e.addSlot(200, 5, 0)
	e.addBooking(1, 100, 3, domain.StatusPending)

	_, err := e.uc.Execute(context.Background(), &Request{BookingID: 1, TenantID: 42, NewSlotID: 200})
	assert.ErrorIs(t, err, ErrBookingNotFound)
}
