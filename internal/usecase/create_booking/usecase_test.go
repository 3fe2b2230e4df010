package create_booking

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vkotlyarr/VF-BookingEngine/internal/domain"
	slotRepo "github.com/vkotlyarr/VF-BookingEngine/internal/infra/storage/slot"
	settingsRepo "github.com/vkotlyarr/VF-BookingEngine/internal/infra/storage/tenantsettings"
	"github.com/vkotlyarr/VF-BookingEngine/internal/service/assignment"
	"github.com/vkotlyarr/VF-BookingEngine/pkg/ptr"
	"github.com/vkotlyarr/VF-BookingEngine/pkg/types"
)

type fakeSlotRepo struct {
	slots      map[int64]*domain.Slot
	reserveErr error
	reserved   []domain.SlotReservation
}

func (f *fakeSlotRepo) ReserveMany(_ context.Context, reservations []domain.SlotReservation) ([]*domain.Slot, error) {
	if f.reserveErr != nil {
		return nil, f.reserveErr
	}
	f.reserved = append(f.reserved, reservations...)
	out := make([]*domain.Slot, 0, len(reservations))
	for _, r := range reservations {
		s, ok := f.slots[r.SlotID]
		if !ok {
			return nil, slotRepo.ErrSlotNotFound
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

type fakeBookingRepo struct {
	nextID  int64
	created []*domain.Booking
}

func (f *fakeBookingRepo) Create(_ context.Context, b *domain.Booking) (*domain.Booking, error) {
	f.nextID++
	clone := *b
	clone.ID = f.nextID
	clone.CreatedAt = time.Now()
	clone.UpdatedAt = clone.CreatedAt
	f.created = append(f.created, &clone)
	return &clone, nil
}

type fakeSettingsRepo struct {
	settings *domain.TenantSettings
}

func (f *fakeSettingsRepo) GetByTenant(_ context.Context, tenantID int64) (*domain.TenantSettings, error) {
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
	requests   []*assignment.Request
}

func (f *fakeResolver) Resolve(_ context.Context, req *assignment.Request) (int64, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return 0, f.err
	}
	return f.employeeID, nil
}

type fakeTxManager struct{}

func (f *fakeTxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func testSlot(id, tenantID, shiftID int64, capacity int) *domain.Slot {
	return &domain.Slot{
		ID:                id,
		TenantID:          tenantID,
		ShiftID:           shiftID,
		SlotDate:          time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC), // Monday
		StartTime:         types.TimeString("10:00"),
		EndTime:           types.TimeString("11:00"),
		OriginalCapacity:  capacity,
		AvailableCapacity: capacity,
		IsAvailable:       true,
	}
}

func testRequest() *Request {
	return &Request{
		TenantID:      1,
		ServiceID:     10,
		SlotID:        100,
		CustomerName:  "Anna Petrova",
		CustomerEmail: "anna@example.com",
		VisitorCount:  2,
		AdultCount:    2,
		ChildCount:    0,
		TotalPrice:    500,
	}
}

func newTestUseCase(
	slots *fakeSlotRepo,
	shifts *fakeShiftRepo,
	bookings *fakeBookingRepo,
	settings *fakeSettingsRepo,
	outbox *fakeOutboxRepo,
	resolver *fakeResolver,
) *UseCase {
	return NewUseCase(slots, shifts, bookings, settings, outbox, resolver, &fakeTxManager{}, nopLogger{})
}

func TestExecute_ServiceBased_Success(t *testing.T) {
	slots := &fakeSlotRepo{slots: map[int64]*domain.Slot{100: testSlot(100, 1, 5, 10)}}
	shifts := &fakeShiftRepo{shifts: map[int64]*domain.Shift{5: {ID: 5, TenantID: 1, ServiceID: ptr.Ptr(int64(10))}}}
	bookings := &fakeBookingRepo{}
	outbox := &fakeOutboxRepo{}
	resolver := &fakeResolver{}
	uc := newTestUseCase(slots, shifts, bookings, &fakeSettingsRepo{}, outbox, resolver)

	resp, err := uc.Execute(context.Background(), testRequest())
	require.NoError(t, err)
	require.NotNil(t, resp.Booking)

	b := resp.Booking
	assert.Equal(t, domain.StatusPending, b.Status)
	assert.Equal(t, 2, b.ReservedUnits)
	assert.Nil(t, b.EmployeeID)
	require.NotNil(t, b.BookingGroupID)
	assert.NotEmpty(t, *b.BookingGroupID)
	assert.Contains(t, b.TicketCode, domain.TicketCodePrefix)

	// Ёмкость слота уменьшилась ровно на число посетителей
	assert.Equal(t, 8, slots.slots[100].AvailableCapacity)
	assert.Equal(t, 2, slots.slots[100].BookedCount)

	// Резолвер не вызывался: дефолтный режим service_based
	assert.Empty(t, resolver.requests)

	// Ровно одно событие booking_created на группу
	require.Len(t, outbox.events, 1)
	assert.Equal(t, domain.EventBookingCreated, outbox.events[0].EventType)
	assert.Equal(t, *b.BookingGroupID, outbox.events[0].BookingGroupID)
}

func TestExecute_EmployeeBased_AutoRotate(t *testing.T) {
	slots := &fakeSlotRepo{slots: map[int64]*domain.Slot{100: testSlot(100, 1, 5, 10)}}
	shifts := &fakeShiftRepo{shifts: map[int64]*domain.Shift{5: {ID: 5, TenantID: 1, EmployeeID: ptr.Ptr(int64(7))}}}
	settings := &fakeSettingsRepo{settings: &domain.TenantSettings{
		TenantID:         1,
		SchedulingMode:   domain.ModeEmployeeBased,
		AssignmentPolicy: domain.PolicyAutoRotate,
	}}
	resolver := &fakeResolver{employeeID: 7}
	uc := newTestUseCase(slots, shifts, &fakeBookingRepo{}, settings, &fakeOutboxRepo{}, resolver)

	resp, err := uc.Execute(context.Background(), testRequest())
	require.NoError(t, err)
	require.NotNil(t, resp.Booking.EmployeeID)
	assert.Equal(t, int64(7), *resp.Booking.EmployeeID)

	require.Len(t, resolver.requests, 1)
	assert.Equal(t, domain.PolicyAutoRotate, resolver.requests[0].Policy)
	assert.Equal(t, types.TimeString("10:00"), resolver.requests[0].StartTime)
}

func TestExecute_EmployeeBased_ManualOverride(t *testing.T) {
	slots := &fakeSlotRepo{slots: map[int64]*domain.Slot{100: testSlot(100, 1, 5, 10)}}
	shifts := &fakeShiftRepo{shifts: map[int64]*domain.Shift{5: {ID: 5, TenantID: 1, EmployeeID: ptr.Ptr(int64(3))}}}
	settings := &fakeSettingsRepo{settings: &domain.TenantSettings{
		TenantID:         1,
		SchedulingMode:   domain.ModeEmployeeBased,
		AssignmentPolicy: domain.PolicyAutoRotate,
	}}
	resolver := &fakeResolver{employeeID: 3}
	uc := newTestUseCase(slots, shifts, &fakeBookingRepo{}, settings, &fakeOutboxRepo{}, resolver)

	req := testRequest()
	req.EmployeeID = ptr.Ptr(int64(3))

	_, err := uc.Execute(context.Background(), req)
	require.NoError(t, err)

	// Явный выбор сотрудника переводит запрос на ручную политику
	require.Len(t, resolver.requests, 1)
	assert.Equal(t, domain.PolicyManual, resolver.requests[0].Policy)
	require.NotNil(t, resolver.requests[0].RequestedEmployeeID)
	assert.Equal(t, int64(3), *resolver.requests[0].RequestedEmployeeID)
}

func TestExecute_EmployeeUnavailable(t *testing.T) {
	slots := &fakeSlotRepo{slots: map[int64]*domain.Slot{100: testSlot(100, 1, 5, 10)}}
	shifts := &fakeShiftRepo{shifts: map[int64]*domain.Shift{5: {ID: 5, TenantID: 1, EmployeeID: ptr.Ptr(int64(3))}}}
	settings := &fakeSettingsRepo{settings: &domain.TenantSettings{
		TenantID:         1,
		SchedulingMode:   domain.ModeEmployeeBased,
		AssignmentPolicy: domain.PolicyAutoRotate,
	}}
	resolver := &fakeResolver{err: assignment.ErrNoEligibleEmployees}
	bookings := &fakeBookingRepo{}
	uc := newTestUseCase(slots, shifts, bookings, settings, &fakeOutboxRepo{}, resolver)

	_, err := uc.Execute(context.Background(), testRequest())
	assert.ErrorIs(t, err, ErrEmployeeUnavailable)
	assert.Empty(t, bookings.created)
}

func TestExecute_InsufficientCapacity(t *testing.T) {
	slots := &fakeSlotRepo{slots: map[int64]*domain.Slot{100: testSlot(100, 1, 5, 1)}}
	shifts := &fakeShiftRepo{shifts: map[int64]*domain.Shift{5: {ID: 5, TenantID: 1, ServiceID: ptr.Ptr(int64(10))}}}
	bookings := &fakeBookingRepo{}
	outbox := &fakeOutboxRepo{}
	uc := newTestUseCase(slots, shifts, bookings, &fakeSettingsRepo{}, outbox, &fakeResolver{})

	_, err := uc.Execute(context.Background(), testRequest())
	assert.ErrorIs(t, err, ErrInsufficientCapacity)
	assert.Empty(t, bookings.created)
	assert.Empty(t, outbox.events)
}

func TestExecute_SlotNotFound(t *testing.T) {
	slots := &fakeSlotRepo{slots: map[int64]*domain.Slot{}}
	uc := newTestUseCase(slots, &fakeShiftRepo{}, &fakeBookingRepo{}, &fakeSettingsRepo{}, &fakeOutboxRepo{}, &fakeResolver{})

	_, err := uc.Execute(context.Background(), testRequest())
	assert.ErrorIs(t, err, ErrSlotNotFound)
}

func TestExecute_SlotBelongsToAnotherTenant(t *testing.T) {
	slots := &fakeSlotRepo{slots: map[int64]*domain.Slot{100: testSlot(100, 99, 5, 10)}}
	shifts := &fakeShiftRepo{shifts: map[int64]*domain.Shift{5: {ID: 5, TenantID: 99, ServiceID: ptr.Ptr(int64(10))}}}
	uc := newTestUseCase(slots, shifts, &fakeBookingRepo{}, &fakeSettingsRepo{}, &fakeOutboxRepo{}, &fakeResolver{})

	_, err := uc.Execute(context.Background(), testRequest())
	assert.ErrorIs(t, err, ErrSlotMismatch)
}

func TestExecute_SlotServesAnotherService(t *testing.T) {
	slots := &fakeSlotRepo{slots: map[int64]*domain.Slot{100: testSlot(100, 1, 5, 10)}}
	shifts := &fakeShiftRepo{shifts: map[int64]*domain.Shift{5: {ID: 5, TenantID: 1, ServiceID: ptr.Ptr(int64(77))}}}
	uc := newTestUseCase(slots, shifts, &fakeBookingRepo{}, &fakeSettingsRepo{}, &fakeOutboxRepo{}, &fakeResolver{})

	_, err := uc.Execute(context.Background(), testRequest())
	assert.ErrorIs(t, err, ErrSlotMismatch)
}

func TestExecute_ValidationFailures(t *testing.T) {
	uc := newTestUseCase(&fakeSlotRepo{}, &fakeShiftRepo{}, &fakeBookingRepo{}, &fakeSettingsRepo{}, &fakeOutboxRepo{}, &fakeResolver{})

	tests := []struct {
		name   string
		mutate func(*Request)
	}{
		{"zero visitor count", func(r *Request) { r.VisitorCount = 0 }},
		{"counts do not add up", func(r *Request) { r.AdultCount = 1 }},
		{"empty customer name", func(r *Request) { r.CustomerName = "  " }},
		{"malformed email", func(r *Request) { r.CustomerEmail = "not-an-email" }},
		{"negative price", func(r *Request) { r.TotalPrice = -1 }},
		{"visitor count above limit", func(r *Request) {
			r.VisitorCount = domain.MaxVisitorsPerBooking + 1
			r.AdultCount = r.VisitorCount
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testRequest()
			tt.mutate(req)
			_, err := uc.Execute(context.Background(), req)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}
