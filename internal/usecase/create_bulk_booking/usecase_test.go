package create_bulk_booking

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

// fakeTx откатывает состояние фейковых хранилищ при ошибке, как это
// делает настоящая транзакция
type fakeTx struct {
	slots    *fakeSlotRepo
	bookings *fakeBookingRepo
	outbox   *fakeOutboxRepo
}

func (f *fakeTx) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	slotsSnap := f.slots.snapshot()
	bookingsSnap := len(f.bookings.created)
	outboxSnap := len(f.outbox.events)

	if err := fn(ctx); err != nil {
		f.slots.restore(slotsSnap)
		f.bookings.created = f.bookings.created[:bookingsSnap]
		f.outbox.events = f.outbox.events[:outboxSnap]
		return err
	}
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
	seen := make(map[int64]bool, len(reservations))
	for _, r := range reservations {
		if seen[r.SlotID] {
			return nil, slotRepo.ErrDuplicateSlot
		}
		seen[r.SlotID] = true
	}
	// Весь набор валидируется до первой мутации
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
	}
	out := make([]*domain.Slot, 0, len(reservations))
	for _, r := range reservations {
		s := f.slots[r.SlotID]
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
	f.created = append(f.created, &clone)
	return &clone, nil
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
	ids      []int64
	err      error
	requests []*assignment.Request
}

func (f *fakeResolver) Resolve(_ context.Context, req *assignment.Request) (int64, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return 0, f.err
	}
	id := f.ids[(len(f.requests)-1)%len(f.ids)]
	return id, nil
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

type env struct {
	slots    *fakeSlotRepo
	shifts   *fakeShiftRepo
	bookings *fakeBookingRepo
	settings *fakeSettingsRepo
	outbox   *fakeOutboxRepo
	resolver *fakeResolver
	uc       *UseCase
}

func newEnv() *env {
	e := &env{
		slots:    &fakeSlotRepo{slots: map[int64]*domain.Slot{}},
		shifts:   &fakeShiftRepo{shifts: map[int64]*domain.Shift{}},
		bookings: &fakeBookingRepo{},
		settings: &fakeSettingsRepo{},
		outbox:   &fakeOutboxRepo{},
		resolver: &fakeResolver{ids: []int64{1}},
	}
	tx := &fakeTx{slots: e.slots, bookings: e.bookings, outbox: e.outbox}
	e.uc = NewUseCase(e.slots, e.shifts, e.bookings, e.settings, e.outbox, e.resolver, tx, nopLogger{})
	return e
}

func (e *env) addSlot(id int64, capacity int, start, end string) {
	e.slots.slots[id] = &domain.Slot{
		ID:                id,
		TenantID:          1,
		ShiftID:           5,
		SlotDate:          time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC),
		StartTime:         types.TimeString(start),
		EndTime:           types.TimeString(end),
		OriginalCapacity:  capacity,
		AvailableCapacity: capacity,
		IsAvailable:       true,
	}
	e.shifts.shifts[5] = &domain.Shift{ID: 5, TenantID: 1, ServiceID: ptr.Ptr(int64(10))}
}

func bulkRequest(slotIDs ...int64) *Request {
	return &Request{
		TenantID:      1,
		ServiceID:     10,
		SlotIDs:       slotIDs,
		CustomerName:  "Ivan Sidorov",
		CustomerEmail: "ivan@example.com",
		AdultCount:    len(slotIDs),
		TotalPrice:    float64(300 * len(slotIDs)),
	}
}

func TestExecute_Bulk_Success(t *testing.T) {
	e := newEnv()
	e.addSlot(100, 5, "10:00", "11:00")
	e.addSlot(200, 5, "11:00", "12:00")

	req := bulkRequest(100, 200)
	req.AdultCount = 1
	req.ChildCount = 1

	resp, err := e.uc.Execute(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, resp.Bookings, 2)

	// Все строки делят группу и билет
	for _, b := range resp.Bookings {
		require.NotNil(t, b.BookingGroupID)
		assert.Equal(t, resp.BookingGroupID, *b.BookingGroupID)
		assert.Equal(t, resp.TicketCode, b.TicketCode)
		assert.Equal(t, 1, b.VisitorCount)
		assert.Equal(t, 1, b.ReservedUnits)
		assert.Equal(t, 300.0, b.TotalPrice)
	}

	// Первая позиция взрослая, вторая детская
	assert.Equal(t, 1, resp.Bookings[0].AdultCount)
	assert.Equal(t, 0, resp.Bookings[0].ChildCount)
	assert.Equal(t, 0, resp.Bookings[1].AdultCount)
	assert.Equal(t, 1, resp.Bookings[1].ChildCount)

	// Каждый слот удерживает ровно одно место
	assert.Equal(t, 4, e.slots.slots[100].AvailableCapacity)
	assert.Equal(t, 4, e.slots.slots[200].AvailableCapacity)

	// Одно событие на всю группу
	require.Len(t, e.outbox.events, 1)
	assert.Equal(t, resp.BookingGroupID, e.outbox.events[0].BookingGroupID)
}

func TestExecute_Bulk_DuplicateSlotRejected(t *testing.T) {
	e := newEnv()
	e.addSlot(100, 5, "10:00", "11:00")

	req := bulkRequest(100, 100)
	_, err := e.uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrDuplicateSlot)

	// Счётчики не тронуты
	assert.Equal(t, 5, e.slots.slots[100].AvailableCapacity)
	assert.Empty(t, e.bookings.created)
}

func TestExecute_Bulk_AllOrNothing(t *testing.T) {
	e := newEnv()
	e.addSlot(100, 5, "10:00", "11:00")
	e.addSlot(200, 0, "11:00", "12:00") // мест нет

	_, err := e.uc.Execute(context.Background(), bulkRequest(100, 200))
	assert.ErrorIs(t, err, ErrInsufficientCapacity)

	// Слот A не удержан, хотя у него ёмкость была
	assert.Equal(t, 5, e.slots.slots[100].AvailableCapacity)
	assert.Equal(t, 0, e.slots.slots[100].BookedCount)
	assert.Empty(t, e.bookings.created)
	assert.Empty(t, e.outbox.events)
}

func TestExecute_Bulk_EmployeeFailureReleasesEverything(t *testing.T) {
	e := newEnv()
	e.addSlot(100, 5, "10:00", "11:00")
	e.addSlot(200, 5, "11:00", "12:00")
	e.settings.settings = &domain.TenantSettings{
		TenantID:         1,
		SchedulingMode:   domain.ModeEmployeeBased,
		AssignmentPolicy: domain.PolicyAutoRotate,
	}
	e.resolver.err = assignment.ErrNoEligibleEmployees

	_, err := e.uc.Execute(context.Background(), bulkRequest(100, 200))
	assert.ErrorIs(t, err, ErrEmployeeUnavailable)

	assert.Equal(t, 5, e.slots.slots[100].AvailableCapacity)
	assert.Equal(t, 5, e.slots.slots[200].AvailableCapacity)
	assert.Empty(t, e.bookings.created)
}

func TestExecute_Bulk_PerSlotEmployeeResolution(t *testing.T) {
	e := newEnv()
	e.addSlot(100, 5, "10:00", "11:00")
	e.addSlot(200, 5, "10:00", "11:00") // то же окно, другой слот
	e.settings.settings = &domain.TenantSettings{
		TenantID:         1,
		SchedulingMode:   domain.ModeEmployeeBased,
		AssignmentPolicy: domain.PolicyAutoRotate,
	}
	e.resolver.ids = []int64{7, 8}

	resp, err := e.uc.Execute(context.Background(), bulkRequest(100, 200))
	require.NoError(t, err)

	// Резолвер вызван на каждую позицию отдельно
	require.Len(t, e.resolver.requests, 2)
	require.NotNil(t, resp.Bookings[0].EmployeeID)
	require.NotNil(t, resp.Bookings[1].EmployeeID)
	assert.Equal(t, int64(7), *resp.Bookings[0].EmployeeID)
	assert.Equal(t, int64(8), *resp.Bookings[1].EmployeeID)
}

func TestExecute_Bulk_TooManySlots(t *testing.T) {
	e := newEnv()
	ids := make([]int64, domain.MaxBulkSlots+1)
	for i := range ids {
		ids[i] = int64(i + 1)
	}
	_, err := e.uc.Execute(context.Background(), bulkRequest(ids...))
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestExecute_Bulk_CountsMustMatchSlots(t *testing.T) {
	e := newEnv()
	e.addSlot(100, 5, "10:00", "11:00")

	req := bulkRequest(100)
	req.AdultCount = 2
	_, err := e.uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrInvalidInput)
}
