package bookings

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vkotlyarr/VF-BookingEngine/internal/domain"
	bookingRepo "github.com/vkotlyarr/VF-BookingEngine/internal/infra/storage/booking"
	slotRepo "github.com/vkotlyarr/VF-BookingEngine/internal/infra/storage/slot"
	"github.com/vkotlyarr/VF-BookingEngine/pkg/ptr"
)

type fakeBookingRepo struct {
	bookings map[int64]*domain.Booking
}

func (f *fakeBookingRepo) GetByID(_ context.Context, id int64) (*domain.Booking, error) {
	return f.get(id)
}

func (f *fakeBookingRepo) GetByIDForUpdate(_ context.Context, id int64) (*domain.Booking, error) {
	return f.get(id)
}

func (f *fakeBookingRepo) get(id int64) (*domain.Booking, error) {
	b, ok := f.bookings[id]
	if !ok {
		return nil, bookingRepo.ErrBookingNotFound
	}
	clone := *b
	return &clone, nil
}

func (f *fakeBookingRepo) GetByGroupID(_ context.Context, groupID string) ([]*domain.Booking, error) {
	var out []*domain.Booking
	for _, b := range f.bookings {
		if b.BookingGroupID != nil && *b.BookingGroupID == groupID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeBookingRepo) GetByTenantWithFilter(_ context.Context, filter domain.TenantBookingsFilter) ([]*domain.Booking, error) {
	var out []*domain.Booking
	for _, b := range f.bookings {
		if b.TenantID != filter.TenantID {
			continue
		}
		if !filter.IncludeInactive && filter.Status == nil && !b.IsActive() {
			continue
		}
		if filter.Status != nil && b.Status != *filter.Status {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

func (f *fakeBookingRepo) UpdateFields(_ context.Context, id int64, upd domain.BookingEdit) error {
	applyEdit(f.bookings[id], upd)
	return nil
}

func (f *fakeBookingRepo) UpdateStatus(_ context.Context, id int64, status domain.BookingStatus) error {
	f.bookings[id].Status = status
	return nil
}

type fakeSlotRepo struct {
	slots    map[int64]*domain.Slot
	released []int
}

func (f *fakeSlotRepo) Release(_ context.Context, slotID int64, units int) (*domain.Slot, error) {
	s, ok := f.slots[slotID]
	if !ok {
		return nil, slotRepo.ErrSlotNotFound
	}
	s.BookedCount -= units
	s.AvailableCapacity += units
	f.released = append(f.released, units)
	return s, nil
}

type fakeTxManager struct{}

func (fakeTxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func newFixture() (*Service, *fakeBookingRepo, *fakeSlotRepo) {
	bookings := &fakeBookingRepo{bookings: map[int64]*domain.Booking{
		1: {ID: 1, TenantID: 1, SlotID: 100, ReservedUnits: 2, Status: domain.StatusPending,
			CustomerName: "Anna", CustomerEmail: "anna@example.com", TotalPrice: 500},
	}}
	slots := &fakeSlotRepo{slots: map[int64]*domain.Slot{
		100: {ID: 100, OriginalCapacity: 10, AvailableCapacity: 8, BookedCount: 2, IsAvailable: true},
	}}
	svc := NewService(bookings, slots, fakeTxManager{}, nopLogger{})
	return svc, bookings, slots
}

func TestGetByID_WrongTenantHidden(t *testing.T) {
	svc, _, _ := newFixture()

	_, err := svc.GetByID(context.Background(), 42, 1)
	assert.ErrorIs(t, err, ErrBookingNotFound)

	b, err := svc.GetByID(context.Background(), 1, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), b.ID)
}

func TestUpdate_EditableFields(t *testing.T) {
	svc, bookings, _ := newFixture()

	b, err := svc.Update(context.Background(), 1, 1, domain.BookingEdit{
		CustomerName: ptr.Ptr("Anna Petrova"),
		TotalPrice:   ptr.Ptr(600.0),
	})
	require.NoError(t, err)
	assert.Equal(t, "Anna Petrova", b.CustomerName)
	assert.Equal(t, 600.0, b.TotalPrice)
	assert.Equal(t, "Anna Petrova", bookings.bookings[1].CustomerName)
}

func TestUpdate_NoChanges(t *testing.T) {
	svc, _, _ := newFixture()

	_, err := svc.Update(context.Background(), 1, 1, domain.BookingEdit{})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestUpdate_TerminalBookingRejected(t *testing.T) {
	svc, bookings, _ := newFixture()
	bookings.bookings[1].Status = domain.StatusCompleted

	_, err := svc.Update(context.Background(), 1, 1, domain.BookingEdit{CustomerName: ptr.Ptr("X")})
	assert.ErrorIs(t, err, ErrNotEditable)
}

func TestUpdateStatus_HappyPath(t *testing.T) {
	svc, _, _ := newFixture()

	b, err := svc.UpdateStatus(context.Background(), 1, 1, domain.StatusConfirmed)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusConfirmed, b.Status)

	b, err = svc.UpdateStatus(context.Background(), 1, 1, domain.StatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, b.Status)
}

func TestUpdateStatus_InvalidTransitions(t *testing.T) {
	svc, bookings, _ := newFixture()

	// pending -> completed минует confirmed
	_, err := svc.UpdateStatus(context.Background(), 1, 1, domain.StatusCompleted)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	// из терминального статуса переходов нет
	bookings.bookings[1].Status = domain.StatusCompleted
	_, err = svc.UpdateStatus(context.Background(), 1, 1, domain.StatusConfirmed)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestUpdateStatus_CancelReleasesCapacity(t *testing.T) {
	svc, _, slots := newFixture()

	_, err := svc.UpdateStatus(context.Background(), 1, 1, domain.StatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, []int{2}, slots.released)
	assert.Equal(t, 10, slots.slots[100].AvailableCapacity)
}

func TestUpdateStatus_CompleteKeepsCapacity(t *testing.T) {
	svc, _, slots := newFixture()

	_, err := svc.UpdateStatus(context.Background(), 1, 1, domain.StatusConfirmed)
	require.NoError(t, err)
	_, err = svc.UpdateStatus(context.Background(), 1, 1, domain.StatusCompleted)
	require.NoError(t, err)

	// Завершение не возвращает места: визит состоялся
	assert.Empty(t, slots.released)
	assert.Equal(t, 8, slots.slots[100].AvailableCapacity)
}

func TestListByTenant_ActiveOnlyByDefault(t *testing.T) {
	svc, bookings, _ := newFixture()
	bookings.bookings[2] = &domain.Booking{ID: 2, TenantID: 1, SlotID: 100, Status: domain.StatusCancelled}

	list, err := svc.ListByTenant(context.Background(), domain.TenantBookingsFilter{TenantID: 1})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, int64(1), list[0].ID)

	list, err = svc.ListByTenant(context.Background(), domain.TenantBookingsFilter{TenantID: 1, IncludeInactive: true})
	require.NoError(t, err)
	assert.Len(t, list, 2)
}
