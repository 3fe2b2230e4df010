package cancel_booking

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vkotlyarr/VF-BookingEngine/internal/domain"
	bookingRepo "github.com/vkotlyarr/VF-BookingEngine/internal/infra/storage/booking"
	slotRepo "github.com/vkotlyarr/VF-BookingEngine/internal/infra/storage/slot"
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

func (f *fakeBookingRepo) UpdateStatus(_ context.Context, id int64, status domain.BookingStatus) error {
	f.bookings[id].Status = status
	return nil
}

type fakeSlotRepo struct {
	slots    map[int64]*domain.Slot
	released []int // units per Release call
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

func newFixture(status domain.BookingStatus) (*UseCase, *fakeBookingRepo, *fakeSlotRepo) {
	bookings := &fakeBookingRepo{bookings: map[int64]*domain.Booking{
		1: {ID: 1, TenantID: 1, SlotID: 100, ReservedUnits: 3, Status: status},
	}}
	slots := &fakeSlotRepo{slots: map[int64]*domain.Slot{
		100: {ID: 100, OriginalCapacity: 10, AvailableCapacity: 7, BookedCount: 3, IsAvailable: true},
	}}
	uc := NewUseCase(bookings, slots, fakeTxManager{}, nopLogger{})
	return uc, bookings, slots
}

func TestExecute_Cancel_ReleasesCapacity(t *testing.T) {
	uc, bookings, slots := newFixture(domain.StatusPending)

	resp, err := uc.Execute(context.Background(), &Request{BookingID: 1, TenantID: 1})
	require.NoError(t, err)
	assert.False(t, resp.AlreadyCancelled)
	assert.Equal(t, domain.StatusCancelled, resp.Booking.Status)
	assert.Equal(t, domain.StatusCancelled, bookings.bookings[1].Status)

	// Ровно ReservedUnits мест вернулось в слот
	assert.Equal(t, 10, slots.slots[100].AvailableCapacity)
	assert.Equal(t, 0, slots.slots[100].BookedCount)
	assert.Equal(t, []int{3}, slots.released)
}

func TestExecute_Cancel_Confirmed(t *testing.T) {
	uc, _, slots := newFixture(domain.StatusConfirmed)

	_, err := uc.Execute(context.Background(), &Request{BookingID: 1, TenantID: 1})
	require.NoError(t, err)
	assert.Equal(t, 10, slots.slots[100].AvailableCapacity)
}

func TestExecute_Cancel_RepeatIsIdempotent(t *testing.T) {
	uc, _, slots := newFixture(domain.StatusPending)

	_, err := uc.Execute(context.Background(), &Request{BookingID: 1, TenantID: 1})
	require.NoError(t, err)

	resp, err := uc.Execute(context.Background(), &Request{BookingID: 1, TenantID: 1})
	require.NoError(t, err)
	assert.True(t, resp.AlreadyCancelled)

	// Места возвращены ровно один раз
	assert.Equal(t, []int{3}, slots.released)
	assert.Equal(t, 10, slots.slots[100].AvailableCapacity)
}

func TestExecute_Cancel_CompletedNotCancellable(t *testing.T) {
	uc, _, slots := newFixture(domain.StatusCompleted)

	_, err := uc.Execute(context.Background(), &Request{BookingID: 1, TenantID: 1})
	assert.ErrorIs(t, err, ErrNotCancellable)
	assert.Empty(t, slots.released)
}

func TestExecute_Cancel_WrongTenant(t *testing.T) {
	uc, _, _ := newFixture(domain.StatusPending)

	_, err := uc.Execute(context.Background(), &Request{BookingID: 1, TenantID: 42})
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestExecute_Cancel_NotFound(t *testing.T) {
	uc, _, _ := newFixture(domain.StatusPending)

	_, err := uc.Execute(context.Background(), &Request{BookingID: 99, TenantID: 1})
	assert.ErrorIs(t, err, ErrBookingNotFound)
}
