package tickets

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vkotlyarr/VF-BookingEngine/internal/domain"
	bookingRepo "github.com/vkotlyarr/VF-BookingEngine/internal/infra/storage/booking"
	"github.com/vkotlyarr/VF-BookingEngine/pkg/types"
)

type fakeBookingRepo struct {
	bookings []*domain.Booking
}

func (f *fakeBookingRepo) GetByTicketCode(_ context.Context, code string) (*domain.Booking, error) {
	for _, b := range f.bookings {
		if b.TicketCode == code {
			return b, nil
		}
	}
	return nil, bookingRepo.ErrBookingNotFound
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

type fakeSlotRepo struct {
	slots map[int64]*domain.Slot
}

func (f *fakeSlotRepo) GetByID(_ context.Context, id int64) (*domain.Slot, error) {
	s, ok := f.slots[id]
	if !ok {
		return nil, assert.AnError
	}
	return s, nil
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func newFixture() (*Service, string) {
	code := domain.NewTicketCode()
	group := "group-1"
	bookings := &fakeBookingRepo{bookings: []*domain.Booking{
		{ID: 1, TenantID: 1, SlotID: 100, BookingGroupID: &group, TicketCode: code,
			CustomerName: "Anna", VisitorCount: 1, TotalPrice: 300, Status: domain.StatusConfirmed},
		{ID: 2, TenantID: 1, SlotID: 200, BookingGroupID: &group, TicketCode: code,
			CustomerName: "Anna", VisitorCount: 1, TotalPrice: 300, Status: domain.StatusConfirmed},
	}}
	slots := &fakeSlotRepo{slots: map[int64]*domain.Slot{
		100: {ID: 100, SlotDate: time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC),
			StartTime: types.TimeString("10:00"), EndTime: types.TimeString("11:00")},
		200: {ID: 200, SlotDate: time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC),
			StartTime: types.TimeString("11:00"), EndTime: types.TimeString("12:00")},
	}}
	return NewService(bookings, slots, nopLogger{}), code
}

func TestGet_GroupTicket(t *testing.T) {
	svc, code := newFixture()

	view, err := svc.Get(context.Background(), code)
	require.NoError(t, err)
	assert.Equal(t, code, view.TicketCode)
	assert.Equal(t, "group-1", view.BookingGroupID)
	assert.Equal(t, 2, view.VisitorTotal)
	assert.Equal(t, 600.0, view.AmountTotal)
	assert.False(t, view.Cancelled)
	require.Len(t, view.Entries, 2)
	assert.Equal(t, types.TimeString("10:00"), view.Entries[0].StartTime)
}

func TestGet_BareUUIDRef(t *testing.T) {
	svc, code := newFixture()

	view, err := svc.Get(context.Background(), code[len(domain.TicketCodePrefix):])
	require.NoError(t, err)
	assert.Equal(t, code, view.TicketCode)
}

func TestGet_MalformedRef(t *testing.T) {
	svc, _ := newFixture()

	_, err := svc.Get(context.Background(), "gibberish")
	assert.ErrorIs(t, err, ErrMalformedRef)
}

func TestGet_UnknownTicket(t *testing.T) {
	svc, _ := newFixture()

	_, err := svc.Get(context.Background(), domain.NewTicketCode())
	assert.ErrorIs(t, err, ErrTicketNotFound)
}

func TestGet_RescheduledRowExcluded(t *testing.T) {
	svc, code := newFixture()

	// Вторая строка группы перенесена и носит собственный билет
	repo := svc.bookingRepo.(*fakeBookingRepo)
	repo.bookings[1].TicketCode = domain.NewTicketCode()

	view, err := svc.Get(context.Background(), code)
	require.NoError(t, err)
	require.Len(t, view.Entries, 1)
	assert.Equal(t, int64(1), view.Entries[0].BookingID)
}

func TestQRCode_ProducesPNG(t *testing.T) {
	svc, code := newFixture()

	png, err := svc.QRCode(context.Background(), code)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")))
}

func TestPDF_ProducesDocument(t *testing.T) {
	svc, code := newFixture()

	pdf, err := svc.PDF(context.Background(), code)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF")))
}
