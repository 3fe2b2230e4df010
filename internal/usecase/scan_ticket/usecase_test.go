package scan_ticket

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vkotlyarr/VF-BookingEngine/internal/domain"
	bookingRepo "github.com/vkotlyarr/VF-BookingEngine/internal/infra/storage/booking"
)

// fakeBookingRepo хранит строки списком: групповое бронирование даёт
// несколько строк с общим кодом билета
type fakeBookingRepo struct {
	rows []*domain.Booking
}

// GetByTicketCodeForUpdate повторяет порядок выборки репозитория:
// непогашенные активные строки первыми, затем погашенные,
// отменённые последними, внутри каждой группы по id
func (f *fakeBookingRepo) GetByTicketCodeForUpdate(_ context.Context, code string) (*domain.Booking, error) {
	var best *domain.Booking
	for _, b := range f.rows {
		if b.TicketCode != code {
			continue
		}
		if best == nil || ticketRowLess(b, best) {
			best = b
		}
	}
	if best == nil {
		return nil, bookingRepo.ErrBookingNotFound
	}
	clone := *best
	return &clone, nil
}

func ticketRowLess(a, b *domain.Booking) bool {
	if a.IsCancelled() != b.IsCancelled() {
		return !a.IsCancelled()
	}
	if a.Scanned != b.Scanned {
		return !a.Scanned
	}
	return a.ID < b.ID
}

func (f *fakeBookingRepo) MarkScanned(_ context.Context, id int64, at time.Time) error {
	for _, b := range f.rows {
		if b.ID == id && !b.Scanned {
			b.Scanned = true
			b.ScannedAt = &at
			return nil
		}
	}
	return bookingRepo.ErrBookingNotFound
}

type fakeTxManager struct{}

func (fakeTxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fixedTime struct{ t time.Time }

func (f fixedTime) Now() time.Time { return f.t }

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func newFixture(status domain.BookingStatus) (*UseCase, *fakeBookingRepo, string, time.Time) {
	code := domain.TicketCodePrefix + uuid.NewString()
	repo := &fakeBookingRepo{rows: []*domain.Booking{
		{ID: 1, TenantID: 1, Status: status, TicketCode: code},
	}}
	now := time.Date(2026, 9, 7, 10, 30, 0, 0, time.UTC)
	uc := NewUseCase(repo, fakeTxManager{}, nopLogger{})
	uc.timeProvider = fixedTime{t: now}
	return uc, repo, code, now
}

// newGroupFixture групповое бронирование: несколько строк с общим билетом
func newGroupFixture(statuses ...domain.BookingStatus) (*UseCase, *fakeBookingRepo, string, time.Time) {
	code := domain.TicketCodePrefix + uuid.NewString()
	groupID := uuid.NewString()
	rows := make([]*domain.Booking, 0, len(statuses))
	for i, status := range statuses {
		rows = append(rows, &domain.Booking{
			ID:             int64(i + 1),
			TenantID:       1,
			Status:         status,
			TicketCode:     code,
			BookingGroupID: &groupID,
		})
	}
	repo := &fakeBookingRepo{rows: rows}
	now := time.Date(2026, 9, 7, 10, 30, 0, 0, time.UTC)
	uc := NewUseCase(repo, fakeTxManager{}, nopLogger{})
	uc.timeProvider = fixedTime{t: now}
	return uc, repo, code, now
}

func TestExecute_Scan_FirstScanSucceeds(t *testing.T) {
	uc, repo, code, now := newFixture(domain.StatusConfirmed)

	resp, err := uc.Execute(context.Background(), &Request{TicketRef: code})
	require.NoError(t, err)
	assert.False(t, resp.AlreadyScanned)
	assert.Equal(t, now, resp.ScannedAt)
	assert.True(t, repo.rows[0].Scanned)
}

func TestExecute_Scan_SecondScanReportsOriginalTimestamp(t *testing.T) {
	uc, _, code, now := newFixture(domain.StatusConfirmed)

	_, err := uc.Execute(context.Background(), &Request{TicketRef: code})
	require.NoError(t, err)

	// Повторный скан позже: отдаётся метка первого гашения
	uc.timeProvider = fixedTime{t: now.Add(time.Hour)}
	resp, err := uc.Execute(context.Background(), &Request{TicketRef: code})
	require.NoError(t, err)
	assert.True(t, resp.AlreadyScanned)
	assert.Equal(t, now, resp.ScannedAt)
}

func TestExecute_Scan_BareUUIDAccepted(t *testing.T) {
	uc, _, code, _ := newFixture(domain.StatusConfirmed)

	bare := code[len(domain.TicketCodePrefix):]
	resp, err := uc.Execute(context.Background(), &Request{TicketRef: bare})
	require.NoError(t, err)
	assert.False(t, resp.AlreadyScanned)
}

func TestExecute_Scan_MalformedRefRejectedBeforeLookup(t *testing.T) {
	uc, _, _, _ := newFixture(domain.StatusConfirmed)

	for _, ref := range []string{"", "not-a-ticket", "VFT-", "VFT-123", "'; DROP TABLE bookings;--"} {
		_, err := uc.Execute(context.Background(), &Request{TicketRef: ref})
		assert.ErrorIs(t, err, ErrMalformedRef, "ref %q", ref)
	}
}

func TestExecute_Scan_UnknownTicket(t *testing.T) {
	uc, _, _, _ := newFixture(domain.StatusConfirmed)

	_, err := uc.Execute(context.Background(), &Request{TicketRef: domain.NewTicketCode()})
	assert.ErrorIs(t, err, ErrTicketNotFound)
}

func TestExecute_Scan_CancelledBookingTicket(t *testing.T) {
	uc, repo, code, _ := newFixture(domain.StatusCancelled)

	_, err := uc.Execute(context.Background(), &Request{TicketRef: code})
	assert.ErrorIs(t, err, ErrTicketInactive)
	assert.False(t, repo.rows[0].Scanned)
}

func TestExecute_Scan_GroupTicketAdmitsOneVisitorPerScan(t *testing.T) {
	uc, repo, code, now := newGroupFixture(domain.StatusConfirmed, domain.StatusConfirmed)

	// Первый скан гасит первую строку группы
	resp, err := uc.Execute(context.Background(), &Request{TicketRef: code})
	require.NoError(t, err)
	assert.False(t, resp.AlreadyScanned)
	assert.Equal(t, int64(1), resp.Booking.ID)
	assert.True(t, repo.rows[0].Scanned)
	assert.False(t, repo.rows[1].Scanned)

	// Второй скан гасит оставшуюся строку, а не первую повторно
	uc.timeProvider = fixedTime{t: now.Add(time.Minute)}
	resp, err = uc.Execute(context.Background(), &Request{TicketRef: code})
	require.NoError(t, err)
	assert.False(t, resp.AlreadyScanned)
	assert.Equal(t, int64(2), resp.Booking.ID)
	assert.True(t, repo.rows[1].Scanned)
}

func TestExecute_Scan_GroupTicketExhaustedReportsFirstTimestamp(t *testing.T) {
	uc, _, code, now := newGroupFixture(domain.StatusConfirmed, domain.StatusConfirmed)

	_, err := uc.Execute(context.Background(), &Request{TicketRef: code})
	require.NoError(t, err)

	uc.timeProvider = fixedTime{t: now.Add(time.Minute)}
	_, err = uc.Execute(context.Background(), &Request{TicketRef: code})
	require.NoError(t, err)

	// Все строки группы погашены: повторный скан отдаёт метку
	// самого раннего гашения
	uc.timeProvider = fixedTime{t: now.Add(time.Hour)}
	resp, err := uc.Execute(context.Background(), &Request{TicketRef: code})
	require.NoError(t, err)
	assert.True(t, resp.AlreadyScanned)
	assert.Equal(t, now, resp.ScannedAt)
}

func TestExecute_Scan_GroupTicketSkipsCancelledRow(t *testing.T) {
	uc, repo, code, _ := newGroupFixture(domain.StatusCancelled, domain.StatusConfirmed)

	// Отменённая строка группы не гасится и не блокирует активную
	resp, err := uc.Execute(context.Background(), &Request{TicketRef: code})
	require.NoError(t, err)
	assert.False(t, resp.AlreadyScanned)
	assert.Equal(t, int64(2), resp.Booking.ID)
	assert.False(t, repo.rows[0].Scanned)
	assert.True(t, repo.rows[1].Scanned)

	// Активных непогашенных не осталось: следующий скан видит
	// погашенную строку, а не отменённую
	resp, err = uc.Execute(context.Background(), &Request{TicketRef: code})
	require.NoError(t, err)
	assert.True(t, resp.AlreadyScanned)
}
