package worker

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vkotlyarr/VF-BookingEngine/internal/domain"
	"github.com/vkotlyarr/VF-BookingEngine/internal/integrations/invoiceservice"
	"github.com/vkotlyarr/VF-BookingEngine/internal/integrations/notifyservice"
)

type fakeOutboxRepo struct {
	events []*domain.OutboxEvent
}

func (f *fakeOutboxRepo) ClaimPending(_ context.Context, limit, maxAttempts int) ([]*domain.OutboxEvent, error) {
	var out []*domain.OutboxEvent
	for _, e := range f.events {
		if e.Status == domain.EventStatusPending && e.Attempts < maxAttempts && len(out) < limit {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeOutboxRepo) MarkSent(_ context.Context, id int64) error {
	for _, e := range f.events {
		if e.ID == id {
			e.Status = domain.EventStatusSent
		}
	}
	return nil
}

func (f *fakeOutboxRepo) MarkAttempt(_ context.Context, id int64, attemptErr string, maxAttempts int) error {
	for _, e := range f.events {
		if e.ID == id {
			e.Attempts++
			e.LastError = &attemptErr
			if e.Attempts >= maxAttempts {
				e.Status = domain.EventStatusFailed
			}
		}
	}
	return nil
}

type fakeBookingRepo struct {
	invoiceRefs map[string]string
}

func (f *fakeBookingRepo) SetInvoiceRef(_ context.Context, groupID, ref string) error {
	f.invoiceRefs[groupID] = ref
	return nil
}

type fakeInvoiceClient struct {
	calls []string
	err   error
}

func (f *fakeInvoiceClient) CreateInvoice(_ context.Context, req *invoiceservice.CreateInvoiceRequest) (*invoiceservice.CreateInvoiceResponse, error) {
	f.calls = append(f.calls, req.BookingGroupID)
	if f.err != nil {
		return nil, f.err
	}
	return &invoiceservice.CreateInvoiceResponse{InvoiceRef: "INV-" + req.BookingGroupID}, nil
}

type fakeNotifyClient struct {
	sent []*notifyservice.Notification
}

func (f *fakeNotifyClient) Send(_ context.Context, n *notifyservice.Notification) error {
	f.sent = append(f.sent, n)
	return nil
}

type fakeTxManager struct{}

func (fakeTxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func createdEvent(id int64, group string) *domain.OutboxEvent {
	payload, _ := json.Marshal(domain.BookingCreatedPayload{
		BookingGroupID: group,
		BookingIDs:     []int64{id},
		TenantID:       1,
		CustomerEmail:  "anna@example.com",
		VisitorTotal:   2,
		AmountTotal:    500,
		TicketCode:     domain.NewTicketCode(),
	})
	return &domain.OutboxEvent{
		ID:             id,
		EventType:      domain.EventBookingCreated,
		TenantID:       1,
		BookingGroupID: group,
		Payload:        payload,
		Status:         domain.EventStatusPending,
	}
}

func newFixture(events ...*domain.OutboxEvent) (*Dispatcher, *fakeOutboxRepo, *fakeBookingRepo, *fakeInvoiceClient, *fakeNotifyClient) {
	outbox := &fakeOutboxRepo{events: events}
	bookings := &fakeBookingRepo{invoiceRefs: map[string]string{}}
	invoices := &fakeInvoiceClient{}
	notify := &fakeNotifyClient{}
	d := NewDispatcher(outbox, bookings, invoices, notify, fakeTxManager{}, nopLogger{},
		time.Second, 10, 3)
	return d, outbox, bookings, invoices, notify
}

func TestProcessBatch_DeliversCreatedEvent(t *testing.T) {
	d, outbox, bookings, invoices, notify := newFixture(createdEvent(1, "group-1"))

	require.NoError(t, d.ProcessBatch(context.Background()))

	assert.Equal(t, []string{"group-1"}, invoices.calls)
	assert.Equal(t, "INV-group-1", bookings.invoiceRefs["group-1"])
	require.Len(t, notify.sent, 1)
	assert.Equal(t, "booking_created", notify.sent[0].Kind)
	assert.Equal(t, domain.EventStatusSent, outbox.events[0].Status)
}

func TestProcessBatch_InvoiceOncePerGroup(t *testing.T) {
	d, _, _, invoices, _ := newFixture(createdEvent(1, "group-1"))

	require.NoError(t, d.ProcessBatch(context.Background()))
	require.NoError(t, d.ProcessBatch(context.Background()))

	// Доставленное событие второй раз не забирается
	assert.Equal(t, []string{"group-1"}, invoices.calls)
}

func TestProcessBatch_FailureRetriesThenFails(t *testing.T) {
	d, outbox, _, invoices, notify := newFixture(createdEvent(1, "group-1"))
	invoices.err = assert.AnError

	for i := 0; i < 3; i++ {
		require.NoError(t, d.ProcessBatch(context.Background()))
	}

	assert.Equal(t, 3, outbox.events[0].Attempts)
	assert.Equal(t, domain.EventStatusFailed, outbox.events[0].Status)
	assert.Empty(t, notify.sent)

	// После перевода в failed событие больше не забирается
	require.NoError(t, d.ProcessBatch(context.Background()))
	assert.Len(t, invoices.calls, 3)
}

func TestProcessBatch_RescheduledSkipsInvoice(t *testing.T) {
	payload, _ := json.Marshal(domain.BookingRescheduledPayload{
		BookingGroupID: "group-1",
		BookingID:      1,
		TenantID:       1,
		CustomerEmail:  "anna@example.com",
		NewSlotID:      200,
		TicketCode:     domain.NewTicketCode(),
	})
	event := &domain.OutboxEvent{
		ID:             1,
		EventType:      domain.EventBookingRescheduled,
		TenantID:       1,
		BookingGroupID: "group-1",
		Payload:        payload,
		Status:         domain.EventStatusPending,
	}
	d, outbox, bookings, invoices, notify := newFixture(event)

	require.NoError(t, d.ProcessBatch(context.Background()))

	// Счёт не перевыставляется, уходит только уведомление
	assert.Empty(t, invoices.calls)
	assert.Empty(t, bookings.invoiceRefs)
	require.Len(t, notify.sent, 1)
	assert.Equal(t, "booking_rescheduled", notify.sent[0].Kind)
	assert.Equal(t, domain.EventStatusSent, outbox.events[0].Status)
}
