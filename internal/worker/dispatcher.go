package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/vkotlyarr/VF-BookingEngine/internal/domain"
	"github.com/vkotlyarr/VF-BookingEngine/internal/integrations/invoiceservice"
	"github.com/vkotlyarr/VF-BookingEngine/internal/integrations/notifyservice"
)

// Dispatcher фоновый доставщик outbox-событий.
// События выбираются пачками под FOR UPDATE SKIP LOCKED, так что несколько
// инстансов сервиса не доставляют одно событие дважды. Счёт выставляется
// ровно один раз на booking_group_id: события booking_created пишутся
// по одному на группу, повторная попытка возможна только если прошлая
// не была отмечена sent
type Dispatcher struct {
	outboxRepo  OutboxRepository
	bookingRepo BookingRepository
	invoices    InvoiceClient
	notify      NotifyClient
	txManager   TransactionManager
	logger      Logger

	interval    time.Duration
	batchSize   int
	maxAttempts int

	stopCh chan struct{}
	wg     sync.WaitGroup
}

// NewDispatcher создает диспетчер outbox-событий
func NewDispatcher(
	outboxRepository OutboxRepository,
	bookingRepository BookingRepository,
	invoices InvoiceClient,
	notify NotifyClient,
	txManager TransactionManager,
	logger Logger,
	interval time.Duration,
	batchSize int,
	maxAttempts int,
) *Dispatcher {
	return &Dispatcher{
		outboxRepo:  outboxRepository,
		bookingRepo: bookingRepository,
		invoices:    invoices,
		notify:      notify,
		txManager:   txManager,
		logger:      logger,
		interval:    interval,
		batchSize:   batchSize,
		maxAttempts: maxAttempts,
		stopCh:      make(chan struct{}),
	}
}

// Start запускает фоновый цикл доставки
func (d *Dispatcher) Start() {
	d.wg.Add(1)
	go d.run()
	d.logger.Info("Dispatcher: started (interval=%s, batch=%d)", d.interval, d.batchSize)
}

// Stop останавливает цикл и дожидается завершения текущей пачки
func (d *Dispatcher) Stop() {
	close(d.stopCh)
	d.wg.Wait()
	d.logger.Info("Dispatcher: stopped")
}

func (d *Dispatcher) run() {
	defer d.wg.Done()

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-d.stopCh:
			return
		case <-ticker.C:
			if err := d.ProcessBatch(context.Background()); err != nil {
				d.logger.Error("Dispatcher: batch failed: %v", err)
			}
		}
	}
}

// ProcessBatch забирает и доставляет одну пачку событий.
// Claim и отметки статусов живут в одной транзакции: упавший инстанс
// отпускает блокировки, и события забирает следующий цикл
func (d *Dispatcher) ProcessBatch(ctx context.Context) error {
	return d.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		events, err := d.outboxRepo.ClaimPending(txCtx, d.batchSize, d.maxAttempts)
		if err != nil {
			return fmt.Errorf("claim pending events: %w", err)
		}

		for _, e := range events {
			if err := d.deliver(txCtx, e); err != nil {
				d.logger.Warn("Dispatcher: event id=%d attempt failed: %v", e.ID, err)
				if markErr := d.outboxRepo.MarkAttempt(txCtx, e.ID, err.Error(), d.maxAttempts); markErr != nil {
					return fmt.Errorf("mark attempt for event id=%d: %w", e.ID, markErr)
				}
				continue
			}
			if err := d.outboxRepo.MarkSent(txCtx, e.ID); err != nil {
				return fmt.Errorf("mark sent for event id=%d: %w", e.ID, err)
			}
			d.logger.Info("Dispatcher: event id=%d (%s) delivered", e.ID, e.EventType)
		}
		return nil
	})
}

func (d *Dispatcher) deliver(ctx context.Context, e *domain.OutboxEvent) error {
	switch e.EventType {
	case domain.EventBookingCreated:
		return d.deliverCreated(ctx, e)
	case domain.EventBookingRescheduled:
		return d.deliverRescheduled(ctx, e)
	default:
		return fmt.Errorf("unknown event type %q", e.EventType)
	}
}

// deliverCreated выставляет счёт группы и шлёт уведомление с билетом
func (d *Dispatcher) deliverCreated(ctx context.Context, e *domain.OutboxEvent) error {
	var p domain.BookingCreatedPayload
	if err := json.Unmarshal(e.Payload, &p); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	inv, err := d.invoices.CreateInvoice(ctx, &invoiceservice.CreateInvoiceRequest{
		BookingGroupID: p.BookingGroupID,
		TenantID:       p.TenantID,
		CustomerName:   p.CustomerName,
		CustomerEmail:  p.CustomerEmail,
		VisitorTotal:   p.VisitorTotal,
		AmountTotal:    p.AmountTotal,
	})
	if err != nil {
		return fmt.Errorf("create invoice: %w", err)
	}

	if err := d.bookingRepo.SetInvoiceRef(ctx, p.BookingGroupID, inv.InvoiceRef); err != nil {
		return fmt.Errorf("set invoice ref: %w", err)
	}

	if err := d.notify.Send(ctx, &notifyservice.Notification{
		Kind:           string(domain.EventBookingCreated),
		BookingGroupID: p.BookingGroupID,
		TenantID:       p.TenantID,
		CustomerEmail:  p.CustomerEmail,
		CustomerPhone:  p.CustomerPhone,
		TicketCode:     p.TicketCode,
	}); err != nil {
		return fmt.Errorf("send notification: %w", err)
	}
	return nil
}

// deliverRescheduled переотправляет билет, счёт не трогает
func (d *Dispatcher) deliverRescheduled(ctx context.Context, e *domain.OutboxEvent) error {
	var p domain.BookingRescheduledPayload
	if err := json.Unmarshal(e.Payload, &p); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	if err := d.notify.Send(ctx, &notifyservice.Notification{
		Kind:           string(domain.EventBookingRescheduled),
		BookingGroupID: p.BookingGroupID,
		TenantID:       p.TenantID,
		CustomerEmail:  p.CustomerEmail,
		CustomerPhone:  p.CustomerPhone,
		TicketCode:     p.TicketCode,
	}); err != nil {
		return fmt.Errorf("send notification: %w", err)
	}
	return nil
}
