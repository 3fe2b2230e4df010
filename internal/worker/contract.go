package worker

import (
	"context"

	"github.com/vkotlyarr/VF-BookingEngine/internal/domain"
	"github.com/vkotlyarr/VF-BookingEngine/internal/integrations/invoiceservice"
	"github.com/vkotlyarr/VF-BookingEngine/internal/integrations/notifyservice"
)

// OutboxRepository интерфейс репозитория исходящих событий
type OutboxRepository interface {
	ClaimPending(ctx context.Context, limit int, maxAttempts int) ([]*domain.OutboxEvent, error)
	MarkSent(ctx context.Context, id int64) error
	MarkAttempt(ctx context.Context, id int64, attemptErr string, maxAttempts int) error
}

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	SetInvoiceRef(ctx context.Context, groupID string, invoiceRef string) error
}

// InvoiceClient интерфейс клиента сервиса счетов
type InvoiceClient interface {
	CreateInvoice(ctx context.Context, req *invoiceservice.CreateInvoiceRequest) (*invoiceservice.CreateInvoiceResponse, error)
}

// NotifyClient интерфейс клиента сервиса уведомлений
type NotifyClient interface {
	Send(ctx context.Context, n *notifyservice.Notification) error
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
