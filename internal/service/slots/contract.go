package slots

import (
	"context"
	"time"

	"github.com/vkotlyarr/VF-BookingEngine/internal/domain"
)

// SlotRepository интерфейс репозитория слотов
type SlotRepository interface {
	Create(ctx context.Context, s *domain.Slot) (*domain.Slot, error)
	ListByFilter(ctx context.Context, filter domain.SlotsFilter) ([]*domain.Slot, error)
	ListByShiftAndDates(ctx context.Context, shiftID int64, dateFrom, dateTo time.Time) ([]*domain.Slot, error)
	SetAvailability(ctx context.Context, slotID int64, available bool) error
	GetByID(ctx context.Context, id int64) (*domain.Slot, error)
}

// ShiftRepository интерфейс репозитория смен
type ShiftRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Shift, error)
	ListByService(ctx context.Context, tenantID, serviceID int64) ([]*domain.Shift, error)
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
