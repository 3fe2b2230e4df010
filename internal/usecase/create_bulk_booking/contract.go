package create_bulk_booking

import (
	"context"

	"github.com/vkotlyarr/VF-BookingEngine/internal/domain"
	"github.com/vkotlyarr/VF-BookingEngine/internal/service/assignment"
)

// SlotRepository интерфейс репозитория слотов
type SlotRepository interface {
	ReserveMany(ctx context.Context, reservations []domain.SlotReservation) ([]*domain.Slot, error)
}

// ShiftRepository интерфейс репозитория смен
type ShiftRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Shift, error)
}

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error)
}

// SettingsRepository интерфейс репозитория настроек тенанта
type SettingsRepository interface {
	GetByTenant(ctx context.Context, tenantID int64) (*domain.TenantSettings, error)
}

// OutboxRepository интерфейс репозитория исходящих событий
type OutboxRepository interface {
	Create(ctx context.Context, event *domain.OutboxEvent) (*domain.OutboxEvent, error)
}

// AssignmentResolver интерфейс резолвера назначения сотрудников
type AssignmentResolver interface {
	Resolve(ctx context.Context, req *assignment.Request) (int64, error)
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
