package get_booking

import (
	"context"

	"github.com/vkotlyarr/VF-BookingEngine/internal/domain"
)

type BookingsService interface {
	GetByID(ctx context.Context, tenantID, bookingID int64) (*domain.Booking, error)
	GetGroup(ctx context.Context, tenantID int64, groupID string) ([]*domain.Booking, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
