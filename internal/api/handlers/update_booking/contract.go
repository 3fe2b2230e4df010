package update_booking

import (
	"context"

	"github.com/vkotlyarr/VF-BookingEngine/internal/domain"
)

type BookingsService interface {
	Update(ctx context.Context, tenantID, bookingID int64, edit domain.BookingEdit) (*domain.Booking, error)
	UpdateStatus(ctx context.Context, tenantID, bookingID int64, next domain.BookingStatus) (*domain.Booking, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
