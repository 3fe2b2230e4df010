package get_tenant_bookings

import (
	"context"

	"github.com/vkotlyarr/VF-BookingEngine/internal/domain"
)

type BookingsService interface {
	ListByTenant(ctx context.Context, filter domain.TenantBookingsFilter) ([]*domain.Booking, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
