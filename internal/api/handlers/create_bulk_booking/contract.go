package create_bulk_booking

import (
	"context"

	createBulkBooking "github.com/vkotlyarr/VF-BookingEngine/internal/usecase/create_bulk_booking"
)

type CreateBulkBookingUseCase interface {
	Execute(ctx context.Context, req *createBulkBooking.Request) (*createBulkBooking.Response, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
