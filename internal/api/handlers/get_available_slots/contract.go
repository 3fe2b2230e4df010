package get_available_slots

import (
	"context"

	"github.com/vkotlyarr/VF-BookingEngine/internal/domain"
)

type SlotsService interface {
	ListAvailable(ctx context.Context, filter domain.SlotsFilter) ([]*domain.Slot, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
