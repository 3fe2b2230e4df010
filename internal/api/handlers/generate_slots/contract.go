package generate_slots

import (
	"context"
	"time"

	"github.com/vkotlyarr/VF-BookingEngine/internal/domain"
)

type SlotsService interface {
	GenerateForShift(ctx context.Context, tenantID, shiftID int64, dateFrom, dateTo time.Time) ([]*domain.Slot, error)
	GenerateForService(ctx context.Context, tenantID, serviceID int64, dateFrom, dateTo time.Time) ([]*domain.Slot, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
