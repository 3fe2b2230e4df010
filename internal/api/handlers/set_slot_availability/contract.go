package set_slot_availability

import "context"

type SlotsService interface {
	SetAvailability(ctx context.Context, tenantID, slotID int64, available bool) error
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
