package scan_ticket

import (
	"context"

	scanTicket "github.com/vkotlyarr/VF-BookingEngine/internal/usecase/scan_ticket"
)

type ScanTicketUseCase interface {
	Execute(ctx context.Context, req *scanTicket.Request) (*scanTicket.Response, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
