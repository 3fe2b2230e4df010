package get_ticket

import (
	"context"

	"github.com/vkotlyarr/VF-BookingEngine/internal/service/tickets"
)

type TicketsService interface {
	Get(ctx context.Context, ref string) (*tickets.TicketView, error)
	QRCode(ctx context.Context, ref string) ([]byte, error)
	PDF(ctx context.Context, ref string) ([]byte, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
