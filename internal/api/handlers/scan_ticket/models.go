package scan_ticket

import (
	"time"

	scanTicket "github.com/vkotlyarr/VF-BookingEngine/internal/usecase/scan_ticket"
)

// ScanTicketRequest HTTP request model
type ScanTicketRequest struct {
	TicketRef string `json:"ticketRef"`
}

// ScanTicketResponse HTTP response model.
// Повторный скан возвращается со статусом 200 и флагом alreadyScanned:
// сканеру нужен момент первого гашения, а не голая ошибка
type ScanTicketResponse struct {
	TicketCode     string  `json:"ticketCode"`
	CustomerName   string  `json:"customerName"`
	VisitorCount   int     `json:"visitorCount"`
	AlreadyScanned bool    `json:"alreadyScanned"`
	ScannedAt      string  `json:"scannedAt"`
	BookingGroupID *string `json:"bookingGroupId,omitempty"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *scanTicket.Response) *ScanTicketResponse {
	return &ScanTicketResponse{
		TicketCode:     resp.Booking.TicketCode,
		CustomerName:   resp.Booking.CustomerName,
		VisitorCount:   resp.Booking.VisitorCount,
		AlreadyScanned: resp.AlreadyScanned,
		ScannedAt:      resp.ScannedAt.Format(time.RFC3339),
		BookingGroupID: resp.Booking.BookingGroupID,
	}
}
