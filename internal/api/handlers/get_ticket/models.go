package get_ticket

import (
	"time"

	"github.com/vkotlyarr/VF-BookingEngine/internal/service/tickets"
)

// TicketResponse HTTP response model
type TicketResponse struct {
	TicketCode     string `json:"ticketCode"`
	BookingGroupID string `json:"bookingGroupId"`

	CustomerName string  `json:"customerName"`
	VisitorTotal int     `json:"visitorTotal"`
	AmountTotal  float64 `json:"amountTotal"`

	Scanned   bool    `json:"scanned"`
	ScannedAt *string `json:"scannedAt,omitempty"`
	Cancelled bool    `json:"cancelled"`

	Entries []TicketEntryView `json:"entries"`
}

// TicketEntryView позиция билета
type TicketEntryView struct {
	BookingID int64  `json:"bookingId"`
	SlotDate  string `json:"slotDate"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	Visitors  int    `json:"visitors"`
	Status    string `json:"status"`
}

// FromView конвертирует представление билета в HTTP модель
func FromView(v *tickets.TicketView) *TicketResponse {
	resp := &TicketResponse{
		TicketCode:     v.TicketCode,
		BookingGroupID: v.BookingGroupID,
		CustomerName:   v.CustomerName,
		VisitorTotal:   v.VisitorTotal,
		AmountTotal:    v.AmountTotal,
		Scanned:        v.Scanned,
		Cancelled:      v.Cancelled,
		Entries:        make([]TicketEntryView, 0, len(v.Entries)),
	}
	if v.ScannedAt != nil {
		scannedAt := v.ScannedAt.Format(time.RFC3339)
		resp.ScannedAt = &scannedAt
	}
	for _, e := range v.Entries {
		resp.Entries = append(resp.Entries, TicketEntryView{
			BookingID: e.BookingID,
			SlotDate:  e.SlotDate.Format("2006-01-02"),
			StartTime: string(e.StartTime),
			EndTime:   string(e.EndTime),
			Visitors:  e.Visitors,
			Status:    string(e.Status),
		})
	}
	return resp
}
