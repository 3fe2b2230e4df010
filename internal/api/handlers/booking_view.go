package handlers

import (
	"time"

	"github.com/vkotlyarr/VF-BookingEngine/internal/domain"
)

// BookingView HTTP-представление бронирования, общее для всех ручек
type BookingView struct {
	ID             int64   `json:"id"`
	TenantID       int64   `json:"tenantId"`
	ServiceID      int64   `json:"serviceId"`
	SlotID         int64   `json:"slotId"`
	EmployeeID     *int64  `json:"employeeId,omitempty"`
	BookingGroupID *string `json:"bookingGroupId,omitempty"`

	CustomerName  string  `json:"customerName"`
	CustomerEmail string  `json:"customerEmail"`
	CustomerPhone *string `json:"customerPhone,omitempty"`

	VisitorCount int     `json:"visitorCount"`
	AdultCount   int     `json:"adultCount"`
	ChildCount   int     `json:"childCount"`
	TotalPrice   float64 `json:"totalPrice"`

	Status string  `json:"status"`
	Notes  *string `json:"notes,omitempty"`

	TicketCode string     `json:"ticketCode"`
	Scanned    bool       `json:"scanned"`
	ScannedAt  *string    `json:"scannedAt,omitempty"`
	InvoiceRef *string    `json:"invoiceRef,omitempty"`

	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

// BookingViewFromDomain конвертирует доменную модель в HTTP-представление
func BookingViewFromDomain(b *domain.Booking) *BookingView {
	view := &BookingView{
		ID:             b.ID,
		TenantID:       b.TenantID,
		ServiceID:      b.ServiceID,
		SlotID:         b.SlotID,
		EmployeeID:     b.EmployeeID,
		BookingGroupID: b.BookingGroupID,
		CustomerName:   b.CustomerName,
		CustomerEmail:  b.CustomerEmail,
		CustomerPhone:  b.CustomerPhone,
		VisitorCount:   b.VisitorCount,
		AdultCount:     b.AdultCount,
		ChildCount:     b.ChildCount,
		TotalPrice:     b.TotalPrice,
		Status:         string(b.Status),
		Notes:          b.Notes,
		TicketCode:     b.TicketCode,
		Scanned:        b.Scanned,
		InvoiceRef:     b.InvoiceRef,
		CreatedAt:      b.CreatedAt.Format(time.RFC3339),
		UpdatedAt:      b.UpdatedAt.Format(time.RFC3339),
	}
	if b.ScannedAt != nil {
		s := b.ScannedAt.Format(time.RFC3339)
		view.ScannedAt = &s
	}
	return view
}

// BookingViewsFromDomain конвертирует список бронирований
func BookingViewsFromDomain(bookings []*domain.Booking) []*BookingView {
	views := make([]*BookingView, 0, len(bookings))
	for _, b := range bookings {
		views = append(views, BookingViewFromDomain(b))
	}
	return views
}
