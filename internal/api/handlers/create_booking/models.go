package create_booking

import (
	"github.com/vkotlyarr/VF-BookingEngine/internal/api/handlers"
	createBooking "github.com/vkotlyarr/VF-BookingEngine/internal/usecase/create_booking"
)

// CreateBookingRequest HTTP request model
type CreateBookingRequest struct {
	ServiceID int64 `json:"serviceId"`
	SlotID    int64 `json:"slotId"`

	CustomerName  string  `json:"customerName"`
	CustomerEmail string  `json:"customerEmail"`
	CustomerPhone *string `json:"customerPhone,omitempty"`

	VisitorCount int     `json:"visitorCount"`
	AdultCount   int     `json:"adultCount"`
	ChildCount   int     `json:"childCount"`
	TotalPrice   float64 `json:"totalPrice"`

	Notes      *string `json:"notes,omitempty"`
	EmployeeID *int64  `json:"employeeId,omitempty"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CreateBookingRequest) ToUseCaseRequest(tenantID int64) *createBooking.Request {
	return &createBooking.Request{
		TenantID:      tenantID,
		ServiceID:     r.ServiceID,
		SlotID:        r.SlotID,
		CustomerName:  r.CustomerName,
		CustomerEmail: r.CustomerEmail,
		CustomerPhone: r.CustomerPhone,
		VisitorCount:  r.VisitorCount,
		AdultCount:    r.AdultCount,
		ChildCount:    r.ChildCount,
		TotalPrice:    r.TotalPrice,
		Notes:         r.Notes,
		EmployeeID:    r.EmployeeID,
	}
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *createBooking.Response) *handlers.BookingView {
	return handlers.BookingViewFromDomain(resp.Booking)
}
