package create_bulk_booking

import (
	"github.com/vkotlyarr/VF-BookingEngine/internal/api/handlers"
	createBulkBooking "github.com/vkotlyarr/VF-BookingEngine/internal/usecase/create_bulk_booking"
)

// CreateBulkBookingRequest HTTP request model
type CreateBulkBookingRequest struct {
	ServiceID int64   `json:"serviceId"`
	SlotIDs   []int64 `json:"slotIds"`

	CustomerName  string  `json:"customerName"`
	CustomerEmail string  `json:"customerEmail"`
	CustomerPhone *string `json:"customerPhone,omitempty"`

	AdultCount int     `json:"adultCount"`
	ChildCount int     `json:"childCount"`
	TotalPrice float64 `json:"totalPrice"`

	Notes      *string `json:"notes,omitempty"`
	EmployeeID *int64  `json:"employeeId,omitempty"`
}

// BulkBookingResponse HTTP response model
type BulkBookingResponse struct {
	BookingGroupID string                  `json:"bookingGroupId"`
	TicketCode     string                  `json:"ticketCode"`
	Bookings       []*handlers.BookingView `json:"bookings"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CreateBulkBookingRequest) ToUseCaseRequest(tenantID int64) *createBulkBooking.Request {
	return &createBulkBooking.Request{
		TenantID:      tenantID,
		ServiceID:     r.ServiceID,
		SlotIDs:       r.SlotIDs,
		CustomerName:  r.CustomerName,
		CustomerEmail: r.CustomerEmail,
		CustomerPhone: r.CustomerPhone,
		AdultCount:    r.AdultCount,
		ChildCount:    r.ChildCount,
		TotalPrice:    r.TotalPrice,
		Notes:         r.Notes,
		EmployeeID:    r.EmployeeID,
	}
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *createBulkBooking.Response) *BulkBookingResponse {
	return &BulkBookingResponse{
		BookingGroupID: resp.BookingGroupID,
		TicketCode:     resp.TicketCode,
		Bookings:       handlers.BookingViewsFromDomain(resp.Bookings),
	}
}
