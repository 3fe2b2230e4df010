package cancel_booking

import (
	"github.com/vkotlyarr/VF-BookingEngine/internal/api/handlers"
	cancelBooking "github.com/vkotlyarr/VF-BookingEngine/internal/usecase/cancel_booking"
)

// CancelBookingResponse HTTP response model
type CancelBookingResponse struct {
	Booking          *handlers.BookingView `json:"booking"`
	AlreadyCancelled bool                  `json:"alreadyCancelled"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *cancelBooking.Response) *CancelBookingResponse {
	return &CancelBookingResponse{
		Booking:          handlers.BookingViewFromDomain(resp.Booking),
		AlreadyCancelled: resp.AlreadyCancelled,
	}
}
