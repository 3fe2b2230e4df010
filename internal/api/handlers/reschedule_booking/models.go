package reschedule_booking

import (
	rescheduleBooking "github.com/vkotlyarr/VF-BookingEngine/internal/usecase/reschedule_booking"
)

// RescheduleBookingRequest HTTP request model
type RescheduleBookingRequest struct {
	NewSlotID  int64  `json:"newSlotId"`
	EmployeeID *int64 `json:"employeeId,omitempty"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *RescheduleBookingRequest) ToUseCaseRequest(tenantID, bookingID int64) *rescheduleBooking.Request {
	return &rescheduleBooking.Request{
		BookingID:  bookingID,
		TenantID:   tenantID,
		NewSlotID:  r.NewSlotID,
		EmployeeID: r.EmployeeID,
	}
}
