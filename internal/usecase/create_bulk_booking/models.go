package create_bulk_booking

import "github.com/vkotlyarr/VF-BookingEngine/internal/domain"

// Request запрос на групповое бронирование: по одному месту в каждом слоте,
// все позиции резервируются атомарно под общим booking_group_id
type Request struct {
	TenantID  int64
	ServiceID int64
	SlotIDs   []int64

	CustomerName  string
	CustomerEmail string
	CustomerPhone *string

	// AdultCount + ChildCount == len(SlotIDs)
	AdultCount int
	ChildCount int

	// TotalPrice цена всей группы, раскладывается по позициям поровну
	TotalPrice float64

	Notes *string

	// EmployeeID задаётся при ручном выборе сотрудника на все позиции
	EmployeeID *int64
}

// Response результат группового бронирования
type Response struct {
	BookingGroupID string
	TicketCode     string
	Bookings       []*domain.Booking
}
