package create_booking

import "github.com/vkotlyarr/VF-BookingEngine/internal/domain"

// Request запрос на создание одиночного бронирования
type Request struct {
	TenantID  int64
	ServiceID int64
	SlotID    int64

	CustomerName  string
	CustomerEmail string
	CustomerPhone *string

	VisitorCount int
	AdultCount   int
	ChildCount   int
	TotalPrice   float64

	Notes *string

	// EmployeeID задаётся при ручном выборе сотрудника.
	// В service_based режиме игнорируется
	EmployeeID *int64
}

// Response результат создания бронирования
type Response struct {
	Booking *domain.Booking
}
