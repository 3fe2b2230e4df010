package reschedule_booking

import "github.com/vkotlyarr/VF-BookingEngine/internal/domain"

// Request запрос на перенос бронирования в другой слот
type Request struct {
	BookingID int64
	TenantID  int64
	NewSlotID int64

	// EmployeeID задаётся при ручном выборе сотрудника под новое окно
	EmployeeID *int64
}

// Response результат переноса: бронирование с новым слотом и новым билетом
type Response struct {
	Booking *domain.Booking
}
