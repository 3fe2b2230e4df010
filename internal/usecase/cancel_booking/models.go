package cancel_booking

import "github.com/vkotlyarr/VF-BookingEngine/internal/domain"

// Request запрос на отмену бронирования
type Request struct {
	BookingID int64
	TenantID  int64
}

// Response результат отмены
type Response struct {
	Booking *domain.Booking

	// AlreadyCancelled true, если бронирование было отменено ранее:
	// повторная отмена идемпотентна и мест не возвращает
	AlreadyCancelled bool
}
