package scan_ticket

import (
	"time"

	"github.com/vkotlyarr/VF-BookingEngine/internal/domain"
)

// Request запрос на гашение билета сканером
type Request struct {
	TicketRef string
}

// Response результат скана.
// Повторный скан не ошибка транспорта: сканеру нужно показать,
// что билет уже погашен и когда именно
type Response struct {
	Booking *domain.Booking

	// AlreadyScanned true, если билет был погашен ранее
	AlreadyScanned bool

	// ScannedAt момент первого успешного гашения
	ScannedAt time.Time
}
