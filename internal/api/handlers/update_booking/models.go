package update_booking

import "github.com/vkotlyarr/VF-BookingEngine/internal/domain"

// UpdateBookingRequest частичное обновление бронирования.
// Статус меняется отдельно от контактных полей
type UpdateBookingRequest struct {
	CustomerName  *string  `json:"customerName,omitempty"`
	CustomerEmail *string  `json:"customerEmail,omitempty"`
	CustomerPhone *string  `json:"customerPhone,omitempty"`
	Notes         *string  `json:"notes,omitempty"`
	TotalPrice    *float64 `json:"totalPrice,omitempty"`

	Status *string `json:"status,omitempty"`
}

// ToEdit конвертирует запрос в модель частичного обновления
func (r *UpdateBookingRequest) ToEdit() domain.BookingEdit {
	return domain.BookingEdit{
		CustomerName:  r.CustomerName,
		CustomerEmail: r.CustomerEmail,
		CustomerPhone: r.CustomerPhone,
		Notes:         r.Notes,
		TotalPrice:    r.TotalPrice,
	}
}
