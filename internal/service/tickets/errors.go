package tickets

import "errors"

var (
	// ErrMalformedRef возвращается для структурно некорректной ссылки на билет
	ErrMalformedRef = errors.New("tickets.service: malformed ticket reference")

	// ErrTicketNotFound возвращается, когда билет не найден
	ErrTicketNotFound = errors.New("tickets.service: ticket not found")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("tickets.service: internal error")
)
