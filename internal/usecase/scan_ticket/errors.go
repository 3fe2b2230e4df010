package scan_ticket

import "errors"

var (
	// ErrMalformedRef возвращается для структурно некорректной ссылки
	// на билет, без обращения к хранилищу
	ErrMalformedRef = errors.New("scan_ticket: malformed ticket reference")

	// ErrTicketNotFound возвращается, когда билет не найден
	ErrTicketNotFound = errors.New("scan_ticket: ticket not found")

	// ErrTicketInactive возвращается для билетов отменённых бронирований
	ErrTicketInactive = errors.New("scan_ticket: ticket is no longer valid")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("scan_ticket: internal error")
)
