package invoiceservice

import "errors"

var (
	// ErrInvalidResponse возвращается при некорректном ответе сервиса счетов
	ErrInvalidResponse = errors.New("invoiceservice: invalid response")

	// ErrInternal возвращается при ошибках выполнения запроса
	ErrInternal = errors.New("invoiceservice: internal error")
)
