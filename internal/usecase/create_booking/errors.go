package create_booking

import "errors"

var (
	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("create_booking: invalid input data")

	// ErrSlotNotFound возвращается, когда слот не найден
	ErrSlotNotFound = errors.New("create_booking: slot not found")

	// ErrSlotMismatch возвращается, когда слот не принадлежит
	// указанным тенанту или услуге
	ErrSlotMismatch = errors.New("create_booking: slot does not belong to tenant or service")

	// ErrSlotUnavailable возвращается, когда слот закрыт для бронирования
	ErrSlotUnavailable = errors.New("create_booking: slot is not available")

	// ErrInsufficientCapacity возвращается, когда в слоте не хватает мест
	ErrInsufficientCapacity = errors.New("create_booking: insufficient slot capacity")

	// ErrEmployeeUnavailable возвращается, когда не удалось назначить сотрудника
	ErrEmployeeUnavailable = errors.New("create_booking: employee unavailable")

	// ErrInternal возвращается при внутренних ошибках usecase
	// Ёмкость, зарезервированная до сбоя, возвращается откатом транзакции
	ErrInternal = errors.New("create_booking: internal error")
)
