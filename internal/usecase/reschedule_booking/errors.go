package reschedule_booking

import "errors"

var (
	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("reschedule_booking: invalid input data")

	// ErrBookingNotFound возвращается, когда бронирование не найдено
	ErrBookingNotFound = errors.New("reschedule_booking: booking not found")

	// ErrNotReschedulable возвращается для отменённых и завершённых бронирований
	ErrNotReschedulable = errors.New("reschedule_booking: booking cannot be rescheduled")

	// ErrSameSlot возвращается при попытке перенести бронирование в его же слот
	ErrSameSlot = errors.New("reschedule_booking: new slot matches the current one")

	// ErrSlotNotFound возвращается, когда новый слот не найден
	ErrSlotNotFound = errors.New("reschedule_booking: slot not found")

	// ErrSlotMismatch возвращается, когда новый слот не принадлежит
	// тенанту или услуге бронирования
	ErrSlotMismatch = errors.New("reschedule_booking: slot does not belong to tenant or service")

	// ErrSlotUnavailable возвращается, когда новый слот закрыт
	ErrSlotUnavailable = errors.New("reschedule_booking: slot is not available")

	// ErrInsufficientCapacity возвращается, когда в новом слоте не хватает мест
	// Бронирование при этом остаётся в старом слоте нетронутым
	ErrInsufficientCapacity = errors.New("reschedule_booking: insufficient slot capacity")

	// ErrEmployeeUnavailable возвращается, когда под новое окно
	// не удалось назначить сотрудника
	ErrEmployeeUnavailable = errors.New("reschedule_booking: employee unavailable")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("reschedule_booking: internal error")
)
