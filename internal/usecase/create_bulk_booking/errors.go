package create_bulk_booking

import "errors"

var (
	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("create_bulk_booking: invalid input data")

	// ErrDuplicateSlot возвращается, когда один слот указан в запросе дважды
	ErrDuplicateSlot = errors.New("create_bulk_booking: duplicate slot in request")

	// ErrSlotNotFound возвращается, когда хотя бы один слот не найден
	ErrSlotNotFound = errors.New("create_bulk_booking: slot not found")

	// ErrSlotMismatch возвращается, когда слот не принадлежит
	// указанным тенанту или услуге
	ErrSlotMismatch = errors.New("create_bulk_booking: slot does not belong to tenant or service")

	// ErrSlotUnavailable возвращается, когда хотя бы один слот закрыт
	ErrSlotUnavailable = errors.New("create_bulk_booking: slot is not available")

	// ErrInsufficientCapacity возвращается, когда хотя бы в одном слоте нет мест
	// Ни одно место из набора при этом не удерживается
	ErrInsufficientCapacity = errors.New("create_bulk_booking: insufficient slot capacity")

	// ErrEmployeeUnavailable возвращается, когда хотя бы для одного слота
	// не удалось назначить сотрудника
	ErrEmployeeUnavailable = errors.New("create_bulk_booking: employee unavailable")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("create_bulk_booking: internal error")
)
