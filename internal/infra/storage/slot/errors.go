package slot

import "errors"

var (
	// ErrSlotNotFound возвращается, когда слот не найден
	ErrSlotNotFound = errors.New("slot.repository: slot not found")

	// ErrSlotUnavailable возвращается, когда слот закрыт для бронирования
	ErrSlotUnavailable = errors.New("slot.repository: slot is not available")

	// ErrInsufficientCapacity возвращается, когда в слоте не хватает свободных мест
	ErrInsufficientCapacity = errors.New("slot.repository: insufficient capacity")

	// ErrDuplicateSlot возвращается, когда один слот встречается в запросе дважды
	ErrDuplicateSlot = errors.New("slot.repository: duplicate slot in reservation set")

	// ErrNoTransaction возвращается при попытке мутировать счётчики вне транзакции
	ErrNoTransaction = errors.New("slot.repository: capacity mutation requires an active transaction")

	// ErrReleaseOverflow возвращается, когда возврат мест превысил бы исходную ёмкость
	ErrReleaseOverflow = errors.New("slot.repository: release exceeds booked count")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("slot.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("slot.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("slot.repository: failed to scan row")
)
