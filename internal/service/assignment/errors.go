package assignment

import "errors"

var (
	// ErrNoEligibleEmployees возвращается, когда ни один сотрудник не может
	// взять слот (нет компетенции, смена не покрывает окно или все заняты)
	ErrNoEligibleEmployees = errors.New("assignment: no eligible employees for the slot window")

	// ErrEmployeeUnavailable возвращается, когда вручную выбранный сотрудник
	// не проходит проверку доступности
	ErrEmployeeUnavailable = errors.New("assignment: employee is unavailable for the slot window")

	// ErrInternal возвращается при внутренних ошибках резолвера
	ErrInternal = errors.New("assignment: internal error")
)
