package assignment

import (
	"context"

	"github.com/vkotlyarr/VF-BookingEngine/internal/domain"
)

// EmployeeRepository интерфейс репозитория сотрудников
type EmployeeRepository interface {
	ListCapable(ctx context.Context, tenantID, serviceID int64) ([]*domain.Employee, error)
	GetByID(ctx context.Context, id int64) (*domain.Employee, error)
}

// ShiftRepository интерфейс репозитория смен
type ShiftRepository interface {
	ListByEmployees(ctx context.Context, employeeIDs []int64) ([]*domain.Shift, error)
}

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	ListEmployeeAssignments(ctx context.Context, filter domain.EmployeeWindowFilter) ([]*domain.AssignmentRecord, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
