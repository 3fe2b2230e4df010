package domain

// Default configuration values
const (
	DefaultSchedulingMode   = ModeServiceBased
	DefaultAssignmentPolicy = PolicyAutoRotate
)

// Business validation constants
const (
	MinSlotCapacity        = 1
	MaxSlotCapacity        = 1000
	MinSlotDurationMinutes = 5
	MaxSlotDurationMinutes = 480 // 8 hours
	MaxBulkSlots           = 50
	MaxVisitorsPerBooking  = 100
	MaxNotesLength         = 500
	MaxCustomerNameLength  = 200
)

// Time format constants
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

// ActiveStatuses статусы бронирований, удерживающих ёмкость слота
// Используется при подсчёте занятости и проверке конфликтов сотрудников
var ActiveStatuses = []BookingStatus{
	StatusPending,
	StatusConfirmed,
}

// InactiveStatuses статусы, не удерживающие ёмкость
var InactiveStatuses = []BookingStatus{
	StatusCancelled,
	StatusCompleted,
}
