package domain

import "time"

// SchedulingMode tenant-wide setting: where slots come from and whether
// bookings are routed through employees
type SchedulingMode string

const (
	ModeServiceBased  SchedulingMode = "service_based"
	ModeEmployeeBased SchedulingMode = "employee_based"
)

// AssignmentPolicy how an employee is picked in employee_based mode
type AssignmentPolicy string

const (
	PolicyAutoRotate AssignmentPolicy = "auto_rotate"
	PolicyManual     AssignmentPolicy = "manual"
)

// TenantSettings per-tenant scheduling configuration.
// Switching the mode never rewrites historical bookings, it only changes
// how subsequent requests are resolved.
type TenantSettings struct {
	ID       int64
	TenantID int64

	SchedulingMode   SchedulingMode
	AssignmentPolicy AssignmentPolicy

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsEmployeeBased returns true if bookings require employee assignment
func (s *TenantSettings) IsEmployeeBased() bool {
	return s.SchedulingMode == ModeEmployeeBased
}

// ValidSchedulingMode проверяет допустимость значения режима
func ValidSchedulingMode(m SchedulingMode) bool {
	return m == ModeServiceBased || m == ModeEmployeeBased
}

// ValidAssignmentPolicy проверяет допустимость значения политики
func ValidAssignmentPolicy(p AssignmentPolicy) bool {
	return p == PolicyAutoRotate || p == PolicyManual
}
