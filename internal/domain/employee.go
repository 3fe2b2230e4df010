package domain

import "time"

// Employee is a staff identity that can be assigned to bookings.
// ServiceIDs is the capability set: services the employee may serve.
type Employee struct {
	ID       int64
	TenantID int64
	Name     string

	ServiceIDs []int64

	IsActive bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// CanServe returns true if the employee is capable of the given service
func (e *Employee) CanServe(serviceID int64) bool {
	for _, id := range e.ServiceIDs {
		if id == serviceID {
			return true
		}
	}
	return false
}
