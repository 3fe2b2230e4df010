package domain

import (
	"time"

	"github.com/vkotlyarr/VF-BookingEngine/pkg/types"
)

// Slot represents a single bookable time unit with finite capacity.
// Counters hold the invariant:
//
//	AvailableCapacity + BookedCount == OriginalCapacity
//	AvailableCapacity >= 0
//
// Counters are mutated only inside serializable transactions by the slot
// repository (reserve/release).
type Slot struct {
	ID       int64
	TenantID int64
	ShiftID  int64

	SlotDate  time.Time
	StartTime types.TimeString
	EndTime   types.TimeString

	OriginalCapacity  int
	AvailableCapacity int
	BookedCount       int

	IsAvailable bool // manual availability toggle, independent of capacity

	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasCapacity returns true if the slot can hold units more reservations
func (s *Slot) HasCapacity(units int) bool {
	return s.IsAvailable && s.AvailableCapacity >= units
}

// IsFull returns true if no capacity remains
func (s *Slot) IsFull() bool {
	return s.AvailableCapacity <= 0
}

// CheckInvariant returns true if the capacity counters are consistent
func (s *Slot) CheckInvariant() bool {
	return s.AvailableCapacity >= 0 &&
		s.BookedCount >= 0 &&
		s.AvailableCapacity+s.BookedCount == s.OriginalCapacity
}

// SlotReservation a single entry of a multi-slot reservation request
type SlotReservation struct {
	SlotID int64
	Units  int
}

// SlotsFilter выборка слотов для листинга доступности
type SlotsFilter struct {
	TenantID      int64
	ShiftID       *int64
	DateFrom      time.Time
	DateTo        time.Time
	OnlyAvailable bool
}
