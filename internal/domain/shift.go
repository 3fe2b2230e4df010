package domain

import (
	"time"

	"github.com/vkotlyarr/VF-BookingEngine/pkg/types"
)

// Shift is a recurring availability window from which slots are generated.
// Exactly one of ServiceID/EmployeeID is set: service shifts drive
// service_based tenants, employee shifts drive employee_based tenants.
type Shift struct {
	ID         int64
	TenantID   int64
	ServiceID  *int64
	EmployeeID *int64

	Weekdays  WeekdaySet
	StartTime types.TimeString
	EndTime   types.TimeString

	SlotDurationMinutes int
	SlotCapacity        int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsEmployeeShift returns true if the shift belongs to an employee
func (s *Shift) IsEmployeeShift() bool {
	return s.EmployeeID != nil
}

// CoversWindow returns true if the shift is active on the date's weekday
// and the [start, end) window lies inside the shift's time range
func (s *Shift) CoversWindow(date time.Time, start, end types.TimeString) bool {
	if !s.Weekdays.Contains(date.Weekday()) {
		return false
	}
	if start.IsBefore(s.StartTime) {
		return false
	}
	if end.IsAfter(s.EndTime) {
		return false
	}
	return true
}

// WeekdaySet набор дней недели, хранится как битовая маска
// (бит 0 = воскресенье, как в time.Weekday)
type WeekdaySet uint8

// NewWeekdaySet собирает маску из списка дней
func NewWeekdaySet(days ...time.Weekday) WeekdaySet {
	var set WeekdaySet
	for _, d := range days {
		set |= 1 << uint(d)
	}
	return set
}

// Contains возвращает true, если день входит в набор
func (w WeekdaySet) Contains(day time.Weekday) bool {
	return w&(1<<uint(day)) != 0
}

// Days возвращает дни набора в порядке time.Weekday
func (w WeekdaySet) Days() []time.Weekday {
	var days []time.Weekday
	for d := time.Sunday; d <= time.Saturday; d++ {
		if w.Contains(d) {
			days = append(days, d)
		}
	}
	return days
}
