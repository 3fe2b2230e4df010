package assignment

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vkotlyarr/VF-BookingEngine/internal/domain"
	employeeRepo "github.com/vkotlyarr/VF-BookingEngine/internal/infra/storage/employee"
	"github.com/vkotlyarr/VF-BookingEngine/pkg/ptr"
	"github.com/vkotlyarr/VF-BookingEngine/pkg/types"
)

type fakeEmployeeRepo struct {
	employees []*domain.Employee
}

func (f *fakeEmployeeRepo) ListCapable(_ context.Context, tenantID, serviceID int64) ([]*domain.Employee, error) {
	out := make([]*domain.Employee, 0)
	for _, e := range f.employees {
		if e.TenantID == tenantID && e.IsActive && e.CanServe(serviceID) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeEmployeeRepo) GetByID(_ context.Context, id int64) (*domain.Employee, error) {
	for _, e := range f.employees {
		if e.ID == id {
			return e, nil
		}
	}
	return nil, employeeRepo.ErrEmployeeNotFound
}

type fakeShiftRepo struct {
	shifts []*domain.Shift
}

func (f *fakeShiftRepo) ListByEmployees(_ context.Context, employeeIDs []int64) ([]*domain.Shift, error) {
	wanted := make(map[int64]bool, len(employeeIDs))
	for _, id := range employeeIDs {
		wanted[id] = true
	}
	out := make([]*domain.Shift, 0)
	for _, s := range f.shifts {
		if s.EmployeeID != nil && wanted[*s.EmployeeID] {
			out = append(out, s)
		}
	}
	return out, nil
}

type fakeAssignmentsRepo struct {
	records []*domain.AssignmentRecord
}

func (f *fakeAssignmentsRepo) ListEmployeeAssignments(_ context.Context, _ domain.EmployeeWindowFilter) ([]*domain.AssignmentRecord, error) {
	return f.records, nil
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

// Понедельник
var testDate = time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)

func workdayShift(employeeID int64) *domain.Shift {
	return &domain.Shift{
		ID:         employeeID * 100,
		TenantID:   1,
		EmployeeID: ptr.Ptr(employeeID),
		Weekdays: domain.NewWeekdaySet(
			time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday,
		),
		StartTime: "09:00",
		EndTime:   "18:00",
	}
}

func employee(id int64, serviceIDs ...int64) *domain.Employee {
	return &domain.Employee{ID: id, TenantID: 1, IsActive: true, ServiceIDs: serviceIDs}
}

func assigned(employeeID int64, start, end types.TimeString) *domain.AssignmentRecord {
	return &domain.AssignmentRecord{
		EmployeeID: employeeID,
		StartTime:  start,
		EndTime:    end,
	}
}

func newResolverFixture(
	employees []*domain.Employee,
	shifts []*domain.Shift,
	records []*domain.AssignmentRecord,
) *Resolver {
	return NewResolver(
		&fakeEmployeeRepo{employees: employees},
		&fakeShiftRepo{shifts: shifts},
		&fakeAssignmentsRepo{records: records},
		nopLogger{},
	)
}

func rotateRequest() *Request {
	return &Request{
		TenantID:  1,
		ServiceID: 10,
		Date:      testDate,
		StartTime: "10:00",
		EndTime:   "11:00",
		Policy:    domain.PolicyAutoRotate,
	}
}

func TestResolve_Rotate_PicksLeastLoaded(t *testing.T) {
	r := newResolverFixture(
		[]*domain.Employee{employee(1, 10), employee(2, 10)},
		[]*domain.Shift{workdayShift(1), workdayShift(2)},
		[]*domain.AssignmentRecord{
			// У первого уже два назначения в этот день, у второго ни одного
			assigned(1, "12:00", "13:00"),
			assigned(1, "14:00", "15:00"),
		},
	)

	id, err := r.Resolve(context.Background(), rotateRequest())
	require.NoError(t, err)
	assert.Equal(t, int64(2), id)
}

func TestResolve_Rotate_TieBreaksOnLowestID(t *testing.T) {
	r := newResolverFixture(
		[]*domain.Employee{employee(3, 10), employee(2, 10)},
		[]*domain.Shift{workdayShift(2), workdayShift(3)},
		nil,
	)

	id, err := r.Resolve(context.Background(), rotateRequest())
	require.NoError(t, err)
	assert.Equal(t, int64(2), id)
}

func TestResolve_Rotate_SkipsBusyEmployee(t *testing.T) {
	r := newResolverFixture(
		[]*domain.Employee{employee(1, 10), employee(2, 10)},
		[]*domain.Shift{workdayShift(1), workdayShift(2)},
		[]*domain.AssignmentRecord{
			// Первый занят окном, пересекающим запрошенное
			assigned(1, "10:30", "11:30"),
		},
	)

	id, err := r.Resolve(context.Background(), rotateRequest())
	require.NoError(t, err)
	assert.Equal(t, int64(2), id)
}

func TestResolve_Rotate_BoundaryTouchIsNotConflict(t *testing.T) {
	r := newResolverFixture(
		[]*domain.Employee{employee(1, 10)},
		[]*domain.Shift{workdayShift(1)},
		[]*domain.AssignmentRecord{
			// Заканчивается ровно в начале запрошенного окна
			assigned(1, "09:00", "10:00"),
		},
	)

	id, err := r.Resolve(context.Background(), rotateRequest())
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)
}

func TestResolve_Rotate_NoShiftCoverage(t *testing.T) {
	saturdayOnly := workdayShift(1)
	saturdayOnly.Weekdays = domain.NewWeekdaySet(time.Saturday)

	r := newResolverFixture(
		[]*domain.Employee{employee(1, 10)},
		[]*domain.Shift{saturdayOnly},
		nil,
	)

	_, err := r.Resolve(context.Background(), rotateRequest())
	assert.ErrorIs(t, err, ErrNoEligibleEmployees)
}

func TestResolve_Rotate_WindowOutsideShiftHours(t *testing.T) {
	r := newResolverFixture(
		[]*domain.Employee{employee(1, 10)},
		[]*domain.Shift{workdayShift(1)},
		nil,
	)

	req := rotateRequest()
	req.StartTime = "17:30"
	req.EndTime = "18:30"

	_, err := r.Resolve(context.Background(), req)
	assert.ErrorIs(t, err, ErrNoEligibleEmployees)
}

func TestResolve_Rotate_NoCapableEmployees(t *testing.T) {
	r := newResolverFixture(
		[]*domain.Employee{employee(1, 99)},
		[]*domain.Shift{workdayShift(1)},
		nil,
	)

	_, err := r.Resolve(context.Background(), rotateRequest())
	assert.ErrorIs(t, err, ErrNoEligibleEmployees)
}

func TestResolve_Manual_AcceptsAvailableEmployee(t *testing.T) {
	r := newResolverFixture(
		[]*domain.Employee{employee(1, 10), employee(2, 10)},
		[]*domain.Shift{workdayShift(1), workdayShift(2)},
		nil,
	)

	req := rotateRequest()
	req.Policy = domain.PolicyManual
	req.RequestedEmployeeID = ptr.Ptr(int64(2))

	id, err := r.Resolve(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, int64(2), id)
}

func TestResolve_Manual_RejectsDoubleBooking(t *testing.T) {
	r := newResolverFixture(
		[]*domain.Employee{employee(1, 10), employee(2, 10)},
		[]*domain.Shift{workdayShift(1), workdayShift(2)},
		[]*domain.AssignmentRecord{
			assigned(1, "10:00", "11:00"),
		},
	)

	req := rotateRequest()
	req.Policy = domain.PolicyManual
	req.RequestedEmployeeID = ptr.Ptr(int64(1))

	_, err := r.Resolve(context.Background(), req)
	assert.ErrorIs(t, err, ErrEmployeeUnavailable)
}

func TestResolve_Manual_RejectsIncapableEmployee(t *testing.T) {
	r := newResolverFixture(
		[]*domain.Employee{employee(1, 10), employee(2, 99)},
		[]*domain.Shift{workdayShift(1), workdayShift(2)},
		nil,
	)

	req := rotateRequest()
	req.Policy = domain.PolicyManual
	req.RequestedEmployeeID = ptr.Ptr(int64(2))

	_, err := r.Resolve(context.Background(), req)
	assert.ErrorIs(t, err, ErrEmployeeUnavailable)
	assert.ErrorContains(t, err, "cannot serve")
}

func TestResolve_Manual_RejectsUnknownEmployee(t *testing.T) {
	r := newResolverFixture(
		[]*domain.Employee{employee(1, 10)},
		[]*domain.Shift{workdayShift(1)},
		nil,
	)

	req := rotateRequest()
	req.Policy = domain.PolicyManual
	req.RequestedEmployeeID = ptr.Ptr(int64(7))

	_, err := r.Resolve(context.Background(), req)
	assert.ErrorIs(t, err, ErrEmployeeUnavailable)
	assert.ErrorContains(t, err, "not found")
}

func TestResolve_Manual_RejectsInactiveEmployee(t *testing.T) {
	dismissed := employee(2, 10)
	dismissed.IsActive = false

	r := newResolverFixture(
		[]*domain.Employee{employee(1, 10), dismissed},
		[]*domain.Shift{workdayShift(1), workdayShift(2)},
		nil,
	)

	req := rotateRequest()
	req.Policy = domain.PolicyManual
	req.RequestedEmployeeID = ptr.Ptr(int64(2))

	_, err := r.Resolve(context.Background(), req)
	assert.ErrorIs(t, err, ErrEmployeeUnavailable)
	assert.ErrorContains(t, err, "inactive")
}

func TestResolve_Manual_RejectsForeignTenantEmployee(t *testing.T) {
	foreign := employee(2, 10)
	foreign.TenantID = 9

	r := newResolverFixture(
		[]*domain.Employee{employee(1, 10), foreign},
		[]*domain.Shift{workdayShift(1)},
		nil,
	)

	req := rotateRequest()
	req.Policy = domain.PolicyManual
	req.RequestedEmployeeID = ptr.Ptr(int64(2))

	_, err := r.Resolve(context.Background(), req)
	assert.ErrorIs(t, err, ErrEmployeeUnavailable)
	assert.ErrorContains(t, err, "not found")
}

func TestResolve_Manual_RequiresEmployeeID(t *testing.T) {
	r := newResolverFixture(
		[]*domain.Employee{employee(1, 10)},
		[]*domain.Shift{workdayShift(1)},
		nil,
	)

	req := rotateRequest()
	req.Policy = domain.PolicyManual

	_, err := r.Resolve(context.Background(), req)
	assert.ErrorIs(t, err, ErrEmployeeUnavailable)
}
