package assignment

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/vkotlyarr/VF-BookingEngine/internal/domain"
	employeeRepo "github.com/vkotlyarr/VF-BookingEngine/internal/infra/storage/employee"
	"github.com/vkotlyarr/VF-BookingEngine/pkg/types"
)

// Request запрос на подбор сотрудника под окно слота
type Request struct {
	TenantID  int64
	ServiceID int64

	Date      time.Time
	StartTime types.TimeString
	EndTime   types.TimeString

	Policy domain.AssignmentPolicy

	// RequestedEmployeeID обязателен для политики manual
	RequestedEmployeeID *int64
}

// Resolver подбирает сотрудника под бронирование в employee_based режиме.
//
// Кандидат проходит три проверки:
//  1. компетенция: сотрудник оказывает услугу;
//  2. смена: рабочее окно сотрудника покрывает день недели и время слота;
//  3. конфликты: у сотрудника нет активного бронирования, чей слот
//     пересекается с запрошенным окном.
//
// Для auto_rotate кандидаты упорядочиваются по ключу справедливости —
// наименьшее число активных назначений на дату, при равенстве меньший id —
// поэтому повторные бронирования одного окна распределяются по штату,
// а не залипают на одном человеке.
//
// В service_based режиме резолвер не вызывается вовсе
type Resolver struct {
	employeeRepo EmployeeRepository
	shiftRepo    ShiftRepository
	bookingRepo  BookingRepository
	logger       Logger
}

// NewResolver создает резолвер назначения сотрудников
func NewResolver(
	employeeRepo EmployeeRepository,
	shiftRepo ShiftRepository,
	bookingRepo BookingRepository,
	logger Logger,
) *Resolver {
	return &Resolver{
		employeeRepo: employeeRepo,
		shiftRepo:    shiftRepo,
		bookingRepo:  bookingRepo,
		logger:       logger,
	}
}

// Resolve возвращает id подобранного сотрудника
// Вызывается внутри транзакции аллокатора: выборка назначений блокирует
// конкурирующие резолвы того же окна до коммита
func (r *Resolver) Resolve(ctx context.Context, req *Request) (int64, error) {
	candidates, err := r.employeeRepo.ListCapable(ctx, req.TenantID, req.ServiceID)
	if err != nil {
		return 0, fmt.Errorf("%w: Resolve - list capable employees: %v", ErrInternal, err)
	}
	if len(candidates) == 0 {
		r.logger.Warn("Resolve: no capable employees for tenant=%d service=%d", req.TenantID, req.ServiceID)
		return 0, ErrNoEligibleEmployees
	}

	ids := make([]int64, 0, len(candidates))
	for _, e := range candidates {
		ids = append(ids, e.ID)
	}

	shifts, err := r.shiftRepo.ListByEmployees(ctx, ids)
	if err != nil {
		return 0, fmt.Errorf("%w: Resolve - list shifts: %v", ErrInternal, err)
	}

	covered := coveredEmployees(shifts, req.Date, req.StartTime, req.EndTime)

	assignments, err := r.bookingRepo.ListEmployeeAssignments(ctx, domain.EmployeeWindowFilter{
		TenantID:    req.TenantID,
		EmployeeIDs: ids,
		Date:        req.Date,
	})
	if err != nil {
		return 0, fmt.Errorf("%w: Resolve - list assignments: %v", ErrInternal, err)
	}

	busy, dayLoad := splitAssignments(assignments, req.StartTime, req.EndTime)

	if req.Policy == domain.PolicyManual {
		return r.resolveManual(ctx, req, candidates, covered, busy)
	}
	return r.resolveRotate(req, candidates, covered, busy, dayLoad)
}

// resolveManual проверяет выбранного вызывающим сотрудника по тем же
// критериям, что и автоподбор
func (r *Resolver) resolveManual(
	ctx context.Context,
	req *Request,
	candidates []*domain.Employee,
	covered map[int64]bool,
	busy map[int64]bool,
) (int64, error) {
	if req.RequestedEmployeeID == nil {
		return 0, fmt.Errorf("%w: manual policy requires employee id", ErrEmployeeUnavailable)
	}
	id := *req.RequestedEmployeeID

	capable := false
	for _, e := range candidates {
		if e.ID == id {
			capable = true
			break
		}
	}

	switch {
	case !capable:
		return 0, r.rejectNotCapable(ctx, req, id)
	case !covered[id]:
		r.logger.Warn("Resolve: employee id=%d has no shift covering the window", id)
		return 0, fmt.Errorf("%w: employee id=%d has no covering shift", ErrEmployeeUnavailable, id)
	case busy[id]:
		r.logger.Warn("Resolve: employee id=%d already booked in the window", id)
		return 0, fmt.Errorf("%w: employee id=%d is double-booked", ErrEmployeeUnavailable, id)
	}

	return id, nil
}

// rejectNotCapable уточняет причину отказа по выбранному сотруднику:
// неизвестен, чужой тенант, неактивен или не оказывает услугу
func (r *Resolver) rejectNotCapable(ctx context.Context, req *Request, id int64) error {
	e, err := r.employeeRepo.GetByID(ctx, id)
	switch {
	case errors.Is(err, employeeRepo.ErrEmployeeNotFound):
		r.logger.Warn("Resolve: employee id=%d not found", id)
		return fmt.Errorf("%w: employee id=%d not found", ErrEmployeeUnavailable, id)
	case err != nil:
		return fmt.Errorf("%w: Resolve - get employee: %v", ErrInternal, err)
	case e.TenantID != req.TenantID:
		r.logger.Warn("Resolve: employee id=%d belongs to tenant=%d, requested tenant=%d",
			id, e.TenantID, req.TenantID)
		return fmt.Errorf("%w: employee id=%d not found", ErrEmployeeUnavailable, id)
	case !e.IsActive:
		r.logger.Warn("Resolve: employee id=%d is inactive", id)
		return fmt.Errorf("%w: employee id=%d is inactive", ErrEmployeeUnavailable, id)
	default:
		r.logger.Warn("Resolve: employee id=%d is not capable of service=%d", id, req.ServiceID)
		return fmt.Errorf("%w: employee id=%d cannot serve this service", ErrEmployeeUnavailable, id)
	}
}

// resolveRotate выбирает сотрудника по ключу справедливости
func (r *Resolver) resolveRotate(
	req *Request,
	candidates []*domain.Employee,
	covered map[int64]bool,
	busy map[int64]bool,
	dayLoad map[int64]int,
) (int64, error) {
	eligible := make([]*domain.Employee, 0, len(candidates))
	for _, e := range candidates {
		if covered[e.ID] && !busy[e.ID] {
			eligible = append(eligible, e)
		}
	}
	if len(eligible) == 0 {
		r.logger.Warn("Resolve: all capable employees are covered-out or busy for tenant=%d service=%d",
			req.TenantID, req.ServiceID)
		return 0, ErrNoEligibleEmployees
	}

	// Наименьшая дневная нагрузка, при равенстве — детерминированно меньший id
	sort.Slice(eligible, func(i, j int) bool {
		li, lj := dayLoad[eligible[i].ID], dayLoad[eligible[j].ID]
		if li != lj {
			return li < lj
		}
		return eligible[i].ID < eligible[j].ID
	})

	picked := eligible[0]
	r.logger.Info("Resolve: picked employee id=%d (day load=%d of %d eligible)",
		picked.ID, dayLoad[picked.ID], len(eligible))

	return picked.ID, nil
}

// coveredEmployees возвращает сотрудников, у которых есть смена,
// покрывающая день недели и окно времени
func coveredEmployees(shifts []*domain.Shift, date time.Time, start, end types.TimeString) map[int64]bool {
	covered := make(map[int64]bool)
	for _, s := range shifts {
		if s.EmployeeID == nil {
			continue
		}
		if s.CoversWindow(date, start, end) {
			covered[*s.EmployeeID] = true
		}
	}
	return covered
}

// splitAssignments делит назначения на конфликтующие с окном (busy)
// и общую дневную нагрузку (ключ ротации)
func splitAssignments(assignments []*domain.AssignmentRecord, start, end types.TimeString) (busy map[int64]bool, dayLoad map[int64]int) {
	busy = make(map[int64]bool)
	dayLoad = make(map[int64]int)
	for _, a := range assignments {
		dayLoad[a.EmployeeID]++
		if a.Overlaps(start, end) {
			busy[a.EmployeeID] = true
		}
	}
	return busy, dayLoad
}
