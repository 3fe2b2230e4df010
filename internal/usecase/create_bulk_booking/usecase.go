package create_bulk_booking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/vkotlyarr/VF-BookingEngine/internal/domain"
	shiftRepo "github.com/vkotlyarr/VF-BookingEngine/internal/infra/storage/shift"
	slotRepo "github.com/vkotlyarr/VF-BookingEngine/internal/infra/storage/slot"
	settingsRepo "github.com/vkotlyarr/VF-BookingEngine/internal/infra/storage/tenantsettings"
	"github.com/vkotlyarr/VF-BookingEngine/internal/service/assignment"
)

// UseCase use case для группового бронирования
type UseCase struct {
	slotRepo     SlotRepository
	shiftRepo    ShiftRepository
	bookingRepo  BookingRepository
	settingsRepo SettingsRepository
	outboxRepo   OutboxRepository
	resolver     AssignmentResolver
	txManager    TransactionManager
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	slotRepository SlotRepository,
	shiftRepository ShiftRepository,
	bookingRepository BookingRepository,
	settingsRepository SettingsRepository,
	outboxRepository OutboxRepository,
	resolver AssignmentResolver,
	txManager TransactionManager,
	logger Logger,
) *UseCase {
	return &UseCase{
		slotRepo:     slotRepository,
		shiftRepo:    shiftRepository,
		bookingRepo:  bookingRepository,
		settingsRepo: settingsRepository,
		outboxRepo:   outboxRepository,
		resolver:     resolver,
		txManager:    txManager,
		logger:       logger,
	}
}

// Execute выполняет use case группового бронирования.
// Все позиции резервируются по принципу всё-или-ничего: отказ любого слота
// откатывает транзакцию целиком, ни одно место не остаётся удержанным
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CreateBulkBooking: tenant=%d, service=%d, slots=%d",
		req.TenantID, req.ServiceID, len(req.SlotIDs))

	// 1. Валидация, включая отказ по дублям слотов
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CreateBulkBooking: validation failed: %v", err)
		return nil, err
	}

	// Вся группа живёт под одним group id и одним билетом
	groupID := uuid.NewString()
	ticketCode := domain.NewTicketCode()

	var created []*domain.Booking

	err := uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// 2. Настройки тенанта (дефолтные, если не заданы)
		settings, err := uc.loadSettings(txCtx, req.TenantID)
		if err != nil {
			return err
		}

		// 3. Резервируем по одному месту в каждом слоте.
		// Репозиторий валидирует весь набор до первой мутации счётчиков
		reservations := make([]domain.SlotReservation, 0, len(req.SlotIDs))
		for _, id := range req.SlotIDs {
			reservations = append(reservations, domain.SlotReservation{SlotID: id, Units: 1})
		}
		slots, err := uc.slotRepo.ReserveMany(txCtx, reservations)
		if err != nil {
			return uc.mapReserveError(err)
		}
		slotByID := make(map[int64]*domain.Slot, len(slots))
		for _, s := range slots {
			slotByID[s.ID] = s
		}

		// 4. Проверка принадлежности и подбор сотрудника на каждую позицию.
		// Ранее созданные строки группы видны резолверу внутри транзакции,
		// поэтому пересекающиеся слоты группы получают разных сотрудников
		shiftCache := make(map[int64]*domain.Shift)
		perRowPrice := req.TotalPrice / float64(len(req.SlotIDs))
		created = make([]*domain.Booking, 0, len(req.SlotIDs))

		for i, slotID := range req.SlotIDs {
			slot, ok := slotByID[slotID]
			if !ok {
				return fmt.Errorf("%w: reserved set is missing slot id=%d", ErrInternal, slotID)
			}

			shift, err := uc.verifyOwnership(txCtx, req, slot, shiftCache)
			if err != nil {
				return err
			}

			var employeeID *int64
			if settings.IsEmployeeBased() {
				id, err := uc.resolveEmployee(txCtx, req, settings, slot)
				if err != nil {
					return err
				}
				employeeID = &id
			} else if shift.IsEmployeeShift() {
				uc.logger.Warn("CreateBulkBooking: slot id=%d belongs to an employee shift, tenant=%d is service_based",
					slot.ID, req.TenantID)
				return ErrSlotMismatch
			}

			adult, child := 0, 1
			if i < req.AdultCount {
				adult, child = 1, 0
			}

			booking := &domain.Booking{
				TenantID:       req.TenantID,
				ServiceID:      req.ServiceID,
				SlotID:         slotID,
				EmployeeID:     employeeID,
				BookingGroupID: &groupID,
				CustomerName:   req.CustomerName,
				CustomerEmail:  req.CustomerEmail,
				CustomerPhone:  req.CustomerPhone,
				VisitorCount:   1,
				AdultCount:     adult,
				ChildCount:     child,
				ReservedUnits:  1,
				TotalPrice:     perRowPrice,
				Status:         domain.StatusPending,
				Notes:          req.Notes,
				TicketCode:     ticketCode,
			}

			row, err := uc.bookingRepo.Create(txCtx, booking)
			if err != nil {
				uc.logger.Error("CreateBulkBooking: failed to create booking for slot=%d: %v", slotID, err)
				return fmt.Errorf("%w: failed to create booking: %v", ErrInternal, err)
			}
			created = append(created, row)
		}

		// 5. Ровно одно событие booking_created на всю группу
		return uc.writeCreatedEvent(txCtx, req, created, groupID, ticketCode)
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Info("CreateBulkBooking: created group=%s with %d bookings", groupID, len(created))

	return &Response{
		BookingGroupID: groupID,
		TicketCode:     ticketCode,
		Bookings:       created,
	}, nil
}

// loadSettings возвращает настройки тенанта или дефолтные значения
func (uc *UseCase) loadSettings(ctx context.Context, tenantID int64) (*domain.TenantSettings, error) {
	settings, err := uc.settingsRepo.GetByTenant(ctx, tenantID)
	if err != nil {
		if errors.Is(err, settingsRepo.ErrSettingsNotFound) {
			return &domain.TenantSettings{
				TenantID:         tenantID,
				SchedulingMode:   domain.DefaultSchedulingMode,
				AssignmentPolicy: domain.DefaultAssignmentPolicy,
			}, nil
		}
		uc.logger.Error("CreateBulkBooking: failed to get settings for tenant=%d: %v", tenantID, err)
		return nil, fmt.Errorf("%w: failed to get tenant settings: %v", ErrInternal, err)
	}
	return settings, nil
}

// verifyOwnership проверяет принадлежность слота тенанту и услуге запроса
func (uc *UseCase) verifyOwnership(
	ctx context.Context,
	req *Request,
	slot *domain.Slot,
	cache map[int64]*domain.Shift,
) (*domain.Shift, error) {
	if slot.TenantID != req.TenantID {
		uc.logger.Warn("CreateBulkBooking: slot id=%d belongs to tenant=%d, requested tenant=%d",
			slot.ID, slot.TenantID, req.TenantID)
		return nil, ErrSlotMismatch
	}

	shift, ok := cache[slot.ShiftID]
	if !ok {
		var err error
		shift, err = uc.shiftRepo.GetByID(ctx, slot.ShiftID)
		if err != nil {
			if errors.Is(err, shiftRepo.ErrShiftNotFound) {
				return nil, ErrSlotMismatch
			}
			uc.logger.Error("CreateBulkBooking: failed to get shift id=%d: %v", slot.ShiftID, err)
			return nil, fmt.Errorf("%w: failed to get shift: %v", ErrInternal, err)
		}
		cache[slot.ShiftID] = shift
	}

	if shift.ServiceID != nil && *shift.ServiceID != req.ServiceID {
		uc.logger.Warn("CreateBulkBooking: slot id=%d serves service=%d, requested service=%d",
			slot.ID, *shift.ServiceID, req.ServiceID)
		return nil, ErrSlotMismatch
	}

	return shift, nil
}

// resolveEmployee подбирает сотрудника под окно конкретного слота группы
func (uc *UseCase) resolveEmployee(
	ctx context.Context,
	req *Request,
	settings *domain.TenantSettings,
	slot *domain.Slot,
) (int64, error) {
	policy := settings.AssignmentPolicy
	if req.EmployeeID != nil {
		policy = domain.PolicyManual
	}

	id, err := uc.resolver.Resolve(ctx, &assignment.Request{
		TenantID:            req.TenantID,
		ServiceID:           req.ServiceID,
		Date:                slot.SlotDate,
		StartTime:           slot.StartTime,
		EndTime:             slot.EndTime,
		Policy:              policy,
		RequestedEmployeeID: req.EmployeeID,
	})
	if err != nil {
		if errors.Is(err, assignment.ErrNoEligibleEmployees) || errors.Is(err, assignment.ErrEmployeeUnavailable) {
			uc.logger.Warn("CreateBulkBooking: employee resolution failed for slot=%d: %v", slot.ID, err)
			return 0, fmt.Errorf("%w: slot id=%d: %v", ErrEmployeeUnavailable, slot.ID, err)
		}
		uc.logger.Error("CreateBulkBooking: employee resolution error for slot=%d: %v", slot.ID, err)
		return 0, fmt.Errorf("%w: failed to resolve employee: %v", ErrInternal, err)
	}
	return id, nil
}

// writeCreatedEvent пишет единственное событие booking_created группы
func (uc *UseCase) writeCreatedEvent(
	ctx context.Context,
	req *Request,
	bookings []*domain.Booking,
	groupID, ticketCode string,
) error {
	ids := make([]int64, 0, len(bookings))
	for _, b := range bookings {
		ids = append(ids, b.ID)
	}

	payload, err := json.Marshal(domain.BookingCreatedPayload{
		BookingGroupID: groupID,
		BookingIDs:     ids,
		TenantID:       req.TenantID,
		ServiceID:      req.ServiceID,
		CustomerName:   req.CustomerName,
		CustomerEmail:  req.CustomerEmail,
		CustomerPhone:  req.CustomerPhone,
		VisitorTotal:   len(bookings),
		AmountTotal:    req.TotalPrice,
		TicketCode:     ticketCode,
	})
	if err != nil {
		return fmt.Errorf("%w: failed to marshal event payload: %v", ErrInternal, err)
	}

	_, err = uc.outboxRepo.Create(ctx, &domain.OutboxEvent{
		EventType:      domain.EventBookingCreated,
		TenantID:       req.TenantID,
		BookingGroupID: groupID,
		Payload:        payload,
		Status:         domain.EventStatusPending,
	})
	if err != nil {
		uc.logger.Error("CreateBulkBooking: failed to write outbox event: %v", err)
		return fmt.Errorf("%w: failed to write outbox event: %v", ErrInternal, err)
	}
	return nil
}

// mapReserveError транслирует ошибки репозитория слотов в ошибки usecase
func (uc *UseCase) mapReserveError(err error) error {
	switch {
	case errors.Is(err, slotRepo.ErrDuplicateSlot):
		return fmt.Errorf("%w: %v", ErrDuplicateSlot, err)
	case errors.Is(err, slotRepo.ErrSlotNotFound):
		return ErrSlotNotFound
	case errors.Is(err, slotRepo.ErrSlotUnavailable):
		return ErrSlotUnavailable
	case errors.Is(err, slotRepo.ErrInsufficientCapacity):
		return ErrInsufficientCapacity
	default:
		uc.logger.Error("CreateBulkBooking: failed to reserve slots: %v", err)
		return fmt.Errorf("%w: failed to reserve slots: %v", ErrInternal, err)
	}
}
