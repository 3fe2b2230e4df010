package create_booking

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

// UseCase use case для создания одиночного бронирования
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

// Execute выполняет use case создания бронирования
// Резерв мест, запись бронирования и outbox-событие выполняются в одной
// сериализуемой транзакции: любой сбой возвращает зарезервированную ёмкость
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CreateBooking: tenant=%d, service=%d, slot=%d, visitors=%d",
		req.TenantID, req.ServiceID, req.SlotID, req.VisitorCount)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CreateBooking: validation failed: %v", err)
		return nil, err
	}

	// Идентичность группы и билета единая для одиночных и групповых
	// бронирований: коллабораторы работают только с group id
	groupID := uuid.NewString()
	ticketCode := domain.NewTicketCode()

	var result *domain.Booking

	err := uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// 2. Настройки тенанта (дефолтные, если не заданы)
		settings, err := uc.loadSettings(txCtx, req.TenantID)
		if err != nil {
			return err
		}

		// 3. Резервируем места: строка слота блокируется до коммита
		slots, err := uc.slotRepo.ReserveMany(txCtx, []domain.SlotReservation{
			{SlotID: req.SlotID, Units: req.VisitorCount},
		})
		if err != nil {
			return uc.mapReserveError(req.SlotID, err)
		}
		slot := slots[0]

		// 4. Слот должен принадлежать тенанту и запрошенной услуге
		shift, err := uc.verifyOwnership(txCtx, req, slot)
		if err != nil {
			return err
		}

		// 5. Назначение сотрудника только в employee_based режиме
		var employeeID *int64
		if settings.IsEmployeeBased() {
			id, err := uc.resolveEmployee(txCtx, req, settings, slot)
			if err != nil {
				return err
			}
			employeeID = &id
		} else if shift.IsEmployeeShift() {
			// Слоты сотрудницких смен недоступны в service_based режиме
			uc.logger.Warn("CreateBooking: slot id=%d belongs to an employee shift, tenant=%d is service_based",
				slot.ID, req.TenantID)
			return ErrSlotMismatch
		}

		// 6. Создаем бронирование
		booking := &domain.Booking{
			TenantID:       req.TenantID,
			ServiceID:      req.ServiceID,
			SlotID:         req.SlotID,
			EmployeeID:     employeeID,
			BookingGroupID: &groupID,
			CustomerName:   req.CustomerName,
			CustomerEmail:  req.CustomerEmail,
			CustomerPhone:  req.CustomerPhone,
			VisitorCount:   req.VisitorCount,
			AdultCount:     req.AdultCount,
			ChildCount:     req.ChildCount,
			ReservedUnits:  req.VisitorCount,
			TotalPrice:     req.TotalPrice,
			Status:         domain.StatusPending,
			Notes:          req.Notes,
			TicketCode:     ticketCode,
		}

		created, err := uc.bookingRepo.Create(txCtx, booking)
		if err != nil {
			uc.logger.Error("CreateBooking: failed to create booking: %v", err)
			return fmt.Errorf("%w: failed to create booking: %v", ErrInternal, err)
		}

		// 7. Событие для счёта и уведомления уходит той же транзакцией
		if err := uc.writeCreatedEvent(txCtx, created, groupID); err != nil {
			return err
		}

		result = created
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Info("CreateBooking: created booking id=%d, group=%s, slot=%d",
		result.ID, groupID, req.SlotID)

	return &Response{Booking: result}, nil
}

// loadSettings возвращает настройки тенанта или дефолтные значения
func (uc *UseCase) loadSettings(ctx context.Context, tenantID int64) (*domain.TenantSettings, error) {
	settings, err := uc.settingsRepo.GetByTenant(ctx, tenantID)
	if err != nil {
		if errors.Is(err, settingsRepo.ErrSettingsNotFound) {
			uc.logger.Info("CreateBooking: using default settings for tenant=%d", tenantID)
			return &domain.TenantSettings{
				TenantID:         tenantID,
				SchedulingMode:   domain.DefaultSchedulingMode,
				AssignmentPolicy: domain.DefaultAssignmentPolicy,
			}, nil
		}
		uc.logger.Error("CreateBooking: failed to get settings for tenant=%d: %v", tenantID, err)
		return nil, fmt.Errorf("%w: failed to get tenant settings: %v", ErrInternal, err)
	}
	return settings, nil
}

// verifyOwnership проверяет, что слот принадлежит тенанту и услуге запроса
func (uc *UseCase) verifyOwnership(ctx context.Context, req *Request, slot *domain.Slot) (*domain.Shift, error) {
	if slot.TenantID != req.TenantID {
		uc.logger.Warn("CreateBooking: slot id=%d belongs to tenant=%d, requested tenant=%d",
			slot.ID, slot.TenantID, req.TenantID)
		return nil, ErrSlotMismatch
	}

	shift, err := uc.shiftRepo.GetByID(ctx, slot.ShiftID)
	if err != nil {
		if errors.Is(err, shiftRepo.ErrShiftNotFound) {
			uc.logger.Error("CreateBooking: slot id=%d references missing shift id=%d", slot.ID, slot.ShiftID)
			return nil, ErrSlotMismatch
		}
		uc.logger.Error("CreateBooking: failed to get shift id=%d: %v", slot.ShiftID, err)
		return nil, fmt.Errorf("%w: failed to get shift: %v", ErrInternal, err)
	}

	if shift.ServiceID != nil && *shift.ServiceID != req.ServiceID {
		uc.logger.Warn("CreateBooking: slot id=%d serves service=%d, requested service=%d",
			slot.ID, *shift.ServiceID, req.ServiceID)
		return nil, ErrSlotMismatch
	}

	return shift, nil
}

// resolveEmployee подбирает сотрудника под окно слота
func (uc *UseCase) resolveEmployee(
	ctx context.Context,
	req *Request,
	settings *domain.TenantSettings,
	slot *domain.Slot,
) (int64, error) {
	policy := settings.AssignmentPolicy
	if req.EmployeeID != nil {
		// Явный выбор сотрудника переключает запрос на ручную политику
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
			uc.logger.Warn("CreateBooking: employee resolution failed for slot=%d: %v", slot.ID, err)
			return 0, fmt.Errorf("%w: %v", ErrEmployeeUnavailable, err)
		}
		uc.logger.Error("CreateBooking: employee resolution error for slot=%d: %v", slot.ID, err)
		return 0, fmt.Errorf("%w: failed to resolve employee: %v", ErrInternal, err)
	}
	return id, nil
}

// writeCreatedEvent пишет событие booking_created в outbox
func (uc *UseCase) writeCreatedEvent(ctx context.Context, booking *domain.Booking, groupID string) error {
	payload, err := json.Marshal(domain.BookingCreatedPayload{
		BookingGroupID: groupID,
		BookingIDs:     []int64{booking.ID},
		TenantID:       booking.TenantID,
		ServiceID:      booking.ServiceID,
		CustomerName:   booking.CustomerName,
		CustomerEmail:  booking.CustomerEmail,
		CustomerPhone:  booking.CustomerPhone,
		VisitorTotal:   booking.VisitorCount,
		AmountTotal:    booking.TotalPrice,
		TicketCode:     booking.TicketCode,
	})
	if err != nil {
		return fmt.Errorf("%w: failed to marshal event payload: %v", ErrInternal, err)
	}

	_, err = uc.outboxRepo.Create(ctx, &domain.OutboxEvent{
		EventType:      domain.EventBookingCreated,
		TenantID:       booking.TenantID,
		BookingGroupID: groupID,
		Payload:        payload,
		Status:         domain.EventStatusPending,
	})
	if err != nil {
		uc.logger.Error("CreateBooking: failed to write outbox event: %v", err)
		return fmt.Errorf("%w: failed to write outbox event: %v", ErrInternal, err)
	}
	return nil
}

// mapReserveError транслирует ошибки репозитория слотов в ошибки usecase
func (uc *UseCase) mapReserveError(slotID int64, err error) error {
	switch {
	case errors.Is(err, slotRepo.ErrSlotNotFound):
		uc.logger.Warn("CreateBooking: slot id=%d not found", slotID)
		return ErrSlotNotFound
	case errors.Is(err, slotRepo.ErrSlotUnavailable):
		uc.logger.Warn("CreateBooking: slot id=%d is not available", slotID)
		return ErrSlotUnavailable
	case errors.Is(err, slotRepo.ErrInsufficientCapacity):
		uc.logger.Warn("CreateBooking: slot id=%d has insufficient capacity", slotID)
		return ErrInsufficientCapacity
	default:
		uc.logger.Error("CreateBooking: failed to reserve slot id=%d: %v", slotID, err)
		return fmt.Errorf("%w: failed to reserve slot: %v", ErrInternal, err)
	}
}
