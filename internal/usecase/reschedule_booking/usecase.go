package reschedule_booking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/vkotlyarr/VF-BookingEngine/internal/domain"
	bookingRepo "github.com/vkotlyarr/VF-BookingEngine/internal/infra/storage/booking"
	shiftRepo "github.com/vkotlyarr/VF-BookingEngine/internal/infra/storage/shift"
	slotRepo "github.com/vkotlyarr/VF-BookingEngine/internal/infra/storage/slot"
	settingsRepo "github.com/vkotlyarr/VF-BookingEngine/internal/infra/storage/tenantsettings"
	"github.com/vkotlyarr/VF-BookingEngine/internal/service/assignment"
)

// UseCase use case для переноса бронирования в другой слот
type UseCase struct {
	bookingRepo  BookingRepository
	slotRepo     SlotRepository
	shiftRepo    ShiftRepository
	settingsRepo SettingsRepository
	outboxRepo   OutboxRepository
	resolver     AssignmentResolver
	txManager    TransactionManager
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepository BookingRepository,
	slotRepository SlotRepository,
	shiftRepository ShiftRepository,
	settingsRepository SettingsRepository,
	outboxRepository OutboxRepository,
	resolver AssignmentResolver,
	txManager TransactionManager,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo:  bookingRepository,
		slotRepo:     slotRepository,
		shiftRepo:    shiftRepository,
		settingsRepo: settingsRepository,
		outboxRepo:   outboxRepository,
		resolver:     resolver,
		txManager:    txManager,
		logger:       logger,
	}
}

// Execute выполняет перенос бронирования.
// Резерв нового слота, возврат старого и обновление строки бронирования
// выполняются в одной сериализуемой транзакции: при любом сбое бронирование
// остаётся в исходном слоте, счётчики обоих слотов не меняются.
// Билет перевыпускается, скан-состояние сбрасывается
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("RescheduleBooking: booking=%d, tenant=%d, new slot=%d",
		req.BookingID, req.TenantID, req.NewSlotID)

	if err := validateRequest(req); err != nil {
		uc.logger.Warn("RescheduleBooking: validation failed: %v", err)
		return nil, err
	}

	var result *domain.Booking

	err := uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		booking, err := uc.loadBooking(txCtx, req)
		if err != nil {
			return err
		}

		// Новый слот резервируется до возврата старого: при нехватке мест
		// транзакция откатывается и бронирование остаётся где было
		slots, err := uc.slotRepo.ReserveMany(txCtx, []domain.SlotReservation{
			{SlotID: req.NewSlotID, Units: booking.ReservedUnits},
		})
		if err != nil {
			return uc.mapReserveError(req.NewSlotID, err)
		}
		newSlot := slots[0]

		shift, err := uc.verifyOwnership(txCtx, booking, newSlot)
		if err != nil {
			return err
		}

		employeeID, err := uc.resolveEmployee(txCtx, req, booking, newSlot, shift)
		if err != nil {
			return err
		}

		if _, err := uc.slotRepo.Release(txCtx, booking.SlotID, booking.ReservedUnits); err != nil {
			uc.logger.Error("RescheduleBooking: failed to release %d units of slot id=%d: %v",
				booking.ReservedUnits, booking.SlotID, err)
			return fmt.Errorf("%w: failed to release old slot: %v", ErrInternal, err)
		}

		newTicket := domain.NewTicketCode()
		if err := uc.bookingRepo.Reschedule(txCtx, booking.ID, req.NewSlotID, employeeID, newTicket); err != nil {
			uc.logger.Error("RescheduleBooking: failed to update booking id=%d: %v", booking.ID, err)
			return fmt.Errorf("%w: failed to update booking: %v", ErrInternal, err)
		}

		if err := uc.writeRescheduledEvent(txCtx, booking, req.NewSlotID, newTicket); err != nil {
			return err
		}

		booking.SlotID = req.NewSlotID
		booking.EmployeeID = employeeID
		booking.TicketCode = newTicket
		booking.Scanned = false
		booking.ScannedAt = nil
		result = booking
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Info("RescheduleBooking: moved booking id=%d to slot id=%d", result.ID, result.SlotID)

	return &Response{Booking: result}, nil
}

func validateRequest(req *Request) error {
	if req == nil {
		return fmt.Errorf("%w: request is nil", ErrInvalidInput)
	}
	if req.BookingID <= 0 {
		return fmt.Errorf("%w: booking id must be positive", ErrInvalidInput)
	}
	if req.TenantID <= 0 {
		return fmt.Errorf("%w: tenant id must be positive", ErrInvalidInput)
	}
	if req.NewSlotID <= 0 {
		return fmt.Errorf("%w: slot id must be positive", ErrInvalidInput)
	}
	if req.EmployeeID != nil && *req.EmployeeID <= 0 {
		return fmt.Errorf("%w: employee id must be positive", ErrInvalidInput)
	}
	return nil
}

// loadBooking блокирует строку бронирования и проверяет её переносимость
func (uc *UseCase) loadBooking(ctx context.Context, req *Request) (*domain.Booking, error) {
	booking, err := uc.bookingRepo.GetByIDForUpdate(ctx, req.BookingID)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			uc.logger.Warn("RescheduleBooking: booking id=%d not found", req.BookingID)
			return nil, ErrBookingNotFound
		}
		uc.logger.Error("RescheduleBooking: failed to get booking id=%d: %v", req.BookingID, err)
		return nil, fmt.Errorf("%w: failed to get booking: %v", ErrInternal, err)
	}

	if booking.TenantID != req.TenantID {
		uc.logger.Warn("RescheduleBooking: booking id=%d belongs to tenant=%d, requested tenant=%d",
			booking.ID, booking.TenantID, req.TenantID)
		return nil, ErrBookingNotFound
	}
	if !booking.IsActive() {
		uc.logger.Warn("RescheduleBooking: booking id=%d in status %s cannot be rescheduled",
			booking.ID, booking.Status)
		return nil, fmt.Errorf("%w: status is %s", ErrNotReschedulable, booking.Status)
	}
	if booking.SlotID == req.NewSlotID {
		return nil, ErrSameSlot
	}

	return booking, nil
}

// verifyOwnership проверяет принадлежность нового слота тенанту и услуге
func (uc *UseCase) verifyOwnership(ctx context.Context, booking *domain.Booking, slot *domain.Slot) (*domain.Shift, error) {
	if slot.TenantID != booking.TenantID {
		uc.logger.Warn("RescheduleBooking: slot id=%d belongs to tenant=%d, booking tenant=%d",
			slot.ID, slot.TenantID, booking.TenantID)
		return nil, ErrSlotMismatch
	}

	shift, err := uc.shiftRepo.GetByID(ctx, slot.ShiftID)
	if err != nil {
		if errors.Is(err, shiftRepo.ErrShiftNotFound) {
			return nil, ErrSlotMismatch
		}
		uc.logger.Error("RescheduleBooking: failed to get shift id=%d: %v", slot.ShiftID, err)
		return nil, fmt.Errorf("%w: failed to get shift: %v", ErrInternal, err)
	}

	if shift.ServiceID != nil && *shift.ServiceID != booking.ServiceID {
		uc.logger.Warn("RescheduleBooking: slot id=%d serves service=%d, booking service=%d",
			slot.ID, *shift.ServiceID, booking.ServiceID)
		return nil, ErrSlotMismatch
	}

	return shift, nil
}

// resolveEmployee подбирает сотрудника под новое окно в employee_based режиме
func (uc *UseCase) resolveEmployee(
	ctx context.Context,
	req *Request,
	booking *domain.Booking,
	slot *domain.Slot,
	shift *domain.Shift,
) (*int64, error) {
	settings, err := uc.settingsRepo.GetByTenant(ctx, booking.TenantID)
	if err != nil {
		if errors.Is(err, settingsRepo.ErrSettingsNotFound) {
			settings = &domain.TenantSettings{
				TenantID:         booking.TenantID,
				SchedulingMode:   domain.DefaultSchedulingMode,
				AssignmentPolicy: domain.DefaultAssignmentPolicy,
			}
		} else {
			uc.logger.Error("RescheduleBooking: failed to get settings for tenant=%d: %v", booking.TenantID, err)
			return nil, fmt.Errorf("%w: failed to get tenant settings: %v", ErrInternal, err)
		}
	}

	if !settings.IsEmployeeBased() {
		if shift.IsEmployeeShift() {
			uc.logger.Warn("RescheduleBooking: slot id=%d belongs to an employee shift, tenant=%d is service_based",
				slot.ID, booking.TenantID)
			return nil, ErrSlotMismatch
		}
		return nil, nil
	}

	policy := settings.AssignmentPolicy
	requested := req.EmployeeID
	if requested != nil {
		policy = domain.PolicyManual
	}

	id, err := uc.resolver.Resolve(ctx, &assignment.Request{
		TenantID:            booking.TenantID,
		ServiceID:           booking.ServiceID,
		Date:                slot.SlotDate,
		StartTime:           slot.StartTime,
		EndTime:             slot.EndTime,
		Policy:              policy,
		RequestedEmployeeID: requested,
	})
	if err != nil {
		if errors.Is(err, assignment.ErrNoEligibleEmployees) || errors.Is(err, assignment.ErrEmployeeUnavailable) {
			uc.logger.Warn("RescheduleBooking: employee resolution failed for slot=%d: %v", slot.ID, err)
			return nil, fmt.Errorf("%w: %v", ErrEmployeeUnavailable, err)
		}
		uc.logger.Error("RescheduleBooking: employee resolution error for slot=%d: %v", slot.ID, err)
		return nil, fmt.Errorf("%w: failed to resolve employee: %v", ErrInternal, err)
	}
	return &id, nil
}

// writeRescheduledEvent пишет событие booking_rescheduled в outbox
// Счёт не перевыставляется: уходит только переотправка билета
func (uc *UseCase) writeRescheduledEvent(ctx context.Context, booking *domain.Booking, newSlotID int64, ticket string) error {
	groupID := ""
	if booking.BookingGroupID != nil {
		groupID = *booking.BookingGroupID
	}

	payload, err := json.Marshal(domain.BookingRescheduledPayload{
		BookingGroupID: groupID,
		BookingID:      booking.ID,
		TenantID:       booking.TenantID,
		CustomerEmail:  booking.CustomerEmail,
		CustomerPhone:  booking.CustomerPhone,
		NewSlotID:      newSlotID,
		TicketCode:     ticket,
	})
	if err != nil {
		return fmt.Errorf("%w: failed to marshal event payload: %v", ErrInternal, err)
	}

	_, err = uc.outboxRepo.Create(ctx, &domain.OutboxEvent{
		EventType:      domain.EventBookingRescheduled,
		TenantID:       booking.TenantID,
		BookingGroupID: groupID,
		Payload:        payload,
		Status:         domain.EventStatusPending,
	})
	if err != nil {
		uc.logger.Error("RescheduleBooking: failed to write outbox event: %v", err)
		return fmt.Errorf("%w: failed to write outbox event: %v", ErrInternal, err)
	}
	return nil
}

// mapReserveError транслирует ошибки репозитория слотов в ошибки usecase
func (uc *UseCase) mapReserveError(slotID int64, err error) error {
	switch {
	case errors.Is(err, slotRepo.ErrSlotNotFound):
		uc.logger.Warn("RescheduleBooking: slot id=%d not found", slotID)
		return ErrSlotNotFound
	case errors.Is(err, slotRepo.ErrSlotUnavailable):
		uc.logger.Warn("RescheduleBooking: slot id=%d is not available", slotID)
		return ErrSlotUnavailable
	case errors.Is(err, slotRepo.ErrInsufficientCapacity):
		uc.logger.Warn("RescheduleBooking: slot id=%d has insufficient capacity", slotID)
		return ErrInsufficientCapacity
	default:
		uc.logger.Error("RescheduleBooking: failed to reserve slot id=%d: %v", slotID, err)
		return fmt.Errorf("%w: failed to reserve slot: %v", ErrInternal, err)
	}
}
