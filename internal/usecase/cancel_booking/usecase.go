package cancel_booking

import (
	"context"
	"errors"
	"fmt"

	"github.com/vkotlyarr/VF-BookingEngine/internal/domain"
	bookingRepo "github.com/vkotlyarr/VF-BookingEngine/internal/infra/storage/booking"
)

// UseCase use case для отмены бронирования
type UseCase struct {
	bookingRepo BookingRepository
	slotRepo    SlotRepository
	txManager   TransactionManager
	logger      Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepository BookingRepository,
	slotRepository SlotRepository,
	txManager TransactionManager,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo: bookingRepository,
		slotRepo:    slotRepository,
		txManager:   txManager,
		logger:      logger,
	}
}

// Execute выполняет отмену бронирования.
// Строка бронирования блокируется до коммита, поэтому конкурирующие отмены
// одного бронирования возвращают места ровно один раз
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CancelBooking: booking=%d, tenant=%d", req.BookingID, req.TenantID)

	if req.BookingID <= 0 {
		return nil, fmt.Errorf("%w: booking id must be positive", ErrInvalidInput)
	}
	if req.TenantID <= 0 {
		return nil, fmt.Errorf("%w: tenant id must be positive", ErrInvalidInput)
	}

	var result *Response

	err := uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		booking, err := uc.bookingRepo.GetByIDForUpdate(txCtx, req.BookingID)
		if err != nil {
			if errors.Is(err, bookingRepo.ErrBookingNotFound) {
				uc.logger.Warn("CancelBooking: booking id=%d not found", req.BookingID)
				return ErrBookingNotFound
			}
			uc.logger.Error("CancelBooking: failed to get booking id=%d: %v", req.BookingID, err)
			return fmt.Errorf("%w: failed to get booking: %v", ErrInternal, err)
		}

		// Чужие бронирования для вызывающего не существуют
		if booking.TenantID != req.TenantID {
			uc.logger.Warn("CancelBooking: booking id=%d belongs to tenant=%d, requested tenant=%d",
				booking.ID, booking.TenantID, req.TenantID)
			return ErrBookingNotFound
		}

		// Повторная отмена идемпотентна: места уже возвращены первой
		if booking.IsCancelled() {
			uc.logger.Info("CancelBooking: booking id=%d already cancelled", booking.ID)
			result = &Response{Booking: booking, AlreadyCancelled: true}
			return nil
		}

		if !booking.CanBeCancelled() {
			uc.logger.Warn("CancelBooking: booking id=%d in status %s cannot be cancelled",
				booking.ID, booking.Status)
			return fmt.Errorf("%w: status is %s", ErrNotCancellable, booking.Status)
		}

		// Возврат ровно тех мест, что удерживала эта строка
		if _, err := uc.slotRepo.Release(txCtx, booking.SlotID, booking.ReservedUnits); err != nil {
			uc.logger.Error("CancelBooking: failed to release %d units of slot id=%d: %v",
				booking.ReservedUnits, booking.SlotID, err)
			return fmt.Errorf("%w: failed to release slot capacity: %v", ErrInternal, err)
		}

		if err := uc.bookingRepo.UpdateStatus(txCtx, booking.ID, domain.StatusCancelled); err != nil {
			uc.logger.Error("CancelBooking: failed to update status of booking id=%d: %v", booking.ID, err)
			return fmt.Errorf("%w: failed to update status: %v", ErrInternal, err)
		}

		booking.Status = domain.StatusCancelled
		result = &Response{Booking: booking}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !result.AlreadyCancelled {
		uc.logger.Info("CancelBooking: cancelled booking id=%d, released %d units of slot id=%d",
			result.Booking.ID, result.Booking.ReservedUnits, result.Booking.SlotID)
	}

	return result, nil
}
