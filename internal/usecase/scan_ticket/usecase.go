package scan_ticket

import (
	"context"
	"errors"
	"fmt"

	"github.com/vkotlyarr/VF-BookingEngine/internal/domain"
	bookingRepo "github.com/vkotlyarr/VF-BookingEngine/internal/infra/storage/booking"
)

// UseCase use case для одноразового гашения билета
type UseCase struct {
	bookingRepo  BookingRepository
	txManager    TransactionManager
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepository BookingRepository,
	txManager TransactionManager,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo:  bookingRepository,
		txManager:    txManager,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// Execute выполняет гашение билета.
// Строка бронирования блокируется до коммита: из двух конкурирующих сканов
// одного билета ровно один получает успех, второй видит AlreadyScanned
// с меткой времени первого.
// Билет группового бронирования гасится по одной строке за скан:
// группа из N позиций пропускает N посетителей, скан N+1 получает
// AlreadyScanned с меткой первого гашения
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	// Структурно некорректные ссылки отсекаются до похода в хранилище
	code, ok := domain.NormalizeTicketRef(req.TicketRef)
	if !ok {
		uc.logger.Warn("ScanTicket: malformed ticket ref %q", req.TicketRef)
		return nil, ErrMalformedRef
	}

	var result *Response

	err := uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		booking, err := uc.bookingRepo.GetByTicketCodeForUpdate(txCtx, code)
		if err != nil {
			if errors.Is(err, bookingRepo.ErrBookingNotFound) {
				uc.logger.Warn("ScanTicket: ticket %s not found", code)
				return ErrTicketNotFound
			}
			uc.logger.Error("ScanTicket: failed to get booking by ticket %s: %v", code, err)
			return fmt.Errorf("%w: failed to get booking: %v", ErrInternal, err)
		}

		// Билеты отменённых бронирований гасить нельзя
		if booking.IsCancelled() {
			uc.logger.Warn("ScanTicket: ticket %s belongs to a cancelled booking id=%d", code, booking.ID)
			return ErrTicketInactive
		}

		if booking.Scanned {
			if booking.ScannedAt == nil {
				return fmt.Errorf("%w: booking id=%d scanned without timestamp", ErrInternal, booking.ID)
			}
			uc.logger.Info("ScanTicket: ticket %s already scanned at %s", code, booking.ScannedAt)
			result = &Response{Booking: booking, AlreadyScanned: true, ScannedAt: *booking.ScannedAt}
			return nil
		}

		now := uc.timeProvider.Now()
		if err := uc.bookingRepo.MarkScanned(txCtx, booking.ID, now); err != nil {
			uc.logger.Error("ScanTicket: failed to mark booking id=%d scanned: %v", booking.ID, err)
			return fmt.Errorf("%w: failed to mark scanned: %v", ErrInternal, err)
		}

		booking.Scanned = true
		booking.ScannedAt = &now
		result = &Response{Booking: booking, ScannedAt: now}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !result.AlreadyScanned {
		uc.logger.Info("ScanTicket: ticket %s scanned, booking id=%d", code, result.Booking.ID)
	}

	return result, nil
}
