package bookings

import (
	"context"
	"errors"
	"fmt"

	"github.com/vkotlyarr/VF-BookingEngine/internal/domain"
	bookingRepo "github.com/vkotlyarr/VF-BookingEngine/internal/infra/storage/booking"
)

// Service операции над существующими бронированиями: чтение, листинг,
// редактирование контактных полей и переходы статуса.
// Создание и перенос живут в соответствующих usecase
type Service struct {
	bookingRepo BookingRepository
	slotRepo    SlotRepository
	txManager   TransactionManager
	logger      Logger
}

// NewService создает сервис бронирований
func NewService(
	bookingRepository BookingRepository,
	slotRepository SlotRepository,
	txManager TransactionManager,
	logger Logger,
) *Service {
	return &Service{
		bookingRepo: bookingRepository,
		slotRepo:    slotRepository,
		txManager:   txManager,
		logger:      logger,
	}
}

// GetByID возвращает бронирование тенанта
func (s *Service) GetByID(ctx context.Context, tenantID, bookingID int64) (*domain.Booking, error) {
	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			return nil, ErrBookingNotFound
		}
		s.logger.Error("GetByID: failed to get booking id=%d: %v", bookingID, err)
		return nil, fmt.Errorf("%w: failed to get booking: %v", ErrInternal, err)
	}
	if booking.TenantID != tenantID {
		return nil, ErrBookingNotFound
	}
	return booking, nil
}

// GetGroup возвращает все бронирования группы тенанта
func (s *Service) GetGroup(ctx context.Context, tenantID int64, groupID string) ([]*domain.Booking, error) {
	if groupID == "" {
		return nil, fmt.Errorf("%w: group id is required", ErrInvalidInput)
	}
	group, err := s.bookingRepo.GetByGroupID(ctx, groupID)
	if err != nil {
		s.logger.Error("GetGroup: failed to get group %s: %v", groupID, err)
		return nil, fmt.Errorf("%w: failed to get booking group: %v", ErrInternal, err)
	}
	if len(group) == 0 || group[0].TenantID != tenantID {
		return nil, ErrBookingNotFound
	}
	return group, nil
}

// ListByTenant возвращает бронирования тенанта с фильтрацией.
// Без флага IncludeInactive отдаются только активные строки
func (s *Service) ListByTenant(ctx context.Context, filter domain.TenantBookingsFilter) ([]*domain.Booking, error) {
	if filter.TenantID <= 0 {
		return nil, fmt.Errorf("%w: tenant id must be positive", ErrInvalidInput)
	}
	if filter.StartDate != nil && filter.EndDate != nil && filter.EndDate.Before(*filter.StartDate) {
		return nil, fmt.Errorf("%w: end date is before start date", ErrInvalidInput)
	}

	list, err := s.bookingRepo.GetByTenantWithFilter(ctx, filter)
	if err != nil {
		s.logger.Error("ListByTenant: failed to list bookings for tenant=%d: %v", filter.TenantID, err)
		return nil, fmt.Errorf("%w: failed to list bookings: %v", ErrInternal, err)
	}
	return list, nil
}

// Update меняет редактируемые поля бронирования.
// Число посетителей и слот этим путём не меняются
func (s *Service) Update(ctx context.Context, tenantID, bookingID int64, edit domain.BookingEdit) (*domain.Booking, error) {
	if !edit.HasChanges() {
		return nil, fmt.Errorf("%w: no fields to update", ErrInvalidInput)
	}
	if edit.TotalPrice != nil && *edit.TotalPrice < 0 {
		return nil, fmt.Errorf("%w: total price must be non-negative", ErrInvalidInput)
	}
	if edit.Notes != nil && len(*edit.Notes) > domain.MaxNotesLength {
		return nil, fmt.Errorf("%w: notes exceed %d characters", ErrInvalidInput, domain.MaxNotesLength)
	}

	var result *domain.Booking

	err := s.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		booking, err := s.lockTenantBooking(txCtx, tenantID, bookingID)
		if err != nil {
			return err
		}
		if !booking.CanBeEdited() {
			s.logger.Warn("Update: booking id=%d in status %s is not editable", booking.ID, booking.Status)
			return fmt.Errorf("%w: status is %s", ErrNotEditable, booking.Status)
		}

		if err := s.bookingRepo.UpdateFields(txCtx, booking.ID, edit); err != nil {
			s.logger.Error("Update: failed to update booking id=%d: %v", booking.ID, err)
			return fmt.Errorf("%w: failed to update booking: %v", ErrInternal, err)
		}

		applyEdit(booking, edit)
		result = booking
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Update: updated booking id=%d", result.ID)
	return result, nil
}

// UpdateStatus выполняет переход статуса бронирования.
// Переход в cancelled возвращает удержанные места в слот той же транзакцией
func (s *Service) UpdateStatus(ctx context.Context, tenantID, bookingID int64, next domain.BookingStatus) (*domain.Booking, error) {
	switch next {
	case domain.StatusPending, domain.StatusConfirmed, domain.StatusCompleted, domain.StatusCancelled:
	default:
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, next)
	}

	var result *domain.Booking

	err := s.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		booking, err := s.lockTenantBooking(txCtx, tenantID, bookingID)
		if err != nil {
			return err
		}

		if !booking.CanTransitionTo(next) {
			s.logger.Warn("UpdateStatus: booking id=%d transition %s -> %s rejected",
				booking.ID, booking.Status, next)
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, booking.Status, next)
		}

		// Отмена через смену статуса возвращает места, как и прямая отмена
		if next == domain.StatusCancelled {
			if _, err := s.slotRepo.Release(txCtx, booking.SlotID, booking.ReservedUnits); err != nil {
				s.logger.Error("UpdateStatus: failed to release %d units of slot id=%d: %v",
					booking.ReservedUnits, booking.SlotID, err)
				return fmt.Errorf("%w: failed to release slot capacity: %v", ErrInternal, err)
			}
		}

		if err := s.bookingRepo.UpdateStatus(txCtx, booking.ID, next); err != nil {
			s.logger.Error("UpdateStatus: failed to update booking id=%d: %v", booking.ID, err)
			return fmt.Errorf("%w: failed to update status: %v", ErrInternal, err)
		}

		booking.Status = next
		result = booking
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("UpdateStatus: booking id=%d is now %s", result.ID, next)
	return result, nil
}

// lockTenantBooking блокирует строку бронирования и проверяет принадлежность
func (s *Service) lockTenantBooking(ctx context.Context, tenantID, bookingID int64) (*domain.Booking, error) {
	booking, err := s.bookingRepo.GetByIDForUpdate(ctx, bookingID)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			return nil, ErrBookingNotFound
		}
		s.logger.Error("lockTenantBooking: failed to get booking id=%d: %v", bookingID, err)
		return nil, fmt.Errorf("%w: failed to get booking: %v", ErrInternal, err)
	}
	if booking.TenantID != tenantID {
		s.logger.Warn("lockTenantBooking: booking id=%d belongs to tenant=%d, requested tenant=%d",
			booking.ID, booking.TenantID, tenantID)
		return nil, ErrBookingNotFound
	}
	return booking, nil
}

func applyEdit(b *domain.Booking, e domain.BookingEdit) {
	if e.CustomerName != nil {
		b.CustomerName = *e.CustomerName
	}
	if e.CustomerEmail != nil {
		b.CustomerEmail = *e.CustomerEmail
	}
	if e.CustomerPhone != nil {
		b.CustomerPhone = e.CustomerPhone
	}
	if e.Notes != nil {
		b.Notes = e.Notes
	}
	if e.TotalPrice != nil {
		b.TotalPrice = *e.TotalPrice
	}
}
