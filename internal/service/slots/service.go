package slots

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vkotlyarr/VF-BookingEngine/internal/domain"
	shiftRepo "github.com/vkotlyarr/VF-BookingEngine/internal/infra/storage/shift"
	slotRepo "github.com/vkotlyarr/VF-BookingEngine/internal/infra/storage/slot"
	"github.com/vkotlyarr/VF-BookingEngine/pkg/types"
)

// Количество дней вперёд, на которое за один вызов разворачиваются слоты
const maxGenerationDays = 92

// Service ведёт календарь слотов: разворачивает смены в датированные слоты
// и отдаёт доступность публичному листингу
type Service struct {
	slotRepo  SlotRepository
	shiftRepo ShiftRepository
	txManager TransactionManager
	logger    Logger
}

// NewService создает сервис слотов
func NewService(
	slotRepository SlotRepository,
	shiftRepository ShiftRepository,
	txManager TransactionManager,
	logger Logger,
) *Service {
	return &Service{
		slotRepo:  slotRepository,
		shiftRepo: shiftRepository,
		txManager: txManager,
		logger:    logger,
	}
}

// GenerateForShift разворачивает смену в слоты на период [dateFrom, dateTo].
// Уже существующие слоты смены не пересоздаются и их счётчики не трогаются,
// повторный вызов на том же периоде идемпотентен
func (s *Service) GenerateForShift(ctx context.Context, tenantID, shiftID int64, dateFrom, dateTo time.Time) ([]*domain.Slot, error) {
	if err := validatePeriod(tenantID, dateFrom, dateTo); err != nil {
		return nil, err
	}
	if shiftID <= 0 {
		return nil, fmt.Errorf("%w: shift id must be positive", ErrInvalidInput)
	}

	var created []*domain.Slot

	err := s.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		shift, err := s.shiftRepo.GetByID(txCtx, shiftID)
		if err != nil {
			if errors.Is(err, shiftRepo.ErrShiftNotFound) {
				return ErrShiftNotFound
			}
			s.logger.Error("GenerateForShift: failed to get shift id=%d: %v", shiftID, err)
			return fmt.Errorf("%w: failed to get shift: %v", ErrInternal, err)
		}
		if shift.TenantID != tenantID {
			s.logger.Warn("GenerateForShift: shift id=%d belongs to tenant=%d, requested tenant=%d",
				shift.ID, shift.TenantID, tenantID)
			return ErrShiftNotFound
		}

		created, err = s.expandShift(txCtx, shift, dateFrom, dateTo)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("GenerateForShift: shift id=%d produced %d new slots for %s..%s",
		shiftID, len(created), dateFrom.Format(domain.DateFormat), dateTo.Format(domain.DateFormat))

	return created, nil
}

// GenerateForService разворачивает в слоты сразу все смены услуги
// за один вызов и одну транзакцию. Идемпотентность та же, что и у
// пошифтовой генерации
func (s *Service) GenerateForService(ctx context.Context, tenantID, serviceID int64, dateFrom, dateTo time.Time) ([]*domain.Slot, error) {
	if err := validatePeriod(tenantID, dateFrom, dateTo); err != nil {
		return nil, err
	}
	if serviceID <= 0 {
		return nil, fmt.Errorf("%w: service id must be positive", ErrInvalidInput)
	}

	var created []*domain.Slot

	err := s.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		shifts, err := s.shiftRepo.ListByService(txCtx, tenantID, serviceID)
		if err != nil {
			s.logger.Error("GenerateForService: failed to list shifts of service=%d: %v", serviceID, err)
			return fmt.Errorf("%w: failed to list shifts: %v", ErrInternal, err)
		}
		if len(shifts) == 0 {
			s.logger.Warn("GenerateForService: service=%d of tenant=%d has no shifts", serviceID, tenantID)
			return ErrShiftNotFound
		}

		created = created[:0]
		for _, shift := range shifts {
			rows, err := s.expandShift(txCtx, shift, dateFrom, dateTo)
			if err != nil {
				return err
			}
			created = append(created, rows...)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("GenerateForService: service id=%d produced %d new slots for %s..%s",
		serviceID, len(created), dateFrom.Format(domain.DateFormat), dateTo.Format(domain.DateFormat))

	return created, nil
}

// expandShift создаёт недостающие слоты одной смены на период
func (s *Service) expandShift(ctx context.Context, shift *domain.Shift, dateFrom, dateTo time.Time) ([]*domain.Slot, error) {
	existing, err := s.slotRepo.ListByShiftAndDates(ctx, shift.ID, dateFrom, dateTo)
	if err != nil {
		s.logger.Error("expandShift: failed to list existing slots of shift id=%d: %v", shift.ID, err)
		return nil, fmt.Errorf("%w: failed to list existing slots: %v", ErrInternal, err)
	}
	occupied := make(map[string]bool, len(existing))
	for _, sl := range existing {
		occupied[slotKey(sl.SlotDate, sl.StartTime)] = true
	}

	created := make([]*domain.Slot, 0)
	for date := dateFrom; !date.After(dateTo); date = date.AddDate(0, 0, 1) {
		if !shift.Weekdays.Contains(date.Weekday()) {
			continue
		}
		for _, window := range expandWindows(shift) {
			if occupied[slotKey(date, window.start)] {
				continue
			}
			slot, err := s.slotRepo.Create(ctx, &domain.Slot{
				TenantID:          shift.TenantID,
				ShiftID:           shift.ID,
				SlotDate:          date,
				StartTime:         window.start,
				EndTime:           window.end,
				OriginalCapacity:  shift.SlotCapacity,
				AvailableCapacity: shift.SlotCapacity,
				BookedCount:       0,
				IsAvailable:       true,
			})
			if err != nil {
				s.logger.Error("expandShift: failed to create slot %s %s: %v",
					date.Format(domain.DateFormat), window.start, err)
				return nil, fmt.Errorf("%w: failed to create slot: %v", ErrInternal, err)
			}
			created = append(created, slot)
		}
	}
	return created, nil
}

// ListAvailable возвращает слоты тенанта за период для публичного листинга
func (s *Service) ListAvailable(ctx context.Context, filter domain.SlotsFilter) ([]*domain.Slot, error) {
	if filter.TenantID <= 0 {
		return nil, fmt.Errorf("%w: tenant id must be positive", ErrInvalidInput)
	}
	if filter.DateTo.Before(filter.DateFrom) {
		return nil, fmt.Errorf("%w: end date is before start date", ErrInvalidInput)
	}

	list, err := s.slotRepo.ListByFilter(ctx, filter)
	if err != nil {
		s.logger.Error("ListAvailable: failed to list slots for tenant=%d: %v", filter.TenantID, err)
		return nil, fmt.Errorf("%w: failed to list slots: %v", ErrInternal, err)
	}
	return list, nil
}

// SetAvailability вручную открывает или закрывает слот для бронирования
// Счётчики ёмкости и существующие бронирования при этом не меняются
func (s *Service) SetAvailability(ctx context.Context, tenantID, slotID int64, available bool) error {
	slot, err := s.slotRepo.GetByID(ctx, slotID)
	if err != nil {
		if errors.Is(err, slotRepo.ErrSlotNotFound) {
			return ErrSlotNotFound
		}
		s.logger.Error("SetAvailability: failed to get slot id=%d: %v", slotID, err)
		return fmt.Errorf("%w: failed to get slot: %v", ErrInternal, err)
	}
	if slot.TenantID != tenantID {
		return ErrSlotNotFound
	}

	if err := s.slotRepo.SetAvailability(ctx, slotID, available); err != nil {
		s.logger.Error("SetAvailability: failed to update slot id=%d: %v", slotID, err)
		return fmt.Errorf("%w: failed to update slot: %v", ErrInternal, err)
	}

	s.logger.Info("SetAvailability: slot id=%d available=%t", slotID, available)
	return nil
}

func validatePeriod(tenantID int64, dateFrom, dateTo time.Time) error {
	if tenantID <= 0 {
		return fmt.Errorf("%w: tenant id must be positive", ErrInvalidInput)
	}
	if dateTo.Before(dateFrom) {
		return fmt.Errorf("%w: end date is before start date", ErrInvalidInput)
	}
	if dateTo.Sub(dateFrom) > maxGenerationDays*24*time.Hour {
		return fmt.Errorf("%w: generation period exceeds %d days", ErrInvalidInput, maxGenerationDays)
	}
	return nil
}

type window struct {
	start types.TimeString
	end   types.TimeString
}

// expandWindows режет рабочее окно смены на окна длиной в слот.
// Неполный хвост, не вмещающий целый слот, отбрасывается
func expandWindows(shift *domain.Shift) []window {
	var windows []window
	for start := shift.StartTime; ; {
		end, _ := start.AddMinutes(shift.SlotDurationMinutes)
		if end.IsAfter(shift.EndTime) || end == start {
			break
		}
		windows = append(windows, window{start: start, end: end})
		if end == shift.EndTime {
			break
		}
		start = end
	}
	return windows
}

func slotKey(date time.Time, start types.TimeString) string {
	return date.Format(domain.DateFormat) + "T" + string(start)
}
