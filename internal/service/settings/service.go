package settings

import (
	"context"
	"errors"
	"fmt"

	"github.com/vkotlyarr/VF-BookingEngine/internal/domain"
	settingsRepo "github.com/vkotlyarr/VF-BookingEngine/internal/infra/storage/tenantsettings"
)

var (
	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("settings.service: invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("settings.service: internal error")
)

// SettingsRepository интерфейс репозитория настроек тенанта
type SettingsRepository interface {
	GetByTenant(ctx context.Context, tenantID int64) (*domain.TenantSettings, error)
	Upsert(ctx context.Context, s *domain.TenantSettings) (*domain.TenantSettings, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Service настройки планирования тенанта.
// Переключение режима не переписывает историю: существующие бронирования
// сохраняют своих сотрудников (или их отсутствие)
type Service struct {
	repo   SettingsRepository
	logger Logger
}

// NewService создает сервис настроек
func NewService(repo SettingsRepository, logger Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Get возвращает настройки тенанта, дефолтные если тенант их не задавал
func (s *Service) Get(ctx context.Context, tenantID int64) (*domain.TenantSettings, error) {
	if tenantID <= 0 {
		return nil, fmt.Errorf("%w: tenant id must be positive", ErrInvalidInput)
	}

	settings, err := s.repo.GetByTenant(ctx, tenantID)
	if err != nil {
		if errors.Is(err, settingsRepo.ErrSettingsNotFound) {
			return &domain.TenantSettings{
				TenantID:         tenantID,
				SchedulingMode:   domain.DefaultSchedulingMode,
				AssignmentPolicy: domain.DefaultAssignmentPolicy,
			}, nil
		}
		s.logger.Error("Get: failed to get settings for tenant=%d: %v", tenantID, err)
		return nil, fmt.Errorf("%w: failed to get settings: %v", ErrInternal, err)
	}
	return settings, nil
}

// Update задает режим планирования и политику назначения тенанта
func (s *Service) Update(ctx context.Context, tenantID int64, mode domain.SchedulingMode, policy domain.AssignmentPolicy) (*domain.TenantSettings, error) {
	if tenantID <= 0 {
		return nil, fmt.Errorf("%w: tenant id must be positive", ErrInvalidInput)
	}
	if !domain.ValidSchedulingMode(mode) {
		return nil, fmt.Errorf("%w: unknown scheduling mode %q", ErrInvalidInput, mode)
	}
	if !domain.ValidAssignmentPolicy(policy) {
		return nil, fmt.Errorf("%w: unknown assignment policy %q", ErrInvalidInput, policy)
	}

	updated, err := s.repo.Upsert(ctx, &domain.TenantSettings{
		TenantID:         tenantID,
		SchedulingMode:   mode,
		AssignmentPolicy: policy,
	})
	if err != nil {
		s.logger.Error("Update: failed to upsert settings for tenant=%d: %v", tenantID, err)
		return nil, fmt.Errorf("%w: failed to update settings: %v", ErrInternal, err)
	}

	s.logger.Info("Update: tenant=%d mode=%s policy=%s", tenantID, mode, policy)
	return updated, nil
}
