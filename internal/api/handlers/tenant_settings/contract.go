package tenant_settings

import (
	"context"

	"github.com/vkotlyarr/VF-BookingEngine/internal/domain"
)

type SettingsService interface {
	Get(ctx context.Context, tenantID int64) (*domain.TenantSettings, error)
	Update(ctx context.Context, tenantID int64, mode domain.SchedulingMode, policy domain.AssignmentPolicy) (*domain.TenantSettings, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
