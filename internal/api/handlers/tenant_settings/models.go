package tenant_settings

import "github.com/vkotlyarr/VF-BookingEngine/internal/domain"

// UpdateSettingsRequest HTTP request model
type UpdateSettingsRequest struct {
	SchedulingMode   string `json:"schedulingMode"`
	AssignmentPolicy string `json:"assignmentPolicy"`
}

// SettingsResponse HTTP response model
type SettingsResponse struct {
	TenantID         int64  `json:"tenantId"`
	SchedulingMode   string `json:"schedulingMode"`
	AssignmentPolicy string `json:"assignmentPolicy"`
}

// FromDomain конвертирует доменные настройки в HTTP модель
func FromDomain(s *domain.TenantSettings) *SettingsResponse {
	return &SettingsResponse{
		TenantID:         s.TenantID,
		SchedulingMode:   string(s.SchedulingMode),
		AssignmentPolicy: string(s.AssignmentPolicy),
	}
}
