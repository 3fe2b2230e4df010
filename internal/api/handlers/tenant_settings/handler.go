package tenant_settings

import (
	"errors"
	"net/http"

	"github.com/vkotlyarr/VF-BookingEngine/internal/api/handlers"
	"github.com/vkotlyarr/VF-BookingEngine/internal/domain"
	"github.com/vkotlyarr/VF-BookingEngine/internal/service/settings"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidTenantID    = "некорректный идентификатор тенанта"
	msgInvalidSettings    = "некорректные значения настроек"
)

type Handler struct {
	service SettingsService
	logger  Logger
}

func NewHandler(service SettingsService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// HandleGet GET /api/v1/tenants/{tenantId}/settings
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	tenantID, err := handlers.PathInt64(r, "tenantId")
	if err != nil {
		handlers.RespondBadRequest(w, msgInvalidTenantID)
		return
	}

	result, err := h.service.Get(r.Context(), tenantID)
	if err != nil {
		switch {
		case errors.Is(err, settings.ErrInvalidInput):
			handlers.RespondBadRequest(w, msgInvalidTenantID)
		default:
			h.logger.Error("GET /settings - Failed to get settings: tenant_id=%d, error=%v", tenantID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	handlers.RespondJSON(w, http.StatusOK, FromDomain(result))
}

// HandleUpdate PUT /api/v1/tenants/{tenantId}/settings
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	tenantID, err := handlers.PathInt64(r, "tenantId")
	if err != nil {
		handlers.RespondBadRequest(w, msgInvalidTenantID)
		return
	}

	var req UpdateSettingsRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PUT /settings - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.service.Update(r.Context(), tenantID,
		domain.SchedulingMode(req.SchedulingMode),
		domain.AssignmentPolicy(req.AssignmentPolicy))
	if err != nil {
		switch {
		case errors.Is(err, settings.ErrInvalidInput):
			h.logger.Warn("PUT /settings - Invalid settings: tenant_id=%d, error=%v", tenantID, err)
			handlers.RespondBadRequest(w, msgInvalidSettings)
		default:
			h.logger.Error("PUT /settings - Failed to update settings: tenant_id=%d, error=%v", tenantID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PUT /settings - Settings updated: tenant_id=%d, mode=%s, policy=%s",
		tenantID, result.SchedulingMode, result.AssignmentPolicy)
	handlers.RespondJSON(w, http.StatusOK, FromDomain(result))
}
