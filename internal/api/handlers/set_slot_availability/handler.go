package set_slot_availability

import (
	"errors"
	"net/http"

	"github.com/vkotlyarr/VF-BookingEngine/internal/api/handlers"
	"github.com/vkotlyarr/VF-BookingEngine/internal/service/slots"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidTenantID    = "некорректный идентификатор тенанта"
	msgInvalidSlotID      = "некорректный идентификатор слота"
	msgSlotNotFound       = "слот не найден"
)

// SetSlotAvailabilityRequest HTTP request model
type SetSlotAvailabilityRequest struct {
	Available bool `json:"available"`
}

type Handler struct {
	service SlotsService
	logger  Logger
}

func NewHandler(service SlotsService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle PATCH /api/v1/tenants/{tenantId}/slots/{slotId}/availability
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	tenantID, err := handlers.PathInt64(r, "tenantId")
	if err != nil {
		handlers.RespondBadRequest(w, msgInvalidTenantID)
		return
	}
	slotID, err := handlers.PathInt64(r, "slotId")
	if err != nil {
		handlers.RespondBadRequest(w, msgInvalidSlotID)
		return
	}

	var req SetSlotAvailabilityRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PATCH /slots/{id}/availability - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	if err := h.service.SetAvailability(r.Context(), tenantID, slotID, req.Available); err != nil {
		switch {
		case errors.Is(err, slots.ErrInvalidInput):
			handlers.RespondBadRequest(w, msgInvalidSlotID)
		case errors.Is(err, slots.ErrSlotNotFound):
			handlers.RespondNotFound(w, msgSlotNotFound)
		default:
			h.logger.Error("PATCH /slots/{id}/availability - Failed to update slot: slot_id=%d, error=%v",
				slotID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PATCH /slots/{id}/availability - Slot updated: tenant_id=%d, slot_id=%d, available=%t",
		tenantID, slotID, req.Available)
	w.WriteHeader(http.StatusNoContent)
}
