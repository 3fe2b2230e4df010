package generate_slots

import (
	"errors"
	"net/http"
	"time"

	"github.com/vkotlyarr/VF-BookingEngine/internal/api/handlers"
	"github.com/vkotlyarr/VF-BookingEngine/internal/service/slots"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidTenantID    = "некорректный идентификатор тенанта"
	msgInvalidShiftID     = "некорректный идентификатор смены"
	msgInvalidServiceID   = "некорректный идентификатор услуги"
	msgInvalidDates       = "некорректный диапазон дат"
	msgShiftNotFound      = "смена не найдена"
	msgServiceNoShifts    = "у услуги нет настроенных смен"
)

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

// Handle POST /api/v1/tenants/{tenantId}/shifts/{shiftId}/slots
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	tenantID, err := handlers.PathInt64(r, "tenantId")
	if err != nil {
		handlers.RespondBadRequest(w, msgInvalidTenantID)
		return
	}
	shiftID, err := handlers.PathInt64(r, "shiftId")
	if err != nil {
		handlers.RespondBadRequest(w, msgInvalidShiftID)
		return
	}

	var req GenerateSlotsRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /shifts/{id}/slots - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	dateFrom, err := time.Parse("2006-01-02", req.DateFrom)
	if err != nil {
		handlers.RespondBadRequest(w, msgInvalidDates)
		return
	}
	dateTo, err := time.Parse("2006-01-02", req.DateTo)
	if err != nil {
		handlers.RespondBadRequest(w, msgInvalidDates)
		return
	}

	created, err := h.service.GenerateForShift(r.Context(), tenantID, shiftID, dateFrom, dateTo)
	if err != nil {
		switch {
		case errors.Is(err, slots.ErrInvalidInput):
			h.logger.Warn("POST /shifts/{id}/slots - Invalid input: shift_id=%d, error=%v", shiftID, err)
			handlers.RespondBadRequest(w, msgInvalidDates)

		case errors.Is(err, slots.ErrShiftNotFound):
			handlers.RespondNotFound(w, msgShiftNotFound)

		default:
			h.logger.Error("POST /shifts/{id}/slots - Failed to generate slots: shift_id=%d, error=%v", shiftID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /shifts/{id}/slots - Slots generated: tenant_id=%d, shift_id=%d, created=%d",
		tenantID, shiftID, len(created))
	handlers.RespondJSON(w, http.StatusCreated, &GenerateSlotsResponse{Created: len(created)})
}

// HandleForService POST /api/v1/tenants/{tenantId}/services/{serviceId}/slots
// Разворачивает сразу все смены услуги
func (h *Handler) HandleForService(w http.ResponseWriter, r *http.Request) {
	tenantID, err := handlers.PathInt64(r, "tenantId")
	if err != nil {
		handlers.RespondBadRequest(w, msgInvalidTenantID)
		return
	}
	serviceID, err := handlers.PathInt64(r, "serviceId")
	if err != nil {
		handlers.RespondBadRequest(w, msgInvalidServiceID)
		return
	}

	var req GenerateSlotsRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /services/{id}/slots - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	dateFrom, err := time.Parse("2006-01-02", req.DateFrom)
	if err != nil {
		handlers.RespondBadRequest(w, msgInvalidDates)
		return
	}
	dateTo, err := time.Parse("2006-01-02", req.DateTo)
	if err != nil {
		handlers.RespondBadRequest(w, msgInvalidDates)
		return
	}

	created, err := h.service.GenerateForService(r.Context(), tenantID, serviceID, dateFrom, dateTo)
	if err != nil {
		switch {
		case errors.Is(err, slots.ErrInvalidInput):
			h.logger.Warn("POST /services/{id}/slots - Invalid input: service_id=%d, error=%v", serviceID, err)
			handlers.RespondBadRequest(w, msgInvalidDates)

		case errors.Is(err, slots.ErrShiftNotFound):
			handlers.RespondNotFound(w, msgServiceNoShifts)

		default:
			h.logger.Error("POST /services/{id}/slots - Failed to generate slots: service_id=%d, error=%v", serviceID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /services/{id}/slots - Slots generated: tenant_id=%d, service_id=%d, created=%d",
		tenantID, serviceID, len(created))
	handlers.RespondJSON(w, http.StatusCreated, &GenerateSlotsResponse{Created: len(created)})
}
