package get_available_slots

import (
	"errors"
	"net/http"
	"time"

	"github.com/vkotlyarr/VF-BookingEngine/internal/api/handlers"
	"github.com/vkotlyarr/VF-BookingEngine/internal/domain"
	"github.com/vkotlyarr/VF-BookingEngine/internal/service/slots"
)

const (
	msgInvalidTenantID = "некорректный идентификатор тенанта"
	msgInvalidFilter   = "некорректные параметры фильтрации"
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

// Handle GET /api/v1/tenants/{tenantId}/available-slots
// Query: from, to (YYYY-MM-DD, обязательные), shiftId, onlyAvailable
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	tenantID, err := handlers.PathInt64(r, "tenantId")
	if err != nil {
		handlers.RespondBadRequest(w, msgInvalidTenantID)
		return
	}

	dateFrom, err := time.Parse("2006-01-02", r.URL.Query().Get("from"))
	if err != nil {
		handlers.RespondBadRequest(w, msgInvalidFilter)
		return
	}
	dateTo, err := time.Parse("2006-01-02", r.URL.Query().Get("to"))
	if err != nil {
		handlers.RespondBadRequest(w, msgInvalidFilter)
		return
	}
	shiftID, err := handlers.QueryInt64(r, "shiftId")
	if err != nil {
		handlers.RespondBadRequest(w, msgInvalidFilter)
		return
	}

	list, err := h.service.ListAvailable(r.Context(), domain.SlotsFilter{
		TenantID:      tenantID,
		ShiftID:       shiftID,
		DateFrom:      dateFrom,
		DateTo:        dateTo,
		OnlyAvailable: handlers.QueryBool(r, "onlyAvailable"),
	})
	if err != nil {
		switch {
		case errors.Is(err, slots.ErrInvalidInput):
			handlers.RespondBadRequest(w, msgInvalidFilter)
		default:
			h.logger.Error("GET /available-slots - Failed to list slots: tenant_id=%d, error=%v", tenantID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	handlers.RespondJSON(w, http.StatusOK, SlotViewsFromDomain(list))
}
