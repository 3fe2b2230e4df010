package get_tenant_bookings

import (
	"errors"
	"net/http"
	"time"

	"github.com/vkotlyarr/VF-BookingEngine/internal/api/handlers"
	"github.com/vkotlyarr/VF-BookingEngine/internal/domain"
	"github.com/vkotlyarr/VF-BookingEngine/internal/service/bookings"
)

const (
	msgInvalidTenantID = "некорректный идентификатор тенанта"
	msgInvalidFilter   = "некорректные параметры фильтрации"
)

type Handler struct {
	service BookingsService
	logger  Logger
}

func NewHandler(service BookingsService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/tenants/{tenantId}/bookings
// Query: serviceId, slotId, from, to (YYYY-MM-DD), status, includeInactive
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	tenantID, err := handlers.PathInt64(r, "tenantId")
	if err != nil {
		handlers.RespondBadRequest(w, msgInvalidTenantID)
		return
	}

	filter, err := buildFilter(r, tenantID)
	if err != nil {
		h.logger.Warn("GET /bookings - Invalid filter: tenant_id=%d, error=%v", tenantID, err)
		handlers.RespondBadRequest(w, msgInvalidFilter)
		return
	}

	list, err := h.service.ListByTenant(r.Context(), filter)
	if err != nil {
		switch {
		case errors.Is(err, bookings.ErrInvalidInput):
			handlers.RespondBadRequest(w, msgInvalidFilter)
		default:
			h.logger.Error("GET /bookings - Failed to list bookings: tenant_id=%d, error=%v", tenantID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	handlers.RespondJSON(w, http.StatusOK, handlers.BookingViewsFromDomain(list))
}

func buildFilter(r *http.Request, tenantID int64) (domain.TenantBookingsFilter, error) {
	filter := domain.TenantBookingsFilter{
		TenantID:        tenantID,
		IncludeInactive: handlers.QueryBool(r, "includeInactive"),
	}

	var err error
	if filter.ServiceID, err = handlers.QueryInt64(r, "serviceId"); err != nil {
		return filter, err
	}
	if filter.SlotID, err = handlers.QueryInt64(r, "slotId"); err != nil {
		return filter, err
	}
	if filter.StartDate, err = queryDate(r, "from"); err != nil {
		return filter, err
	}
	if filter.EndDate, err = queryDate(r, "to"); err != nil {
		return filter, err
	}

	if raw := r.URL.Query().Get("status"); raw != "" {
		status := domain.BookingStatus(raw)
		switch status {
		case domain.StatusPending, domain.StatusConfirmed, domain.StatusCompleted, domain.StatusCancelled:
			filter.Status = &status
		default:
			return filter, errors.New("unknown status " + raw)
		}
	}

	return filter, nil
}

func queryDate(r *http.Request, name string) (*time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
