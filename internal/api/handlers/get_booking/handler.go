package get_booking

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/vkotlyarr/VF-BookingEngine/internal/api/handlers"
	"github.com/vkotlyarr/VF-BookingEngine/internal/service/bookings"
)

const (
	msgInvalidTenantID  = "некорректный идентификатор тенанта"
	msgInvalidBookingID = "некорректный идентификатор бронирования"
	msgInvalidGroupID   = "некорректный идентификатор группы бронирований"
	msgBookingNotFound  = "бронирование не найдено"
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

// Handle GET /api/v1/tenants/{tenantId}/bookings/{bookingId}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	tenantID, err := handlers.PathInt64(r, "tenantId")
	if err != nil {
		handlers.RespondBadRequest(w, msgInvalidTenantID)
		return
	}
	bookingID, err := handlers.PathInt64(r, "bookingId")
	if err != nil {
		handlers.RespondBadRequest(w, msgInvalidBookingID)
		return
	}

	booking, err := h.service.GetByID(r.Context(), tenantID, bookingID)
	if err != nil {
		switch {
		case errors.Is(err, bookings.ErrBookingNotFound):
			handlers.RespondNotFound(w, msgBookingNotFound)
		default:
			h.logger.Error("GET /bookings/{id} - Failed to get booking: tenant_id=%d, booking_id=%d, error=%v",
				tenantID, bookingID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	handlers.RespondJSON(w, http.StatusOK, handlers.BookingViewFromDomain(booking))
}

// HandleGroup GET /api/v1/tenants/{tenantId}/booking-groups/{groupId}
func (h *Handler) HandleGroup(w http.ResponseWriter, r *http.Request) {
	tenantID, err := handlers.PathInt64(r, "tenantId")
	if err != nil {
		handlers.RespondBadRequest(w, msgInvalidTenantID)
		return
	}
	groupID := mux.Vars(r)["groupId"]

	group, err := h.service.GetGroup(r.Context(), tenantID, groupID)
	if err != nil {
		switch {
		case errors.Is(err, bookings.ErrInvalidInput):
			handlers.RespondBadRequest(w, msgInvalidGroupID)
		case errors.Is(err, bookings.ErrBookingNotFound):
			handlers.RespondNotFound(w, msgBookingNotFound)
		default:
			h.logger.Error("GET /booking-groups/{id} - Failed to get group: tenant_id=%d, group_id=%s, error=%v",
				tenantID, groupID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	handlers.RespondJSON(w, http.StatusOK, handlers.BookingViewsFromDomain(group))
}
