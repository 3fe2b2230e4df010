package update_booking

import (
	"errors"
	"net/http"

	"github.com/vkotlyarr/VF-BookingEngine/internal/api/handlers"
	"github.com/vkotlyarr/VF-BookingEngine/internal/domain"
	"github.com/vkotlyarr/VF-BookingEngine/internal/service/bookings"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidTenantID    = "некорректный идентификатор тенанта"
	msgInvalidBookingID   = "некорректный идентификатор бронирования"
	msgInvalidInput       = "некорректные параметры обновления"
	msgBookingNotFound    = "бронирование не найдено"
	msgNotEditable        = "бронирование нельзя редактировать в текущем статусе"
	msgInvalidTransition  = "недопустимый переход статуса"
	msgMixedUpdate        = "статус меняется отдельным запросом от остальных полей"
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

// Handle PATCH /api/v1/tenants/{tenantId}/bookings/{bookingId}
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

	var req UpdateBookingRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PATCH /bookings/{id} - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	edit := req.ToEdit()
	if req.Status != nil && edit.HasChanges() {
		handlers.RespondBadRequest(w, msgMixedUpdate)
		return
	}

	var booking *domain.Booking
	if req.Status != nil {
		booking, err = h.service.UpdateStatus(r.Context(), tenantID, bookingID, domain.BookingStatus(*req.Status))
	} else {
		booking, err = h.service.Update(r.Context(), tenantID, bookingID, edit)
	}
	if err != nil {
		switch {
		case errors.Is(err, bookings.ErrInvalidInput):
			h.logger.Warn("PATCH /bookings/{id} - Invalid input: booking_id=%d, error=%v", bookingID, err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		case errors.Is(err, bookings.ErrBookingNotFound):
			handlers.RespondNotFound(w, msgBookingNotFound)

		case errors.Is(err, bookings.ErrNotEditable):
			h.logger.Warn("PATCH /bookings/{id} - Not editable: booking_id=%d", bookingID)
			handlers.RespondConflict(w, msgNotEditable)

		case errors.Is(err, bookings.ErrInvalidTransition):
			h.logger.Warn("PATCH /bookings/{id} - Invalid transition: booking_id=%d, error=%v", bookingID, err)
			handlers.RespondConflict(w, msgInvalidTransition)

		default:
			h.logger.Error("PATCH /bookings/{id} - Failed to update booking: booking_id=%d, error=%v", bookingID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PATCH /bookings/{id} - Booking updated: booking_id=%d, tenant_id=%d", bookingID, tenantID)
	handlers.RespondJSON(w, http.StatusOK, handlers.BookingViewFromDomain(booking))
}
