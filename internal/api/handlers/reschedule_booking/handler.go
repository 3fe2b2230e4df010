package reschedule_booking

import (
	"errors"
	"net/http"

	"github.com/vkotlyarr/VF-BookingEngine/internal/api/handlers"
	rescheduleBooking "github.com/vkotlyarr/VF-BookingEngine/internal/usecase/reschedule_booking"
)

const (
	msgInvalidRequestBody   = "некорректное тело запроса"
	msgInvalidTenantID      = "некорректный идентификатор тенанта"
	msgInvalidBookingID     = "некорректный идентификатор бронирования"
	msgInvalidInput         = "некорректные параметры переноса"
	msgBookingNotFound      = "бронирование не найдено"
	msgNotReschedulable     = "бронирование нельзя перенести в текущем статусе"
	msgSameSlot             = "бронирование уже находится в этом слоте"
	msgSlotNotFound         = "новый слот не найден"
	msgSlotMismatch         = "новый слот не относится к услуге бронирования"
	msgSlotUnavailable      = "новый слот закрыт для бронирования"
	msgInsufficientCapacity = "в новом слоте недостаточно свободных мест"
	msgEmployeeUnavailable  = "нет доступного сотрудника на новое время"
)

type Handler struct {
	useCase RescheduleBookingUseCase
	logger  Logger
}

func NewHandler(useCase RescheduleBookingUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/tenants/{tenantId}/bookings/{bookingId}/reschedule
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

	var req RescheduleBookingRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /bookings/{id}/reschedule - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.useCase.Execute(r.Context(), req.ToUseCaseRequest(tenantID, bookingID))
	if err != nil {
		switch {
		case errors.Is(err, rescheduleBooking.ErrInvalidInput):
			h.logger.Warn("POST /bookings/{id}/reschedule - Invalid input: booking_id=%d, error=%v", bookingID, err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		case errors.Is(err, rescheduleBooking.ErrSameSlot):
			handlers.RespondBadRequest(w, msgSameSlot)

		case errors.Is(err, rescheduleBooking.ErrBookingNotFound):
			handlers.RespondNotFound(w, msgBookingNotFound)

		case errors.Is(err, rescheduleBooking.ErrSlotNotFound):
			handlers.RespondNotFound(w, msgSlotNotFound)

		case errors.Is(err, rescheduleBooking.ErrSlotMismatch):
			handlers.RespondNotFound(w, msgSlotMismatch)

		case errors.Is(err, rescheduleBooking.ErrNotReschedulable):
			h.logger.Warn("POST /bookings/{id}/reschedule - Not reschedulable: booking_id=%d", bookingID)
			handlers.RespondConflict(w, msgNotReschedulable)

		case errors.Is(err, rescheduleBooking.ErrSlotUnavailable):
			handlers.RespondConflict(w, msgSlotUnavailable)

		case errors.Is(err, rescheduleBooking.ErrInsufficientCapacity):
			h.logger.Warn("POST /bookings/{id}/reschedule - Insufficient capacity: booking_id=%d, slot_id=%d",
				bookingID, req.NewSlotID)
			handlers.RespondConflict(w, msgInsufficientCapacity)

		case errors.Is(err, rescheduleBooking.ErrEmployeeUnavailable):
			handlers.RespondConflict(w, msgEmployeeUnavailable)

		default:
			h.logger.Error("POST /bookings/{id}/reschedule - Failed to reschedule: booking_id=%d, error=%v",
				bookingID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /bookings/{id}/reschedule - Booking moved: booking_id=%d, new_slot_id=%d",
		bookingID, req.NewSlotID)
	handlers.RespondJSON(w, http.StatusOK, handlers.BookingViewFromDomain(result.Booking))
}
