package create_booking

import (
	"errors"
	"net/http"

	"github.com/vkotlyarr/VF-BookingEngine/internal/api/handlers"
	createBooking "github.com/vkotlyarr/VF-BookingEngine/internal/usecase/create_booking"
)

const (
	msgInvalidRequestBody   = "некорректное тело запроса"
	msgInvalidTenantID      = "некорректный идентификатор тенанта"
	msgInvalidInput         = "некорректные параметры бронирования"
	msgSlotNotFound         = "слот не найден"
	msgSlotMismatch         = "слот не относится к выбранной услуге"
	msgSlotUnavailable      = "слот закрыт для бронирования"
	msgInsufficientCapacity = "в слоте недостаточно свободных мест"
	msgEmployeeUnavailable  = "нет доступного сотрудника на выбранное время"
)

type Handler struct {
	useCase CreateBookingUseCase
	logger  Logger
}

func NewHandler(useCase CreateBookingUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/tenants/{tenantId}/bookings
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	tenantID, err := handlers.PathInt64(r, "tenantId")
	if err != nil {
		handlers.RespondBadRequest(w, msgInvalidTenantID)
		return
	}

	var req CreateBookingRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /bookings - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.useCase.Execute(r.Context(), req.ToUseCaseRequest(tenantID))
	if err != nil {
		switch {
		case errors.Is(err, createBooking.ErrInvalidInput):
			h.logger.Warn("POST /bookings - Invalid input: tenant_id=%d, error=%v", tenantID, err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		case errors.Is(err, createBooking.ErrSlotNotFound):
			h.logger.Warn("POST /bookings - Slot not found: tenant_id=%d, slot_id=%d", tenantID, req.SlotID)
			handlers.RespondNotFound(w, msgSlotNotFound)

		case errors.Is(err, createBooking.ErrSlotMismatch):
			h.logger.Warn("POST /bookings - Slot mismatch: tenant_id=%d, slot_id=%d", tenantID, req.SlotID)
			handlers.RespondNotFound(w, msgSlotMismatch)

		case errors.Is(err, createBooking.ErrSlotUnavailable):
			h.logger.Warn("POST /bookings - Slot unavailable: tenant_id=%d, slot_id=%d", tenantID, req.SlotID)
			handlers.RespondConflict(w, msgSlotUnavailable)

		case errors.Is(err, createBooking.ErrInsufficientCapacity):
			h.logger.Warn("POST /bookings - Insufficient capacity: tenant_id=%d, slot_id=%d", tenantID, req.SlotID)
			handlers.RespondConflict(w, msgInsufficientCapacity)

		case errors.Is(err, createBooking.ErrEmployeeUnavailable):
			h.logger.Warn("POST /bookings - Employee unavailable: tenant_id=%d, slot_id=%d", tenantID, req.SlotID)
			handlers.RespondConflict(w, msgEmployeeUnavailable)

		default:
			h.logger.Error("POST /bookings - Failed to create booking: tenant_id=%d, error=%v", tenantID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /bookings - Booking created: booking_id=%d, tenant_id=%d, slot_id=%d",
		result.Booking.ID, tenantID, req.SlotID)
	handlers.RespondJSON(w, http.StatusCreated, FromUseCaseResponse(result))
}
