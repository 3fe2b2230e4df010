package create_bulk_booking

import (
	"errors"
	"net/http"

	"github.com/vkotlyarr/VF-BookingEngine/internal/api/handlers"
	createBulkBooking "github.com/vkotlyarr/VF-BookingEngine/internal/usecase/create_bulk_booking"
)

const (
	msgInvalidRequestBody   = "некорректное тело запроса"
	msgInvalidTenantID      = "некорректный идентификатор тенанта"
	msgInvalidInput         = "некорректные параметры группового бронирования"
	msgDuplicateSlot        = "слот указан в запросе более одного раза"
	msgSlotNotFound         = "один из слотов не найден"
	msgSlotMismatch         = "один из слотов не относится к выбранной услуге"
	msgSlotUnavailable      = "один из слотов закрыт для бронирования"
	msgInsufficientCapacity = "в одном из слотов недостаточно свободных мест"
	msgEmployeeUnavailable  = "нет доступного сотрудника на одно из окон"
)

type Handler struct {
	useCase CreateBulkBookingUseCase
	logger  Logger
}

func NewHandler(useCase CreateBulkBookingUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/tenants/{tenantId}/bookings/bulk
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	tenantID, err := handlers.PathInt64(r, "tenantId")
	if err != nil {
		handlers.RespondBadRequest(w, msgInvalidTenantID)
		return
	}

	var req CreateBulkBookingRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /bookings/bulk - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.useCase.Execute(r.Context(), req.ToUseCaseRequest(tenantID))
	if err != nil {
		switch {
		case errors.Is(err, createBulkBooking.ErrDuplicateSlot):
			h.logger.Warn("POST /bookings/bulk - Duplicate slot: tenant_id=%d", tenantID)
			handlers.RespondBadRequest(w, msgDuplicateSlot)

		case errors.Is(err, createBulkBooking.ErrInvalidInput):
			h.logger.Warn("POST /bookings/bulk - Invalid input: tenant_id=%d, error=%v", tenantID, err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		case errors.Is(err, createBulkBooking.ErrSlotNotFound):
			h.logger.Warn("POST /bookings/bulk - Slot not found: tenant_id=%d", tenantID)
			handlers.RespondNotFound(w, msgSlotNotFound)

		case errors.Is(err, createBulkBooking.ErrSlotMismatch):
			h.logger.Warn("POST /bookings/bulk - Slot mismatch: tenant_id=%d", tenantID)
			handlers.RespondNotFound(w, msgSlotMismatch)

		case errors.Is(err, createBulkBooking.ErrSlotUnavailable):
			h.logger.Warn("POST /bookings/bulk - Slot unavailable: tenant_id=%d", tenantID)
			handlers.RespondConflict(w, msgSlotUnavailable)

		case errors.Is(err, createBulkBooking.ErrInsufficientCapacity):
			h.logger.Warn("POST /bookings/bulk - Insufficient capacity: tenant_id=%d", tenantID)
			handlers.RespondConflict(w, msgInsufficientCapacity)

		case errors.Is(err, createBulkBooking.ErrEmployeeUnavailable):
			h.logger.Warn("POST /bookings/bulk - Employee unavailable: tenant_id=%d", tenantID)
			handlers.RespondConflict(w, msgEmployeeUnavailable)

		default:
			h.logger.Error("POST /bookings/bulk - Failed to create bookings: tenant_id=%d, error=%v", tenantID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /bookings/bulk - Group created: group=%s, tenant_id=%d, bookings=%d",
		result.BookingGroupID, tenantID, len(result.Bookings))
	handlers.RespondJSON(w, http.StatusCreated, FromUseCaseResponse(result))
}
