package scan_ticket

import (
	"errors"
	"net/http"

	"github.com/vkotlyarr/VF-BookingEngine/internal/api/handlers"
	"github.com/vkotlyarr/VF-BookingEngine/internal/api/middleware"
	scanTicket "github.com/vkotlyarr/VF-BookingEngine/internal/usecase/scan_ticket"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgMalformedRef       = "некорректная ссылка на билет"
	msgTicketNotFound     = "билет не найден"
	msgTicketInactive     = "билет недействителен"
)

type Handler struct {
	useCase ScanTicketUseCase
	logger  Logger
}

func NewHandler(useCase ScanTicketUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/tickets/scan
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	scannerID, _ := middleware.ScannerIDFromContext(r.Context())

	var req ScanTicketRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /tickets/scan - Invalid request body: scanner=%s, error=%v", scannerID, err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.useCase.Execute(r.Context(), &scanTicket.Request{TicketRef: req.TicketRef})
	if err != nil {
		switch {
		case errors.Is(err, scanTicket.ErrMalformedRef):
			h.logger.Warn("POST /tickets/scan - Malformed ref: scanner=%s", scannerID)
			handlers.RespondBadRequest(w, msgMalformedRef)

		case errors.Is(err, scanTicket.ErrTicketNotFound):
			h.logger.Warn("POST /tickets/scan - Ticket not found: scanner=%s", scannerID)
			handlers.RespondNotFound(w, msgTicketNotFound)

		case errors.Is(err, scanTicket.ErrTicketInactive):
			h.logger.Warn("POST /tickets/scan - Inactive ticket: scanner=%s", scannerID)
			handlers.RespondConflict(w, msgTicketInactive)

		default:
			h.logger.Error("POST /tickets/scan - Failed to scan ticket: scanner=%s, error=%v", scannerID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /tickets/scan - Ticket scanned: code=%s, scanner=%s, repeated=%t",
		result.Booking.TicketCode, scannerID, result.AlreadyScanned)
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
