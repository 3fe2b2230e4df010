package get_ticket

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/vkotlyarr/VF-BookingEngine/internal/api/handlers"
	"github.com/vkotlyarr/VF-BookingEngine/internal/service/tickets"
)

const (
	msgMalformedRef   = "некорректная ссылка на билет"
	msgTicketNotFound = "билет не найден"
)

type Handler struct {
	service TicketsService
	logger  Logger
}

func NewHandler(service TicketsService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/tickets/{ticketRef}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	ref := mux.Vars(r)["ticketRef"]

	view, err := h.service.Get(r.Context(), ref)
	if err != nil {
		h.respondErr(w, "GET /tickets/{ref}", ref, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, FromView(view))
}

// HandleQR GET /api/v1/tickets/{ticketRef}/qr
func (h *Handler) HandleQR(w http.ResponseWriter, r *http.Request) {
	ref := mux.Vars(r)["ticketRef"]

	png, err := h.service.QRCode(r.Context(), ref)
	if err != nil {
		h.respondErr(w, "GET /tickets/{ref}/qr", ref, err)
		return
	}

	handlers.RespondBinary(w, "image/png", png)
}

// HandlePDF GET /api/v1/tickets/{ticketRef}/pdf
func (h *Handler) HandlePDF(w http.ResponseWriter, r *http.Request) {
	ref := mux.Vars(r)["ticketRef"]

	pdf, err := h.service.PDF(r.Context(), ref)
	if err != nil {
		h.respondErr(w, "GET /tickets/{ref}/pdf", ref, err)
		return
	}

	w.Header().Set("Content-Disposition", `attachment; filename="ticket.pdf"`)
	handlers.RespondBinary(w, "application/pdf", pdf)
}

func (h *Handler) respondErr(w http.ResponseWriter, op, ref string, err error) {
	switch {
	case errors.Is(err, tickets.ErrMalformedRef):
		handlers.RespondBadRequest(w, msgMalformedRef)
	case errors.Is(err, tickets.ErrTicketNotFound):
		handlers.RespondNotFound(w, msgTicketNotFound)
	default:
		h.logger.Error("%s - Failed to load ticket: ref=%s, error=%v", op, ref, err)
		handlers.RespondInternalError(w)
	}
}
