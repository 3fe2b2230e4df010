package create_bulk_booking

import (
	"fmt"
	"strings"

	"github.com/vkotlyarr/VF-BookingEngine/internal/domain"
)

// validateRequest проверяет бизнес-правила группового запроса
func validateRequest(req *Request) error {
	if req == nil {
		return fmt.Errorf("%w: request is nil", ErrInvalidInput)
	}
	if req.TenantID <= 0 {
		return fmt.Errorf("%w: tenant id must be positive", ErrInvalidInput)
	}
	if req.ServiceID <= 0 {
		return fmt.Errorf("%w: service id must be positive", ErrInvalidInput)
	}

	if len(req.SlotIDs) == 0 {
		return fmt.Errorf("%w: at least one slot is required", ErrInvalidInput)
	}
	if len(req.SlotIDs) > domain.MaxBulkSlots {
		return fmt.Errorf("%w: at most %d slots per request", ErrInvalidInput, domain.MaxBulkSlots)
	}
	seen := make(map[int64]bool, len(req.SlotIDs))
	for _, id := range req.SlotIDs {
		if id <= 0 {
			return fmt.Errorf("%w: slot id must be positive", ErrInvalidInput)
		}
		if seen[id] {
			return fmt.Errorf("%w: slot id=%d listed twice", ErrDuplicateSlot, id)
		}
		seen[id] = true
	}

	name := strings.TrimSpace(req.CustomerName)
	if name == "" {
		return fmt.Errorf("%w: customer name is required", ErrInvalidInput)
	}
	if len(name) > domain.MaxCustomerNameLength {
		return fmt.Errorf("%w: customer name exceeds %d characters", ErrInvalidInput, domain.MaxCustomerNameLength)
	}
	email := strings.TrimSpace(req.CustomerEmail)
	if email == "" {
		return fmt.Errorf("%w: customer email is required", ErrInvalidInput)
	}
	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 || !strings.Contains(email[at+1:], ".") {
		return fmt.Errorf("%w: customer email is malformed", ErrInvalidInput)
	}

	if req.AdultCount < 0 || req.ChildCount < 0 {
		return fmt.Errorf("%w: adult and child counts must be non-negative", ErrInvalidInput)
	}
	if req.AdultCount+req.ChildCount != len(req.SlotIDs) {
		return fmt.Errorf("%w: adult + child counts must equal number of slots", ErrInvalidInput)
	}

	if req.TotalPrice < 0 {
		return fmt.Errorf("%w: total price must be non-negative", ErrInvalidInput)
	}
	if req.Notes != nil && len(*req.Notes) > domain.MaxNotesLength {
		return fmt.Errorf("%w: notes exceed %d characters", ErrInvalidInput, domain.MaxNotesLength)
	}
	if req.EmployeeID != nil && *req.EmployeeID <= 0 {
		return fmt.Errorf("%w: employee id must be positive", ErrInvalidInput)
	}

	return nil
}
