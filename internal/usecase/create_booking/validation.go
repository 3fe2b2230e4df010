package create_booking

import (
	"fmt"
	"strings"

	"github.com/vkotlyarr/VF-BookingEngine/internal/domain"
)

// validateRequest проверяет бизнес-правила запроса на создание бронирования
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
	if req.SlotID <= 0 {
		return fmt.Errorf("%w: slot id must be positive", ErrInvalidInput)
	}

	name := strings.TrimSpace(req.CustomerName)
	if name == "" {
		return fmt.Errorf("%w: customer name is required", ErrInvalidInput)
	}
	if len(name) > domain.MaxCustomerNameLength {
		return fmt.Errorf("%w: customer name exceeds %d characters", ErrInvalidInput, domain.MaxCustomerNameLength)
	}
	if err := validateEmail(req.CustomerEmail); err != nil {
		return err
	}

	if req.VisitorCount < 1 {
		return fmt.Errorf("%w: visitor count must be at least 1", ErrInvalidInput)
	}
	if req.VisitorCount > domain.MaxVisitorsPerBooking {
		return fmt.Errorf("%w: visitor count exceeds maximum of %d", ErrInvalidInput, domain.MaxVisitorsPerBooking)
	}
	if req.AdultCount < 0 || req.ChildCount < 0 {
		return fmt.Errorf("%w: adult and child counts must be non-negative", ErrInvalidInput)
	}
	if req.AdultCount+req.ChildCount != req.VisitorCount {
		return fmt.Errorf("%w: adult + child counts must equal visitor count", ErrInvalidInput)
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

// validateEmail минимальная структурная проверка адреса
func validateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return fmt.Errorf("%w: customer email is required", ErrInvalidInput)
	}
	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 {
		return fmt.Errorf("%w: customer email is malformed", ErrInvalidInput)
	}
	if !strings.Contains(email[at+1:], ".") {
		return fmt.Errorf("%w: customer email domain is malformed", ErrInvalidInput)
	}
	return nil
}
