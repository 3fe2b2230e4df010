package domain

import (
	"strings"

	"github.com/google/uuid"
)

// TicketCodePrefix префикс кода билета во внешних ссылках
const TicketCodePrefix = "VFT-"

// NewTicketCode генерирует новый код билета
func NewTicketCode() string {
	return TicketCodePrefix + uuid.NewString()
}

// NormalizeTicketRef приводит внешнюю ссылку на билет к коду билета.
// Принимает как полный код с префиксом, так и голый uuid
func NormalizeTicketRef(ref string) (string, bool) {
	ref = strings.TrimSpace(ref)
	raw := strings.TrimPrefix(ref, TicketCodePrefix)
	if _, err := uuid.Parse(raw); err != nil {
		return "", false
	}
	return TicketCodePrefix + raw, true
}
