package notifyservice

// Notification уведомление клиенту о событии бронирования
type Notification struct {
	Kind           string  `json:"kind"` // booking_created | booking_rescheduled
	BookingGroupID string  `json:"bookingGroupId"`
	TenantID       int64   `json:"tenantId"`
	CustomerEmail  string  `json:"customerEmail"`
	CustomerPhone  *string `json:"customerPhone,omitempty"`
	TicketCode     string  `json:"ticketCode"`
}
