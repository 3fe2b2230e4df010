package invoiceservice

// CreateInvoiceRequest запрос на выставление счёта по группе бронирований
type CreateInvoiceRequest struct {
	BookingGroupID string  `json:"bookingGroupId"`
	TenantID       int64   `json:"tenantId"`
	CustomerName   string  `json:"customerName"`
	CustomerEmail  string  `json:"customerEmail"`
	VisitorTotal   int     `json:"visitorTotal"`
	AmountTotal    float64 `json:"amountTotal"`
}

// CreateInvoiceResponse ответ сервиса счетов
type CreateInvoiceResponse struct {
	InvoiceRef string `json:"invoiceRef"`
}
