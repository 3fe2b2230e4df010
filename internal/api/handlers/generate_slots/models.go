package generate_slots

// GenerateSlotsRequest HTTP request model
type GenerateSlotsRequest struct {
	DateFrom string `json:"dateFrom"`
	DateTo   string `json:"dateTo"`
}

// GenerateSlotsResponse HTTP response model
type GenerateSlotsResponse struct {
	Created int `json:"created"`
}
