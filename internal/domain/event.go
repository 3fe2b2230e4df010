package domain

import (
	"encoding/json"
	"time"
)

// EventType тип исходящего события
type EventType string

const (
	EventBookingCreated     EventType = "booking_created"
	EventBookingRescheduled EventType = "booking_rescheduled"
)

// EventStatus статус доставки события
type EventStatus string

const (
	EventStatusPending EventStatus = "pending"
	EventStatusSent    EventStatus = "sent"
	EventStatusFailed  EventStatus = "failed"
)

// OutboxEvent запись outbox: пишется в одной транзакции с бронированием,
// доставляется внешним коллабораторам фоновым диспетчером.
// Ровно одно событие booking_created на booking_group_id
type OutboxEvent struct {
	ID             int64
	EventType      EventType
	TenantID       int64
	BookingGroupID string
	Payload        json.RawMessage

	Status    EventStatus
	Attempts  int
	LastError *string

	CreatedAt time.Time
	SentAt    *time.Time
}

// BookingCreatedPayload полезная нагрузка события booking_created
// Содержит всё, что нужно коллабораторам счетов и уведомлений
type BookingCreatedPayload struct {
	BookingGroupID string  `json:"bookingGroupId"`
	BookingIDs     []int64 `json:"bookingIds"`
	TenantID       int64   `json:"tenantId"`
	ServiceID      int64   `json:"serviceId"`
	CustomerName   string  `json:"customerName"`
	CustomerEmail  string  `json:"customerEmail"`
	CustomerPhone  *string `json:"customerPhone,omitempty"`
	VisitorTotal   int     `json:"visitorTotal"`
	AmountTotal    float64 `json:"amountTotal"`
	TicketCode     string  `json:"ticketCode"`
}

// BookingRescheduledPayload полезная нагрузка события booking_rescheduled
// Счёт не перевыставляется, уходит только переотправка билета
type BookingRescheduledPayload struct {
	BookingGroupID string  `json:"bookingGroupId"`
	BookingID      int64   `json:"bookingId"`
	TenantID       int64   `json:"tenantId"`
	CustomerEmail  string  `json:"customerEmail"`
	CustomerPhone  *string `json:"customerPhone,omitempty"`
	NewSlotID      int64   `json:"newSlotId"`
	TicketCode     string  `json:"ticketCode"`
}
