package tickets

import (
	"time"

	"github.com/vkotlyarr/VF-BookingEngine/internal/domain"
	"github.com/vkotlyarr/VF-BookingEngine/pkg/types"
)

// TicketView публичное представление билета.
// Один билет покрывает всю группу бронирований: у группового заказа
// строк несколько, у одиночного одна
type TicketView struct {
	TicketCode     string
	BookingGroupID string

	CustomerName string
	VisitorTotal int
	AmountTotal  float64

	Scanned   bool
	ScannedAt *time.Time
	Cancelled bool

	Entries []TicketEntry
}

// TicketEntry позиция билета: одно бронирование с окном его слота
type TicketEntry struct {
	BookingID int64
	SlotDate  time.Time
	StartTime types.TimeString
	EndTime   types.TimeString
	Visitors  int
	Status    domain.BookingStatus
}
