package get_available_slots

import "github.com/vkotlyarr/VF-BookingEngine/internal/domain"

// SlotView HTTP модель слота для листинга доступности
type SlotView struct {
	ID      int64 `json:"id"`
	ShiftID int64 `json:"shiftId"`

	SlotDate  string `json:"slotDate"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`

	OriginalCapacity  int `json:"originalCapacity"`
	AvailableCapacity int `json:"availableCapacity"`
	BookedCount       int `json:"bookedCount"`

	IsAvailable bool `json:"isAvailable"`
}

// SlotViewsFromDomain конвертирует доменные слоты в HTTP модели
func SlotViewsFromDomain(slots []*domain.Slot) []*SlotView {
	views := make([]*SlotView, 0, len(slots))
	for _, s := range slots {
		views = append(views, &SlotView{
			ID:                s.ID,
			ShiftID:           s.ShiftID,
			SlotDate:          s.SlotDate.Format("2006-01-02"),
			StartTime:         string(s.StartTime),
			EndTime:           string(s.EndTime),
			OriginalCapacity:  s.OriginalCapacity,
			AvailableCapacity: s.AvailableCapacity,
			BookedCount:       s.BookedCount,
			IsAvailable:       s.IsAvailable,
		})
	}
	return views
}
