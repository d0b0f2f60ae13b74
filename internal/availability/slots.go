package availability

import (
	"time"

	"meetslot/internal/dates"
	"meetslot/internal/models"
)

// GenerateSlots enumerates meeting windows from start's day through end's day inclusive.
// Slots begin every w.Granularity from w.StartHour, only on Monday through Friday, and must
// finish by w.EndHour:00. A duration longer than the working day yields no slots.
func GenerateSlots(start, end time.Time, w WorkingWindow) []models.TimeSlot {
	slots := []models.TimeSlot{}
	if w.Granularity <= 0 {
		return slots
	}

	last := dates.DateOf(end)
	current := dates.At(start, w.StartHour)
	for !dates.DateOf(current).After(last) {
		switch current.Weekday() {
		case time.Saturday:
			current = dates.At(current.AddDate(0, 0, 2), w.StartHour)
			continue
		case time.Sunday:
			current = dates.At(current.AddDate(0, 0, 1), w.StartHour)
			continue
		}

		slotEnd := current.Add(w.Duration)
		if !slotEnd.After(dates.At(current, w.EndHour)) {
			slots = append(slots, models.TimeSlot{Start: current, End: slotEnd})
		}

		current = current.Add(w.Granularity)
		if current.Hour() >= w.EndHour {
			current = dates.At(current.AddDate(0, 0, 1), w.StartHour)
		}
	}
	return slots
}
