package availability

import (
	"meetslot/internal/dates"
	"meetslot/internal/models"
)

// ExtractBusyPeriods keeps the events that make a person unavailable. Free events are
// skipped and events whose start or end cannot be parsed are dropped; dropped reports how
// many were lost to parsing. Input order is preserved.
func ExtractBusyPeriods(events []models.Event) (periods []models.BusyPeriod, dropped int) {
	periods = []models.BusyPeriod{}
	for _, event := range events {
		status := event.Status()
		if status == models.StatusFree {
			continue
		}
		start, err := dates.Parse(event.Start)
		if err != nil {
			dropped++
			continue
		}
		end, err := dates.Parse(event.End)
		if err != nil {
			dropped++
			continue
		}
		periods = append(periods, models.BusyPeriod{
			Start:   start,
			End:     end,
			Status:  status,
			Subject: event.Title(),
		})
	}
	return periods, dropped
}
