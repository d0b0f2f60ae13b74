package availability

import (
	"strings"

	"meetslot/internal/models"
)

// tentativeWeight is the share of a person a tentative booking contributes to the score.
const tentativeWeight = 0.5

// Classify determines a person's availability for slot. The first overlapping period in
// list order decides the outcome, even if a later one would classify differently.
func Classify(periods []models.BusyPeriod, slot models.TimeSlot) (models.Availability, *models.BusyPeriod) {
	for i := range periods {
		if periods[i].Overlaps(slot) {
			return classifyStatus(periods[i].Status), &periods[i]
		}
	}
	return models.AvailabilityFree, nil
}

// classifyStatus maps raw status text to an availability. Out of office is checked before
// tentative, and anything unrecognised counts as busy.
func classifyStatus(status models.BusyStatus) models.Availability {
	s := strings.ToLower(status.String())
	switch {
	case strings.Contains(s, "out"), strings.Contains(s, "oof"):
		return models.AvailabilityOutOfOffice
	case strings.Contains(s, "tentative"):
		return models.AvailabilityTentative
	default:
		return models.AvailabilityBusy
	}
}

// Analyze evaluates every person against slot and scores it. Each of mine's overlapping
// periods is reported in MyConflicts; they do not affect the score.
func Analyze(slot models.TimeSlot, people []models.PersonPeriods, mine []models.BusyPeriod) models.SlotAnalysis {
	result := models.SlotAnalysis{
		Slot:        slot,
		People:      make([]models.PersonAvailability, 0, len(people)),
		MyConflicts: []models.Conflict{},
		TotalPeople: len(people),
	}

	for _, person := range people {
		av, conflict := Classify(person.Periods, slot)
		entry := models.PersonAvailability{Person: person.Name, Availability: av}
		if conflict != nil {
			entry.Conflict = conflict.Subject
		}
		result.People = append(result.People, entry)

		switch av {
		case models.AvailabilityFree:
			result.Score++
		case models.AvailabilityTentative:
			result.Score += tentativeWeight
		}
	}

	for _, period := range mine {
		if period.Overlaps(slot) {
			result.MyConflicts = append(result.MyConflicts, models.Conflict{
				Subject: period.Subject,
				Status:  period.Status,
			})
		}
	}

	return result
}
