package models

import "time"

// BusyPeriod is an interval during which a person is not fully available.
type BusyPeriod struct {
	Start   time.Time
	End     time.Time
	Status  BusyStatus
	Subject string
}

// Overlaps reports whether the period intersects the slot. Intervals are half-open, so a
// period ending exactly when the slot starts does not conflict.
func (p BusyPeriod) Overlaps(slot TimeSlot) bool {
	return p.Start.Before(slot.End) && p.End.After(slot.Start)
}

// TimeSlot is a candidate meeting window.
type TimeSlot struct {
	Start time.Time
	End   time.Time
}

// Duration returns the length of the slot.
func (s TimeSlot) Duration() time.Duration {
	return s.End.Sub(s.Start)
}

// PersonPeriods pairs a person with the busy periods extracted from their calendar.
type PersonPeriods struct {
	Name    string
	Periods []BusyPeriod
}

// Availability classifies one person against one slot.
type Availability string

func (a Availability) String() string {
	return string(a)
}

const (
	AvailabilityFree        Availability = "free"
	AvailabilityTentative   Availability = "tentative"
	AvailabilityBusy        Availability = "busy"
	AvailabilityOutOfOffice Availability = "ooo"
)

// PersonAvailability is the availability of a single person for a slot. Conflict holds the
// subject of the event that decided the classification, if any.
type PersonAvailability struct {
	Person       string
	Availability Availability
	Conflict     string
}

// Conflict is an event on the caller's own calendar that overlaps a slot.
type Conflict struct {
	Subject string     `json:"subject"`
	Status  BusyStatus `json:"status"`
}

// SlotAnalysis is the outcome of evaluating every person against a slot.
type SlotAnalysis struct {
	Slot        TimeSlot
	People      []PersonAvailability // in calendar document order
	MyConflicts []Conflict
	Score       float64
	TotalPeople int
}

// Free returns the names of people free for the slot.
func (a SlotAnalysis) Free() []string {
	return a.names(AvailabilityFree)
}

// Busy returns the names of people busy during the slot.
func (a SlotAnalysis) Busy() []string {
	return a.names(AvailabilityBusy)
}

// OutOfOffice returns the names of people out of office during the slot.
func (a SlotAnalysis) OutOfOffice() []string {
	return a.names(AvailabilityOutOfOffice)
}

// Tentative returns the people tentatively booked during the slot.
func (a SlotAnalysis) Tentative() []PersonAvailability {
	return a.With(AvailabilityTentative)
}

// With returns the entries matching the given availability.
func (a SlotAnalysis) With(av Availability) []PersonAvailability {
	out := []PersonAvailability{}
	for _, p := range a.People {
		if p.Availability == av {
			out = append(out, p)
		}
	}
	return out
}

func (a SlotAnalysis) names(av Availability) []string {
	out := []string{}
	for _, p := range a.People {
		if p.Availability == av {
			out = append(out, p.Person)
		}
	}
	return out
}
