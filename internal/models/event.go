package models

// Event represents a calendar entry as exported by the calendar source.
// Times are kept as the raw text of the export and parsed on demand.
type Event struct {
	Start       string     `json:"start"`                 // Start time, e.g. "2/12/2026 8:00 AM"
	End         string     `json:"end"`                   // End time in the same format
	Subject     string     `json:"subject"`               // Title of the event
	BusyStatus  string     `json:"busyStatus"`            // Raw free/busy status text
	Location    string     `json:"location,omitempty"`    // Location of the event
	Organizer   string     `json:"organizer,omitempty"`   // Organizer name or email
	Attendees   []Attendee `json:"attendees,omitempty"`   // Invited attendees, in export order
	IsRecurring bool       `json:"isRecurring,omitempty"` // Occurrence of a recurring series
}

// Attendee is a single invitee of an event.
type Attendee struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Status returns the event's busy status, defaulting to Busy when the export omits it.
func (e Event) Status() BusyStatus {
	if e.BusyStatus == "" {
		return StatusBusy
	}
	return BusyStatus(e.BusyStatus)
}

// Title returns the event subject, defaulting to "Busy" when the export omits it.
func (e Event) Title() string {
	if e.Subject == "" {
		return "Busy"
	}
	return e.Subject
}

// BusyStatus is the free/busy state of an event. Values outside the known set are kept
// verbatim and treated as busy.
type BusyStatus string

func (s BusyStatus) String() string {
	return string(s)
}

const (
	StatusFree             BusyStatus = "Free"
	StatusBusy             BusyStatus = "Busy"
	StatusTentative        BusyStatus = "Tentative"
	StatusOutOfOffice      BusyStatus = "OutOfOffice"
	StatusWorkingElsewhere BusyStatus = "WorkingElsewhere"
)

// PersonCalendar is the event list of one person, as loaded from the calendars document.
type PersonCalendar struct {
	Name   string
	Events []Event
}
