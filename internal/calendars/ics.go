package calendars

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/emersion/go-ical"

	"meetslot/internal/dates"
	"meetslot/internal/models"
)

// propBusyStatus is the Exchange/Outlook free-busy extension property.
const propBusyStatus = "X-MICROSOFT-CDO-BUSYSTATUS"

// LoadICS reads the VEVENTs of an iCalendar file. Times are projected into loc and then
// treated as wall-clock times like every other calendar.
func LoadICS(path string, loc *time.Location) (events []models.Event, dropped int, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to open ics file: %w", err)
	}
	defer f.Close()

	events, dropped, err = DecodeICS(f, loc)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return events, dropped, nil
}

// DecodeICS decodes every calendar in r. Events without usable start or end times are
// counted in dropped.
func DecodeICS(r io.Reader, loc *time.Location) ([]models.Event, int, error) {
	if loc == nil {
		loc = time.UTC
	}

	events := []models.Event{}
	dropped := 0
	dec := ical.NewDecoder(r)
	for {
		cal, err := dec.Decode()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, 0, fmt.Errorf("%w: %v", ErrMalformed, err)
		}

		vevents := cal.Events()
		for i := range vevents {
			e, ok := fromICal(&vevents[i], loc)
			if !ok {
				dropped++
				continue
			}
			events = append(events, e)
		}
	}
	return events, dropped, nil
}

// fromICal converts a VEVENT into the export event model.
func fromICal(ve *ical.Event, loc *time.Location) (models.Event, bool) {
	start, err := ve.DateTimeStart(loc)
	if err != nil || start.IsZero() {
		return models.Event{}, false
	}
	end, err := ve.DateTimeEnd(loc)
	if err != nil || end.IsZero() {
		return models.Event{}, false
	}

	event := models.Event{
		Start:       dates.FormatEventTime(start.In(loc)),
		End:         dates.FormatEventTime(end.In(loc)),
		Subject:     propText(ve.Props, ical.PropSummary),
		BusyStatus:  busyStatus(ve.Props).String(),
		Location:    propText(ve.Props, ical.PropLocation),
		IsRecurring: ve.Props.Get(ical.PropRecurrenceRule) != nil,
	}
	if p := ve.Props.Get(ical.PropOrganizer); p != nil {
		organizer := address(*p)
		event.Organizer = organizer.Name
		if event.Organizer == "" {
			event.Organizer = organizer.Email
		}
	}
	for _, p := range ve.Props.Values(ical.PropAttendee) {
		event.Attendees = append(event.Attendees, address(p))
	}
	return event, true
}

// busyStatus derives the free/busy state. The Outlook extension wins when present, then
// STATUS, then TRANSP.
func busyStatus(props ical.Props) models.BusyStatus {
	if p := props.Get(propBusyStatus); p != nil {
		switch strings.ToUpper(p.Value) {
		case "FREE":
			return models.StatusFree
		case "TENTATIVE":
			return models.StatusTentative
		case "BUSY":
			return models.StatusBusy
		case "OOF":
			return models.StatusOutOfOffice
		case "WORKINGELSEWHERE":
			return models.StatusWorkingElsewhere
		default:
			return models.BusyStatus(p.Value)
		}
	}
	if p := props.Get(ical.PropStatus); p != nil {
		switch strings.ToUpper(p.Value) {
		case "CANCELLED":
			return models.StatusFree
		case "TENTATIVE":
			return models.StatusTentative
		}
	}
	if p := props.Get(ical.PropTransparency); p != nil && strings.EqualFold(p.Value, "TRANSPARENT") {
		return models.StatusFree
	}
	return models.StatusBusy
}

// address reads a CAL-ADDRESS property such as ORGANIZER;CN=Jane:mailto:jane@example.com.
func address(p ical.Prop) models.Attendee {
	email := p.Value
	if len(email) >= len("mailto:") && strings.EqualFold(email[:len("mailto:")], "mailto:") {
		email = email[len("mailto:"):]
	}
	return models.Attendee{Name: p.Params.Get(ical.ParamCommonName), Email: email}
}

func propText(props ical.Props, name string) string {
	v, err := props.Text(name)
	if err != nil {
		return ""
	}
	return v
}
