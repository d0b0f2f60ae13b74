package calendars

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"meetslot/internal/models"
)

const calendarsDoc = `{
  "Zoe": [
    {"start": "2/16/2026 9:00 AM", "end": "2/16/2026 10:00 AM", "subject": "Standup", "busyStatus": "Busy",
     "attendees": [{"name": "Adam", "email": "adam@example.com"}], "isRecurring": true}
  ],
  "Adam": [
    {"start": "2/16/2026 1:00 PM", "end": "2/16/2026 2:00 PM", "subject": "Lunch", "busyStatus": "Tentative"},
    {"start": 42, "end": "2/16/2026 2:00 PM"},
    "not an event"
  ],
  "Mia": []
}`

func TestDecodeCalendars_KeepsDocumentOrder(t *testing.T) {
	cals, dropped, err := DecodeCalendars(strings.NewReader(calendarsDoc))
	if err != nil {
		t.Fatalf("DecodeCalendars failed: %v", err)
	}
	if dropped != 2 {
		t.Fatalf("expected 2 dropped events, got %d", dropped)
	}
	var names []string
	for _, c := range cals {
		names = append(names, c.Name)
	}
	if strings.Join(names, ",") != "Zoe,Adam,Mia" {
		t.Fatalf("expected document order, got %v", names)
	}
	zoe := cals[0].Events[0]
	if zoe.Subject != "Standup" || !zoe.IsRecurring || len(zoe.Attendees) != 1 || zoe.Attendees[0].Email != "adam@example.com" {
		t.Fatalf("unexpected event: %+v", zoe)
	}
	if len(cals[1].Events) != 1 || cals[1].Events[0].Status() != models.StatusTentative {
		t.Fatalf("unexpected events for Adam: %+v", cals[1].Events)
	}
	if cals[2].Events == nil || len(cals[2].Events) != 0 {
		t.Fatalf("expected empty event list for Mia, got %+v", cals[2].Events)
	}
}

func TestDecodeCalendars_DuplicateNameKeepsFirstPosition(t *testing.T) {
	doc := `{"A": [], "B": [], "A": [{"start": "2/16/2026", "end": "2/17/2026"}]}`
	cals, _, err := DecodeCalendars(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("DecodeCalendars failed: %v", err)
	}
	if len(cals) != 2 || cals[0].Name != "A" || len(cals[0].Events) != 1 {
		t.Fatalf("unexpected calendars: %+v", cals)
	}
}

func TestDecodeCalendars_Malformed(t *testing.T) {
	for _, doc := range []string{``, `[]`, `{"A": {"start": "x"}}`, `{"A": [`, `not json`} {
		if _, _, err := DecodeCalendars(strings.NewReader(doc)); !errors.Is(err, ErrMalformed) {
			t.Errorf("%q: expected ErrMalformed, got %v", doc, err)
		}
	}
}

func TestDecodeEvents_PlainArray(t *testing.T) {
	events, dropped, err := DecodeEvents([]byte(`[{"start": "2/16/2026 9:00 AM", "end": "2/16/2026 9:30 AM", "subject": "1:1"}, 7]`))
	if err != nil {
		t.Fatalf("DecodeEvents failed: %v", err)
	}
	if len(events) != 1 || dropped != 1 || events[0].Subject != "1:1" {
		t.Fatalf("unexpected result: %+v (%d dropped)", events, dropped)
	}
}

func TestDecodeEvents_Envelope(t *testing.T) {
	doc := `[
	  {"type": "text", "text": "[{\"start\": \"2/16/2026 9:00 AM\", \"end\": \"2/16/2026 10:00 AM\", \"subject\": \"Mine\"}]"}
	]`
	events, dropped, err := DecodeEvents([]byte(doc))
	if err != nil {
		t.Fatalf("DecodeEvents failed: %v", err)
	}
	if len(events) != 1 || dropped != 0 || events[0].Subject != "Mine" {
		t.Fatalf("unexpected result: %+v (%d dropped)", events, dropped)
	}
}

func TestDecodeEvents_EnvelopeWithEventsObjectAndNoise(t *testing.T) {
	doc := `[
	  {"type": "text", "text": "Showing events for 2/16/2026"},
	  {"type": "text", "text": "{\"events\": [{\"start\": \"2/16/2026 9:00 AM\", \"end\": \"2/16/2026 10:00 AM\", \"subject\": \"A\"}]}"},
	  {"type": "text", "text": "{broken"},
	  {"type": "image", "text": ""}
	]`
	events, dropped, err := DecodeEvents([]byte(doc))
	if err != nil {
		t.Fatalf("DecodeEvents failed: %v", err)
	}
	if len(events) != 1 || events[0].Subject != "A" {
		t.Fatalf("unexpected events: %+v", events)
	}
	if dropped != 2 {
		t.Fatalf("expected 2 dropped blocks, got %d", dropped)
	}
}

func TestDecodeEvents_Malformed(t *testing.T) {
	for _, doc := range []string{`"text"`, `{"events": 3}`, `[`} {
		if _, _, err := DecodeEvents([]byte(doc)); !errors.Is(err, ErrMalformed) {
			t.Errorf("%q: expected ErrMalformed, got %v", doc, err)
		}
	}
}

func TestLoadCalendars_MissingFile(t *testing.T) {
	_, _, err := LoadCalendars(filepath.Join(t.TempDir(), "missing.json"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

func TestLoadEvents_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mine.json")
	if err := os.WriteFile(path, []byte(`[{"start": "2/16/2026", "end": "2/17/2026", "busyStatus": "Out of Office"}]`), 0o644); err != nil {
		t.Fatal(err)
	}
	events, _, err := LoadEvents(path)
	if err != nil {
		t.Fatalf("LoadEvents failed: %v", err)
	}
	if len(events) != 1 || events[0].Status() != "Out of Office" || events[0].Title() != "Busy" {
		t.Fatalf("unexpected events: %+v", events)
	}
}

const icsDoc = "BEGIN:VCALENDAR\r\n" +
	"VERSION:2.0\r\n" +
	"PRODID:-//meetslot//test//EN\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:1@example.com\r\n" +
	"DTSTAMP:20260210T120000Z\r\n" +
	"DTSTART:20260216T090000Z\r\n" +
	"DTEND:20260216T100000Z\r\n" +
	"SUMMARY:Design review\r\n" +
	"LOCATION:Room 4\r\n" +
	"ORGANIZER;CN=Jane Roe:mailto:jane@example.com\r\n" +
	"ATTENDEE;CN=Sam:mailto:sam@example.com\r\n" +
	"RRULE:FREQ=WEEKLY\r\n" +
	"END:VEVENT\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:2@example.com\r\n" +
	"DTSTAMP:20260210T120000Z\r\n" +
	"DTSTART:20260216T130000\r\n" +
	"DTEND:20260216T140000\r\n" +
	"SUMMARY:Hold\r\n" +
	"X-MICROSOFT-CDO-BUSYSTATUS:TENTATIVE\r\n" +
	"END:VEVENT\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:3@example.com\r\n" +
	"DTSTAMP:20260210T120000Z\r\n" +
	"DTSTART;VALUE=DATE:20260217\r\n" +
	"SUMMARY:Vacation\r\n" +
	"X-MICROSOFT-CDO-BUSYSTATUS:OOF\r\n" +
	"END:VEVENT\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:4@example.com\r\n" +
	"DTSTAMP:20260210T120000Z\r\n" +
	"DTSTART:20260218T090000Z\r\n" +
	"DTEND:20260218T100000Z\r\n" +
	"SUMMARY:Optional\r\n" +
	"TRANSP:TRANSPARENT\r\n" +
	"END:VEVENT\r\n" +
	"END:VCALENDAR\r\n"

func TestDecodeICS(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*60*60)
	events, dropped, err := DecodeICS(strings.NewReader(icsDoc), loc)
	if err != nil {
		t.Fatalf("DecodeICS failed: %v", err)
	}
	if dropped != 0 || len(events) != 4 {
		t.Fatalf("expected 4 events, got %d (%d dropped)", len(events), dropped)
	}

	review := events[0]
	if review.Start != "2/16/2026 4:00 AM" || review.End != "2/16/2026 5:00 AM" {
		t.Fatalf("expected UTC times projected into loc, got %s - %s", review.Start, review.End)
	}
	if review.Subject != "Design review" || review.Location != "Room 4" || review.Status() != models.StatusBusy {
		t.Fatalf("unexpected review event: %+v", review)
	}
	if review.Organizer != "Jane Roe" || !review.IsRecurring {
		t.Fatalf("unexpected organizer or recurrence: %+v", review)
	}
	if len(review.Attendees) != 1 || review.Attendees[0] != (models.Attendee{Name: "Sam", Email: "sam@example.com"}) {
		t.Fatalf("unexpected attendees: %+v", review.Attendees)
	}

	if events[1].Start != "2/16/2026 1:00 PM" || events[1].Status() != models.StatusTentative {
		t.Fatalf("unexpected floating event: %+v", events[1])
	}
	if events[2].Start != "2/17/2026 12:00 AM" || events[2].End != "2/18/2026 12:00 AM" || events[2].Status() != models.StatusOutOfOffice {
		t.Fatalf("unexpected all-day event: %+v", events[2])
	}
	if events[3].Status() != models.StatusFree {
		t.Fatalf("expected transparent event to be free, got %q", events[3].BusyStatus)
	}
}

func TestDecodeICS_Malformed(t *testing.T) {
	if _, _, err := DecodeICS(strings.NewReader("BEGIN:VEVENT\r\nSUMMARY:x\r\nEND:VEVENT\r\n"), time.UTC); !errors.Is(err, ErrMalformed) {
		t.Fatalf("expected ErrMalformed, got %v", err)
	}
}
