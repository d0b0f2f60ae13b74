// Package calendars loads event lists from calendar exports: a JSON document of several
// people's calendars, the caller's own calendar (optionally wrapped in a tool response
// envelope) and iCalendar files.
package calendars

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"meetslot/internal/models"
)

// ErrMalformed is returned when a document's top-level structure cannot be understood.
var ErrMalformed = errors.New("malformed calendar document")

// LoadCalendars reads a JSON object mapping person names to event arrays.
// dropped counts events that could not be decoded and were skipped.
func LoadCalendars(path string) (cals []models.PersonCalendar, dropped int, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to open calendars file: %w", err)
	}
	defer f.Close()

	cals, dropped, err = DecodeCalendars(f)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return cals, dropped, nil
}

// DecodeCalendars decodes a calendars document, keeping people in document order.
// A name appearing twice keeps its first position and its last event list.
func DecodeCalendars(r io.Reader) ([]models.PersonCalendar, int, error) {
	dec := json.NewDecoder(r)

	tok, err := dec.Token()
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, 0, fmt.Errorf("%w: expected an object of person calendars", ErrMalformed)
	}

	cals := []models.PersonCalendar{}
	index := map[string]int{}
	dropped := 0
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, 0, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		name, _ := tok.(string)

		var raw []json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, 0, fmt.Errorf("%w: calendar for %q is not an event list: %v", ErrMalformed, name, err)
		}
		events, n := decodeEvents(raw)
		dropped += n

		if i, ok := index[name]; ok {
			cals[i].Events = events
			continue
		}
		index[name] = len(cals)
		cals = append(cals, models.PersonCalendar{Name: name, Events: events})
	}

	if _, err := dec.Token(); err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return cals, dropped, nil
}

// LoadEvents reads a single calendar's events from a JSON file. See DecodeEvents for the
// accepted shapes.
func LoadEvents(path string) (events []models.Event, dropped int, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read calendar file: %w", err)
	}
	events, dropped, err = DecodeEvents(data)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return events, dropped, nil
}

// envelopeBlock is one content block of a wrapped tool response.
type envelopeBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// eventsObject is an object carrying its events under an "events" key.
type eventsObject struct {
	Events []json.RawMessage `json:"events"`
}

// DecodeEvents decodes one calendar. It accepts a plain event array, an object with an
// "events" array, or an envelope of text blocks ([{"type":"text","text":"..."}]) whose text
// holds either of those. Blocks and events that cannot be decoded are counted in dropped.
func DecodeEvents(data []byte) (events []models.Event, dropped int, err error) {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '{' {
		var obj eventsObject
		if err := json.Unmarshal(data, &obj); err != nil {
			return nil, 0, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		events, dropped = decodeEvents(obj.Events)
		return events, dropped, nil
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, 0, fmt.Errorf("%w: expected an event array: %v", ErrMalformed, err)
	}
	if !isEnvelope(raw) {
		events, dropped = decodeEvents(raw)
		return events, dropped, nil
	}

	events = []models.Event{}
	for _, item := range raw {
		var block envelopeBlock
		if err := json.Unmarshal(item, &block); err != nil || (block.Type != "" && block.Type != "text") {
			dropped++
			continue
		}
		text := strings.TrimSpace(block.Text)
		if text == "" || (text[0] != '[' && text[0] != '{') {
			// Plain prose such as date context lines.
			continue
		}
		inner, n, err := DecodeEvents([]byte(text))
		if err != nil {
			dropped++
			continue
		}
		events = append(events, inner...)
		dropped += n
	}
	return events, dropped, nil
}

// isEnvelope reports whether raw looks like a wrapped response: its first element is an
// object with a "text" key.
func isEnvelope(raw []json.RawMessage) bool {
	if len(raw) == 0 {
		return false
	}
	var first map[string]json.RawMessage
	if err := json.Unmarshal(raw[0], &first); err != nil {
		return false
	}
	_, ok := first["text"]
	return ok
}

func decodeEvents(raw []json.RawMessage) ([]models.Event, int) {
	events := make([]models.Event, 0, len(raw))
	dropped := 0
	for _, item := range raw {
		var e models.Event
		if err := json.Unmarshal(item, &e); err != nil {
			dropped++
			continue
		}
		events = append(events, e)
	}
	return events, dropped
}
