// Package dates parses and formats the timestamp forms used by calendar exports and the CLI.
package dates

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	// EventTimeLayout is the export form of an event timestamp, e.g. "2/12/2026 8:00 AM".
	EventTimeLayout = "1/2/2006 3:04 PM"
	// EventDateLayout is the date-only export form, interpreted as midnight.
	EventDateLayout = "1/2/2006"
	// CompactDateLayout is the MMDDYYYY form accepted on the command line.
	CompactDateLayout = "01022006"
	// ClockLayout renders a time of day without a leading zero.
	ClockLayout = "3:04 PM"
	// ISOLayout renders an instant without a zone designator.
	ISOLayout = "2006-01-02T15:04:05"
)

// ErrUnparsable is returned when a timestamp matches none of the accepted layouts.
var ErrUnparsable = errors.New("unparsable timestamp")

// eventLayouts are tried in order.
var eventLayouts = []string{EventTimeLayout, EventDateLayout}

// Parse reads an event timestamp. The AM/PM marker is matched case-insensitively. All
// results are in UTC, which stands in for the single implicit zone shared by every calendar.
func Parse(value string) (time.Time, error) {
	normalized := strings.ToUpper(value)
	for _, layout := range eventLayouts {
		if t, err := time.Parse(layout, normalized); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrUnparsable, value)
}

// ParseCompactDate reads a MMDDYYYY date at midnight.
func ParseCompactDate(value string) (time.Time, error) {
	t, err := time.Parse(CompactDateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q, expected MMDDYYYY", ErrUnparsable, value)
	}
	return t, nil
}

// FormatClock renders the time of day as "9:00 AM".
func FormatClock(t time.Time) string {
	return t.Format(ClockLayout)
}

// FormatEventTime renders t in the export form accepted by Parse.
func FormatEventTime(t time.Time) string {
	return t.Format(EventTimeLayout)
}

// FormatISO renders t as "2006-01-02T15:04:05".
func FormatISO(t time.Time) string {
	return t.Format(ISOLayout)
}

// DateOf truncates t to midnight of its calendar day.
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// At returns the calendar day of t at hour:00.
func At(t time.Time, hour int) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), hour, 0, 0, 0, t.Location())
}
