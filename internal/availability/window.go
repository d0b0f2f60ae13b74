// Package availability computes candidate meeting slots, classifies each person's
// availability for them and ranks the results.
package availability

import (
	"errors"
	"fmt"
	"time"

	"meetslot/internal/dates"
)

// ErrInvalidWindow is returned by WorkingWindow.Validate.
var ErrInvalidWindow = errors.New("invalid working window")

// WorkingWindow bounds the slots considered on each weekday.
type WorkingWindow struct {
	Duration    time.Duration // Requested meeting length
	StartHour   int           // First hour of the working day (0-23)
	EndHour     int           // Hour at which the working day closes (0-23)
	Granularity time.Duration // Spacing between consecutive slot starts
}

// DefaultWindow is a one-hour meeting within 9:00-17:00 at 30-minute steps.
var DefaultWindow = WorkingWindow{
	Duration:    60 * time.Minute,
	StartHour:   9,
	EndHour:     17,
	Granularity: 30 * time.Minute,
}

// DefaultTop is the number of ranked slots returned when the caller does not choose.
const DefaultTop = 5

// Validate checks the window can be enumerated.
func (w WorkingWindow) Validate() error {
	switch {
	case w.Duration <= 0:
		return fmt.Errorf("%w: duration must be positive (got %s)", ErrInvalidWindow, w.Duration)
	case w.Granularity <= 0:
		return fmt.Errorf("%w: granularity must be positive (got %s)", ErrInvalidWindow, w.Granularity)
	case w.StartHour < 0 || w.StartHour > 23:
		return fmt.Errorf("%w: work start hour must be within 0-23 (got %d)", ErrInvalidWindow, w.StartHour)
	case w.EndHour < 0 || w.EndHour > 23:
		return fmt.Errorf("%w: work end hour must be within 0-23 (got %d)", ErrInvalidWindow, w.EndHour)
	case w.StartHour > w.EndHour:
		return fmt.Errorf("%w: work start hour %d is after end hour %d", ErrInvalidWindow, w.StartHour, w.EndHour)
	}
	return nil
}

// MaxRangeDays bounds the number of calendar days a single search may cover.
const MaxRangeDays = 366

// ValidateRange checks that the inclusive day range from start to end stays within
// MaxRangeDays. An end before start is allowed and yields no slots.
func ValidateRange(start, end time.Time) error {
	if days := dates.DateOf(end).Sub(dates.DateOf(start)).Hours()/24 + 1; days > MaxRangeDays {
		return fmt.Errorf("%w: date range covers %.0f days, at most %d allowed", ErrInvalidWindow, days, MaxRangeDays)
	}
	return nil
}
