package finder

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"meetslot/internal/availability"
	"meetslot/internal/models"
)

// Request describes one meeting search.
type Request struct {
	Calendars []models.PersonCalendar
	MyEvents  []models.Event // nil when the caller supplied no calendar of their own
	Start     time.Time      // first day of the range
	End       time.Time      // last day of the range, inclusive
	Window    availability.WorkingWindow
	Top       int
}

// Result holds the ranked slots of a search.
type Result struct {
	Slots         []models.SlotAnalysis
	Considered    int  // number of candidate slots analyzed
	HasMyCalendar bool // whether MyConflicts were computed
}

// Finder runs the availability pipeline: busy-period extraction, slot generation,
// per-slot analysis and ranking.
type Finder struct {
	logger  *slog.Logger
	workers int
}

// NewFinder creates a Finder. With workers greater than one, slots are analyzed
// concurrently by at most that many goroutines.
func NewFinder(logger *slog.Logger, workers int) *Finder {
	if workers < 1 {
		workers = 1
	}
	return &Finder{logger: logger, workers: workers}
}

// Find performs a full search.
func (f *Finder) Find(ctx context.Context, req Request) (*Result, error) {
	if err := req.Window.Validate(); err != nil {
		return nil, err
	}
	if err := availability.ValidateRange(req.Start, req.End); err != nil {
		return nil, err
	}

	people := make([]models.PersonPeriods, 0, len(req.Calendars))
	for _, cal := range req.Calendars {
		periods, dropped := availability.ExtractBusyPeriods(cal.Events)
		if dropped > 0 {
			f.logger.Debug("Dropped events with unparsable times.", "person", cal.Name, "count", dropped)
		}
		people = append(people, models.PersonPeriods{Name: cal.Name, Periods: periods})
	}

	var mine []models.BusyPeriod
	if req.MyEvents != nil {
		var dropped int
		mine, dropped = availability.ExtractBusyPeriods(req.MyEvents)
		if dropped > 0 {
			f.logger.Debug("Dropped events from own calendar with unparsable times.", "count", dropped)
		}
	}

	slots := availability.GenerateSlots(req.Start, req.End, req.Window)
	f.logger.Info("Generated candidate slots.", "count", len(slots), "people", len(people), "duration", req.Window.Duration)

	analyses, err := f.analyzeAll(ctx, slots, people, mine)
	if err != nil {
		return nil, fmt.Errorf("failed to analyze slots: %w", err)
	}

	ranked := availability.Rank(analyses, req.Top)
	f.logger.Info("Ranked meeting slots.", "returned", len(ranked), "top", req.Top)

	return &Result{
		Slots:         ranked,
		Considered:    len(slots),
		HasMyCalendar: req.MyEvents != nil,
	}, nil
}

// analyzeAll evaluates every slot. Results keep generation order regardless of how the
// work is scheduled.
func (f *Finder) analyzeAll(ctx context.Context, slots []models.TimeSlot, people []models.PersonPeriods, mine []models.BusyPeriod) ([]models.SlotAnalysis, error) {
	results := make([]models.SlotAnalysis, len(slots))

	if f.workers == 1 {
		for i, slot := range slots {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			results[i] = availability.Analyze(slot, people, mine)
		}
		return results, nil
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(f.workers)
	for i, slot := range slots {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = availability.Analyze(slot, people, mine)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
