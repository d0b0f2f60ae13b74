// Package report renders ranked meeting slots as JSON records or readable text.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"meetslot/internal/dates"
	"meetslot/internal/models"
)

// SlotRecord is the structured form of a ranked slot.
type SlotRecord struct {
	Start          string            `json:"start"`
	End            string            `json:"end"`
	AvailableCount float64           `json:"available_count"`
	TotalPeople    int               `json:"total_people"`
	Free           []string          `json:"free"`
	Tentative      []string          `json:"tentative"`
	Busy           []string          `json:"busy"`
	OutOfOffice    []string          `json:"ooo"`
	MyConflicts    []models.Conflict `json:"my_conflicts"`
}

// Records converts analyses into structured records. Every list is non-nil.
func Records(slots []models.SlotAnalysis) []SlotRecord {
	records := make([]SlotRecord, 0, len(slots))
	for _, s := range slots {
		tentative := []string{}
		for _, p := range s.Tentative() {
			tentative = append(tentative, p.Person)
		}
		conflicts := s.MyConflicts
		if conflicts == nil {
			conflicts = []models.Conflict{}
		}
		records = append(records, SlotRecord{
			Start:          dates.FormatISO(s.Slot.Start),
			End:            dates.FormatISO(s.Slot.End),
			AvailableCount: s.Score,
			TotalPeople:    s.TotalPeople,
			Free:           s.Free(),
			Tentative:      tentative,
			Busy:           s.Busy(),
			OutOfOffice:    s.OutOfOffice(),
			MyConflicts:    conflicts,
		})
	}
	return records
}

// WriteJSON writes the records as an indented JSON array.
func WriteJSON(w io.Writer, slots []models.SlotAnalysis) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(Records(slots)); err != nil {
		return fmt.Errorf("failed to encode results: %w", err)
	}
	return nil
}

// TextOptions controls the readable rendering.
type TextOptions struct {
	Duration        time.Duration
	ShowMyConflicts bool
}

// WriteText writes a numbered, human-readable list of slots.
func WriteText(w io.Writer, slots []models.SlotAnalysis, opts TextOptions) error {
	var b strings.Builder
	if len(slots) == 0 {
		fmt.Fprintf(&b, "\nNo meeting slots found for a %d-minute meeting.\n", int(opts.Duration.Minutes()))
	} else {
		fmt.Fprintf(&b, "\nTop %d meeting slots for %d-minute meeting:\n\n", len(slots), int(opts.Duration.Minutes()))
		for i, s := range slots {
			fmt.Fprintf(&b, "%d. %s\n\n", i+1, FormatSlot(s, opts.ShowMyConflicts))
		}
	}
	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("failed to write results: %w", err)
	}
	return nil
}

// FormatSlot renders one slot: a header line followed by indented groups, with empty
// groups omitted.
func FormatSlot(s models.SlotAnalysis, showMyConflicts bool) string {
	lines := []string{fmt.Sprintf("**%s %s - %s** (%d/%d available)",
		s.Slot.Start.Format("Mon 01/02"),
		dates.FormatClock(s.Slot.Start),
		dates.FormatClock(s.Slot.End),
		int(s.Score),
		s.TotalPeople,
	)}

	if free := s.Free(); len(free) > 0 {
		lines = append(lines, "  Free: "+strings.Join(free, ", "))
	}
	if tentative := s.Tentative(); len(tentative) > 0 {
		parts := make([]string, 0, len(tentative))
		for _, p := range tentative {
			parts = append(parts, fmt.Sprintf("%s (%s)", p.Person, p.Conflict))
		}
		lines = append(lines, "  Tentative: "+strings.Join(parts, ", "))
	}
	if busy := s.Busy(); len(busy) > 0 {
		lines = append(lines, "  Can't make it: "+strings.Join(busy, ", "))
	}
	if ooo := s.OutOfOffice(); len(ooo) > 0 {
		lines = append(lines, "  Out of Office: "+strings.Join(ooo, ", "))
	}
	if showMyConflicts && len(s.MyConflicts) > 0 {
		parts := make([]string, 0, len(s.MyConflicts))
		for _, c := range s.MyConflicts {
			parts = append(parts, fmt.Sprintf("%s [%s]", c.Subject, c.Status))
		}
		lines = append(lines, "  Your conflicts: "+strings.Join(parts, ", "))
	}
	return strings.Join(lines, "\n")
}
