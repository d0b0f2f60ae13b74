package availability

import (
	"cmp"
	"slices"

	"meetslot/internal/models"
)

// Rank orders analyses by descending score, breaking ties by earliest start, and returns
// at most top entries. Remaining ties keep their input order. The input is not modified.
func Rank(analyses []models.SlotAnalysis, top int) []models.SlotAnalysis {
	if top <= 0 {
		return []models.SlotAnalysis{}
	}

	ranked := slices.Clone(analyses)
	slices.SortStableFunc(ranked, func(a, b models.SlotAnalysis) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		return a.Slot.Start.Compare(b.Slot.Start)
	})

	if len(ranked) > top {
		ranked = ranked[:top]
	}
	if ranked == nil {
		ranked = []models.SlotAnalysis{}
	}
	return ranked
}
