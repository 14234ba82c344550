// Package stats summarises the pins currently visible in the viewport.
package stats

import (
	"github.com/joeblew999/plat-soundmap/internal/markers"
	"github.com/joeblew999/plat-soundmap/internal/mood"
)

// EmptyText is shown in place of the summary when nothing is visible.
const EmptyText = "Pomiči mapu za više podataka"

// Snapshot is the viewport summary. It is derived, never stored.
type Snapshot struct {
	Total            int    `json:"total"`
	DominantCategory string `json:"dominantCategory,omitempty"`
	DominantFeeling  string `json:"dominantFeeling,omitempty"`
	Empty            bool   `json:"empty"`
}

// Text renders the snapshot the way the stats bar shows it.
func (s Snapshot) Text() string {
	if s.Empty {
		return EmptyText
	}
	return s.DominantCategory + " · " + s.DominantFeeling
}

// Recompute tallies categories and feelings of visible. A tie goes to the
// value seen first.
func Recompute(visible []markers.Marker) Snapshot {
	if len(visible) == 0 {
		return Snapshot{Empty: true}
	}

	categories := newTally()
	feelings := newTally()
	for _, m := range visible {
		category := string(m.Category)
		if category == "" {
			category = mood.UnknownCategory
		}
		categories.add(category)
		feelings.add(m.Feeling.DisplayLabel())
	}

	return Snapshot{
		Total:            len(visible),
		DominantCategory: categories.dominant(),
		DominantFeeling:  feelings.dominant(),
	}
}

type tally struct {
	counts map[string]int
	order  []string
}

func newTally() *tally {
	return &tally{counts: make(map[string]int)}
}

func (t *tally) add(key string) {
	if _, ok := t.counts[key]; !ok {
		t.order = append(t.order, key)
	}
	t.counts[key]++
}

func (t *tally) dominant() string {
	best := ""
	bestN := 0
	for _, key := range t.order {
		if n := t.counts[key]; n > bestN {
			best, bestN = key, n
		}
	}
	return best
}
