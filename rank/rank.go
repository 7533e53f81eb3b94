// Package rank assigns statewide standings. Standard competition ranking:
// equal totals share a rank and the next distinct total skips past the tied
// block, so [10, 10, 8] ranks as [1, 1, 3].
package rank

import (
	"math"
	"sort"
)

type entry struct {
	name  string
	score float64
}

// Competition ranks districts by score, descending, 1-based. Entries with a
// nil, NaN or infinite score are left out of the result entirely; they hold
// no standing rather than ranking last.
func Competition(scores map[string]*float64) map[string]int {
	entries := make([]entry, 0, len(scores))
	for name, score := range scores {
		if score == nil || math.IsNaN(*score) || math.IsInf(*score, 0) {
			continue
		}
		entries = append(entries, entry{name, *score})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].score != entries[j].score {
			return entries[i].score > entries[j].score
		}
		return entries[i].name < entries[j].name
	})

	ranks := make(map[string]int, len(entries))
	current := 0
	for i, e := range entries {
		if i == 0 || e.score != entries[i-1].score {
			current = i + 1
		}
		ranks[e.name] = current
	}
	return ranks
}

// Improvement is the rank movement between two runs, oriented so that a
// positive value means the district climbed (previous 5, current 2 gives 3).
// Nil when either standing is unknown.
func Improvement(previous, current *int) *int {
	if previous == nil || current == nil {
		return nil
	}
	d := *previous - *current
	return &d
}
