// internal/war/classifier.go
package war

import (
	"sort"
	"strings"
)

// Default narrative markers, matched case-insensitively as substrings.
var (
	DefaultEnlistMarkers   = []string{"enlisted the faction", "opted into ranked war"}
	DefaultUnenlistMarkers = []string{"unenlisted the faction", "opted out of ranked war"}
	DefaultDefeatMarkers   = []string{"defeated in a ranked war", "lost the ranked war"}
)

// MarkerClassifier reads faction news newest-first and stops at the first
// line carrying any marker. Only an enlistment there means Enlisted.
// Text matching is brittle; markers are configurable for that reason.
type MarkerClassifier struct {
	Enlist   []string
	Unenlist []string
	Defeat   []string
}

func DefaultClassifier() MarkerClassifier {
	return MarkerClassifier{
		Enlist:   DefaultEnlistMarkers,
		Unenlist: DefaultUnenlistMarkers,
		Defeat:   DefaultDefeatMarkers,
	}
}

func (c MarkerClassifier) Classify(news []NewsEntry) State {
	sorted := append([]NewsEntry(nil), news...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Timestamp > sorted[j].Timestamp })

	for _, n := range sorted {
		text := strings.ToLower(n.Text)
		// un-enlist is checked first: its markers usually contain the enlist marker
		if containsAny(text, c.Unenlist) || containsAny(text, c.Defeat) {
			return NoWar
		}
		if containsAny(text, c.Enlist) {
			return Enlisted
		}
	}
	return NoWar
}

func containsAny(text string, markers []string) bool {
	for _, m := range markers {
		if m != "" && strings.Contains(text, strings.ToLower(m)) {
			return true
		}
	}
	return false
}
