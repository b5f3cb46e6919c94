// internal/diff/set.go
package diff

import (
	"sort"

	"github.com/tamzrod/faction-relay/internal/snapshot"
)

// SetDelta is the change between two set-valued snapshots.
// Added and Removed are disjoint and sorted.
type SetDelta struct {
	Added   []string
	Removed []string
}

func (d SetDelta) Empty() bool { return len(d.Added) == 0 && len(d.Removed) == 0 }

// Sets computes added = curr − prev and removed = prev − curr.
// No IO. No side effects.
func Sets(prev, curr snapshot.Set) SetDelta {
	var d SetDelta
	for it := range curr {
		if !prev.Has(it) {
			d.Added = append(d.Added, it)
		}
	}
	for it := range prev {
		if !curr.Has(it) {
			d.Removed = append(d.Removed, it)
		}
	}
	sort.Strings(d.Added)
	sort.Strings(d.Removed)
	return d
}

// Apply returns (prev − removed) ∪ added.
func (d SetDelta) Apply(prev snapshot.Set) snapshot.Set {
	out := prev.Clone()
	if out == nil {
		out = snapshot.Set{}
	}
	for _, it := range d.Removed {
		delete(out, it)
	}
	for _, it := range d.Added {
		out[it] = struct{}{}
	}
	return out
}
