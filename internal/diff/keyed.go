// internal/diff/keyed.go
package diff

import "sort"

// Change is one key whose value moved.
type Change struct {
	Key  string
	From string
	To   string
}

// KeyedDelta is the change between two key -> value snapshots.
type KeyedDelta struct {
	Added   []string // keys only in curr
	Removed []string // keys only in prev
	Changed []Change // keys in both with different values
}

func (d KeyedDelta) Empty() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0 && len(d.Changed) == 0
}

// Keyed compares two maps. All slices are sorted by key.
func Keyed(prev, curr map[string]string) KeyedDelta {
	var d KeyedDelta
	for k, v := range curr {
		old, ok := prev[k]
		switch {
		case !ok:
			d.Added = append(d.Added, k)
		case old != v:
			d.Changed = append(d.Changed, Change{Key: k, From: old, To: v})
		}
	}
	for k := range prev {
		if _, ok := curr[k]; !ok {
			d.Removed = append(d.Removed, k)
		}
	}
	sort.Strings(d.Added)
	sort.Strings(d.Removed)
	sort.Slice(d.Changed, func(i, j int) bool { return d.Changed[i].Key < d.Changed[j].Key })
	return d
}
