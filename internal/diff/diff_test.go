// internal/diff/diff_test.go
package diff

import (
	"reflect"
	"testing"
	"time"

	"github.com/tamzrod/faction-relay/internal/snapshot"
)

func TestSets_DisjointAndReconstructs(t *testing.T) {
	cases := []struct {
		name string
		prev snapshot.Set
		curr snapshot.Set
	}{
		{"gain and loss", snapshot.NewSet("AAA", "BBB", "CCC"), snapshot.NewSet("BBB", "CCC", "DDD")},
		{"all lost", snapshot.NewSet("AAA", "BBB"), snapshot.NewSet()},
		{"from empty", snapshot.NewSet(), snapshot.NewSet("AAA")},
		{"nil prev", nil, snapshot.NewSet("AAA")},
		{"unchanged", snapshot.NewSet("AAA"), snapshot.NewSet("AAA")},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := Sets(tc.prev, tc.curr)

			removed := snapshot.NewSet(d.Removed...)
			for _, a := range d.Added {
				if removed.Has(a) {
					t.Fatalf("%s both added and removed", a)
				}
			}

			got := d.Apply(tc.prev)
			if !reflect.DeepEqual(got.Sorted(), tc.curr.Sorted()) {
				t.Fatalf("reconstruct: got %v want %v", got.Sorted(), tc.curr.Sorted())
			}
		})
	}
}

func TestSets_Values(t *testing.T) {
	d := Sets(snapshot.NewSet("AAA", "BBB"), snapshot.NewSet("BBB", "ZZZ", "CCC"))
	if !reflect.DeepEqual(d.Added, []string{"CCC", "ZZZ"}) {
		t.Fatalf("added=%v", d.Added)
	}
	if !reflect.DeepEqual(d.Removed, []string{"AAA"}) {
		t.Fatalf("removed=%v", d.Removed)
	}
	if Sets(snapshot.NewSet("A"), snapshot.NewSet("A")).Empty() != true {
		t.Fatalf("identical sets must give an empty delta")
	}
}

func TestKeyed(t *testing.T) {
	prev := map[string]string{"1": "Okay", "2": "Hospital", "3": "Jail"}
	curr := map[string]string{"1": "Okay", "2": "Okay", "4": "Traveling"}

	d := Keyed(prev, curr)
	if !reflect.DeepEqual(d.Added, []string{"4"}) {
		t.Fatalf("added=%v", d.Added)
	}
	if !reflect.DeepEqual(d.Removed, []string{"3"}) {
		t.Fatalf("removed=%v", d.Removed)
	}
	want := []Change{{Key: "2", From: "Hospital", To: "Okay"}}
	if !reflect.DeepEqual(d.Changed, want) {
		t.Fatalf("changed=%v", d.Changed)
	}
}

func TestSince_StrictlyNewerAndCursorIsNow(t *testing.T) {
	events := []Event{
		{ID: "c", Timestamp: 30},
		{ID: "a", Timestamp: 10},
		{ID: "b", Timestamp: 20},
	}

	got := Since(events, 15)
	if len(got) != 2 || got[0].Timestamp != 20 || got[1].Timestamp != 30 {
		t.Fatalf("since: %+v", got)
	}

	now := time.Unix(1000, 0)
	if c := Advance(now); c != 1000 {
		t.Fatalf("cursor=%d, want now (1000) not newest event (30)", c)
	}

	if got := Since(events, 30); len(got) != 0 {
		t.Fatalf("event at the cursor must not repeat: %+v", got)
	}
}

func TestFilter(t *testing.T) {
	cases := []struct {
		name     string
		f        Filter
		category string
		want     bool
	}{
		{"empty allows all", Filter{}, "Xanax", true},
		{"allow match", Filter{Allow: []string{"xanax", "blood bag"}}, "Empty Blood Bag", true},
		{"allow miss", Filter{Allow: []string{"xanax"}}, "Beer", false},
		{"deny wins", Filter{Allow: []string{"blood"}, Deny: []string{"empty"}}, "Empty Blood Bag", false},
		{"deny only", Filter{Deny: []string{"beer"}}, "Bottle of Beer", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.f.Match(tc.category); got != tc.want {
				t.Fatalf("Match(%q)=%v want %v", tc.category, got, tc.want)
			}
		})
	}
}
