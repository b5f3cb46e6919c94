// internal/war/classifier_test.go
package war

import "testing"

func TestMarkerClassifier(t *testing.T) {
	c := DefaultClassifier()

	cases := []struct {
		name string
		news []NewsEntry
		want State
	}{
		{"no news", nil, NoWar},
		{"irrelevant news", []NewsEntry{{Timestamp: 1, Text: "Duke deposited $1,000,000"}}, NoWar},
		{
			"enlisted",
			[]NewsEntry{{Timestamp: 10, Text: "Chedburn enlisted the faction into ranked war matchmaking"}},
			Enlisted,
		},
		{
			"enlisted then unenlisted",
			[]NewsEntry{
				{Timestamp: 10, Text: "Chedburn enlisted the faction into ranked war matchmaking"},
				{Timestamp: 20, Text: "Chedburn unenlisted the faction from ranked war matchmaking"},
			},
			NoWar,
		},
		{
			"defeat after enlistment",
			[]NewsEntry{
				{Timestamp: 10, Text: "Chedburn enlisted the faction into ranked war matchmaking"},
				{Timestamp: 30, Text: "The faction was defeated in a ranked war by Hell Divers"},
			},
			NoWar,
		},
		{
			"re-enlisted after defeat",
			[]NewsEntry{
				{Timestamp: 40, Text: "Duke enlisted the faction into ranked war matchmaking"},
				{Timestamp: 30, Text: "The faction was defeated in a ranked war by Hell Divers"},
			},
			Enlisted,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := c.Classify(tc.news); got != tc.want {
				t.Fatalf("got %v want %v", got, tc.want)
			}
		})
	}
}
