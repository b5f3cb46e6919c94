// internal/snapshot/snapshot.go
package snapshot

import (
	"sort"
	"time"
)

// Topic names a category of monitored state.
type Topic string

const (
	TopicTerritory Topic = "territory"
	TopicArmory    Topic = "armory"
	TopicRetal     Topic = "retal"
	TopicWar       Topic = "war"
	TopicMembers   Topic = "members"
	TopicCrimes    Topic = "crimes"
	TopicLiveness  Topic = "liveness"
)

// Key addresses one snapshot: a topic applied to one scope (e.g. faction id).
type Key struct {
	Topic Topic
	Scope string
}

func (k Key) String() string { return string(k.Topic) + "/" + k.Scope }

// Set is an unordered set of string members.
type Set map[string]struct{}

func NewSet(items ...string) Set {
	s := make(Set, len(items))
	for _, it := range items {
		s[it] = struct{}{}
	}
	return s
}

func (s Set) Has(item string) bool {
	_, ok := s[item]
	return ok
}

// Sorted returns the members in ascending order.
func (s Set) Sorted() []string {
	out := make([]string, 0, len(s))
	for it := range s {
		out = append(out, it)
	}
	sort.Strings(out)
	return out
}

func (s Set) Clone() Set {
	if s == nil {
		return nil
	}
	out := make(Set, len(s))
	for it := range s {
		out[it] = struct{}{}
	}
	return out
}

// Snapshot holds the subset of polled state a topic diffs against.
// Only the fields a topic needs are populated:
//   - Members: set-valued topics (territory codes)
//   - Attrs:   keyed topics (member id -> state, crime id -> phase)
//   - Cursor:  feed topics (unix seconds of the last processed batch)
//   - Lines:   rolling log already published for the topic's slot
type Snapshot struct {
	Key     Key
	TakenAt time.Time

	Members Set
	Attrs   map[string]string
	Cursor  int64
	Lines   []string
}

// Clone returns a deep copy; cached snapshots are never shared.
func (s Snapshot) Clone() Snapshot {
	out := s
	out.Members = s.Members.Clone()
	if s.Attrs != nil {
		out.Attrs = make(map[string]string, len(s.Attrs))
		for k, v := range s.Attrs {
			out.Attrs[k] = v
		}
	}
	if s.Lines != nil {
		out.Lines = append([]string(nil), s.Lines...)
	}
	return out
}
