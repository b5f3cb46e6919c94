// internal/war/state.go
package war

// State is the lifecycle position of a faction's ranked war.
// Derived every poll; never stored.
type State int

const (
	NoWar State = iota
	Enlisted
	Pending
	Active
	Ended
)

func (s State) String() string {
	switch s {
	case NoWar:
		return "no war"
	case Enlisted:
		return "enlisted"
	case Pending:
		return "pending"
	case Active:
		return "active"
	case Ended:
		return "ended"
	default:
		return "unknown"
	}
}

// Standing labels one side relative to the other. An active war with
// equal scores is Neutral; Tied is reserved for a war that ended level.
type Standing string

const (
	Neutral Standing = ""
	Leading Standing = "leading"
	Losing  Standing = "losing"
	Tied    Standing = "tied"
	Won     Standing = "won"
	Lost    Standing = "lost"
)

// ActivationLead is how long before the declared start a war counts as active.
const ActivationLead int64 = 1800

// Window is the structured war object.
type Window struct {
	ID     string
	Start  int64
	End    int64 // 0 while unresolved
	Target int64
	Winner int64 // faction id; 0 while unresolved
}

// Side is one faction's position.
type Side struct {
	ID    int64
	Name  string
	Score int64
}

// NewsEntry is one line of faction news.
type NewsEntry struct {
	Timestamp int64
	Text      string
}

// Input is everything the resolver looks at for one poll.
type Input struct {
	War    *Window // nil when the API reports no ranked war
	Ours   Side
	Theirs Side
	Now    int64
	News   []NewsEntry
}

// Projection estimates when the lead reaches the target at the current rate.
type Projection struct {
	Rate      float64 // lead points per second since start
	Remaining int64
	EndsAt    int64
}

// Result is the render-ready outcome.
type Result struct {
	State      State
	War        *Window
	Ours       Side
	Theirs     Side
	Lead       int64
	Standing   Standing
	Projection *Projection // nil when no estimate is possible
}
