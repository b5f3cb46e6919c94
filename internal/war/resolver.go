// internal/war/resolver.go
package war

import "math"

// Classifier decides Enlisted vs NoWar from narrative news when the API
// has no structured war object.
type Classifier interface {
	Classify(news []NewsEntry) State
}

// Resolver derives war state and projection. No IO.
type Resolver struct {
	classifier Classifier
}

func NewResolver(c Classifier) *Resolver {
	if c == nil {
		c = DefaultClassifier()
	}
	return &Resolver{classifier: c}
}

func (r *Resolver) Resolve(in Input) Result {
	res := Result{Ours: in.Ours, Theirs: in.Theirs}

	if in.War == nil {
		res.State = r.classifier.Classify(in.News)
		if res.State != Enlisted {
			res.State = NoWar
		}
		return res
	}

	res.War = in.War
	switch {
	case in.War.End > 0:
		res.State = Ended
	case in.Now >= in.War.Start-ActivationLead:
		res.State = Active
	default:
		res.State = Pending
	}

	if res.State != Active && res.State != Ended {
		return res
	}

	res.Lead = abs(in.Ours.Score - in.Theirs.Score)
	res.Standing = standing(res.State, in)

	if res.State == Active {
		res.Projection = project(res.Lead, in.War.Target, in.War.Start, in.Now)
	}
	return res
}

// project returns nil when the rate is undefined (no lead, no elapsed time).
func project(lead, target, start, now int64) *Projection {
	elapsed := now - start
	if lead <= 0 || elapsed <= 0 {
		return nil
	}

	remaining := target - lead
	if remaining < 0 {
		remaining = 0
	}

	rate := float64(lead) / float64(elapsed)
	// remaining / rate, computed as remaining*elapsed/lead to stay exact
	// for integer inputs.
	seconds := float64(remaining) * float64(elapsed) / float64(lead)
	if math.IsInf(seconds, 0) || math.IsNaN(seconds) {
		return nil
	}

	return &Projection{
		Rate:      rate,
		Remaining: remaining,
		EndsAt:    now + int64(math.Round(seconds)),
	}
}

func standing(state State, in Input) Standing {
	if state == Ended {
		switch {
		case in.War.Winner != 0 && in.War.Winner == in.Ours.ID:
			return Won
		case in.War.Winner != 0 && in.War.Winner == in.Theirs.ID:
			return Lost
		case in.Ours.Score > in.Theirs.Score:
			return Won
		case in.Ours.Score < in.Theirs.Score:
			return Lost
		default:
			return Tied
		}
	}

	switch {
	case in.Ours.Score > in.Theirs.Score:
		return Leading
	case in.Ours.Score < in.Theirs.Score:
		return Losing
	default:
		return Neutral
	}
}

func abs(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
