package quota

import (
	"ai-tutoring-be/pkg/llm"
)

// TurnPolicy caps user turns per session and names the exact turn
// counts at which the client should be warned. ShouldWarn fires only on
// an exact threshold match, so a caller never re-warns once a threshold
// has been crossed.
type TurnPolicy struct {
	MaxTurns       int
	WarnThresholds []int
}

// TurnStatus is the outcome of a turn quota check.
type TurnStatus struct {
	CurrentTurns int
	MaxTurns     int
	Remaining    int
	LimitReached bool
	ShouldWarn   bool
}

// Check counts user-authored messages against the cap. LimitReached is
// terminal for the session, distinct from a retryable rate-limit
// rejection.
func (p TurnPolicy) Check(messages []llm.Message) TurnStatus {
	return p.Status(CountUserTurns(messages))
}

// Status evaluates the policy against an already-known turn count, for
// callers that track turns outside the message list.
func (p TurnPolicy) Status(current int) TurnStatus {
	remaining := p.MaxTurns - current
	if remaining < 0 {
		remaining = 0
	}

	warn := false
	for _, threshold := range p.WarnThresholds {
		if current == threshold {
			warn = true
			break
		}
	}

	return TurnStatus{
		CurrentTurns: current,
		MaxTurns:     p.MaxTurns,
		Remaining:    remaining,
		LimitReached: current >= p.MaxTurns,
		ShouldWarn:   warn,
	}
}

// CountUserTurns returns the number of user-authored messages. A turn
// is one user message; assistant and system messages don't count.
func CountUserTurns(messages []llm.Message) int {
	count := 0
	for _, m := range messages {
		if m.Role == "user" {
			count++
		}
	}
	return count
}
