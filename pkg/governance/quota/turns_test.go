package quota

import (
	"fmt"
	"testing"

	"ai-tutoring-be/pkg/llm"
)

func conversationWithUserTurns(n int) []llm.Message {
	msgs := []llm.Message{{Role: "system", Content: "tutor prompt"}}
	for i := 0; i < n; i++ {
		msgs = append(msgs,
			llm.Message{Role: "user", Content: fmt.Sprintf("question %d", i+1)},
			llm.Message{Role: "assistant", Content: fmt.Sprintf("guidance %d", i+1)},
		)
	}
	return msgs
}

func TestTurnPolicyCheck(t *testing.T) {
	policy := TurnPolicy{MaxTurns: 50, WarnThresholds: []int{40, 45}}

	tests := []struct {
		name         string
		userTurns    int
		wantWarn     bool
		wantReached  bool
		wantRemaining int
	}{
		{name: "early session", userTurns: 5, wantWarn: false, wantReached: false, wantRemaining: 45},
		{name: "just below first threshold", userTurns: 39, wantWarn: false, wantReached: false, wantRemaining: 11},
		{name: "first warn threshold", userTurns: 40, wantWarn: true, wantReached: false, wantRemaining: 10},
		{name: "between thresholds", userTurns: 42, wantWarn: false, wantReached: false, wantRemaining: 8},
		{name: "second warn threshold", userTurns: 45, wantWarn: true, wantReached: false, wantRemaining: 5},
		{name: "at limit", userTurns: 50, wantWarn: false, wantReached: true, wantRemaining: 0},
		{name: "over limit", userTurns: 51, wantWarn: false, wantReached: true, wantRemaining: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status := policy.Check(conversationWithUserTurns(tt.userTurns))

			if status.CurrentTurns != tt.userTurns {
				t.Errorf("CurrentTurns = %d, want %d", status.CurrentTurns, tt.userTurns)
			}
			if status.ShouldWarn != tt.wantWarn {
				t.Errorf("ShouldWarn = %v, want %v", status.ShouldWarn, tt.wantWarn)
			}
			if status.LimitReached != tt.wantReached {
				t.Errorf("LimitReached = %v, want %v", status.LimitReached, tt.wantReached)
			}
			if status.Remaining != tt.wantRemaining {
				t.Errorf("Remaining = %d, want %d", status.Remaining, tt.wantRemaining)
			}
		})
	}
}

func TestTurnPolicyStatusMatchesCheck(t *testing.T) {
	policy := TurnPolicy{MaxTurns: 50, WarnThresholds: []int{40, 45}}

	for _, turns := range []int{0, 5, 39, 40, 45, 49, 50, 51} {
		fromCount := policy.Status(turns)
		fromMessages := policy.Check(conversationWithUserTurns(turns))
		if fromCount != fromMessages {
			t.Errorf("Status(%d) = %+v, Check = %+v", turns, fromCount, fromMessages)
		}
	}
}

func TestCountUserTurnsIgnoresOtherRoles(t *testing.T) {
	msgs := []llm.Message{
		{Role: "system", Content: "prompt"},
		{Role: "user", Content: "one"},
		{Role: "assistant", Content: "reply"},
		{Role: "system", Content: "summary of earlier turns"},
		{Role: "user", Content: "two"},
	}

	if got := CountUserTurns(msgs); got != 2 {
		t.Fatalf("CountUserTurns = %d, want 2", got)
	}
}
