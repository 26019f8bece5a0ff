package pedagogy

import (
	"testing"

	"ai-tutoring-be/pkg/llm"
)

func userTurns(contents ...string) []llm.Message {
	msgs := []llm.Message{{Role: "system", Content: "tutor prompt"}}
	for _, c := range contents {
		msgs = append(msgs,
			llm.Message{Role: "user", Content: c},
			llm.Message{Role: "assistant", Content: "what have you tried so far?"},
		)
	}
	return msgs
}

func TestDetectorAssess(t *testing.T) {
	d := NewDetector(DefaultDetectorConfig())

	tests := []struct {
		name      string
		turns     []string
		wantLevel StuckLevel
	}{
		{
			name:      "engaged student",
			turns:     []string{"I think the derivative is 2x because the power rule applies here"},
			wantLevel: NotStuck,
		},
		{
			name:      "single short reply",
			turns:     []string{"I substituted x equals two into the equation and simplified", "ok"},
			wantLevel: NotStuck,
		},
		{
			name:      "two short replies",
			turns:     []string{"ok", "hmm"},
			wantLevel: PotentiallyStuck,
		},
		{
			name: "help seeking plus short replies",
			turns: []string{
				"ok",
				"hmm",
				"i'm stuck on this part and nothing I try seems to work out",
			},
			wantLevel: DefinitelyStuck,
		},
		{
			name: "repeated short help seeking",
			turns: []string{
				"help",
				"help",
				"i don't know",
				"no idea at all",
			},
			wantLevel: SeverelyStuck,
		},
		{
			name: "old signals roll out of the window",
			turns: []string{
				"help",
				"I tried factoring the quadratic and got two distinct roots",
				"so the answer depends on the discriminant being positive",
				"then I checked both roots against the original equation",
				"and only one of them satisfies the domain restriction",
			},
			wantLevel: NotStuck,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := d.Assess(userTurns(tt.turns...))
			if got.Level != tt.wantLevel {
				t.Errorf("Level = %v (points=%d signals=%v), want %v",
					got.Level, got.StuckPoints, got.Signals, tt.wantLevel)
			}
		})
	}
}

func TestDetectorRepeatedMessageSignal(t *testing.T) {
	d := NewDetector(DefaultDetectorConfig())

	msgs := userTurns(
		"how do I start this problem with the given constraints",
		"how do I start this problem with the given constraints",
	)
	got := d.Assess(msgs)

	found := false
	for _, s := range got.Signals {
		if s == "repeated_message" {
			found = true
			break
		}
	}
	if !found {
		t.Fatalf("Signals = %v, want repeated_message", got.Signals)
	}
}

func TestStuckLevelString(t *testing.T) {
	tests := []struct {
		level StuckLevel
		want  string
	}{
		{NotStuck, "not_stuck"},
		{PotentiallyStuck, "potentially_stuck"},
		{DefinitelyStuck, "definitely_stuck"},
		{SeverelyStuck, "severely_stuck"},
	}
	for _, tt := range tests {
		if got := tt.level.String(); got != tt.want {
			t.Errorf("%d.String() = %q, want %q", tt.level, got, tt.want)
		}
	}
}

func TestClassifyProblem(t *testing.T) {
	tests := []struct {
		statement string
		want      ProblemType
	}{
		{"Solve for x in this equation using algebra", ProblemMath},
		{"My python function has a bug in the loop", ProblemCoding},
		{"Help me restructure my essay's thesis and introduction", ProblemWriting},
		{"Why is the sky blue?", ProblemGeneral},
	}
	for _, tt := range tests {
		if got := ClassifyProblem(tt.statement); got != tt.want {
			t.Errorf("ClassifyProblem(%q) = %v, want %v", tt.statement, got, tt.want)
		}
	}
}
