package pedagogy

import (
	"context"
	"errors"
	"testing"

	"ai-tutoring-be/pkg/llm"
)

func TestShouldEvaluate(t *testing.T) {
	j := NewJudge(nil, DefaultJudgeConfig())

	tests := []struct {
		name      string
		userTurns int
		level     StuckLevel
		want      bool
	}{
		{name: "too few turns", userTurns: 3, level: NotStuck, want: false},
		{name: "enough turns", userTurns: 4, level: NotStuck, want: true},
		{name: "severely stuck skips evaluation", userTurns: 10, level: SeverelyStuck, want: false},
		{name: "definitely stuck still evaluates", userTurns: 10, level: DefinitelyStuck, want: true},
		{name: "first turn never evaluates", userTurns: 1, level: NotStuck, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := j.ShouldEvaluate(tt.userTurns, tt.level); got != tt.want {
				t.Errorf("ShouldEvaluate(%d, %v) = %v, want %v", tt.userTurns, tt.level, got, tt.want)
			}
		})
	}
}

func TestEvaluateServiceVerdict(t *testing.T) {
	tests := []struct {
		name         string
		reply        string
		wantComplete bool
		wantConf     float64
	}{
		{
			name:         "confident completion",
			reply:        `{"is_complete": true, "confidence": 0.9, "final_answer": "x = 4", "reasoning": "student derived it"}`,
			wantComplete: true,
			wantConf:     0.9,
		},
		{
			name:         "low confidence never completes",
			reply:        `{"is_complete": true, "confidence": 0.5, "final_answer": "", "reasoning": "unclear"}`,
			wantComplete: false,
			wantConf:     0.5,
		},
		{
			name:         "fenced json is tolerated",
			reply:        "```json\n{\"is_complete\": true, \"confidence\": 0.8}\n```",
			wantComplete: true,
			wantConf:     0.8,
		},
		{
			name:         "out of range confidence is clamped",
			reply:        `{"is_complete": true, "confidence": 1.7}`,
			wantComplete: true,
			wantConf:     1.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			j := NewJudge(&stubProvider{reply: tt.reply}, DefaultJudgeConfig())
			result := j.Evaluate(context.Background(), "solve for x", nil)

			if result.Source != SourceService {
				t.Fatalf("Source = %q, want %q", result.Source, SourceService)
			}
			if result.IsComplete != tt.wantComplete {
				t.Errorf("IsComplete = %v, want %v", result.IsComplete, tt.wantComplete)
			}
			if result.Confidence != tt.wantConf {
				t.Errorf("Confidence = %v, want %v", result.Confidence, tt.wantConf)
			}
		})
	}
}

func TestEvaluateFallsBackToHeuristic(t *testing.T) {
	j := NewJudge(&stubProvider{err: errors.New("service down")}, DefaultJudgeConfig())

	tests := []struct {
		name     string
		lastUser string
		wantConf float64
	}{
		{name: "strong keyword", lastUser: "so the answer is 42, I solved it", wantConf: 0.5},
		{name: "weak keyword", lastUser: "ok that makes sense now, thanks", wantConf: 0.3},
		{name: "no keyword", lastUser: "can you explain the second step again", wantConf: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msgs := []llm.Message{{Role: "user", Content: tt.lastUser}}
			result := j.Evaluate(context.Background(), "solve for x", msgs)

			if result.Source != SourceHeuristic {
				t.Fatalf("Source = %q, want %q", result.Source, SourceHeuristic)
			}
			if result.IsComplete {
				t.Fatal("heuristic verdict must never complete a session")
			}
			if result.Confidence != tt.wantConf {
				t.Errorf("Confidence = %v, want %v", result.Confidence, tt.wantConf)
			}
		})
	}
}

func TestEvaluateFallsBackOnMalformedReply(t *testing.T) {
	j := NewJudge(&stubProvider{reply: "I think the student is done!"}, DefaultJudgeConfig())

	msgs := []llm.Message{{Role: "user", Content: "hmm"}}
	result := j.Evaluate(context.Background(), "solve for x", msgs)

	if result.Source != SourceHeuristic {
		t.Fatalf("Source = %q, want heuristic fallback", result.Source)
	}
	if result.IsComplete {
		t.Fatal("fallback must not complete the session")
	}
}
