package pedagogy

import (
	"context"
	"fmt"
	"strings"

	"ai-tutoring-be/pkg/llm"
)

// HintLevelFor maps a stuck level onto the 0..4 hint scale. The jump
// from 1 to 3 is intentional: a definitely stuck student gets a
// substantial hint, not a gentle nudge that already failed.
func HintLevelFor(level StuckLevel) int {
	switch level {
	case PotentiallyStuck:
		return 1
	case DefinitelyStuck:
		return 3
	case SeverelyStuck:
		return 4
	default:
		return 0
	}
}

// Hint is the advisory attached to a turn when the student is stuck.
type Hint struct {
	Level   int    `json:"level"`
	Content string `json:"content,omitempty"`
}

// AdvisorConfig controls hint generation and suppression.
type AdvisorConfig struct {
	// GenerateFromLevel is the hint level at which content is produced
	// by the reasoning service instead of left to the caller.
	GenerateFromLevel int
	// SuppressWindow is how many of the caller's recent hints are
	// checked before repeating one at the same or higher level.
	SuppressWindow int
}

func DefaultAdvisorConfig() AdvisorConfig {
	return AdvisorConfig{GenerateFromLevel: 3, SuppressWindow: 2}
}

// Advisor turns an assessment into a hint. Generation is best effort;
// a reasoning service failure degrades to a level-only hint rather than
// failing the turn.
type Advisor struct {
	provider llm.LLMProvider
	cfg      AdvisorConfig
}

func NewAdvisor(provider llm.LLMProvider, cfg AdvisorConfig) *Advisor {
	if cfg.GenerateFromLevel <= 0 {
		cfg.GenerateFromLevel = 3
	}
	if cfg.SuppressWindow <= 0 {
		cfg.SuppressWindow = 2
	}
	return &Advisor{provider: provider, cfg: cfg}
}

// Advise produces a hint for the assessment, or nil when no hint is
// warranted. recentHintLevels are the levels of the caller's most
// recent hints, newest last; a hint at the same or higher level inside
// the suppression window mutes this one.
func (a *Advisor) Advise(ctx context.Context, assessment Assessment, messages []llm.Message, recentHintLevels []int) (*Hint, error) {
	level := HintLevelFor(assessment.Level)
	if level == 0 {
		return nil, nil
	}

	window := recentHintLevels
	if len(window) > a.cfg.SuppressWindow {
		window = window[len(window)-a.cfg.SuppressWindow:]
	}
	for _, prev := range window {
		if prev >= level {
			return nil, nil
		}
	}

	hint := &Hint{Level: level}
	if level < a.cfg.GenerateFromLevel || a.provider == nil {
		return hint, nil
	}

	content, err := a.generate(ctx, level, messages)
	if err != nil {
		return hint, fmt.Errorf("hint generation degraded: %w", err)
	}
	hint.Content = content
	return hint, nil
}

func (a *Advisor) generate(ctx context.Context, level int, messages []llm.Message) (string, error) {
	var lastUser string
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == "user" {
			lastUser = messages[i].Content
			break
		}
	}

	prompt := []llm.Message{
		{Role: "system", Content: hintSystemPrompt(level)},
		{Role: "user", Content: lastUser},
	}
	reply, err := a.provider.Chat(ctx, prompt, llm.WithTemperature(0.4), llm.WithMaxTokens(200))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(reply), nil
}

func hintSystemPrompt(level int) string {
	depth := "a strong, nearly complete hint that walks through the key step"
	if level == 3 {
		depth = "a substantial hint that names the concept and the next step without giving the answer"
	}
	return "You are a patient tutor. The student is stuck. Give " + depth +
		". Keep it under three sentences. Never state the final answer outright."
}
