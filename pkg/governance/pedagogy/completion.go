package pedagogy

import (
	"context"
	"encoding/json"
	"strings"

	"ai-tutoring-be/pkg/llm"
)

// Completion provenance. Heuristic verdicts carry low confidence on
// purpose so they can never complete a session on their own.
const (
	SourceService   = "service"
	SourceHeuristic = "heuristic"
)

// CompletionResult is one completion evaluation. Confidence below the
// judge's threshold means the session stays in progress regardless of
// IsComplete.
type CompletionResult struct {
	IsComplete  bool    `json:"is_complete"`
	Confidence  float64 `json:"confidence"`
	FinalAnswer string  `json:"final_answer,omitempty"`
	Reasoning   string  `json:"reasoning,omitempty"`
	Source      string  `json:"source"`
}

// JudgeConfig gates when completion is even considered.
type JudgeConfig struct {
	MinTurns      int
	MinConfidence float64
}

func DefaultJudgeConfig() JudgeConfig {
	return JudgeConfig{MinTurns: 4, MinConfidence: 0.7}
}

// Judge decides whether the student has solved the problem. Evaluation
// is skipped entirely before MinTurns user turns and while the student
// is severely stuck; a severely stuck student who types the right words
// has not understood anything.
type Judge struct {
	provider llm.LLMProvider
	cfg      JudgeConfig
}

func NewJudge(provider llm.LLMProvider, cfg JudgeConfig) *Judge {
	if cfg.MinTurns <= 0 {
		cfg.MinTurns = 4
	}
	if cfg.MinConfidence <= 0 {
		cfg.MinConfidence = 0.7
	}
	return &Judge{provider: provider, cfg: cfg}
}

// ShouldEvaluate is the gate in front of Evaluate.
func (j *Judge) ShouldEvaluate(userTurns int, level StuckLevel) bool {
	return userTurns >= j.cfg.MinTurns && level < SeverelyStuck
}

// Evaluate asks the reasoning service for a verdict, falling back to a
// keyword heuristic when the service is unavailable. The heuristic's
// confidence never reaches MinConfidence, so a fallback verdict can
// flag a likely completion but never finalize one.
func (j *Judge) Evaluate(ctx context.Context, problem string, messages []llm.Message) CompletionResult {
	if j.provider != nil {
		if result, err := j.evaluateWithService(ctx, problem, messages); err == nil {
			result.IsComplete = result.IsComplete && result.Confidence >= j.cfg.MinConfidence
			return result
		}
	}
	return j.evaluateHeuristic(messages)
}

// MinConfidence exposes the finalization threshold for callers that
// surface advisory verdicts.
func (j *Judge) MinConfidence() float64 {
	return j.cfg.MinConfidence
}

type completionVerdict struct {
	IsComplete  bool    `json:"is_complete"`
	Confidence  float64 `json:"confidence"`
	FinalAnswer string  `json:"final_answer"`
	Reasoning   string  `json:"reasoning"`
}

func (j *Judge) evaluateWithService(ctx context.Context, problem string, messages []llm.Message) (CompletionResult, error) {
	transcript := renderTranscript(messages, 12)
	prompt := []llm.Message{
		{Role: "system", Content: completionSystemPrompt},
		{Role: "user", Content: "Problem:\n" + problem + "\n\nTranscript:\n" + transcript},
	}
	reply, err := j.provider.Chat(ctx, prompt, llm.WithTemperature(0), llm.WithMaxTokens(300))
	if err != nil {
		return CompletionResult{}, err
	}

	var verdict completionVerdict
	if err := json.Unmarshal([]byte(extractJSON(reply)), &verdict); err != nil {
		return CompletionResult{}, err
	}
	return CompletionResult{
		IsComplete:  verdict.IsComplete,
		Confidence:  clamp01(verdict.Confidence),
		FinalAnswer: verdict.FinalAnswer,
		Reasoning:   verdict.Reasoning,
		Source:      SourceService,
	}, nil
}

// completionKeywords in the latest user turn suggest, weakly, that the
// student believes they are done.
var completionKeywords = []string{
	"i got it",
	"got it",
	"solved it",
	"i solved",
	"the answer is",
	"i understand now",
	"makes sense now",
	"figured it out",
	"that's it",
	"done",
}

func (j *Judge) evaluateHeuristic(messages []llm.Message) CompletionResult {
	var lastUser string
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == "user" {
			lastUser = strings.ToLower(messages[i].Content)
			break
		}
	}

	for _, kw := range completionKeywords {
		if strings.Contains(lastUser, kw) {
			confidence := 0.3
			if strings.Contains(lastUser, "the answer is") || strings.Contains(lastUser, "solved") {
				confidence = 0.5
			}
			return CompletionResult{
				IsComplete: false,
				Confidence: confidence,
				Reasoning:  "completion keywords present without service verification",
				Source:     SourceHeuristic,
			}
		}
	}
	return CompletionResult{IsComplete: false, Confidence: 0, Source: SourceHeuristic}
}

const completionSystemPrompt = `You judge whether a student has genuinely solved the stated problem based on the tutoring transcript. Respond with only a JSON object: {"is_complete": bool, "confidence": number between 0 and 1, "final_answer": string, "reasoning": string}. Genuine completion means the student produced or clearly articulated the correct answer themselves.`

func renderTranscript(messages []llm.Message, lastN int) string {
	start := 0
	if len(messages) > lastN {
		start = len(messages) - lastN
	}
	var b strings.Builder
	for _, msg := range messages[start:] {
		if msg.Role == "system" {
			continue
		}
		b.WriteString(msg.Role)
		b.WriteString(": ")
		b.WriteString(msg.Content)
		b.WriteString("\n")
	}
	return b.String()
}

// extractJSON tolerates fenced or prefixed model output around the
// JSON object.
func extractJSON(s string) string {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start >= 0 && end > start {
		return s[start : end+1]
	}
	return s
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
