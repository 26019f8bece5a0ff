package budget

import (
	"fmt"
	"strings"

	"ai-tutoring-be/pkg/governance/tokens"
	"ai-tutoring-be/pkg/llm"
)

// Config is the numeric policy for prompt shaping. The hard limit minus
// the response reservation is what may actually be spent on the prompt;
// the soft limit only annotates a warning.
type Config struct {
	HardLimit           int
	SoftLimit           int
	ReservedForResponse int
	MaxTurnPairs        int
	CompressThreshold   int
	KeepSystemPrompt    bool
}

// Budget is a pure projection, recomputed per check, never persisted.
type Budget struct {
	Total               int     `json:"total"`
	Used                int     `json:"used"`
	Available           int     `json:"available"`
	ReservedForResponse int     `json:"reserved_for_response"`
	PercentUsed         float64 `json:"percent_used"`
}

// CheckResult is the pre-flight verdict for a message list.
type CheckResult struct {
	Allowed    bool
	Warning    bool
	TokenCount int
	Budget     Budget
}

// TrimReport describes what Fit did to the message list.
type TrimReport struct {
	RemovedCount   int
	OriginalTokens int
	FinalTokens    int
	Compressed     bool
	Truncated      bool
}

// Manager shapes a message list to fit the token budget before it is
// sent to the reasoning service.
type Manager struct {
	counter *tokens.Counter
	cfg     Config
}

func NewManager(counter *tokens.Counter, cfg Config) *Manager {
	if cfg.MaxTurnPairs <= 0 {
		cfg.MaxTurnPairs = 10
	}
	if cfg.CompressThreshold <= 0 {
		cfg.CompressThreshold = 15
	}
	return &Manager{counter: counter, cfg: cfg}
}

// Available returns the prompt budget: hard limit minus the response
// reservation.
func (m *Manager) Available() int {
	return m.cfg.HardLimit - m.cfg.ReservedForResponse
}

// Check is the pre-flight gate. It must be re-run after any trimming
// step; a list that still fails here is rejected with payload-too-large
// semantics rather than silently sent oversized.
func (m *Manager) Check(msgs []llm.Message) CheckResult {
	count := m.counter.CountMessages(msgs)
	available := m.Available()
	softAvailable := m.cfg.SoftLimit - m.cfg.ReservedForResponse

	used := count
	if used > available {
		used = available
	}
	percent := 0.0
	if available > 0 {
		percent = float64(count) / float64(available) * 100
	}

	return CheckResult{
		Allowed:    count <= available,
		Warning:    count > softAvailable && count <= available,
		TokenCount: count,
		Budget: Budget{
			Total:               m.cfg.HardLimit,
			Used:                used,
			Available:           available - used,
			ReservedForResponse: m.cfg.ReservedForResponse,
			PercentUsed:         percent,
		},
	}
}

// Fit shapes msgs to the budget. In order: turn-window trim (oldest
// turns replaced by a synthetic summary when the list is long enough to
// warrant compression, dropped outright otherwise), then a greedy
// newest-first token trim that always retains the system prompt and the
// first user message as anchors. Fitting an already-fitting list
// returns it unchanged.
func (m *Manager) Fit(msgs []llm.Message) ([]llm.Message, TrimReport) {
	report := TrimReport{
		OriginalTokens: m.counter.CountMessages(msgs),
	}

	system, rest := m.splitSystem(msgs)

	// Turn-window trim over user/assistant turns; synthetic summaries
	// (system role) are never part of the window.
	kept, dropped := m.turnWindowTrim(rest)

	var summary *llm.Message
	if len(dropped) > 0 {
		report.RemovedCount += len(dropped)
		if len(msgs) > m.cfg.CompressThreshold {
			s := m.summarize(dropped)
			summary = &s
			report.Compressed = true
		}
	}

	working := make([]llm.Message, 0, len(kept)+2)
	if summary != nil {
		working = append(working, *summary)
	}
	working = append(working, kept...)

	// Token trim with anchors retained.
	fitted, truncated := m.tokenTrim(system, working)
	if truncated > 0 {
		report.RemovedCount += truncated
		report.Truncated = true
	}

	report.FinalTokens = m.counter.CountMessages(fitted)

	// Untouched input comes back unchanged, not rebuilt.
	if report.RemovedCount == 0 && !report.Compressed {
		report.FinalTokens = report.OriginalTokens
		return msgs, report
	}
	return fitted, report
}

// splitSystem peels off the leading system prompt when configured to
// keep it.
func (m *Manager) splitSystem(msgs []llm.Message) (*llm.Message, []llm.Message) {
	if !m.cfg.KeepSystemPrompt || len(msgs) == 0 || msgs[0].Role != "system" {
		return nil, msgs
	}
	system := msgs[0]
	return &system, msgs[1:]
}

// turnWindowTrim keeps the last MaxTurnPairs user/assistant pairs plus
// the first user message, returning the dropped prefix.
func (m *Manager) turnWindowTrim(rest []llm.Message) (kept, dropped []llm.Message) {
	window := m.cfg.MaxTurnPairs * 2

	// Index of conversation (non-system) messages.
	var convo []int
	firstUser := -1
	for i, msg := range rest {
		if msg.Role == "system" {
			continue
		}
		convo = append(convo, i)
		if firstUser == -1 && msg.Role == "user" {
			firstUser = i
		}
	}

	if len(convo) <= window {
		return rest, nil
	}

	cut := convo[len(convo)-window] // first conversation index inside the window
	keepIdx := make(map[int]bool, window+2)
	for _, i := range convo[len(convo)-window:] {
		keepIdx[i] = true
	}
	if firstUser >= 0 {
		keepIdx[firstUser] = true
	}
	// Summaries from a previous pass survive the window.
	for i, msg := range rest {
		if msg.Role == "system" {
			keepIdx[i] = true
		}
	}

	for i, msg := range rest {
		if keepIdx[i] {
			kept = append(kept, msg)
		} else if i < cut {
			dropped = append(dropped, msg)
		} else {
			kept = append(kept, msg)
		}
	}
	return kept, dropped
}

// tokenTrim greedily includes messages newest-first while the running
// total stays within budget. The system prompt and the first user
// message are counted up front and always retained, so the reasoning
// service keeps its anchors even under last-resort truncation.
func (m *Manager) tokenTrim(system *llm.Message, working []llm.Message) ([]llm.Message, int) {
	available := m.Available()

	base := 0
	if system != nil {
		base += m.counter.CountMessage(*system)
	}

	firstUser := -1
	for i, msg := range working {
		if msg.Role == "user" {
			firstUser = i
			break
		}
	}
	if firstUser >= 0 {
		base += m.counter.CountMessage(working[firstUser])
	}

	// Walk backward from the newest message.
	include := make([]bool, len(working))
	if firstUser >= 0 {
		include[firstUser] = true // anchor, already counted
	}
	running := base
	for i := len(working) - 1; i >= 0; i-- {
		if i == firstUser {
			continue
		}
		cost := m.counter.CountMessage(working[i])
		if running+cost > available {
			break // stop at the first message that would overflow
		}
		running += cost
		include[i] = true
	}

	result := make([]llm.Message, 0, len(working)+1)
	if system != nil {
		result = append(result, *system)
	}
	truncated := 0
	for i, msg := range working {
		if include[i] {
			result = append(result, msg)
		} else {
			truncated++
		}
	}
	return result, truncated
}

// summarize folds dropped turns into one synthetic turn so semantic
// continuity survives where hard truncation would destroy it. Assembled
// locally; the budget path never blocks on the reasoning service.
func (m *Manager) summarize(dropped []llm.Message) llm.Message {
	var parts []string
	for _, msg := range dropped {
		if msg.Role != "user" {
			continue
		}
		excerpt := msg.Content
		if runes := []rune(excerpt); len(runes) > 80 {
			excerpt = string(runes[:80]) + "..."
		}
		parts = append(parts, excerpt)
	}
	content := fmt.Sprintf(
		"Summary of %d earlier turns. The student previously asked about: %s",
		len(dropped), strings.Join(parts, " | "),
	)
	return llm.Message{Role: "system", Content: content}
}
