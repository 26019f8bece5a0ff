package pedagogy

import (
	"strings"

	"ai-tutoring-be/pkg/llm"
)

// StuckLevel orders how firmly the student appears blocked. Levels are
// comparable; escalation only ever moves upward within one assessment.
type StuckLevel int

const (
	NotStuck StuckLevel = iota
	PotentiallyStuck
	DefinitelyStuck
	SeverelyStuck
)

func (s StuckLevel) String() string {
	switch s {
	case NotStuck:
		return "not_stuck"
	case PotentiallyStuck:
		return "potentially_stuck"
	case DefinitelyStuck:
		return "definitely_stuck"
	case SeverelyStuck:
		return "severely_stuck"
	default:
		return "unknown"
	}
}

// Assessment is the outcome of one stuck evaluation over recent turns.
type Assessment struct {
	Level       StuckLevel
	StuckPoints int
	Signals     []string
}

// DetectorConfig bounds how much history a detection pass reads.
type DetectorConfig struct {
	// RecentTurns is how many trailing user turns are inspected.
	RecentTurns int
	// ShortMessageRunes is the length under which a reply reads as a
	// non-answer.
	ShortMessageRunes int
}

func DefaultDetectorConfig() DetectorConfig {
	return DetectorConfig{RecentTurns: 4, ShortMessageRunes: 15}
}

// helpSeekPhrases are matched case-insensitively inside a user turn.
var helpSeekPhrases = []string{
	"i don't know",
	"i dont know",
	"no idea",
	"i'm stuck",
	"im stuck",
	"stuck",
	"help",
	"give up",
	"i can't",
	"i cant",
	"confused",
	"what do you mean",
}

// Detector scores stuck points over the trailing user turns. It is
// stateless; escalation across turns falls out of re-running it on the
// growing history.
type Detector struct {
	cfg DetectorConfig
}

func NewDetector(cfg DetectorConfig) *Detector {
	if cfg.RecentTurns <= 0 {
		cfg.RecentTurns = 4
	}
	if cfg.ShortMessageRunes <= 0 {
		cfg.ShortMessageRunes = 15
	}
	return &Detector{cfg: cfg}
}

// Assess inspects the last few user turns and maps accumulated stuck
// points onto a level. Each turn contributes at most one point per
// signal kind.
func (d *Detector) Assess(messages []llm.Message) Assessment {
	recent := lastUserTurns(messages, d.cfg.RecentTurns)

	points := 0
	var signals []string
	seen := map[string]bool{}
	for _, turn := range recent {
		normalized := strings.ToLower(strings.TrimSpace(turn))

		if len([]rune(normalized)) > 0 && len([]rune(normalized)) < d.cfg.ShortMessageRunes {
			points++
			signals = append(signals, "short_reply")
		}
		for _, phrase := range helpSeekPhrases {
			if strings.Contains(normalized, phrase) {
				points++
				signals = append(signals, "help_seeking")
				break
			}
		}
		if seen[normalized] && normalized != "" {
			points++
			signals = append(signals, "repeated_message")
		}
		seen[normalized] = true
	}

	return Assessment{
		Level:       levelFor(points),
		StuckPoints: points,
		Signals:     signals,
	}
}

func levelFor(points int) StuckLevel {
	switch {
	case points >= 4:
		return SeverelyStuck
	case points == 3:
		return DefinitelyStuck
	case points == 2:
		return PotentiallyStuck
	default:
		return NotStuck
	}
}

func lastUserTurns(messages []llm.Message, n int) []string {
	var turns []string
	for i := len(messages) - 1; i >= 0 && len(turns) < n; i-- {
		if messages[i].Role == "user" {
			turns = append(turns, messages[i].Content)
		}
	}
	// Restore chronological order so repetition detection reads forward.
	for i, j := 0, len(turns)-1; i < j; i, j = i+1, j-1 {
		turns[i], turns[j] = turns[j], turns[i]
	}
	return turns
}
