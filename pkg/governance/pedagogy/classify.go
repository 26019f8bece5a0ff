package pedagogy

import "strings"

// ProblemType buckets a session's subject so prompts and analytics can
// be tuned per subject.
type ProblemType string

const (
	ProblemMath    ProblemType = "math"
	ProblemCoding  ProblemType = "coding"
	ProblemWriting ProblemType = "writing"
	ProblemGeneral ProblemType = "general"
)

var problemTypeKeywords = map[ProblemType][]string{
	ProblemMath: {
		"equation", "solve for", "derivative", "integral", "algebra",
		"geometry", "calculate", "fraction", "theorem", "probability",
	},
	ProblemCoding: {
		"function", "code", "bug", "compile", "python", "javascript",
		"algorithm", "array", "loop", "debug", "error message",
	},
	ProblemWriting: {
		"essay", "paragraph", "thesis", "grammar", "summarize",
		"rewrite", "argument", "introduction",
	},
}

// ClassifyProblem picks the bucket with the most keyword hits in the
// problem statement, defaulting to general.
func ClassifyProblem(statement string) ProblemType {
	normalized := strings.ToLower(statement)

	best := ProblemGeneral
	bestHits := 0
	for _, pt := range []ProblemType{ProblemMath, ProblemCoding, ProblemWriting} {
		hits := 0
		for _, kw := range problemTypeKeywords[pt] {
			if strings.Contains(normalized, kw) {
				hits++
			}
		}
		if hits > bestHits {
			best, bestHits = pt, hits
		}
	}
	return best
}
