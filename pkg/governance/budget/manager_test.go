package budget

import (
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"ai-tutoring-be/pkg/governance/tokens"
	"ai-tutoring-be/pkg/llm"
)

func testManager() *Manager {
	return NewManager(tokens.NewCounter(), Config{
		HardLimit:           4000,
		SoftLimit:           3800,
		ReservedForResponse: 1000,
		MaxTurnPairs:        10,
		CompressThreshold:   15,
		KeepSystemPrompt:    true,
	})
}

// content of exactly n estimated tokens (before message overhead).
func contentOfTokens(n int) string {
	return strings.Repeat("abcd", n)
}

func TestCheckWithinBudget(t *testing.T) {
	m := testManager()
	msgs := []llm.Message{
		{Role: "system", Content: contentOfTokens(100)},
		{Role: "user", Content: contentOfTokens(200)},
	}

	res := m.Check(msgs)
	if !res.Allowed {
		t.Fatal("small conversation should be allowed")
	}
	if res.Warning {
		t.Fatal("small conversation should not warn")
	}
	if res.TokenCount != 308 {
		t.Fatalf("TokenCount = %d, want 308", res.TokenCount)
	}
}

func TestCheckWarningBand(t *testing.T) {
	m := testManager()
	// 2900 content tokens + 4 overhead = 2904: above the soft
	// threshold (3800-1000) but within the hard budget (4000-1000).
	msgs := []llm.Message{{Role: "user", Content: contentOfTokens(2900)}}

	res := m.Check(msgs)
	if !res.Allowed {
		t.Fatal("conversation within hard budget should be allowed")
	}
	if !res.Warning {
		t.Fatal("conversation above soft threshold should warn")
	}
}

func TestCheckOverBudget(t *testing.T) {
	m := testManager()
	msgs := []llm.Message{{Role: "user", Content: contentOfTokens(3100)}}

	res := m.Check(msgs)
	if res.Allowed {
		t.Fatal("conversation over the hard budget should be rejected")
	}
	if res.Warning {
		t.Fatal("rejected conversation should not also warn")
	}
}

func TestFitReturnsFittingListUnchanged(t *testing.T) {
	m := testManager()
	msgs := []llm.Message{
		{Role: "system", Content: "tutor prompt"},
		{Role: "user", Content: "what is a derivative?"},
		{Role: "assistant", Content: "what do you know about rates of change?"},
	}

	fitted, report := m.Fit(msgs)
	if report.RemovedCount != 0 || report.Compressed || report.Truncated {
		t.Fatalf("unexpected trim: %+v", report)
	}
	if len(fitted) != len(msgs) {
		t.Fatalf("len = %d, want %d", len(fitted), len(msgs))
	}
	for i := range msgs {
		if fitted[i] != msgs[i] {
			t.Fatalf("message %d changed: %+v", i, fitted[i])
		}
	}
}

func TestFitOversizedConversationKeepsAnchors(t *testing.T) {
	m := testManager()

	problem := "solve the integral of x squared " + contentOfTokens(100)
	msgs := []llm.Message{
		{Role: "system", Content: contentOfTokens(10)},
		{Role: "user", Content: problem},
	}
	for i := 0; i < 22; i++ {
		msgs = append(msgs,
			llm.Message{Role: "user", Content: contentOfTokens(100)},
			llm.Message{Role: "assistant", Content: contentOfTokens(100)},
		)
	}

	before := m.Check(msgs)
	if before.Allowed {
		t.Fatalf("precondition failed: conversation fits (%d tokens)", before.TokenCount)
	}

	fitted, report := m.Fit(msgs)
	after := m.Check(fitted)
	if !after.Allowed {
		t.Fatalf("fitted conversation still over budget: %d tokens", after.TokenCount)
	}
	if after.TokenCount > m.Available() {
		t.Fatalf("TokenCount = %d, want <= %d", after.TokenCount, m.Available())
	}
	if report.RemovedCount == 0 {
		t.Fatal("expected turns to be removed")
	}

	if fitted[0].Role != "system" || fitted[0].Content != msgs[0].Content {
		t.Fatal("system prompt not retained as first message")
	}
	foundProblem := false
	for _, msg := range fitted {
		if msg.Role == "user" && msg.Content == problem {
			foundProblem = true
			break
		}
	}
	if !foundProblem {
		t.Fatal("first user message (problem statement) not retained")
	}
}

func TestFitCompressesDroppedTurns(t *testing.T) {
	m := testManager()

	msgs := []llm.Message{
		{Role: "system", Content: "tutor prompt"},
		{Role: "user", Content: "the original problem"},
	}
	for i := 0; i < 14; i++ {
		msgs = append(msgs,
			llm.Message{Role: "user", Content: fmt.Sprintf("question number %d", i+1)},
			llm.Message{Role: "assistant", Content: fmt.Sprintf("guidance number %d", i+1)},
		)
	}

	fitted, report := m.Fit(msgs)
	if !report.Compressed {
		t.Fatalf("expected compression, report: %+v", report)
	}

	foundSummary := false
	for _, msg := range fitted {
		if msg.Role == "system" && strings.Contains(msg.Content, "Summary of") {
			foundSummary = true
			break
		}
	}
	if !foundSummary {
		t.Fatal("expected a synthetic summary message")
	}
}

func TestFitSummaryExcerptsStayValidUTF8(t *testing.T) {
	m := testManager()

	// Long enough that the summary truncates each excerpt, multibyte so
	// a byte-indexed cut would split a rune.
	wide := strings.Repeat("微积分的基本定理", 15)
	msgs := []llm.Message{
		{Role: "system", Content: "tutor prompt"},
		{Role: "user", Content: "the original problem"},
	}
	for i := 0; i < 14; i++ {
		msgs = append(msgs,
			llm.Message{Role: "user", Content: wide},
			llm.Message{Role: "assistant", Content: "guidance"},
		)
	}

	fitted, report := m.Fit(msgs)
	if !report.Compressed {
		t.Fatalf("expected compression, report: %+v", report)
	}
	for _, msg := range fitted {
		if msg.Role == "system" && strings.Contains(msg.Content, "Summary of") {
			if !utf8.ValidString(msg.Content) {
				t.Fatalf("summary is not valid UTF-8: %q", msg.Content)
			}
			return
		}
	}
	t.Fatal("expected a synthetic summary message")
}

func TestFitIsStableAcrossPasses(t *testing.T) {
	m := testManager()

	msgs := []llm.Message{
		{Role: "system", Content: "tutor prompt"},
		{Role: "user", Content: "the original problem"},
	}
	for i := 0; i < 16; i++ {
		msgs = append(msgs,
			llm.Message{Role: "user", Content: contentOfTokens(50)},
			llm.Message{Role: "assistant", Content: contentOfTokens(50)},
		)
	}

	first, firstReport := m.Fit(msgs)
	if firstReport.RemovedCount == 0 {
		t.Fatal("precondition failed: first pass removed nothing")
	}

	second, secondReport := m.Fit(first)
	if secondReport.RemovedCount != 0 || secondReport.Compressed {
		t.Fatalf("second pass not stable: %+v", secondReport)
	}
	if len(second) != len(first) {
		t.Fatalf("second pass changed length: %d vs %d", len(second), len(first))
	}
}
