package tokens

import (
	"encoding/json"
	"fmt"
	"unicode/utf8"

	"ai-tutoring-be/pkg/llm"
)

const (
	// charsPerToken is the estimation ratio for the target model family.
	charsPerToken = 4

	// perMessageOverhead accounts for role framing added by the chat
	// template, so message costs stay additive across components.
	perMessageOverhead = 4
)

// Counter estimates message cost in model tokens. The estimate is
// deterministic for a fixed input; every budgeting component must use
// the same Counter so their numbers are comparable.
type Counter struct{}

func NewCounter() *Counter {
	return &Counter{}
}

// CountText estimates the token cost of raw text.
func (c *Counter) CountText(text string) int {
	if text == "" {
		return 0
	}
	n := utf8.RuneCountInString(text)
	return (n + charsPerToken - 1) / charsPerToken
}

// CountValue estimates the token cost of arbitrary content through its
// canonical string form.
func (c *Counter) CountValue(v interface{}) int {
	return c.CountText(Canonical(v))
}

// CountMessage estimates the token cost of one chat message including
// role framing overhead.
func (c *Counter) CountMessage(msg llm.Message) int {
	return c.CountValue(msg.Content) + perMessageOverhead
}

// CountMessages estimates the total token cost of a message list.
func (c *Counter) CountMessages(msgs []llm.Message) int {
	total := 0
	for _, m := range msgs {
		total += c.CountMessage(m)
	}
	return total
}

// Canonical renders arbitrary content as a stable string so it can be
// counted. Counting never fails: values that don't marshal fall back to
// their fmt representation.
func Canonical(v interface{}) string {
	switch s := v.(type) {
	case string:
		return s
	case fmt.Stringer:
		return s.String()
	}
	if data, err := json.Marshal(v); err == nil {
		return string(data)
	}
	return fmt.Sprintf("%v", v)
}
