package llm

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"ai-tutoring-be/pkg/resilience"
)

type flakyProvider struct {
	mu       sync.Mutex
	failures int // calls that fail before succeeding
	calls    int
	reply    string
}

func (f *flakyProvider) Chat(ctx context.Context, history []Message, options ...Option) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.calls <= f.failures {
		return "", errors.New("upstream error")
	}
	return f.reply, nil
}

func (f *flakyProvider) Generate(ctx context.Context, prompt string, options ...Option) (string, error) {
	return f.Chat(ctx, nil, options...)
}

func (f *flakyProvider) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func newTestResilient(inner LLMProvider) *ResilientProvider {
	breaker := resilience.NewBreaker(resilience.BreakerConfig{
		FailureThreshold: 10, // high enough not to trip in retry tests
		SuccessThreshold: 1,
		OpenTimeout:      time.Minute,
	})
	return NewResilientProvider(inner, breaker, time.Second)
}

func TestResilientPassesThroughOnSuccess(t *testing.T) {
	inner := &flakyProvider{reply: "the hint"}
	p := newTestResilient(inner)

	got, err := p.Chat(context.Background(), []Message{{Role: "user", Content: "hi"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "the hint" {
		t.Fatalf("reply = %q", got)
	}
	if inner.callCount() != 1 {
		t.Fatalf("calls = %d, want 1", inner.callCount())
	}
}

func TestResilientRetriesTransientFailures(t *testing.T) {
	inner := &flakyProvider{failures: 2, reply: "eventually"}
	p := newTestResilient(inner)

	got, err := p.Chat(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error after retries: %v", err)
	}
	if got != "eventually" {
		t.Fatalf("reply = %q", got)
	}
	if inner.callCount() != 3 {
		t.Fatalf("calls = %d, want 3", inner.callCount())
	}
}

func TestResilientGivesUpAfterMaxTries(t *testing.T) {
	inner := &flakyProvider{failures: 100}
	p := newTestResilient(inner)

	_, err := p.Chat(context.Background(), nil)
	if err == nil {
		t.Fatal("expected an error after exhausting retries")
	}
	if inner.callCount() != 3 {
		t.Fatalf("calls = %d, want 3 (max tries)", inner.callCount())
	}
}

func TestResilientOpenCircuitShortCircuits(t *testing.T) {
	inner := &flakyProvider{failures: 100}
	breaker := resilience.NewBreaker(resilience.BreakerConfig{
		FailureThreshold: 1,
		SuccessThreshold: 1,
		OpenTimeout:      time.Minute,
	})
	p := NewResilientProvider(inner, breaker, time.Second)

	// First call trips the breaker on its first failure; the open
	// circuit is permanent for backoff, so no further inner calls run.
	_, err := p.Chat(context.Background(), nil)
	if err == nil {
		t.Fatal("expected an error")
	}

	before := inner.callCount()
	_, err = p.Chat(context.Background(), nil)
	if !errors.Is(err, resilience.ErrCircuitOpen) {
		t.Fatalf("err = %v, want ErrCircuitOpen", err)
	}
	if inner.callCount() != before {
		t.Fatal("inner provider called while circuit open")
	}
}
