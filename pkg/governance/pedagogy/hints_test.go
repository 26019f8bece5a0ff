package pedagogy

import (
	"context"
	"errors"
	"testing"

	"ai-tutoring-be/pkg/llm"
)

type stubProvider struct {
	reply string
	err   error
	calls int
}

func (s *stubProvider) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	s.calls++
	return s.reply, s.err
}

func (s *stubProvider) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	s.calls++
	return s.reply, s.err
}

func TestHintLevelFor(t *testing.T) {
	tests := []struct {
		level StuckLevel
		want  int
	}{
		{NotStuck, 0},
		{PotentiallyStuck, 1},
		{DefinitelyStuck, 3},
		{SeverelyStuck, 4},
	}
	for _, tt := range tests {
		if got := HintLevelFor(tt.level); got != tt.want {
			t.Errorf("HintLevelFor(%v) = %d, want %d", tt.level, got, tt.want)
		}
	}
}

func TestAdviseReturnsNilWhenNotStuck(t *testing.T) {
	provider := &stubProvider{reply: "think about the base case"}
	a := NewAdvisor(provider, DefaultAdvisorConfig())

	hint, err := a.Advise(context.Background(), Assessment{Level: NotStuck}, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hint != nil {
		t.Fatalf("hint = %+v, want nil", hint)
	}
	if provider.calls != 0 {
		t.Fatal("reasoning service should not be called when not stuck")
	}
}

func TestAdviseLowLevelHintHasNoContent(t *testing.T) {
	provider := &stubProvider{reply: "should not appear"}
	a := NewAdvisor(provider, DefaultAdvisorConfig())

	hint, err := a.Advise(context.Background(), Assessment{Level: PotentiallyStuck}, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hint == nil || hint.Level != 1 {
		t.Fatalf("hint = %+v, want level 1", hint)
	}
	if hint.Content != "" {
		t.Fatal("level 1 hint should not carry generated content")
	}
	if provider.calls != 0 {
		t.Fatal("reasoning service should not be called below the generation level")
	}
}

func TestAdviseGeneratesContentWhenDefinitelyStuck(t *testing.T) {
	provider := &stubProvider{reply: "  consider what happens at the boundary  "}
	a := NewAdvisor(provider, DefaultAdvisorConfig())

	msgs := []llm.Message{{Role: "user", Content: "i'm stuck on the boundary condition"}}
	hint, err := a.Advise(context.Background(), Assessment{Level: DefinitelyStuck}, msgs, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hint == nil || hint.Level != 3 {
		t.Fatalf("hint = %+v, want level 3", hint)
	}
	if hint.Content != "consider what happens at the boundary" {
		t.Fatalf("Content = %q", hint.Content)
	}
	if provider.calls != 1 {
		t.Fatalf("calls = %d, want 1", provider.calls)
	}
}

func TestAdviseSuppressesRepeatHints(t *testing.T) {
	provider := &stubProvider{reply: "a hint"}
	a := NewAdvisor(provider, DefaultAdvisorConfig())

	tests := []struct {
		name     string
		recent   []int
		wantHint bool
	}{
		{name: "no prior hints", recent: nil, wantHint: true},
		{name: "recent equal level suppresses", recent: []int{3}, wantHint: false},
		{name: "recent higher level suppresses", recent: []int{4}, wantHint: false},
		{name: "recent lower level allows", recent: []int{1, 1}, wantHint: true},
		{name: "equal level outside window allows", recent: []int{3, 1, 1}, wantHint: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hint, err := a.Advise(context.Background(), Assessment{Level: DefinitelyStuck}, nil, tt.recent)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if (hint != nil) != tt.wantHint {
				t.Fatalf("hint = %+v, wantHint %v", hint, tt.wantHint)
			}
		})
	}
}

func TestAdviseDegradesOnServiceFailure(t *testing.T) {
	provider := &stubProvider{err: errors.New("connection refused")}
	a := NewAdvisor(provider, DefaultAdvisorConfig())

	hint, err := a.Advise(context.Background(), Assessment{Level: SeverelyStuck}, nil, nil)
	if err == nil {
		t.Fatal("expected a degradation error")
	}
	if hint == nil || hint.Level != 4 {
		t.Fatalf("hint = %+v, want level-only hint at 4", hint)
	}
	if hint.Content != "" {
		t.Fatal("degraded hint should carry no content")
	}
}
