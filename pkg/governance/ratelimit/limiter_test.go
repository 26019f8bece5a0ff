package ratelimit

import (
	"testing"
	"time"
)

type mapStore struct {
	buckets map[string]*Bucket
}

func newMapStore() *mapStore {
	return &mapStore{buckets: make(map[string]*Bucket)}
}

func (s *mapStore) Get(userKey string) (*Bucket, bool) {
	b, ok := s.buckets[userKey]
	return b, ok
}

func (s *mapStore) Upsert(bucket *Bucket) {
	s.buckets[bucket.UserKey] = bucket
}

func (s *mapStore) Sweep() {}

func newTestLimiter(at time.Time) (*Limiter, *time.Time) {
	clock := at
	l := NewLimiter(newMapStore(), Config{RequestsPerWindow: 30, WindowSeconds: 60})
	l.now = func() time.Time { return clock }
	return l, &clock
}

func TestLimiterAdmitsExactlyBurstCapacity(t *testing.T) {
	l, _ := newTestLimiter(time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC))

	for i := 0; i < 30; i++ {
		d := l.Check("user-1")
		if !d.Allowed {
			t.Fatalf("request %d rejected, want first 30 admitted", i+1)
		}
	}

	d := l.Check("user-1")
	if d.Allowed {
		t.Fatal("request 31 admitted, want rejection")
	}
	if d.RetryAfter <= 0 {
		t.Fatalf("RetryAfter = %v, want > 0", d.RetryAfter)
	}
}

func TestLimiterRefillRestoresAdmission(t *testing.T) {
	l, clock := newTestLimiter(time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC))

	for i := 0; i < 30; i++ {
		l.Check("user-1")
	}
	if d := l.Check("user-1"); d.Allowed {
		t.Fatal("expected rejection after burst")
	}

	// 30 req / 60s refills one token every two seconds.
	*clock = clock.Add(2 * time.Second)
	if d := l.Check("user-1"); !d.Allowed {
		t.Fatalf("expected admission after refill, got RetryAfter=%v", d.RetryAfter)
	}
	if d := l.Check("user-1"); d.Allowed {
		t.Fatal("expected second request after single refill to be rejected")
	}
}

func TestLimiterIsolatesUsers(t *testing.T) {
	l, _ := newTestLimiter(time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC))

	for i := 0; i < 30; i++ {
		l.Check("busy")
	}
	if d := l.Check("busy"); d.Allowed {
		t.Fatal("busy user should be rejected")
	}
	if d := l.Check("quiet"); !d.Allowed {
		t.Fatal("quiet user should be unaffected")
	}
}

func TestLimiterStatusDoesNotConsume(t *testing.T) {
	l, _ := newTestLimiter(time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC))

	l.Check("user-1")
	before := l.Status("user-1")
	after := l.Status("user-1")

	if before.Remaining != after.Remaining {
		t.Fatalf("Status consumed tokens: %d then %d", before.Remaining, after.Remaining)
	}
	if before.Remaining != 29 {
		// 30 capacity, one consumed by Check.
		t.Fatalf("Remaining = %d, want 29", before.Remaining)
	}
}

func TestLimiterRetryAfterScalesWithDebt(t *testing.T) {
	l, _ := newTestLimiter(time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC))

	for i := 0; i < 30; i++ {
		l.Check("user-1")
	}

	d := l.Check("user-1")
	// One full token at 0.5 tokens/sec needs two seconds.
	if d.RetryAfter != 2*time.Second {
		t.Fatalf("RetryAfter = %v, want 2s", d.RetryAfter)
	}
}
