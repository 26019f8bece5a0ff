package quota

import (
	"testing"
	"time"
)

type mapDailyStore struct {
	usages map[string]*DailyUsage
}

func newMapDailyStore() *mapDailyStore {
	return &mapDailyStore{usages: make(map[string]*DailyUsage)}
}

func (s *mapDailyStore) Get(userKey, dateUTC string) (*DailyUsage, bool) {
	u, ok := s.usages[userKey+":"+dateUTC]
	return u, ok
}

func (s *mapDailyStore) Upsert(usage *DailyUsage) {
	s.usages[usage.UserKey+":"+usage.DateUTC] = usage
}

func (s *mapDailyStore) Sweep() {}

func newTestDailyQuota(limit int, at time.Time) (*DailyQuota, *time.Time) {
	clock := at
	q := NewDailyQuota(newMapDailyStore(), limit)
	q.now = func() time.Time { return clock }
	return q, &clock
}

func TestDailyQuotaEnforcesLimit(t *testing.T) {
	q, _ := newTestDailyQuota(3, time.Date(2026, 3, 5, 10, 0, 0, 0, time.UTC))

	for i := 0; i < 3; i++ {
		status := q.Check("user-1")
		if !status.Allowed {
			t.Fatalf("problem %d rejected, want allowed", i+1)
		}
		q.RecordProblemStarted("user-1")
	}

	status := q.Check("user-1")
	if status.Allowed {
		t.Fatal("fourth problem allowed, want rejection")
	}
	if status.Current != 3 || status.Remaining != 0 {
		t.Fatalf("Current=%d Remaining=%d, want 3 and 0", status.Current, status.Remaining)
	}
}

func TestDailyQuotaResetAtIsNextUTCMidnight(t *testing.T) {
	q, _ := newTestDailyQuota(5, time.Date(2026, 3, 5, 23, 59, 0, 0, time.UTC))

	status := q.Check("user-1")
	want := time.Date(2026, 3, 6, 0, 0, 0, 0, time.UTC)
	if !status.ResetAt.Equal(want) {
		t.Fatalf("ResetAt = %v, want %v", status.ResetAt, want)
	}
}

func TestDailyQuotaRollsOverAtMidnight(t *testing.T) {
	q, clock := newTestDailyQuota(1, time.Date(2026, 3, 5, 22, 0, 0, 0, time.UTC))

	q.RecordProblemStarted("user-1")
	if status := q.Check("user-1"); status.Allowed {
		t.Fatal("expected rejection at limit")
	}

	*clock = time.Date(2026, 3, 6, 0, 0, 1, 0, time.UTC)
	if status := q.Check("user-1"); !status.Allowed {
		t.Fatal("expected fresh quota after UTC midnight")
	}
}

func TestDailyQuotaKeysUsersSeparately(t *testing.T) {
	q, _ := newTestDailyQuota(1, time.Date(2026, 3, 5, 10, 0, 0, 0, time.UTC))

	q.RecordProblemStarted("user-1")
	if status := q.Check("user-2"); !status.Allowed {
		t.Fatal("user-2 should be unaffected by user-1's usage")
	}
}

func TestDailyQuotaSeedNeverLowersCount(t *testing.T) {
	q, _ := newTestDailyQuota(20, time.Date(2026, 3, 5, 10, 0, 0, 0, time.UTC))

	q.Seed("user-1", 5)
	if status := q.Check("user-1"); status.Current != 5 {
		t.Fatalf("Current = %d, want 5 after seed", status.Current)
	}

	q.RecordProblemStarted("user-1")
	q.Seed("user-1", 3)
	if status := q.Check("user-1"); status.Current != 6 {
		t.Fatalf("Current = %d, want 6, seed must not lower the counter", status.Current)
	}
}
