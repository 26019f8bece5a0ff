package quota

import (
	"time"
)

// DailyUsage tracks problems started by one user on one UTC day.
// ProblemsStarted never decreases within a day; rollover happens
// implicitly because the key includes the date.
type DailyUsage struct {
	UserKey         string
	DateUTC         string // "2006-01-02"
	ProblemsStarted int
	LastUpdated     time.Time
}

// DailyStore abstracts the counter storage. Process-local by default;
// a shared store can be swapped in for multi-replica deployments.
type DailyStore interface {
	Get(userKey, dateUTC string) (*DailyUsage, bool)
	Upsert(usage *DailyUsage)
	Sweep()
}

// DailyStatus is the outcome of a daily quota check.
type DailyStatus struct {
	Allowed   bool
	Current   int
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// DailyQuota enforces the per-user daily problem limit.
type DailyQuota struct {
	store DailyStore
	limit int
	now   func() time.Time
}

func NewDailyQuota(store DailyStore, limit int) *DailyQuota {
	return &DailyQuota{
		store: store,
		limit: limit,
		now:   time.Now,
	}
}

// Check reports whether the user may start another problem today.
// ResetAt is the next UTC midnight strictly after now.
func (q *DailyQuota) Check(userKey string) DailyStatus {
	now := q.now().UTC()
	date := now.Format("2006-01-02")

	current := 0
	if usage, found := q.store.Get(userKey, date); found {
		current = usage.ProblemsStarted
	}

	remaining := q.limit - current
	if remaining < 0 {
		remaining = 0
	}

	return DailyStatus{
		Allowed:   current < q.limit,
		Current:   current,
		Limit:     q.limit,
		Remaining: remaining,
		ResetAt:   nextUTCMidnight(now),
	}
}

// RecordProblemStarted increments today's counter. Callers invoke this
// only when a turn is classified as starting a new problem.
func (q *DailyQuota) RecordProblemStarted(userKey string) DailyStatus {
	now := q.now().UTC()
	date := now.Format("2006-01-02")

	usage, found := q.store.Get(userKey, date)
	if !found {
		usage = &DailyUsage{
			UserKey: userKey,
			DateUTC: date,
		}
	}
	usage.ProblemsStarted++
	usage.LastUpdated = now
	q.store.Upsert(usage)

	return q.Check(userKey)
}

// Seed restores today's counter from durable state, typically after a
// restart wiped the process-local store. It never lowers an existing
// count.
func (q *DailyQuota) Seed(userKey string, count int) {
	now := q.now().UTC()
	date := now.Format("2006-01-02")

	usage, found := q.store.Get(userKey, date)
	if !found {
		usage = &DailyUsage{
			UserKey: userKey,
			DateUTC: date,
		}
	}
	if count > usage.ProblemsStarted {
		usage.ProblemsStarted = count
		usage.LastUpdated = now
		q.store.Upsert(usage)
	}
}

func nextUTCMidnight(now time.Time) time.Time {
	now = now.UTC()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return midnight.Add(24 * time.Hour)
}
