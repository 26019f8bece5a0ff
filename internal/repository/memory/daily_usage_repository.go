package memory

import (
	"time"

	"github.com/patrickmn/go-cache"

	"ai-tutoring-be/pkg/governance/quota"
)

// DailyUsageRepository keeps per-user daily counters in process memory.
// Keys include the UTC date, so rollover needs no reset job; stale days
// simply age out of the cache.
type DailyUsageRepository struct {
	cache *cache.Cache
}

func NewDailyUsageRepository() *DailyUsageRepository {
	// Counters live a bit over two days so yesterday's entry is still
	// readable for reporting until it expires.
	c := cache.New(50*time.Hour, 1*time.Hour)
	return &DailyUsageRepository{
		cache: c,
	}
}

func key(userKey, dateUTC string) string {
	return userKey + ":" + dateUTC
}

func (r *DailyUsageRepository) Get(userKey, dateUTC string) (*quota.DailyUsage, bool) {
	if x, found := r.cache.Get(key(userKey, dateUTC)); found {
		return x.(*quota.DailyUsage), true
	}
	return nil, false
}

func (r *DailyUsageRepository) Upsert(usage *quota.DailyUsage) {
	r.cache.Set(key(usage.UserKey, usage.DateUTC), usage, cache.DefaultExpiration)
}

func (r *DailyUsageRepository) Sweep() {
	r.cache.DeleteExpired()
}
