package memory

import (
	"time"

	"github.com/patrickmn/go-cache"

	"ai-tutoring-be/pkg/governance/ratelimit"
)

// RateBucketRepository keeps per-user token buckets in process memory.
// Entries expire after an idle TTL, which doubles as the bucket sweep:
// an expired bucket is indistinguishable from a full one.
type RateBucketRepository struct {
	cache *cache.Cache
}

func NewRateBucketRepository(idleTTL time.Duration) *RateBucketRepository {
	if idleTTL <= 0 {
		idleTTL = 10 * time.Minute
	}
	c := cache.New(idleTTL, idleTTL)
	return &RateBucketRepository{
		cache: c,
	}
}

func (r *RateBucketRepository) Get(userKey string) (*ratelimit.Bucket, bool) {
	if x, found := r.cache.Get(userKey); found {
		return x.(*ratelimit.Bucket), true
	}
	return nil, false
}

func (r *RateBucketRepository) Upsert(bucket *ratelimit.Bucket) {
	r.cache.Set(bucket.UserKey, bucket, cache.DefaultExpiration)
}

func (r *RateBucketRepository) Sweep() {
	r.cache.DeleteExpired()
}
