package ratelimit

import (
	"math"
	"time"
)

// Bucket is the per-user token bucket. Tokens stay within [0, capacity];
// a bucket is created lazily on the first check and reaped by the
// store's idle sweep (a fresh bucket starts nearly full, so losing burst
// history is acceptable).
type Bucket struct {
	UserKey    string
	Tokens     float64
	LastRefill time.Time
}

// BucketStore abstracts the bucket storage so a replica-consistent
// implementation can be swapped in without touching call sites.
type BucketStore interface {
	Get(userKey string) (*Bucket, bool)
	Upsert(bucket *Bucket)
	Sweep()
}

// Config derives the refill rate from a requests-per-window policy.
type Config struct {
	RequestsPerWindow int
	WindowSeconds     int
}

// Decision is the outcome of an admission check.
type Decision struct {
	Allowed    bool
	Remaining  int
	Limit      int
	RetryAfter time.Duration
}

// Limiter is a per-user token-bucket admission gate.
type Limiter struct {
	store      BucketStore
	capacity   float64
	refillRate float64 // tokens per second
	now        func() time.Time
}

func NewLimiter(store BucketStore, cfg Config) *Limiter {
	if cfg.RequestsPerWindow <= 0 {
		cfg.RequestsPerWindow = 30
	}
	if cfg.WindowSeconds <= 0 {
		cfg.WindowSeconds = 60
	}
	return &Limiter{
		store:      store,
		capacity:   float64(cfg.RequestsPerWindow),
		refillRate: float64(cfg.RequestsPerWindow) / float64(cfg.WindowSeconds),
		now:        time.Now,
	}
}

// Check admits or rejects one request for userKey, consuming a token on
// admission. A fresh user key is never rejected on its first call.
func (l *Limiter) Check(userKey string) Decision {
	bucket := l.refreshed(userKey)

	if bucket.Tokens >= 1 {
		bucket.Tokens--
		l.store.Upsert(bucket)
		return Decision{
			Allowed:   true,
			Remaining: int(math.Floor(bucket.Tokens)),
			Limit:     int(l.capacity),
		}
	}

	l.store.Upsert(bucket)
	retrySeconds := math.Ceil((1 - bucket.Tokens) / l.refillRate)
	return Decision{
		Allowed:    false,
		Remaining:  0,
		Limit:      int(l.capacity),
		RetryAfter: time.Duration(retrySeconds) * time.Second,
	}
}

// Status reports the bucket state without consuming a token.
func (l *Limiter) Status(userKey string) Decision {
	bucket := l.refreshed(userKey)
	l.store.Upsert(bucket)

	if bucket.Tokens >= 1 {
		return Decision{
			Allowed:   true,
			Remaining: int(math.Floor(bucket.Tokens)),
			Limit:     int(l.capacity),
		}
	}
	retrySeconds := math.Ceil((1 - bucket.Tokens) / l.refillRate)
	return Decision{
		Allowed:    false,
		Remaining:  0,
		Limit:      int(l.capacity),
		RetryAfter: time.Duration(retrySeconds) * time.Second,
	}
}

// Sweep purges idle buckets. Memory hygiene only, no correctness
// dependency.
func (l *Limiter) Sweep() {
	l.store.Sweep()
}

// refreshed fetches or lazily creates the bucket and applies refill.
func (l *Limiter) refreshed(userKey string) *Bucket {
	now := l.now()

	bucket, found := l.store.Get(userKey)
	if !found {
		// The current call consumes one token, so start at capacity.
		// Check/Status take it from here.
		return &Bucket{
			UserKey:    userKey,
			Tokens:     l.capacity,
			LastRefill: now,
		}
	}

	elapsed := now.Sub(bucket.LastRefill).Seconds()
	if elapsed > 0 {
		bucket.Tokens = math.Min(l.capacity, bucket.Tokens+elapsed*l.refillRate)
	}
	bucket.LastRefill = now
	return bucket
}
