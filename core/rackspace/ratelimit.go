package rackspace

import (
	"context"
	"sync"
	"time"
)

// Call classes for rate limiting. The provider publishes separate request
// budgets for reads and writes, so each class gets its own bucket.
const (
	BucketRead  = "read"
	BucketWrite = "write"
)

// RateLimiter spaces calls so that each named bucket stays under its
// per-minute budget. It is owned by the client and passed explicitly;
// there is no package-level state.
type RateLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
}

type bucket struct {
	interval time.Duration
	last     time.Time
}

// NewRateLimiter creates a limiter with read and write buckets sized from
// per-minute budgets. A budget of zero disables limiting for that bucket.
func NewRateLimiter(readPerMinute, writePerMinute int) *RateLimiter {
	r := &RateLimiter{buckets: make(map[string]*bucket)}
	r.addBucket(BucketRead, readPerMinute)
	r.addBucket(BucketWrite, writePerMinute)
	return r
}

func (r *RateLimiter) addBucket(name string, perMinute int) {
	b := &bucket{}
	if perMinute > 0 {
		b.interval = time.Minute / time.Duration(perMinute)
	}
	r.buckets[name] = b
}

// Wait blocks until the named bucket permits another call, or the context
// is cancelled. Unknown bucket names do not block.
func (r *RateLimiter) Wait(ctx context.Context, name string) error {
	r.mu.Lock()
	b, ok := r.buckets[name]
	if !ok || b.interval == 0 {
		r.mu.Unlock()
		return nil
	}

	now := time.Now()
	next := b.last.Add(b.interval)
	if next.Before(now) {
		next = now
	}
	b.last = next
	r.mu.Unlock()

	wait := time.Until(next)
	if wait <= 0 {
		return nil
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
