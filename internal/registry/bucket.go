package registry

import (
	"sync"
	"time"
)

// tokenBucket is a continuous-refill token bucket, one per subscriber.
// Admission is non-blocking: a call with no token available simply fails,
// since the Dispatcher treats a bucket-empty admission exactly like a
// pacing skip rather than something worth queuing for.
type tokenBucket struct {
	mu       sync.Mutex
	tokens   float64
	capacity float64
	rate     float64 // tokens refilled per second
	lastTime time.Time
}

func newTokenBucket(capacity, ratePerSecond float64, now time.Time) *tokenBucket {
	return &tokenBucket{
		tokens:   capacity,
		capacity: capacity,
		rate:     ratePerSecond,
		lastTime: now,
	}
}

// tryAdmit refills lazily from elapsed wall time, then consumes exactly one
// token if available.
func (tb *tokenBucket) tryAdmit(now time.Time) bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.refillLocked(now)
	if tb.tokens < 1 {
		return false
	}
	tb.tokens--
	return true
}

func (tb *tokenBucket) refillLocked(now time.Time) {
	elapsed := now.Sub(tb.lastTime).Seconds()
	if elapsed > 0 {
		tb.tokens += elapsed * tb.rate
		if tb.tokens > tb.capacity {
			tb.tokens = tb.capacity
		}
		tb.lastTime = now
	}
}

// reconfigure changes capacity/rate at runtime. The current level is
// preserved, increased by exactly the capacity delta if the new capacity
// is larger; a capacity decrease clamps the level down to the new ceiling.
func (tb *tokenBucket) reconfigure(capacity, ratePerSecond float64, now time.Time) {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.refillLocked(now)
	if delta := capacity - tb.capacity; delta > 0 {
		tb.tokens += delta
	}
	tb.capacity = capacity
	tb.rate = ratePerSecond
	if tb.tokens > tb.capacity {
		tb.tokens = tb.capacity
	}
}
