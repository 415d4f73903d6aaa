package gateway

import (
	"sync/atomic"
	"time"
)

// tokenBucket enforces the per-connection event budget over a fixed
// window. Atomics only: Allow runs on the connection's read loop while
// /statsz and tests may observe concurrently.
type tokenBucket struct {
	capacity    int64
	window      int64 // nanoseconds
	tokens      atomic.Int64
	windowStart atomic.Int64
}

func newTokenBucket(capacity int, window time.Duration) *tokenBucket {
	b := &tokenBucket{
		capacity: int64(capacity),
		window:   window.Nanoseconds(),
	}
	b.tokens.Store(b.capacity)
	b.windowStart.Store(time.Now().UnixNano())
	return b
}

// Allow consumes one token. When the window has elapsed the budget is
// replenished first. Returns false without consuming once the budget of
// the current window is spent.
func (b *tokenBucket) Allow(now time.Time) bool {
	start := b.windowStart.Load()
	if now.UnixNano()-start >= b.window {
		if b.windowStart.CompareAndSwap(start, now.UnixNano()) {
			b.tokens.Store(b.capacity)
		}
	}
	return b.tokens.Add(-1) >= 0
}

// RetryAfter reports how long until the current window rolls over.
func (b *tokenBucket) RetryAfter(now time.Time) time.Duration {
	remaining := b.window - (now.UnixNano() - b.windowStart.Load())
	if remaining < 0 {
		return 0
	}
	return time.Duration(remaining)
}
