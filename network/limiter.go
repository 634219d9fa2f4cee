package network

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// RateLimiter paces requests per key (one key per catalog site). Each key is
// held to a minimum interval between consecutive requests and a per-minute
// ceiling. The clock is injected so tests can drive time explicitly.
type RateLimiter struct {
	clock       clockwork.Clock
	minInterval time.Duration
	perMinute   int

	mu    sync.Mutex
	state map[string]*keyState
}

type keyState struct {
	last        time.Time
	windowStart time.Time
	windowCount int
}

// NewRateLimiter constructs a limiter with the given pacing parameters.
// A perMinute value of zero disables the per-minute ceiling.
func NewRateLimiter(clock clockwork.Clock, minInterval time.Duration, perMinute int) *RateLimiter {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &RateLimiter{
		clock:       clock,
		minInterval: minInterval,
		perMinute:   perMinute,
		state:       make(map[string]*keyState),
	}
}

// Acquire blocks until a request for the key may proceed, honoring the
// context. It returns the duration waited.
func (r *RateLimiter) Acquire(ctx context.Context, key string) (time.Duration, error) {
	wait := r.reserve(key)
	if wait <= 0 {
		return 0, ctx.Err()
	}

	timer := r.clock.NewTimer(wait)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return 0, ctx.Err()
	case <-timer.Chan():
		return wait, nil
	}
}

// reserve computes the wait for the next slot of the key and books it.
func (r *RateLimiter) reserve(key string) time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.clock.Now()
	st, ok := r.state[key]
	if !ok {
		st = &keyState{windowStart: now}
		r.state[key] = st
	}

	at := now
	if !st.last.IsZero() {
		if next := st.last.Add(r.minInterval); next.After(at) {
			at = next
		}
	}

	if r.perMinute > 0 {
		if at.Sub(st.windowStart) >= time.Minute {
			st.windowStart = at
			st.windowCount = 0
		}
		if st.windowCount >= r.perMinute {
			at = st.windowStart.Add(time.Minute)
			st.windowStart = at
			st.windowCount = 0
		}
		st.windowCount++
	}

	st.last = at
	return at.Sub(now)
}
