package ratelimit

import (
	"sync"
	"time"
)

// SlidingWindow is an in-memory rate limiter admitting at most max requests
// per key within a rolling window. The service runs two instances: one keyed
// by notification email, one keyed by client IP.
type SlidingWindow struct {
	max    int
	window time.Duration

	mu        sync.Mutex
	requests  map[string][]time.Time
	lastPrune time.Time

	now func() time.Time
}

// pruneInterval bounds how often the full key map is swept for dead entries.
const pruneInterval = time.Minute

// NewSlidingWindow builds a limiter admitting max requests per window.
func NewSlidingWindow(max int, window time.Duration) *SlidingWindow {
	return &SlidingWindow{
		max:      max,
		window:   window,
		requests: make(map[string][]time.Time),
		now:      time.Now,
	}
}

// Allow reports whether a request for key is admitted. An admitted request is
// recorded against the key; a rejected one is not counted.
func (l *SlidingWindow) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.pruneAllLocked(now)

	kept := l.pruneKeyLocked(key, now)
	if len(kept) >= l.max {
		l.requests[key] = kept
		return false
	}
	l.requests[key] = append(kept, now)
	return true
}

// Max returns the per-key admission cap.
func (l *SlidingWindow) Max() int {
	return l.max
}

// Remaining returns how many requests the key may still make in the current
// window.
func (l *SlidingWindow) Remaining(key string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	kept := l.pruneKeyLocked(key, l.now())
	l.requests[key] = kept
	if rem := l.max - len(kept); rem > 0 {
		return rem
	}
	return 0
}

func (l *SlidingWindow) pruneKeyLocked(key string, now time.Time) []time.Time {
	cutoff := now.Add(-l.window)
	history := l.requests[key]
	kept := history[:0]
	for _, t := range history {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	return kept
}

// pruneAllLocked drops keys whose entire history has expired so one-off
// callers do not grow the map without bound.
func (l *SlidingWindow) pruneAllLocked(now time.Time) {
	if now.Sub(l.lastPrune) < pruneInterval {
		return
	}
	l.lastPrune = now
	cutoff := now.Add(-l.window)
	for key, history := range l.requests {
		alive := false
		for _, t := range history {
			if t.After(cutoff) {
				alive = true
				break
			}
		}
		if !alive {
			delete(l.requests, key)
		}
	}
}
