package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestLimiter(max int, window time.Duration) (*SlidingWindow, *time.Time) {
	l := NewSlidingWindow(max, window)
	current := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return current }
	return l, &current
}

func TestAllowCapsRequestsWithinWindow(t *testing.T) {
	l, _ := newTestLimiter(3, 24*time.Hour)

	require.True(t, l.Allow("a@example.com"))
	require.True(t, l.Allow("a@example.com"))
	require.True(t, l.Allow("a@example.com"))
	require.False(t, l.Allow("a@example.com"))

	// Other keys are unaffected.
	require.True(t, l.Allow("b@example.com"))
}

func TestRejectedAttemptIsNotCounted(t *testing.T) {
	l, clock := newTestLimiter(1, time.Hour)

	require.True(t, l.Allow("k"))
	for i := 0; i < 10; i++ {
		require.False(t, l.Allow("k"))
	}

	// Only the single admitted timestamp should expire; had rejections been
	// recorded the key would still be blocked.
	*clock = clock.Add(time.Hour + time.Second)
	require.True(t, l.Allow("k"))
}

func TestWindowSlides(t *testing.T) {
	l, clock := newTestLimiter(2, time.Hour)

	require.True(t, l.Allow("k"))
	*clock = clock.Add(30 * time.Minute)
	require.True(t, l.Allow("k"))
	require.False(t, l.Allow("k"))

	// First timestamp falls out of the window, second is still inside.
	*clock = clock.Add(31 * time.Minute)
	require.True(t, l.Allow("k"))
	require.False(t, l.Allow("k"))
}

func TestRemaining(t *testing.T) {
	l, clock := newTestLimiter(3, time.Hour)

	require.Equal(t, 3, l.Remaining("k"))
	l.Allow("k")
	l.Allow("k")
	require.Equal(t, 1, l.Remaining("k"))
	l.Allow("k")
	require.Equal(t, 0, l.Remaining("k"))

	*clock = clock.Add(2 * time.Hour)
	require.Equal(t, 3, l.Remaining("k"))
}

func TestDeadKeysArePruned(t *testing.T) {
	l, clock := newTestLimiter(5, time.Minute)

	for _, key := range []string{"a", "b", "c"} {
		require.True(t, l.Allow(key))
	}
	require.Len(t, l.requests, 3)

	// Past the window and the prune interval, a call for any key sweeps the
	// whole map.
	*clock = clock.Add(2 * time.Minute)
	l.Allow("d")
	require.Len(t, l.requests, 1)
}

func TestArbitraryTimingNeverExceedsCap(t *testing.T) {
	const max = 4
	window := time.Hour
	l, clock := newTestLimiter(max, window)

	var admitted []time.Time
	steps := []time.Duration{
		0, time.Minute, time.Minute, 5 * time.Minute, 40 * time.Minute,
		10 * time.Minute, time.Minute, time.Minute, 30 * time.Minute,
		time.Second, time.Second, 20 * time.Minute,
	}
	for _, step := range steps {
		*clock = clock.Add(step)
		if l.Allow("k") {
			admitted = append(admitted, *clock)
		}
		// Count admissions inside any trailing window ending now.
		count := 0
		for _, at := range admitted {
			if at.After(clock.Add(-window)) {
				count++
			}
		}
		require.LessOrEqual(t, count, max)
	}
}
