package geo

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

type countingGeocoder struct {
	calls  int
	points map[string]Point
	fail   map[string]bool
}

func (g *countingGeocoder) Geocode(_ context.Context, query string) (Point, error) {
	g.calls++
	if g.fail[query] {
		return Point{}, fmt.Errorf("no results for %q", query)
	}
	if p, ok := g.points[query]; ok {
		return p, nil
	}
	return Point{Lat: float64(g.calls), Lon: float64(-g.calls)}, nil
}

func (g *countingGeocoder) Search(context.Context, string, int) ([]Suggestion, error) {
	return nil, nil
}

func TestCacheKey(t *testing.T) {
	tests := []struct {
		city, country, want string
	}{
		{"Paris", "France", "paris, france"},
		{"  Paris ", "  FRANCE ", "paris, france"},
		{"New   York", "United  States", "new york, united states"},
		{"Tokyo", "", "tokyo"},
	}
	for _, tc := range tests {
		require.Equal(t, tc.want, CacheKey(tc.city, tc.country))
	}
}

func TestResolveCachesSecondLookup(t *testing.T) {
	backend := &countingGeocoder{points: map[string]Point{
		"paris, france": {Lat: 48.8566, Lon: 2.3522},
	}}
	cache := NewCache(backend, 8)

	first, err := cache.Resolve(context.Background(), "Paris", "France")
	require.NoError(t, err)
	require.Equal(t, Point{Lat: 48.8566, Lon: 2.3522}, first)
	require.Equal(t, 1, backend.calls)

	// Case/whitespace variants hit the same entry without a network call.
	second, err := cache.Resolve(context.Background(), "  PARIS ", "france")
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Equal(t, 1, backend.calls)
}

func TestResolveFailureInsertsNothing(t *testing.T) {
	backend := &countingGeocoder{fail: map[string]bool{"atlantis": true}}
	cache := NewCache(backend, 8)

	_, err := cache.Resolve(context.Background(), "Atlantis", "")
	require.Error(t, err)
	require.Equal(t, 0, cache.Len())

	// The failure was not cached: a retry calls through again.
	_, err = cache.Resolve(context.Background(), "Atlantis", "")
	require.Error(t, err)
	require.Equal(t, 2, backend.calls)
}

func TestCacheEvictsLeastRecentlyUsed(t *testing.T) {
	backend := &countingGeocoder{}
	cache := NewCache(backend, 3)

	for _, city := range []string{"a", "b", "c"} {
		_, err := cache.Resolve(context.Background(), city, "")
		require.NoError(t, err)
	}
	require.Equal(t, 3, cache.Len())

	// Touch "a" so "b" becomes the least recently used entry.
	_, err := cache.Resolve(context.Background(), "a", "")
	require.NoError(t, err)
	require.Equal(t, 3, backend.calls)

	// Inserting "d" evicts exactly "b".
	_, err = cache.Resolve(context.Background(), "d", "")
	require.NoError(t, err)
	require.Equal(t, 3, cache.Len())

	calls := backend.calls
	_, err = cache.Resolve(context.Background(), "a", "")
	require.NoError(t, err)
	_, err = cache.Resolve(context.Background(), "c", "")
	require.NoError(t, err)
	_, err = cache.Resolve(context.Background(), "d", "")
	require.NoError(t, err)
	require.Equal(t, calls, backend.calls, "a, c and d should all be cached")

	_, err = cache.Resolve(context.Background(), "b", "")
	require.NoError(t, err)
	require.Equal(t, calls+1, backend.calls, "b should have been evicted")
}

func TestCacheNeverExceedsCapacity(t *testing.T) {
	backend := &countingGeocoder{}
	cache := NewCache(backend, 4)

	for i := 0; i < 50; i++ {
		_, err := cache.Resolve(context.Background(), fmt.Sprintf("city-%d", i%9), "")
		require.NoError(t, err)
		require.LessOrEqual(t, cache.Len(), 4)
	}
}
