package geo

import (
	"container/list"
	"context"
	"strings"
	"sync"
)

// DefaultCacheCapacity bounds the geocode cache. Geocoding results for a
// place are treated as static for the process lifetime, so capacity eviction
// is the only invalidation.
const DefaultCacheCapacity = 256

// Cache is a bounded LRU in front of a Geocoder. Repeat resolutions of a
// place hit the cache and refresh its recency instead of going to the network.
type Cache struct {
	geocoder Geocoder
	capacity int

	mu      sync.Mutex
	order   *list.List
	entries map[string]*list.Element
}

type cacheEntry struct {
	key   string
	point Point
}

// NewCache wraps geocoder with an LRU of the given capacity.
func NewCache(geocoder Geocoder, capacity int) *Cache {
	if capacity <= 0 {
		capacity = DefaultCacheCapacity
	}
	return &Cache{
		geocoder: geocoder,
		capacity: capacity,
		order:    list.New(),
		entries:  make(map[string]*list.Element),
	}
}

// CacheKey normalizes a city/country pair into the cache lookup key.
func CacheKey(city, country string) string {
	city = strings.Join(strings.Fields(strings.ToLower(city)), " ")
	country = strings.Join(strings.Fields(strings.ToLower(country)), " ")
	if country == "" {
		return city
	}
	return city + ", " + country
}

// Resolve returns the coordinates for city/country, consulting the cache
// first. A cache miss calls the underlying geocoder once; failures insert
// nothing.
func (c *Cache) Resolve(ctx context.Context, city, country string) (Point, error) {
	key := CacheKey(city, country)

	c.mu.Lock()
	if elem, ok := c.entries[key]; ok {
		c.order.MoveToFront(elem)
		point := elem.Value.(*cacheEntry).point
		c.mu.Unlock()
		return point, nil
	}
	c.mu.Unlock()

	point, err := c.geocoder.Geocode(ctx, key)
	if err != nil {
		return Point{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if elem, ok := c.entries[key]; ok {
		// Lost a race with a concurrent resolution of the same key.
		c.order.MoveToFront(elem)
		return elem.Value.(*cacheEntry).point, nil
	}
	c.entries[key] = c.order.PushFront(&cacheEntry{key: key, point: point})
	if c.order.Len() > c.capacity {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(*cacheEntry).key)
	}
	return point, nil
}

// Len reports the number of cached entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}
