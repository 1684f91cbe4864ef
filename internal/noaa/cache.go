package noaa

import (
	"context"
	"net/url"
	"sync"
)

// StationLister is the station-metadata surface of the client.
type StationLister interface {
	Stations(ctx context.Context, params url.Values) ([]Station, error)
}

// CachedStations wraps a StationLister with an in-memory LRU keyed by the
// query parameters. Station metadata changes rarely and both analyses and
// repeated runs ask for the same listings, so hits skip a paginated fetch.
type CachedStations struct {
	inner StationLister
	cache *lruCache
}

// NewCachedStations creates a cache decorator around a station lister.
func NewCachedStations(inner StationLister, maxEntries int) *CachedStations {
	return &CachedStations{
		inner: inner,
		cache: newLRUCache(maxEntries),
	}
}

func (c *CachedStations) Stations(ctx context.Context, params url.Values) ([]Station, error) {
	key := params.Encode()
	if stations, ok := c.cache.get(key); ok {
		return stations, nil
	}
	stations, err := c.inner.Stations(ctx, params)
	if err != nil {
		return nil, err
	}
	if len(stations) > 0 {
		c.cache.put(key, stations)
	}
	return stations, nil
}

// lruCache is a small thread-safe LRU for station listings.
type lruCache struct {
	maxEntries int
	mu         sync.Mutex
	entries    map[string]*entry
	head       *entry // most recently used
	tail       *entry // least recently used
}

type entry struct {
	key   string
	value []Station
	prev  *entry
	next  *entry
}

func newLRUCache(maxEntries int) *lruCache {
	return &lruCache{
		maxEntries: maxEntries,
		entries:    make(map[string]*entry),
	}
}

func (c *lruCache) get(key string) ([]Station, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	c.moveToFront(e)
	return e.value, true
}

func (c *lruCache) put(key string, value []Station) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.value = value
		c.moveToFront(e)
		return
	}

	e := &entry{key: key, value: value}
	c.entries[key] = e
	c.addToFront(e)

	if len(c.entries) > c.maxEntries {
		c.evictTail()
	}
}

func (c *lruCache) moveToFront(e *entry) {
	if e == c.head {
		return
	}
	c.remove(e)
	c.addToFront(e)
}

func (c *lruCache) addToFront(e *entry) {
	e.next = c.head
	e.prev = nil
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *lruCache) remove(e *entry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
}

func (c *lruCache) evictTail() {
	if c.tail == nil {
		return
	}
	delete(c.entries, c.tail.key)
	c.remove(c.tail)
}
