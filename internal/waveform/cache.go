package waveform

import (
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
)

// memoryCache holds fingerprint-keyed traces for the lifetime of a run
//. It wraps a patrickmn/go-cache store, plus a separate set of
// fingerprints marked unfetchable.
type memoryCache struct {
	traces *cache.Cache

	mu       sync.RWMutex
	excluded map[string]struct{}
}

// newMemoryCache builds a memory cache with the given expiration. A ttl of
// zero disables expiration entirely (cache.NoExpiration), which is the
// normal mode for a single relocation run.
func newMemoryCache(ttl time.Duration) *memoryCache {
	cleanupInterval := ttl * 2
	if ttl <= 0 {
		cleanupInterval = cache.NoExpiration
	}
	return &memoryCache{
		traces:   cache.New(ttl, cleanupInterval),
		excluded: make(map[string]struct{}),
	}
}

func (m *memoryCache) get(fingerprint string) (*Trace, bool) {
	v, found := m.traces.Get(fingerprint)
	if !found {
		return nil, false
	}
	return v.(*Trace), true
}

func (m *memoryCache) set(fingerprint string, t *Trace) {
	m.traces.Set(fingerprint, t, cache.DefaultExpiration)
}

// isExcluded reports whether fingerprint was previously marked unfetchable.
// Once excluded a fingerprint stays excluded for the process lifetime,
// independent of the traces cache's expiration policy.
func (m *memoryCache) isExcluded(fingerprint string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, excluded := m.excluded[fingerprint]
	return excluded
}

func (m *memoryCache) exclude(fingerprint string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.excluded[fingerprint] = struct{}{}
}

func (m *memoryCache) itemCount() int {
	return m.traces.ItemCount()
}

func (m *memoryCache) flush() {
	m.traces.Flush()
}
