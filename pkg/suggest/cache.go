package suggest

import (
	"sync"

	"github.com/charmbracelet/log"
)

// HotCache keeps the raw results of recently typed queries. Entries are
// evicted least recently used first.
type HotCache struct {
	results     map[string][]string
	accessTime  map[string]int64
	accessCount int64
	hits        int64
	misses      int64
	maxEntries  int
	mu          sync.Mutex
}

// NewHotCache returns a cache holding up to maxEntries queries, or nil when
// maxEntries is not positive. A nil cache misses every lookup.
func NewHotCache(maxEntries int) *HotCache {
	if maxEntries <= 0 {
		return nil
	}
	return &HotCache{
		results:    make(map[string][]string, maxEntries),
		accessTime: make(map[string]int64, maxEntries),
		maxEntries: maxEntries,
	}
}

// Get returns the cached results for query. The slice is shared and must not be modified.
func (hc *HotCache) Get(query string) ([]string, bool) {
	if hc == nil {
		return nil, false
	}
	hc.mu.Lock()
	defer hc.mu.Unlock()

	words, ok := hc.results[query]
	if !ok {
		hc.misses++
		return nil, false
	}
	hc.hits++
	hc.markAccessed(query)
	return words, true
}

// Put stores the results for query, evicting the oldest entry when full.
func (hc *HotCache) Put(query string, words []string) {
	if hc == nil {
		return
	}
	hc.mu.Lock()
	defer hc.mu.Unlock()

	if _, ok := hc.results[query]; !ok && len(hc.results) >= hc.maxEntries {
		hc.evictLRU()
	}
	hc.results[query] = words
	hc.markAccessed(query)
}

// Len returns the number of cached queries.
func (hc *HotCache) Len() int {
	if hc == nil {
		return 0
	}
	hc.mu.Lock()
	defer hc.mu.Unlock()
	return len(hc.results)
}

func (hc *HotCache) Stats() map[string]int {
	if hc == nil {
		return map[string]int{"cacheEntries": 0, "cacheMaxEntries": 0, "cacheHits": 0, "cacheMisses": 0}
	}
	hc.mu.Lock()
	defer hc.mu.Unlock()

	return map[string]int{
		"cacheEntries":    len(hc.results),
		"cacheMaxEntries": hc.maxEntries,
		"cacheHits":       int(hc.hits),
		"cacheMisses":     int(hc.misses),
	}
}

func (hc *HotCache) markAccessed(query string) {
	hc.accessCount++
	hc.accessTime[query] = hc.accessCount
}

func (hc *HotCache) evictLRU() {
	var oldest string
	var oldestTime int64 = 1<<63 - 1

	for query, t := range hc.accessTime {
		if t < oldestTime {
			oldestTime = t
			oldest = query
		}
	}

	if oldestTime != 1<<63-1 {
		delete(hc.results, oldest)
		delete(hc.accessTime, oldest)
		log.Debugf("Evicted query '%s' from hot cache", oldest)
	}
}
