// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package openalex

import (
	"container/list"
	"sync"

	"github.com/pdiddy/bibmatch/pkg/types"
)

// queryCache is a bounded LRU cache of search results keyed by query
// string. It is shared by all workers, so a single mutex guards every
// operation; gets and puts are O(1) and short-lived.
type queryCache struct {
	mu    sync.Mutex
	max   int
	order *list.List
	items map[string]*list.Element
}

type cacheEntry struct {
	key        string
	candidates []types.Candidate
}

func newQueryCache(max int) *queryCache {
	if max <= 0 {
		max = 1000
	}
	return &queryCache{
		max:   max,
		order: list.New(),
		items: make(map[string]*list.Element),
	}
}

// get returns the cached candidates for key and marks the entry as
// most recently used.
func (c *queryCache) get(key string) ([]types.Candidate, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	el, ok := c.items[key]
	if !ok {
		return nil, false
	}
	c.order.MoveToFront(el)
	return el.Value.(*cacheEntry).candidates, true
}

// put stores candidates under key, evicting the least recently used
// entry when the cache is full.
func (c *queryCache) put(key string, candidates []types.Candidate) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.items[key]; ok {
		el.Value.(*cacheEntry).candidates = candidates
		c.order.MoveToFront(el)
		return
	}
	if c.order.Len() >= c.max {
		oldest := c.order.Back()
		if oldest != nil {
			c.order.Remove(oldest)
			delete(c.items, oldest.Value.(*cacheEntry).key)
		}
	}
	c.items[key] = c.order.PushFront(&cacheEntry{key: key, candidates: candidates})
}

func (c *queryCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}
