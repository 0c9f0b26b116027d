package catalog

import (
	"sync"
	"time"
)

type cacheEntry struct {
	workspace *Workspace
	mtime     time.Time
}

// Cache holds parsed catalog files keyed by path, each valid only while the
// file's modification time is unchanged. A Cache belongs to one Resolver.
type Cache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string]cacheEntry)}
}

// GetOrRefresh returns the cached workspace for key if it was stored with
// mtime. Otherwise it calls load and, on success, replaces the entry.
// A failed load leaves the previous entry in place.
func (c *Cache) GetOrRefresh(key string, mtime time.Time, load func() (*Workspace, error)) (*Workspace, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok && e.mtime.Equal(mtime) {
		return e.workspace, nil
	}

	w, err := load()
	if err != nil {
		return nil, err
	}
	c.entries[key] = cacheEntry{workspace: w, mtime: mtime}
	return w, nil
}

// Invalidate drops every cached entry.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]cacheEntry)
}

// Len returns the number of cached files.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
