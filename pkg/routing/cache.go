package routing

import "sync"

// StaticPath is one concrete path produced by a route's static-path
// enumeration, with the props handed to the page when rendering it.
type StaticPath struct {
	Params map[string]string
	Props  map[string]any
}

// Cache memoizes static-path enumeration results per route.
//
// It is safe for concurrent reads and for idempotent concurrent writes.
// No per-route lock is held during computation, so two goroutines may
// enumerate the same route and the second write wins.
type Cache struct {
	mu      sync.RWMutex
	entries map[*Route][]StaticPath
}

// NewCache creates an empty route cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[*Route][]StaticPath)}
}

// Get returns the memoized paths for a route.
func (c *Cache) Get(route *Route) ([]StaticPath, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	paths, ok := c.entries[route]
	return paths, ok
}

// Set stores the enumerated paths for a route.
func (c *Cache) Set(route *Route, paths []StaticPath) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[route] = paths
}

// Invalidate drops the entry for one route.
func (c *Cache) Invalidate(route *Route) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, route)
}

// InvalidateComponent drops every entry whose route is handled by the
// given component id. Used when a source file changes under the dev server.
func (c *Cache) InvalidateComponent(componentID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for route := range c.entries {
		if route.Component == componentID {
			delete(c.entries, route)
		}
	}
}

// Clear drops all entries.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[*Route][]StaticPath)
}

// Len returns the number of memoized routes.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
