package expr

import "sync"

// DefaultCacheSize is the number of programs a Cache keeps before it starts
// over.
const DefaultCacheSize = 4096

type cacheEntry struct {
	prog *Program
	err  error
}

// Cache memoizes Compile by source string. Syntax errors are cached too, so
// a broken expression is parsed (and reported by callers) once.
// Cache is safe for concurrent use.
type Cache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
	max     int
	hits    uint64
	misses  uint64
}

// NewCache creates a cache holding at most max programs (DefaultCacheSize
// when max <= 0).
func NewCache(max int) *Cache {
	if max <= 0 {
		max = DefaultCacheSize
	}
	return &Cache{entries: make(map[string]cacheEntry), max: max}
}

// Compile returns the cached program for source, compiling it on a miss.
// The second result reports whether the entry was already cached.
func (c *Cache) Compile(source string) (*Program, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[source]; ok {
		c.hits++
		return e.prog, true, e.err
	}
	c.misses++

	prog, err := Compile(source)
	if len(c.entries) >= c.max {
		c.entries = make(map[string]cacheEntry)
	}
	c.entries[source] = cacheEntry{prog: prog, err: err}
	return prog, false, err
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Stats returns hit and miss counts.
func (c *Cache) Stats() (hits, misses uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}
