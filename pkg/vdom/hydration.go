package vdom

import (
	"fmt"
	"sync"
)

// IslandIDs generates unique ids for hydrated islands within one document.
type IslandIDs struct {
	counter uint32
	mu      sync.Mutex
}

// NewIslandIDs creates a new IslandIDs generator.
func NewIslandIDs() *IslandIDs {
	return &IslandIDs{}
}

// Next returns the next island id (e.g., "i1", "i2", ...).
func (g *IslandIDs) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.counter++
	return fmt.Sprintf("i%d", g.counter)
}

// Reset resets the counter to 0.
func (g *IslandIDs) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.counter = 0
}

// Current returns the current counter value without incrementing.
func (g *IslandIDs) Current() uint32 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.counter
}
