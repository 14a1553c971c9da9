package testutil

import (
	"fmt"
	"sync"
)

// FixedIDGenerator generates predictable run IDs for golden comparisons.
//
// IDs are "<prefix>-0001", "<prefix>-0002", and so on. The same sequence of
// calls always yields the same IDs, so persisted runs are byte-identical
// between test executions.
//
// Thread-safety: Generate is safe for concurrent use.
type FixedIDGenerator struct {
	mu     sync.Mutex
	prefix string
	n      int
}

// NewFixedIDGenerator creates a generator. An empty prefix becomes "run".
func NewFixedIDGenerator(prefix string) *FixedIDGenerator {
	if prefix == "" {
		prefix = "run"
	}
	return &FixedIDGenerator{prefix: prefix}
}

// Generate returns the next ID. Implements store.RunIDGenerator.
func (g *FixedIDGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("%s-%04d", g.prefix, g.n)
}
