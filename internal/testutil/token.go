package testutil

import (
	"fmt"
	"sync"
)

// FixedTokenGenerator returns "<prefix>-1", "<prefix>-2", ... so load tokens
// in logs and LoadOutcome values are deterministic.
//
// Thread-safety: safe for concurrent use via internal mutex.
type FixedTokenGenerator struct {
	mu     sync.Mutex
	prefix string
	n      int
}

// NewFixedTokenGenerator creates a generator. An empty prefix defaults to
// "test-load".
func NewFixedTokenGenerator(prefix string) *FixedTokenGenerator {
	if prefix == "" {
		prefix = "test-load"
	}
	return &FixedTokenGenerator{prefix: prefix}
}

// Generate implements catalog.TokenGenerator.
func (g *FixedTokenGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("%s-%d", g.prefix, g.n)
}
