// Package ratelimit bounds how many language-model requests one run may
// issue. When the budget runs out the fail-closed paths in the classifier
// and summarizer take over, so exhaustion degrades results instead of
// failing the run.
package ratelimit

import (
	"log"
	"sync"
)

type Budget struct {
	mu     sync.Mutex
	used   int
	max    int
	warned bool
}

// NewBudget creates a request budget; max <= 0 means unlimited.
func NewBudget(max int) *Budget {
	return &Budget{max: max}
}

// Allow consumes one request slot, logging the first refusal so a starved
// run is visible in the diagnostics.
func (b *Budget) Allow(purpose string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.max > 0 && b.used >= b.max {
		if !b.warned {
			log.Printf("LLM request budget exhausted (%d), skipping %s and later calls", b.max, purpose)
			b.warned = true
		}
		return false
	}
	b.used++
	return true
}

// Used reports how many requests were granted.
func (b *Budget) Used() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.used
}
