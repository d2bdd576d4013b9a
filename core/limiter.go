package core

import (
	"fmt"
	"sync"
)

// Budget enforces a maximum number of transitions (or internal steps) per run.
type Budget struct {
	max   int
	count int
	mu    sync.Mutex
}

// NewBudget creates a budget allowing max transitions.
// If max <= 0, the budget is unlimited.
func NewBudget(max int) *Budget {
	return &Budget{max: max}
}

// Consume takes one unit from the budget and returns an error wrapping
// ErrBudgetExhausted when no unit is left. A failed Consume does not count.
func (b *Budget) Consume() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.max > 0 && b.count >= b.max {
		return fmt.Errorf("%w: limit %d", ErrBudgetExhausted, b.max)
	}
	b.count++

	return nil
}

// Used returns the number of units consumed so far.
func (b *Budget) Used() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.count
}

// Max returns the configured limit (<= 0 means unlimited).
func (b *Budget) Max() int { return b.max }

// Remaining returns how many units are left before hitting the limit.
func (b *Budget) Remaining() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.max <= 0 {
		return -1 // unlimited
	}

	return b.max - b.count
}

// Exhausted reports whether no unit is left.
func (b *Budget) Exhausted() bool {
	return b.Remaining() == 0
}
