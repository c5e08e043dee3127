package build3d

import (
	"fmt"
	"sync"
)

// memBudget caps the aggregate size of the large transient allocations
// of a job: distance matrices, projected clouds and texture rasters.
// A limit of zero or less disables accounting.
type memBudget struct {
	mu    sync.Mutex
	limit int64
	used  int64
}

func newMemBudget(limit int64) *memBudget {
	return &memBudget{limit: limit}
}

// grow reserves n bytes and fails with ErrResourceExhausted when the
// reservation would pass the limit.
func (b *memBudget) grow(n int64) error {
	if b == nil || b.limit <= 0 {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.used+n > b.limit {
		return fmt.Errorf("%d+%d bytes over %d byte limit: %w", b.used, n, b.limit, ErrResourceExhausted)
	}
	b.used += n
	return nil
}

// release returns n previously reserved bytes to the budget.
func (b *memBudget) release(n int64) {
	if b == nil || b.limit <= 0 {
		return
	}
	b.mu.Lock()
	b.used -= n
	if b.used < 0 {
		b.used = 0
	}
	b.mu.Unlock()
}
