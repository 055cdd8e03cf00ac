package repository

import (
	"sync"

	"github.com/novacoeur/lovepage-api/utils"
)

// PageIDAllocator hands out unique page identifiers. Ids are derived
// from the current clock in milliseconds so that existing records keep
// their historical shape, but the allocator bumps past the last value
// it issued, so two creates inside the same millisecond never collide.
type PageIDAllocator struct {
	mu   sync.Mutex
	last int64
}

// NewPageIDAllocator creates an allocator seeded at zero. Seed is
// called by repositories after loading existing records so restarts
// cannot re-issue an id already present in the store.
func NewPageIDAllocator() *PageIDAllocator {
	return &PageIDAllocator{}
}

// Seed raises the allocator floor to at least id
func (a *PageIDAllocator) Seed(id int64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if id > a.last {
		a.last = id
	}
}

// Next returns a unique, strictly increasing page id
func (a *PageIDAllocator) Next() int64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	id := utils.UTCNowMilli()
	if id <= a.last {
		id = a.last + 1
	}
	a.last = id
	return id
}
