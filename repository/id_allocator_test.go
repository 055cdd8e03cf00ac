package repository

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPageIDAllocator(t *testing.T) {
	t.Run("MonotonicallyIncreasing", func(t *testing.T) {
		alloc := NewPageIDAllocator()

		prev := alloc.Next()
		for i := 0; i < 100; i++ {
			id := alloc.Next()
			assert.Greater(t, id, prev)
			prev = id
		}
	})

	t.Run("SeedBumpsPastExistingIDs", func(t *testing.T) {
		alloc := NewPageIDAllocator()
		alloc.Seed(9_999_999_999_999)

		assert.Greater(t, alloc.Next(), int64(9_999_999_999_999))
	})

	t.Run("SeedWithLowerValueIsIgnored", func(t *testing.T) {
		alloc := NewPageIDAllocator()
		first := alloc.Next()
		alloc.Seed(1)

		assert.Greater(t, alloc.Next(), first)
	})

	t.Run("UniqueUnderConcurrency", func(t *testing.T) {
		alloc := NewPageIDAllocator()

		const workers = 8
		const perWorker = 200

		var mu sync.Mutex
		seen := make(map[int64]bool, workers*perWorker)

		var wg sync.WaitGroup
		for w := 0; w < workers; w++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := 0; i < perWorker; i++ {
					id := alloc.Next()
					mu.Lock()
					assert.False(t, seen[id], "duplicate id %d", id)
					seen[id] = true
					mu.Unlock()
				}
			}()
		}
		wg.Wait()

		assert.Len(t, seen, workers*perWorker)
	})
}
