package repository

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/novacoeur/lovepage-api/models"
)

func newTestFileRepo(t *testing.T) *FileLovePageRepository {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data", "pages.json")
	repo, err := NewFileLovePageRepository(path, NewPageIDAllocator())
	require.NoError(t, err)
	return repo
}

func testDraft(name string) *models.LovePageDraft {
	return &models.LovePageDraft{
		ClientName:  name,
		ClientEmail: "client@example.com",
		PhoneNumber: "+33612345678",
		Message:     "Je t'aime",
		Offer:       models.OfferTierPremium,
	}
}

func TestFileLovePageRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("InitializesEmptyStore", func(t *testing.T) {
		repo := newTestFileRepo(t)

		pages, err := repo.List(ctx, false)
		require.NoError(t, err)
		assert.Empty(t, pages)

		count, err := repo.Count(ctx)
		require.NoError(t, err)
		assert.Zero(t, count)

		require.NoError(t, repo.Ping(ctx))
	})

	t.Run("CreateAssignsIDStatusAndTimestamps", func(t *testing.T) {
		repo := newTestFileRepo(t)

		page, err := repo.Create(ctx, testDraft("Amelie"))
		require.NoError(t, err)
		require.NotNil(t, page)
		assert.Positive(t, page.ID)
		assert.Equal(t, models.StatusActive, page.Status)
		assert.Equal(t, "Amelie", page.ClientName)
		assert.False(t, page.CreatedAt.IsZero())
		assert.Equal(t, page.CreatedAt, page.UpdatedAt)
	})

	t.Run("ByPageIDReturnsNilNilWhenMissing", func(t *testing.T) {
		repo := newTestFileRepo(t)

		page, err := repo.ByPageID(ctx, 424242)
		require.NoError(t, err)
		assert.Nil(t, page)
	})

	t.Run("PersistsAcrossReopen", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "pages.json")
		repo, err := NewFileLovePageRepository(path, NewPageIDAllocator())
		require.NoError(t, err)

		created, err := repo.Create(ctx, testDraft("Bruno"))
		require.NoError(t, err)

		reopened, err := NewFileLovePageRepository(path, NewPageIDAllocator())
		require.NoError(t, err)

		found, err := reopened.ByPageID(ctx, created.ID)
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, "Bruno", found.ClientName)
	})

	t.Run("ReopenSeedsAllocatorPastStoredIDs", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "pages.json")
		repo, err := NewFileLovePageRepository(path, NewPageIDAllocator())
		require.NoError(t, err)

		created, err := repo.Create(ctx, testDraft("Chloe"))
		require.NoError(t, err)

		alloc := NewPageIDAllocator()
		_, err = NewFileLovePageRepository(path, alloc)
		require.NoError(t, err)

		assert.Greater(t, alloc.Next(), created.ID)
	})

	t.Run("ListSortsNewestFirstAndExcludesDeleted", func(t *testing.T) {
		repo := newTestFileRepo(t)

		first, err := repo.Create(ctx, testDraft("First"))
		require.NoError(t, err)
		second, err := repo.Create(ctx, testDraft("Second"))
		require.NoError(t, err)

		_, err = repo.SoftDelete(ctx, first.ID)
		require.NoError(t, err)

		visible, err := repo.List(ctx, true)
		require.NoError(t, err)
		require.Len(t, visible, 1)
		assert.Equal(t, second.ID, visible[0].ID)

		all, err := repo.List(ctx, false)
		require.NoError(t, err)
		assert.Len(t, all, 2)
	})

	t.Run("UpdateMergesPatchAndPreservesIdentity", func(t *testing.T) {
		repo := newTestFileRepo(t)

		page, err := repo.Create(ctx, testDraft("Delphine"))
		require.NoError(t, err)

		newMessage := "Pour toujours"
		newStatus := models.StatusArchived
		updated, err := repo.Update(ctx, page.ID, &models.LovePagePatch{
			Message: &newMessage,
			Status:  &newStatus,
		})
		require.NoError(t, err)
		require.NotNil(t, updated)

		assert.Equal(t, page.ID, updated.ID)
		assert.Equal(t, page.CreatedAt, updated.CreatedAt)
		assert.Equal(t, "Pour toujours", updated.Message)
		assert.Equal(t, models.StatusArchived, updated.Status)
		assert.Equal(t, "Delphine", updated.ClientName)
		assert.False(t, updated.UpdatedAt.Before(page.CreatedAt))
	})

	t.Run("UpdateUnknownIDReturnsNilNil", func(t *testing.T) {
		repo := newTestFileRepo(t)

		message := "lost"
		updated, err := repo.Update(ctx, 987654, &models.LovePagePatch{Message: &message})
		require.NoError(t, err)
		assert.Nil(t, updated)
	})

	t.Run("SoftDeleteKeepsRecordOnDisk", func(t *testing.T) {
		repo := newTestFileRepo(t)

		page, err := repo.Create(ctx, testDraft("Emile"))
		require.NoError(t, err)

		deleted, err := repo.SoftDelete(ctx, page.ID)
		require.NoError(t, err)
		require.NotNil(t, deleted)
		assert.Equal(t, models.StatusDeleted, deleted.Status)

		found, err := repo.ByPageID(ctx, page.ID)
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.True(t, found.IsDeleted())

		count, err := repo.Count(ctx)
		require.NoError(t, err)
		assert.EqualValues(t, 1, count)
	})

	t.Run("ByFilterMatchesStatusAndName", func(t *testing.T) {
		repo := newTestFileRepo(t)

		page, err := repo.Create(ctx, testDraft("Fleur"))
		require.NoError(t, err)
		_, err = repo.Create(ctx, testDraft("Gaspard"))
		require.NoError(t, err)

		name := "Fleur"
		matched, err := repo.ByFilter(ctx, models.LovePageFilter{ClientName: &name})
		require.NoError(t, err)
		require.Len(t, matched, 1)
		assert.Equal(t, page.ID, matched[0].ID)

		status := models.StatusActive
		matched, err = repo.ByFilter(ctx, models.LovePageFilter{Status: &status})
		require.NoError(t, err)
		assert.Len(t, matched, 2)
	})

	t.Run("CorruptStoreIsTreatedAsEmpty", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "pages.json")
		require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

		repo, err := NewFileLovePageRepository(path, NewPageIDAllocator())
		require.NoError(t, err)

		pages, err := repo.List(ctx, false)
		require.NoError(t, err)
		assert.Empty(t, pages)

		// A write through the normal path restores a valid store
		_, err = repo.Create(ctx, testDraft("Hugo"))
		require.NoError(t, err)

		pages, err = repo.List(ctx, false)
		require.NoError(t, err)
		assert.Len(t, pages, 1)
	})

	t.Run("ConcurrentCreatesLoseNothing", func(t *testing.T) {
		repo := newTestFileRepo(t)

		const writers = 10
		var wg sync.WaitGroup
		for i := 0; i < writers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := repo.Create(ctx, testDraft("Concurrent"))
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		count, err := repo.Count(ctx)
		require.NoError(t, err)
		assert.EqualValues(t, writers, count)
	})

	t.Run("CanceledContextIsRejected", func(t *testing.T) {
		repo := newTestFileRepo(t)

		canceled, cancel := context.WithCancel(ctx)
		cancel()

		_, err := repo.List(canceled, false)
		assert.ErrorIs(t, err, context.Canceled)

		_, err = repo.Create(canceled, testDraft("Never"))
		assert.ErrorIs(t, err, context.Canceled)
	})
}
