package repository

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/novacoeur/lovepage-api/models"
)

// newTestMongoRepo connects to the instance named by MONGO_TEST_URI and
// works in a per-run database. Skipped when the variable is unset.
func newTestMongoRepo(t *testing.T) *MongoLovePageRepository {
	t.Helper()

	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" {
		t.Skip("MONGO_TEST_URI not set, skipping mongo repository tests")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	require.NoError(t, err)

	database := fmt.Sprintf("lovepage_test_%d", time.Now().UnixNano())
	repo := NewMongoLovePageRepository(client, database, NewPageIDAllocator())
	require.NoError(t, repo.EnsureIndexes(ctx))

	t.Cleanup(func() {
		cleanupCtx, c := context.WithTimeout(context.Background(), 10*time.Second)
		defer c()
		_ = client.Database(database).Drop(cleanupCtx)
		_ = client.Disconnect(cleanupCtx)
	})
	return repo
}

func TestMongoLovePageRepository(t *testing.T) {
	repo := newTestMongoRepo(t)
	ctx := context.Background()

	t.Run("CreateAndFetch", func(t *testing.T) {
		page, err := repo.Create(ctx, testDraft("Amelie"))
		require.NoError(t, err)
		assert.Positive(t, page.ID)
		assert.Equal(t, models.StatusActive, page.Status)

		found, err := repo.ByPageID(ctx, page.ID)
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, "Amelie", found.ClientName)
	})

	t.Run("ByPageIDReturnsNilNilWhenMissing", func(t *testing.T) {
		found, err := repo.ByPageID(ctx, 424242)
		require.NoError(t, err)
		assert.Nil(t, found)
	})

	t.Run("UpdateReturnsDocumentAfterPatch", func(t *testing.T) {
		page, err := repo.Create(ctx, testDraft("Bruno"))
		require.NoError(t, err)

		message := "Pour toujours"
		updated, err := repo.Update(ctx, page.ID, &models.LovePagePatch{Message: &message})
		require.NoError(t, err)
		require.NotNil(t, updated)
		assert.Equal(t, "Pour toujours", updated.Message)
		assert.Equal(t, page.ID, updated.ID)
	})

	t.Run("SoftDeleteHidesFromDefaultListing", func(t *testing.T) {
		page, err := repo.Create(ctx, testDraft("Chloe"))
		require.NoError(t, err)

		deleted, err := repo.SoftDelete(ctx, page.ID)
		require.NoError(t, err)
		require.NotNil(t, deleted)
		assert.Equal(t, models.StatusDeleted, deleted.Status)

		visible, err := repo.List(ctx, true)
		require.NoError(t, err)
		for _, p := range visible {
			assert.NotEqual(t, page.ID, p.ID)
		}

		// Still addressable directly
		found, err := repo.ByPageID(ctx, page.ID)
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.True(t, found.IsDeleted())
	})

	t.Run("PingSucceeds", func(t *testing.T) {
		assert.NoError(t, repo.Ping(ctx))
	})
}
