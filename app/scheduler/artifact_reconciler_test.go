package scheduler

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/novacoeur/lovepage-api/app/services"
	businessflow "github.com/novacoeur/lovepage-api/business_flow"
	"github.com/novacoeur/lovepage-api/models"
	"github.com/novacoeur/lovepage-api/repository"
)

func newReconcilerFixture(t *testing.T) (*ArtifactReconciler, repository.LovePageRepository, services.QRCodeService) {
	t.Helper()
	dir := t.TempDir()
	repo, err := repository.NewFileLovePageRepository(
		filepath.Join(dir, "pages.json"),
		repository.NewPageIDAllocator(),
	)
	require.NoError(t, err)
	qr := services.NewQRCodeService(filepath.Join(dir, "qrcodes"))
	rec := NewArtifactReconciler(repo, qr, "https://novacoeur.fr", time.Minute, nil)
	return rec, repo, qr
}

func createPage(t *testing.T, repo repository.LovePageRepository, withLink bool) *models.LovePage {
	t.Helper()
	page, err := repo.Create(context.Background(), &models.LovePageDraft{
		ClientName: "Amelie",
		Message:    "Je t'aime",
		Offer:      models.OfferTierBasic,
	})
	require.NoError(t, err)

	if withLink {
		link := businessflow.PageLink("https://novacoeur.fr", page.ID)
		qrURL := businessflow.QRCodeDownloadPath(page.ID)
		page, err = repo.Update(context.Background(), page.ID, &models.LovePagePatch{
			PageLink:  &link,
			QRCodeURL: &qrURL,
		})
		require.NoError(t, err)
	}
	return page
}

func TestArtifactReconciler(t *testing.T) {
	ctx := context.Background()

	t.Run("BackfillsMissingArtifacts", func(t *testing.T) {
		rec, repo, qr := newReconcilerFixture(t)

		page := createPage(t, repo, true)
		require.False(t, qr.Exists(page.ID))

		rec.runOnce(ctx)

		assert.True(t, qr.Exists(page.ID))
	})

	t.Run("DerivesLinkWhenRecordHasNone", func(t *testing.T) {
		rec, repo, qr := newReconcilerFixture(t)

		page := createPage(t, repo, false)

		rec.runOnce(ctx)

		assert.True(t, qr.Exists(page.ID))
	})

	t.Run("SkipsDeletedPages", func(t *testing.T) {
		rec, repo, qr := newReconcilerFixture(t)

		page := createPage(t, repo, true)
		_, err := repo.SoftDelete(ctx, page.ID)
		require.NoError(t, err)

		rec.runOnce(ctx)

		assert.False(t, qr.Exists(page.ID))
	})

	t.Run("LeavesExistingArtifactsAlone", func(t *testing.T) {
		rec, repo, qr := newReconcilerFixture(t)

		page := createPage(t, repo, true)
		_, err := qr.Generate(ctx, page.PageLink, page.ID)
		require.NoError(t, err)

		before, err := qrArtifactModTime(qr, page.ID)
		require.NoError(t, err)

		rec.runOnce(ctx)

		after, err := qrArtifactModTime(qr, page.ID)
		require.NoError(t, err)
		assert.Equal(t, before, after)
	})

	t.Run("StartStopsOnCancel", func(t *testing.T) {
		rec, repo, qr := newReconcilerFixture(t)
		page := createPage(t, repo, true)

		stop := rec.Start(context.Background())
		defer stop()

		// The initial pass runs immediately
		assert.Eventually(t, func() bool {
			return qr.Exists(page.ID)
		}, 2*time.Second, 10*time.Millisecond)
	})
}

func qrArtifactModTime(qr services.QRCodeService, pageID int64) (time.Time, error) {
	info, err := os.Stat(qr.ArtifactPath(pageID))
	if err != nil {
		return time.Time{}, err
	}
	return info.ModTime(), nil
}
