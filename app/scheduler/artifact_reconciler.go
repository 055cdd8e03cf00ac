// Package scheduler
package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/novacoeur/lovepage-api/app/services"
	businessflow "github.com/novacoeur/lovepage-api/business_flow"
	"github.com/novacoeur/lovepage-api/repository"
)

// ArtifactReconciler periodically scans stored pages and regenerates
// missing QR artifacts. Request-time generation is best effort, so a
// crash or disk error can leave an active page without its PNG; this
// loop closes that gap.
type ArtifactReconciler struct {
	repo     repository.LovePageRepository
	qr       services.QRCodeService
	domain   string
	interval time.Duration
	logger   *log.Logger
}

func NewArtifactReconciler(
	repo repository.LovePageRepository,
	qr services.QRCodeService,
	domain string,
	interval time.Duration,
	logger *log.Logger,
) *ArtifactReconciler {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	if logger == nil {
		logger = log.Default()
	}
	return &ArtifactReconciler{
		repo:     repo,
		qr:       qr,
		domain:   domain,
		interval: interval,
		logger:   logger,
	}
}

// Start launches the reconciliation loop and returns a stop function
func (s *ArtifactReconciler) Start(parent context.Context) func() {
	ctx, cancel := context.WithCancel(parent)

	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.runOnce(ctx)

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.runOnce(ctx)
			}
		}
	}()

	return cancel
}

func (s *ArtifactReconciler) runOnce(ctx context.Context) {
	pages, err := s.repo.List(ctx, true)
	if err != nil {
		s.logger.Printf("reconciler: list pages failed: %v", err)
		return
	}

	var restored, failed int
	for _, page := range pages {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if s.qr.Exists(page.ID) {
			continue
		}

		target := page.PageLink
		if target == "" {
			target = businessflow.PageLink(s.domain, page.ID)
		}

		if _, err := s.qr.Generate(ctx, target, page.ID); err != nil {
			failed++
			s.logger.Printf("reconciler: regenerate QR for page %d failed: %v", page.ID, err)
			continue
		}
		restored++
	}

	if restored > 0 || failed > 0 {
		s.logger.Printf("reconciler: backfill pass complete, restored=%d failed=%d", restored, failed)
	}
}
