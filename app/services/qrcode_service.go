package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	qrcode "github.com/skip2/go-qrcode"
)

// QR encoding parameters, kept in sync with what the public love page
// expects to scan: highest error correction, 300px square image.
const (
	qrImageSize = 300
)

var qrArtifactsGenerated = promauto.NewCounter(
	prometheus.CounterOpts{
		Name: "qr_artifacts_generated_total",
		Help: "Total number of QR code artifacts written to disk",
	},
)

// QRCodeService renders the QR artifact for a love page. Artifacts are
// addressed solely by page id (<id>.png inside the artifacts
// directory), so the expected path can always be re-derived without
// consulting storage.
type QRCodeService interface {
	Generate(ctx context.Context, targetURL string, pageID int64) (string, error)
	ArtifactPath(pageID int64) string
	Exists(pageID int64) bool
	Remove(pageID int64) error
}

// QRCodeServiceImpl implements QRCodeService on top of a local directory
type QRCodeServiceImpl struct {
	dir     string
	mkdir   sync.Once
	mkdirEr error
}

// NewQRCodeService creates a generator writing into dir. The directory
// itself is created lazily on first use.
func NewQRCodeService(dir string) *QRCodeServiceImpl {
	return &QRCodeServiceImpl{dir: dir}
}

// ArtifactPath returns the deterministic artifact location for a page id
func (s *QRCodeServiceImpl) ArtifactPath(pageID int64) string {
	return filepath.Join(s.dir, fmt.Sprintf("%d.png", pageID))
}

// Exists reports whether the artifact has been written for this id
func (s *QRCodeServiceImpl) Exists(pageID int64) bool {
	info, err := os.Stat(s.ArtifactPath(pageID))
	return err == nil && !info.IsDir()
}

// Remove deletes the artifact; a missing file is not an error
func (s *QRCodeServiceImpl) Remove(pageID int64) error {
	err := os.Remove(s.ArtifactPath(pageID))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Generate encodes targetURL as a PNG and writes it to the artifact
// path for pageID. Encoding runs in its own goroutine so a caller with
// a deadline is not held hostage by a hung encoder; the write itself is
// still completed (or fails) in the background.
func (s *QRCodeServiceImpl) Generate(ctx context.Context, targetURL string, pageID int64) (string, error) {
	s.mkdir.Do(func() {
		s.mkdirEr = os.MkdirAll(s.dir, 0o755)
	})
	if s.mkdirEr != nil {
		return "", fmt.Errorf("failed to create artifacts directory: %w", s.mkdirEr)
	}

	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("QR generation for page %d aborted: %w", pageID, err)
	}

	path := s.ArtifactPath(pageID)

	done := make(chan error, 1)
	go func() {
		done <- qrcode.WriteFile(targetURL, qrcode.Highest, qrImageSize, path)
	}()

	select {
	case err := <-done:
		if err != nil {
			return "", fmt.Errorf("failed to write QR artifact for page %d: %w", pageID, err)
		}
		qrArtifactsGenerated.Inc()
		return path, nil
	case <-ctx.Done():
		return "", fmt.Errorf("QR generation for page %d aborted: %w", pageID, ctx.Err())
	}
}
