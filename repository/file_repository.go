package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/novacoeur/lovepage-api/models"
	"github.com/novacoeur/lovepage-api/utils"
)

// FileLovePageRepository persists the whole collection as one JSON
// array file. Every mutation is a read-modify-write of the full file
// under a process-wide mutex, and the file is replaced atomically via a
// temp file and rename, so concurrent writers cannot lose each other's
// updates and readers never observe a half-written file.
type FileLovePageRepository struct {
	path  string
	alloc *PageIDAllocator
	mu    sync.Mutex
}

// NewFileLovePageRepository opens (or initializes) the JSON store at
// path and seeds the id allocator from the existing records.
func NewFileLovePageRepository(path string, alloc *PageIDAllocator) (*FileLovePageRepository, error) {
	if alloc == nil {
		alloc = NewPageIDAllocator()
	}
	r := &FileLovePageRepository{path: path, alloc: alloc}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := r.writeAll(nil); err != nil {
			return nil, err
		}
	}
	for _, p := range r.readAll() {
		alloc.Seed(p.ID)
	}
	return r, nil
}

// readAll loads the full collection. A missing, corrupt or non-array
// payload is logged and treated as an empty collection rather than
// crashing the process.
func (r *FileLovePageRepository) readAll() []*models.LovePage {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Printf("love page store read failed: %v", err)
		}
		return nil
	}
	var pages []*models.LovePage
	if err := json.Unmarshal(data, &pages); err != nil {
		log.Printf("love page store is not a valid JSON array, treating as empty: %v", err)
		return nil
	}
	return pages
}

// writeAll replaces the store contents atomically
func (r *FileLovePageRepository) writeAll(pages []*models.LovePage) error {
	if pages == nil {
		pages = []*models.LovePage{}
	}
	data, err := json.MarshalIndent(pages, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode love pages: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(r.path), ".pages-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp store file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write temp store file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp store file: %w", err)
	}
	if err := os.Rename(tmpName, r.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace store file: %w", err)
	}
	return nil
}

func (r *FileLovePageRepository) List(ctx context.Context, excludeDeleted bool) ([]*models.LovePage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	pages := r.readAll()
	r.mu.Unlock()

	if excludeDeleted {
		kept := make([]*models.LovePage, 0, len(pages))
		for _, p := range pages {
			if !p.IsDeleted() {
				kept = append(kept, p)
			}
		}
		pages = kept
	}
	sort.SliceStable(pages, func(i, j int) bool {
		return pages[i].CreatedAt.After(pages[j].CreatedAt)
	})
	return pages, nil
}

func (r *FileLovePageRepository) ByPageID(ctx context.Context, id int64) (*models.LovePage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.readAll() {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, nil
}

func (r *FileLovePageRepository) ByFilter(ctx context.Context, filter models.LovePageFilter) ([]*models.LovePage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	pages := r.readAll()
	r.mu.Unlock()

	matched := make([]*models.LovePage, 0, len(pages))
	for _, p := range pages {
		if filter.ID != nil && p.ID != *filter.ID {
			continue
		}
		if filter.ClientName != nil && p.ClientName != *filter.ClientName {
			continue
		}
		if filter.Status != nil && p.Status != *filter.Status {
			continue
		}
		if filter.CreatedAfter != nil && p.CreatedAt.Before(*filter.CreatedAfter) {
			continue
		}
		if filter.CreatedBefore != nil && !p.CreatedAt.Before(*filter.CreatedBefore) {
			continue
		}
		matched = append(matched, p)
	}
	return matched, nil
}

func (r *FileLovePageRepository) Create(ctx context.Context, draft *models.LovePageDraft) (*models.LovePage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	now := utils.UTCNow()
	page := &models.LovePage{
		ID:          r.alloc.Next(),
		ClientName:  draft.ClientName,
		ClientEmail: draft.ClientEmail,
		PhoneNumber: draft.PhoneNumber,
		Message:     draft.Message,
		Offer:       draft.Offer,
		Photos:      draft.Photos,
		Videos:      draft.Videos,
		Music:       draft.Music,
		Status:      models.StatusActive,
		PageLink:    draft.PageLink,
		QRCodeURL:   draft.QRCodeURL,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	pages := r.readAll()
	pages = append(pages, page)
	if err := r.writeAll(pages); err != nil {
		return nil, err
	}
	return page, nil
}

func (r *FileLovePageRepository) Update(ctx context.Context, id int64, patch *models.LovePagePatch) (*models.LovePage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	pages := r.readAll()
	for _, p := range pages {
		if p.ID != id {
			continue
		}
		applyPatch(p, patch)
		p.UpdatedAt = utils.UTCNow()
		if err := r.writeAll(pages); err != nil {
			return nil, err
		}
		return p, nil
	}
	return nil, nil
}

func (r *FileLovePageRepository) SoftDelete(ctx context.Context, id int64) (*models.LovePage, error) {
	status := models.StatusDeleted
	return r.Update(ctx, id, &models.LovePagePatch{Status: &status})
}

func (r *FileLovePageRepository) Count(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.readAll())), nil
}

// Ping verifies the store file is still reachable
func (r *FileLovePageRepository) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := os.Stat(r.path)
	return err
}

// applyPatch merges non-nil patch fields over the record, preserving
// id and createdAt
func applyPatch(p *models.LovePage, patch *models.LovePagePatch) {
	if patch == nil {
		return
	}
	if patch.ClientName != nil {
		p.ClientName = *patch.ClientName
	}
	if patch.ClientEmail != nil {
		p.ClientEmail = *patch.ClientEmail
	}
	if patch.PhoneNumber != nil {
		p.PhoneNumber = *patch.PhoneNumber
	}
	if patch.Message != nil {
		p.Message = *patch.Message
	}
	if patch.Offer != nil {
		p.Offer = *patch.Offer
	}
	if patch.Photos != nil {
		p.Photos = patch.Photos
	}
	if patch.Videos != nil {
		p.Videos = patch.Videos
	}
	if patch.Music != nil {
		p.Music = patch.Music
	}
	if patch.Status != nil {
		p.Status = *patch.Status
	}
	if patch.PageLink != nil {
		p.PageLink = *patch.PageLink
	}
	if patch.QRCodeURL != nil {
		p.QRCodeURL = *patch.QRCodeURL
	}
}
