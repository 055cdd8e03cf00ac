// Package repository provides data access layer implementations and interfaces for love page storage
package repository

import (
	"context"

	"github.com/novacoeur/lovepage-api/models"
)

// LovePageRepository is the storage contract shared by the file-backed
// and MongoDB-backed implementations. Lookups return (nil, nil) when no
// record matches; callers decide whether that is an error.
//
// Both implementations conform to the same semantics: soft delete keeps
// the record in the store but excludes it from default listings, and
// Create assigns the id, timestamps and the active status.
type LovePageRepository interface {
	// List returns pages ordered by createdAt descending. When
	// excludeDeleted is true, soft-deleted records are filtered out.
	List(ctx context.Context, excludeDeleted bool) ([]*models.LovePage, error)

	// ByPageID returns the page with the given id regardless of status.
	ByPageID(ctx context.Context, id int64) (*models.LovePage, error)

	// ByFilter returns pages matching the filter criteria.
	ByFilter(ctx context.Context, filter models.LovePageFilter) ([]*models.LovePage, error)

	// Create persists a new record built from the draft and returns it
	// with id, status and timestamps assigned.
	Create(ctx context.Context, draft *models.LovePageDraft) (*models.LovePage, error)

	// Update merges non-nil patch fields over the stored record,
	// refreshes updatedAt and returns the new state.
	Update(ctx context.Context, id int64, patch *models.LovePagePatch) (*models.LovePage, error)

	// SoftDelete marks the record deleted and returns the new state.
	SoftDelete(ctx context.Context, id int64) (*models.LovePage, error)

	// Count returns the number of records physically present in the store.
	Count(ctx context.Context) (int64, error)

	// Ping verifies storage connectivity for the health probe.
	Ping(ctx context.Context) error
}
