// Package businessflow contains use cases for love page management
package businessflow

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/novacoeur/lovepage-api/app/dto"
	"github.com/novacoeur/lovepage-api/app/services"
	"github.com/novacoeur/lovepage-api/models"
	"github.com/novacoeur/lovepage-api/repository"
)

// LovePageFlow defines the orchestration surface for love page records:
// validation, storage, link derivation and QR artifact generation
// behind one contract, independent of which storage backend is wired.
type LovePageFlow interface {
	ListPages(ctx context.Context, metadata *ClientMetadata) (*dto.ListLovePagesResponse, error)
	GetPage(ctx context.Context, id int64, metadata *ClientMetadata) (*dto.LovePageDTO, error)
	CreatePage(ctx context.Context, req *dto.CreateLovePageRequest, metadata *ClientMetadata) (*dto.LovePageDTO, error)
	UpdatePage(ctx context.Context, id int64, req *dto.UpdateLovePageRequest, metadata *ClientMetadata) (*dto.LovePageDTO, error)
	DeletePage(ctx context.Context, id int64, metadata *ClientMetadata) (*dto.LovePageDTO, error)
	QuickCreate(ctx context.Context, req *dto.QuickCreateRequest, metadata *ClientMetadata) (*dto.QuickCreateResponse, error)
	ExportClient(ctx context.Context, id int64, metadata *ClientMetadata) (*dto.ExportClientResponse, error)
}

// PageLink derives the public rendering URL for a page id
func PageLink(domain string, id int64) string {
	return fmt.Sprintf("%s/love-page.html?id=%d", strings.TrimRight(domain, "/"), id)
}

// QRCodeDownloadPath derives the API path serving the QR attachment
func QRCodeDownloadPath(id int64) string {
	return fmt.Sprintf("/api/qrcode/%d", id)
}

type LovePageFlowImpl struct {
	repo   repository.LovePageRepository
	qr     services.QRCodeService
	domain string
}

func NewLovePageFlow(repo repository.LovePageRepository, qr services.QRCodeService, domain string) LovePageFlow {
	return &LovePageFlowImpl{repo: repo, qr: qr, domain: domain}
}

// validateDraft enforces the backend-independent creation rules:
// clientName and message must survive trimming, and offer must be one
// of the recognized tier codes. Storage never sees a draft that fails here.
func validateDraft(clientName, message, offer string) error {
	if strings.TrimSpace(clientName) == "" {
		return ErrClientNameRequired
	}
	if strings.TrimSpace(message) == "" {
		return ErrMessageRequired
	}
	if offer == "" {
		return ErrOfferRequired
	}
	if !models.IsValidOffer(offer) {
		return ErrOfferUnknown
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ListPages returns all non-deleted pages, newest first
func (f *LovePageFlowImpl) ListPages(ctx context.Context, metadata *ClientMetadata) (*dto.ListLovePagesResponse, error) {
	pages, err := f.repo.List(ctx, true)
	if err != nil {
		return nil, NewBusinessError("LIST_PAGES_FAILED", "Failed to list love pages", err)
	}

	items := make([]dto.LovePageDTO, 0, len(pages))
	for _, p := range pages {
		items = append(items, ToLovePageDTO(*p))
	}
	return &dto.ListLovePagesResponse{Pages: items, Total: len(items)}, nil
}

// GetPage returns one page by id regardless of status
func (f *LovePageFlowImpl) GetPage(ctx context.Context, id int64, metadata *ClientMetadata) (*dto.LovePageDTO, error) {
	page, err := f.repo.ByPageID(ctx, id)
	if err != nil {
		return nil, NewBusinessError("GET_PAGE_FAILED", "Failed to load love page", err)
	}
	if page == nil {
		return nil, NewBusinessError("PAGE_NOT_FOUND", "Love page not found", ErrPageNotFound)
	}
	result := ToLovePageDTO(*page)
	return &result, nil
}

// CreatePage validates and persists a new record via the explicit CRUD path
func (f *LovePageFlowImpl) CreatePage(ctx context.Context, req *dto.CreateLovePageRequest, metadata *ClientMetadata) (*dto.LovePageDTO, error) {
	if err := validateDraft(req.ClientName, req.Message, req.Offer); err != nil {
		return nil, NewBusinessError("PAGE_VALIDATION_FAILED", "Love page validation failed", err)
	}

	draft := &models.LovePageDraft{
		ClientName:  strings.TrimSpace(req.ClientName),
		ClientEmail: normalizeEmail(req.ClientEmail),
		PhoneNumber: strings.TrimSpace(req.PhoneNumber),
		Message:     strings.TrimSpace(req.Message),
		Offer:       req.Offer,
		Photos:      toMediaModels(req.Photos),
		Videos:      toMediaModels(req.Videos),
		Music:       toMediaModelPtr(req.Music),
	}
	page, err := f.repo.Create(ctx, draft)
	if err != nil {
		return nil, NewBusinessError("PAGE_CREATE_FAILED", "Failed to create love page", err)
	}

	result := ToLovePageDTO(*page)
	return &result, nil
}

// UpdatePage merges the patch over the stored record. Id and createdAt
// are preserved by the storage layer; updatedAt is refreshed.
func (f *LovePageFlowImpl) UpdatePage(ctx context.Context, id int64, req *dto.UpdateLovePageRequest, metadata *ClientMetadata) (*dto.LovePageDTO, error) {
	patch, err := buildPatch(req)
	if err != nil {
		return nil, NewBusinessError("PAGE_VALIDATION_FAILED", "Love page validation failed", err)
	}

	page, err := f.repo.Update(ctx, id, patch)
	if err != nil {
		return nil, NewBusinessError("PAGE_UPDATE_FAILED", "Failed to update love page", err)
	}
	if page == nil {
		return nil, NewBusinessError("PAGE_NOT_FOUND", "Love page not found", ErrPageNotFound)
	}
	result := ToLovePageDTO(*page)
	return &result, nil
}

func buildPatch(req *dto.UpdateLovePageRequest) (*models.LovePagePatch, error) {
	if req == nil {
		return nil, ErrUpdateEmpty
	}
	patch := &models.LovePagePatch{}
	touched := false

	if req.ClientName != nil {
		name := strings.TrimSpace(*req.ClientName)
		if name == "" {
			return nil, ErrClientNameRequired
		}
		patch.ClientName = &name
		touched = true
	}
	if req.ClientEmail != nil {
		email := normalizeEmail(*req.ClientEmail)
		patch.ClientEmail = &email
		touched = true
	}
	if req.PhoneNumber != nil {
		phone := strings.TrimSpace(*req.PhoneNumber)
		patch.PhoneNumber = &phone
		touched = true
	}
	if req.Message != nil {
		message := strings.TrimSpace(*req.Message)
		if message == "" {
			return nil, ErrMessageRequired
		}
		patch.Message = &message
		touched = true
	}
	if req.Offer != nil {
		if !models.IsValidOffer(*req.Offer) {
			return nil, ErrOfferUnknown
		}
		patch.Offer = req.Offer
		touched = true
	}
	if req.Photos != nil {
		patch.Photos = toMediaModels(req.Photos)
		touched = true
	}
	if req.Videos != nil {
		patch.Videos = toMediaModels(req.Videos)
		touched = true
	}
	if req.Music != nil {
		patch.Music = toMediaModelPtr(req.Music)
		touched = true
	}
	if req.Status != nil {
		if !models.IsValidStatus(*req.Status) {
			return nil, ErrStatusUnknown
		}
		patch.Status = req.Status
		touched = true
	}

	if !touched {
		return nil, ErrUpdateEmpty
	}
	return patch, nil
}

// DeletePage soft-deletes the record. The QR artifact is removed
// best-effort; a failure there never fails the delete.
func (f *LovePageFlowImpl) DeletePage(ctx context.Context, id int64, metadata *ClientMetadata) (*dto.LovePageDTO, error) {
	page, err := f.repo.SoftDelete(ctx, id)
	if err != nil {
		return nil, NewBusinessError("PAGE_DELETE_FAILED", "Failed to delete love page", err)
	}
	if page == nil {
		return nil, NewBusinessError("PAGE_NOT_FOUND", "Love page not found", ErrPageNotFound)
	}

	if err := f.qr.Remove(id); err != nil {
		log.Printf("failed to remove QR artifact for deleted page %d: %v", id, err)
	}

	result := ToLovePageDTO(*page)
	return &result, nil
}

// QuickCreate is the bundled create-and-generate operation used by the
// admin panel. The record is persisted first; deriving the page link
// and writing the QR artifact are follow-up phases, and a QR failure
// degrades the result instead of failing the create.
func (f *LovePageFlowImpl) QuickCreate(ctx context.Context, req *dto.QuickCreateRequest, metadata *ClientMetadata) (*dto.QuickCreateResponse, error) {
	if err := validateDraft(req.ClientName, req.Message, req.Offer); err != nil {
		return nil, NewBusinessError("PAGE_VALIDATION_FAILED", "Love page validation failed", err)
	}

	draft := &models.LovePageDraft{
		ClientName:  strings.TrimSpace(req.ClientName),
		ClientEmail: normalizeEmail(req.ClientEmail),
		PhoneNumber: strings.TrimSpace(req.PhoneNumber),
		Message:     strings.TrimSpace(req.Message),
		Offer:       req.Offer,
	}
	page, err := f.repo.Create(ctx, draft)
	if err != nil {
		return nil, NewBusinessError("PAGE_CREATE_FAILED", "Failed to create love page", err)
	}

	pageLink := PageLink(f.domain, page.ID)
	qrCodeURL := QRCodeDownloadPath(page.ID)

	// Second phase: attach the derived links to the stored record. The
	// reconciler can redo this if the process dies in between.
	if _, err := f.repo.Update(ctx, page.ID, &models.LovePagePatch{
		PageLink:  &pageLink,
		QRCodeURL: &qrCodeURL,
	}); err != nil {
		log.Printf("failed to attach page link to page %d: %v", page.ID, err)
	}

	if _, err := f.qr.Generate(ctx, pageLink, page.ID); err != nil {
		// Non-fatal: the record exists, the artifact can be backfilled.
		log.Printf("QR generation degraded for page %d: %v", page.ID, err)
	}

	return &dto.QuickCreateResponse{
		PageID:     page.ID,
		ClientName: page.ClientName,
		PageLink:   pageLink,
		QRCodeURL:  qrCodeURL,
		CreatedAt:  page.CreatedAt.Format(time.RFC3339),
	}, nil
}

// ExportClient bundles the client's contact info with the page link and
// artifact status for handover
func (f *LovePageFlowImpl) ExportClient(ctx context.Context, id int64, metadata *ClientMetadata) (*dto.ExportClientResponse, error) {
	page, err := f.repo.ByPageID(ctx, id)
	if err != nil {
		return nil, NewBusinessError("EXPORT_CLIENT_FAILED", "Failed to export client", err)
	}
	if page == nil {
		return nil, NewBusinessError("PAGE_NOT_FOUND", "Love page not found", ErrPageNotFound)
	}

	return &dto.ExportClientResponse{
		PageID:       page.ID,
		ClientName:   page.ClientName,
		ClientEmail:  page.ClientEmail,
		PhoneNumber:  page.PhoneNumber,
		PageLink:     PageLink(f.domain, page.ID),
		QRCodeURL:    QRCodeDownloadPath(page.ID),
		QRCodeExists: f.qr.Exists(page.ID),
		CreatedAt:    page.CreatedAt.Format(time.RFC3339),
	}, nil
}
