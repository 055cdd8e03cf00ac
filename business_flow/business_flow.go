// Package businessflow contains the business logic for the love page service.
package businessflow

import (
	"time"

	"github.com/novacoeur/lovepage-api/app/dto"
	"github.com/novacoeur/lovepage-api/models"
)

const RequestIDKey = "X-Request-ID"

// ClientMetadata holds client-related information for audit logging
type ClientMetadata struct {
	IPAddress string `json:"ip_address"`
	UserAgent string `json:"user_agent"`
	RequestID string `json:"request_id,omitempty"`
}

// NewClientMetadata creates a new ClientMetadata instance
func NewClientMetadata(ipAddress, userAgent string) *ClientMetadata {
	return &ClientMetadata{
		IPAddress: ipAddress,
		UserAgent: userAgent,
	}
}

// SetRequestID sets the request ID
func (cm *ClientMetadata) SetRequestID(requestID string) {
	cm.RequestID = requestID
}

// ToLovePageDTO converts a stored record to its wire representation
func ToLovePageDTO(page models.LovePage) dto.LovePageDTO {
	return dto.LovePageDTO{
		ID:          page.ID,
		ClientName:  page.ClientName,
		ClientEmail: page.ClientEmail,
		PhoneNumber: page.PhoneNumber,
		Message:     page.Message,
		Offer:       page.Offer,
		Photos:      toMediaDTOs(page.Photos),
		Videos:      toMediaDTOs(page.Videos),
		Music:       toMediaDTOPtr(page.Music),
		Status:      page.Status,
		QRCodeURL:   page.QRCodeURL,
		PageLink:    page.PageLink,
		CreatedAt:   page.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   page.UpdatedAt.Format(time.RFC3339),
	}
}

func toMediaDTOs(refs []models.MediaReference) []dto.MediaReferenceDTO {
	if refs == nil {
		return nil
	}
	out := make([]dto.MediaReferenceDTO, 0, len(refs))
	for _, r := range refs {
		out = append(out, dto.MediaReferenceDTO{ID: r.ID, Name: r.Name, Type: r.Type, URL: r.URL})
	}
	return out
}

func toMediaDTOPtr(ref *models.MediaReference) *dto.MediaReferenceDTO {
	if ref == nil {
		return nil
	}
	return &dto.MediaReferenceDTO{ID: ref.ID, Name: ref.Name, Type: ref.Type, URL: ref.URL}
}

func toMediaModels(refs []dto.MediaReferenceDTO) []models.MediaReference {
	if refs == nil {
		return nil
	}
	out := make([]models.MediaReference, 0, len(refs))
	for _, r := range refs {
		out = append(out, models.MediaReference{ID: r.ID, Name: r.Name, Type: r.Type, URL: r.URL})
	}
	return out
}

func toMediaModelPtr(ref *dto.MediaReferenceDTO) *models.MediaReference {
	if ref == nil {
		return nil
	}
	return &models.MediaReference{ID: ref.ID, Name: ref.Name, Type: ref.Type, URL: ref.URL}
}
