package dto

// MediaReferenceDTO mirrors the stored media-reference shape
type MediaReferenceDTO struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
	Type string `json:"type,omitempty"`
	URL  string `json:"url,omitempty"`
}

// LovePageDTO is the wire representation of a love page record
type LovePageDTO struct {
	ID          int64               `json:"id"`
	ClientName  string              `json:"clientName"`
	ClientEmail string              `json:"clientEmail,omitempty"`
	PhoneNumber string              `json:"phoneNumber,omitempty"`
	Message     string              `json:"message"`
	Offer       string              `json:"offer"`
	Photos      []MediaReferenceDTO `json:"photos,omitempty"`
	Videos      []MediaReferenceDTO `json:"videos,omitempty"`
	Music       *MediaReferenceDTO  `json:"music,omitempty"`
	Status      string              `json:"status"`
	QRCodeURL   string              `json:"qrCodeUrl,omitempty"`
	PageLink    string              `json:"pageLink,omitempty"`
	CreatedAt   string              `json:"createdAt"`
	UpdatedAt   string              `json:"updatedAt"`
}

// CreateLovePageRequest carries the explicit CRUD create payload.
// Email format is not enforced here; the admin panel sends whatever the
// client provided and storage keeps it verbatim (lower-cased, trimmed).
type CreateLovePageRequest struct {
	ClientName  string              `json:"clientName" validate:"required"`
	ClientEmail string              `json:"clientEmail" validate:"omitempty,max=255"`
	PhoneNumber string              `json:"phoneNumber" validate:"omitempty,max=50"`
	Message     string              `json:"message" validate:"required"`
	Offer       string              `json:"offer" validate:"required"`
	Photos      []MediaReferenceDTO `json:"photos" validate:"omitempty,dive"`
	Videos      []MediaReferenceDTO `json:"videos" validate:"omitempty,dive"`
	Music       *MediaReferenceDTO  `json:"music" validate:"omitempty"`
}

// UpdateLovePageRequest carries a partial update; nil fields are untouched
type UpdateLovePageRequest struct {
	ClientName  *string             `json:"clientName" validate:"omitempty"`
	ClientEmail *string             `json:"clientEmail" validate:"omitempty,max=255"`
	PhoneNumber *string             `json:"phoneNumber" validate:"omitempty,max=50"`
	Message     *string             `json:"message" validate:"omitempty"`
	Offer       *string             `json:"offer" validate:"omitempty"`
	Photos      []MediaReferenceDTO `json:"photos" validate:"omitempty,dive"`
	Videos      []MediaReferenceDTO `json:"videos" validate:"omitempty,dive"`
	Music       *MediaReferenceDTO  `json:"music" validate:"omitempty"`
	Status      *string             `json:"status" validate:"omitempty,oneof=active archived deleted"`
}

// QuickCreateRequest is the bundled create-record-and-generate-QR payload
type QuickCreateRequest struct {
	ClientName  string `json:"clientName" validate:"required"`
	ClientEmail string `json:"clientEmail" validate:"omitempty,max=255"`
	PhoneNumber string `json:"phoneNumber" validate:"omitempty,max=50"`
	Message     string `json:"message" validate:"required"`
	Offer       string `json:"offer" validate:"required"`
}

// QuickCreateResponse mirrors the original quick-create payload shape
type QuickCreateResponse struct {
	PageID     int64  `json:"pageId"`
	ClientName string `json:"clientName"`
	PageLink   string `json:"pageLink"`
	QRCodeURL  string `json:"qrCodeUrl"`
	CreatedAt  string `json:"createdAt"`
}

// ExportClientResponse bundles client contact info with the page link
// and artifact status for handover to the customer
type ExportClientResponse struct {
	PageID       int64  `json:"pageId"`
	ClientName   string `json:"clientName"`
	ClientEmail  string `json:"clientEmail,omitempty"`
	PhoneNumber  string `json:"phoneNumber,omitempty"`
	PageLink     string `json:"pageLink"`
	QRCodeURL    string `json:"qrCodeUrl"`
	QRCodeExists bool   `json:"qrCodeExists"`
	CreatedAt    string `json:"createdAt"`
}

// ListLovePagesResponse wraps the default listing
type ListLovePagesResponse struct {
	Pages []LovePageDTO `json:"pages"`
	Total int           `json:"total"`
}
