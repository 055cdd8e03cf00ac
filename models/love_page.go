// Package models contains domain entities and business models for the love page service
package models

import "time"

// Love page lifecycle states
const (
	StatusActive   = "active"
	StatusArchived = "archived"
	StatusDeleted  = "deleted"
)

// Offer tier codes sold through the admin panel
const (
	OfferTierBasic    = "1"
	OfferTierPremium  = "2"
	OfferTierExclusif = "3"
)

// IsValidOffer reports whether code is one of the recognized offer tiers
func IsValidOffer(code string) bool {
	switch code {
	case OfferTierBasic, OfferTierPremium, OfferTierExclusif:
		return true
	}
	return false
}

// IsValidStatus reports whether s is a known lifecycle state
func IsValidStatus(s string) bool {
	switch s {
	case StatusActive, StatusArchived, StatusDeleted:
		return true
	}
	return false
}

// MediaReference points at an uploaded asset attached to a love page
type MediaReference struct {
	ID   string `json:"id,omitempty" bson:"id,omitempty"`
	Name string `json:"name,omitempty" bson:"name,omitempty"`
	Type string `json:"type,omitempty" bson:"type,omitempty"`
	URL  string `json:"url,omitempty" bson:"url,omitempty"`
}

// LovePage represents one personalized page record.
// ID is a millisecond-clock derived value, unique within the store and
// never reassigned. QRCodeURL and PageLink are derived fields populated
// once link/artifact generation succeeds.
type LovePage struct {
	ID          int64  `json:"id" bson:"id"`
	ClientName  string `json:"clientName" bson:"clientName"`
	ClientEmail string `json:"clientEmail,omitempty" bson:"clientEmail,omitempty"`
	PhoneNumber string `json:"phoneNumber,omitempty" bson:"phoneNumber,omitempty"`
	Message     string `json:"message" bson:"message"`
	Offer       string `json:"offer" bson:"offer"`

	Photos []MediaReference `json:"photos,omitempty" bson:"photos,omitempty"`
	Videos []MediaReference `json:"videos,omitempty" bson:"videos,omitempty"`
	Music  *MediaReference  `json:"music,omitempty" bson:"music,omitempty"`

	Status    string `json:"status" bson:"status"`
	QRCodeURL string `json:"qrCodeUrl,omitempty" bson:"qrCodeUrl,omitempty"`
	PageLink  string `json:"pageLink,omitempty" bson:"pageLink,omitempty"`

	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

// IsDeleted reports whether the record has been soft-deleted
func (p *LovePage) IsDeleted() bool {
	return p.Status == StatusDeleted
}

// LovePageDraft carries the caller-supplied fields of a new record.
// ID, status and timestamps are assigned by the storage backend.
type LovePageDraft struct {
	ClientName  string
	ClientEmail string
	PhoneNumber string
	Message     string
	Offer       string
	Photos      []MediaReference
	Videos      []MediaReference
	Music       *MediaReference
	PageLink    string
	QRCodeURL   string
}

// LovePagePatch carries a partial update. Nil fields are left unchanged;
// ID and CreatedAt are never touched.
type LovePagePatch struct {
	ClientName  *string
	ClientEmail *string
	PhoneNumber *string
	Message     *string
	Offer       *string
	Photos      []MediaReference
	Videos      []MediaReference
	Music       *MediaReference
	Status      *string
	PageLink    *string
	QRCodeURL   *string
}

// LovePageFilter represents filter criteria for love page queries
type LovePageFilter struct {
	ID            *int64
	ClientName    *string
	Status        *string
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}
