// Package businessflow contains the core business logic and use cases for the love page service
package businessflow

import (
	"errors"
	"fmt"
)

// Business flow error constants
var (
	// Validation errors
	ErrClientNameRequired = errors.New("client name is required")
	ErrMessageRequired    = errors.New("message is required")
	ErrOfferRequired      = errors.New("offer is required")
	ErrOfferUnknown       = errors.New("offer must be one of the recognized tiers")
	ErrStatusUnknown      = errors.New("unknown status")
	ErrUpdateEmpty        = errors.New("at least one field must be provided for update")

	// Record errors
	ErrPageNotFound = errors.New("love page not found")

	// Artifact errors
	ErrArtifactNotFound = errors.New("QR artifact not found")

	// Admin auth errors
	ErrAdminNotFound     = errors.New("admin not found")
	ErrIncorrectPassword = errors.New("incorrect password")
)

type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// IsValidation reports whether err stems from a rejected draft or patch
func IsValidation(err error) bool {
	return errors.Is(err, ErrClientNameRequired) ||
		errors.Is(err, ErrMessageRequired) ||
		errors.Is(err, ErrOfferRequired) ||
		errors.Is(err, ErrOfferUnknown) ||
		errors.Is(err, ErrStatusUnknown) ||
		errors.Is(err, ErrUpdateEmpty)
}

func IsPageNotFound(err error) bool {
	return errors.Is(err, ErrPageNotFound)
}

func IsArtifactNotFound(err error) bool {
	return errors.Is(err, ErrArtifactNotFound)
}

func IsAdminNotFound(err error) bool {
	return errors.Is(err, ErrAdminNotFound)
}

func IsIncorrectPassword(err error) bool {
	return errors.Is(err, ErrIncorrectPassword)
}
