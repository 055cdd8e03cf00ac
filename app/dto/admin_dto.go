// Package dto
package dto

// AdminLoginRequest carries the admin panel credentials
type AdminLoginRequest struct {
	Username string `json:"username" validate:"required,min=3,max=255"`
	Password string `json:"password" validate:"required,min=8,max=100"`
}

// AdminSessionDTO is the issued bearer session
type AdminSessionDTO struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
	TokenType   string `json:"token_type" example:"Bearer"`
	CreatedAt   string `json:"created_at"`
}

// AdminLoginResponse wraps a successful login
type AdminLoginResponse struct {
	Username string          `json:"username"`
	Session  AdminSessionDTO `json:"session"`
}
