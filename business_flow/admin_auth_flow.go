// Package businessflow contains the core business logic and use cases for admin authentication
package businessflow

import (
	"context"

	"golang.org/x/crypto/bcrypt"

	"github.com/novacoeur/lovepage-api/app/dto"
	"github.com/novacoeur/lovepage-api/app/services"
	"github.com/novacoeur/lovepage-api/config"
	"github.com/novacoeur/lovepage-api/utils"
)

// AdminAuthFlow verifies the admin panel credentials server-side and
// issues a bearer token. Only the bcrypt hash of the password ever
// lives in configuration.
type AdminAuthFlow interface {
	Login(ctx context.Context, req *dto.AdminLoginRequest, metadata *ClientMetadata) (*dto.AdminLoginResponse, error)
}

type AdminAuthFlowImpl struct {
	admin        config.AdminConfig
	tokenService services.TokenService
}

func NewAdminAuthFlow(admin config.AdminConfig, tokenService services.TokenService) AdminAuthFlow {
	return &AdminAuthFlowImpl{admin: admin, tokenService: tokenService}
}

func (af *AdminAuthFlowImpl) Login(ctx context.Context, req *dto.AdminLoginRequest, metadata *ClientMetadata) (*dto.AdminLoginResponse, error) {
	if req == nil || req.Username == "" || req.Password == "" {
		return nil, NewBusinessError("ADMIN_LOGIN_VALIDATION_FAILED", "Admin login validation failed", ErrIncorrectPassword)
	}

	if req.Username != af.admin.Username {
		return nil, NewBusinessError("ADMIN_NOT_FOUND", "Admin not found", ErrAdminNotFound)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(af.admin.PasswordHash), []byte(req.Password)); err != nil {
		return nil, NewBusinessError("ADMIN_INCORRECT_PASSWORD", "Incorrect password", ErrIncorrectPassword)
	}

	accessToken, err := af.tokenService.GenerateAdminToken(req.Username)
	if err != nil {
		return nil, NewBusinessError("TOKEN_GENERATION_FAILED", "Failed to generate token", err)
	}

	return &dto.AdminLoginResponse{
		Username: req.Username,
		Session: dto.AdminSessionDTO{
			AccessToken: accessToken,
			ExpiresIn:   int(af.tokenService.AccessTokenTTL().Seconds()),
			TokenType:   "Bearer",
			CreatedAt:   utils.UTCNowRFC3339(),
		},
	}, nil
}
