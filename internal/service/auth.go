package service

import (
	"context"
	"fmt"

	"github.com/krakosik/pollbot/internal/client"
	"github.com/krakosik/pollbot/internal/dto"
)

type AuthService interface {
	// Enabled reports whether tokens can be verified at all.
	Enabled() bool
	ValidateToken(ctx context.Context, token string) (dto.APIUser, error)
}

type authService struct {
	authClient          client.AuthClient
	tokenExpireVerifier client.TokenExpireVerifier
}

func newAuthService(authClient client.AuthClient, verifier client.TokenExpireVerifier) AuthService {
	return &authService{authClient: authClient, tokenExpireVerifier: verifier}
}

func (a *authService) Enabled() bool {
	return a.authClient != nil
}

func (a *authService) ValidateToken(ctx context.Context, token string) (dto.APIUser, error) {
	if a.authClient == nil {
		return dto.APIUser{}, fmt.Errorf("%w: authentication is not configured", dto.ErrNotAuthorized)
	}
	if token == "" {
		return dto.APIUser{}, fmt.Errorf("%w: missing token", dto.ErrNotAuthorized)
	}

	response, err := a.authClient.VerifyIDToken(ctx, token)
	if err != nil {
		if a.tokenExpireVerifier(err) {
			return dto.APIUser{}, fmt.Errorf("%w: %v", dto.ErrNotAuthorized, err)
		}
		return dto.APIUser{}, fmt.Errorf("%w: %v", dto.ErrInternalFailure, err)
	}

	user := dto.APIUser{UID: response.UID}
	if email, ok := response.Claims["email"].(string); ok {
		user.Email = email
	}

	return user, nil
}
