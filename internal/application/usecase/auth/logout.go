// Package auth contains authentication-related use cases.
package auth

import (
	"context"
	"log/slog"

	"github.com/ethergyx/backend/internal/application/adapter"
)

// LogoutInput represents the input for logout.
type LogoutInput struct {
	RefreshToken string
}

// LogoutUseCase ends a session by revoking its refresh token.
type LogoutUseCase struct {
	tokenService adapter.TokenService
}

// NewLogoutUseCase creates a new LogoutUseCase instance.
func NewLogoutUseCase(tokenService adapter.TokenService) *LogoutUseCase {
	return &LogoutUseCase{
		tokenService: tokenService,
	}
}

// Execute revokes the refresh token. Logout always succeeds: an unknown or
// already revoked token leaves nothing to do.
func (uc *LogoutUseCase) Execute(ctx context.Context, input LogoutInput) {
	if input.RefreshToken == "" {
		return
	}
	if err := uc.tokenService.InvalidateRefreshToken(ctx, input.RefreshToken); err != nil {
		slog.Debug("Logout with unknown refresh token", "error", err)
	}
}
