package auth

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ethergyx/backend/internal/application/adapter"
	domainerror "github.com/ethergyx/backend/internal/domain/error"
)

// RefreshTokenInput represents the input for token refresh.
type RefreshTokenInput struct {
	RefreshToken string
}

// RefreshTokenOutput carries the rotated token pair.
type RefreshTokenOutput struct {
	Tokens *adapter.TokenPair
}

// RefreshTokenUseCase exchanges a refresh token for a new pair. Each refresh
// token is good for one exchange; presenting a spent one revokes every session
// of the account, since only a copied token can be replayed.
type RefreshTokenUseCase struct {
	tokenService adapter.TokenService
}

// NewRefreshTokenUseCase creates a new RefreshTokenUseCase instance.
func NewRefreshTokenUseCase(tokenService adapter.TokenService) *RefreshTokenUseCase {
	return &RefreshTokenUseCase{tokenService: tokenService}
}

// Execute performs the token refresh.
func (uc *RefreshTokenUseCase) Execute(ctx context.Context, input RefreshTokenInput) (*RefreshTokenOutput, error) {
	claims, err := uc.tokenService.ValidateRefreshToken(ctx, input.RefreshToken)
	if err != nil {
		return nil, invalidRefreshToken("invalid or expired refresh token")
	}

	consumed, err := uc.tokenService.ConsumeRefreshToken(ctx, input.RefreshToken)
	if err != nil {
		return nil, fmt.Errorf("failed to consume refresh token: %w", err)
	}
	if !consumed {
		slog.Warn("Spent refresh token presented, revoking account sessions", "accountID", claims.AccountID)
		if err := uc.tokenService.InvalidateAllAccountTokens(ctx, claims.AccountID); err != nil {
			slog.Error("Failed to revoke account sessions", "accountID", claims.AccountID, "error", err)
		}
		return nil, invalidRefreshToken("refresh token has been revoked")
	}

	tokens, err := uc.tokenService.GenerateTokenPair(ctx, claims.AccountID, claims.Email, false)
	if err != nil {
		return nil, fmt.Errorf("failed to generate new tokens: %w", err)
	}
	return &RefreshTokenOutput{Tokens: tokens}, nil
}

func invalidRefreshToken(message string) error {
	return domainerror.NewAuthError(domainerror.ErrCodeInvalidToken, message, domainerror.ErrInvalidToken)
}
