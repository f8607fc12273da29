// Package adapter defines interfaces that will be implemented in the integration layer.
package adapter

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// TokenPair represents an access and refresh token pair.
type TokenPair struct {
	AccessToken      string
	RefreshToken     string
	AccessExpiresAt  time.Time
	RefreshExpiresAt time.Time
}

// TokenClaims represents the claims contained in a JWT token.
type TokenClaims struct {
	AccountID uuid.UUID
	Email     string
	ExpiresAt time.Time
}

// TokenService defines the interface for session token operations.
type TokenService interface {
	// GenerateTokenPair generates a new access and refresh token pair.
	GenerateTokenPair(ctx context.Context, accountID uuid.UUID, email string, rememberMe bool) (*TokenPair, error)

	// ValidateAccessToken validates an access token and returns its claims.
	ValidateAccessToken(ctx context.Context, token string) (*TokenClaims, error)

	// ValidateRefreshToken validates a refresh token and returns its claims.
	ValidateRefreshToken(ctx context.Context, token string) (*TokenClaims, error)

	// InvalidateRefreshToken invalidates a refresh token.
	InvalidateRefreshToken(ctx context.Context, token string) error

	// InvalidateAllAccountTokens invalidates all refresh tokens for an account.
	InvalidateAllAccountTokens(ctx context.Context, accountID uuid.UUID) error

	// ConsumeRefreshToken atomically spends a refresh token. False means it was
	// already spent, expired or never issued; exactly one concurrent caller gets true.
	ConsumeRefreshToken(ctx context.Context, token string) (bool, error)
}

// OneTimeTokenPurpose distinguishes single-use email tokens.
type OneTimeTokenPurpose string

const (
	PurposePasswordReset     OneTimeTokenPurpose = "password_reset"
	PurposeEmailConfirmation OneTimeTokenPurpose = "email_confirmation"
)

// OneTimeToken is a single-use token mailed to the account owner.
type OneTimeToken struct {
	Token     string
	Purpose   OneTimeTokenPurpose
	AccountID uuid.UUID
	Email     string
	ExpiresAt time.Time
}

// OneTimeTokenService issues and consumes password reset and email confirmation tokens.
type OneTimeTokenService interface {
	// Generate creates and stores a new token for the given purpose.
	Generate(ctx context.Context, purpose OneTimeTokenPurpose, accountID uuid.UUID, email string) (*OneTimeToken, error)

	// Validate returns the unused token, or an error if it does not exist.
	// Expiry is left to the caller so it can report it distinctly.
	Validate(ctx context.Context, purpose OneTimeTokenPurpose, token string) (*OneTimeToken, error)

	// Consume marks the token as used. It returns domainerror.ErrInvalidToken
	// when another caller consumed it first.
	Consume(ctx context.Context, token string) error
}
