// Package adapters implements adapter interfaces from the application layer.
package adapters

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/ethergyx/backend/internal/application/adapter"
	domainerror "github.com/ethergyx/backend/internal/domain/error"
	"github.com/ethergyx/backend/internal/integration/persistence"
	"github.com/ethergyx/backend/internal/integration/persistence/model"
)

const (
	tokenIssuer = "ethergyx"

	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

// TokenDurations configures session token lifetimes.
type TokenDurations struct {
	Access            time.Duration
	Refresh           time.Duration
	RememberMeAccess  time.Duration
	RememberMeRefresh time.Duration
}

// DefaultTokenDurations returns the lifetimes used when none are configured.
func DefaultTokenDurations() TokenDurations {
	return TokenDurations{
		Access:            15 * time.Minute,
		Refresh:           7 * 24 * time.Hour,
		RememberMeAccess:  7 * 24 * time.Hour,
		RememberMeRefresh: 30 * 24 * time.Hour,
	}
}

// CustomClaims represents the custom claims for JWT tokens.
type CustomClaims struct {
	AccountID string `json:"account_id"`
	Email     string `json:"email"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// tokenService implements the adapter.TokenService interface.
type tokenService struct {
	secret          []byte
	durations       TokenDurations
	tokenRepository persistence.TokenRepository
}

// NewTokenService creates a new token service instance.
func NewTokenService(secret string, durations TokenDurations, tokenRepository persistence.TokenRepository) adapter.TokenService {
	return &tokenService{
		secret:          []byte(secret),
		durations:       durations,
		tokenRepository: tokenRepository,
	}
}

// GenerateTokenPair generates a new access and refresh token pair.
func (s *tokenService) GenerateTokenPair(ctx context.Context, accountID uuid.UUID, email string, rememberMe bool) (*adapter.TokenPair, error) {
	accessDuration := s.durations.Access
	refreshDuration := s.durations.Refresh
	if rememberMe {
		accessDuration = s.durations.RememberMeAccess
		refreshDuration = s.durations.RememberMeRefresh
	}

	now := time.Now().UTC()

	accessToken, err := s.generateJWT(accountID, email, tokenTypeAccess, now, accessDuration)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, err := s.generateJWT(accountID, email, tokenTypeRefresh, now, refreshDuration)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	refreshExpiresAt := now.Add(refreshDuration)
	if err := s.tokenRepository.SaveRefreshToken(ctx, refreshToken, accountID, refreshExpiresAt); err != nil {
		return nil, fmt.Errorf("failed to save refresh token: %w", err)
	}

	return &adapter.TokenPair{
		AccessToken:      accessToken,
		RefreshToken:     refreshToken,
		AccessExpiresAt:  now.Add(accessDuration),
		RefreshExpiresAt: refreshExpiresAt,
	}, nil
}

// ValidateAccessToken validates an access token and returns its claims.
func (s *tokenService) ValidateAccessToken(_ context.Context, token string) (*adapter.TokenClaims, error) {
	return s.validate(token, tokenTypeAccess)
}

// ValidateRefreshToken validates a refresh token and returns its claims.
func (s *tokenService) ValidateRefreshToken(_ context.Context, token string) (*adapter.TokenClaims, error) {
	return s.validate(token, tokenTypeRefresh)
}

// InvalidateRefreshToken invalidates a refresh token.
func (s *tokenService) InvalidateRefreshToken(ctx context.Context, token string) error {
	return s.tokenRepository.InvalidateRefreshToken(ctx, token)
}

// InvalidateAllAccountTokens invalidates all refresh tokens for an account.
func (s *tokenService) InvalidateAllAccountTokens(ctx context.Context, accountID uuid.UUID) error {
	return s.tokenRepository.InvalidateAllAccountRefreshTokens(ctx, accountID)
}

// ConsumeRefreshToken spends a refresh token exactly once.
func (s *tokenService) ConsumeRefreshToken(ctx context.Context, token string) (bool, error) {
	return s.tokenRepository.ConsumeRefreshToken(ctx, token)
}

func (s *tokenService) validate(token, expectedType string) (*adapter.TokenClaims, error) {
	claims, err := s.parseJWT(token)
	if err != nil {
		return nil, err
	}

	if claims.TokenType != expectedType {
		return nil, fmt.Errorf("%w: expected %s token", domainerror.ErrInvalidToken, expectedType)
	}

	accountID, err := uuid.Parse(claims.AccountID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid account ID: %w", domainerror.ErrInvalidToken, err)
	}

	return &adapter.TokenClaims{
		AccountID: accountID,
		Email:     claims.Email,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// generateJWT creates a new signed JWT. The jti keeps tokens issued in the same second distinct.
func (s *tokenService) generateJWT(accountID uuid.UUID, email, tokenType string, now time.Time, duration time.Duration) (string, error) {
	claims := CustomClaims{
		AccountID: accountID.String(),
		Email:     email,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(now.Add(duration)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    tokenIssuer,
			Subject:   accountID.String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// parseJWT parses and validates a JWT token.
func (s *tokenService) parseJWT(tokenString string) (*CustomClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &CustomClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithIssuer(tokenIssuer))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %w", domainerror.ErrExpiredToken, err)
		}
		return nil, fmt.Errorf("%w: %w", domainerror.ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*CustomClaims)
	if !ok || !token.Valid {
		return nil, domainerror.ErrInvalidToken
	}

	return claims, nil
}

// oneTimeTokenService implements the adapter.OneTimeTokenService interface.
type oneTimeTokenService struct {
	tokenRepository persistence.TokenRepository
	ttl             map[adapter.OneTimeTokenPurpose]time.Duration
}

// NewOneTimeTokenService creates a service issuing reset and confirmation tokens.
func NewOneTimeTokenService(tokenRepository persistence.TokenRepository, resetTTL, confirmationTTL time.Duration) adapter.OneTimeTokenService {
	return &oneTimeTokenService{
		tokenRepository: tokenRepository,
		ttl: map[adapter.OneTimeTokenPurpose]time.Duration{
			adapter.PurposePasswordReset:     resetTTL,
			adapter.PurposeEmailConfirmation: confirmationTTL,
		},
	}
}

// Generate creates and stores a new random token.
func (s *oneTimeTokenService) Generate(ctx context.Context, purpose adapter.OneTimeTokenPurpose, accountID uuid.UUID, email string) (*adapter.OneTimeToken, error) {
	ttl, ok := s.ttl[purpose]
	if !ok {
		return nil, fmt.Errorf("unknown token purpose %q", purpose)
	}

	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return nil, fmt.Errorf("failed to generate random token: %w", err)
	}
	token := hex.EncodeToString(tokenBytes)

	now := time.Now().UTC()
	expiresAt := now.Add(ttl)

	err := s.tokenRepository.SaveAccountToken(ctx, &model.AccountTokenModel{
		ID:        uuid.New(),
		Token:     token,
		Purpose:   string(purpose),
		AccountID: accountID,
		Email:     email,
		ExpiresAt: expiresAt,
		CreatedAt: now,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save %s token: %w", purpose, err)
	}

	return &adapter.OneTimeToken{
		Token:     token,
		Purpose:   purpose,
		AccountID: accountID,
		Email:     email,
		ExpiresAt: expiresAt,
	}, nil
}

// Validate returns the unused token for the purpose.
func (s *oneTimeTokenService) Validate(ctx context.Context, purpose adapter.OneTimeTokenPurpose, token string) (*adapter.OneTimeToken, error) {
	stored, err := s.tokenRepository.GetAccountToken(ctx, string(purpose), token)
	if err != nil {
		return nil, fmt.Errorf("failed to get %s token: %w", purpose, err)
	}
	if stored == nil {
		return nil, domainerror.ErrInvalidToken
	}

	return &adapter.OneTimeToken{
		Token:     stored.Token,
		Purpose:   purpose,
		AccountID: stored.AccountID,
		Email:     stored.Email,
		ExpiresAt: stored.ExpiresAt,
	}, nil
}

// Consume marks the token as used, failing if it already was.
func (s *oneTimeTokenService) Consume(ctx context.Context, token string) error {
	consumed, err := s.tokenRepository.MarkAccountTokenUsed(ctx, token)
	if err != nil {
		return fmt.Errorf("failed to consume token: %w", err)
	}
	if !consumed {
		return domainerror.ErrInvalidToken
	}
	return nil
}
