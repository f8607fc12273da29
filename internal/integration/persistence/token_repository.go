// Package persistence implements repository interfaces for database operations.
package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ethergyx/backend/internal/integration/persistence/model"
)

// TokenRepository defines the interface for token persistence operations.
type TokenRepository interface {
	// SaveRefreshToken saves a refresh token to the database.
	SaveRefreshToken(ctx context.Context, token string, accountID uuid.UUID, expiresAt time.Time) error

	// ConsumeRefreshToken invalidates a live refresh token in one conditional
	// update. It reports false when the token was unknown, expired or already spent.
	ConsumeRefreshToken(ctx context.Context, token string) (bool, error)

	// InvalidateRefreshToken marks a refresh token as invalidated.
	InvalidateRefreshToken(ctx context.Context, token string) error

	// InvalidateAllAccountRefreshTokens invalidates all refresh tokens for an account.
	InvalidateAllAccountRefreshTokens(ctx context.Context, accountID uuid.UUID) error

	// SaveAccountToken saves a single-use account token.
	SaveAccountToken(ctx context.Context, token *model.AccountTokenModel) error

	// GetAccountToken retrieves an unused account token. Returns nil when none matches.
	GetAccountToken(ctx context.Context, purpose, token string) (*model.AccountTokenModel, error)

	// MarkAccountTokenUsed marks an unused account token as used. It reports
	// false when the token was already used.
	MarkAccountTokenUsed(ctx context.Context, token string) (bool, error)
}

// tokenRepository implements the TokenRepository interface.
type tokenRepository struct {
	db *gorm.DB
}

// NewTokenRepository creates a new token repository instance.
func NewTokenRepository(db *gorm.DB) TokenRepository {
	return &tokenRepository{
		db: db,
	}
}

// SaveRefreshToken saves a refresh token to the database.
func (r *tokenRepository) SaveRefreshToken(ctx context.Context, token string, accountID uuid.UUID, expiresAt time.Time) error {
	refreshToken := &model.RefreshTokenModel{
		ID:        uuid.New(),
		Token:     token,
		AccountID: accountID,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now().UTC(),
	}
	return r.db.WithContext(ctx).Create(refreshToken).Error
}

// ConsumeRefreshToken spends a refresh token. Only one caller can win the
// update for a given token.
func (r *tokenRepository) ConsumeRefreshToken(ctx context.Context, token string) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&model.RefreshTokenModel{}).
		Where("token = ? AND invalidated = ? AND expires_at > ?", token, false, time.Now().UTC()).
		Update("invalidated", true)
	if result.Error != nil {
		return false, classify("consume refresh token", result.Error)
	}
	return result.RowsAffected == 1, nil
}

// InvalidateRefreshToken marks a refresh token as invalidated.
func (r *tokenRepository) InvalidateRefreshToken(ctx context.Context, token string) error {
	return r.db.WithContext(ctx).
		Model(&model.RefreshTokenModel{}).
		Where("token = ?", token).
		Update("invalidated", true).Error
}

// InvalidateAllAccountRefreshTokens invalidates all refresh tokens for an account.
func (r *tokenRepository) InvalidateAllAccountRefreshTokens(ctx context.Context, accountID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&model.RefreshTokenModel{}).
		Where("account_id = ?", accountID).
		Update("invalidated", true).Error
}

// SaveAccountToken saves a single-use account token.
func (r *tokenRepository) SaveAccountToken(ctx context.Context, token *model.AccountTokenModel) error {
	return r.db.WithContext(ctx).Create(token).Error
}

// GetAccountToken retrieves an unused account token for the given purpose.
func (r *tokenRepository) GetAccountToken(ctx context.Context, purpose, token string) (*model.AccountTokenModel, error) {
	var accountToken model.AccountTokenModel
	result := r.db.WithContext(ctx).
		Where("token = ? AND purpose = ? AND used = ?", token, purpose, false).
		First(&accountToken)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, classify("get account token", result.Error)
	}
	return &accountToken, nil
}

// MarkAccountTokenUsed marks an account token as used if nobody did first.
func (r *tokenRepository) MarkAccountTokenUsed(ctx context.Context, token string) (bool, error) {
	now := time.Now().UTC()
	result := r.db.WithContext(ctx).
		Model(&model.AccountTokenModel{}).
		Where("token = ? AND used = ?", token, false).
		Updates(map[string]any{
			"used":    true,
			"used_at": &now,
		})
	if result.Error != nil {
		return false, classify("mark account token used", result.Error)
	}
	return result.RowsAffected == 1, nil
}
