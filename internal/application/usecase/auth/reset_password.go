// Package auth contains authentication-related use cases.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ethergyx/backend/internal/application/adapter"
	domainerror "github.com/ethergyx/backend/internal/domain/error"
	"github.com/ethergyx/backend/internal/domain/valueobject"
)

// ResetPasswordInput represents the input for password reset.
type ResetPasswordInput struct {
	Token       string
	NewPassword string
}

// ResetPasswordOutput represents the output of password reset.
type ResetPasswordOutput struct {
	Message string
}

// ResetPasswordUseCase handles password reset logic.
type ResetPasswordUseCase struct {
	accountRepo     adapter.AccountRepository
	passwordService adapter.PasswordService
	resetTokens     adapter.OneTimeTokenService
	tokenService    adapter.TokenService
	storeTimeout    time.Duration
}

// NewResetPasswordUseCase creates a new ResetPasswordUseCase instance.
func NewResetPasswordUseCase(
	accountRepo adapter.AccountRepository,
	passwordService adapter.PasswordService,
	resetTokens adapter.OneTimeTokenService,
	tokenService adapter.TokenService,
	storeTimeout time.Duration,
) *ResetPasswordUseCase {
	return &ResetPasswordUseCase{
		accountRepo:     accountRepo,
		passwordService: passwordService,
		resetTokens:     resetTokens,
		tokenService:    tokenService,
		storeTimeout:    storeTimeout,
	}
}

// Execute performs the password reset.
func (uc *ResetPasswordUseCase) Execute(ctx context.Context, input ResetPasswordInput) (*ResetPasswordOutput, error) {
	resetToken, err := uc.resetTokens.Validate(ctx, adapter.PurposePasswordReset, input.Token)
	if err != nil {
		return nil, domainerror.NewAuthError(
			domainerror.ErrCodeInvalidResetToken,
			"invalid or expired password reset token",
			domainerror.ErrInvalidResetToken,
		)
	}

	if time.Now().UTC().After(resetToken.ExpiresAt) {
		return nil, domainerror.NewAuthError(
			domainerror.ErrCodeExpiredResetToken,
			"password reset token has expired",
			domainerror.ErrInvalidResetToken,
		)
	}

	evaluation := valueobject.EvaluatePassword(input.NewPassword)
	if !evaluation.Valid {
		return nil, domainerror.NewAuthError(
			domainerror.ErrCodeWeakPassword,
			evaluation.Message(),
			domainerror.ErrWeakPassword,
		).WithDetails(evaluation.Unmet()...)
	}

	passwordHash, err := uc.passwordService.HashPassword(input.NewPassword)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	// Spend the token before touching the password so that only one of two
	// concurrent resets with the same link gets through.
	if err := uc.resetTokens.Consume(ctx, input.Token); err != nil {
		if errors.Is(err, domainerror.ErrInvalidToken) {
			return nil, domainerror.NewAuthError(
				domainerror.ErrCodeInvalidResetToken,
				"invalid or expired password reset token",
				domainerror.ErrInvalidResetToken,
			)
		}
		return nil, storeError("failed to consume reset token", err)
	}

	storeCtx, cancel := withStoreTimeout(ctx, uc.storeTimeout)
	defer cancel()

	if err := uc.accountRepo.UpdatePasswordHash(storeCtx, resetToken.AccountID, passwordHash); err != nil {
		return nil, storeError("failed to update account password", err)
	}

	// Sessions opened with the old password end here.
	if err := uc.tokenService.InvalidateAllAccountTokens(ctx, resetToken.AccountID); err != nil {
		slog.Warn("Failed to invalidate refresh tokens", "error", err, "accountID", resetToken.AccountID)
	}

	return &ResetPasswordOutput{
		Message: "Password has been successfully reset",
	}, nil
}
