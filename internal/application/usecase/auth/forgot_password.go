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

// ForgotPasswordMessage is returned whether or not the account exists.
const ForgotPasswordMessage = "If an account with that email exists, we have sent a password reset link"

// ForgotPasswordInput represents the input for forgot password request.
type ForgotPasswordInput struct {
	Email string
}

// ForgotPasswordOutput represents the output of forgot password request.
type ForgotPasswordOutput struct {
	Message string
}

// ForgotPasswordUseCase handles forgot password logic.
type ForgotPasswordUseCase struct {
	accountRepo  adapter.AccountRepository
	resetTokens  adapter.OneTimeTokenService
	emailService adapter.EmailService
	appBaseURL   string
	resetTTL     time.Duration
	storeTimeout time.Duration
}

// NewForgotPasswordUseCase creates a new ForgotPasswordUseCase instance.
func NewForgotPasswordUseCase(
	accountRepo adapter.AccountRepository,
	resetTokens adapter.OneTimeTokenService,
	emailService adapter.EmailService,
	appBaseURL string,
	resetTTL time.Duration,
	storeTimeout time.Duration,
) *ForgotPasswordUseCase {
	if resetTTL <= 0 {
		resetTTL = time.Hour
	}
	return &ForgotPasswordUseCase{
		accountRepo:  accountRepo,
		resetTokens:  resetTokens,
		emailService: emailService,
		appBaseURL:   appBaseURL,
		resetTTL:     resetTTL,
		storeTimeout: storeTimeout,
	}
}

// Execute performs the forgot password request.
// Always returns the same message to prevent email enumeration.
func (uc *ForgotPasswordUseCase) Execute(ctx context.Context, input ForgotPasswordInput) (*ForgotPasswordOutput, error) {
	normalizedEmail := valueobject.NormalizeEmail(input.Email)
	if !valueobject.IsValidEmailFormat(normalizedEmail) {
		return nil, domainerror.NewAuthError(
			domainerror.ErrCodeInvalidEmail,
			"invalid email format",
			domainerror.ErrInvalidEmail,
		)
	}

	output := &ForgotPasswordOutput{Message: ForgotPasswordMessage}

	storeCtx, cancel := withStoreTimeout(ctx, uc.storeTimeout)
	defer cancel()

	account, err := uc.accountRepo.FindByEmail(storeCtx, normalizedEmail)
	if err != nil {
		if errors.Is(err, domainerror.ErrAccountNotFound) {
			slog.Debug("Forgot password requested for unknown email")
			return output, nil
		}
		return nil, storeError("failed to look up account", err)
	}

	resetToken, err := uc.resetTokens.Generate(ctx, adapter.PurposePasswordReset, account.ID, account.Email)
	if err != nil {
		slog.Error("Failed to generate reset token", "error", err, "accountID", account.ID)
		return output, nil
	}

	resetURL := fmt.Sprintf("%s/reset-password?token=%s", uc.appBaseURL, resetToken.Token)

	if uc.emailService == nil {
		slog.Warn("Password reset token generated but no email service is configured",
			"accountID", account.ID,
		)
		return output, nil
	}

	err = uc.emailService.QueuePasswordResetEmail(ctx, adapter.QueueAccountEmailInput{
		AccountID:    account.ID,
		AccountEmail: account.Email,
		AccountName:  account.Name,
		ActionURL:    resetURL,
		ExpiresIn:    humanizeTTL(uc.resetTTL),
	})
	if err != nil {
		slog.Error("Failed to queue password reset email", "error", err, "accountID", account.ID)
	} else {
		slog.Info("Password reset email queued", "accountID", account.ID)
	}

	return output, nil
}
