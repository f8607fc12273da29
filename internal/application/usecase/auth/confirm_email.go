// Package auth contains authentication-related use cases.
package auth

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/ethergyx/backend/internal/application/adapter"
	domainerror "github.com/ethergyx/backend/internal/domain/error"
)

// ConfirmEmailUseCase consumes an email confirmation token.
type ConfirmEmailUseCase struct {
	accountRepo        adapter.AccountRepository
	confirmationTokens adapter.OneTimeTokenService
	storeTimeout       time.Duration
}

// NewConfirmEmailUseCase creates a new ConfirmEmailUseCase instance.
func NewConfirmEmailUseCase(
	accountRepo adapter.AccountRepository,
	confirmationTokens adapter.OneTimeTokenService,
	storeTimeout time.Duration,
) *ConfirmEmailUseCase {
	return &ConfirmEmailUseCase{
		accountRepo:        accountRepo,
		confirmationTokens: confirmationTokens,
		storeTimeout:       storeTimeout,
	}
}

// Execute marks the token owner's email as confirmed.
func (uc *ConfirmEmailUseCase) Execute(ctx context.Context, token string) error {
	invalid := domainerror.NewAuthError(
		domainerror.ErrCodeInvalidConfirmationToken,
		"invalid or expired email confirmation link",
		domainerror.ErrInvalidConfirmationToken,
	)

	if token == "" {
		return invalid
	}

	confirmation, err := uc.confirmationTokens.Validate(ctx, adapter.PurposeEmailConfirmation, token)
	if err != nil {
		return invalid
	}
	if time.Now().UTC().After(confirmation.ExpiresAt) {
		return invalid
	}

	if err := uc.confirmationTokens.Consume(ctx, token); err != nil {
		if errors.Is(err, domainerror.ErrInvalidToken) {
			return invalid
		}
		return storeError("failed to consume confirmation token", err)
	}

	storeCtx, cancel := withStoreTimeout(ctx, uc.storeTimeout)
	defer cancel()

	if err := uc.accountRepo.MarkEmailConfirmed(storeCtx, confirmation.AccountID); err != nil {
		return storeError("failed to confirm email", err)
	}

	slog.Info("Email confirmed", "accountID", confirmation.AccountID)
	return nil
}
