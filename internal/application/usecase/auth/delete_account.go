// Package auth contains authentication-related use cases.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ethergyx/backend/internal/application/adapter"
	domainerror "github.com/ethergyx/backend/internal/domain/error"
)

// DeleteAccountConfirmation is the text a caller must type to delete an account.
const DeleteAccountConfirmation = "DELETE"

// DeleteAccountInput represents the input for account deletion.
type DeleteAccountInput struct {
	AccountID    uuid.UUID
	Password     string
	Confirmation string
}

// DeleteAccountUseCase removes an account after re-checking its password.
type DeleteAccountUseCase struct {
	accountRepo     adapter.AccountRepository
	passwordService adapter.PasswordService
	tokenService    adapter.TokenService
	emailService    adapter.EmailService
	storeTimeout    time.Duration
}

// NewDeleteAccountUseCase creates a new DeleteAccountUseCase instance.
func NewDeleteAccountUseCase(
	accountRepo adapter.AccountRepository,
	passwordService adapter.PasswordService,
	tokenService adapter.TokenService,
	emailService adapter.EmailService,
	storeTimeout time.Duration,
) *DeleteAccountUseCase {
	return &DeleteAccountUseCase{
		accountRepo:     accountRepo,
		passwordService: passwordService,
		tokenService:    tokenService,
		emailService:    emailService,
		storeTimeout:    storeTimeout,
	}
}

// Execute performs the account deletion.
func (uc *DeleteAccountUseCase) Execute(ctx context.Context, input DeleteAccountInput) error {
	if input.Confirmation != DeleteAccountConfirmation {
		return domainerror.NewAuthError(
			domainerror.ErrCodeInvalidConfirmation,
			"confirmation must be exactly 'DELETE'",
			nil,
		)
	}

	storeCtx, cancel := withStoreTimeout(ctx, uc.storeTimeout)
	defer cancel()

	account, err := uc.accountRepo.FindByID(storeCtx, input.AccountID)
	if err != nil {
		if errors.Is(err, domainerror.ErrAccountNotFound) {
			return domainerror.NewAuthError(
				domainerror.ErrCodeAccountNotFound,
				"account not found",
				err,
			)
		}
		return storeError("failed to find account", err)
	}

	if err := uc.passwordService.VerifyPassword(account.PasswordHash, input.Password); err != nil {
		return domainerror.NewInvalidCredentialsError(domainerror.ErrBadPassword)
	}

	if err := uc.tokenService.InvalidateAllAccountTokens(ctx, input.AccountID); err != nil {
		return fmt.Errorf("failed to invalidate account tokens: %w", err)
	}

	if err := uc.accountRepo.Delete(storeCtx, input.AccountID); err != nil {
		return storeError("failed to delete account", err)
	}

	// Queued mail for a deleted account must never go out.
	if uc.emailService != nil {
		if err := uc.emailService.CancelPendingEmails(ctx, input.AccountID); err != nil {
			slog.Warn("Failed to cancel pending emails", "accountID", input.AccountID, "error", err)
		}
	}

	return nil
}
