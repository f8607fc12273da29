// Package auth contains authentication-related use cases.
package auth

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/ethergyx/backend/internal/application/adapter"
	"github.com/ethergyx/backend/internal/domain/entity"
	domainerror "github.com/ethergyx/backend/internal/domain/error"
)

// GetAccountUseCase loads the signed-in account's profile.
type GetAccountUseCase struct {
	accountRepo  adapter.AccountRepository
	storeTimeout time.Duration
}

// NewGetAccountUseCase creates a new GetAccountUseCase instance.
func NewGetAccountUseCase(accountRepo adapter.AccountRepository, storeTimeout time.Duration) *GetAccountUseCase {
	return &GetAccountUseCase{
		accountRepo:  accountRepo,
		storeTimeout: storeTimeout,
	}
}

// Execute returns the account with the given id.
func (uc *GetAccountUseCase) Execute(ctx context.Context, accountID uuid.UUID) (*entity.Account, error) {
	storeCtx, cancel := withStoreTimeout(ctx, uc.storeTimeout)
	defer cancel()

	account, err := uc.accountRepo.FindByID(storeCtx, accountID)
	if err != nil {
		if errors.Is(err, domainerror.ErrAccountNotFound) {
			return nil, domainerror.NewAuthError(
				domainerror.ErrCodeAccountNotFound,
				"account not found",
				err,
			)
		}
		return nil, storeError("failed to find account", err)
	}
	return account, nil
}
