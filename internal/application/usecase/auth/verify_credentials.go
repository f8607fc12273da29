// Package auth contains authentication-related use cases.
package auth

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/ethergyx/backend/internal/application/adapter"
	"github.com/ethergyx/backend/internal/domain/entity"
	domainerror "github.com/ethergyx/backend/internal/domain/error"
	"github.com/ethergyx/backend/internal/domain/valueobject"
)

// dummyPassword is hashed once and compared against when the account does not
// exist, so unknown emails cost about as much as wrong passwords.
const dummyPassword = "ethergyx-timing-equalizer-Aa1!"

// fallbackDummyHash is a well-formed cost 10 bcrypt hash used when hashing
// dummyPassword fails. It matches no password a client can send.
const fallbackDummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// VerifyCredentialsUseCase checks an email/password pair against the account store.
// Unknown accounts and wrong passwords produce the same public error.
type VerifyCredentialsUseCase struct {
	accountRepo     adapter.AccountRepository
	passwordService adapter.PasswordService
	storeTimeout    time.Duration

	dummyOnce sync.Once
	dummyHash string
}

// NewVerifyCredentialsUseCase creates a new VerifyCredentialsUseCase instance.
func NewVerifyCredentialsUseCase(
	accountRepo adapter.AccountRepository,
	passwordService adapter.PasswordService,
	storeTimeout time.Duration,
) *VerifyCredentialsUseCase {
	return &VerifyCredentialsUseCase{
		accountRepo:     accountRepo,
		passwordService: passwordService,
		storeTimeout:    storeTimeout,
	}
}

// Execute returns the account when the credentials match.
func (uc *VerifyCredentialsUseCase) Execute(ctx context.Context, email, password string) (*entity.Account, error) {
	normalizedEmail := valueobject.NormalizeEmail(email)
	if normalizedEmail == "" || password == "" {
		return nil, domainerror.NewInvalidCredentialsError(domainerror.ErrMissingField)
	}

	storeCtx, cancel := withStoreTimeout(ctx, uc.storeTimeout)
	defer cancel()

	account, err := uc.accountRepo.FindByEmail(storeCtx, normalizedEmail)
	if err != nil {
		if errors.Is(err, domainerror.ErrAccountNotFound) {
			_ = uc.passwordService.VerifyPassword(uc.dummy(), password)
			return nil, domainerror.NewInvalidCredentialsError(domainerror.ErrUnknownAccount)
		}
		return nil, storeError("failed to look up account", err)
	}

	if err := uc.passwordService.VerifyPassword(account.PasswordHash, password); err != nil {
		return nil, domainerror.NewInvalidCredentialsError(domainerror.ErrBadPassword)
	}

	uc.upgradeHash(storeCtx, account, password)

	return account, nil
}

// upgradeHash re-hashes a verified password stored at a lower cost. Failures
// only leave the old hash in place.
func (uc *VerifyCredentialsUseCase) upgradeHash(ctx context.Context, account *entity.Account, password string) {
	if !uc.passwordService.NeedsRehash(account.PasswordHash) {
		return
	}
	hash, err := uc.passwordService.HashPassword(password)
	if err != nil {
		slog.Warn("Failed to rehash password", "accountID", account.ID, "error", err)
		return
	}
	if err := uc.accountRepo.UpdatePasswordHash(ctx, account.ID, hash); err != nil {
		slog.Warn("Failed to store upgraded password hash", "accountID", account.ID, "error", err)
		return
	}
	account.PasswordHash = hash
}

func (uc *VerifyCredentialsUseCase) dummy() string {
	uc.dummyOnce.Do(func() {
		hash, err := uc.passwordService.HashPassword(dummyPassword)
		if err != nil {
			slog.Warn("Failed to hash dummy password, using fallback hash", "error", err)
			hash = fallbackDummyHash
		}
		uc.dummyHash = hash
	})
	return uc.dummyHash
}
