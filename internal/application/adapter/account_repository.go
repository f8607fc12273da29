// Package adapter defines interfaces that will be implemented in the integration layer.
package adapter

import (
	"context"

	"github.com/google/uuid"

	"github.com/ethergyx/backend/internal/domain/entity"
)

// AccountRepository is the account store. Implementations must enforce the
// one-account-per-normalized-email invariant atomically.
type AccountRepository interface {
	// FindByEmail retrieves an account by its normalized email.
	// Returns domainerror.ErrAccountNotFound when there is no match.
	FindByEmail(ctx context.Context, normalizedEmail string) (*entity.Account, error)

	// FindByID retrieves an account by its ID.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Account, error)

	// Insert persists a new account.
	// Returns domainerror.ErrAccountAlreadyExists on a uniqueness violation.
	Insert(ctx context.Context, account *entity.Account) error

	// UpdatePasswordHash replaces the stored credential of an account.
	UpdatePasswordHash(ctx context.Context, id uuid.UUID, passwordHash string) error

	// MarkEmailConfirmed records the email confirmation time.
	MarkEmailConfirmed(ctx context.Context, id uuid.UUID) error

	// Delete removes an account. Its email becomes available for registration again.
	Delete(ctx context.Context, id uuid.UUID) error
}
