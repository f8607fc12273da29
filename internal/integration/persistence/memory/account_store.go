// Package memory provides in-process implementations of the application stores.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ethergyx/backend/internal/application/adapter"
	"github.com/ethergyx/backend/internal/domain/entity"
	domainerror "github.com/ethergyx/backend/internal/domain/error"
)

// AccountStore keeps accounts in a map keyed by normalized email.
// A single mutex makes the duplicate check and the insert one atomic step.
// Construct it once and inject it; separate instances do not share data.
type AccountStore struct {
	mu      sync.RWMutex
	byEmail map[string]*entity.Account
	byID    map[uuid.UUID]*entity.Account
}

var _ adapter.AccountRepository = (*AccountStore)(nil)

// NewAccountStore creates an empty AccountStore.
func NewAccountStore() *AccountStore {
	return &AccountStore{
		byEmail: map[string]*entity.Account{},
		byID:    map[uuid.UUID]*entity.Account{},
	}
}

// FindByEmail retrieves an account by its normalized email.
func (s *AccountStore) FindByEmail(ctx context.Context, normalizedEmail string) (*entity.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	account, ok := s.byEmail[normalizedEmail]
	if !ok {
		return nil, domainerror.ErrAccountNotFound
	}
	return clone(account), nil
}

// FindByID retrieves an account by its ID.
func (s *AccountStore) FindByID(ctx context.Context, id uuid.UUID) (*entity.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	account, ok := s.byID[id]
	if !ok {
		return nil, domainerror.ErrAccountNotFound
	}
	return clone(account), nil
}

// Insert stores a new account, or returns ErrAccountAlreadyExists.
func (s *AccountStore) Insert(ctx context.Context, account *entity.Account) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byEmail[account.Email]; exists {
		return domainerror.ErrAccountAlreadyExists
	}
	stored := clone(account)
	s.byEmail[stored.Email] = stored
	s.byID[stored.ID] = stored
	return nil
}

// UpdatePasswordHash replaces the stored credential of an account.
func (s *AccountStore) UpdatePasswordHash(ctx context.Context, id uuid.UUID, passwordHash string) error {
	return s.mutate(ctx, id, func(a *entity.Account) {
		a.ChangePasswordHash(passwordHash)
	})
}

// MarkEmailConfirmed records the email confirmation time.
func (s *AccountStore) MarkEmailConfirmed(ctx context.Context, id uuid.UUID) error {
	return s.mutate(ctx, id, func(a *entity.Account) {
		a.ConfirmEmail(time.Now())
	})
}

// Delete removes an account.
func (s *AccountStore) Delete(ctx context.Context, id uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	account, ok := s.byID[id]
	if !ok {
		return domainerror.ErrAccountNotFound
	}
	delete(s.byID, id)
	delete(s.byEmail, account.Email)
	return nil
}

// Len returns the number of stored accounts.
func (s *AccountStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}

func (s *AccountStore) mutate(ctx context.Context, id uuid.UUID, fn func(*entity.Account)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	account, ok := s.byID[id]
	if !ok {
		return domainerror.ErrAccountNotFound
	}
	fn(account)
	return nil
}

func clone(a *entity.Account) *entity.Account {
	c := *a
	if a.EmailConfirmedAt != nil {
		t := *a.EmailConfirmedAt
		c.EmailConfirmedAt = &t
	}
	return &c
}
