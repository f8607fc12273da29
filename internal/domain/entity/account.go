// Package entity defines the core business entities for the domain layer.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// Field limits matching the accounts table columns, counted in characters.
const (
	MaxAccountNameLength  = 100
	MaxAccountEmailLength = 254
)

// Account represents a registered EthergyX customer account.
// Email is stored normalized (trimmed, lower-cased) and is unique.
type Account struct {
	ID               uuid.UUID
	Name             string
	Email            string
	PasswordHash     string
	EmailConfirmedAt *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// NewAccount creates a new Account. The caller is responsible for passing an
// already normalized email and a non-empty password hash.
func NewAccount(name, normalizedEmail, passwordHash string) *Account {
	now := time.Now().UTC()
	return &Account{
		ID:           uuid.New(),
		Name:         name,
		Email:        normalizedEmail,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// IsEmailConfirmed reports whether the account owner confirmed their email address.
func (a *Account) IsEmailConfirmed() bool {
	return a.EmailConfirmedAt != nil
}

// ConfirmEmail marks the email address as confirmed. Confirming twice keeps the first timestamp.
func (a *Account) ConfirmEmail(at time.Time) {
	if a.EmailConfirmedAt != nil {
		return
	}
	confirmedAt := at.UTC()
	a.EmailConfirmedAt = &confirmedAt
	a.UpdatedAt = confirmedAt
}

// ChangePasswordHash replaces the stored credential.
func (a *Account) ChangePasswordHash(passwordHash string) {
	a.PasswordHash = passwordHash
	a.UpdatedAt = time.Now().UTC()
}
