// Package adapters implements adapter interfaces from the application layer.
package adapters

import (
	"crypto/sha256"
	"encoding/base64"

	"golang.org/x/crypto/bcrypt"

	"github.com/ethergyx/backend/internal/application/adapter"
)

const (
	// MinBcryptCost is the lowest work factor accepted for new hashes.
	MinBcryptCost = 10
	// DefaultBcryptCost is used when no cost is configured.
	DefaultBcryptCost = 12

	// bcryptMaxInput is the number of password bytes bcrypt actually reads.
	bcryptMaxInput = 72
)

// passwordService implements the adapter.PasswordService interface with bcrypt.
type passwordService struct {
	cost int
}

// NewPasswordService creates a new password service. Costs below MinBcryptCost are raised to it.
func NewPasswordService(cost int) adapter.PasswordService {
	if cost < MinBcryptCost {
		cost = MinBcryptCost
	}
	if cost > bcrypt.MaxCost {
		cost = bcrypt.MaxCost
	}
	return &passwordService{cost: cost}
}

// HashPassword hashes a plain text password with a fresh salt.
func (s *passwordService) HashPassword(password string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword(bcryptInput(password), s.cost)
	if err != nil {
		return "", err
	}
	return string(hashedBytes), nil
}

// VerifyPassword compares a plain text password with a hashed password.
func (s *passwordService) VerifyPassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), bcryptInput(password))
}

// NeedsRehash reports whether the hash uses a lower cost than the service.
// Unparseable hashes are left alone; VerifyPassword already rejects them.
func (s *passwordService) NeedsRehash(hashedPassword string) bool {
	cost, err := bcrypt.Cost([]byte(hashedPassword))
	if err != nil {
		return false
	}
	return cost < s.cost
}

// bcryptInput pre-hashes passwords longer than bcrypt's input limit so two long
// passwords sharing the first 72 bytes do not verify against each other.
// The digest is base64 encoded because bcrypt input must not contain NUL bytes.
func bcryptInput(password string) []byte {
	if len(password) <= bcryptMaxInput {
		return []byte(password)
	}
	sum := sha256.Sum256([]byte(password))
	return []byte(base64.StdEncoding.EncodeToString(sum[:]))
}
