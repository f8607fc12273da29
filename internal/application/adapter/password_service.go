package adapter

// PasswordService hashes and verifies credentials with a slow, salted one-way hash.
type PasswordService interface {
	HashPassword(password string) (string, error)

	// VerifyPassword must compare in constant time with respect to the password.
	VerifyPassword(hashedPassword, password string) error

	// NeedsRehash reports whether a stored hash was produced with weaker
	// parameters than the service currently uses.
	NeedsRehash(hashedPassword string) bool
}
