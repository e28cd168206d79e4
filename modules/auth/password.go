package auth

import (
	"golang.org/x/crypto/bcrypt"
)

// defaultBcryptCost balances hashing time against brute-force
// resistance for interactive logins.
const defaultBcryptCost = 12

// PasswordHasher wraps bcrypt hashing for stored credentials. Inputs
// longer than 72 bytes are rejected upstream by Register, since bcrypt
// silently truncates beyond that.
type PasswordHasher struct {
	cost int
}

// NewPasswordHasher returns a hasher at the default cost.
func NewPasswordHasher() *PasswordHasher {
	return NewPasswordHasherWithCost(defaultBcryptCost)
}

// NewPasswordHasherWithCost returns a hasher at the given cost. Costs
// outside bcrypt's supported range fall back to the default; tests use
// bcrypt.MinCost to keep hashing fast.
func NewPasswordHasherWithCost(cost int) *PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = defaultBcryptCost
	}
	return &PasswordHasher{cost: cost}
}

// Hash derives a salted bcrypt hash for the password.
func (h *PasswordHasher) Hash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Verify reports whether the password matches the stored hash.
func (h *PasswordHasher) Verify(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
