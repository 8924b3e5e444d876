package utils

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// DefaultCost is the bcrypt work factor used for stored passwords.
const DefaultCost = 12

// Hasher hashes and verifies passwords with bcrypt. The salt is generated per
// call and embedded in the output.
type Hasher struct {
	Cost int
}

// NewHasher returns a hasher using DefaultCost.
func NewHasher() Hasher {
	return Hasher{Cost: DefaultCost}
}

// Hash hashes a password using bcrypt. Passwords over MaxPasswordBytes
// fail with a *ValidationError.
func (h Hasher) Hash(password string) (string, error) {
	cost := h.Cost
	if cost == 0 {
		cost = DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", ValidatePassword(password)
	}
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Verify reports whether password matches hash. A malformed hash never matches.
func (h Hasher) Verify(password, hash string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
