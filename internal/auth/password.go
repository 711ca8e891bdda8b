// Package auth holds the stateless authentication primitives: password
// hashing/verification and the JWT codec for access and refresh tokens.
package auth

import "golang.org/x/crypto/bcrypt"

// MinHashCost is the lowest bcrypt cost factor the backend will accept.
// Hashes are slow on purpose; configuration may raise the cost, never
// lower it below this floor.
const MinHashCost = 12

// PasswordHasher hashes plaintext passwords and verifies candidates against
// stored hashes. It has no state besides the cost factor.
type PasswordHasher struct {
	cost int
}

func NewPasswordHasher(cost int) *PasswordHasher {
	if cost < MinHashCost {
		cost = MinHashCost
	}
	return &PasswordHasher{cost: cost}
}

// Hash returns the salted bcrypt hash of plain. The salt is generated and
// embedded by bcrypt itself.
func (h *PasswordHasher) Hash(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Check reports whether plain matches the stored hash. The comparison is
// constant-time inside bcrypt; a mismatch yields false, never an error.
func (h *PasswordHasher) Check(plain, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
