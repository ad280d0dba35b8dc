package contacts

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// DefaultHashCost keeps interactive login latency acceptable while staying
// expensive enough to brute force offline.
const DefaultHashCost = 12

// Hasher wraps bcrypt with a tunable cost factor.
type Hasher struct {
	cost int
}

var _ PasswordAuthenticator = (*Hasher)(nil)

// NewHasher returns a Hasher with the given cost. Costs outside bcrypt's
// supported range fall back to DefaultHashCost.
func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultHashCost
	}
	return &Hasher{cost: cost}
}

// HashPassword will generate a password hash
func (h *Hasher) HashPassword(password string) (string, error) {
	if password == "" {
		return "", ErrNoEmptyString
	}

	b, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	return string(b), err
}

// ComparePasswordAndHash will validate the given cleartext password matches
// the hashed password. bcrypt's comparison is constant time with respect to
// the password content.
func (h *Hasher) ComparePasswordAndHash(password, hash string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrMismatchedHashAndPassword
		}
		return err
	}
	return nil
}

// HashPassword hashes with the default cost factor.
func HashPassword(password string) (string, error) {
	return NewHasher(DefaultHashCost).HashPassword(password)
}

// ComparePasswordAndHash validates password against hash using default settings.
func ComparePasswordAndHash(password, hash string) error {
	return NewHasher(DefaultHashCost).ComparePasswordAndHash(password, hash)
}
