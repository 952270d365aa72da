// Package password hashes and verifies user passwords with bcrypt.
//
// Every call to Hash draws a fresh salt, so hashing the same password twice
// yields different values. The cost factor is fixed per Hasher and embedded in
// each hash, so raising it later does not invalidate existing hashes.
package password

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// DefaultCost is the bcrypt work factor used when none is configured.
const DefaultCost = 12

// MaxLength is the longest password bcrypt accepts, in bytes.
const MaxLength = 72

var (
	ErrEmptyPassword   = errors.New("password must not be empty")
	ErrPasswordTooLong = fmt.Errorf("password must not exceed %d bytes", MaxLength)
)

// Hasher is a bcrypt-backed password hasher.
type Hasher struct {
	cost int
}

// NewHasher returns a Hasher with the given cost. A cost outside bcrypt's
// accepted range is an error.
func NewHasher(cost int) (*Hasher, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("invalid bcrypt cost %d", cost)
	}
	return &Hasher{cost: cost}, nil
}

// Cost returns the work factor used for new hashes.
func (h *Hasher) Cost() int { return h.cost }

// Hash returns a salted bcrypt hash of password.
func (h *Hasher) Hash(password string) ([]byte, error) {
	if err := CheckLength(password); err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	return hash, nil
}

// Verify reports whether password matches hash. A wrong password, an
// oversized password and a corrupt hash all report false.
func (h *Hasher) Verify(password string, hash []byte) bool {
	return bcrypt.CompareHashAndPassword(hash, []byte(password)) == nil
}

// CheckLength rejects passwords bcrypt cannot hash faithfully.
func CheckLength(password string) error {
	switch {
	case password == "":
		return ErrEmptyPassword
	case len(password) > MaxLength:
		return ErrPasswordTooLong
	}
	return nil
}
