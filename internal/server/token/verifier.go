package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/skyauth/internal/common"
	"github.com/dmitrijs2005/skyauth/internal/server/models"
	"github.com/golang-jwt/jwt/v5"
)

// Verifier validates tokens produced by an Issuer sharing the same secret.
type Verifier struct {
	secret []byte
	now    func() time.Time
}

// VerifierOption customises a Verifier.
type VerifierOption func(*Verifier)

// WithVerifierClock replaces time.Now. Used by tests.
func WithVerifierClock(now func() time.Time) VerifierOption {
	return func(v *Verifier) { v.now = now }
}

func NewVerifier(secret []byte, opts ...VerifierOption) (*Verifier, error) {
	if len(secret) == 0 {
		return nil, ErrEmptySecret
	}
	v := &Verifier{secret: secret, now: time.Now}
	for _, opt := range opts {
		opt(v)
	}
	return v, nil
}

// Verify checks the token signature, then its expiry, and returns the claims.
//
// Failures wrap exactly one of common.ErrTokenMalformed,
// common.ErrTokenSignatureInvalid or common.ErrTokenExpired. An empty string
// is common.ErrNoToken.
func (v *Verifier) Verify(tokenString string) (models.Claims, error) {
	if tokenString == "" {
		return models.Claims{}, common.ErrNoToken
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(*jwt.Token) (any, error) { return v.secret, nil },
		jwt.WithValidMethods([]string{signingMethod.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithStrictDecoding(),
		jwt.WithTimeFunc(v.now),
	)
	if err != nil {
		return models.Claims{}, classify(err)
	}

	// The library accepts exp == now; a token is already expired at that instant.
	if !v.now().Before(claims.ExpiresAt.Time) {
		return models.Claims{}, common.ErrTokenExpired
	}

	if claims.UserID == "" || claims.Role == "" {
		return models.Claims{}, fmt.Errorf("%w: missing user_id or role", common.ErrTokenMalformed)
	}

	out := models.Claims{
		UserID:    claims.UserID,
		Role:      claims.Role,
		ExpiresAt: claims.ExpiresAt.Time,
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	return out, nil
}

// classify maps jwt parse errors onto the token failure sentinels. jwt/v5
// verifies the signature before validating claims, so an expiry error implies
// a good signature.
func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return fmt.Errorf("%w: %v", common.ErrTokenSignatureInvalid, err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return common.ErrTokenExpired
	default:
		return fmt.Errorf("%w: %v", common.ErrTokenMalformed, err)
	}
}
