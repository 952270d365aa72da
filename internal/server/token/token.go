// Package token issues and verifies HS256-signed access tokens.
//
// A token carries the user id, the role, the issue time, the expiry and a
// unique id. Verification checks the signature before looking at any claim,
// and reports expired tokens separately from tokens that are garbage.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultValidity is how long an issued token stays valid.
const DefaultValidity = 7 * 24 * time.Hour

// ErrEmptySecret is returned when an Issuer or Verifier is built without a key.
var ErrEmptySecret = errors.New("token signing secret is empty")

var signingMethod = jwt.SigningMethodHS256

// Claims is the signed payload. user_id and role keep the claim names
// existing clients decode.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}
