package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound     = errors.New("not found")
	ErrDuplicateEmail = errors.New("user already exists")

	// Service-level errors.
	ErrorInternal         = errors.New("internal error")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrValidation         = errors.New("validation failed")
	ErrPermissionDenied   = errors.New("permission denied")
	ErrMethodNotAllowed   = errors.New("method not allowed")

	// Token errors. ErrNoToken is returned before any parsing happens.
	ErrNoToken               = errors.New("no token provided")
	ErrTokenExpired          = errors.New("token expired")
	ErrTokenMalformed        = errors.New("token malformed")
	ErrTokenSignatureInvalid = errors.New("token signature invalid")
)

// IsTokenInvalid reports whether err is one of the "token is garbage" failures,
// as opposed to an expired token.
func IsTokenInvalid(err error) bool {
	return errors.Is(err, ErrTokenMalformed) || errors.Is(err, ErrTokenSignatureInvalid)
}
