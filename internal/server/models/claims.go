package models

import "time"

// Claims is the verified content of a signed token. It has no store of its
// own and is rebuilt from the token on every request.
type Claims struct {
	UserID    string
	Role      string
	IssuedAt  time.Time
	ExpiresAt time.Time
}
