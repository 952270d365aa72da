// Package models holds the server-side domain values shared by repositories,
// services and transports.
package models

import "time"

// User is a stored account. PasswordHash is opaque and must never leave the
// server or reach a log line.
type User struct {
	ID           string    `db:"id"`
	Email        string    `db:"email"`
	PasswordHash []byte    `db:"password_hash"`
	Role         string    `db:"role"`
	CreatedAt    time.Time `db:"created_at"`
}
