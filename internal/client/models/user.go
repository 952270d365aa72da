// Package models holds the values the CLI shows to the user.
package models

// User is the public view of an account as returned by the server.
type User struct {
	ID    string
	Email string
	Role  string
}
