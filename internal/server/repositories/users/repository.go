// Package users is the credential store: user records keyed by a unique email.
//
// The store is the only arbiter of email uniqueness. Callers must not check
// for an existing account before Create; under concurrency only the store's
// constraint decides, and the losers get common.ErrDuplicateEmail.
package users

import (
	"context"

	"github.com/dmitrijs2005/skyauth/internal/server/models"
)

type Repository interface {
	// Create stores user and returns it with ID and CreatedAt filled in.
	Create(ctx context.Context, user *models.User) (*models.User, error)
	// FindByEmail returns common.ErrorNotFound when no user has email.
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	// FindByID returns common.ErrorNotFound when no user has id.
	FindByID(ctx context.Context, id string) (*models.User, error)
}
