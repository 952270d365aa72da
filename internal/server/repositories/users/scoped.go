package users

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/skyauth/internal/dbx"
	"github.com/dmitrijs2005/skyauth/internal/server/models"
)

// ScopedRepository runs every call in its own transaction: a write is either
// committed in full or rolled back, and the connection goes back to the pool
// on every exit path.
type ScopedRepository struct {
	db      dbx.TxBeginner
	newRepo func(dbx.DBTX) Repository
}

// NewScopedRepository wraps newRepo so each call gets a fresh transaction
// from db.
func NewScopedRepository(db dbx.TxBeginner, newRepo func(dbx.DBTX) Repository) *ScopedRepository {
	return &ScopedRepository{db: db, newRepo: newRepo}
}

var readOnly = &sql.TxOptions{ReadOnly: true}

func (r *ScopedRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	return dbx.WithTxValue(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) (*models.User, error) {
		return r.newRepo(tx).Create(ctx, user)
	})
}

func (r *ScopedRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return dbx.WithTxValue(ctx, r.db, readOnly, func(ctx context.Context, tx dbx.DBTX) (*models.User, error) {
		return r.newRepo(tx).FindByEmail(ctx, email)
	})
}

func (r *ScopedRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	return dbx.WithTxValue(ctx, r.db, readOnly, func(ctx context.Context, tx dbx.DBTX) (*models.User, error) {
		return r.newRepo(tx).FindByID(ctx, id)
	})
}
