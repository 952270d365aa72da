// Package repomanager vends credential-store implementations and owns the
// database handle they share.
package repomanager

import (
	"context"

	"github.com/dmitrijs2005/skyauth/internal/server/repositories/users"
)

type RepositoryManager interface {
	// RunMigrations brings the schema up to date.
	RunMigrations(ctx context.Context) error
	// Users returns the credential store.
	Users() users.Repository
	Close() error
}

// InMemoryRepositoryManager keeps everything in process memory. It has no
// schema and nothing to close.
type InMemoryRepositoryManager struct {
	users *users.MemoryRepository
}

func NewInMemoryRepositoryManager() *InMemoryRepositoryManager {
	return &InMemoryRepositoryManager{users: users.NewMemoryRepository()}
}

func (m *InMemoryRepositoryManager) RunMigrations(context.Context) error { return nil }

func (m *InMemoryRepositoryManager) Users() users.Repository { return m.users }

func (m *InMemoryRepositoryManager) Close() error { return nil }
