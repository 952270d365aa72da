package users

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/skyauth/internal/common"
	"github.com/dmitrijs2005/skyauth/internal/server/models"
	"github.com/google/uuid"
)

// MemoryRepository keeps users in process memory. The mutex plays the role
// of the unique index: concurrent Creates for one email serialise on it and
// exactly one wins.
type MemoryRepository struct {
	mu      sync.RWMutex
	byID    map[string]*models.User
	byEmail map[string]string
	now     func() time.Time
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byID:    make(map[string]*models.User),
		byEmail: make(map[string]string),
		now:     time.Now,
	}
}

func (r *MemoryRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byEmail[user.Email]; ok {
		return nil, common.ErrDuplicateEmail
	}

	created := *user
	if created.ID == "" {
		created.ID = uuid.NewString()
	}
	created.PasswordHash = append([]byte(nil), user.PasswordHash...)
	created.CreatedAt = r.now()

	r.byID[created.ID] = &created
	r.byEmail[created.Email] = created.ID

	return r.copyOf(created.ID), nil
}

func (r *MemoryRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[email]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return r.copyOf(id), nil
}

func (r *MemoryRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, ok := r.byID[id]; !ok {
		return nil, common.ErrorNotFound
	}
	return r.copyOf(id), nil
}

// Delete removes a user. It exists for tests that model an account removed
// after a token was issued.
func (r *MemoryRepository) Delete(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if u, ok := r.byID[id]; ok {
		delete(r.byEmail, u.Email)
		delete(r.byID, id)
	}
}

func (r *MemoryRepository) copyOf(id string) *models.User {
	u := *r.byID[id]
	u.PasswordHash = append([]byte(nil), u.PasswordHash...)
	return &u
}
