package client

import (
	"context"

	"github.com/dmitrijs2005/skyauth/internal/client/models"
)

type Client interface {
	Close() error
	Register(ctx context.Context, email, password, role string) (*models.User, error)
	Login(ctx context.Context, email, password string) (*models.User, error)
	WhoAmI(ctx context.Context) (*models.User, error)
	Ping(ctx context.Context) error
	Logout()
	LoggedIn() bool
}
