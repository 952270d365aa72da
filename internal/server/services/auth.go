// Package services contains server-side business logic. This file implements
// AuthService, which registers users, logs them in, and resolves the caller
// behind a token.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/skyauth/internal/common"
	"github.com/dmitrijs2005/skyauth/internal/logging"
	"github.com/dmitrijs2005/skyauth/internal/server/access"
	"github.com/dmitrijs2005/skyauth/internal/server/config"
	"github.com/dmitrijs2005/skyauth/internal/server/models"
	"github.com/dmitrijs2005/skyauth/internal/server/password"
	"github.com/dmitrijs2005/skyauth/internal/server/repositories/users"
	"github.com/dmitrijs2005/skyauth/internal/server/token"
	"github.com/dmitrijs2005/skyauth/internal/server/validation"
)

// LoginResult is a freshly issued token together with the user it was issued
// for.
type LoginResult struct {
	Token string
	User  *models.User
}

// AuthService provides authentication-related operations:
// - Register: create users
// - Login: verify credentials and mint tokens
// - WhoAmI: resolve the user behind a token
type AuthService struct {
	users     users.Repository
	hasher    *password.Hasher
	issuer    *token.Issuer
	verifier  *token.Verifier
	validator *validation.Validator
	logger    logging.Logger

	// hash of a random password, compared against on unknown emails so a
	// miss costs the same as a wrong password
	dummyHash []byte
}

type Option func(*options)

type options struct {
	now       func() time.Time
	validator *validation.Validator
}

// WithClock replaces time.Now for token issuance and verification.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithValidator replaces the default registration validator.
func WithValidator(v *validation.Validator) Option {
	return func(o *options) { o.validator = v }
}

// NewAuthService constructs an AuthService over repo using the secret, token
// lifetime and bcrypt cost from cfg.
func NewAuthService(repo users.Repository, cfg *config.Config, l logging.Logger, opts ...Option) (*AuthService, error) {
	o := options{now: time.Now, validator: validation.New()}
	for _, opt := range opts {
		opt(&o)
	}

	hasher, err := password.NewHasher(cfg.BcryptCost)
	if err != nil {
		return nil, err
	}
	secret := []byte(cfg.SecretKey)
	issuer, err := token.NewIssuer(secret, cfg.TokenValidityDuration, token.WithIssuerClock(o.now))
	if err != nil {
		return nil, err
	}
	verifier, err := token.NewVerifier(secret, token.WithVerifierClock(o.now))
	if err != nil {
		return nil, err
	}

	dummy, err := common.MakeRandHexString(32)
	if err != nil {
		return nil, fmt.Errorf("generating dummy password: %w", err)
	}
	dummyHash, err := hasher.Hash(dummy)
	if err != nil {
		return nil, err
	}

	return &AuthService{
		users:     repo,
		hasher:    hasher,
		issuer:    issuer,
		verifier:  verifier,
		validator: o.validator,
		logger:    l.With("module", "auth_service"),
		dummyHash: dummyHash,
	}, nil
}

// Register validates the input, hashes the password and stores a new user.
// An empty role becomes common.DefaultRole. A taken email yields
// common.ErrDuplicateEmail; the store decides that, not a prior lookup.
func (s *AuthService) Register(ctx context.Context, email, pw, role string) (*models.User, error) {
	if err := s.validator.Register(validation.RegisterInput{Email: email, Password: pw, Role: role}); err != nil {
		return nil, err
	}
	if role == "" {
		role = common.DefaultRole
	}

	hash, err := s.hasher.Hash(pw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}

	u, err := s.users.Create(ctx, &models.User{Email: email, PasswordHash: hash, Role: role})
	if err != nil {
		if errors.Is(err, common.ErrDuplicateEmail) {
			return nil, common.ErrDuplicateEmail
		}
		s.logger.Error(ctx, "error creating user", "error", err)
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	s.logger.Info(ctx, "user registered", "user_id", u.ID, "email", u.Email, "role", u.Role)
	return u, nil
}

// Login checks email and password and, on success, issues a token. An unknown
// email and a wrong password both yield common.ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, pw string) (*LoginResult, error) {
	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, common.ErrorNotFound) {
			s.logger.Error(ctx, "error searching user", "error", err)
			return nil, fmt.Errorf("error searching user: %w", err)
		}
		s.hasher.Verify(pw, s.dummyHash)
		s.logger.Warn(ctx, "login failed")
		return nil, common.ErrInvalidCredentials
	}

	if !s.hasher.Verify(pw, u.PasswordHash) {
		s.logger.Warn(ctx, "login failed")
		return nil, common.ErrInvalidCredentials
	}

	tok, err := s.issuer.Issue(u.ID, u.Role)
	if err != nil {
		s.logger.Error(ctx, "error issuing token", "error", err)
		return nil, fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}

	s.logger.Info(ctx, "user logged in", "user_id", u.ID)
	return &LoginResult{Token: tok, User: u}, nil
}

// WhoAmI verifies tok and re-reads its user from the store. A user removed
// after issuance yields common.ErrorNotFound.
func (s *AuthService) WhoAmI(ctx context.Context, tok string) (*models.User, error) {
	claims, err := s.Authenticate(tok)
	if err != nil {
		return nil, err
	}

	u, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		s.logger.Error(ctx, "error searching user", "error", err)
		return nil, fmt.Errorf("error searching user: %w", err)
	}
	return u, nil
}

// Authenticate verifies tok and returns its claims without touching the
// store.
func (s *AuthService) Authenticate(tok string) (models.Claims, error) {
	return s.verifier.Verify(tok)
}

// Authorize applies the owner-or-allowed-role policy. A deny wraps
// common.ErrPermissionDenied.
func (s *AuthService) Authorize(claims models.Claims, r access.Resource) error {
	return access.CanAccessResource(claims, r).Err()
}

// AuthorizeOwner applies the owner-role policy.
func (s *AuthService) AuthorizeOwner(claims models.Claims) error {
	return access.RequireOwnerRole(claims).Err()
}
