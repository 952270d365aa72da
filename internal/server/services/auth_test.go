package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/skyauth/internal/common"
	"github.com/dmitrijs2005/skyauth/internal/logging"
	"github.com/dmitrijs2005/skyauth/internal/server/access"
	"github.com/dmitrijs2005/skyauth/internal/server/config"
	"github.com/dmitrijs2005/skyauth/internal/server/models"
	"github.com/dmitrijs2005/skyauth/internal/server/repositories/users"
	"github.com/dmitrijs2005/skyauth/internal/server/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// --- helpers ---

type recordingLogger struct {
	mu    sync.Mutex
	lines []string
}

func (l *recordingLogger) log(msg string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, fmt.Sprint(append([]any{msg}, args...)...))
}

func (l *recordingLogger) Debug(_ context.Context, msg string, args ...any) { l.log(msg, args...) }
func (l *recordingLogger) Info(_ context.Context, msg string, args ...any)  { l.log(msg, args...) }
func (l *recordingLogger) Warn(_ context.Context, msg string, args ...any)  { l.log(msg, args...) }
func (l *recordingLogger) Error(_ context.Context, msg string, args ...any) { l.log(msg, args...) }
func (l *recordingLogger) With(args ...any) logging.Logger                  { return l }

func (l *recordingLogger) all() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return strings.Join(l.lines, "\n")
}

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func testConfig() *config.Config {
	return &config.Config{
		SecretKey:             strings.Repeat("k", config.MinSecretKeyLength),
		TokenValidityDuration: time.Hour,
		BcryptCost:            bcrypt.MinCost,
	}
}

func newService(t *testing.T, repo users.Repository, opts ...Option) *AuthService {
	t.Helper()
	s, err := NewAuthService(repo, testConfig(), logging.Nop{}, opts...)
	require.NoError(t, err)
	return s
}

type failingRepo struct{ err error }

func (f failingRepo) Create(context.Context, *models.User) (*models.User, error) { return nil, f.err }
func (f failingRepo) FindByEmail(context.Context, string) (*models.User, error)  { return nil, f.err }
func (f failingRepo) FindByID(context.Context, string) (*models.User, error)     { return nil, f.err }

// --- tests ---

func TestNewAuthService_BadConfig(t *testing.T) {
	cfg := testConfig()
	cfg.SecretKey = ""
	_, err := NewAuthService(users.NewMemoryRepository(), cfg, logging.Nop{})
	require.Error(t, err)

	cfg = testConfig()
	cfg.BcryptCost = 100
	_, err = NewAuthService(users.NewMemoryRepository(), cfg, logging.Nop{})
	require.Error(t, err)
}

func TestEndToEnd(t *testing.T) {
	ctx := context.Background()
	s := newService(t, users.NewMemoryRepository())

	u, err := s.Register(ctx, "a@x.com", "secret1", "user")
	require.NoError(t, err)
	require.NotEmpty(t, u.ID)
	assert.Equal(t, "a@x.com", u.Email)
	assert.Equal(t, "user", u.Role)

	res, err := s.Login(ctx, "a@x.com", "secret1")
	require.NoError(t, err)
	require.NotEmpty(t, res.Token)
	assert.Equal(t, u.ID, res.User.ID)

	me, err := s.WhoAmI(ctx, res.Token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, me.ID)
	assert.Equal(t, "a@x.com", me.Email)
	assert.Equal(t, "user", me.Role)

	_, err = s.Login(ctx, "a@x.com", "wrong")
	require.ErrorIs(t, err, common.ErrInvalidCredentials)
}

func TestRegister_DefaultRole(t *testing.T) {
	s := newService(t, users.NewMemoryRepository())

	u, err := s.Register(context.Background(), "a@x.com", "secret1", "")
	require.NoError(t, err)
	assert.Equal(t, common.DefaultRole, u.Role)
}

func TestRegister_PasswordIsHashed(t *testing.T) {
	repo := users.NewMemoryRepository()
	s := newService(t, repo)

	u, err := s.Register(context.Background(), "a@x.com", "secret1", "user")
	require.NoError(t, err)

	stored, err := repo.FindByID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.NotEqual(t, []byte("secret1"), stored.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword(stored.PasswordHash, []byte("secret1")))
}

func TestRegister_Validation(t *testing.T) {
	s := newService(t, users.NewMemoryRepository())
	ctx := context.Background()

	_, err := s.Register(ctx, "not-an-email", "secret1", "user")
	require.ErrorIs(t, err, common.ErrValidation)

	_, err = s.Register(ctx, "a@x.com", "", "user")
	require.ErrorIs(t, err, common.ErrValidation)

	_, err = s.Register(ctx, "a@x.com", strings.Repeat("p", 73), "user")
	require.ErrorIs(t, err, common.ErrValidation)
}

func TestRegister_CustomValidator(t *testing.T) {
	v := validation.New(validation.WithRoleHook(func(r string) error {
		if r != "user" && r != "owner" {
			return errors.New("unknown role")
		}
		return nil
	}))
	s := newService(t, users.NewMemoryRepository(), WithValidator(v))

	_, err := s.Register(context.Background(), "a@x.com", "secret1", "admin")
	require.ErrorIs(t, err, common.ErrValidation)
}

func TestRegister_Duplicate(t *testing.T) {
	s := newService(t, users.NewMemoryRepository())
	ctx := context.Background()

	_, err := s.Register(ctx, "a@x.com", "secret1", "user")
	require.NoError(t, err)

	_, err = s.Register(ctx, "a@x.com", "other-pw", "owner")
	require.ErrorIs(t, err, common.ErrDuplicateEmail)
}

func TestRegister_EmailIsCaseSensitive(t *testing.T) {
	s := newService(t, users.NewMemoryRepository())
	ctx := context.Background()

	_, err := s.Register(ctx, "a@x.com", "secret1", "user")
	require.NoError(t, err)
	_, err = s.Register(ctx, "A@x.com", "secret1", "user")
	require.NoError(t, err)
}

func TestRegister_Concurrent(t *testing.T) {
	s := newService(t, users.NewMemoryRepository())
	const n = 16

	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = s.Register(context.Background(), "race@x.com", "secret1", "user")
		}(i)
	}
	wg.Wait()

	ok, dup := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, common.ErrDuplicateEmail):
			dup++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, n-1, dup)
}

func TestRegister_StoreFailure(t *testing.T) {
	s := newService(t, failingRepo{err: errors.New("db down")})

	_, err := s.Register(context.Background(), "a@x.com", "secret1", "user")
	require.Error(t, err)
	assert.False(t, errors.Is(err, common.ErrDuplicateEmail))
}

func TestLogin_NoAccountOracle(t *testing.T) {
	s := newService(t, users.NewMemoryRepository())
	ctx := context.Background()

	_, err := s.Register(ctx, "a@x.com", "secret1", "user")
	require.NoError(t, err)

	_, wrongPw := s.Login(ctx, "a@x.com", "nope")
	_, noUser := s.Login(ctx, "nobody@x.com", "nope")

	require.ErrorIs(t, wrongPw, common.ErrInvalidCredentials)
	require.ErrorIs(t, noUser, common.ErrInvalidCredentials)
	assert.Equal(t, wrongPw.Error(), noUser.Error())
}

func TestLogin_StoreFailure(t *testing.T) {
	s := newService(t, failingRepo{err: errors.New("db down")})

	_, err := s.Login(context.Background(), "a@x.com", "secret1")
	require.Error(t, err)
	assert.False(t, errors.Is(err, common.ErrInvalidCredentials))
}

func TestWhoAmI_TokenFailures(t *testing.T) {
	c := &clock{t: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	s := newService(t, users.NewMemoryRepository(), WithClock(c.now))
	ctx := context.Background()

	_, err := s.Register(ctx, "a@x.com", "secret1", "user")
	require.NoError(t, err)
	res, err := s.Login(ctx, "a@x.com", "secret1")
	require.NoError(t, err)

	_, err = s.WhoAmI(ctx, "")
	require.ErrorIs(t, err, common.ErrNoToken)

	_, err = s.WhoAmI(ctx, "garbage")
	require.True(t, common.IsTokenInvalid(err))

	tampered := res.Token[:len(res.Token)-2] + "xx"
	_, err = s.WhoAmI(ctx, tampered)
	require.True(t, common.IsTokenInvalid(err))

	c.t = c.t.Add(2 * time.Hour)
	_, err = s.WhoAmI(ctx, res.Token)
	require.ErrorIs(t, err, common.ErrTokenExpired)
}

func TestWhoAmI_UserRemoved(t *testing.T) {
	repo := users.NewMemoryRepository()
	s := newService(t, repo)
	ctx := context.Background()

	u, err := s.Register(ctx, "a@x.com", "secret1", "user")
	require.NoError(t, err)
	res, err := s.Login(ctx, "a@x.com", "secret1")
	require.NoError(t, err)

	repo.Delete(u.ID)

	_, err = s.WhoAmI(ctx, res.Token)
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestWhoAmI_RereadsStore(t *testing.T) {
	repo := users.NewMemoryRepository()
	s := newService(t, repo)
	ctx := context.Background()

	_, err := s.Register(ctx, "a@x.com", "secret1", "user")
	require.NoError(t, err)
	res, err := s.Login(ctx, "a@x.com", "secret1")
	require.NoError(t, err)

	s.users = failingRepo{err: errors.New("db down")}
	_, err = s.WhoAmI(ctx, res.Token)
	require.Error(t, err)
	assert.False(t, errors.Is(err, common.ErrorNotFound))
}

func TestAuthorize(t *testing.T) {
	s := newService(t, users.NewMemoryRepository())
	owner := models.Claims{UserID: "u1", Role: "user"}
	other := models.Claims{UserID: "u2", Role: "user"}
	admin := models.Claims{UserID: "u3", Role: "admin"}
	r := access.Resource{OwnerID: "u1", AllowedRoles: []string{"admin"}}

	assert.NoError(t, s.Authorize(owner, r))
	assert.NoError(t, s.Authorize(admin, r))
	assert.ErrorIs(t, s.Authorize(other, r), common.ErrPermissionDenied)

	assert.NoError(t, s.AuthorizeOwner(models.Claims{UserID: "u", Role: common.OwnerRole}))
	assert.ErrorIs(t, s.AuthorizeOwner(admin), common.ErrPermissionDenied)
}

func TestAuthenticate_ClaimsFromLogin(t *testing.T) {
	s := newService(t, users.NewMemoryRepository())
	ctx := context.Background()

	u, err := s.Register(ctx, "a@x.com", "secret1", "owner")
	require.NoError(t, err)
	res, err := s.Login(ctx, "a@x.com", "secret1")
	require.NoError(t, err)

	claims, err := s.Authenticate(res.Token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.UserID)
	assert.Equal(t, "owner", claims.Role)
}

func TestSecretsNeverLogged(t *testing.T) {
	l := &recordingLogger{}
	s, err := NewAuthService(users.NewMemoryRepository(), testConfig(), l)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = s.Register(ctx, "a@x.com", "hunter2-secret", "user")
	require.NoError(t, err)
	res, err := s.Login(ctx, "a@x.com", "hunter2-secret")
	require.NoError(t, err)
	_, _ = s.Login(ctx, "a@x.com", "wrong-secret")
	_, _ = s.WhoAmI(ctx, res.Token)

	out := l.all()
	assert.NotContains(t, out, "hunter2-secret")
	assert.NotContains(t, out, "wrong-secret")
	assert.NotContains(t, out, res.Token)
	assert.NotContains(t, out, string(res.User.PasswordHash))
}
