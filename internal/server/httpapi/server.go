// Package httpapi exposes AuthService over HTTP with fiber.
package httpapi

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/dmitrijs2005/skyauth/internal/common"
	"github.com/dmitrijs2005/skyauth/internal/logging"
	"github.com/dmitrijs2005/skyauth/internal/server/apierr"
	"github.com/dmitrijs2005/skyauth/internal/server/models"
	"github.com/dmitrijs2005/skyauth/internal/server/services"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

const shutdownTimeout = 5 * time.Second

// AuthService is what the HTTP surface needs from the service layer.
type AuthService interface {
	Register(ctx context.Context, email, password, role string) (*models.User, error)
	Login(ctx context.Context, email, password string) (*services.LoginResult, error)
	WhoAmI(ctx context.Context, token string) (*models.User, error)
	Authenticate(token string) (models.Claims, error)
}

type HTTPServer struct {
	address string
	app     *fiber.App
	logger  logging.Logger
}

func NewHTTPServer(a string, l logging.Logger, as AuthService) *HTTPServer {
	l = l.With("module", "http_server")
	return &HTTPServer{
		address: a,
		app:     NewApp(l, as),
		logger:  l,
	}
}

// NewApp builds the fiber application with every route registered.
func NewApp(l logging.Logger, as AuthService) *fiber.App {
	h := &handler{auth: as, logger: l}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          h.errorHandler,
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Content-Type, " + common.AuthTokenHeaderName + ", " + fiber.HeaderAuthorization,
	}))

	app.Get("/healthz", h.health)

	app.Post("/auth", h.action)
	app.Get("/auth", h.whoAmI)
	app.All("/auth", h.methodNotAllowed)

	app.Post("/auth/register", h.register)
	app.All("/auth/register", h.methodNotAllowed)
	app.Post("/auth/login", h.login)
	app.All("/auth/login", h.methodNotAllowed)
	app.Get("/auth/me", h.whoAmI)
	app.All("/auth/me", h.methodNotAllowed)

	return app
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *HTTPServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		if err := s.app.ShutdownWithTimeout(shutdownTimeout); err != nil {
			s.logger.Error(ctx, "HTTP shutdown error", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	return s.app.Listener(listen)
}

// writeError renders err as {"error": message}. Causes of internal errors
// are logged and never sent.
func writeError(c *fiber.Ctx, l logging.Logger, err error) error {
	e := apierr.From(err)
	if e.Internal() {
		l.Error(c.UserContext(), "request failed", "path", c.Path(), "error", err)
	}
	return c.Status(e.HTTPStatus).JSON(apierr.Body{Error: e.Message})
}

func (h *handler) errorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		switch fe.Code {
		case fiber.StatusMethodNotAllowed:
			return writeError(c, h.logger, common.ErrMethodNotAllowed)
		case fiber.StatusNotFound:
			return c.Status(fiber.StatusNotFound).JSON(apierr.Body{Error: "Not found"})
		}
	}
	return writeError(c, h.logger, err)
}
