// Package server wires configuration, storage and services together and runs
// the HTTP and gRPC endpoints until the process is asked to stop.
package server

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/skyauth/internal/logging"
	"github.com/dmitrijs2005/skyauth/internal/server/config"
	gs "github.com/dmitrijs2005/skyauth/internal/server/grpc"
	"github.com/dmitrijs2005/skyauth/internal/server/httpapi"
	"github.com/dmitrijs2005/skyauth/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/skyauth/internal/server/services"
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	repomanager repomanager.RepositoryManager
	authService *services.AuthService
}

// NewApp connects to PostgreSQL, applies migrations and builds the services.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.New(c.LogBackend, os.Stdout)

	rm, err := repomanager.NewPostgresRepositoryManager(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	if err := rm.RunMigrations(ctx); err != nil {
		_ = rm.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	app, err := NewAppWithManager(c, logger, rm)
	if err != nil {
		_ = rm.Close()
		return nil, err
	}
	return app, nil
}

// NewAppWithManager builds an App over an already prepared repository
// manager.
func NewAppWithManager(c *config.Config, l logging.Logger, rm repomanager.RepositoryManager) (*App, error) {
	as, err := services.NewAuthService(rm.Users(), c, l)
	if err != nil {
		return nil, fmt.Errorf("auth service init error: %w", err)
	}
	return &App{config: c, logger: l, repomanager: rm, authService: as}, nil
}

func (app *App) initSignalHandler(ctx context.Context, cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		defer signal.Stop(sigs)
		select {
		case <-sigs:
			cancelFunc()
		case <-ctx.Done():
		}
	}()
}

// Run serves HTTP and gRPC until ctx is cancelled, a signal arrives or either
// server fails. The first server error is returned.
func (app *App) Run(ctx context.Context) error {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(ctx, cancelFunc)

	servers := []interface{ Run(context.Context) error }{
		httpapi.NewHTTPServer(app.config.EndpointAddrHTTP, app.logger, app.authService),
		gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.authService),
	}

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)

	for _, s := range servers {
		s := s
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := s.Run(ctx); err != nil {
				app.logger.Error(ctx, err.Error())
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
				cancelFunc()
			}
		}()
	}

	wg.Wait()

	if err := app.repomanager.Close(); err != nil {
		errs = append(errs, fmt.Errorf("closing storage: %w", err))
	}

	app.logger.Info(ctx, "App stopped")
	return errors.Join(errs...)
}
