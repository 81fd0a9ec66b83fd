// Package app assembles the eshop web application from its configuration.
package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rogerio-castellano/eshop/internal/auth"
	"github.com/rogerio-castellano/eshop/internal/config"
	"github.com/rogerio-castellano/eshop/internal/db"
	"github.com/rogerio-castellano/eshop/internal/http/handlers"
	rl "github.com/rogerio-castellano/eshop/internal/http/rate_limiter"
	"github.com/rogerio-castellano/eshop/internal/http/router"
	"github.com/rogerio-castellano/eshop/internal/redissvc"
	"github.com/rogerio-castellano/eshop/internal/repo"
	"go.uber.org/zap"
)

const (
	visitorCleanupInterval = time.Minute
	visitorIdleTimeout     = 5 * time.Minute
)

type App struct {
	cfg     *config.Config
	lggr    *zap.Logger
	handler http.Handler
	limiter *rl.Limiter
	close   func() error
}

// New opens the configured product store and builds the HTTP handler.
func New(ctx context.Context, cfg *config.Config, lggr *zap.Logger) (*App, error) {
	if lggr == nil {
		lggr = zap.NewNop()
	}

	products, closeStore, err := openProducts(ctx, cfg, lggr)
	if err != nil {
		return nil, err
	}

	secret := cfg.Auth.JWTSecret
	if secret == "" {
		secret = uuid.NewString()
		lggr.Warn("No JWT secret configured, using a random one; tokens will not survive a restart")
	}
	issuer := auth.NewIssuer(secret, auth.DefaultTokenTTL)
	admin := auth.Credentials{Username: cfg.Auth.AdminUsername, PasswordHash: cfg.Auth.AdminPasswordHash}
	if admin.PasswordHash == "" {
		lggr.Warn("No admin password hash configured, API logins are disabled")
	}

	srv, err := handlers.NewServer(products, issuer, admin, lggr.Named("handlers"))
	if err != nil {
		_ = closeStore()
		return nil, err
	}

	var limiter *rl.Limiter
	if cfg.RateLimit.RPS > 0 {
		limiter = rl.New(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	}

	return &App{
		cfg:  cfg,
		lggr: lggr,
		handler: router.NewRouter(router.Options{
			Server:  srv,
			Issuer:  issuer,
			Limiter: limiter,
			Logger:  lggr,
		}),
		limiter: limiter,
		close:   closeStore,
	}, nil
}

func openProducts(ctx context.Context, cfg *config.Config, lggr *zap.Logger) (repo.ProductRepository, func() error, error) {
	switch cfg.Storage.Driver {
	case config.StoragePostgres:
		database, err := db.Connect(ctx, cfg.Database.URL, lggr.Named("db"))
		if err != nil {
			return nil, nil, err
		}
		lggr.Info("Using Postgres product storage")
		return repo.NewPostgresProductRepository(database), database.Close, nil
	case config.StorageRedis:
		svc, err := redissvc.Connect(ctx, cfg.Redis.Addr, cfg.Redis.DB, cfg.Redis.Prefix)
		if err != nil {
			return nil, nil, err
		}
		lggr.Info("Using Redis product storage", zap.String("addr", cfg.Redis.Addr))
		return repo.NewRedisProductRepository(svc), svc.Close, nil
	case config.StorageMemory, "":
		lggr.Info("Using in-memory product storage")
		return repo.NewInMemoryProductRepository(), func() error { return nil }, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

func (a *App) Handler() http.Handler { return a.handler }

// ListenAndServe listens on the configured port and serves until ctx is done.
func (a *App) ListenAndServe(ctx context.Context) error {
	l, err := net.Listen("tcp", fmt.Sprintf(":%d", a.cfg.Server.Port))
	if err != nil {
		return fmt.Errorf("listen on port %d: %w", a.cfg.Server.Port, err)
	}
	return a.Serve(ctx, l)
}

// Serve serves on l until ctx is done, then shuts down gracefully within the
// configured shutdown timeout.
func (a *App) Serve(ctx context.Context, l net.Listener) error {
	srv := &http.Server{
		Handler:           a.handler,
		ReadTimeout:       a.cfg.Server.ReadTimeout,
		ReadHeaderTimeout: a.cfg.Server.ReadTimeout,
		WriteTimeout:      a.cfg.Server.WriteTimeout,
	}

	if a.limiter != nil {
		go a.limiter.RunCleanup(ctx, visitorCleanupInterval, visitorIdleTimeout)
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(l) }()
	a.lggr.Info("Server running", zap.String("addr", l.Addr().String()))

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.lggr.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Close releases the product store.
func (a *App) Close() error {
	return a.close()
}
