// Package fakeapi is an in-memory implementation of the bookstore REST API
// for tests and local development.
package fakeapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/utafrali/bookshelf/internal/domain"
	"github.com/utafrali/bookshelf/pkg/health"
	"github.com/utafrali/bookshelf/pkg/middleware"
	"github.com/utafrali/bookshelf/pkg/pagination"
)

// Config configures a Server.
type Config struct {
	JWTSecret   string
	TokenTTL    time.Duration
	BcryptCost  int
	Seed        bool
	CORSOrigins []string
}

// DefaultConfig returns a seeded server with 30 minute tokens.
func DefaultConfig() Config {
	return Config{
		JWTSecret: "dev-secret-change-me",
		TokenTTL:  30 * time.Minute,
		Seed:      true,
	}
}

// Server is the HTTP handler of the fake backend.
type Server struct {
	store   *Store
	tokens  *TokenIssuer
	faults  *faultInjector
	handler http.Handler
}

// New builds a Server.
func New(cfg Config, logger *slog.Logger) (*Server, error) {
	tokens, err := NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		return nil, fmt.Errorf("token issuer: %w", err)
	}

	store := NewStore(cfg.BcryptCost)
	if cfg.Seed {
		if err := store.Seed(); err != nil {
			return nil, fmt.Errorf("seed store: %w", err)
		}
	}

	healthHandler := health.NewHandler()
	healthHandler.RegisterNonCritical("catalog", func(context.Context) error {
		if len(store.ListBooks(domain.BookFilter{}, pagination.Window{})) == 0 {
			return errors.New("catalog is empty")
		}
		return nil
	})

	cors := middleware.DefaultCORSConfig()
	if len(cfg.CORSOrigins) > 0 {
		cors.AllowedOrigins = cfg.CORSOrigins
	}

	s := &Server{store: store, tokens: tokens, faults: &faultInjector{}}
	h := &handler{store: store, tokens: tokens, logger: logger}
	s.handler = newRouter(h, s.faults, healthHandler, cors, logger)
	return s, nil
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// Store exposes the backing state to tests.
func (s *Server) Store() *Store {
	return s.store
}

// FailNext makes the next request matching method and path fail with
// status. Faults queue in order.
func (s *Server) FailNext(method, path string, status int) {
	s.FailNextWith(method, path, status, http.StatusText(status))
}

// FailNextWith is FailNext with a custom detail message.
func (s *Server) FailNextWith(method, path string, status int, detail string) {
	s.faults.add(fault{method: method, path: path, status: status, detail: detail})
}

// Login authenticates an account and returns a bearer token.
func (s *Server) Login(email, password string) (string, error) {
	u, err := s.store.Authenticate(email, password)
	if err != nil {
		return "", err
	}
	return s.tokens.Issue(u)
}

// TokenFor issues a token for an existing account without a password.
func (s *Server) TokenFor(userID string) (string, error) {
	u, err := s.store.User(userID)
	if err != nil {
		return "", err
	}
	return s.tokens.Issue(u)
}

// App runs a Server over HTTP.
type App struct {
	logger     *slog.Logger
	httpServer *http.Server
}

// NewApp wraps srv in an http.Server listening on addr.
func NewApp(addr string, srv *Server, logger *slog.Logger) *App {
	return &App{
		logger: logger,
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      srv,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}
}

// Run serves until ctx is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server", slog.String("addr", a.httpServer.Addr))
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		return err
	}
	return a.Shutdown()
}

// Shutdown stops the server with a 10 second deadline.
func (a *App) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	a.logger.Info("application shutdown complete")
	return nil
}
