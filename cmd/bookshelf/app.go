package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/utafrali/bookshelf/internal/api"
	"github.com/utafrali/bookshelf/internal/cache"
	"github.com/utafrali/bookshelf/internal/cart"
	"github.com/utafrali/bookshelf/internal/catalog"
	"github.com/utafrali/bookshelf/internal/checkout"
	"github.com/utafrali/bookshelf/internal/config"
	"github.com/utafrali/bookshelf/internal/session"
	"github.com/utafrali/bookshelf/internal/ui"
	"github.com/utafrali/bookshelf/pkg/httpclient"
	"github.com/utafrali/bookshelf/pkg/logger"
	"github.com/utafrali/bookshelf/pkg/tracing"
)

// MsgSessionExpired is shown when the API rejects a stored token.
const MsgSessionExpired = "Your session has expired. Please log in again."

// app holds everything one command invocation needs.
type app struct {
	cfg      *config.CLI
	log      *slog.Logger
	out      io.Writer
	session  *session.Store
	client   *api.Client
	state    *ui.State
	renderer *ui.Renderer
	cart     *cart.Store
	catalog  *catalog.Catalog
	checkout *checkout.Service

	cache           cache.Cache
	shutdownTracing func(context.Context) error
}

func newApp(ctx context.Context, out, errOut io.Writer) (*app, error) {
	cfg, err := config.LoadCLI()
	if err != nil {
		return nil, err
	}
	log := logger.NewWithFormat("bookshelf-cli", cfg.LogLevel, cfg.LogFormat, errOut)

	shutdownTracing, err := tracing.InitTracer(ctx, cfg.Tracing)
	if err != nil {
		return nil, fmt.Errorf("init tracing: %w", err)
	}

	path := cfg.SessionFile
	if path == "" {
		if path, err = session.DefaultPath(); err != nil {
			return nil, err
		}
	}
	sess, err := session.Load(path)
	if err != nil {
		return nil, err
	}

	state := ui.NewState(ui.WithNotificationTTL(cfg.NotificationTTL))

	hc := httpclient.New(cfg.HTTPClient())
	var doer api.HTTPDoer = hc
	if cfg.CBEnabled {
		doer = httpclient.NewCircuitBreakerClient(hc, cfg.CircuitBreaker(), log).
			WithFallback(httpclient.UnavailableFallback)
	}
	client, err := api.New(cfg.APIURL, doer,
		api.WithToken(sess.Token),
		api.WithLogger(log),
		api.WithUnauthorizedHook(func() {
			if sess.Token() == "" {
				return
			}
			if err := sess.Logout(); err != nil {
				log.Warn("failed to clear expired session", slog.String("error", err.Error()))
			}
			state.Info(MsgSessionExpired)
		}),
	)
	if err != nil {
		return nil, err
	}

	c := newCache(ctx, cfg, log)
	viewer := func() string {
		if !sess.IsAuthenticated() {
			return ""
		}
		if u, ok := sess.User(); ok && u.ID != "" {
			return u.ID
		}
		return "me"
	}

	cartStore := cart.NewStore(client.Cart, state, log,
		cart.WithStaleTime(cfg.CartStaleTime),
		cart.WithAuthGuard(sess.RequireAuth),
	)

	return &app{
		cfg:      cfg,
		log:      log,
		out:      out,
		session:  sess,
		client:   client,
		state:    state,
		renderer: ui.NewRenderer(),
		cart:     cartStore,
		catalog: catalog.New(client.Books, client.Recommendations, client.Interactions, c, log,
			catalog.WithTTLs(catalog.TTLs{Books: cfg.BooksTTL, Feeds: cfg.FeedsTTL, Likes: cfg.LikesTTL}),
			catalog.WithViewer(viewer),
		),
		checkout:        checkout.NewService(client.Orders, cartStore, state, state, nil, log),
		cache:           c,
		shutdownTracing: shutdownTracing,
	}, nil
}

// newCache falls back to the in-process cache when redis is unreachable.
func newCache(ctx context.Context, cfg *config.CLI, log *slog.Logger) cache.Cache {
	if cfg.CacheBackend != config.CacheRedis {
		return cache.NewMemory()
	}
	client, err := cache.NewRedisClient(ctx, cfg.Redis())
	if err != nil {
		log.Warn("redis unavailable, using in-memory cache", slog.String("error", err.Error()))
		return cache.NewMemory()
	}
	return cache.NewRedis(client, cfg.RedisKeyPrefix)
}

// context tags ctx with a fresh correlation id so one command's requests
// can be followed through the backend logs.
func (a *app) context(ctx context.Context) context.Context {
	id := uuid.NewString()
	ctx = logger.WithCorrelationID(ctx, id)
	return logger.NewContext(ctx, a.log.With(slog.String("correlation_id", id)))
}

// print writes a rendered view followed by a newline.
func (a *app) print(view string) {
	fmt.Fprintln(a.out, view)
}

// flush writes pending notifications to w and reports whether any of them
// was an error.
func (a *app) flush(w io.Writer) bool {
	ns := a.state.Drain()
	if len(ns) == 0 {
		return false
	}
	fmt.Fprintln(w, a.renderer.Toasts(ns))
	for _, n := range ns {
		if n.Level == ui.LevelError {
			return true
		}
	}
	return false
}

func (a *app) close() error {
	var errs []error
	if a.cache != nil {
		errs = append(errs, a.cache.Close())
	}
	if a.shutdownTracing != nil {
		errs = append(errs, a.shutdownTracing(context.Background()))
	}
	return errors.Join(errs...)
}
