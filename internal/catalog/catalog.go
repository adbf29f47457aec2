// Package catalog serves book and recommendation reads through a cache.
//
// Every read goes to the cache first and falls back to the API on a miss.
// Cache failures are logged and treated as misses. Book mutations made
// through the catalog drop every cached book list and feed, since prices,
// stock and rankings may all have changed.
package catalog

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/utafrali/bookshelf/internal/cache"
	"github.com/utafrali/bookshelf/internal/domain"
	"github.com/utafrali/bookshelf/pkg/pagination"
	"github.com/utafrali/bookshelf/pkg/slug"
)

// Key prefixes.
const (
	PrefixBooks = "books:"
	PrefixRecs  = "recs:"
	PrefixLikes = "likes:"
)

// Home feed sizes.
const (
	HomeFeedLimit    = 8
	HomeTrendingDays = 7
)

// TTLs sets how long each kind of read stays fresh.
type TTLs struct {
	Books time.Duration
	Feeds time.Duration
	Likes time.Duration
}

// DefaultTTLs returns the default freshness windows.
func DefaultTTLs() TTLs {
	return TTLs{
		Books: time.Minute,
		Feeds: 5 * time.Minute,
		Likes: 30 * time.Second,
	}
}

// BookAPI is the remote books resource.
type BookAPI interface {
	List(ctx context.Context, f domain.BookFilter) ([]domain.Book, error)
	Get(ctx context.Context, id string) (*domain.Book, error)
	Search(ctx context.Context, q string, w pagination.Window) ([]domain.Book, error)
	Create(ctx context.Context, in domain.BookCreate) (*domain.Book, error)
	Update(ctx context.Context, id string, in domain.BookUpdate) (*domain.Book, error)
	Delete(ctx context.Context, id string) error
}

// FeedAPI is the remote recommendations resource.
type FeedAPI interface {
	Feed(ctx context.Context, req domain.FeedRequest) ([]domain.Book, error)
}

// InteractionAPI is the remote interactions resource.
type InteractionAPI interface {
	Create(ctx context.Context, in domain.InteractionCreate) (*domain.Interaction, error)
	ToggleLike(ctx context.Context, bookID string) (bool, error)
	Likes(ctx context.Context) ([]string, error)
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithTTLs overrides the freshness windows.
func WithTTLs(t TTLs) Option {
	return func(c *Catalog) { c.ttl = t }
}

// WithViewer sets the function returning the id of the logged-in user, or
// "" when logged out. Personal feeds and likes are keyed by it.
func WithViewer(fn func() string) Option {
	return func(c *Catalog) { c.viewer = fn }
}

// Catalog is the cached read side of the storefront.
type Catalog struct {
	books        BookAPI
	feeds        FeedAPI
	interactions InteractionAPI
	cache        cache.Cache
	ttl          TTLs
	viewer       func() string
	logger       *slog.Logger
}

// New creates a Catalog.
func New(books BookAPI, feeds FeedAPI, interactions InteractionAPI, c cache.Cache, logger *slog.Logger, opts ...Option) *Catalog {
	cat := &Catalog{
		books:        books,
		feeds:        feeds,
		interactions: interactions,
		cache:        c,
		ttl:          DefaultTTLs(),
		viewer:       func() string { return "" },
		logger:       logger,
	}
	for _, opt := range opts {
		opt(cat)
	}
	return cat
}

// Books lists books matching f.
func (c *Catalog) Books(ctx context.Context, f domain.BookFilter) ([]domain.Book, error) {
	key := PrefixBooks + "list:" + filterKey(f)
	return readThrough(ctx, c, key, c.ttl.Books, func(ctx context.Context) ([]domain.Book, error) {
		return c.books.List(ctx, f)
	})
}

// Search runs a full-text search.
func (c *Catalog) Search(ctx context.Context, q string, w pagination.Window) ([]domain.Book, error) {
	key := PrefixBooks + "search:" + slug.Key(q, strconv.Itoa(w.Skip), strconv.Itoa(w.Limit))
	return readThrough(ctx, c, key, c.ttl.Books, func(ctx context.Context) ([]domain.Book, error) {
		return c.books.Search(ctx, q, w)
	})
}

// Book returns one book and, for a logged-in viewer, records a view.
func (c *Catalog) Book(ctx context.Context, id string) (*domain.Book, error) {
	b, err := c.Lookup(ctx, id)
	if err != nil {
		return nil, err
	}
	c.recordView(ctx, id)
	return b, nil
}

// Lookup returns one book without recording a view.
func (c *Catalog) Lookup(ctx context.Context, id string) (*domain.Book, error) {
	return readThrough(ctx, c, PrefixBooks+"detail:"+id, c.ttl.Books, func(ctx context.Context) (*domain.Book, error) {
		return c.books.Get(ctx, id)
	})
}

// recordView never fails the caller.
func (c *Catalog) recordView(ctx context.Context, bookID string) {
	if c.viewer() == "" {
		return
	}
	_, err := c.interactions.Create(ctx, domain.InteractionCreate{
		BookID:          bookID,
		InteractionType: domain.InteractionView,
		Metadata:        map[string]any{"source": "cli"},
	})
	if err != nil {
		c.logger.DebugContext(ctx, "view not recorded",
			slog.String("book_id", bookID),
			slog.String("error", err.Error()),
		)
	}
}

// Feed returns a recommendation feed. Personal feeds are cached per viewer.
func (c *Catalog) Feed(ctx context.Context, req domain.FeedRequest) ([]domain.Book, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	owner := ""
	if req.Strategy == domain.StrategyPersonal {
		owner = c.viewer()
	}
	key := PrefixRecs + slug.Key(string(req.Strategy), owner, req.BookID, req.Genre,
		strconv.Itoa(req.Limit), strconv.Itoa(req.Days))
	return readThrough(ctx, c, key, c.ttl.Feeds, func(ctx context.Context) ([]domain.Book, error) {
		return c.feeds.Feed(ctx, req)
	})
}

// Home is the landing page content.
type Home struct {
	Trending []domain.Book
	New      []domain.Book
	Personal []domain.Book
}

// Home loads the landing feeds concurrently. The personal feed is only
// loaded for a logged-in viewer. Any failed feed fails the whole page.
func (c *Catalog) Home(ctx context.Context) (*Home, error) {
	var home Home
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		books, err := c.Feed(gctx, domain.FeedRequest{Strategy: domain.StrategyTrending, Days: HomeTrendingDays, Limit: HomeFeedLimit})
		home.Trending = books
		return err
	})
	g.Go(func() error {
		books, err := c.Feed(gctx, domain.FeedRequest{Strategy: domain.StrategyNew, Limit: HomeFeedLimit})
		home.New = books
		return err
	})
	if c.viewer() != "" {
		g.Go(func() error {
			books, err := c.Feed(gctx, domain.FeedRequest{Strategy: domain.StrategyPersonal, Limit: HomeFeedLimit})
			home.Personal = books
			return err
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &home, nil
}

// Likes returns the ids of the books the viewer liked.
func (c *Catalog) Likes(ctx context.Context) ([]string, error) {
	return readThrough(ctx, c, c.likesKey(), c.ttl.Likes, c.interactions.Likes)
}

// IsLiked reports whether the viewer liked bookID.
func (c *Catalog) IsLiked(ctx context.Context, bookID string) (bool, error) {
	ids, err := c.Likes(ctx)
	if err != nil {
		return false, err
	}
	for _, id := range ids {
		if id == bookID {
			return true, nil
		}
	}
	return false, nil
}

// ToggleLike likes or unlikes bookID and reports whether it is now liked.
func (c *Catalog) ToggleLike(ctx context.Context, bookID string) (bool, error) {
	liked, err := c.interactions.ToggleLike(ctx, bookID)
	if err != nil {
		return false, err
	}
	c.drop(ctx, c.likesKey())
	c.dropPrefix(ctx, PrefixRecs+slug.Key(string(domain.StrategyPersonal)))
	return liked, nil
}

func (c *Catalog) likesKey() string {
	return PrefixLikes + slug.Key(c.viewer())
}

// CreateBook adds a book. Admin only.
func (c *Catalog) CreateBook(ctx context.Context, in domain.BookCreate) (*domain.Book, error) {
	b, err := c.books.Create(ctx, in)
	if err != nil {
		return nil, err
	}
	c.InvalidateBooks(ctx)
	return b, nil
}

// UpdateBook changes a book. Admin only.
func (c *Catalog) UpdateBook(ctx context.Context, id string, in domain.BookUpdate) (*domain.Book, error) {
	b, err := c.books.Update(ctx, id, in)
	if err != nil {
		return nil, err
	}
	c.InvalidateBooks(ctx)
	return b, nil
}

// DeleteBook removes a book. Admin only.
func (c *Catalog) DeleteBook(ctx context.Context, id string) error {
	if err := c.books.Delete(ctx, id); err != nil {
		return err
	}
	c.InvalidateBooks(ctx)
	return nil
}

// InvalidateBooks drops every cached book read and feed.
func (c *Catalog) InvalidateBooks(ctx context.Context) {
	c.dropPrefix(ctx, PrefixBooks)
	c.dropPrefix(ctx, PrefixRecs)
}

func (c *Catalog) drop(ctx context.Context, key string) {
	if err := c.cache.Delete(ctx, key); err != nil {
		c.logger.WarnContext(ctx, "cache delete failed", slog.String("key", key), slog.String("error", err.Error()))
	}
}

func (c *Catalog) dropPrefix(ctx context.Context, prefix string) {
	if err := c.cache.DeletePrefix(ctx, prefix); err != nil {
		c.logger.WarnContext(ctx, "cache invalidation failed", slog.String("prefix", prefix), slog.String("error", err.Error()))
	}
}

func readThrough[T any](ctx context.Context, c *Catalog, key string, ttl time.Duration, fetch func(context.Context) (T, error)) (T, error) {
	var v T
	hit, err := c.cache.Get(ctx, key, &v)
	switch {
	case err != nil:
		c.logger.WarnContext(ctx, "cache read failed", slog.String("key", key), slog.String("error", err.Error()))
	case hit:
		return v, nil
	}

	v, err = fetch(ctx)
	if err != nil {
		return v, err
	}
	if err := c.cache.Set(ctx, key, v, ttl); err != nil {
		c.logger.WarnContext(ctx, "cache write failed", slog.String("key", key), slog.String("error", err.Error()))
	}
	return v, nil
}

func filterKey(f domain.BookFilter) string {
	return slug.Key(
		f.Genre,
		f.Author,
		floatKey(f.MinPrice),
		floatKey(f.MaxPrice),
		floatKey(f.MinRating),
		strconv.Itoa(f.Skip),
		strconv.Itoa(f.Limit),
	)
}

func floatKey(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
