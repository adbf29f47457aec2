// Package cart keeps the local view of the server cart in sync with the API.
//
// The server is the source of truth. Add applies the cart returned by the
// API; every other mutation invalidates the snapshot and refetches it.
// Failed calls notify the user and leave the snapshot untouched. Calls are
// neither serialized nor coalesced: when responses overlap, the one applied
// last wins.
package cart

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/utafrali/bookshelf/internal/domain"
	apperrors "github.com/utafrali/bookshelf/pkg/errors"
	"github.com/utafrali/bookshelf/pkg/validator"
)

// DefaultStaleTime is how long a fetched snapshot is served without a refetch.
const DefaultStaleTime = 30 * time.Second

// ErrStale is wrapped when a mutation succeeded but the refetch that should
// follow it failed. The snapshot stays invalidated.
var ErrStale = errors.New("cart snapshot is stale")

// Notification texts.
const (
	MsgAdded        = "Added to cart"
	MsgRemoved      = "Removed from cart"
	MsgCleared      = "Cart cleared"
	MsgAddFailed    = "Could not add the book to the cart"
	MsgUpdateFailed = "Could not update the cart"
	MsgRemoveFailed = "Could not remove the book"
	MsgClearFailed  = "Could not clear the cart"
	MsgLoadFailed   = "Could not load the cart"
)

// CartAPI is the remote cart. Every call answers with the full server cart.
type CartAPI interface {
	Get(ctx context.Context) (*domain.Cart, error)
	Add(ctx context.Context, bookID string, qty int) (*domain.Cart, error)
	Update(ctx context.Context, bookID string, qty int) (*domain.Cart, error)
	Remove(ctx context.Context, bookID string) (*domain.Cart, error)
	Clear(ctx context.Context) (*domain.Cart, error)
}

// Notifier shows transient messages to the user.
type Notifier interface {
	Success(message string)
	Error(message string)
}

// Option configures a Store.
type Option func(*Store)

// WithStaleTime sets how long a snapshot is fresh. Zero makes every read
// refetch.
func WithStaleTime(d time.Duration) Option {
	return func(s *Store) { s.staleTime = d }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithAuthGuard runs guard before every call. A non-nil error is reported
// to the user and returned without contacting the API.
func WithAuthGuard(guard func() error) Option {
	return func(s *Store) { s.guard = guard }
}

// Store holds the last cart snapshot received from the server.
type Store struct {
	api       CartAPI
	notifier  Notifier
	logger    *slog.Logger
	staleTime time.Duration
	now       func() time.Time
	guard     func() error

	mu          sync.Mutex
	snapshot    *domain.Cart
	fetchedAt   time.Time
	invalidated bool
	nextSubID   int
	subscribers map[int]func(domain.Cart)
}

// NewStore creates an empty, unloaded store.
func NewStore(api CartAPI, notifier Notifier, logger *slog.Logger, opts ...Option) *Store {
	s := &Store{
		api:         api,
		notifier:    notifier,
		logger:      logger,
		staleTime:   DefaultStaleTime,
		now:         time.Now,
		subscribers: make(map[int]func(domain.Cart)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Snapshot returns a copy of the current snapshot and whether one has been
// loaded.
func (s *Store) Snapshot() (domain.Cart, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snapshot == nil {
		return domain.Cart{}, false
	}
	return cloneCart(*s.snapshot), true
}

// Fresh reports whether Cart would be answered without a request.
func (s *Store) Fresh() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.freshLocked()
}

func (s *Store) freshLocked() bool {
	return s.snapshot != nil && !s.invalidated && s.now().Sub(s.fetchedAt) < s.staleTime
}

// Cart returns the snapshot if it is fresh, and refetches otherwise.
func (s *Store) Cart(ctx context.Context) (domain.Cart, error) {
	s.mu.Lock()
	if s.freshLocked() {
		c := cloneCart(*s.snapshot)
		s.mu.Unlock()
		return c, nil
	}
	s.mu.Unlock()
	return s.Refresh(ctx)
}

// Refresh fetches the cart. On failure the user is notified and the
// previous snapshot is kept.
func (s *Store) Refresh(ctx context.Context) (domain.Cart, error) {
	if err := s.checkGuard(); err != nil {
		return domain.Cart{}, err
	}
	c, err := s.api.Get(ctx)
	if err != nil {
		s.fail(ctx, "refresh", MsgLoadFailed, err)
		return domain.Cart{}, fmt.Errorf("fetch cart: %w", err)
	}
	return s.apply(ctx, c), nil
}

// Add puts qty copies of a book in the cart. The cart in the response
// becomes the new snapshot.
func (s *Store) Add(ctx context.Context, bookID string, qty int) (domain.Cart, error) {
	if err := s.checkInput(domain.CartAdd{BookID: bookID, Quantity: qty}, MsgAddFailed); err != nil {
		return domain.Cart{}, err
	}
	if err := s.checkGuard(); err != nil {
		return domain.Cart{}, err
	}

	c, err := s.api.Add(ctx, bookID, qty)
	if err != nil {
		s.fail(ctx, "add", MsgAddFailed, err, slog.String("book_id", bookID))
		return domain.Cart{}, fmt.Errorf("add to cart: %w", err)
	}
	applied := s.apply(ctx, c)
	s.notifier.Success(MsgAdded)
	return applied, nil
}

// UpdateQuantity sets the quantity of a line; zero removes it.
func (s *Store) UpdateQuantity(ctx context.Context, bookID string, qty int) (domain.Cart, error) {
	if err := s.checkInput(domain.CartUpdate{Quantity: qty}, MsgUpdateFailed); err != nil {
		return domain.Cart{}, err
	}
	return s.mutate(ctx, "update", MsgUpdateFailed, "", func(ctx context.Context) error {
		_, err := s.api.Update(ctx, bookID, qty)
		return err
	}, slog.String("book_id", bookID), slog.Int("quantity", qty))
}

// Remove deletes a line.
func (s *Store) Remove(ctx context.Context, bookID string) (domain.Cart, error) {
	return s.mutate(ctx, "remove", MsgRemoveFailed, MsgRemoved, func(ctx context.Context) error {
		_, err := s.api.Remove(ctx, bookID)
		return err
	}, slog.String("book_id", bookID))
}

// Clear empties the cart.
func (s *Store) Clear(ctx context.Context) (domain.Cart, error) {
	return s.mutate(ctx, "clear", MsgClearFailed, MsgCleared, func(ctx context.Context) error {
		_, err := s.api.Clear(ctx)
		return err
	})
}

// mutate runs call, then invalidates the snapshot and refetches it. The
// response of call itself is discarded.
func (s *Store) mutate(ctx context.Context, op, failMsg, okMsg string, call func(context.Context) error, attrs ...slog.Attr) (domain.Cart, error) {
	if err := s.checkGuard(); err != nil {
		return domain.Cart{}, err
	}
	if err := call(ctx); err != nil {
		s.fail(ctx, op, failMsg, err, attrs...)
		return domain.Cart{}, fmt.Errorf("%s cart: %w", op, err)
	}
	if okMsg != "" {
		s.notifier.Success(okMsg)
	}

	s.Invalidate()
	c, err := s.api.Get(ctx)
	if err != nil {
		s.fail(ctx, "refetch after "+op, MsgLoadFailed, err)
		return domain.Cart{}, fmt.Errorf("%s cart: %w: %w", op, ErrStale, err)
	}
	return s.apply(ctx, c), nil
}

// Invalidate marks the snapshot stale so the next Cart call refetches.
func (s *Store) Invalidate() {
	s.mu.Lock()
	s.invalidated = true
	s.mu.Unlock()
}

// Reset drops the snapshot, as on logout, and tells subscribers the cart
// is empty.
func (s *Store) Reset() {
	s.mu.Lock()
	s.snapshot = nil
	s.fetchedAt = time.Time{}
	s.invalidated = false
	subs := s.subscribersLocked()
	s.mu.Unlock()

	empty := domain.Cart{Items: []domain.CartItem{}, TotalPrice: domain.Zero}
	for _, fn := range subs {
		fn(empty)
	}
}

// Subscribe registers fn to receive every applied snapshot. The returned
// func unsubscribes.
func (s *Store) Subscribe(fn func(domain.Cart)) func() {
	s.mu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subscribers, id)
			s.mu.Unlock()
		})
	}
}

// apply replaces the snapshot with c and notifies subscribers. Carts that
// break the total invariants are applied anyway and logged.
func (s *Store) apply(ctx context.Context, c *domain.Cart) domain.Cart {
	if c == nil {
		c = &domain.Cart{}
	}
	if c.Items == nil {
		c.Items = []domain.CartItem{}
	}
	if err := c.Validate(); err != nil {
		s.logger.WarnContext(ctx, "server cart is inconsistent",
			slog.String("error", err.Error()),
			slog.Int("items", len(c.Items)),
		)
	}

	snap := cloneCart(*c)
	s.mu.Lock()
	s.snapshot = &snap
	s.fetchedAt = s.now()
	s.invalidated = false
	subs := s.subscribersLocked()
	s.mu.Unlock()

	s.logger.DebugContext(ctx, "cart snapshot applied",
		slog.Int("total_items", snap.TotalItems),
		slog.String("total_price", snap.TotalPrice.String()),
	)
	for _, fn := range subs {
		fn(cloneCart(snap))
	}
	return cloneCart(snap)
}

func (s *Store) subscribersLocked() []func(domain.Cart) {
	subs := make([]func(domain.Cart), 0, len(s.subscribers))
	for id := 0; id < s.nextSubID; id++ {
		if fn, ok := s.subscribers[id]; ok {
			subs = append(subs, fn)
		}
	}
	return subs
}

func (s *Store) fail(ctx context.Context, op, msg string, err error, attrs ...slog.Attr) {
	args := make([]any, 0, len(attrs)+2)
	args = append(args, slog.String("op", op), slog.String("error", err.Error()))
	for _, a := range attrs {
		args = append(args, a)
	}
	s.logger.WarnContext(ctx, "cart request failed", args...)
	s.notifier.Error(msg + ": " + apperrors.UserMessage(err))
}

func (s *Store) checkGuard() error {
	if s.guard == nil {
		return nil
	}
	if err := s.guard(); err != nil {
		s.notifier.Error(apperrors.UserMessage(err))
		return err
	}
	return nil
}

func (s *Store) checkInput(in any, failMsg string) error {
	if err := validator.Validate(in); err != nil {
		appErr := apperrors.InvalidInput(err.Error())
		s.notifier.Error(failMsg + ": " + appErr.Message)
		return appErr
	}
	return nil
}

func cloneCart(c domain.Cart) domain.Cart {
	out := c
	out.Items = make([]domain.CartItem, len(c.Items))
	copy(out.Items, c.Items)
	return out
}
