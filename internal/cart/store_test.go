package cart

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/utafrali/bookshelf/internal/domain"
	apperrors "github.com/utafrali/bookshelf/pkg/errors"
	"github.com/utafrali/bookshelf/pkg/logger"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// --- Mock API ---

type mockCartAPI struct {
	mock.Mock
}

func (m *mockCartAPI) result(args mock.Arguments) (*domain.Cart, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Cart), args.Error(1)
}

func (m *mockCartAPI) Get(ctx context.Context) (*domain.Cart, error) {
	return m.result(m.Called(ctx))
}

func (m *mockCartAPI) Add(ctx context.Context, bookID string, qty int) (*domain.Cart, error) {
	return m.result(m.Called(ctx, bookID, qty))
}

func (m *mockCartAPI) Update(ctx context.Context, bookID string, qty int) (*domain.Cart, error) {
	return m.result(m.Called(ctx, bookID, qty))
}

func (m *mockCartAPI) Remove(ctx context.Context, bookID string) (*domain.Cart, error) {
	return m.result(m.Called(ctx, bookID))
}

func (m *mockCartAPI) Clear(ctx context.Context) (*domain.Cart, error) {
	return m.result(m.Called(ctx))
}

// --- Recording notifier ---

type notice struct {
	ok  bool
	msg string
}

type recorder struct {
	mu      sync.Mutex
	notices []notice
}

func (r *recorder) Success(msg string) { r.add(notice{ok: true, msg: msg}) }
func (r *recorder) Error(msg string)   { r.add(notice{msg: msg}) }

func (r *recorder) add(n notice) {
	r.mu.Lock()
	r.notices = append(r.notices, n)
	r.mu.Unlock()
}

func (r *recorder) all() []notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]notice(nil), r.notices...)
}

// --- Helpers ---

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func line(bookID, price string, qty int) domain.CartItem {
	return domain.CartItem{
		BookID:   bookID,
		Quantity: qty,
		Book:     domain.CartBook{ID: bookID, Title: "Book " + bookID, Author: "Author", Price: domain.MustMoney(price)},
	}
}

func serverCart(items ...domain.CartItem) *domain.Cart {
	c := &domain.Cart{Items: items}
	c.Recalculate()
	return c
}

type testEnv struct {
	api   *mockCartAPI
	notes *recorder
	clock *fakeClock
	logs  *bytes.Buffer
	store *Store
}

func newTestEnv(t *testing.T, opts ...Option) *testEnv {
	t.Helper()
	env := &testEnv{
		api:   new(mockCartAPI),
		notes: &recorder{},
		clock: &fakeClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)},
		logs:  &bytes.Buffer{},
	}
	opts = append([]Option{WithClock(env.clock.Now)}, opts...)
	env.store = NewStore(env.api, env.notes, logger.NewWithWriter("cart-test", "debug", env.logs), opts...)
	return env
}

var errBoom = apperrors.ServiceUnavailable("backend is down")

// --- Tests ---

func TestCart_FetchesOnceWhileFresh(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.api.On("Get", ctx).Return(serverCart(line("b1", "9.99", 2)), nil).Once()

	c, err := env.store.Cart(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, c.TotalItems)
	assert.Equal(t, "19.98", c.TotalPrice.String())

	env.clock.Advance(10 * time.Second)
	_, err = env.store.Cart(ctx)
	require.NoError(t, err)
	assert.True(t, env.store.Fresh())

	env.api.AssertNumberOfCalls(t, "Get", 1)
}

func TestCart_RefetchesWhenStale(t *testing.T) {
	env := newTestEnv(t, WithStaleTime(time.Minute))
	ctx := context.Background()
	env.api.On("Get", ctx).Return(serverCart(line("b1", "5.00", 1)), nil).Once()
	env.api.On("Get", ctx).Return(serverCart(line("b1", "5.00", 3)), nil).Once()

	_, err := env.store.Cart(ctx)
	require.NoError(t, err)

	env.clock.Advance(time.Minute)
	assert.False(t, env.store.Fresh())
	c, err := env.store.Cart(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, c.Quantity("b1"))
	env.api.AssertExpectations(t)
}

func TestCart_RefetchesAfterInvalidate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.api.On("Get", ctx).Return(serverCart(), nil).Twice()

	_, err := env.store.Cart(ctx)
	require.NoError(t, err)
	env.store.Invalidate()
	_, err = env.store.Cart(ctx)
	require.NoError(t, err)

	env.api.AssertNumberOfCalls(t, "Get", 2)
}

func TestRefresh_FailureKeepsSnapshot(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.api.On("Get", ctx).Return(serverCart(line("b1", "3.50", 1)), nil).Once()
	env.api.On("Get", ctx).Return(nil, errBoom).Once()

	_, err := env.store.Refresh(ctx)
	require.NoError(t, err)

	_, err = env.store.Refresh(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrServiceUnavail)

	snap, ok := env.store.Snapshot()
	require.True(t, ok)
	assert.Equal(t, 1, snap.Quantity("b1"))
	assert.Equal(t, []notice{{msg: MsgLoadFailed + ": backend is down"}}, env.notes.all())
}

func TestAdd_AppliesServerCartWithoutRefetch(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.api.On("Add", ctx, "b1", 2).Return(serverCart(line("b1", "12.50", 2)), nil).Once()

	c, err := env.store.Add(ctx, "b1", 2)
	require.NoError(t, err)
	assert.Equal(t, "25.00", c.TotalPrice.String())
	assert.True(t, env.store.Fresh())
	assert.Equal(t, []notice{{ok: true, msg: MsgAdded}}, env.notes.all())

	env.api.AssertNotCalled(t, "Get", mock.Anything)
}

func TestAdd_FailureLeavesSnapshotUnchanged(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	before := serverCart(line("b1", "4.00", 1))
	env.api.On("Get", ctx).Return(before, nil).Once()
	env.api.On("Add", ctx, "b2", 1).Return(nil, apperrors.InvalidInput("Not enough copies of 'Dracula'")).Once()

	_, err := env.store.Refresh(ctx)
	require.NoError(t, err)

	_, err = env.store.Add(ctx, "b2", 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	snap, _ := env.store.Snapshot()
	assert.Equal(t, *before, snap)
	assert.Equal(t, []notice{{msg: MsgAddFailed + ": Not enough copies of 'Dracula'"}}, env.notes.all())
}

func TestAdd_RejectsBadQuantityLocally(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.store.Add(context.Background(), "b1", 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	require.Len(t, env.notes.all(), 1)
	assert.Contains(t, env.notes.all()[0].msg, "quantity")

	_, err = env.store.Add(context.Background(), "", 1)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	env.api.AssertNotCalled(t, "Add", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateQuantity_InvalidatesAndRefetches(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	// The mutation answer is ignored; only the refetch is applied.
	env.api.On("Update", ctx, "b1", 3).Return(serverCart(line("b1", "1.00", 99)), nil).Once()
	env.api.On("Get", ctx).Return(serverCart(line("b1", "2.00", 3)), nil).Once()

	c, err := env.store.UpdateQuantity(ctx, "b1", 3)
	require.NoError(t, err)
	assert.Equal(t, 3, c.Quantity("b1"))
	assert.Equal(t, "6.00", c.TotalPrice.String())
	assert.Empty(t, env.notes.all())
	env.api.AssertExpectations(t)
}

func TestUpdateQuantity_NegativeIsRejected(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.store.UpdateQuantity(context.Background(), "b1", -1)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	env.api.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestRemove_SuccessNotifiesAndRefetches(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.api.On("Remove", ctx, "b1").Return(serverCart(), nil).Once()
	env.api.On("Get", ctx).Return(serverCart(), nil).Once()

	c, err := env.store.Remove(ctx, "b1")
	require.NoError(t, err)
	assert.True(t, c.IsEmpty())
	assert.Equal(t, []notice{{ok: true, msg: MsgRemoved}}, env.notes.all())
}

func TestRemove_FailureDoesNotRefetch(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.api.On("Remove", ctx, "b9").Return(nil, apperrors.NotFoundMessage("Cart item not found")).Once()

	_, err := env.store.Remove(ctx, "b9")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.Equal(t, []notice{{msg: MsgRemoveFailed + ": Cart item not found"}}, env.notes.all())
	env.api.AssertNotCalled(t, "Get", mock.Anything)
}

func TestClear_RefetchFailureLeavesStoreStale(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.api.On("Get", ctx).Return(serverCart(line("b1", "7.20", 1)), nil).Once()
	env.api.On("Clear", ctx).Return(serverCart(), nil).Once()
	env.api.On("Get", ctx).Return(nil, errBoom).Once()

	_, err := env.store.Refresh(ctx)
	require.NoError(t, err)

	_, err = env.store.Clear(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStale)
	assert.ErrorIs(t, err, apperrors.ErrServiceUnavail)
	assert.False(t, env.store.Fresh())

	snap, _ := env.store.Snapshot()
	assert.Equal(t, 1, snap.TotalItems)
	assert.Equal(t, []notice{
		{ok: true, msg: MsgCleared},
		{msg: MsgLoadFailed + ": backend is down"},
	}, env.notes.all())
}

func TestApply_InconsistentCartIsAppliedAndLogged(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	bad := serverCart(line("b1", "10.00", 1))
	bad.TotalPrice = domain.MustMoney("11.00")
	env.api.On("Get", ctx).Return(bad, nil).Once()

	c, err := env.store.Refresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, "11.00", c.TotalPrice.String())
	assert.Contains(t, env.logs.String(), "server cart is inconsistent")
}

func TestAuthGuard_BlocksRequests(t *testing.T) {
	env := newTestEnv(t, WithAuthGuard(func() error { return apperrors.Unauthorized("login required") }))

	_, err := env.store.Add(context.Background(), "b1", 1)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	_, err = env.store.Clear(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	assert.Equal(t, []notice{{msg: "login required"}, {msg: "login required"}}, env.notes.all())
	env.api.AssertNotCalled(t, "Add", mock.Anything, mock.Anything, mock.Anything)
	env.api.AssertNotCalled(t, "Clear", mock.Anything)
}

func TestSubscribe_ReceivesSnapshotsUntilUnsubscribed(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.api.On("Get", ctx).Return(serverCart(line("b1", "1.00", 1)), nil)

	var got []int
	unsubscribe := env.store.Subscribe(func(c domain.Cart) { got = append(got, c.TotalItems) })

	_, err := env.store.Refresh(ctx)
	require.NoError(t, err)
	env.store.Reset()
	unsubscribe()
	unsubscribe()
	_, err = env.store.Refresh(ctx)
	require.NoError(t, err)

	assert.Equal(t, []int{1, 0}, got)
}

func TestReset_DropsSnapshot(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.api.On("Get", ctx).Return(serverCart(line("b1", "1.00", 1)), nil).Once()

	_, err := env.store.Refresh(ctx)
	require.NoError(t, err)
	env.store.Reset()

	_, ok := env.store.Snapshot()
	assert.False(t, ok)
	assert.False(t, env.store.Fresh())
}

func TestSnapshot_IsACopy(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.api.On("Get", ctx).Return(serverCart(line("b1", "1.00", 1)), nil).Once()

	_, err := env.store.Refresh(ctx)
	require.NoError(t, err)
	snap, _ := env.store.Snapshot()
	snap.Items[0].Quantity = 50

	again, _ := env.store.Snapshot()
	assert.Equal(t, 1, again.Items[0].Quantity)
}

// blockingAPI answers Add calls in the order the test releases them.
type blockingAPI struct {
	mockCartAPI
	release map[int]chan struct{}
}

func (b *blockingAPI) Add(_ context.Context, bookID string, qty int) (*domain.Cart, error) {
	<-b.release[qty]
	return serverCart(line(bookID, "1.00", qty)), nil
}

func TestAdd_OverlappingCallsLastResponseWins(t *testing.T) {
	api := &blockingAPI{release: map[int]chan struct{}{1: make(chan struct{}), 2: make(chan struct{})}}
	store := NewStore(api, &recorder{}, logger.Discard())
	ctx := context.Background()

	var wg sync.WaitGroup
	for _, qty := range []int{1, 2} {
		wg.Add(1)
		go func(qty int) {
			defer wg.Done()
			_, _ = store.Add(ctx, "b1", qty)
		}(qty)
	}

	// The second request answers first; the first response is applied last.
	close(api.release[2])
	require.Eventually(t, func() bool {
		snap, ok := store.Snapshot()
		return ok && snap.Quantity("b1") == 2
	}, time.Second, time.Millisecond)
	close(api.release[1])
	wg.Wait()

	snap, _ := store.Snapshot()
	assert.Equal(t, 1, snap.Quantity("b1"))
}

func TestStore_ConcurrentUse(t *testing.T) {
	env := newTestEnv(t, WithStaleTime(0))
	env.api.On("Get", mock.Anything).Return(serverCart(line("b1", "2.00", 1)), nil)
	env.api.On("Add", mock.Anything, "b1", 1).Return(serverCart(line("b1", "2.00", 2)), nil)
	env.api.On("Remove", mock.Anything, "b1").Return(serverCart(), errors.New("gone"))

	ctx := context.Background()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(3)
		go func() { defer wg.Done(); _, _ = env.store.Cart(ctx) }()
		go func() { defer wg.Done(); _, _ = env.store.Add(ctx, "b1", 1) }()
		go func() { defer wg.Done(); _, _ = env.store.Remove(ctx, "b1") }()
	}
	wg.Wait()

	snap, ok := env.store.Snapshot()
	require.True(t, ok)
	assert.NoError(t, snap.Validate())
}

func TestNewStore_Defaults(t *testing.T) {
	s := NewStore(new(mockCartAPI), &recorder{}, slog.Default())
	assert.Equal(t, DefaultStaleTime, s.staleTime)
	assert.False(t, s.Fresh())
}
