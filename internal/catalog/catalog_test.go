package catalog

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/bookshelf/internal/cache"
	"github.com/utafrali/bookshelf/internal/domain"
	apperrors "github.com/utafrali/bookshelf/pkg/errors"
	"github.com/utafrali/bookshelf/pkg/logger"
	"github.com/utafrali/bookshelf/pkg/pagination"
)

// ---------------------------------------------------------------------------
// Mocks
// ---------------------------------------------------------------------------

type mockBooks struct {
	mock.Mock
}

func books(args mock.Arguments) ([]domain.Book, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Book), args.Error(1)
}

func (m *mockBooks) List(ctx context.Context, f domain.BookFilter) ([]domain.Book, error) {
	return books(m.Called(ctx, f))
}

func (m *mockBooks) Get(ctx context.Context, id string) (*domain.Book, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Book), args.Error(1)
}

func (m *mockBooks) Search(ctx context.Context, q string, w pagination.Window) ([]domain.Book, error) {
	return books(m.Called(ctx, q, w))
}

func (m *mockBooks) Create(ctx context.Context, in domain.BookCreate) (*domain.Book, error) {
	args := m.Called(ctx, in)
	return args.Get(0).(*domain.Book), args.Error(1)
}

func (m *mockBooks) Update(ctx context.Context, id string, in domain.BookUpdate) (*domain.Book, error) {
	args := m.Called(ctx, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Book), args.Error(1)
}

func (m *mockBooks) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type mockFeeds struct {
	mock.Mock
}

func (m *mockFeeds) Feed(ctx context.Context, req domain.FeedRequest) ([]domain.Book, error) {
	return books(m.Called(ctx, req))
}

type mockInteractions struct {
	mock.Mock
}

func (m *mockInteractions) Create(ctx context.Context, in domain.InteractionCreate) (*domain.Interaction, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Interaction), args.Error(1)
}

func (m *mockInteractions) ToggleLike(ctx context.Context, bookID string) (bool, error) {
	args := m.Called(ctx, bookID)
	return args.Bool(0), args.Error(1)
}

func (m *mockInteractions) Likes(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// brokenCache fails every call.
type brokenCache struct{}

var errCacheDown = errors.New("cache down")

func (brokenCache) Get(context.Context, string, any) (bool, error)        { return false, errCacheDown }
func (brokenCache) Set(context.Context, string, any, time.Duration) error { return errCacheDown }
func (brokenCache) Delete(context.Context, string) error                  { return errCacheDown }
func (brokenCache) DeletePrefix(context.Context, string) error            { return errCacheDown }
func (brokenCache) Close() error                                          { return nil }

type fixture struct {
	books        *mockBooks
	feeds        *mockFeeds
	interactions *mockInteractions
	viewer       string
	cat          *Catalog
}

func newFixture(t *testing.T, c cache.Cache) *fixture {
	t.Helper()
	f := &fixture{books: &mockBooks{}, feeds: &mockFeeds{}, interactions: &mockInteractions{}}
	f.cat = New(f.books, f.feeds, f.interactions, c, logger.Discard(),
		WithViewer(func() string { return f.viewer }))
	return f
}

var (
	emma    = domain.Book{ID: "b1", Title: "Emma", Author: "Jane Austen", Genre: "romance", Price: domain.MustMoney("8.49")}
	dracula = domain.Book{ID: "b2", Title: "Dracula", Author: "Bram Stoker", Genre: "horror", Price: domain.MustMoney("6.75")}
)

func strategy(s domain.Strategy) any {
	return mock.MatchedBy(func(r domain.FeedRequest) bool { return r.Strategy == s })
}

// ---------------------------------------------------------------------------
// Read-through
// ---------------------------------------------------------------------------

func TestBooks_CachedAfterFirstRead(t *testing.T) {
	f := newFixture(t, cache.NewMemory())
	ctx := context.Background()
	filter := domain.BookFilter{Genre: "romance", Limit: 20}
	f.books.On("List", ctx, filter).Return([]domain.Book{emma}, nil).Once()

	first, err := f.cat.Books(ctx, filter)
	require.NoError(t, err)
	second, err := f.cat.Books(ctx, filter)
	require.NoError(t, err)

	assert.Equal(t, first[0].ID, second[0].ID)
	assert.True(t, second[0].Price.Equal(emma.Price))
	f.books.AssertNumberOfCalls(t, "List", 1)
}

func TestBooks_DifferentFiltersDifferentKeys(t *testing.T) {
	f := newFixture(t, cache.NewMemory())
	ctx := context.Background()
	low, high := 5.0, 7.0
	f.books.On("List", ctx, domain.BookFilter{MinPrice: &low}).Return([]domain.Book{emma, dracula}, nil).Once()
	f.books.On("List", ctx, domain.BookFilter{MinPrice: &low, MaxPrice: &high}).Return([]domain.Book{dracula}, nil).Once()

	all, err := f.cat.Books(ctx, domain.BookFilter{MinPrice: &low})
	require.NoError(t, err)
	cheap, err := f.cat.Books(ctx, domain.BookFilter{MinPrice: &low, MaxPrice: &high})
	require.NoError(t, err)

	assert.Len(t, all, 2)
	assert.Len(t, cheap, 1)
	f.books.AssertExpectations(t)
}

func TestBooks_ErrorsAreNotCached(t *testing.T) {
	f := newFixture(t, cache.NewMemory())
	ctx := context.Background()
	f.books.On("List", ctx, domain.BookFilter{}).Return(nil, apperrors.ServiceUnavailable("down")).Once()
	f.books.On("List", ctx, domain.BookFilter{}).Return([]domain.Book{emma}, nil).Once()

	_, err := f.cat.Books(ctx, domain.BookFilter{})
	assert.ErrorIs(t, err, apperrors.ErrServiceUnavail)

	got, err := f.cat.Books(ctx, domain.BookFilter{})
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestBooks_BrokenCacheFallsThrough(t *testing.T) {
	f := newFixture(t, brokenCache{})
	ctx := context.Background()
	f.books.On("Search", ctx, "austen", pagination.Window{Limit: 10}).Return([]domain.Book{emma}, nil)

	for range 2 {
		got, err := f.cat.Search(ctx, "austen", pagination.Window{Limit: 10})
		require.NoError(t, err)
		assert.Len(t, got, 1)
	}
	f.books.AssertNumberOfCalls(t, "Search", 2)
}

// ---------------------------------------------------------------------------
// Book detail
// ---------------------------------------------------------------------------

func TestBook_RecordsViewForViewer(t *testing.T) {
	f := newFixture(t, cache.NewMemory())
	f.viewer = "u1"
	ctx := context.Background()
	f.books.On("Get", ctx, "b1").Return(&emma, nil).Once()
	f.interactions.On("Create", ctx, mock.MatchedBy(func(in domain.InteractionCreate) bool {
		return in.BookID == "b1" && in.InteractionType == domain.InteractionView
	})).Return(&domain.Interaction{ID: "i1"}, nil).Once()
	f.interactions.On("Create", ctx, mock.Anything).Return(nil, apperrors.ServiceUnavailable("down")).Once()

	b, err := f.cat.Book(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, "Emma", b.Title)

	b, err = f.cat.Book(ctx, "b1")
	require.NoError(t, err, "a failed view is never surfaced")
	assert.Equal(t, "Emma", b.Title)

	f.books.AssertNumberOfCalls(t, "Get", 1)
	f.interactions.AssertNumberOfCalls(t, "Create", 2)
}

func TestBook_NoViewWhenLoggedOut(t *testing.T) {
	f := newFixture(t, cache.NewMemory())
	ctx := context.Background()
	f.books.On("Get", ctx, "b1").Return(&emma, nil)

	_, err := f.cat.Book(ctx, "b1")
	require.NoError(t, err)
	f.interactions.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestBook_NotFound(t *testing.T) {
	f := newFixture(t, cache.NewMemory())
	ctx := context.Background()
	f.books.On("Get", ctx, "nope").Return(nil, apperrors.NotFoundMessage("Book not found"))

	_, err := f.cat.Book(ctx, "nope")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

// ---------------------------------------------------------------------------
// Invalidation
// ---------------------------------------------------------------------------

func TestAdminMutationsInvalidateBooksAndFeeds(t *testing.T) {
	mem := cache.NewMemory()
	f := newFixture(t, mem)
	ctx := context.Background()
	f.books.On("List", ctx, domain.BookFilter{}).Return([]domain.Book{emma}, nil)
	f.feeds.On("Feed", ctx, strategy(domain.StrategyTrending)).Return([]domain.Book{emma}, nil)
	f.books.On("Update", ctx, "b1", mock.Anything).Return(&emma, nil)
	f.books.On("Delete", ctx, "b2").Return(nil)
	f.books.On("Create", ctx, mock.Anything).Return(&dracula, nil)

	require.NoError(t, mem.Set(ctx, PrefixLikes+"u1", []string{"b1"}, 0))

	load := func() {
		_, err := f.cat.Books(ctx, domain.BookFilter{})
		require.NoError(t, err)
		_, err = f.cat.Feed(ctx, domain.FeedRequest{Strategy: domain.StrategyTrending})
		require.NoError(t, err)
	}

	load()
	load()
	f.books.AssertNumberOfCalls(t, "List", 1)

	price := 7.99
	_, err := f.cat.UpdateBook(ctx, "b1", domain.BookUpdate{Price: &price})
	require.NoError(t, err)
	load()
	f.books.AssertNumberOfCalls(t, "List", 2)
	f.feeds.AssertNumberOfCalls(t, "Feed", 2)

	require.NoError(t, f.cat.DeleteBook(ctx, "b2"))
	load()
	_, err = f.cat.CreateBook(ctx, domain.BookCreate{Title: "Dracula"})
	require.NoError(t, err)
	load()
	f.books.AssertNumberOfCalls(t, "List", 4)

	assert.Equal(t, 3, mem.Len(), "likes survive book invalidation")
}

func TestFailedMutationKeepsCache(t *testing.T) {
	f := newFixture(t, cache.NewMemory())
	ctx := context.Background()
	f.books.On("List", ctx, domain.BookFilter{}).Return([]domain.Book{emma}, nil)
	f.books.On("Update", ctx, "b1", mock.Anything).Return(nil, apperrors.Forbidden("Not enough permissions"))

	_, err := f.cat.Books(ctx, domain.BookFilter{})
	require.NoError(t, err)
	_, err = f.cat.UpdateBook(ctx, "b1", domain.BookUpdate{})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
	_, err = f.cat.Books(ctx, domain.BookFilter{})
	require.NoError(t, err)
	f.books.AssertNumberOfCalls(t, "List", 1)
}

// ---------------------------------------------------------------------------
// Feeds and likes
// ---------------------------------------------------------------------------

func TestFeed_ValidatesBeforeCalling(t *testing.T) {
	f := newFixture(t, cache.NewMemory())

	_, err := f.cat.Feed(context.Background(), domain.FeedRequest{Strategy: domain.StrategySimilar})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	f.feeds.AssertNotCalled(t, "Feed", mock.Anything, mock.Anything)
}

func TestFeed_PersonalIsKeyedByViewer(t *testing.T) {
	f := newFixture(t, cache.NewMemory())
	ctx := context.Background()
	f.feeds.On("Feed", ctx, strategy(domain.StrategyPersonal)).Return([]domain.Book{emma}, nil)

	req := domain.FeedRequest{Strategy: domain.StrategyPersonal, Limit: 5}
	f.viewer = "u1"
	_, err := f.cat.Feed(ctx, req)
	require.NoError(t, err)
	_, err = f.cat.Feed(ctx, req)
	require.NoError(t, err)
	f.viewer = "u2"
	_, err = f.cat.Feed(ctx, req)
	require.NoError(t, err)

	f.feeds.AssertNumberOfCalls(t, "Feed", 2)
}

func TestHome_LoggedOutSkipsPersonal(t *testing.T) {
	f := newFixture(t, cache.NewMemory())
	ctx := context.Background()
	f.feeds.On("Feed", mock.Anything, strategy(domain.StrategyTrending)).Return([]domain.Book{dracula}, nil)
	f.feeds.On("Feed", mock.Anything, strategy(domain.StrategyNew)).Return([]domain.Book{emma}, nil)

	home, err := f.cat.Home(ctx)
	require.NoError(t, err)
	assert.Equal(t, "b2", home.Trending[0].ID)
	assert.Equal(t, "b1", home.New[0].ID)
	assert.Nil(t, home.Personal)
	f.feeds.AssertNumberOfCalls(t, "Feed", 2)
}

func TestHome_LoggedInLoadsAllFeeds(t *testing.T) {
	f := newFixture(t, cache.NewMemory())
	f.viewer = "u1"
	f.feeds.On("Feed", mock.Anything, strategy(domain.StrategyTrending)).Return([]domain.Book{dracula}, nil)
	f.feeds.On("Feed", mock.Anything, strategy(domain.StrategyNew)).Return([]domain.Book{emma}, nil)
	f.feeds.On("Feed", mock.Anything, strategy(domain.StrategyPersonal)).Return([]domain.Book{emma, dracula}, nil)

	home, err := f.cat.Home(context.Background())
	require.NoError(t, err)
	assert.Len(t, home.Personal, 2)
	f.feeds.AssertNumberOfCalls(t, "Feed", 3)
}

func TestHome_FailedFeedFailsPage(t *testing.T) {
	f := newFixture(t, cache.NewMemory())
	f.feeds.On("Feed", mock.Anything, strategy(domain.StrategyTrending)).Return(nil, apperrors.ServiceUnavailable("down"))
	f.feeds.On("Feed", mock.Anything, strategy(domain.StrategyNew)).Return([]domain.Book{emma}, nil)

	_, err := f.cat.Home(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrServiceUnavail)
}

func TestToggleLike_RefreshesLikes(t *testing.T) {
	f := newFixture(t, cache.NewMemory())
	f.viewer = "u1"
	ctx := context.Background()
	f.interactions.On("Likes", ctx).Return([]string{}, nil).Once()
	f.interactions.On("Likes", ctx).Return([]string{"b1"}, nil).Once()
	f.interactions.On("ToggleLike", ctx, "b1").Return(true, nil).Once()

	liked, err := f.cat.IsLiked(ctx, "b1")
	require.NoError(t, err)
	assert.False(t, liked)

	now, err := f.cat.ToggleLike(ctx, "b1")
	require.NoError(t, err)
	assert.True(t, now)

	liked, err = f.cat.IsLiked(ctx, "b1")
	require.NoError(t, err)
	assert.True(t, liked)
	f.interactions.AssertExpectations(t)
}

// ---------------------------------------------------------------------------
// Redis backend
// ---------------------------------------------------------------------------

func TestCatalog_RedisBackend(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	f := newFixture(t, cache.NewRedis(client, "bookshelf:"))
	ctx := context.Background()
	f.books.On("Get", ctx, "b1").Return(&emma, nil).Once()
	f.books.On("Delete", ctx, "b1").Return(nil)

	for range 2 {
		b, err := f.cat.Book(ctx, "b1")
		require.NoError(t, err)
		assert.True(t, b.Price.Equal(emma.Price))
	}
	f.books.AssertNumberOfCalls(t, "Get", 1)

	keys := mr.Keys()
	require.Len(t, keys, 1)
	assert.True(t, strings.HasPrefix(keys[0], "bookshelf:"+PrefixBooks))
	assert.Equal(t, DefaultTTLs().Books, mr.TTL(keys[0]))

	require.NoError(t, f.cat.DeleteBook(ctx, "b1"))
	assert.Empty(t, mr.Keys())
}
