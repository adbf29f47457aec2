package checkout

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/utafrali/bookshelf/internal/api"
	"github.com/utafrali/bookshelf/internal/cart"
	"github.com/utafrali/bookshelf/internal/domain"
	"github.com/utafrali/bookshelf/internal/fakeapi"
	apperrors "github.com/utafrali/bookshelf/pkg/errors"
	"github.com/utafrali/bookshelf/pkg/httpclient"
	"github.com/utafrali/bookshelf/pkg/logger"
)

// ============================================================================
// Mocks
// ============================================================================

type mockOrderAPI struct {
	mock.Mock
}

func (m *mockOrderAPI) order(args mock.Arguments) (*domain.Order, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *mockOrderAPI) Create(ctx context.Context, in domain.OrderCreate) (*domain.Order, error) {
	return m.order(m.Called(ctx, in))
}

func (m *mockOrderAPI) Cancel(ctx context.Context, id string) (*domain.Order, error) {
	return m.order(m.Called(ctx, id))
}

func (m *mockOrderAPI) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, error) {
	return m.order(m.Called(ctx, id, status))
}

type mockCartSync struct {
	mock.Mock
}

func (m *mockCartSync) Cart(ctx context.Context) (domain.Cart, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.Cart), args.Error(1)
}

func (m *mockCartSync) Invalidate() {
	m.Called()
}

func (m *mockCartSync) Refresh(ctx context.Context) (domain.Cart, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.Cart), args.Error(1)
}

type promo struct {
	code string
}

func (p *promo) ClearPromoCode() { p.code = "" }

type notes struct {
	mu      sync.Mutex
	ok, bad []string
}

func (n *notes) Success(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.ok = append(n.ok, msg)
}

func (n *notes) Error(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.bad = append(n.bad, msg)
}

var address = domain.ShippingAddress{
	Address:    "221B Baker Street",
	City:       "London",
	PostalCode: "NW1 6XE",
	Country:    "UK",
}

func oneLineCart() domain.Cart {
	price := domain.MustMoney("8.49")
	c := domain.Cart{Items: []domain.CartItem{{
		BookID:   "b1",
		Quantity: 1,
		Book:     domain.CartBook{ID: "b1", Title: "Emma", Price: price},
	}}}
	c.Recalculate()
	return c
}

type fixture struct {
	orders *mockOrderAPI
	cart   *mockCartSync
	promo  *promo
	notes  *notes
	svc    *Service
}

func newFixture() *fixture {
	f := &fixture{orders: &mockOrderAPI{}, cart: &mockCartSync{}, promo: &promo{code: "SPRING"}, notes: &notes{}}
	f.svc = NewService(f.orders, f.cart, f.promo, f.notes, nil, logger.Discard())
	return f
}

// ============================================================================
// Wizard
// ============================================================================

func TestWizard_StepsAreClamped(t *testing.T) {
	w := NewWizard()
	assert.Equal(t, StepAddress, w.Step())
	assert.Equal(t, StepAddress, w.Prev())
	assert.Equal(t, StepConfirm, w.SetStep(9))
	assert.Equal(t, StepAddress, w.SetStep(-2))
	assert.Len(t, StepLabels, 3)
}

func TestWizard_NextValidatesCurrentStep(t *testing.T) {
	w := NewWizard()

	step, err := w.Next()
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	assert.Equal(t, StepAddress, step)

	w.SetAddress(domain.ShippingAddress{Address: "  221B Baker Street ", City: "London", PostalCode: "NW1", Country: "UK"})
	step, err = w.Next()
	require.NoError(t, err)
	assert.Equal(t, StepPayment, step)

	w.SetPayment("bitcoin")
	_, err = w.Next()
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	w.SetPayment(" CASH ")
	step, err = w.Next()
	require.NoError(t, err)
	assert.Equal(t, StepConfirm, step)

	step, err = w.Next()
	require.NoError(t, err)
	assert.Equal(t, StepConfirm, step)

	in := w.Order()
	assert.Equal(t, "221B Baker Street", in.ShippingAddress.Address)
	assert.Equal(t, domain.PaymentCash, in.PaymentMethod)

	w.Reset()
	assert.Equal(t, StepAddress, w.Step())
	assert.Equal(t, domain.OrderCreate{PaymentMethod: domain.PaymentCard}, w.Order())
}

// ============================================================================
// PlaceOrder
// ============================================================================

func TestPlaceOrder_Success(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	in := domain.OrderCreate{ShippingAddress: address, PaymentMethod: domain.PaymentCard}
	placed := &domain.Order{ID: "o1", Status: domain.OrderPending, TotalAmount: domain.MustMoney("8.49")}

	f.svc.Wizard().SetStep(StepConfirm)
	f.cart.On("Cart", ctx).Return(oneLineCart(), nil).Once()
	f.orders.On("Create", ctx, in).Return(placed, nil).Once()
	f.cart.On("Invalidate").Once()
	f.cart.On("Refresh", ctx).Return(domain.Cart{}, nil).Once()

	got, err := f.svc.PlaceOrder(ctx, address, domain.PaymentCard)
	require.NoError(t, err)
	assert.Equal(t, "o1", got.ID)
	assert.Equal(t, []string{MsgOrderPlaced}, f.notes.ok)
	assert.Empty(t, f.notes.bad)
	assert.Empty(t, f.promo.code)
	assert.Equal(t, StepAddress, f.svc.Wizard().Step())
	f.orders.AssertExpectations(t)
	f.cart.AssertExpectations(t)
}

func TestPlaceOrder_RefreshFailureStillReturnsOrder(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.cart.On("Cart", ctx).Return(oneLineCart(), nil)
	f.orders.On("Create", ctx, mock.Anything).Return(&domain.Order{ID: "o1"}, nil)
	f.cart.On("Invalidate")
	f.cart.On("Refresh", ctx).Return(domain.Cart{}, apperrors.ServiceUnavailable("cart"))

	got, err := f.svc.PlaceOrder(ctx, address, domain.PaymentCash)
	require.NoError(t, err)
	assert.Equal(t, "o1", got.ID)
	assert.Equal(t, []string{MsgOrderPlaced}, f.notes.ok)
}

func TestPlaceOrder_InvalidInputMakesNoCalls(t *testing.T) {
	f := newFixture()

	_, err := f.svc.PlaceOrder(context.Background(), domain.ShippingAddress{City: "London"}, domain.PaymentCard)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	_, err = f.svc.PlaceOrder(context.Background(), address, "cheque")
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	require.Len(t, f.notes.bad, 2)
	assert.Contains(t, f.notes.bad[0], MsgOrderFailed)
	f.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	f.cart.AssertNotCalled(t, "Cart", mock.Anything)
}

func TestPlaceOrder_EmptyCart(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.cart.On("Cart", ctx).Return(domain.Cart{}, nil)

	_, err := f.svc.PlaceOrder(ctx, address, domain.PaymentCard)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	assert.Equal(t, []string{MsgCartEmpty}, f.notes.bad)
	f.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestPlaceOrder_ServerErrorKeepsState(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.svc.Wizard().SetAddress(address)
	f.svc.Wizard().SetStep(StepConfirm)

	f.cart.On("Cart", ctx).Return(oneLineCart(), nil)
	f.orders.On("Create", ctx, mock.Anything).Return(nil, apperrors.InvalidInput("Not enough copies of Emma in stock"))

	_, err := f.svc.Submit(ctx)
	require.Error(t, err)
	assert.Equal(t, []string{"Not enough copies of Emma in stock"}, f.notes.bad)
	assert.Equal(t, "SPRING", f.promo.code)
	assert.Equal(t, StepConfirm, f.svc.Wizard().Step())
	f.cart.AssertNotCalled(t, "Invalidate")
}

func TestSubmit_RequiresConfirmStep(t *testing.T) {
	f := newFixture()

	_, err := f.svc.Submit(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	f.cart.AssertNotCalled(t, "Cart", mock.Anything)
}

// ============================================================================
// Cancel / SetStatus
// ============================================================================

func TestCancel(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.orders.On("Cancel", ctx, "o1").Return(&domain.Order{ID: "o1", Status: domain.OrderCancelled}, nil).Once()
	f.orders.On("Cancel", ctx, "o2").Return(nil, apperrors.InvalidInput("Order has already been processed and cannot be cancelled")).Once()

	got, err := f.svc.Cancel(ctx, "o1")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderCancelled, got.Status)

	_, err = f.svc.Cancel(ctx, "o2")
	require.Error(t, err)

	assert.Equal(t, []string{MsgOrderCancelled}, f.notes.ok)
	assert.Equal(t, []string{MsgCancelFailed + ": Order has already been processed and cannot be cancelled"}, f.notes.bad)
}

func TestSetStatus(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.orders.On("UpdateStatus", ctx, "o1", domain.OrderShipped).Return(&domain.Order{ID: "o1", Status: domain.OrderShipped}, nil)

	got, err := f.svc.SetStatus(ctx, "o1", domain.OrderShipped)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderShipped, got.Status)

	_, err = f.svc.SetStatus(ctx, "o1", "lost")
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	assert.Equal(t, []string{MsgStatusUpdated}, f.notes.ok)
	require.Len(t, f.notes.bad, 1)
	assert.Contains(t, f.notes.bad[0], MsgStatusUpdateFailed)
	f.orders.AssertNumberOfCalls(t, "UpdateStatus", 1)
}

// ============================================================================
// Against the mock API
// ============================================================================

func TestPlaceOrder_EndToEnd(t *testing.T) {
	cfg := fakeapi.DefaultConfig()
	cfg.BcryptCost = bcrypt.MinCost
	srv, err := fakeapi.New(cfg, logger.Discard())
	require.NoError(t, err)
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)

	token, err := srv.Login(fakeapi.SeedReaderEmail, fakeapi.SeedReaderPassword)
	require.NoError(t, err)
	client, err := api.New(ts.URL, httpclient.New(httpclient.DefaultConfig()), api.WithToken(func() string { return token }))
	require.NoError(t, err)

	n := &notes{}
	store := cart.NewStore(client.Cart, n, logger.Discard())
	p := &promo{code: "SPRING"}
	svc := NewService(client.Orders, store, p, n, nil, logger.Discard())
	ctx := context.Background()

	emma := fakeapi.SeedID("book", "9780141439587")
	_, err = store.Add(ctx, emma, 2)
	require.NoError(t, err)

	srv.FailNextWith(http.MethodPost, "/api/v1/orders", http.StatusInternalServerError, "payment gateway down")
	_, err = svc.PlaceOrder(ctx, address, domain.PaymentCard)
	require.Error(t, err)
	snap, ok := store.Snapshot()
	require.True(t, ok)
	assert.Equal(t, 2, snap.Quantity(emma))

	order, err := svc.PlaceOrder(ctx, address, domain.PaymentCard)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderPending, order.Status)
	assert.True(t, order.TotalAmount.Equal(domain.MustMoney("16.98")))

	snap, ok = store.Snapshot()
	require.True(t, ok)
	assert.True(t, snap.IsEmpty())

	cancelled, err := svc.Cancel(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderCancelled, cancelled.Status)

	_, err = svc.Cancel(ctx, order.ID)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	assert.Contains(t, n.bad, "payment gateway down")
}
