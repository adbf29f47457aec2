package ui

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/utafrali/bookshelf/internal/api"
	"github.com/utafrali/bookshelf/internal/cart"
	"github.com/utafrali/bookshelf/internal/fakeapi"
	apperrors "github.com/utafrali/bookshelf/pkg/errors"
	"github.com/utafrali/bookshelf/pkg/httpclient"
	"github.com/utafrali/bookshelf/pkg/logger"
)

var (
	emmaID    = fakeapi.SeedID("book", "9780141439587")
	draculaID = fakeapi.SeedID("book", "9780486411095")
)

type drawerEnv struct {
	srv    *fakeapi.Server
	state  *State
	store  *cart.Store
	drawer *Drawer
	out    *bytes.Buffer
}

func newDrawerEnv(t *testing.T) *drawerEnv {
	t.Helper()
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

	env := &drawerEnv{srv: srv, state: NewState(WithNotificationTTL(0)), out: &bytes.Buffer{}}
	env.store = cart.NewStore(client.Cart, env.state, logger.Discard())
	env.drawer = NewDrawer(env.store, env.state, testRenderer(), env.out)
	t.Cleanup(env.drawer.Detach)
	return env
}

func TestDrawer_RerendersOnEverySnapshot(t *testing.T) {
	env := newDrawerEnv(t)
	ctx := context.Background()
	assert.Contains(t, env.drawer.View(), "Your cart is empty.")

	_, err := env.store.Add(ctx, emmaID, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, env.drawer.Renders())
	assert.Contains(t, env.drawer.View(), "Emma")
	assert.Contains(t, env.drawer.View(), "$16.98")
	assert.Empty(t, env.out.String(), "closed drawer writes nothing")

	require.NoError(t, env.drawer.Open(ctx))
	assert.Contains(t, env.out.String(), "Emma")

	require.NoError(t, env.drawer.Increase(ctx, emmaID))
	assert.Contains(t, env.drawer.View(), "$25.47")

	require.NoError(t, env.drawer.Decrease(ctx, emmaID))
	require.NoError(t, env.drawer.Decrease(ctx, emmaID))
	require.NoError(t, env.drawer.Decrease(ctx, emmaID))
	assert.Contains(t, env.drawer.View(), "Your cart is empty.")

	msgs := env.state.Drain()
	require.NotEmpty(t, msgs)
	assert.Equal(t, cart.MsgAdded, msgs[0].Message)
	assert.Equal(t, cart.MsgRemoved, msgs[len(msgs)-1].Message)
}

func TestDrawer_FailedMutationKeepsView(t *testing.T) {
	env := newDrawerEnv(t)
	ctx := context.Background()

	_, err := env.store.Add(ctx, draculaID, 1)
	require.NoError(t, err)
	before := env.drawer.View()
	env.state.ClearNotifications()

	env.srv.FailNextWith(http.MethodPut, "/api/v1/cart/update/"+draculaID, http.StatusInternalServerError, "database unavailable")
	err = env.drawer.Increase(ctx, draculaID)
	require.Error(t, err)

	assert.Equal(t, before, env.drawer.View())
	msgs := env.state.Drain()
	require.Len(t, msgs, 1)
	assert.Equal(t, LevelError, msgs[0].Level)
	assert.Equal(t, cart.MsgUpdateFailed+": database unavailable", msgs[0].Message)
}

func TestDrawer_UnknownLine(t *testing.T) {
	env := newDrawerEnv(t)

	err := env.drawer.Increase(context.Background(), emmaID)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	require.NoError(t, env.drawer.Open(context.Background()))
	err = env.drawer.Decrease(context.Background(), emmaID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestDrawer_ResetRendersEmpty(t *testing.T) {
	env := newDrawerEnv(t)

	_, err := env.store.Add(context.Background(), emmaID, 1)
	require.NoError(t, err)
	env.store.Reset()
	assert.Contains(t, env.drawer.View(), "Your cart is empty.")
}
