package fakeapi

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/utafrali/bookshelf/internal/domain"
	"github.com/utafrali/bookshelf/pkg/logger"
)

type testEnv struct {
	srv *Server
	ts  *httptest.Server
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	cfg := DefaultConfig()
	cfg.BcryptCost = bcrypt.MinCost
	srv, err := New(cfg, logger.Discard())
	require.NoError(t, err)
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)
	return &testEnv{srv: srv, ts: ts}
}

func (e *testEnv) token(t *testing.T, email, password string) string {
	t.Helper()
	tok, err := e.srv.Login(email, password)
	require.NoError(t, err)
	return tok
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) (*http.Response, []byte) {
	t.Helper()
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rdr = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, e.ts.URL+path, rdr)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func detail(t *testing.T, data []byte) string {
	t.Helper()
	var body struct {
		Detail string `json:"detail"`
	}
	require.NoError(t, json.Unmarshal(data, &body))
	return body.Detail
}

// ---------------------------------------------------------------------------
// Auth
// ---------------------------------------------------------------------------

func TestServer_RegisterLoginMe(t *testing.T) {
	e := newTestEnv(t)

	resp, data := e.do(t, http.MethodPost, "/api/v1/auth/register", "", domain.Registration{
		Email: "ann@example.com", Username: "ann", Password: "secret1",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(data))

	form := url.Values{"username": {"ann@example.com"}, "password": {"secret1"}}
	loginResp, err := http.Post(e.ts.URL+"/api/v1/auth/login", "application/x-www-form-urlencoded", strings.NewReader(form.Encode()))
	require.NoError(t, err)
	defer loginResp.Body.Close()
	require.Equal(t, http.StatusOK, loginResp.StatusCode)

	var tok domain.Token
	require.NoError(t, json.NewDecoder(loginResp.Body).Decode(&tok))
	assert.Equal(t, "bearer", tok.TokenType)

	resp, data = e.do(t, http.MethodGet, "/api/v1/auth/me", tok.AccessToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var me domain.User
	require.NoError(t, json.Unmarshal(data, &me))
	assert.Equal(t, "ann", me.Username)
}

func TestServer_Login_BadCredentials(t *testing.T) {
	e := newTestEnv(t)
	form := url.Values{"username": {SeedReaderEmail}, "password": {"nope"}}
	resp, err := http.Post(e.ts.URL+"/api/v1/auth/login", "application/x-www-form-urlencoded", strings.NewReader(form.Encode()))
	require.NoError(t, err)
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, msgBadCredentials, detail(t, data))
}

func TestServer_Register_Validation(t *testing.T) {
	e := newTestEnv(t)
	resp, data := e.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{"email": "bad", "username": "x", "password": "1"})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, string(data), `"loc":["body","email"]`)
}

func TestServer_ExpiredToken(t *testing.T) {
	e := newTestEnv(t)
	e.srv.tokens.now = func() time.Time { return time.Now().Add(-time.Hour) }
	tok, err := e.srv.TokenFor(readerID)
	require.NoError(t, err)
	e.srv.tokens.now = time.Now

	resp, data := e.do(t, http.MethodGet, "/api/v1/cart", tok, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Could not validate credentials", detail(t, data))
}

// ---------------------------------------------------------------------------
// Cart
// ---------------------------------------------------------------------------

func TestServer_CartFlow(t *testing.T) {
	e := newTestEnv(t)
	tok := e.token(t, SeedReaderEmail, SeedReaderPassword)

	resp, data := e.do(t, http.MethodPost, "/api/v1/cart/add", tok, domain.CartAdd{BookID: prideID, Quantity: 2})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(data))
	var c domain.Cart
	require.NoError(t, json.Unmarshal(data, &c))
	assert.Equal(t, 2, c.TotalItems)
	assert.Equal(t, "19.98", c.TotalPrice.String())

	resp, data = e.do(t, http.MethodPut, "/api/v1/cart/update/"+prideID, tok, domain.CartUpdate{Quantity: 5})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(data))
	require.NoError(t, json.Unmarshal(data, &c))
	assert.Equal(t, 5, c.Quantity(prideID))

	resp, data = e.do(t, http.MethodDelete, "/api/v1/cart/clear", tok, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(data))
	require.NoError(t, json.Unmarshal(data, &c))
	assert.True(t, c.IsEmpty())

	resp, data = e.do(t, http.MethodDelete, "/api/v1/cart/"+prideID, tok, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, msgCartEmpty, detail(t, data))
}

func TestServer_Cart_RequiresAuth(t *testing.T) {
	e := newTestEnv(t)
	resp, data := e.do(t, http.MethodGet, "/api/v1/cart", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Not authenticated", detail(t, data))
	assert.Equal(t, "Bearer", resp.Header.Get("WWW-Authenticate"))
}

func TestServer_Cart_RejectsZeroQuantityAdd(t *testing.T) {
	e := newTestEnv(t)
	tok := e.token(t, SeedReaderEmail, SeedReaderPassword)
	resp, data := e.do(t, http.MethodPost, "/api/v1/cart/add", tok, domain.CartAdd{BookID: prideID, Quantity: 0})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, string(data), "quantity")
}

func TestServer_FailNext(t *testing.T) {
	e := newTestEnv(t)
	tok := e.token(t, SeedReaderEmail, SeedReaderPassword)

	e.srv.FailNext(http.MethodGet, "/api/v1/cart", http.StatusServiceUnavailable)
	resp, data := e.do(t, http.MethodGet, "/api/v1/cart", tok, nil)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, "Service Unavailable", detail(t, data))

	resp, _ = e.do(t, http.MethodGet, "/api/v1/cart/", tok, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode, "a fault fires once")
}

// ---------------------------------------------------------------------------
// Books and admin
// ---------------------------------------------------------------------------

func TestServer_ListAndSearchBooks(t *testing.T) {
	e := newTestEnv(t)

	resp, data := e.do(t, http.MethodGet, "/api/v1/books?genre=horror&max_price=5", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var books []domain.Book
	require.NoError(t, json.Unmarshal(data, &books))
	require.Len(t, books, 1)
	assert.Equal(t, "Frankenstein", books[0].Title)
	assert.Equal(t, "public, max-age=60", resp.Header.Get("Cache-Control"))

	resp, data = e.do(t, http.MethodGet, "/api/v1/books/search?q=DOSTOEVSKY&limit=1", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(data, &books))
	assert.Len(t, books, 1)

	resp, _ = e.do(t, http.MethodGet, "/api/v1/books/search", "", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	resp, _ = e.do(t, http.MethodGet, "/api/v1/books?min_price=cheap", "", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestServer_AdminBookMutations(t *testing.T) {
	e := newTestEnv(t)
	reader := e.token(t, SeedReaderEmail, SeedReaderPassword)
	admin := e.token(t, SeedAdminEmail, SeedAdminPassword)
	in := domain.BookCreate{
		Title: "Dune", Author: "Frank Herbert", Description: "Spice", Genre: "science fiction",
		Publisher: "Chilton", PublicationYear: 1965, PageCount: 412, Price: 9.99, Stock: 3,
	}

	resp, data := e.do(t, http.MethodPost, "/api/v1/books", reader, in)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "Not enough permissions", detail(t, data))

	resp, data = e.do(t, http.MethodPost, "/api/v1/books/", admin, in)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(data))
	var b domain.Book
	require.NoError(t, json.Unmarshal(data, &b))
	assert.Equal(t, "en", b.Language)

	title := "Dune Messiah"
	resp, _ = e.do(t, http.MethodPut, "/api/v1/books/"+b.ID, admin, domain.BookUpdate{Title: &title})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = e.do(t, http.MethodDelete, "/api/v1/books/"+b.ID, admin, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = e.do(t, http.MethodGet, "/api/v1/books/"+b.ID, "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestServer_AdminUsers(t *testing.T) {
	e := newTestEnv(t)
	reader := e.token(t, SeedReaderEmail, SeedReaderPassword)
	admin := e.token(t, SeedAdminEmail, SeedAdminPassword)

	resp, _ := e.do(t, http.MethodGet, "/api/v1/users/admin/list", reader, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = e.do(t, http.MethodGet, "/api/v1/users/"+adminID, reader, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, data := e.do(t, http.MethodGet, "/api/v1/users/admin/list", admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var users []domain.User
	require.NoError(t, json.Unmarshal(data, &users))
	assert.Len(t, users, 2)

	promote := true
	resp, _ = e.do(t, http.MethodPut, "/api/v1/users/admin/"+readerID, admin, domain.UserUpdate{IsAdmin: &promote})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// The role is read from the live account, so the old token now passes.
	resp, _ = e.do(t, http.MethodGet, "/api/v1/users/admin/list", reader, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = e.do(t, http.MethodDelete, "/api/v1/users/admin/"+adminID, admin, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

// ---------------------------------------------------------------------------
// Orders, likes, feeds
// ---------------------------------------------------------------------------

func TestServer_OrderFlow(t *testing.T) {
	e := newTestEnv(t)
	tok := e.token(t, SeedReaderEmail, SeedReaderPassword)

	resp, data := e.do(t, http.MethodPost, "/api/v1/orders", tok, domain.OrderCreate{ShippingAddress: testAddress, PaymentMethod: "card"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, msgNoCartItems, detail(t, data))

	e.do(t, http.MethodPost, "/api/v1/cart/add", tok, domain.CartAdd{BookID: crimeID, Quantity: 1})
	resp, data = e.do(t, http.MethodPost, "/api/v1/orders", tok, domain.OrderCreate{ShippingAddress: testAddress, PaymentMethod: "card"})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(data))
	var o domain.Order
	require.NoError(t, json.Unmarshal(data, &o))

	resp, data = e.do(t, http.MethodGet, "/api/v1/orders?page=1&limit=10", tok, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list domain.OrderList
	require.NoError(t, json.Unmarshal(data, &list))
	assert.Equal(t, 1, list.TotalCount)
	assert.Equal(t, 10, list.Limit)

	resp, data = e.do(t, http.MethodPut, "/api/v1/orders/"+o.ID+"/cancel", tok, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(data))
	require.NoError(t, json.Unmarshal(data, &o))
	assert.Equal(t, domain.OrderCancelled, o.Status)

	admin := e.token(t, SeedAdminEmail, SeedAdminPassword)
	resp, _ = e.do(t, http.MethodGet, "/api/v1/orders/"+o.ID, admin, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, data = e.do(t, http.MethodGet, "/api/v1/orders/admin?status=cancelled", admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(data, &list))
	assert.Equal(t, 1, list.TotalCount)
}

func TestServer_ToggleLike(t *testing.T) {
	e := newTestEnv(t)
	tok := e.token(t, SeedReaderEmail, SeedReaderPassword)

	resp, _ := e.do(t, http.MethodPost, "/api/v1/interactions/toggle-like/"+prideID, tok, nil)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, data := e.do(t, http.MethodGet, "/api/v1/interactions/likes", tok, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `["`+prideID+`"]`, string(data))

	resp, data = e.do(t, http.MethodPost, "/api/v1/interactions/toggle-like/"+prideID, tok, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Empty(t, data)
}

func TestServer_Recommendations(t *testing.T) {
	e := newTestEnv(t)

	resp, data := e.do(t, http.MethodGet, "/api/v1/recommendations/by-genre/science%20fiction?limit=1", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var books []domain.Book
	require.NoError(t, json.Unmarshal(data, &books))
	require.Len(t, books, 1)
	assert.Equal(t, "The War of the Worlds", books[0].Title)

	resp, _ = e.do(t, http.MethodGet, "/api/v1/recommendations/trending?days=400", "", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	resp, data = e.do(t, http.MethodGet, "/api/v1/recommendations/similar/unknown", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Book not found", detail(t, data))

	resp, _ = e.do(t, http.MethodGet, "/api/v1/recommendations/for-you", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestServer_HealthAndMetrics(t *testing.T) {
	e := newTestEnv(t)

	resp, data := e.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"healthy"}`, string(data))

	resp, _ = e.do(t, http.MethodGet, "/health/ready", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, data = e.do(t, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(data), "http_requests_total")
}
