// Package api is a typed client for the bookshelf REST API.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	apperrors "github.com/utafrali/bookshelf/pkg/errors"
	"github.com/utafrali/bookshelf/pkg/httpclient"
	"github.com/utafrali/bookshelf/pkg/logger"
	"github.com/utafrali/bookshelf/pkg/middleware"
)

// ServiceName labels errors produced from API responses.
const ServiceName = "bookshelf-api"

// basePath prefixes every resource route.
const basePath = "/api/v1"

// HTTPDoer is the interface for executing HTTP requests.
// Both httpclient.Client and httpclient.CircuitBreakerClient satisfy this.
type HTTPDoer interface {
	Do(ctx context.Context, req *http.Request) (*http.Response, error)
}

// Option configures a Client.
type Option func(*Client)

// WithToken sets the source of the bearer token. It is consulted on every
// request; an empty token sends no Authorization header.
func WithToken(fn func() string) Option {
	return func(c *Client) { c.token = fn }
}

// WithUnauthorizedHook registers fn to run whenever the API answers 401.
func WithUnauthorizedHook(fn func()) Option {
	return func(c *Client) { c.onUnauthorized = fn }
}

// WithLogger sets the client logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// Client talks to the bookshelf API. Resource groups are exposed as
// services sharing the same transport.
type Client struct {
	baseURL        *url.URL
	doer           HTTPDoer
	token          func() string
	onUnauthorized func()
	logger         *slog.Logger

	Auth            *AuthService
	Books           *BooksService
	Cart            *CartService
	Orders          *OrdersService
	Users           *UsersService
	Admin           *AdminService
	Interactions    *InteractionsService
	Recommendations *RecommendationsService
	Analytics       *AnalyticsService
}

// New creates a client for the API rooted at baseURL.
func New(baseURL string, doer HTTPDoer, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, apperrors.InvalidInput(fmt.Sprintf("base url %q must be absolute", baseURL))
	}
	if doer == nil {
		return nil, apperrors.InvalidInput("http doer is required")
	}

	c := &Client{
		baseURL: u,
		doer:    doer,
		token:   func() string { return "" },
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.Auth = &AuthService{c: c}
	c.Books = &BooksService{c: c}
	c.Cart = &CartService{c: c}
	c.Orders = &OrdersService{c: c}
	c.Users = &UsersService{c: c}
	c.Admin = &AdminService{c: c}
	c.Interactions = &InteractionsService{c: c}
	c.Recommendations = &RecommendationsService{c: c}
	c.Analytics = &AnalyticsService{c: c}
	return c, nil
}

// BaseURL returns the API root the client was built with.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// endpoint joins the resource path onto the base URL and attaches query.
func (c *Client) endpoint(path string, query url.Values) string {
	u := *c.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + path
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// request is one API call.
type request struct {
	method string
	path   string
	query  url.Values
	body   any
	form   url.Values
	// accept lists the success statuses; 2xx when empty.
	accept []int
}

func (r request) accepts(status int) bool {
	if len(r.accept) == 0 {
		return status >= 200 && status < 300
	}
	for _, s := range r.accept {
		if s == status {
			return true
		}
	}
	return false
}

// send executes req and returns the raw response on success. Failures are
// turned into *apperrors.AppError and the body is closed.
func (c *Client) send(ctx context.Context, req request) (*http.Response, error) {
	var body io.Reader = http.NoBody
	contentType := ""
	switch {
	case req.form != nil:
		body = strings.NewReader(req.form.Encode())
		contentType = "application/x-www-form-urlencoded"
	case req.body != nil:
		b, err := json.Marshal(req.body)
		if err != nil {
			return nil, fmt.Errorf("marshal %s %s request: %w", req.method, req.path, err)
		}
		body = bytes.NewReader(b)
		contentType = "application/json"
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, c.endpoint(req.path, req.query), body)
	if err != nil {
		return nil, fmt.Errorf("create %s %s request: %w", req.method, req.path, err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	if token := c.token(); token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}
	if id := logger.CorrelationIDFromContext(ctx); id != "" {
		httpReq.Header.Set(middleware.CorrelationHeader, id)
	}

	resp, err := c.doer.Do(ctx, httpReq)
	if err != nil {
		return nil, fmt.Errorf("call %s %s: %w", req.method, req.path, err)
	}

	if !req.accepts(resp.StatusCode) {
		if resp.StatusCode == http.StatusUnauthorized && c.onUnauthorized != nil {
			c.onUnauthorized()
		}
		apiErr := httpclient.ParseResponseError(resp, ServiceName)
		c.logger.DebugContext(ctx, "api request failed",
			slog.String("method", req.method),
			slog.String("path", req.path),
			slog.Int("status", resp.StatusCode),
			slog.String("error", apiErr.Error()),
		)
		return nil, apiErr
	}
	return resp, nil
}

// do executes req and decodes the JSON response into out. A nil out
// discards the body.
func (c *Client) do(ctx context.Context, req request, out any) error {
	resp, err := c.send(ctx, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", req.method, req.path, err)
	}
	return nil
}

// Health reports whether the API answers its liveness probe.
func (c *Client) Health(ctx context.Context) (string, error) {
	var out struct {
		Status string `json:"status"`
	}
	if err := c.do(ctx, request{method: http.MethodGet, path: "/health"}, &out); err != nil {
		return "", err
	}
	return out.Status, nil
}
