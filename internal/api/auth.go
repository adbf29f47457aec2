package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/utafrali/bookshelf/internal/domain"
)

// AuthService covers /auth.
type AuthService struct{ c *Client }

// Register creates an account. It does not log in.
func (s *AuthService) Register(ctx context.Context, in domain.Registration) (*domain.User, error) {
	var u domain.User
	if err := s.c.do(ctx, request{method: http.MethodPost, path: basePath + "/auth/register", body: in}, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Login exchanges credentials for a bearer token. The API expects an
// OAuth2 password form with the email in the username field.
func (s *AuthService) Login(ctx context.Context, in domain.Credentials) (*domain.Token, error) {
	form := url.Values{}
	form.Set("username", in.Email)
	form.Set("password", in.Password)

	var tok domain.Token
	if err := s.c.do(ctx, request{method: http.MethodPost, path: basePath + "/auth/login", form: form}, &tok); err != nil {
		return nil, err
	}
	return &tok, nil
}

// Logout tells the API the session ended. Tokens are stateless, so callers
// must also drop their copy.
func (s *AuthService) Logout(ctx context.Context) error {
	return s.c.do(ctx, request{method: http.MethodPost, path: basePath + "/auth/logout"}, nil)
}

// Me returns the authenticated user.
func (s *AuthService) Me(ctx context.Context) (*domain.User, error) {
	var u domain.User
	if err := s.c.do(ctx, request{method: http.MethodGet, path: basePath + "/auth/me"}, &u); err != nil {
		return nil, err
	}
	return &u, nil
}
