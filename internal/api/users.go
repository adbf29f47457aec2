package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/utafrali/bookshelf/internal/domain"
	"github.com/utafrali/bookshelf/pkg/pagination"
)

// UsersService covers /users for the caller's own account.
type UsersService struct{ c *Client }

func userPath(id string) string {
	return basePath + "/users/" + url.PathEscape(id)
}

func (c *Client) user(ctx context.Context, req request) (*domain.User, error) {
	var u domain.User
	if err := c.do(ctx, req, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Get returns a user profile.
func (s *UsersService) Get(ctx context.Context, id string) (*domain.User, error) {
	return s.c.user(ctx, request{method: http.MethodGet, path: userPath(id)})
}

// Update changes profile fields. The API ignores is_admin here.
func (s *UsersService) Update(ctx context.Context, id string, in domain.UserUpdate) (*domain.User, error) {
	return s.c.user(ctx, request{method: http.MethodPut, path: userPath(id), body: in})
}

// History returns the user's interactions, newest first.
func (s *UsersService) History(ctx context.Context, id string) ([]domain.Interaction, error) {
	var out []domain.Interaction
	err := s.c.do(ctx, request{method: http.MethodGet, path: userPath(id) + "/history"}, &out)
	return out, err
}

// UpdatePreferences replaces the user's preferences.
func (s *UsersService) UpdatePreferences(ctx context.Context, id string, p domain.Preferences) (*domain.User, error) {
	return s.c.user(ctx, request{method: http.MethodPut, path: userPath(id) + "/preferences", body: p})
}

// AdminService covers the admin user management endpoints.
type AdminService struct{ c *Client }

func adminUserPath(id string) string {
	return basePath + "/users/admin/" + url.PathEscape(id)
}

// ListUsers returns a window of all accounts.
func (s *AdminService) ListUsers(ctx context.Context, w pagination.Window) ([]domain.User, error) {
	var out []domain.User
	err := s.c.do(ctx, request{method: http.MethodGet, path: basePath + "/users/admin/list", query: window(w).Encode()}, &out)
	return out, err
}

// UpdateUser changes any account, including its admin flag.
func (s *AdminService) UpdateUser(ctx context.Context, id string, in domain.UserUpdate) (*domain.User, error) {
	return s.c.user(ctx, request{method: http.MethodPut, path: adminUserPath(id), body: in})
}

// DeleteUser removes an account.
func (s *AdminService) DeleteUser(ctx context.Context, id string) error {
	return s.c.do(ctx, request{method: http.MethodDelete, path: adminUserPath(id)}, nil)
}
