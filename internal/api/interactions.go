package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/utafrali/bookshelf/internal/domain"
	"github.com/utafrali/bookshelf/pkg/pagination"
)

// InteractionsService covers /interactions.
type InteractionsService struct{ c *Client }

// Create records an interaction for the caller.
func (s *InteractionsService) Create(ctx context.Context, in domain.InteractionCreate) (*domain.Interaction, error) {
	var out domain.Interaction
	if err := s.c.do(ctx, request{method: http.MethodPost, path: basePath + "/interactions/", body: in}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ForUser returns a user's interactions, newest first.
func (s *InteractionsService) ForUser(ctx context.Context, userID string) ([]domain.Interaction, error) {
	var out []domain.Interaction
	err := s.c.do(ctx, request{method: http.MethodGet, path: basePath + "/interactions/user/" + url.PathEscape(userID)}, &out)
	return out, err
}

// AdminList returns a window over every interaction, optionally of one type.
func (s *InteractionsService) AdminList(ctx context.Context, w pagination.Window, typ domain.InteractionType) ([]domain.Interaction, error) {
	params := window(w)
	params["interaction_type"] = typ

	var out []domain.Interaction
	err := s.c.do(ctx, request{method: http.MethodGet, path: basePath + "/interactions/admin/list", query: params.Encode()}, &out)
	return out, err
}

// ToggleLike likes a book, or removes the like if present. It reports
// whether the like was added.
func (s *InteractionsService) ToggleLike(ctx context.Context, bookID string) (bool, error) {
	resp, err := s.c.send(ctx, request{method: http.MethodPost, path: basePath + "/interactions/toggle-like/" + url.PathEscape(bookID)})
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()
	return resp.StatusCode != http.StatusNoContent, nil
}

// Likes returns the ids of books the caller likes, most recent first.
func (s *InteractionsService) Likes(ctx context.Context) ([]string, error) {
	var out []string
	err := s.c.do(ctx, request{method: http.MethodGet, path: basePath + "/interactions/likes"}, &out)
	return out, err
}
