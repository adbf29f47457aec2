package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/utafrali/bookshelf/internal/domain"
)

// CartService covers /cart. Every call answers with the full server cart.
type CartService struct{ c *Client }

func (s *CartService) call(ctx context.Context, req request) (*domain.Cart, error) {
	var cart domain.Cart
	if err := s.c.do(ctx, req, &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

func cartItemPath(bookID string) string {
	return basePath + "/cart/" + url.PathEscape(bookID)
}

func cartUpdatePath(bookID string) string {
	return basePath + "/cart/update/" + url.PathEscape(bookID)
}

// Get returns the current cart.
func (s *CartService) Get(ctx context.Context) (*domain.Cart, error) {
	return s.call(ctx, request{method: http.MethodGet, path: basePath + "/cart/"})
}

// Add puts qty copies of a book in the cart, merging with an existing line.
func (s *CartService) Add(ctx context.Context, bookID string, qty int) (*domain.Cart, error) {
	return s.call(ctx, request{
		method: http.MethodPost,
		path:   basePath + "/cart/add",
		body:   domain.CartAdd{BookID: bookID, Quantity: qty},
	})
}

// Update sets the quantity of a line. Zero removes it.
func (s *CartService) Update(ctx context.Context, bookID string, qty int) (*domain.Cart, error) {
	return s.call(ctx, request{
		method: http.MethodPut,
		path:   cartUpdatePath(bookID),
		body:   domain.CartUpdate{Quantity: qty},
	})
}

// Remove deletes a line.
func (s *CartService) Remove(ctx context.Context, bookID string) (*domain.Cart, error) {
	return s.call(ctx, request{method: http.MethodDelete, path: cartItemPath(bookID)})
}

// Clear empties the cart.
func (s *CartService) Clear(ctx context.Context) (*domain.Cart, error) {
	return s.call(ctx, request{method: http.MethodDelete, path: basePath + "/cart/clear"})
}
