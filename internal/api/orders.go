package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/utafrali/bookshelf/internal/domain"
	"github.com/utafrali/bookshelf/pkg/pagination"
)

// OrdersService covers /orders.
type OrdersService struct{ c *Client }

func orderPath(id string) string {
	return basePath + "/orders/" + url.PathEscape(id)
}

func (s *OrdersService) one(ctx context.Context, req request) (*domain.Order, error) {
	var o domain.Order
	if err := s.c.do(ctx, req, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

// Create places an order from the current cart. The server empties the
// cart on success.
func (s *OrdersService) Create(ctx context.Context, in domain.OrderCreate) (*domain.Order, error) {
	return s.one(ctx, request{method: http.MethodPost, path: basePath + "/orders/", body: in})
}

// List pages through the caller's orders, newest first.
func (s *OrdersService) List(ctx context.Context, p pagination.Params) (*domain.OrderList, error) {
	return s.list(ctx, basePath+"/orders/", p, "")
}

// Get returns one of the caller's orders.
func (s *OrdersService) Get(ctx context.Context, id string) (*domain.Order, error) {
	return s.one(ctx, request{method: http.MethodGet, path: orderPath(id)})
}

// Cancel cancels a pending order.
func (s *OrdersService) Cancel(ctx context.Context, id string) (*domain.Order, error) {
	return s.one(ctx, request{method: http.MethodPut, path: orderPath(id) + "/cancel"})
}

// AdminList pages through every order, optionally filtered by status.
func (s *OrdersService) AdminList(ctx context.Context, p pagination.Params, status domain.OrderStatus) (*domain.OrderList, error) {
	return s.list(ctx, basePath+"/orders/admin", p, status)
}

func (s *OrdersService) list(ctx context.Context, path string, p pagination.Params, status domain.OrderStatus) (*domain.OrderList, error) {
	q := url.Values{}
	p.Encode(q)
	if status != "" {
		q.Set("status", string(status))
	}

	var out domain.OrderList
	if err := s.c.do(ctx, request{method: http.MethodGet, path: path, query: q}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateStatus moves an order to status. Admin only.
func (s *OrdersService) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, error) {
	return s.one(ctx, request{
		method: http.MethodPatch,
		path:   orderPath(id) + "/status",
		body:   domain.OrderStatusUpdate{Status: status},
	})
}
