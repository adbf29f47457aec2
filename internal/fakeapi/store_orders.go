package fakeapi

import (
	"fmt"
	"sort"

	"github.com/utafrali/bookshelf/internal/domain"
	apperrors "github.com/utafrali/bookshelf/pkg/errors"
	"github.com/utafrali/bookshelf/pkg/pagination"
)

const (
	msgNoCartItems     = "There are no items in the cart"
	msgBooksGone       = "Some books are no longer available"
	msgOrderNotFound   = "Order not found"
	msgOrderProcessed  = "Order has already been processed and cannot be cancelled"
	msgNotEnoughCopies = "Not enough copies of '%s'"
)

// CreateOrder turns the user's cart into a pending order. Prices are
// snapshotted, stock is reserved and the cart is emptied.
func (s *Store) CreateOrder(userID string, in domain.OrderCreate) (domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lines := s.carts[userID]
	if len(lines) == 0 {
		return domain.Order{}, apperrors.InvalidInput(msgNoCartItems)
	}

	items := make([]domain.OrderItem, 0, len(lines))
	total := domain.Zero
	for _, l := range lines {
		b, ok := s.books[l.bookID]
		if !ok {
			return domain.Order{}, apperrors.InvalidInput(msgBooksGone)
		}
		if !b.InStock(l.quantity) {
			return domain.Order{}, apperrors.InvalidInput(fmt.Sprintf(msgNotEnoughCopies, b.Title))
		}
		items = append(items, domain.OrderItem{
			BookID:          b.ID,
			Title:           b.Title,
			Author:          b.Author,
			Quantity:        l.quantity,
			PriceAtPurchase: b.Price,
		})
		total = total.Add(b.Price.Times(l.quantity))
	}

	now := s.now()
	o := &domain.Order{
		ID:              newID(),
		UserID:          userID,
		Items:           items,
		TotalAmount:     total.Cents(),
		Status:          domain.OrderPending,
		ShippingAddress: in.ShippingAddress,
		PaymentMethod:   in.PaymentMethod,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	for _, it := range items {
		s.books[it.BookID].Stock -= it.Quantity
		s.logInteraction(userID, it.BookID, domain.InteractionPurchase, map[string]any{
			"order_id": o.ID,
			"quantity": it.Quantity,
		})
	}
	s.orders[o.ID] = o
	delete(s.carts, userID)
	return *o, nil
}

// ListOrders pages the user's orders, newest first.
func (s *Store) ListOrders(userID string, p pagination.Params) domain.OrderList {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pageOrders(p, func(o *domain.Order) bool { return o.UserID == userID })
}

// AdminListOrders pages every order, optionally filtered by status.
func (s *Store) AdminListOrders(p pagination.Params, status domain.OrderStatus) domain.OrderList {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pageOrders(p, func(o *domain.Order) bool { return status == "" || o.Status == status })
}

func (s *Store) pageOrders(p pagination.Params, keep func(*domain.Order) bool) domain.OrderList {
	var all []domain.Order
	for _, o := range s.orders {
		if keep(o) {
			all = append(all, *o)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	res := pagination.NewResult(all, p)
	return domain.OrderList{Items: res.Items, TotalCount: res.TotalCount, Page: res.Page, Limit: res.Limit}
}

// GetOrder returns one of the user's orders. Other users' orders are
// reported as missing.
func (s *Store) GetOrder(userID, orderID string) (domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, err := s.ownedOrder(userID, orderID)
	if err != nil {
		return domain.Order{}, err
	}
	return *o, nil
}

// CancelOrder cancels a pending order and returns its stock.
func (s *Store) CancelOrder(userID, orderID string) (domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, err := s.ownedOrder(userID, orderID)
	if err != nil {
		return domain.Order{}, err
	}
	if !o.Status.Cancellable() {
		return domain.Order{}, apperrors.InvalidInput(msgOrderProcessed)
	}
	s.restock(o)
	o.Status = domain.OrderCancelled
	o.UpdatedAt = s.now()
	return *o, nil
}

// SetOrderStatus is the admin status change. Moving an order into
// cancelled returns its stock.
func (s *Store) SetOrderStatus(orderID string, status domain.OrderStatus) (domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[orderID]
	if !ok {
		return domain.Order{}, apperrors.NotFoundMessage(msgOrderNotFound)
	}
	if status == domain.OrderCancelled && o.Status != domain.OrderCancelled {
		s.restock(o)
	}
	o.Status = status
	o.UpdatedAt = s.now()
	return *o, nil
}

func (s *Store) ownedOrder(userID, orderID string) (*domain.Order, error) {
	o, ok := s.orders[orderID]
	if !ok || o.UserID != userID {
		return nil, apperrors.NotFoundMessage(msgOrderNotFound)
	}
	return o, nil
}

func (s *Store) restock(o *domain.Order) {
	for _, it := range o.Items {
		if b, ok := s.books[it.BookID]; ok {
			b.Stock += it.Quantity
		}
	}
}
