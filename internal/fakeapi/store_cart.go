package fakeapi

import (
	"github.com/utafrali/bookshelf/internal/domain"
	apperrors "github.com/utafrali/bookshelf/pkg/errors"
)

// Error messages returned by the cart endpoints.
const (
	msgCartEmpty        = "Cart is empty"
	msgCartItemNotFound = "Cart item not found"
)

// Cart renders the user's cart with current prices.
func (s *Store) Cart(userID string) domain.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.renderCart(userID)
}

// renderCart builds the response. Lines whose book no longer exists are
// skipped. Callers hold the lock.
func (s *Store) renderCart(userID string) domain.Cart {
	c := domain.Cart{Items: []domain.CartItem{}}
	for _, l := range s.carts[userID] {
		b, ok := s.books[l.bookID]
		if !ok {
			continue
		}
		c.Items = append(c.Items, domain.CartItem{
			BookID:   l.bookID,
			Quantity: l.quantity,
			AddedAt:  l.addedAt,
			Book:     domain.CartBookOf(*b),
		})
	}
	c.Recalculate()
	return c
}

// AddToCart adds qty copies, merging with an existing line.
func (s *Store) AddToCart(userID string, in domain.CartAdd) (domain.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.book(in.BookID); err != nil {
		return domain.Cart{}, err
	}

	lines := s.carts[userID]
	merged := false
	for i := range lines {
		if lines[i].bookID == in.BookID {
			lines[i].quantity += in.Quantity
			merged = true
			break
		}
	}
	if !merged {
		lines = append(lines, cartLine{bookID: in.BookID, quantity: in.Quantity, addedAt: s.now()})
	}
	s.carts[userID] = lines

	s.logInteraction(userID, in.BookID, domain.InteractionAddToCart, map[string]any{"quantity": in.Quantity})
	return s.renderCart(userID), nil
}

// UpdateCartItem sets the quantity of a line. Zero or less removes it.
func (s *Store) UpdateCartItem(userID, bookID string, qty int) (domain.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx, err := s.lineIndex(userID, bookID)
	if err != nil {
		return domain.Cart{}, err
	}
	if qty <= 0 {
		s.removeLine(userID, idx)
	} else {
		s.carts[userID][idx].quantity = qty
	}
	return s.renderCart(userID), nil
}

// RemoveFromCart deletes a line.
func (s *Store) RemoveFromCart(userID, bookID string) (domain.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx, err := s.lineIndex(userID, bookID)
	if err != nil {
		return domain.Cart{}, err
	}
	s.removeLine(userID, idx)
	s.logInteraction(userID, bookID, domain.InteractionRemoveFromCart, nil)
	return s.renderCart(userID), nil
}

// ClearCart empties the cart. Clearing an empty cart is not an error.
func (s *Store) ClearCart(userID string) domain.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.carts, userID)
	return s.renderCart(userID)
}

func (s *Store) lineIndex(userID, bookID string) (int, error) {
	lines := s.carts[userID]
	if len(lines) == 0 {
		return -1, apperrors.NotFoundMessage(msgCartEmpty)
	}
	for i, l := range lines {
		if l.bookID == bookID {
			return i, nil
		}
	}
	return -1, apperrors.NotFoundMessage(msgCartItemNotFound)
}

func (s *Store) removeLine(userID string, idx int) {
	lines := s.carts[userID]
	s.carts[userID] = append(lines[:idx:idx], lines[idx+1:]...)
	if len(s.carts[userID]) == 0 {
		delete(s.carts, userID)
	}
}
