package domain

import (
	"errors"
	"fmt"
	"time"
)

// ErrCartInconsistent is returned by Cart.Validate when the totals do not
// match the line items.
var ErrCartInconsistent = errors.New("cart totals are inconsistent")

// CartBook is the book summary embedded in a cart line.
type CartBook struct {
	ID            string  `json:"id"`
	Title         string  `json:"title"`
	Author        string  `json:"author"`
	Price         Money   `json:"price"`
	CoverImageURL *string `json:"cover_image_url"`
}

// CartBookOf reduces a catalog book to its cart summary.
func CartBookOf(b Book) CartBook {
	return CartBook{
		ID:            b.ID,
		Title:         b.Title,
		Author:        b.Author,
		Price:         b.Price,
		CoverImageURL: b.CoverImageURL,
	}
}

// CartItem is a line in the cart.
type CartItem struct {
	BookID   string    `json:"book_id"`
	Quantity int       `json:"quantity"`
	AddedAt  time.Time `json:"added_at"`
	Book     CartBook  `json:"book"`
	Subtotal Money     `json:"subtotal"`
}

// Cart is the server-side cart of the current user.
type Cart struct {
	Items      []CartItem `json:"items"`
	TotalItems int        `json:"total_items"`
	TotalPrice Money      `json:"total_price"`
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return c == nil || len(c.Items) == 0
}

// Item returns the line for bookID.
func (c *Cart) Item(bookID string) (CartItem, bool) {
	if c == nil {
		return CartItem{}, false
	}
	for _, it := range c.Items {
		if it.BookID == bookID {
			return it, true
		}
	}
	return CartItem{}, false
}

// Quantity returns the quantity of bookID in the cart, or zero.
func (c *Cart) Quantity(bookID string) int {
	it, _ := c.Item(bookID)
	return it.Quantity
}

// Validate checks that every subtotal equals quantity times unit price and
// that the totals are the sums of the lines. Amounts compare at cents.
func (c *Cart) Validate() error {
	if c == nil {
		return nil
	}
	var (
		sum   = Zero
		count int
		errs  []error
	)
	for _, it := range c.Items {
		want := it.Book.Price.Times(it.Quantity).Cents()
		if !it.Subtotal.Cents().Equal(want) {
			errs = append(errs, fmt.Errorf("book %s: subtotal %s, want %s", it.BookID, it.Subtotal, want))
		}
		sum = sum.Add(it.Subtotal)
		count += it.Quantity
	}
	if !c.TotalPrice.Cents().Equal(sum.Cents()) {
		errs = append(errs, fmt.Errorf("total_price %s, want %s", c.TotalPrice, sum.Cents()))
	}
	if c.TotalItems != count {
		errs = append(errs, fmt.Errorf("total_items %d, want %d", c.TotalItems, count))
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrCartInconsistent, errors.Join(errs...))
}

// Recalculate fills subtotals and totals from the lines. Used by the
// in-memory backend; clients never compute totals themselves.
func (c *Cart) Recalculate() {
	sum := Zero
	count := 0
	for i := range c.Items {
		c.Items[i].Subtotal = c.Items[i].Book.Price.Times(c.Items[i].Quantity).Cents()
		sum = sum.Add(c.Items[i].Subtotal)
		count += c.Items[i].Quantity
	}
	c.TotalPrice = sum.Cents()
	c.TotalItems = count
}

// CartAdd is the body of POST /cart/add.
type CartAdd struct {
	BookID   string `json:"book_id" validate:"required"`
	Quantity int    `json:"quantity" validate:"gte=1"`
}

// CartUpdate is the body of PUT /cart/update/{book_id}. Zero removes the line.
type CartUpdate struct {
	Quantity int `json:"quantity" validate:"gte=0"`
}
