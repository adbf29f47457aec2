package ui

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/dustin/go-humanize/english"

	"github.com/utafrali/bookshelf/internal/cart"
	"github.com/utafrali/bookshelf/internal/domain"
	apperrors "github.com/utafrali/bookshelf/pkg/errors"
)

// Cart renders a cart: an empty state, or the lines and a totals footer.
func (r *Renderer) Cart(c domain.Cart) string {
	var sb strings.Builder
	sb.WriteString(r.Styles.Title.Render("Cart"))
	sb.WriteString("  ")
	if c.TotalItems > 0 {
		sb.WriteString(r.Styles.Muted.Render(english.Plural(c.TotalItems, "book", "")))
	} else {
		sb.WriteString(r.Styles.Muted.Render("empty"))
	}
	sb.WriteString("\n")

	if len(c.Items) == 0 {
		sb.WriteString("Your cart is empty.\n")
		sb.WriteString(r.Styles.Muted.Render("Browse the catalog with `bookshelf books list` and add something you like."))
		return r.Styles.Panel.Render(sb.String())
	}

	t := NewTable("", "Book", "Title", "Author", "Price", "Qty", "Subtotal")
	for _, it := range c.Items {
		t.AddRow(it.BookID, it.Book.Title, it.Book.Author, FormatPrice(it.Book.Price), strconv.Itoa(it.Quantity), FormatPrice(it.Subtotal))
	}
	sb.WriteString(t.View(r.Styles))
	sb.WriteString("\n\n")
	sb.WriteString(r.Styles.Bold.Render(fmt.Sprintf("Total (%s): ", english.Plural(c.TotalItems, "item", ""))))
	sb.WriteString(r.Styles.Price.Render(FormatPrice(c.TotalPrice)))
	return r.Styles.Panel.Render(sb.String())
}

// Drawer is the cart view. It re-renders on every snapshot the cart store
// applies and writes the result to out while the drawer is open.
type Drawer struct {
	store    *cart.Store
	state    *State
	renderer *Renderer
	out      io.Writer

	mu          sync.Mutex
	view        string
	renders     int
	unsubscribe func()
}

// NewDrawer subscribes a drawer to store. A nil out only keeps the view.
func NewDrawer(store *cart.Store, state *State, renderer *Renderer, out io.Writer) *Drawer {
	d := &Drawer{store: store, state: state, renderer: renderer, out: out}
	d.view = renderer.Cart(domain.Cart{})
	d.unsubscribe = store.Subscribe(d.render)
	return d
}

func (d *Drawer) render(c domain.Cart) {
	view := d.renderer.Cart(c)

	d.mu.Lock()
	d.view = view
	d.renders++
	d.mu.Unlock()

	if d.out != nil && d.state.CartOpen() {
		fmt.Fprintln(d.out, view)
	}
}

// View returns the last rendering.
func (d *Drawer) View() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.view
}

// Renders counts the snapshots rendered so far.
func (d *Drawer) Renders() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.renders
}

// Open opens the drawer and loads the cart if needed. A load failure has
// already been reported to the user by the store.
func (d *Drawer) Open(ctx context.Context) error {
	d.state.OpenCart()
	if d.store.Fresh() {
		c, _ := d.store.Snapshot()
		d.render(c)
		return nil
	}
	_, err := d.store.Cart(ctx)
	return err
}

// Close closes the drawer.
func (d *Drawer) Close() {
	d.state.CloseCart()
}

// Increase adds one copy of a line.
func (d *Drawer) Increase(ctx context.Context, bookID string) error {
	qty, err := d.quantity(bookID)
	if err != nil {
		return err
	}
	_, err = d.store.UpdateQuantity(ctx, bookID, qty+1)
	return err
}

// Decrease removes one copy of a line, and the line once it reaches zero.
func (d *Drawer) Decrease(ctx context.Context, bookID string) error {
	qty, err := d.quantity(bookID)
	if err != nil {
		return err
	}
	if qty-1 <= 0 {
		_, err = d.store.Remove(ctx, bookID)
		return err
	}
	_, err = d.store.UpdateQuantity(ctx, bookID, qty-1)
	return err
}

func (d *Drawer) quantity(bookID string) (int, error) {
	c, ok := d.store.Snapshot()
	if !ok {
		return 0, apperrors.InvalidInput("cart is not loaded")
	}
	it, ok := c.Item(bookID)
	if !ok {
		return 0, apperrors.NotFoundMessage("Cart item not found")
	}
	return it.Quantity, nil
}

// Detach stops re-rendering.
func (d *Drawer) Detach() {
	d.unsubscribe()
}
