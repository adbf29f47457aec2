package ui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"

	"github.com/utafrali/bookshelf/internal/domain"
)

// Renderer turns API values into terminal text.
type Renderer struct {
	Styles Styles
	Now    func() time.Time
}

// NewRenderer returns a renderer using the default styles and clock.
func NewRenderer() *Renderer {
	return &Renderer{Styles: DefaultStyles(), Now: time.Now}
}

func (r *Renderer) ago(t time.Time) string {
	return humanize.RelTime(t, r.Now(), "ago", "from now")
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// Books renders a catalog listing.
func (r *Renderer) Books(title string, books []domain.Book) string {
	if len(books) == 0 {
		return r.Styles.Muted.Render("No books found.")
	}
	t := NewTable(title, "ID", "Title", "Author", "Genre", "Price", "Rating", "Stock")
	for _, b := range books {
		stock := strconv.Itoa(b.Stock)
		if b.Stock == 0 {
			stock = "out"
		}
		t.AddRow(b.ID, b.Title, b.Author, b.Genre, FormatPrice(b.Price), strconv.FormatFloat(b.AverageRating, 'f', 1, 64), stock)
	}
	return t.View(r.Styles)
}

// Book renders a detail view.
func (r *Renderer) Book(b domain.Book) string {
	var sb strings.Builder
	sb.WriteString(r.Styles.Title.Render(b.Title))
	sb.WriteString("\n")
	sb.WriteString(r.Styles.Muted.Render(fmt.Sprintf("%s, %d", b.Author, b.PublicationYear)))
	sb.WriteString("\n\n")
	if b.Description != "" {
		sb.WriteString(b.Description)
		sb.WriteString("\n\n")
	}
	rows := [][2]string{
		{"Genre", b.Genre},
		{"Publisher", b.Publisher},
		{"Pages", humanize.Comma(int64(b.PageCount))},
		{"Language", b.Language},
		{"Rating", strconv.FormatFloat(b.AverageRating, 'f', 1, 64) + " / 5"},
		{"In stock", english.Plural(b.Stock, "copy", "copies")},
	}
	if b.ISBN != nil {
		rows = append(rows, [2]string{"ISBN", *b.ISBN})
	}
	if len(b.Tags) > 0 {
		rows = append(rows, [2]string{"Tags", strings.Join(b.Tags, ", ")})
	}
	for _, row := range rows {
		sb.WriteString(r.Styles.Bold.Render(fmt.Sprintf("%-10s", row[0])))
		sb.WriteString(" ")
		sb.WriteString(row[1])
		sb.WriteString("\n")
	}
	sb.WriteString(r.Styles.Price.Render(FormatPrice(b.Price)))
	return sb.String()
}

// Orders renders an order history page.
func (r *Renderer) Orders(list domain.OrderList) string {
	if len(list.Items) == 0 {
		return r.Styles.Muted.Render("No orders yet.")
	}
	t := NewTable(fmt.Sprintf("Orders (page %d, %s)", list.Page, english.Plural(list.TotalCount, "order", "")),
		"ID", "Placed", "Status", "Items", "Total")
	for _, o := range list.Items {
		count := 0
		for _, it := range o.Items {
			count += it.Quantity
		}
		t.AddRow(shortID(o.ID), r.ago(o.CreatedAt), string(o.Status), strconv.Itoa(count), FormatPrice(o.TotalAmount))
	}
	return t.View(r.Styles)
}

// Order renders one order with its lines.
func (r *Renderer) Order(o domain.Order) string {
	var sb strings.Builder
	sb.WriteString(r.Styles.Title.Render("Order " + o.ID))
	sb.WriteString("\n")
	sb.WriteString(r.Styles.Muted.Render(fmt.Sprintf("%s, placed %s, paid by %s", o.Status, r.ago(o.CreatedAt), o.PaymentMethod)))
	sb.WriteString("\n")

	t := NewTable("", "Title", "Author", "Qty", "Price")
	for _, it := range o.Items {
		t.AddRow(it.Title, it.Author, strconv.Itoa(it.Quantity), FormatPrice(it.PriceAtPurchase))
	}
	sb.WriteString(t.View(r.Styles))
	sb.WriteString("\n")

	a := o.ShippingAddress
	sb.WriteString(fmt.Sprintf("Ship to: %s, %s %s, %s\n", a.Address, a.PostalCode, a.City, a.Country))
	sb.WriteString(r.Styles.Bold.Render("Total: "))
	sb.WriteString(r.Styles.Price.Render(FormatPrice(o.TotalAmount)))
	return sb.String()
}

// User renders a profile.
func (r *Renderer) User(u domain.User) string {
	var sb strings.Builder
	sb.WriteString(r.Styles.Title.Render(u.DisplayName()))
	if u.IsAdmin {
		sb.WriteString(" " + r.Styles.Info.Render("[admin]"))
	}
	sb.WriteString("\n")
	sb.WriteString(u.Email + "\n")
	if len(u.FavoriteGenres) > 0 {
		sb.WriteString("Favorite genres: " + english.OxfordWordSeries(u.FavoriteGenres, "and") + "\n")
	}
	if len(u.FavoriteAuthors) > 0 {
		sb.WriteString("Favorite authors: " + english.OxfordWordSeries(u.FavoriteAuthors, "and") + "\n")
	}
	sb.WriteString(r.Styles.Muted.Render("Member since " + u.CreatedAt.Format("2006-01-02")))
	return sb.String()
}

// Users renders the admin user listing.
func (r *Renderer) Users(users []domain.User) string {
	if len(users) == 0 {
		return r.Styles.Muted.Render("No users.")
	}
	t := NewTable("Users", "ID", "Email", "Username", "Admin", "Joined")
	for _, u := range users {
		admin := ""
		if u.IsAdmin {
			admin = "yes"
		}
		t.AddRow(u.ID, u.Email, u.Username, admin, u.CreatedAt.Format("2006-01-02"))
	}
	return t.View(r.Styles)
}

// Interactions renders an activity log.
func (r *Renderer) Interactions(items []domain.Interaction) string {
	if len(items) == 0 {
		return r.Styles.Muted.Render("No activity.")
	}
	t := NewTable("Activity", "When", "User", "Book", "Type")
	for _, in := range items {
		t.AddRow(r.ago(in.Timestamp), shortID(in.UserID), shortID(in.BookID), string(in.InteractionType))
	}
	return t.View(r.Styles)
}

// Behavior renders the analytics summary.
func (r *Renderer) Behavior(a domain.BehaviorAnalytics) string {
	var sb strings.Builder
	sb.WriteString(r.Styles.Title.Render("Your reading"))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("%s, %s spent, %s on average\n",
		english.Plural(a.TotalOrders, "order", ""), FormatPrice(a.TotalSpent), FormatPrice(a.AverageOrderValue)))
	sb.WriteString(fmt.Sprintf("%.2f orders per month\n", a.PurchaseFrequencyPerMonth))
	if len(a.FavoriteGenres) > 0 {
		sb.WriteString("Top genres: " + english.OxfordWordSeries(a.FavoriteGenres, "and") + "\n")
	}
	if len(a.FavoriteAuthors) > 0 {
		sb.WriteString("Top authors: " + english.OxfordWordSeries(a.FavoriteAuthors, "and"))
	}
	return strings.TrimRight(sb.String(), "\n")
}

// Toasts renders notifications one per line.
func (r *Renderer) Toasts(ns []Notification) string {
	lines := make([]string, 0, len(ns))
	for _, n := range ns {
		switch n.Level {
		case LevelSuccess:
			lines = append(lines, r.Styles.Success.Render("✓ "+n.Message))
		case LevelError:
			lines = append(lines, r.Styles.Error.Render("✗ "+n.Message))
		default:
			lines = append(lines, r.Styles.Info.Render("• "+n.Message))
		}
	}
	return strings.Join(lines, "\n")
}
