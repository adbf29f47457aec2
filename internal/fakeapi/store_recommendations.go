package fakeapi

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/utafrali/bookshelf/internal/domain"
)

// Weights used to rank trending books by recent activity.
var trendWeights = map[domain.InteractionType]int{
	domain.InteractionView:      1,
	domain.InteractionLike:      2,
	domain.InteractionAddToCart: 2,
	domain.InteractionPurchase:  3,
	domain.InteractionReview:    2,
}

// byRating orders books by rating, newest first on ties.
func byRating(books []domain.Book) {
	sort.SliceStable(books, func(i, j int) bool {
		if books[i].AverageRating == books[j].AverageRating {
			return books[i].CreatedAt.After(books[j].CreatedAt)
		}
		return books[i].AverageRating > books[j].AverageRating
	})
}

func limitBooks(books []domain.Book, n int) []domain.Book {
	if books == nil {
		return []domain.Book{}
	}
	if n > 0 && len(books) > n {
		return books[:n]
	}
	return books
}

// ForYou ranks unpurchased books in the user's favorite and purchased
// genres first, then fills with the best rated rest of the catalog.
func (s *Store) ForYou(userID string, limit int) []domain.Book {
	s.mu.Lock()
	defer s.mu.Unlock()

	genres := map[string]bool{}
	if a, ok := s.accounts[userID]; ok {
		for _, g := range a.user.FavoriteGenres {
			genres[strings.ToLower(g)] = true
		}
	}
	owned := map[string]bool{}
	for _, in := range s.interactions {
		if in.UserID != userID {
			continue
		}
		if in.InteractionType == domain.InteractionPurchase {
			owned[in.BookID] = true
		}
		if b, ok := s.books[in.BookID]; ok && in.InteractionType != domain.InteractionView {
			genres[strings.ToLower(b.Genre)] = true
		}
	}

	var preferred, rest []domain.Book
	for _, b := range s.sortedBooks() {
		switch {
		case owned[b.ID]:
		case genres[strings.ToLower(b.Genre)]:
			preferred = append(preferred, b)
		default:
			rest = append(rest, b)
		}
	}
	byRating(preferred)
	byRating(rest)
	return limitBooks(append(preferred, rest...), limit)
}

// Similar ranks books sharing the author, genre or tags of bookID.
func (s *Store) Similar(bookID string, limit int) ([]domain.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	src, err := s.book(bookID)
	if err != nil {
		return nil, err
	}
	tags := map[string]bool{}
	for _, t := range src.Tags {
		tags[t] = true
	}

	type scored struct {
		book  domain.Book
		score int
	}
	var candidates []scored
	for _, b := range s.sortedBooks() {
		if b.ID == src.ID {
			continue
		}
		score := 0
		if b.Author == src.Author {
			score += 3
		}
		if b.Genre == src.Genre {
			score += 2
		}
		for _, t := range b.Tags {
			if tags[t] {
				score++
			}
		}
		if score > 0 {
			candidates = append(candidates, scored{book: b, score: score})
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].score == candidates[j].score {
			return candidates[i].book.AverageRating > candidates[j].book.AverageRating
		}
		return candidates[i].score > candidates[j].score
	})
	out := make([]domain.Book, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, c.book)
	}
	return limitBooks(out, limit), nil
}

// Trending ranks books by weighted activity over the last days. Books with
// no activity follow, best rated first.
func (s *Store) Trending(days, limit int) []domain.Book {
	s.mu.Lock()
	defer s.mu.Unlock()

	since := s.now().Add(-time.Duration(days) * 24 * time.Hour)
	scores := map[string]int{}
	for _, in := range s.interactions {
		if in.Timestamp.Before(since) {
			continue
		}
		scores[in.BookID] += trendWeights[in.InteractionType]
	}

	books := s.sortedBooks()
	byRating(books)
	sort.SliceStable(books, func(i, j int) bool { return scores[books[i].ID] > scores[books[j].ID] })
	return limitBooks(books, limit)
}

// ByGenre returns the best rated books of one genre.
func (s *Store) ByGenre(genre string, limit int) []domain.Book {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []domain.Book
	for _, b := range s.sortedBooks() {
		if strings.EqualFold(b.Genre, genre) {
			out = append(out, b)
		}
	}
	byRating(out)
	return limitBooks(out, limit)
}

// NewArrivals returns the most recently added books.
func (s *Store) NewArrivals(limit int) []domain.Book {
	s.mu.Lock()
	defer s.mu.Unlock()

	books := s.sortedBooks()
	for i, j := 0, len(books)-1; i < j; i, j = i+1, j-1 {
		books[i], books[j] = books[j], books[i]
	}
	return limitBooks(books, limit)
}

// Behavior summarizes the user's non-cancelled orders and activity.
func (s *Store) Behavior(userID string) domain.BehaviorAnalytics {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := domain.BehaviorAnalytics{
		FavoriteGenres:    []string{},
		FavoriteAuthors:   []string{},
		TotalSpent:        domain.Zero,
		AverageOrderValue: domain.Zero,
	}

	var first time.Time
	for _, o := range s.orders {
		if o.UserID != userID || o.Status == domain.OrderCancelled {
			continue
		}
		out.TotalOrders++
		out.TotalSpent = out.TotalSpent.Add(o.TotalAmount)
		if first.IsZero() || o.CreatedAt.Before(first) {
			first = o.CreatedAt
		}
	}
	if out.TotalOrders > 0 {
		out.TotalSpent = out.TotalSpent.Cents()
		out.AverageOrderValue = domain.NewMoney(out.TotalSpent.Div(decimal.NewFromInt(int64(out.TotalOrders)))).Cents()
		months := s.now().Sub(first).Hours() / (24 * 30)
		if months < 1 {
			months = 1
		}
		out.PurchaseFrequencyPerMonth = float64(int(float64(out.TotalOrders)/months*100)) / 100
	}

	genres, authors := map[string]int{}, map[string]int{}
	for _, in := range s.interactions {
		if in.UserID != userID || in.InteractionType == domain.InteractionView {
			continue
		}
		if b, ok := s.books[in.BookID]; ok {
			genres[b.Genre]++
			authors[b.Author]++
		}
	}
	out.FavoriteGenres = append(out.FavoriteGenres, topCounts(genres, 3)...)
	out.FavoriteAuthors = append(out.FavoriteAuthors, topCounts(authors, 3)...)
	return out
}
