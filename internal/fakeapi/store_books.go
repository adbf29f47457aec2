package fakeapi

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/utafrali/bookshelf/internal/domain"
	apperrors "github.com/utafrali/bookshelf/pkg/errors"
	"github.com/utafrali/bookshelf/pkg/pagination"
)

// ListBooks returns the books matching f within the window.
func (s *Store) ListBooks(f domain.BookFilter, w pagination.Window) []domain.Book {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []domain.Book
	for _, b := range s.sortedBooks() {
		if f.Matches(b) {
			out = append(out, b)
		}
	}
	return pagination.Slice(out, w)
}

// SearchBooks matches q case-insensitively against title, author, genre and
// description.
func (s *Store) SearchBooks(q string, w pagination.Window) []domain.Book {
	s.mu.Lock()
	defer s.mu.Unlock()

	needle := strings.ToLower(q)
	var out []domain.Book
	for _, b := range s.sortedBooks() {
		for _, field := range []string{b.Title, b.Author, b.Genre, b.Description} {
			if strings.Contains(strings.ToLower(field), needle) {
				out = append(out, b)
				break
			}
		}
	}
	return pagination.Slice(out, w)
}

// GetBook returns one book.
func (s *Store) GetBook(id string) (domain.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := s.book(id)
	if err != nil {
		return domain.Book{}, err
	}
	return *b, nil
}

// CreateBook adds a book to the catalog.
func (s *Store) CreateBook(in domain.BookCreate) (domain.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if in.ISBN != nil && s.isbnTaken(*in.ISBN, "") {
		return domain.Book{}, apperrors.InvalidInput("A book with this ISBN already exists")
	}
	lang := in.Language
	if lang == "" {
		lang = "en"
	}
	tags := in.Tags
	if tags == nil {
		tags = []string{}
	}
	b := &domain.Book{
		ID:              newID(),
		Title:           in.Title,
		Author:          in.Author,
		ISBN:            in.ISBN,
		Description:     in.Description,
		Genre:           in.Genre,
		Publisher:       in.Publisher,
		PublicationYear: in.PublicationYear,
		PageCount:       in.PageCount,
		Language:        lang,
		CoverImageURL:   in.CoverImageURL,
		Price:           domain.NewMoney(decimal.NewFromFloat(in.Price)),
		Stock:           in.Stock,
		Tags:            tags,
		CreatedAt:       s.now(),
	}
	s.books[b.ID] = b
	return *b, nil
}

// UpdateBook applies a partial update.
func (s *Store) UpdateBook(id string, upd domain.BookUpdate) (domain.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := s.book(id)
	if err != nil {
		return domain.Book{}, err
	}
	if upd.ISBN != nil && s.isbnTaken(*upd.ISBN, id) {
		return domain.Book{}, apperrors.InvalidInput("A book with this ISBN already exists")
	}

	next := *b
	setIf(&next.Title, upd.Title)
	setIf(&next.Author, upd.Author)
	setIf(&next.Description, upd.Description)
	setIf(&next.Genre, upd.Genre)
	setIf(&next.Publisher, upd.Publisher)
	setIf(&next.PublicationYear, upd.PublicationYear)
	setIf(&next.PageCount, upd.PageCount)
	setIf(&next.Language, upd.Language)
	setIf(&next.Stock, upd.Stock)
	setIf(&next.AverageRating, upd.AverageRating)
	setIf(&next.Tags, upd.Tags)
	if upd.ISBN != nil {
		next.ISBN = upd.ISBN
	}
	if upd.CoverImageURL != nil {
		next.CoverImageURL = upd.CoverImageURL
	}
	if upd.Price != nil {
		next.Price = domain.MoneyFromFloat(*upd.Price)
	}
	s.books[id] = &next
	return next, nil
}

// DeleteBook removes a book. Carts keep their lines; lines for missing
// books are skipped when the cart is rendered.
func (s *Store) DeleteBook(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.book(id); err != nil {
		return err
	}
	delete(s.books, id)
	return nil
}

func (s *Store) isbnTaken(isbn, exceptID string) bool {
	for _, b := range s.books {
		if b.ID != exceptID && b.ISBN != nil && *b.ISBN == isbn {
			return true
		}
	}
	return false
}

func setIf[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}
