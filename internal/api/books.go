package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/utafrali/bookshelf/internal/domain"
	"github.com/utafrali/bookshelf/pkg/pagination"
)

// BooksService covers /books.
type BooksService struct{ c *Client }

// FilterParams maps a book filter onto the list endpoint's query.
func FilterParams(f domain.BookFilter) Params {
	p := window(pagination.Window{Skip: f.Skip, Limit: f.Limit})
	p["genre"] = f.Genre
	p["author"] = f.Author
	p["min_price"] = f.MinPrice
	p["max_price"] = f.MaxPrice
	p["min_rating"] = f.MinRating
	return p
}

func bookPath(id string) string {
	return basePath + "/books/" + url.PathEscape(id)
}

// List returns books matching f.
func (s *BooksService) List(ctx context.Context, f domain.BookFilter) ([]domain.Book, error) {
	var out []domain.Book
	err := s.c.do(ctx, request{method: http.MethodGet, path: basePath + "/books/", query: FilterParams(f).Encode()}, &out)
	return out, err
}

// Get returns one book.
func (s *BooksService) Get(ctx context.Context, id string) (*domain.Book, error) {
	var b domain.Book
	if err := s.c.do(ctx, request{method: http.MethodGet, path: bookPath(id)}, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

// Search runs a free text search over title, author, genre and description.
func (s *BooksService) Search(ctx context.Context, q string, w pagination.Window) ([]domain.Book, error) {
	params := window(w)
	params["q"] = q

	var out []domain.Book
	err := s.c.do(ctx, request{method: http.MethodGet, path: basePath + "/books/search", query: params.Encode()}, &out)
	return out, err
}

// Create adds a book. Admin only.
func (s *BooksService) Create(ctx context.Context, in domain.BookCreate) (*domain.Book, error) {
	var b domain.Book
	if err := s.c.do(ctx, request{method: http.MethodPost, path: basePath + "/books/", body: in}, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

// Update applies a partial update. Admin only.
func (s *BooksService) Update(ctx context.Context, id string, in domain.BookUpdate) (*domain.Book, error) {
	var b domain.Book
	if err := s.c.do(ctx, request{method: http.MethodPut, path: bookPath(id), body: in}, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

// Delete removes a book. Admin only.
func (s *BooksService) Delete(ctx context.Context, id string) error {
	return s.c.do(ctx, request{method: http.MethodDelete, path: bookPath(id)}, nil)
}
