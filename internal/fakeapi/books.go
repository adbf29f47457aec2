package fakeapi

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/bookshelf/internal/domain"
	"github.com/utafrali/bookshelf/pkg/httputil"
	"github.com/utafrali/bookshelf/pkg/pagination"
)

// listBooks handles GET /api/v1/books.
func (h *handler) listBooks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := domain.BookFilter{Genre: q.Get("genre"), Author: q.Get("author")}

	var err error
	if f.MinPrice, err = floatParam(r, "min_price"); err != nil {
		writeQueryError(w, r, err)
		return
	}
	if f.MaxPrice, err = floatParam(r, "max_price"); err != nil {
		writeQueryError(w, r, err)
		return
	}
	if f.MinRating, err = floatParam(r, "min_rating"); err != nil {
		writeQueryError(w, r, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, h.store.ListBooks(f, pagination.WindowFromRequest(r, 20, 100)))
}

// searchBooks handles GET /api/v1/books/search?q=.
func (h *handler) searchBooks(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		writeQueryError(w, r, &queryError{name: "q", msg: "field required"})
		return
	}
	httputil.WriteJSON(w, http.StatusOK, h.store.SearchBooks(q, pagination.WindowFromRequest(r, 20, 100)))
}

// getBook handles GET /api/v1/books/{bookID}.
func (h *handler) getBook(w http.ResponseWriter, r *http.Request) {
	b, err := h.store.GetBook(chi.URLParam(r, "bookID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, b)
}

// createBook handles POST /api/v1/books (admin).
func (h *handler) createBook(w http.ResponseWriter, r *http.Request) {
	var in domain.BookCreate
	if !h.decode(w, r, &in) {
		return
	}
	b, err := h.store.CreateBook(in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, b)
}

// updateBook handles PUT /api/v1/books/{bookID} (admin).
func (h *handler) updateBook(w http.ResponseWriter, r *http.Request) {
	var in domain.BookUpdate
	if !h.decode(w, r, &in) {
		return
	}
	b, err := h.store.UpdateBook(chi.URLParam(r, "bookID"), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, b)
}

// deleteBook handles DELETE /api/v1/books/{bookID} (admin).
func (h *handler) deleteBook(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteBook(chi.URLParam(r, "bookID")); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
