package fakeapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/bookshelf/pkg/httputil"
)

func feedLimit(r *http.Request) (int, error) {
	return intParam(r, "limit", 10, 1, 50)
}

// forYou handles GET /api/v1/recommendations/for-you.
func (h *handler) forYou(w http.ResponseWriter, r *http.Request) {
	limit, err := feedLimit(r)
	if err != nil {
		writeQueryError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, h.store.ForYou(currentUser(r), limit))
}

// similar handles GET /api/v1/recommendations/similar/{bookID}.
func (h *handler) similar(w http.ResponseWriter, r *http.Request) {
	limit, err := feedLimit(r)
	if err != nil {
		writeQueryError(w, r, err)
		return
	}
	books, err := h.store.Similar(chi.URLParam(r, "bookID"), limit)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, books)
}

// trending handles GET /api/v1/recommendations/trending.
func (h *handler) trending(w http.ResponseWriter, r *http.Request) {
	limit, err := feedLimit(r)
	if err != nil {
		writeQueryError(w, r, err)
		return
	}
	days, err := intParam(r, "days", 30, 1, 365)
	if err != nil {
		writeQueryError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, h.store.Trending(days, limit))
}

// byGenre handles GET /api/v1/recommendations/by-genre/{genre}.
func (h *handler) byGenre(w http.ResponseWriter, r *http.Request) {
	limit, err := feedLimit(r)
	if err != nil {
		writeQueryError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, h.store.ByGenre(chi.URLParam(r, "genre"), limit))
}

// newArrivals handles GET /api/v1/recommendations/new.
func (h *handler) newArrivals(w http.ResponseWriter, r *http.Request) {
	limit, err := feedLimit(r)
	if err != nil {
		writeQueryError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, h.store.NewArrivals(limit))
}

// userBehavior handles GET /api/v1/analytics/user-behavior.
func (h *handler) userBehavior(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, h.store.Behavior(currentUser(r)))
}
