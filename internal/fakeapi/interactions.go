package fakeapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/bookshelf/internal/domain"
	"github.com/utafrali/bookshelf/pkg/httputil"
	"github.com/utafrali/bookshelf/pkg/pagination"
)

// createInteraction handles POST /api/v1/interactions.
func (h *handler) createInteraction(w http.ResponseWriter, r *http.Request) {
	var in domain.InteractionCreate
	if !h.decode(w, r, &in) {
		return
	}
	rec, err := h.store.RecordInteraction(currentUser(r), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, rec)
}

// userInteractions handles GET /api/v1/interactions/user/{userID}.
func (h *handler) userInteractions(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "userID")
	if err := selfOrAdmin(r, id); err != nil {
		h.writeError(w, r, err)
		return
	}
	if _, err := h.store.User(id); err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, h.store.Interactions(id))
}

// adminListInteractions handles GET /api/v1/interactions/admin/list.
func (h *handler) adminListInteractions(w http.ResponseWriter, r *http.Request) {
	typ := domain.InteractionType(r.URL.Query().Get("interaction_type"))
	httputil.WriteJSON(w, http.StatusOK, h.store.AllInteractions(pagination.WindowFromRequest(r, 50, 500), typ))
}

// toggleLike handles POST /api/v1/interactions/toggle-like/{bookID}. A
// removed like answers 204 with no body.
func (h *handler) toggleLike(w http.ResponseWriter, r *http.Request) {
	in, added, err := h.store.ToggleLike(currentUser(r), chi.URLParam(r, "bookID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if !added {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, in)
}

// likes handles GET /api/v1/interactions/likes.
func (h *handler) likes(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, h.store.Likes(currentUser(r)))
}
