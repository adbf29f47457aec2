package fakeapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/bookshelf/internal/domain"
	apperrors "github.com/utafrali/bookshelf/pkg/errors"
	"github.com/utafrali/bookshelf/pkg/httputil"
	"github.com/utafrali/bookshelf/pkg/pagination"
)

// selfOrAdmin rejects access to another user's resources unless the caller
// is an admin.
func selfOrAdmin(r *http.Request, userID string) error {
	if currentUser(r) == userID || isAdmin(r) {
		return nil
	}
	return apperrors.Forbidden("Not enough permissions")
}

// getUser handles GET /api/v1/users/{userID}.
func (h *handler) getUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "userID")
	if err := selfOrAdmin(r, id); err != nil {
		h.writeError(w, r, err)
		return
	}
	u, err := h.store.User(id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, u)
}

// updateUser handles PUT /api/v1/users/{userID}. Only the admin endpoint
// may change is_admin.
func (h *handler) updateUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "userID")
	if err := selfOrAdmin(r, id); err != nil {
		h.writeError(w, r, err)
		return
	}
	var in domain.UserUpdate
	if !h.decode(w, r, &in) {
		return
	}
	in.IsAdmin = nil
	u, err := h.store.UpdateUser(id, in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, u)
}

// userHistory handles GET /api/v1/users/{userID}/history.
func (h *handler) userHistory(w http.ResponseWriter, r *http.Request) {
	h.userInteractions(w, r)
}

// updatePreferences handles PUT /api/v1/users/{userID}/preferences.
func (h *handler) updatePreferences(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "userID")
	if err := selfOrAdmin(r, id); err != nil {
		h.writeError(w, r, err)
		return
	}
	var in domain.Preferences
	if !h.decode(w, r, &in) {
		return
	}
	u, err := h.store.UpdatePreferences(id, in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, u)
}

// adminListUsers handles GET /api/v1/users/admin/list.
func (h *handler) adminListUsers(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, h.store.ListUsers(pagination.WindowFromRequest(r, 50, 200)))
}

// adminUpdateUser handles PUT /api/v1/users/admin/{userID}.
func (h *handler) adminUpdateUser(w http.ResponseWriter, r *http.Request) {
	var in domain.UserUpdate
	if !h.decode(w, r, &in) {
		return
	}
	u, err := h.store.UpdateUser(chi.URLParam(r, "userID"), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, u)
}

// adminDeleteUser handles DELETE /api/v1/users/admin/{userID}. Admins
// cannot delete themselves.
func (h *handler) adminDeleteUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "userID")
	if id == currentUser(r) {
		h.writeError(w, r, apperrors.InvalidInput("You cannot delete your own account"))
		return
	}
	if err := h.store.DeleteUser(id); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
