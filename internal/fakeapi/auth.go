package fakeapi

import (
	"net/http"

	"github.com/utafrali/bookshelf/internal/domain"
	apperrors "github.com/utafrali/bookshelf/pkg/errors"
	"github.com/utafrali/bookshelf/pkg/httputil"
	"github.com/utafrali/bookshelf/pkg/middleware"
)

// validateToken resolves a bearer token to claims. The role is read from
// the live account so admin changes apply without a new login.
func (h *handler) validateToken(token string) (*middleware.Claims, error) {
	userID, err := h.tokens.Parse(token)
	if err != nil {
		return nil, err
	}
	u, err := h.store.User(userID)
	if err != nil {
		return nil, err
	}
	role := middleware.RoleCustomer
	if u.IsAdmin {
		role = middleware.RoleAdmin
	}
	return &middleware.Claims{UserID: u.ID, Email: u.Email, Role: role}, nil
}

// register handles POST /api/v1/auth/register.
func (h *handler) register(w http.ResponseWriter, r *http.Request) {
	var in domain.Registration
	if !h.decode(w, r, &in) {
		return
	}
	u, err := h.store.Register(in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, u)
}

// login handles POST /api/v1/auth/login. The body is form-encoded with the
// email in the username field.
func (h *handler) login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		httputil.WriteValidationError(w, r, err)
		return
	}
	email, password := r.PostForm.Get("username"), r.PostForm.Get("password")
	if email == "" || password == "" {
		httputil.WriteJSON(w, http.StatusUnprocessableEntity, httputil.ErrorResponse{
			Detail: []httputil.FieldDetail{{Loc: []string{"body", "username"}, Msg: "field required", Type: "value_error.missing"}},
			Code:   "VALIDATION_ERROR",
		})
		return
	}

	u, err := h.store.Authenticate(email, password)
	if err != nil {
		w.Header().Set("WWW-Authenticate", "Bearer")
		h.writeError(w, r, err)
		return
	}
	token, err := h.tokens.Issue(u)
	if err != nil {
		h.writeError(w, r, apperrors.Internal(err))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, domain.Token{AccessToken: token, TokenType: TokenType})
}

// logout handles POST /api/v1/auth/logout. Tokens are stateless, so this
// only confirms the caller was authenticated.
func (h *handler) logout(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"message": "Successfully logged out"})
}

// me handles GET /api/v1/auth/me.
func (h *handler) me(w http.ResponseWriter, r *http.Request) {
	u, err := h.store.User(currentUser(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, u)
}
