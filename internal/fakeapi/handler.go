package fakeapi

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/utafrali/bookshelf/pkg/httputil"
	"github.com/utafrali/bookshelf/pkg/middleware"
	"github.com/utafrali/bookshelf/pkg/validator"
)

// handler serves every REST endpoint from the store.
type handler struct {
	store  *Store
	tokens *TokenIssuer
	logger *slog.Logger
}

func (h *handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	httputil.WriteError(w, r, err, h.logger)
}

// decode reads and validates a JSON body, writing a 422 on failure.
func (h *handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := validator.DecodeAndValidate(r, dst); err != nil {
		httputil.WriteValidationError(w, r, err)
		return false
	}
	return true
}

func currentUser(r *http.Request) string {
	return middleware.UserIDFromContext(r.Context())
}

func isAdmin(r *http.Request) bool {
	return middleware.RoleFromContext(r.Context()) == middleware.RoleAdmin
}

// floatParam parses an optional float query parameter.
func floatParam(r *http.Request, name string) (*float64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, &queryError{name: name, msg: "value is not a valid float"}
	}
	return &v, nil
}

// intParam parses an optional int query parameter within [lo, hi].
func intParam(r *http.Request, name string, def, lo, hi int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &queryError{name: name, msg: "value is not a valid integer"}
	}
	if v < lo || v > hi {
		return 0, &queryError{name: name, msg: "ensure this value is between " + strconv.Itoa(lo) + " and " + strconv.Itoa(hi)}
	}
	return v, nil
}

type queryError struct {
	name, msg string
}

func (e *queryError) Error() string { return e.name + ": " + e.msg }

func writeQueryError(w http.ResponseWriter, r *http.Request, err error) {
	qe, ok := err.(*queryError)
	if !ok {
		httputil.WriteValidationError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusUnprocessableEntity, httputil.ErrorResponse{
		Detail: []httputil.FieldDetail{{Loc: []string{"query", qe.name}, Msg: qe.msg, Type: "value_error"}},
		Code:   "VALIDATION_ERROR",
	})
}
