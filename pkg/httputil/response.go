package httputil

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	apperrors "github.com/utafrali/bookshelf/pkg/errors"
	"github.com/utafrali/bookshelf/pkg/logger"
	"github.com/utafrali/bookshelf/pkg/validator"
)

// ErrorResponse is the error body written by the API. Detail is either a
// message string or a list of FieldDetail values.
type ErrorResponse struct {
	Detail    any    `json:"detail"`
	Code      string `json:"code,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// FieldDetail describes one rejected request field.
type FieldDetail struct {
	Loc  []string `json:"loc"`
	Msg  string   `json:"msg"`
	Type string   `json:"type"`
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Headers are already sent; nothing meaningful can be done if encoding fails.
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError writes an error body based on the error type. AppError messages
// go out verbatim; anything unrecognised becomes a logged 500. It prefers
// the request-scoped logger set by the RequestLogger middleware.
func WriteError(w http.ResponseWriter, r *http.Request, err error, fallback *slog.Logger) {
	l := logger.FromContext(r.Context())
	if l == slog.Default() {
		l = fallback
	}
	requestID := logger.CorrelationIDFromContext(r.Context())

	var valErr *validator.ValidationError
	if errors.As(err, &valErr) {
		WriteValidationError(w, r, err)
		return
	}

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		if appErr.Status >= http.StatusInternalServerError {
			l.ErrorContext(r.Context(), "request failed",
				slog.String("error", err.Error()),
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
			)
		}
		WriteJSON(w, appErr.Status, ErrorResponse{Detail: appErr.Message, Code: appErr.Code, RequestID: requestID})
		return
	}

	status := apperrors.HTTPStatus(err)
	code := "INTERNAL_ERROR"
	message := "Internal Server Error"

	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		code, message = "NOT_FOUND", "Not Found"
	case errors.Is(err, apperrors.ErrAlreadyExists), errors.Is(err, apperrors.ErrConflict):
		code, message = "CONFLICT", "Conflict"
	case errors.Is(err, apperrors.ErrInvalidInput):
		code, message = "INVALID_INPUT", err.Error()
	case errors.Is(err, apperrors.ErrUnauthorized):
		code, message = "UNAUTHORIZED", "Not authenticated"
	case errors.Is(err, apperrors.ErrForbidden):
		code, message = "FORBIDDEN", "Not enough permissions"
	}

	if status == http.StatusInternalServerError {
		l.ErrorContext(r.Context(), "internal error",
			slog.String("error", err.Error()),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
		)
	}

	WriteJSON(w, status, ErrorResponse{Detail: message, Code: code, RequestID: requestID})
}

// WriteValidationError writes a 422 listing every rejected field. Errors
// that are not a ValidationError become a single-entry list.
func WriteValidationError(w http.ResponseWriter, r *http.Request, err error) {
	requestID := logger.CorrelationIDFromContext(r.Context())

	var valErr *validator.ValidationError
	if !errors.As(err, &valErr) {
		WriteJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
			Detail:    []FieldDetail{{Loc: []string{"body"}, Msg: err.Error(), Type: "value_error"}},
			Code:      "VALIDATION_ERROR",
			RequestID: requestID,
		})
		return
	}

	problems := valErr.Problems()
	details := make([]FieldDetail, 0, len(problems))
	for _, p := range problems {
		details = append(details, FieldDetail{
			Loc:  []string{"body", p.Field},
			Msg:  p.Message,
			Type: "value_error." + p.Tag,
		})
	}
	WriteJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
		Detail:    details,
		Code:      "VALIDATION_ERROR",
		RequestID: requestID,
	})
}

// ParseUUID validates that the given path parameter is a UUID. On failure it
// writes a 404 (an unknown id never names a resource) and returns false.
func ParseUUID(w http.ResponseWriter, param, resource string) (uuid.UUID, bool) {
	id, err := uuid.Parse(param)
	if err != nil {
		WriteJSON(w, http.StatusNotFound, ErrorResponse{
			Detail: resource + " not found",
			Code:   "NOT_FOUND",
		})
		return uuid.Nil, false
	}
	return id, true
}
