package httpclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	apperrors "github.com/utafrali/bookshelf/pkg/errors"
)

// maxErrorBody caps how much of an error body is read.
const maxErrorBody = 1 << 20

// ErrorEnvelope covers the two error body shapes the client understands:
// the structured {"error":{"code","message"}} form and the
// {"detail": ...} form, where detail is a string or a list of field errors.
type ErrorEnvelope struct {
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
	Detail json.RawMessage `json:"detail,omitempty"`
}

// FieldError is one entry of a validation error list.
type FieldError struct {
	Loc  []any  `json:"loc"`
	Msg  string `json:"msg"`
	Type string `json:"type"`
}

// message extracts the code and human readable text from the envelope.
func (e ErrorEnvelope) message() (code, msg string, ok bool) {
	if e.Error != nil {
		return e.Error.Code, e.Error.Message, true
	}
	if len(e.Detail) == 0 {
		return "", "", false
	}

	var s string
	if json.Unmarshal(e.Detail, &s) == nil {
		return "", s, true
	}

	var fields []FieldError
	if json.Unmarshal(e.Detail, &fields) == nil && len(fields) > 0 {
		parts := make([]string, 0, len(fields))
		for _, f := range fields {
			if name := fieldName(f.Loc); name != "" {
				parts = append(parts, name+": "+f.Msg)
				continue
			}
			parts = append(parts, f.Msg)
		}
		return "VALIDATION_ERROR", strings.Join(parts, "; "), true
	}
	return "", "", false
}

// fieldName returns the last element of a location path, skipping the
// leading "body"/"query"/"path" segment.
func fieldName(loc []any) string {
	if len(loc) < 2 {
		return ""
	}
	return fmt.Sprint(loc[len(loc)-1])
}

// ParseResponseError reads the body of a non-2xx HTTP response and translates
// it into an AppError. The API message is preserved verbatim so it can be
// shown to a user; the status picks the sentinel.
//
// The caller should only invoke this when resp.StatusCode indicates an error.
// The response body is fully consumed and closed.
func ParseResponseError(resp *http.Response, serviceName string) error {
	defer func() { _ = resp.Body.Close() }()

	bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return fmt.Errorf("%s returned status %d (failed to read body: %w)", serviceName, resp.StatusCode, err)
	}

	var env ErrorEnvelope
	code, msg, ok := "", "", false
	if json.Unmarshal(bodyBytes, &env) == nil {
		code, msg, ok = env.message()
	}
	if !ok {
		msg = strings.TrimSpace(string(bodyBytes))
		if len(msg) > 200 {
			msg = msg[:200]
		}
	}
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}

	return mapDownstreamError(resp.StatusCode, code, msg)
}

// mapDownstreamError translates a status code and message into an AppError
// that preserves the error semantics.
func mapDownstreamError(status int, code, message string) error {
	var appErr *apperrors.AppError
	switch {
	case status == http.StatusNotFound:
		appErr = apperrors.NotFoundMessage(message)
	case status == http.StatusBadRequest, status == http.StatusUnprocessableEntity:
		appErr = apperrors.InvalidInput(message)
	case status == http.StatusConflict:
		appErr = apperrors.Conflict(message)
	case status == http.StatusUnauthorized:
		appErr = apperrors.Unauthorized(message)
	case status == http.StatusForbidden:
		appErr = apperrors.Forbidden(message)
	case status == http.StatusGone:
		appErr = apperrors.Gone(message)
	case status == http.StatusServiceUnavailable, status == http.StatusBadGateway, status == http.StatusGatewayTimeout:
		appErr = apperrors.ServiceUnavailable(message)
	case status >= 500:
		appErr = &apperrors.AppError{
			Code:    "UPSTREAM_ERROR",
			Message: message,
			Err:     apperrors.ErrInternal,
		}
	default:
		appErr = &apperrors.AppError{Code: "HTTP_ERROR", Message: message}
	}

	appErr.Status = status
	if code != "" {
		appErr.Code = code
	}
	return appErr
}

// IsClientError returns true if the HTTP status code is a 4xx client error.
func IsClientError(status int) bool {
	return status >= 400 && status < 500
}
