package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/utafrali/bookshelf/pkg/logger"
)

type loggerSetKey struct{}

// RequestLogger stores a request-scoped logger in the context carrying the
// correlation id, the trace and span ids and the request line. Mount it
// after RequestLogging and Tracing. Auth adds user_id to the same logger
// once the token is validated.
func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			l := logger.WithContext(ctx, base).With(
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
			)
			ctx = logger.NewContext(ctx, l)
			ctx = context.WithValue(ctx, loggerSetKey{}, true)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// withUserLogger tags the request logger, if RequestLogger installed one,
// with the authenticated user.
func withUserLogger(ctx context.Context, userID string) context.Context {
	ctx = logger.WithUserID(ctx, userID)
	if set, _ := ctx.Value(loggerSetKey{}).(bool); !set {
		return ctx
	}
	return logger.NewContext(ctx, logger.FromContext(ctx).With(slog.String("user_id", userID)))
}
