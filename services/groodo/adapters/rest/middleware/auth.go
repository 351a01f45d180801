package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gregory-chris/groodo-api-sub000/services/groodo/pkg/res"
)

type TokenParser interface {
	Parse(token string) (int64, error)
}

type userIDKey struct{}

func WithUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, userIDKey{}, userID)
}

// UserID returns the authenticated user of the request.
func UserID(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(userIDKey{}).(int64)
	return id, ok && id > 0
}

// Auth requires a valid "Authorization: Bearer <token>" header.
func Auth(log *slog.Logger, tokens TokenParser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
				res.Error(w, "missing bearer token", http.StatusUnauthorized)
				return
			}

			userID, err := tokens.Parse(strings.TrimSpace(token))
			if err != nil {
				log.Debug("token rejected", "error", err, "request_id", RequestID(r.Context()))
				res.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
		})
	}
}
