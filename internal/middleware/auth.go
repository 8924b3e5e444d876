package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/AnshRaj112/devcode-backend/internal/apperr"
	"github.com/AnshRaj112/devcode-backend/internal/models"
)

// SessionCookie is the cookie Login sets and the guard falls back to.
const SessionCookie = "authtoken"

// contextKey is a type for context keys to avoid collisions
type contextKey string

const userKey contextKey = "user"

// Authenticator resolves a session token to its user.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.User, error)
}

// ExtractToken reads the session token from the Authorization header, raw or
// as "Bearer <token>", then from the session cookie.
func ExtractToken(r *http.Request) string {
	if header := strings.TrimSpace(r.Header.Get("Authorization")); header != "" {
		if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
			return strings.TrimSpace(header[7:])
		}
		return header
	}
	if cookie, err := r.Cookie(SessionCookie); err == nil {
		return strings.TrimSpace(cookie.Value)
	}
	return ""
}

// RequireAuth rejects requests without a live session token with a uniform
// 401. The resolved user is stored in the request context.
func RequireAuth(auth Authenticator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := ExtractToken(r)
			user, err := auth.Authenticate(r.Context(), token)
			if err != nil {
				if !apperr.Is(err, apperr.CodeUnauthorized) {
					logger.ErrorContext(r.Context(), "authenticate request", "error", err)
				} else {
					logger.DebugContext(r.Context(), "request rejected", "reason", apperr.ReasonOf(err))
				}
				writeUnauthorized(w)
				return
			}

			ctx := context.WithValue(r.Context(), userKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserFromContext returns the user stored by RequireAuth.
func UserFromContext(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(userKey).(*models.User)
	return user, ok && user != nil
}

func writeUnauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status": http.StatusUnauthorized,
		"error":  "Unauthorized !",
	})
}
