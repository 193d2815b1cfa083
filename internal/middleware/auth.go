package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/taskhive/taskhive-api/internal/models"
	"github.com/taskhive/taskhive-api/internal/services"
)

// SessionCookieName is the fixed cookie carrying the opaque session token.
const SessionCookieName = "taskhive_session"

type contextKey string

const userContextKey contextKey = "user"

// Auth resolves the session cookie to a user and stores it on the request
// context. Requests without a valid session get a 401 and never reach the
// handler.
func Auth(sessions *services.SessionService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookieName)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "not authenticated")
				return
			}

			user, err := sessions.Resolve(r.Context(), cookie.Value)
			if err != nil {
				if errors.Is(err, services.ErrSessionExpired) {
					writeError(w, http.StatusUnauthorized, "SESSION_EXPIRED", "session expired")
					return
				}
				writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "not authenticated")
				return
			}

			ctx := context.WithValue(r.Context(), userContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserFrom returns the authenticated user stored by Auth, or nil.
func UserFrom(ctx context.Context) *models.User {
	user, _ := ctx.Value(userContextKey).(*models.User)
	return user
}

// WithUser returns a context carrying the user; tests use it to bypass Auth.
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]string{"code": code, "message": message},
	})
}
