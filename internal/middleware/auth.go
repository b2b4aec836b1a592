package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"boda-web/internal/admin"
)

// SessionCookieName is the HTTP-only cookie carrying the admin session token.
const SessionCookieName = "boda_admin_session"

// SessionToken extracts the session token from the cookie or, for non-browser
// clients, from a bearer Authorization header.
func SessionToken(r *http.Request) string {
	if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return ""
}

// RequireAdmin rejects requests without a live admin session. Validation
// slides the session TTL forward as a side effect.
func RequireAdmin(sessions *admin.SessionStore, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := SessionToken(r)
			if token == "" {
				unauthorized(w)
				return
			}

			ok, err := sessions.Validate(r.Context(), token)
			if err != nil {
				logger.Error("session validation", "error", err)
				http.Error(w, `{"error":"storage unavailable"}`, http.StatusInternalServerError)
				return
			}
			if !ok {
				unauthorized(w)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"error":"unauthorized"}`))
}
