package middleware

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"boda-web/internal/admin"
	"boda-web/internal/kv"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestSessionToken(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	if got := SessionToken(r); got != "" {
		t.Errorf("no credentials: token = %q", got)
	}

	r = httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "cookie-token"})
	if got := SessionToken(r); got != "cookie-token" {
		t.Errorf("cookie token = %q", got)
	}

	r = httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer header-token")
	if got := SessionToken(r); got != "header-token" {
		t.Errorf("bearer token = %q", got)
	}

	// Cookie wins when both are present.
	r = httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "cookie-token"})
	r.Header.Set("Authorization", "Bearer header-token")
	if got := SessionToken(r); got != "cookie-token" {
		t.Errorf("precedence: token = %q, want cookie-token", got)
	}
}

func TestRequireAdmin(t *testing.T) {
	mem := kv.NewMemory()
	sessions := admin.NewSessionStore(mem, "secret", "")
	ctx := context.Background()

	token, err := sessions.Login(ctx, "secret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	handler := RequireAdmin(sessions, discardLogger())(okHandler())

	// No credentials.
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/admin/groups", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("anonymous status = %d, want 401", rec.Code)
	}

	// Stale token.
	rec = httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/admin/groups", nil)
	r.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "stale"})
	handler.ServeHTTP(rec, r)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("stale token status = %d, want 401", rec.Code)
	}

	// Live session.
	rec = httptest.NewRecorder()
	r = httptest.NewRequest(http.MethodGet, "/api/admin/groups", nil)
	r.AddCookie(&http.Cookie{Name: SessionCookieName, Value: token})
	handler.ServeHTTP(rec, r)
	if rec.Code != http.StatusOK {
		t.Errorf("valid session status = %d, want 200", rec.Code)
	}
}

func TestRateLimiterWindow(t *testing.T) {
	rl := NewRateLimiter()

	for i := 0; i < 3; i++ {
		if !rl.Allow("ip-1", 3, time.Minute) {
			t.Fatalf("request %d rejected within limit", i+1)
		}
	}
	if rl.Allow("ip-1", 3, time.Minute) {
		t.Error("fourth request allowed over limit")
	}
	// Other keys are independent.
	if !rl.Allow("ip-2", 3, time.Minute) {
		t.Error("unrelated key rejected")
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	rl := NewRateLimiter()
	handler := RateLimit(rl, RealIP, 2, time.Minute)(okHandler())

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/admin/login", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d status = %d", i+1, rec.Code)
		}
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/admin/login", nil))
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("over-limit status = %d, want 429", rec.Code)
	}
}

func TestRealIP(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "10.0.0.1:12345"
	if got := RealIP(r); got != "10.0.0.1" {
		t.Errorf("RealIP = %q, want 10.0.0.1", got)
	}

	r.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	if got := RealIP(r); got != "203.0.113.7" {
		t.Errorf("RealIP with XFF = %q, want first hop", got)
	}
}

func TestCORS(t *testing.T) {
	handler := CORS("https://boda.example")(okHandler())

	// Allowed origin gets credentials headers.
	rec := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/rsvp/tok1", nil)
	r.Header.Set("Origin", "https://boda.example")
	handler.ServeHTTP(rec, r)
	if rec.Header().Get("Access-Control-Allow-Origin") != "https://boda.example" {
		t.Errorf("allow-origin = %q", rec.Header().Get("Access-Control-Allow-Origin"))
	}
	if rec.Header().Get("Access-Control-Allow-Credentials") != "true" {
		t.Error("credentials header missing")
	}

	// Unknown origins get no CORS headers.
	rec = httptest.NewRecorder()
	r = httptest.NewRequest(http.MethodGet, "/api/rsvp/tok1", nil)
	r.Header.Set("Origin", "https://evil.example")
	handler.ServeHTTP(rec, r)
	if rec.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Error("unknown origin must not be allowed")
	}

	// Preflight is answered directly.
	rec = httptest.NewRecorder()
	r = httptest.NewRequest(http.MethodOptions, "/api/rsvp/tok1", nil)
	r.Header.Set("Origin", "https://boda.example")
	handler.ServeHTTP(rec, r)
	if rec.Code != http.StatusNoContent {
		t.Errorf("preflight status = %d, want 204", rec.Code)
	}
}

func TestRequestLoggerPreservesStatus(t *testing.T) {
	handler := RequestLogger(discardLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusTeapot {
		t.Errorf("status = %d, want 418", rec.Code)
	}
}
