package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"boda-web/internal/admin"
	"boda-web/internal/apperr"
	"boda-web/internal/middleware"
)

type AuthHandler struct {
	sessions *admin.SessionStore
	logger   *slog.Logger
	debug    bool
}

func NewAuthHandler(sessions *admin.SessionStore, logger *slog.Logger, debug bool) *AuthHandler {
	return &AuthHandler{sessions: sessions, logger: logger, debug: debug}
}

type loginRequest struct {
	Key string `json:"key"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	token, err := h.sessions.Login(r.Context(), req.Key)
	if errors.Is(err, apperr.ErrUnauthorized) {
		h.logger.Warn("failed admin login", "remote", middleware.RealIP(r))
		writeErr(w, err, h.debug)
		return
	}
	if err != nil {
		h.logger.Error("admin login", "error", err)
		writeErr(w, err, h.debug)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int((24 * time.Hour).Seconds()),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token := middleware.SessionToken(r)
	if err := h.sessions.Logout(r.Context(), token); err != nil {
		h.logger.Error("admin logout", "error", err)
		writeErr(w, err, h.debug)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}
