package handler

import (
	"io"
	"log/slog"
	"net/http"

	"boda-web/internal/rsvp"
)

// maxPatchBytes caps RSVP patch bodies; a guest patch is a few kilobytes at
// most.
const maxPatchBytes = 64 << 10

type RSVPHandler struct {
	svc    *rsvp.Service
	logger *slog.Logger
	debug  bool
}

func NewRSVPHandler(svc *rsvp.Service, logger *slog.Logger, debug bool) *RSVPHandler {
	return &RSVPHandler{svc: svc, logger: logger, debug: debug}
}

// Get returns the sanitized group for a token.
func (h *RSVPHandler) Get(w http.ResponseWriter, r *http.Request) {
	g, err := h.svc.Get(r.Context(), r.PathValue("token"))
	if err != nil {
		writeErr(w, err, h.debug)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

// Patch applies a guest-submitted partial update.
func (h *RSVPHandler) Patch(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxPatchBytes))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unreadable body"})
		return
	}

	patch, err := rsvp.DecodePatch(body)
	if err != nil {
		writeErr(w, err, h.debug)
		return
	}

	g, err := h.svc.Apply(r.Context(), r.PathValue("token"), patch)
	if err != nil {
		writeErr(w, err, h.debug)
		return
	}
	writeJSON(w, http.StatusOK, g)
}
