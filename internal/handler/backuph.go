package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"boda-web/internal/apperr"
	"boda-web/internal/backup"
	"boda-web/internal/websocket"
)

type BackupHandler struct {
	mgr      *backup.Manager
	hub      *websocket.Hub
	maxBytes int64
	logger   *slog.Logger
	debug    bool
}

func NewBackupHandler(mgr *backup.Manager, hub *websocket.Hub, maxBytes int64, logger *slog.Logger, debug bool) *BackupHandler {
	return &BackupHandler{mgr: mgr, hub: hub, maxBytes: maxBytes, logger: logger, debug: debug}
}

// Export streams the whole dataset as a downloadable JSON document.
func (h *BackupHandler) Export(w http.ResponseWriter, r *http.Request) {
	env, filename, err := h.mgr.Export(r.Context())
	if err != nil {
		h.logger.Error("export", "error", err)
		writeErr(w, err, h.debug)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	json.NewEncoder(w).Encode(env)
}

// Import accepts an export envelope with ?mode=dry-run|apply.
func (h *BackupHandler) Import(w http.ResponseWriter, r *http.Request) {
	mode := backup.Mode(r.URL.Query().Get("mode"))
	if mode == "" {
		mode = backup.ModeDryRun
	}
	if !backup.ValidMode(mode) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "mode must be dry-run or apply"})
		return
	}

	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeErr(w, apperr.ErrPayloadTooLarge, h.debug)
			return
		}
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unreadable body"})
		return
	}

	result, err := h.mgr.Import(r.Context(), raw, mode)
	if err != nil {
		if apperr.Status(err) >= 500 {
			h.logger.Error("import", "error", err)
		}
		writeErr(w, err, h.debug)
		return
	}

	if result.Applied && h.hub != nil {
		h.hub.Broadcast(websocket.NewMessage("dataset", "imported", ""))
	}
	writeJSON(w, http.StatusOK, result)
}

// Migrate runs the legacy-to-entity migration with ?mode=dry-run|apply.
func (h *BackupHandler) Migrate(w http.ResponseWriter, r *http.Request) {
	mode := backup.Mode(r.URL.Query().Get("mode"))
	if mode == "" {
		mode = backup.ModeDryRun
	}
	if !backup.ValidMode(mode) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "mode must be dry-run or apply"})
		return
	}

	report, err := h.mgr.Migrate(r.Context(), mode)
	if err != nil {
		h.logger.Error("migrate", "error", err)
		writeErr(w, err, h.debug)
		return
	}
	writeJSON(w, http.StatusOK, report)
}
