package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"boda-web/internal/model"
	"boda-web/internal/store"
	"boda-web/internal/websocket"
)

// ConfigHandler serves the table and bus configuration blobs. Both are small
// admin-edited lists saved wholesale.
type ConfigHandler struct {
	cfg    *store.ConfigStore
	hub    *websocket.Hub
	logger *slog.Logger
	debug  bool
}

func NewConfigHandler(cfg *store.ConfigStore, hub *websocket.Hub, logger *slog.Logger, debug bool) *ConfigHandler {
	return &ConfigHandler{cfg: cfg, hub: hub, logger: logger, debug: debug}
}

func (h *ConfigHandler) broadcast(entity string) {
	if h.hub != nil {
		h.hub.Broadcast(websocket.NewMessage(entity, "updated", ""))
	}
}

func (h *ConfigHandler) ListTables(w http.ResponseWriter, r *http.Request) {
	tables, err := h.cfg.Tables(r.Context())
	if err != nil {
		h.logger.Error("list tables", "error", err)
		writeErr(w, err, h.debug)
		return
	}
	writeJSON(w, http.StatusOK, tables)
}

func (h *ConfigHandler) SaveTables(w http.ResponseWriter, r *http.Request) {
	var tables []model.TableConfig
	if err := json.NewDecoder(r.Body).Decode(&tables); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	seen := make(map[string]struct{}, len(tables))
	for _, t := range tables {
		if t.ID == "" || t.Name == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "table id and name are required"})
			return
		}
		if t.Capacity <= 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "table capacity must be positive"})
			return
		}
		if _, dup := seen[t.ID]; dup {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "duplicate table id"})
			return
		}
		seen[t.ID] = struct{}{}
	}

	if err := h.cfg.SaveTables(r.Context(), tables); err != nil {
		h.logger.Error("save tables", "error", err)
		writeErr(w, err, h.debug)
		return
	}
	h.broadcast("tables")
	writeJSON(w, http.StatusOK, tables)
}

func (h *ConfigHandler) ListBuses(w http.ResponseWriter, r *http.Request) {
	buses, err := h.cfg.Buses(r.Context())
	if err != nil {
		h.logger.Error("list buses", "error", err)
		writeErr(w, err, h.debug)
		return
	}
	writeJSON(w, http.StatusOK, buses)
}

func (h *ConfigHandler) SaveBuses(w http.ResponseWriter, r *http.Request) {
	var buses []model.BusConfig
	if err := json.NewDecoder(r.Body).Decode(&buses); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	seen := make(map[string]struct{}, len(buses))
	for _, b := range buses {
		if b.ID == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bus id is required"})
			return
		}
		if _, dup := seen[b.ID]; dup {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "duplicate bus id"})
			return
		}
		seen[b.ID] = struct{}{}
	}

	if err := h.cfg.SaveBuses(r.Context(), buses); err != nil {
		h.logger.Error("save buses", "error", err)
		writeErr(w, err, h.debug)
		return
	}
	h.broadcast("buses")
	writeJSON(w, http.StatusOK, buses)
}
