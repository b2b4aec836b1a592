package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"boda-web/internal/model"
	"boda-web/internal/store"
	"boda-web/internal/websocket"
)

// GroupHandler is the admin CRUD surface over guest groups. Admin edits are
// last-write-wins; the optimistic-concurrency protocol guards guest RSVP
// traffic only.
type GroupHandler struct {
	groups store.GroupStore
	hub    *websocket.Hub
	logger *slog.Logger
	debug  bool
}

func NewGroupHandler(groups store.GroupStore, hub *websocket.Hub, logger *slog.Logger, debug bool) *GroupHandler {
	return &GroupHandler{groups: groups, hub: hub, logger: logger, debug: debug}
}

func (h *GroupHandler) broadcast(action, id string) {
	if h.hub != nil {
		h.hub.Broadcast(websocket.NewMessage("group", action, id))
	}
}

func (h *GroupHandler) List(w http.ResponseWriter, r *http.Request) {
	groups, err := h.groups.ListAll(r.Context())
	if err != nil {
		h.logger.Error("list groups", "error", err)
		writeErr(w, err, h.debug)
		return
	}
	if groups == nil {
		groups = []model.GuestGroup{}
	}
	writeJSON(w, http.StatusOK, groups)
}

func (h *GroupHandler) Get(w http.ResponseWriter, r *http.Request) {
	g, err := h.groups.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		h.logger.Error("get group", "error", err)
		writeErr(w, err, h.debug)
		return
	}
	if g == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "group not found"})
		return
	}
	writeJSON(w, http.StatusOK, g)
}

func (h *GroupHandler) Create(w http.ResponseWriter, r *http.Request) {
	var g model.GuestGroup
	if err := json.NewDecoder(r.Body).Decode(&g); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	if model.NormalizeToken(g.Token) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "token is required"})
		return
	}

	existing, err := h.groups.GetByToken(r.Context(), g.Token)
	if err != nil {
		h.logger.Error("create group", "error", err)
		writeErr(w, err, h.debug)
		return
	}
	if existing != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "token already in use"})
		return
	}

	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	if byID, err := h.groups.GetByID(r.Context(), g.ID); err == nil && byID != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "id already in use"})
		return
	}

	normalizeNew(&g, time.Now().UTC())
	if err := h.groups.Upsert(r.Context(), &g); err != nil {
		h.logger.Error("create group", "error", err)
		writeErr(w, err, h.debug)
		return
	}

	h.broadcast("created", g.ID)
	writeJSON(w, http.StatusCreated, g)
}

func (h *GroupHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	existing, err := h.groups.GetByID(r.Context(), id)
	if err != nil {
		h.logger.Error("update group", "error", err)
		writeErr(w, err, h.debug)
		return
	}
	if existing == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "group not found"})
		return
	}

	var g model.GuestGroup
	if err := json.NewDecoder(r.Body).Decode(&g); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if model.NormalizeToken(g.Token) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "token is required"})
		return
	}

	// The id is immutable after creation, whatever the body says.
	g.ID = id
	g.CreatedAt = existing.CreatedAt
	g.AttendanceStatus = model.DeriveAttendance(&g)
	g.UpdatedAt = time.Now().UTC()

	if err := h.groups.Upsert(r.Context(), &g); err != nil {
		h.logger.Error("update group", "error", err)
		writeErr(w, err, h.debug)
		return
	}

	h.broadcast("updated", g.ID)
	writeJSON(w, http.StatusOK, g)
}

func (h *GroupHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	existing, err := h.groups.GetByID(r.Context(), id)
	if err != nil {
		h.logger.Error("delete group", "error", err)
		writeErr(w, err, h.debug)
		return
	}
	if existing == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "group not found"})
		return
	}

	if err := h.groups.DeleteByID(r.Context(), id); err != nil {
		h.logger.Error("delete group", "error", err)
		writeErr(w, err, h.debug)
		return
	}

	h.broadcast("deleted", id)
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// normalizeNew fills defaults on an admin-created group.
func normalizeNew(g *model.GuestGroup, now time.Time) {
	if g.PrimaryGuest.AttendanceStatus == "" {
		g.PrimaryGuest.AttendanceStatus = model.AttendancePending
	}
	for i := range g.Companions {
		if g.Companions[i].AttendanceStatus == "" {
			g.Companions[i].AttendanceStatus = model.AttendancePending
		}
		if g.Companions[i].Type == "" {
			g.Companions[i].Type = model.CompanionPartner
		}
	}
	if g.Companions == nil {
		g.Companions = []model.Companion{}
	}
	g.AttendanceStatus = model.DeriveAttendance(g)
	g.CreatedAt = now
	g.UpdatedAt = now
}
