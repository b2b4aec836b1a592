package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"boda-web/internal/photos"
	"boda-web/internal/websocket"
)

type PhotoHandler struct {
	svc    *photos.Service
	hub    *websocket.Hub
	logger *slog.Logger
	debug  bool
}

func NewPhotoHandler(svc *photos.Service, hub *websocket.Hub, logger *slog.Logger, debug bool) *PhotoHandler {
	return &PhotoHandler{svc: svc, hub: hub, logger: logger, debug: debug}
}

// GetRace returns (lazily creating) the photo race for a table.
func (h *PhotoHandler) GetRace(w http.ResponseWriter, r *http.Request) {
	race, err := h.svc.GetOrCreate(r.Context(), r.PathValue("id"))
	if err != nil {
		writeErr(w, err, h.debug)
		return
	}
	writeJSON(w, http.StatusOK, race)
}

type photoSubmission struct {
	MissionID     string `json:"mission_id"`
	URL           string `json:"url"`
	SubmitterName string `json:"submitter_name"`
}

// SubmitPhoto records a photo already uploaded to the file host.
func (h *PhotoHandler) SubmitPhoto(w http.ResponseWriter, r *http.Request) {
	var req photoSubmission
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	race, err := h.svc.AddPhoto(r.Context(), r.PathValue("id"), req.MissionID, req.URL, req.SubmitterName)
	if err != nil {
		writeErr(w, err, h.debug)
		return
	}
	writeJSON(w, http.StatusCreated, race)
}

type photoValidation struct {
	Validated bool `json:"validated"`
}

// ValidatePhoto is the admin validation toggle for a submission.
func (h *PhotoHandler) ValidatePhoto(w http.ResponseWriter, r *http.Request) {
	var req photoValidation
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	race, err := h.svc.SetPhotoValidated(r.Context(), r.PathValue("id"), r.PathValue("photo_id"), req.Validated)
	if err != nil {
		writeErr(w, err, h.debug)
		return
	}

	if h.hub != nil {
		h.hub.Broadcast(websocket.NewMessage("photo_race", "updated", race.TableID))
	}
	writeJSON(w, http.StatusOK, race)
}
