package handler

import (
	"encoding/json"
	"net/http"

	"boda-web/internal/apperr"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeErr maps a core error to its stable status and short message. The
// underlying detail is only attached in debug mode; production responses
// never carry internals.
func writeErr(w http.ResponseWriter, err error, debug bool) {
	body := map[string]string{"error": apperr.Message(err)}
	if debug {
		body["detail"] = err.Error()
	}
	writeJSON(w, apperr.Status(err), body)
}
