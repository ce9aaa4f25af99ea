package handlers

import (
	"net/http"
)

// Root handles GET /, a small orientation payload for humans poking at the
// API with curl.
func (h *Handlers) Root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{
		"message":         "Footage tracker is running",
		"watch_directory": h.watchDir,
		"database":        h.dbPath,
	})
}
