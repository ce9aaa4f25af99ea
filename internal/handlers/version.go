package handlers

import (
	"net/http"

	"footage-tracker/internal/startup"
)

// GetVersion handles GET /version.
func (h *Handlers) GetVersion(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, startup.GetBuildInfo())
}
