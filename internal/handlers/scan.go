package handlers

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"footage-tracker/internal/logging"
)

// InitialScan handles POST /scan/initial. It walks the watch directory
// synchronously and reports how many entries were newly tracked. Re-running
// the scan is harmless: already-tracked paths are skipped by the ledger.
func (h *Handlers) InitialScan(w http.ResponseWriter, r *http.Request) {
	if _, err := os.Stat(h.watchDir); err != nil {
		logging.Error("Initial scan rejected, watch directory unavailable: %v", err)
		writeJSONError(w, "Watch directory does not exist: "+h.watchDir, http.StatusNotFound)
		return
	}

	start := time.Now()
	added, err := h.scanner.Scan(r.Context(), h.watchDir)
	if err != nil {
		logging.Error("Initial scan failed: %v", err)
		writeJSONError(w, "Initial scan failed", http.StatusInternalServerError)
		return
	}

	logging.Info("Initial scan of %s finished in %v (%d entries)", h.watchDir, time.Since(start).Round(time.Millisecond), added)

	writeJSON(w, map[string]interface{}{
		"message":     fmt.Sprintf("Initial scan complete: %d entries", added),
		"items_added": added,
		"directory":   h.watchDir,
	})
}
