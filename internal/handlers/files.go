package handlers

import (
	"net/http"
	"strconv"

	"footage-tracker/internal/database"
	"footage-tracker/internal/logging"
	"footage-tracker/internal/mediatypes"
)

// FileListResponse is the envelope for queue and search results.
type FileListResponse struct {
	Count int                   `json:"count"`
	Files []database.FileRecord `json:"files"`
}

// GetStats handles GET /stats.
func (h *Handlers) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.db.CalculateStats(r.Context())
	if err != nil {
		logging.Error("Stats query failed: %v", err)
		writeJSONError(w, "Failed to compute statistics", http.StatusInternalServerError)
		return
	}

	writeJSON(w, stats)
}

// GetUnprocessedFiles handles GET /files/unprocessed. Results are ordered
// oldest-discovered first: the front of the processing queue comes first.
func (h *Handlers) GetUnprocessedFiles(w http.ResponseWriter, r *http.Request) {
	limit := parseLimit(r.URL.Query().Get("limit"))

	fileType := r.URL.Query().Get("file_type")
	if fileType != "" && !mediatypes.FileType(fileType).Valid() {
		writeJSONError(w, "Unknown file_type: "+fileType, http.StatusBadRequest)
		return
	}

	files, err := h.db.UnprocessedFiles(r.Context(), limit, fileType)
	if err != nil {
		logging.Error("Unprocessed query failed: %v", err)
		writeJSONError(w, "Failed to list unprocessed files", http.StatusInternalServerError)
		return
	}

	writeJSON(w, FileListResponse{Count: len(files), Files: files})
}

// SearchFiles handles GET /files/search. All supplied filters are
// AND-composed; results are ordered newest-discovered first.
func (h *Handlers) SearchFiles(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	fileType := query.Get("file_type")
	if fileType != "" && !mediatypes.FileType(fileType).Valid() {
		writeJSONError(w, "Unknown file_type: "+fileType, http.StatusBadRequest)
		return
	}

	opts := database.SearchOptions{
		Filename:  query.Get("filename"),
		Directory: query.Get("directory"),
		FileType:  fileType,
		Limit:     parseLimit(query.Get("limit")),
	}

	files, err := h.db.SearchFiles(r.Context(), opts)
	if err != nil {
		logging.Error("Search query failed: %v", err)
		writeJSONError(w, "Search failed", http.StatusInternalServerError)
		return
	}

	writeJSON(w, FileListResponse{Count: len(files), Files: files})
}

// parseLimit parses a limit query parameter, falling back to the default for
// missing or nonsensical values.
func parseLimit(raw string) int {
	if raw == "" {
		return defaultListLimit
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 {
		return defaultListLimit
	}
	return limit
}
