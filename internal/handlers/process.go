package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"footage-tracker/internal/database"
	"footage-tracker/internal/logging"
)

// MarkProcessed handles POST /process/{id}.
func (h *Handlers) MarkProcessed(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeJSONError(w, "Invalid file id", http.StatusBadRequest)
		return
	}

	if err := h.coord.MarkProcessed(r.Context(), id); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			writeJSONError(w, "File not found", http.StatusNotFound)
			return
		}
		logging.Error("Mark processed failed for id %d: %v", id, err)
		writeJSONError(w, "Failed to mark file as processed", http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]string{
		"message": fmt.Sprintf("File %d marked as processed", id),
	})
}

// MarkProcessedBatch handles POST /process/batch. The body is a JSON array
// of record ids; ids that do not exist are silently skipped and the response
// reports the count of rows actually changed.
func (h *Handlers) MarkProcessedBatch(w http.ResponseWriter, r *http.Request) {
	var ids []int64
	if err := json.NewDecoder(r.Body).Decode(&ids); err != nil {
		writeJSONError(w, "Request body must be a JSON array of file ids", http.StatusBadRequest)
		return
	}

	count, err := h.coord.MarkProcessedBatch(r.Context(), ids)
	if err != nil {
		logging.Error("Batch mark processed failed: %v", err)
		writeJSONError(w, "Failed to mark files as processed", http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]interface{}{
		"message": fmt.Sprintf("Marked %d files as processed", count),
		"count":   count,
	})
}

// SimulateProcessing handles POST /process/simulate. It schedules a detached
// background run and acknowledges immediately; the returned task id can be
// polled via GET /process/simulate/{id}.
func (h *Handlers) SimulateProcessing(w http.ResponseWriter, r *http.Request) {
	batchSize := defaultBatchSize
	if raw := r.URL.Query().Get("batch_size"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			writeJSONError(w, "batch_size must be a positive integer", http.StatusBadRequest)
			return
		}
		batchSize = parsed
	}

	task := h.coord.Simulate(batchSize)

	writeJSON(w, map[string]interface{}{
		"message":    fmt.Sprintf("Processing %d files in background", batchSize),
		"batch_size": batchSize,
		"task_id":    task.ID,
	})
}

// GetSimulationStatus handles GET /process/simulate/{id}.
func (h *Handlers) GetSimulationStatus(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeJSONError(w, "Invalid task id", http.StatusBadRequest)
		return
	}

	status, ok := h.coord.TaskStatus(id)
	if !ok {
		writeJSONError(w, "Task not found", http.StatusNotFound)
		return
	}

	writeJSON(w, status)
}
