package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/gorilla/mux"

	"footage-tracker/internal/database"
	"footage-tracker/internal/ingest"
	"footage-tracker/internal/mediatypes"
	"footage-tracker/internal/processing"
	"footage-tracker/internal/scanner"
	"footage-tracker/internal/startup"
)

func setupHandlers(t *testing.T) (*Handlers, *database.Database, string) {
	t.Helper()

	watchDir := t.TempDir()
	dbPath := filepath.Join(t.TempDir(), "footage.db")

	db, err := database.New(context.Background(), dbPath)
	if err != nil {
		t.Fatalf("database.New() failed: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	ing := ingest.New(db)
	config := &startup.Config{
		WatchDir:     watchDir,
		DatabasePath: dbPath,
	}

	h := New(db, processing.New(db), scanner.New(ing), nil, config)
	return h, db, watchDir
}

func insertRecord(t *testing.T, db *database.Database, path string, fileType mediatypes.FileType) int64 {
	t.Helper()

	rec := &database.FileRecord{
		Path:            path,
		Filename:        filepath.Base(path),
		ParentDirectory: filepath.Dir(path),
		FileType:        fileType,
		SizeBytes:       512,
		CreatedAt:       time.Now(),
	}
	if _, err := db.InsertFileRecord(context.Background(), rec); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	stored, err := db.GetFileByPath(context.Background(), path)
	if err != nil {
		t.Fatalf("GetFileByPath failed: %v", err)
	}
	return stored.ID
}

func decodeJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()

	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("response decode failed: %v", err)
	}
}

func TestRoot(t *testing.T) {
	t.Parallel()

	h, _, watchDir := setupHandlers(t)

	w := httptest.NewRecorder()
	h.Root(w, httptest.NewRequest("GET", "/", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var body map[string]string
	decodeJSON(t, w, &body)
	if body["watch_directory"] != watchDir {
		t.Errorf("watch_directory = %q, want %q", body["watch_directory"], watchDir)
	}
}

func TestGetStats(t *testing.T) {
	t.Parallel()

	h, db, _ := setupHandlers(t)

	insertRecord(t, db, "/watch/a.jpg", mediatypes.FileTypeImage)
	insertRecord(t, db, "/watch/b.mp4", mediatypes.FileTypeVideo)

	w := httptest.NewRecorder()
	h.GetStats(w, httptest.NewRequest("GET", "/stats", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var stats database.Stats
	decodeJSON(t, w, &stats)
	if stats.TotalFiles != 2 {
		t.Errorf("TotalFiles = %d, want 2", stats.TotalFiles)
	}
	if stats.UnprocessedFiles != 2 {
		t.Errorf("UnprocessedFiles = %d, want 2", stats.UnprocessedFiles)
	}
}

func TestGetUnprocessedFiles(t *testing.T) {
	t.Parallel()

	h, db, _ := setupHandlers(t)

	insertRecord(t, db, "/watch/a.jpg", mediatypes.FileTypeImage)
	insertRecord(t, db, "/watch/b.mp4", mediatypes.FileTypeVideo)

	w := httptest.NewRecorder()
	h.GetUnprocessedFiles(w, httptest.NewRequest("GET", "/files/unprocessed", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var resp FileListResponse
	decodeJSON(t, w, &resp)
	if resp.Count != 2 || len(resp.Files) != 2 {
		t.Errorf("count = %d with %d files, want 2/2", resp.Count, len(resp.Files))
	}

	// Type filter
	w = httptest.NewRecorder()
	h.GetUnprocessedFiles(w, httptest.NewRequest("GET", "/files/unprocessed?file_type=video", nil))
	decodeJSON(t, w, &resp)
	if resp.Count != 1 {
		t.Errorf("video count = %d, want 1", resp.Count)
	}

	// Unknown type is rejected
	w = httptest.NewRecorder()
	h.GetUnprocessedFiles(w, httptest.NewRequest("GET", "/files/unprocessed?file_type=audio", nil))
	if w.Code != http.StatusBadRequest {
		t.Errorf("unknown file_type status = %d, want 400", w.Code)
	}

	// Limit
	w = httptest.NewRecorder()
	h.GetUnprocessedFiles(w, httptest.NewRequest("GET", "/files/unprocessed?limit=1", nil))
	decodeJSON(t, w, &resp)
	if resp.Count != 1 {
		t.Errorf("limited count = %d, want 1", resp.Count)
	}
}

func TestGetUnprocessedFilesEmpty(t *testing.T) {
	t.Parallel()

	h, _, _ := setupHandlers(t)

	w := httptest.NewRecorder()
	h.GetUnprocessedFiles(w, httptest.NewRequest("GET", "/files/unprocessed", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	// An empty queue must serialize as [], not null
	if !bytes.Contains(w.Body.Bytes(), []byte(`"files":[]`)) {
		t.Errorf("empty queue body = %s, want files:[]", w.Body.String())
	}
}

func TestSearchFiles(t *testing.T) {
	t.Parallel()

	h, db, _ := setupHandlers(t)

	insertRecord(t, db, "/watch/cam1/frame-001.jpg", mediatypes.FileTypeImage)
	insertRecord(t, db, "/watch/cam2/clip.mp4", mediatypes.FileTypeVideo)

	tests := []struct {
		name      string
		query     string
		wantCode  int
		wantCount int
	}{
		{"no filters", "", http.StatusOK, 2},
		{"filename", "?filename=frame", http.StatusOK, 1},
		{"directory", "?directory=cam2", http.StatusOK, 1},
		{"file type", "?file_type=video", http.StatusOK, 1},
		{"composed", "?filename=frame&file_type=video", http.StatusOK, 0},
		{"invalid type", "?file_type=bogus", http.StatusBadRequest, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			h.SearchFiles(w, httptest.NewRequest("GET", "/files/search"+tt.query, nil))

			if w.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantCode)
			}
			if tt.wantCode != http.StatusOK {
				return
			}

			var resp FileListResponse
			decodeJSON(t, w, &resp)
			if resp.Count != tt.wantCount {
				t.Errorf("count = %d, want %d", resp.Count, tt.wantCount)
			}
		})
	}
}

func TestMarkProcessed(t *testing.T) {
	t.Parallel()

	h, db, _ := setupHandlers(t)

	id := insertRecord(t, db, "/watch/a.jpg", mediatypes.FileTypeImage)

	req := mux.SetURLVars(httptest.NewRequest("POST", "/process/1", nil),
		map[string]string{"id": strconv.FormatInt(id, 10)})
	w := httptest.NewRecorder()
	h.MarkProcessed(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}

	rec, err := db.GetFileByID(context.Background(), id)
	if err != nil {
		t.Fatalf("GetFileByID failed: %v", err)
	}
	if !rec.Processed {
		t.Error("record not processed after request")
	}

	// Unknown id
	req = mux.SetURLVars(httptest.NewRequest("POST", "/process/999", nil), map[string]string{"id": "999"})
	w = httptest.NewRecorder()
	h.MarkProcessed(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("unknown id status = %d, want 404", w.Code)
	}
	var body map[string]string
	decodeJSON(t, w, &body)
	if body["error"] != "File not found" {
		t.Errorf("error = %q, want 'File not found'", body["error"])
	}
}

func TestMarkProcessedBatch(t *testing.T) {
	t.Parallel()

	h, db, _ := setupHandlers(t)

	a := insertRecord(t, db, "/watch/a.jpg", mediatypes.FileTypeImage)
	b := insertRecord(t, db, "/watch/b.jpg", mediatypes.FileTypeImage)

	payload, _ := json.Marshal([]int64{a, b, 99999})
	w := httptest.NewRecorder()
	h.MarkProcessedBatch(w, httptest.NewRequest("POST", "/process/batch", bytes.NewReader(payload)))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Count int `json:"count"`
	}
	decodeJSON(t, w, &resp)
	if resp.Count != 2 {
		t.Errorf("count = %d, want 2 (unknown ids skipped)", resp.Count)
	}

	// Malformed body
	w = httptest.NewRecorder()
	h.MarkProcessedBatch(w, httptest.NewRequest("POST", "/process/batch", bytes.NewReader([]byte(`{"ids": 1}`))))
	if w.Code != http.StatusBadRequest {
		t.Errorf("malformed body status = %d, want 400", w.Code)
	}
}

func TestSimulateProcessing(t *testing.T) {
	t.Parallel()

	h, db, _ := setupHandlers(t)

	insertRecord(t, db, "/watch/a.jpg", mediatypes.FileTypeImage)
	insertRecord(t, db, "/watch/b.jpg", mediatypes.FileTypeImage)

	w := httptest.NewRecorder()
	h.SimulateProcessing(w, httptest.NewRequest("POST", "/process/simulate?batch_size=2", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}

	var resp struct {
		BatchSize int   `json:"batch_size"`
		TaskID    int64 `json:"task_id"`
	}
	decodeJSON(t, w, &resp)
	if resp.BatchSize != 2 {
		t.Errorf("batch_size = %d, want 2", resp.BatchSize)
	}
	if resp.TaskID == 0 {
		t.Fatal("task_id missing")
	}

	// Poll the task handle until the run completes
	deadline := time.Now().Add(5 * time.Second)
	for {
		req := mux.SetURLVars(httptest.NewRequest("GET", "/process/simulate/1", nil),
			map[string]string{"id": strconv.FormatInt(resp.TaskID, 10)})
		sw := httptest.NewRecorder()
		h.GetSimulationStatus(sw, req)
		if sw.Code != http.StatusOK {
			t.Fatalf("status endpoint = %d, want 200", sw.Code)
		}

		var status struct {
			Done      bool `json:"done"`
			Processed int  `json:"processed"`
		}
		decodeJSON(t, sw, &status)
		if status.Done {
			if status.Processed != 2 {
				t.Errorf("processed = %d, want 2", status.Processed)
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("simulation did not finish in time")
		}
		time.Sleep(20 * time.Millisecond)
	}
}

func TestSimulateProcessingBadBatchSize(t *testing.T) {
	t.Parallel()

	h, _, _ := setupHandlers(t)

	for _, q := range []string{"?batch_size=0", "?batch_size=-1", "?batch_size=abc"} {
		w := httptest.NewRecorder()
		h.SimulateProcessing(w, httptest.NewRequest("POST", "/process/simulate"+q, nil))
		if w.Code != http.StatusBadRequest {
			t.Errorf("batch_size %q status = %d, want 400", q, w.Code)
		}
	}
}

func TestGetSimulationStatusUnknown(t *testing.T) {
	t.Parallel()

	h, _, _ := setupHandlers(t)

	req := mux.SetURLVars(httptest.NewRequest("GET", "/process/simulate/42", nil),
		map[string]string{"id": "42"})
	w := httptest.NewRecorder()
	h.GetSimulationStatus(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("unknown task status = %d, want 404", w.Code)
	}
}

func TestInitialScan(t *testing.T) {
	t.Parallel()

	h, db, watchDir := setupHandlers(t)

	if err := os.WriteFile(filepath.Join(watchDir, "a.jpg"), []byte("x"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if err := os.Mkdir(filepath.Join(watchDir, "cam1"), 0o755); err != nil {
		t.Fatalf("Mkdir failed: %v", err)
	}

	w := httptest.NewRecorder()
	h.InitialScan(w, httptest.NewRequest("POST", "/scan/initial", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}

	var resp struct {
		ItemsAdded int    `json:"items_added"`
		Directory  string `json:"directory"`
	}
	decodeJSON(t, w, &resp)
	if resp.ItemsAdded != 2 {
		t.Errorf("items_added = %d, want 2", resp.ItemsAdded)
	}
	if resp.Directory != watchDir {
		t.Errorf("directory = %q, want %q", resp.Directory, watchDir)
	}

	if _, err := db.GetFileByPath(context.Background(), filepath.Join(watchDir, "a.jpg")); err != nil {
		t.Errorf("scanned file not tracked: %v", err)
	}
}

func TestInitialScanMissingDir(t *testing.T) {
	t.Parallel()

	h, _, watchDir := setupHandlers(t)

	if err := os.RemoveAll(watchDir); err != nil {
		t.Fatalf("RemoveAll failed: %v", err)
	}

	w := httptest.NewRecorder()
	h.InitialScan(w, httptest.NewRequest("POST", "/scan/initial", nil))

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestLivenessCheck(t *testing.T) {
	t.Parallel()

	h, _, _ := setupHandlers(t)

	w := httptest.NewRecorder()
	h.LivenessCheck(w, httptest.NewRequest("GET", "/livez", nil))
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}

	// HEAD gets headers only
	w = httptest.NewRecorder()
	h.LivenessCheck(w, httptest.NewRequest("HEAD", "/livez", nil))
	if w.Body.Len() != 0 {
		t.Errorf("HEAD body length = %d, want 0", w.Body.Len())
	}
}

func TestReadinessCheck(t *testing.T) {
	t.Parallel()

	h, _, _ := setupHandlers(t)

	w := httptest.NewRecorder()
	h.ReadinessCheck(w, httptest.NewRequest("GET", "/readyz", nil))
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}

func TestHealthCheck(t *testing.T) {
	t.Parallel()

	h, db, _ := setupHandlers(t)

	insertRecord(t, db, "/watch/a.jpg", mediatypes.FileTypeImage)

	w := httptest.NewRecorder()
	h.HealthCheck(w, httptest.NewRequest("GET", "/health", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var resp HealthResponse
	decodeJSON(t, w, &resp)
	if !resp.Ready {
		t.Error("ready = false with a reachable database")
	}
	// No watcher attached in this test, so health is degraded, not broken
	if resp.Status != statusDegraded {
		t.Errorf("status = %q, want %q", resp.Status, statusDegraded)
	}
	if resp.TotalFiles != 1 {
		t.Errorf("total_files = %d, want 1", resp.TotalFiles)
	}
}

func TestGetVersion(t *testing.T) {
	t.Parallel()

	h, _, _ := setupHandlers(t)

	w := httptest.NewRecorder()
	h.GetVersion(w, httptest.NewRequest("GET", "/version", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var info startup.BuildInfo
	decodeJSON(t, w, &info)
	if info.Version == "" {
		t.Error("version missing from build info")
	}
}
