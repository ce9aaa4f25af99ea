package processing

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"footage-tracker/internal/database"
	"footage-tracker/internal/mediatypes"
)

func setupCoordinator(t *testing.T) (*Coordinator, *database.Database) {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "footage.db")
	db, err := database.New(context.Background(), dbPath)
	if err != nil {
		t.Fatalf("database.New() failed: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return New(db), db
}

func insertUnprocessed(t *testing.T, db *database.Database, path string) int64 {
	t.Helper()

	rec := &database.FileRecord{
		Path:            path,
		Filename:        filepath.Base(path),
		ParentDirectory: filepath.Dir(path),
		FileType:        mediatypes.FileTypeImage,
		SizeBytes:       10,
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

func waitForTask(t *testing.T, c *Coordinator, id int64) TaskStatus {
	t.Helper()

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		status, ok := c.TaskStatus(id)
		if !ok {
			t.Fatalf("task %d unknown", id)
		}
		if status.Done {
			return status
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("task %d did not finish in time", id)
	return TaskStatus{}
}

func TestMarkProcessedDelegates(t *testing.T) {
	t.Parallel()

	c, db := setupCoordinator(t)
	ctx := context.Background()

	id := insertUnprocessed(t, db, "/watch/a.jpg")

	if err := c.MarkProcessed(ctx, id); err != nil {
		t.Fatalf("MarkProcessed failed: %v", err)
	}
	rec, err := db.GetFileByID(ctx, id)
	if err != nil {
		t.Fatalf("GetFileByID failed: %v", err)
	}
	if !rec.Processed {
		t.Error("record not processed")
	}

	if err := c.MarkProcessed(ctx, 99999); !errors.Is(err, database.ErrNotFound) {
		t.Errorf("unknown id error = %v, want ErrNotFound", err)
	}
}

func TestSimulateProcessesBatch(t *testing.T) {
	t.Parallel()

	c, db := setupCoordinator(t)
	ctx := context.Background()

	for _, name := range []string{"a.jpg", "b.jpg", "c.jpg", "d.jpg", "e.jpg"} {
		insertUnprocessed(t, db, "/watch/"+name)
	}

	status := c.Simulate(3)
	if status.ID == 0 {
		t.Fatal("task id not assigned")
	}
	if status.BatchSize != 3 {
		t.Errorf("BatchSize = %d, want 3", status.BatchSize)
	}

	final := waitForTask(t, c, status.ID)
	if final.Selected != 3 || final.Processed != 3 {
		t.Errorf("final status = %+v, want 3 selected and processed", final)
	}
	if final.EndedAt == nil {
		t.Error("EndedAt not set on a finished task")
	}

	stats, err := db.CalculateStats(ctx)
	if err != nil {
		t.Fatalf("CalculateStats failed: %v", err)
	}
	if stats.ProcessedFiles != 3 || stats.UnprocessedFiles != 2 {
		t.Errorf("stats = %d processed / %d unprocessed, want 3/2", stats.ProcessedFiles, stats.UnprocessedFiles)
	}

	// A second run only sees what the first left behind
	second := waitForTask(t, c, c.Simulate(3).ID)
	if second.Selected != 2 || second.Processed != 2 {
		t.Errorf("second run status = %+v, want the remaining 2", second)
	}

	stats, err = db.CalculateStats(ctx)
	if err != nil {
		t.Fatalf("CalculateStats failed: %v", err)
	}
	if stats.UnprocessedFiles != 0 {
		t.Errorf("UnprocessedFiles = %d after both runs, want 0", stats.UnprocessedFiles)
	}
}

func TestSimulateBatchLargerThanQueue(t *testing.T) {
	t.Parallel()

	c, db := setupCoordinator(t)

	insertUnprocessed(t, db, "/watch/only.jpg")

	status := c.Simulate(10)
	final := waitForTask(t, c, status.ID)

	if final.Selected != 1 || final.Processed != 1 {
		t.Errorf("final status = %+v, want 1 selected and processed", final)
	}
}

func TestSimulateEmptyQueue(t *testing.T) {
	t.Parallel()

	c, _ := setupCoordinator(t)

	status := c.Simulate(5)
	final := waitForTask(t, c, status.ID)

	if final.Selected != 0 || final.Processed != 0 {
		t.Errorf("final status = %+v, want nothing selected", final)
	}
}

func TestTaskStatusUnknownID(t *testing.T) {
	t.Parallel()

	c, _ := setupCoordinator(t)

	if _, ok := c.TaskStatus(42); ok {
		t.Error("unknown task id reported as known")
	}
}

func TestSimulateAssignsDistinctIDs(t *testing.T) {
	t.Parallel()

	c, _ := setupCoordinator(t)

	a := c.Simulate(1)
	b := c.Simulate(1)
	if a.ID == b.ID {
		t.Errorf("task ids collide: %d", a.ID)
	}

	waitForTask(t, c, a.ID)
	waitForTask(t, c, b.ID)
}
