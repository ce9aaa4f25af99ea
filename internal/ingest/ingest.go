package ingest

import (
	"context"
	"os"
	"path/filepath"

	"footage-tracker/internal/database"
	"footage-tracker/internal/logging"
	"footage-tracker/internal/mediatypes"
	"footage-tracker/internal/metrics"
)

// Ingestor turns observed filesystem paths into ledger writes.
type Ingestor struct {
	db *database.Database
}

// New creates an Ingestor writing to db.
func New(db *database.Database) *Ingestor {
	return &Ingestor{db: db}
}

// Ingest records the entry at path, idempotently. It reads filesystem
// metadata, classifies the entry, and inserts a record keyed on the absolute
// path; if the path is already tracked nothing is refreshed. Returns whether
// a new record was created.
//
// Ingestion is best-effort: metadata read failures (permission denial, the
// path vanishing between event and stat) and store write failures are logged
// and dropped, never propagated. Duplicate and repeated events are therefore
// always safe, at the cost of staleness — a record's size and timestamps can
// drift from reality after the file changes on disk.
func (i *Ingestor) Ingest(ctx context.Context, path string) bool {
	absPath, err := filepath.Abs(path)
	if err != nil {
		logging.Warn("Ingest: cannot resolve %s: %v", path, err)
		metrics.IngestErrorsTotal.Inc()
		return false
	}

	info, err := os.Stat(absPath)
	if err != nil {
		logging.Warn("Ingest: cannot stat %s: %v", absPath, err)
		metrics.IngestErrorsTotal.Inc()
		return false
	}

	isDir := info.IsDir()
	var sizeBytes int64
	if !isDir {
		sizeBytes = info.Size()
	}

	rec := &database.FileRecord{
		Path:            absPath,
		Filename:        filepath.Base(absPath),
		ParentDirectory: filepath.Dir(absPath),
		FileType:        mediatypes.Classify(absPath, isDir),
		SizeBytes:       sizeBytes,
		CreatedAt:       info.ModTime(),
		IsDirectory:     isDir,
	}

	inserted, err := i.db.InsertFileRecord(ctx, rec)
	if err != nil {
		logging.Error("Ingest: store write failed for %s: %v", absPath, err)
		metrics.IngestErrorsTotal.Inc()
		return false
	}

	if !inserted {
		logging.Debug("Ingest: already tracked: %s", absPath)
		metrics.IngestDuplicatesTotal.Inc()
		return false
	}

	logging.Debug("Tracked: %s (type: %s)", absPath, rec.FileType)
	metrics.IngestRecordsTotal.Inc()
	return true
}
