package database

import (
	"time"

	"footage-tracker/internal/mediatypes"
)

// FileRecord is one row of the ledger: a filesystem path observed under the
// watch root and its processing state.
//
// Only Processed and ProcessedAt ever change after insertion. Everything else
// is fixed at discovery time: size and created_at are snapshots of the
// filesystem metadata seen on first observation and are deliberately never
// refreshed, so they can drift from reality if the file changes on disk.
type FileRecord struct {
	ID              int64               `json:"id"`
	Path            string              `json:"path"`
	Filename        string              `json:"filename"`
	ParentDirectory string              `json:"parent_directory"`
	FileType        mediatypes.FileType `json:"file_type"`
	SizeBytes       int64               `json:"size_bytes"`
	CreatedAt       time.Time           `json:"created_at"`
	DiscoveredAt    time.Time           `json:"discovered_at"`
	Processed       bool                `json:"processed"`
	ProcessedAt     *time.Time          `json:"processed_at"`
	IsDirectory     bool                `json:"is_directory"`
}

// Stats summarizes the ledger. The counts come from independent aggregate
// queries with no shared snapshot, so they can be mutually inconsistent at
// the margins under concurrent writes.
type Stats struct {
	TotalFiles       int            `json:"total_files"`
	TotalDirectories int            `json:"total_directories"`
	ProcessedFiles   int            `json:"processed_files"`
	UnprocessedFiles int            `json:"unprocessed_files"`
	ByType           map[string]int `json:"by_type"`
	TotalSizeMB      float64        `json:"total_size_mb"`
}
