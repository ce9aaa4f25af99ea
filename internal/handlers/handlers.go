package handlers

import (
	"footage-tracker/internal/database"
	"footage-tracker/internal/processing"
	"footage-tracker/internal/scanner"
	"footage-tracker/internal/startup"
	"footage-tracker/internal/watcher"
)

// Default limits, applied when the caller supplies none.
const (
	defaultListLimit = 100
	defaultBatchSize = 10
)

type Handlers struct {
	db       *database.Database
	coord    *processing.Coordinator
	scanner  *scanner.Scanner
	watcher  *watcher.Watcher
	watchDir string
	dbPath   string
}

func New(db *database.Database, coord *processing.Coordinator, scn *scanner.Scanner, w *watcher.Watcher, config *startup.Config) *Handlers {
	return &Handlers{
		db:       db,
		coord:    coord,
		scanner:  scn,
		watcher:  w,
		watchDir: config.WatchDir,
		dbPath:   config.DatabasePath,
	}
}
