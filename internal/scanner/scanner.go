package scanner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"footage-tracker/internal/ingest"
	"footage-tracker/internal/logging"
	"footage-tracker/internal/metrics"
)

// Scanner walks an existing directory tree and feeds every entry to the
// Ingestor. It is used to populate the ledger with files that predate the
// watcher subscription.
type Scanner struct {
	ing *ingest.Ingestor
}

// New creates a Scanner feeding ing.
func New(ing *ingest.Ingestor) *Scanner {
	return &Scanner{ing: ing}
}

// Scan performs a depth-first traversal of root, ingesting every file and
// directory encountered, and returns the total count of entries visited.
// The counter is not deduplicated: re-visits of already-tracked paths count
// too, since ingestion itself is idempotent.
//
// Unreadable subtrees are logged and skipped; the scan continues with
// siblings rather than aborting. An error is returned only when root itself
// cannot be read.
//
// The traversal uses an explicit work stack instead of call recursion so that
// pathologically deep trees cannot exhaust goroutine stack space.
func (s *Scanner) Scan(ctx context.Context, root string) (int, error) {
	info, err := os.Stat(root)
	if err != nil {
		return 0, fmt.Errorf("cannot read scan root %s: %w", root, err)
	}
	if !info.IsDir() {
		return 0, fmt.Errorf("scan root %s is not a directory", root)
	}

	start := time.Now()
	logging.Info("Starting scan of %s", root)

	visited := 0
	stack := []string{root}

	for len(stack) > 0 {
		select {
		case <-ctx.Done():
			return visited, ctx.Err()
		default:
		}

		dir := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		entries, err := os.ReadDir(dir)
		if err != nil {
			// Typically permission denial; siblings carry on
			logging.Warn("Scan: skipping unreadable directory %s: %v", dir, err)
			continue
		}

		for _, entry := range entries {
			path := filepath.Join(dir, entry.Name())
			s.ing.Ingest(ctx, path)
			visited++

			if entry.IsDir() {
				stack = append(stack, path)
			}
		}
	}

	duration := time.Since(start)
	logging.Info("Scan complete: %d entries visited in %v", visited, duration)

	metrics.ScannerRunsTotal.Inc()
	metrics.ScannerEntriesVisited.Add(float64(visited))
	metrics.ScannerLastRunDuration.Set(duration.Seconds())

	return visited, nil
}
