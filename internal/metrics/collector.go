package metrics

import (
	"os"
	"time"

	"footage-tracker/internal/logging"
)

// StatsProvider supplies ledger statistics for the collector. Implemented by
// the database package; declared here to avoid an import cycle.
type StatsProvider interface {
	CollectorStats() Stats
}

// Stats holds the ledger counts exported as gauges.
type Stats struct {
	TotalFiles       int
	TotalDirectories int
	ProcessedFiles   int
	UnprocessedFiles int
	ByType           map[string]int
	TotalSizeBytes   int64
}

// Collector periodically refreshes the ledger and database-size gauges.
type Collector struct {
	statsProvider StatsProvider
	dbPath        string
	interval      time.Duration
	stopChan      chan struct{}
}

// NewCollector creates a new metrics collector. dbPath is the SQLite main
// database file; its WAL and SHM siblings are sized alongside it.
func NewCollector(provider StatsProvider, dbPath string, interval time.Duration) *Collector {
	return &Collector{
		statsProvider: provider,
		dbPath:        dbPath,
		interval:      interval,
		stopChan:      make(chan struct{}),
	}
}

// Start begins the metrics collection loop
func (c *Collector) Start() {
	go c.collectLoop()
}

// Stop stops the metrics collection
func (c *Collector) Stop() {
	close(c.stopChan)
}

func (c *Collector) collectLoop() {
	// Collect immediately on start
	c.collect()

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.collect()
		case <-c.stopChan:
			return
		}
	}
}

func (c *Collector) collect() {
	if c.statsProvider != nil {
		stats := c.statsProvider.CollectorStats()

		for fileType, count := range stats.ByType {
			TrackedFilesTotal.WithLabelValues(fileType).Set(float64(count))
		}
		TrackedDirectoriesTotal.Set(float64(stats.TotalDirectories))
		ProcessedFilesTotal.Set(float64(stats.ProcessedFiles))
		UnprocessedFilesTotal.Set(float64(stats.UnprocessedFiles))
		TrackedSizeBytes.Set(float64(stats.TotalSizeBytes))

		logging.Debug("Metrics collected: files=%d, directories=%d, processed=%d, unprocessed=%d",
			stats.TotalFiles, stats.TotalDirectories, stats.ProcessedFiles, stats.UnprocessedFiles)
	}

	c.collectDBSizes()
}

// collectDBSizes updates the database file size gauges.
func (c *Collector) collectDBSizes() {
	if c.dbPath == "" {
		return
	}

	files := map[string]string{
		"main": c.dbPath,
		"wal":  c.dbPath + "-wal",
		"shm":  c.dbPath + "-shm",
	}

	for label, path := range files {
		info, err := os.Stat(path)
		if err != nil {
			// WAL/SHM may not exist yet
			DBSizeBytes.WithLabelValues(label).Set(0)
			continue
		}
		DBSizeBytes.WithLabelValues(label).Set(float64(info.Size()))
	}
}
