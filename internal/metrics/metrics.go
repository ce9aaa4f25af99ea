package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "footage_tracker_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "footage_tracker_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "footage_tracker_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)
)

// Database metrics
var (
	DBQueryTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "footage_tracker_db_queries_total",
			Help: "Total number of database queries",
		},
		[]string{"operation", "status"},
	)

	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "footage_tracker_db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"operation"},
	)

	DBConnectionsOpen = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "footage_tracker_db_connections_open",
			Help: "Number of open database connections",
		},
	)

	DBSizeBytes = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "footage_tracker_db_size_bytes",
			Help: "Size of SQLite database files in bytes",
		},
		[]string{"file"}, // "main", "wal", "shm"
	)
)

// Ingestion metrics
var (
	IngestRecordsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "footage_tracker_ingest_records_total",
			Help: "Total number of new file records created by ingestion",
		},
	)

	IngestDuplicatesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "footage_tracker_ingest_duplicates_total",
			Help: "Total number of ingestion attempts skipped because the path was already tracked",
		},
	)

	IngestErrorsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "footage_tracker_ingest_errors_total",
			Help: "Total number of ingestion attempts dropped due to metadata or store errors",
		},
	)
)

// Watcher metrics
var (
	WatcherEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "footage_tracker_watcher_events_total",
			Help: "Total number of filesystem events received, by operation",
		},
		[]string{"op"},
	)

	WatcherErrorsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "footage_tracker_watcher_errors_total",
			Help: "Total number of errors reported by the filesystem watcher",
		},
	)

	WatcherDirsWatched = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "footage_tracker_watcher_directories_watched",
			Help: "Number of directories currently subscribed for change notifications",
		},
	)
)

// Scanner metrics
var (
	ScannerRunsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "footage_tracker_scanner_runs_total",
			Help: "Total number of initial scans performed",
		},
	)

	ScannerEntriesVisited = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "footage_tracker_scanner_entries_visited_total",
			Help: "Total number of filesystem entries visited by initial scans",
		},
	)

	ScannerLastRunDuration = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "footage_tracker_scanner_last_run_duration_seconds",
			Help: "Duration of the last initial scan in seconds",
		},
	)
)

// Processing metrics
var (
	ProcessingMarksTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "footage_tracker_processing_marks_total",
			Help: "Total number of records transitioned to processed",
		},
	)

	ProcessingSimulationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "footage_tracker_processing_simulations_total",
			Help: "Total number of simulated processing runs started",
		},
	)

	ProcessingSimulationsRunning = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "footage_tracker_processing_simulations_running",
			Help: "Number of simulated processing runs currently in progress",
		},
	)
)

// Ledger gauges, updated by the Collector
var (
	TrackedFilesTotal = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "footage_tracker_tracked_files",
			Help: "Number of tracked files by type",
		},
		[]string{"type"},
	)

	TrackedDirectoriesTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "footage_tracker_tracked_directories",
			Help: "Number of tracked directories",
		},
	)

	ProcessedFilesTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "footage_tracker_processed_files",
			Help: "Number of tracked files marked processed",
		},
	)

	UnprocessedFilesTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "footage_tracker_unprocessed_files",
			Help: "Number of tracked files awaiting processing",
		},
	)

	TrackedSizeBytes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "footage_tracker_tracked_size_bytes",
			Help: "Total size of tracked files in bytes at discovery time",
		},
	)
)
