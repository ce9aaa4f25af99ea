package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"footage-tracker/internal/database"
	"footage-tracker/internal/handlers"
	"footage-tracker/internal/ingest"
	"footage-tracker/internal/logging"
	"footage-tracker/internal/metrics"
	"footage-tracker/internal/middleware"
	"footage-tracker/internal/processing"
	"footage-tracker/internal/scanner"
	"footage-tracker/internal/startup"
	"footage-tracker/internal/watcher"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	startTime := time.Now()

	// Load configuration
	config, err := startup.LoadConfig()
	if err != nil {
		startup.LogFatal("Configuration error: %v", err)
	}

	// Initialize database
	dbStart := time.Now()
	db, err := database.New(context.Background(), config.DatabasePath)
	if err != nil {
		startup.LogFatal("Failed to initialize database: %v", err)
	}
	defer db.Close()
	startup.LogDatabaseInit(time.Since(dbStart))

	// Initialize ingestion pipeline
	ing := ingest.New(db)
	scn := scanner.New(ing)
	coord := processing.New(db)

	// Optional scan before the watcher attaches, so a pre-populated watch
	// directory is tracked even if no events ever fire for it
	if config.ScanOnStartup {
		scanStart := time.Now()
		added, err := scn.Scan(context.Background(), config.WatchDir)
		if err != nil {
			logging.Warn("Startup scan failed: %v", err)
		} else {
			startup.LogInitialScan(added, time.Since(scanStart))
		}
	}

	// Initialize filesystem watcher
	startup.LogWatcherInit(config.WatchDir)
	w, err := watcher.New(ing)
	if err != nil {
		startup.LogFatal("Failed to initialize watcher: %v", err)
	}

	watchCtx, watchCancel := context.WithCancel(context.Background())
	defer watchCancel()

	// Start watcher in background (non-blocking)
	go func() {
		if err := w.Start(watchCtx, config.WatchDir); err != nil {
			logging.Error("Watcher stopped with error: %v", err)
		}
	}()
	startup.LogWatcherStarted()

	// Periodic ledger gauge collection
	var collector *metrics.Collector
	if config.MetricsEnabled {
		collector = metrics.NewCollector(db, config.DatabasePath, config.CollectInterval)
		collector.Start()
	}

	// Initialize handlers
	h := handlers.New(db, coord, scn, w, config)

	// Setup router
	router := setupRouter(h)

	// Log routes dynamically
	startup.LogHTTPRoutes(router, config.LogHealthChecks)

	// Apply metrics middleware
	var handler http.Handler = router
	if config.MetricsEnabled {
		handler = middleware.Metrics(middleware.DefaultMetricsConfig())(handler)
	}

	// Apply logging middleware
	loggingConfig := middleware.DefaultLoggingConfig()
	loggingConfig.LogHealthChecks = config.LogHealthChecks
	handler = middleware.Logger(loggingConfig)(handler)

	// Create server
	srv := &http.Server{
		Addr:         ":" + config.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Separate metrics server so the scrape endpoint never competes with
	// API traffic
	var metricsSrv *http.Server
	if config.MetricsEnabled {
		metricsMux := http.NewServeMux()
		metricsMux.Handle("/metrics", promhttp.Handler())
		metricsSrv = &http.Server{
			Addr:        ":" + config.MetricsPort,
			Handler:     metricsMux,
			ReadTimeout: 15 * time.Second,
		}
		go func() {
			if err := metricsSrv.ListenAndServe(); err != http.ErrServerClosed {
				logging.Error("Metrics server error: %v", err)
			}
		}()
	}

	// Start graceful shutdown handler
	go handleShutdown(srv, metricsSrv, w, collector, watchCancel)

	// Start server
	startup.LogServerStarted(startup.ServerConfig{
		Port:            config.Port,
		MetricsPort:     config.MetricsPort,
		MetricsEnabled:  config.MetricsEnabled,
		StartupDuration: time.Since(startTime),
	})
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		startup.LogFatal("Server error: %v", err)
	}
}

func setupRouter(h *handlers.Handlers) *mux.Router {
	r := mux.NewRouter()

	// Health check and version routes
	r.HandleFunc("/health", h.HealthCheck).Methods("GET")
	r.HandleFunc("/healthz", h.HealthCheck).Methods("GET")
	r.HandleFunc("/livez", h.LivenessCheck).Methods("GET", "HEAD")
	r.HandleFunc("/readyz", h.ReadinessCheck).Methods("GET")
	r.HandleFunc("/version", h.GetVersion).Methods("GET")

	// Ledger queries
	r.HandleFunc("/", h.Root).Methods("GET")
	r.HandleFunc("/stats", h.GetStats).Methods("GET")
	r.HandleFunc("/files/unprocessed", h.GetUnprocessedFiles).Methods("GET")
	r.HandleFunc("/files/search", h.SearchFiles).Methods("GET")

	// Processing state transitions. The {id} route is constrained to digits
	// so it cannot shadow /process/batch or /process/simulate.
	r.HandleFunc("/process/batch", h.MarkProcessedBatch).Methods("POST")
	r.HandleFunc("/process/simulate", h.SimulateProcessing).Methods("POST")
	r.HandleFunc("/process/simulate/{id:[0-9]+}", h.GetSimulationStatus).Methods("GET")
	r.HandleFunc("/process/{id:[0-9]+}", h.MarkProcessed).Methods("POST")

	// Scans
	r.HandleFunc("/scan/initial", h.InitialScan).Methods("POST")

	return r
}

func handleShutdown(srv, metricsSrv *http.Server, w *watcher.Watcher, collector *metrics.Collector, watchCancel context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan

	startup.LogShutdownInitiated(sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	startup.LogShutdownStep("Stopping watcher")
	watchCancel()
	w.Stop()
	startup.LogShutdownStepComplete("Watcher stopped")

	if collector != nil {
		startup.LogShutdownStep("Stopping metrics collector")
		collector.Stop()
		startup.LogShutdownStepComplete("Metrics collector stopped")
	}

	if metricsSrv != nil {
		startup.LogShutdownStep("Shutting down metrics server")
		if err := metricsSrv.Shutdown(ctx); err != nil {
			logging.Warn("Metrics server shutdown error: %v", err)
		} else {
			startup.LogShutdownStepComplete("Metrics server stopped")
		}
	}

	startup.LogShutdownStep("Shutting down HTTP server")
	if err := srv.Shutdown(ctx); err != nil {
		logging.Warn("Server shutdown error: %v", err)
	} else {
		startup.LogShutdownStepComplete("HTTP server stopped")
	}

	startup.LogShutdownComplete()
}
