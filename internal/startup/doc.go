// Package startup handles application initialization, configuration loading,
// and structured startup/shutdown logging.
//
// Configuration is read from environment variables:
//   - WATCH_DIR: Directory to watch for new footage
//   - DATABASE_DIR: Directory for the SQLite database
//   - PORT: HTTP API port
//   - METRICS_PORT: Prometheus metrics port
//   - METRICS_ENABLED: Whether to expose metrics
//   - SCAN_ON_STARTUP: Run an initial scan before serving
//   - COLLECT_INTERVAL: Ledger gauge collection interval
//   - LOG_HEALTH_CHECKS: Whether to log health check requests
//
// Build-time variables (set via -ldflags):
//   - Version: Application version
//   - Commit: Git commit hash
//   - BuildTime: Build timestamp
//   - GoVersion: Go compiler version
package startup
