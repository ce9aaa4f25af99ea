// Package handlers contains the HTTP handlers for the footage tracker API:
//
//   - Ledger queries (stats, unprocessed queue, search)
//   - Processing state transitions (single, batch, simulated background runs)
//   - On-demand initial scans of the watch directory
//   - Health checks and build information
package handlers
