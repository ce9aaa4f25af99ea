// Package metrics defines the Prometheus metrics exported by the footage
// tracker and a background Collector that refreshes ledger gauges from the
// database.
//
// All metrics are registered via promauto at package init and served from the
// dedicated metrics listener. Counters are updated inline by the owning
// packages (database, ingest, watcher, scanner, processing); gauges that
// summarize the ledger are refreshed periodically by the Collector so that
// scrapes never trigger database queries of their own.
package metrics
