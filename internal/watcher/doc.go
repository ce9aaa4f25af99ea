// Package watcher subscribes to filesystem change notifications under the
// watch root and feeds them to the ingestion pipeline.
//
// fsnotify does not watch new directories automatically, so the watcher adds
// a subscription for every directory it discovers, both at startup and when
// a Create event reveals a new subtree. Each event results in its own
// self-contained ledger write with immediate commit; a burst of duplicate
// events is harmless because ingestion is idempotent.
package watcher
