// Package database provides the SQLite-backed ledger of discovered
// filesystem paths and their processing state.
//
// The schema is applied through explicit, versioned migrations before any
// other component starts. The database uses WAL mode so the watcher, the
// initial scanner, and request handlers can write concurrently; every
// operation is a single statement committing independently.
package database
