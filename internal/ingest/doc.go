// Package ingest converts observed filesystem paths into ledger records.
//
// Both the filesystem watcher and the initial scanner feed the same Ingestor,
// which is why ingestion must be idempotent: the insert is keyed on the
// absolute path with insert-if-absent semantics, so repeated or overlapping
// observations of the same path produce exactly one record.
package ingest
