// Package processing implements the one-way Discovered -> Processed state
// transitions over the ledger, including the background simulated-processing
// runs with their queryable task handles.
package processing
