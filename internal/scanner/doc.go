// Package scanner implements the initial recursive scan of the watch root.
package scanner
