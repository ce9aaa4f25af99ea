// Package mediatypes provides the shared file-type classification used
// across the footage tracker.
//
// This package exists as a dependency-free foundation that can be imported by
// other packages without creating import cycles. It contains primitive types,
// constants, and pure functions with no external dependencies beyond the
// standard library.
//
// # Classification
//
// Use Classify to determine the type of a filesystem entry:
//
//	fileType := mediatypes.Classify(path, info.IsDir())
//
// Directories always classify as FileTypeDirectory. Files classify by
// case-insensitive extension:
//
//	mediatypes.FileTypeImage // .jpg, .jpeg
//	mediatypes.FileTypeVideo // .mp4, .blk
//	mediatypes.FileTypeOther // everything else
//
// Classification is extension-only by design: it happens once at discovery
// time, potentially for thousands of entries during an initial scan, and must
// not open files.
package mediatypes
