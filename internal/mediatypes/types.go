package mediatypes

import (
	"path/filepath"
	"strings"
)

// FileType categorizes a tracked filesystem entry.
type FileType string

const (
	// FileTypeImage represents an image file.
	FileTypeImage FileType = "image"
	// FileTypeVideo represents a video file.
	FileTypeVideo FileType = "video"
	// FileTypeOther represents a file with an unrecognized extension.
	FileTypeOther FileType = "other"
	// FileTypeDirectory represents a directory.
	FileTypeDirectory FileType = "directory"
)

// ImageExtensions maps file extensions to whether they classify as images.
var ImageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
}

// VideoExtensions maps file extensions to whether they classify as videos.
// .blk is the proprietary container produced by the capture rigs.
var VideoExtensions = map[string]bool{
	".mp4": true,
	".blk": true,
}

// Classify returns the FileType for a filesystem entry. Directories always
// classify as FileTypeDirectory regardless of name. Files are classified by
// case-insensitive extension only; content is never inspected, and the type
// is fixed at discovery time.
func Classify(path string, isDir bool) FileType {
	if isDir {
		return FileTypeDirectory
	}
	return GetFileType(strings.ToLower(filepath.Ext(path)))
}

// GetFileType returns the FileType for a file extension. The extension must
// be lowercase and include the leading dot (e.g., ".jpg"). Returns
// FileTypeOther if the extension is not recognized.
func GetFileType(ext string) FileType {
	if ImageExtensions[ext] {
		return FileTypeImage
	}
	if VideoExtensions[ext] {
		return FileTypeVideo
	}
	return FileTypeOther
}

// Valid reports whether t is one of the known file types. Used to validate
// the file_type query parameter before it reaches the database.
func (t FileType) Valid() bool {
	switch t {
	case FileTypeImage, FileTypeVideo, FileTypeOther, FileTypeDirectory:
		return true
	}
	return false
}
