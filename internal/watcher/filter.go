package watcher

import (
	"path/filepath"
	"strings"
)

// DefaultIgnorePatterns returns the default patterns for temporary files to ignore.
func DefaultIgnorePatterns() []string {
	return []string{
		"*.tmp",
		"*.part",
		"*.partial",
		"*.crdownload", // Chrome partial downloads
		".~*",          // Hidden temp files (e.g., .~lock)
		".#*",          // Editor lock files
	}
}

// FileFilter decides which changed paths can affect an alignment run.
type FileFilter struct {
	extension string
	patterns  []string
}

// NewFileFilter creates a FileFilter for names ending in extension.
// A nil patterns slice selects DefaultIgnorePatterns; an empty one ignores nothing.
func NewFileFilter(extension string, patterns []string) *FileFilter {
	if patterns == nil {
		patterns = DefaultIgnorePatterns()
	}
	return &FileFilter{
		extension: extension,
		patterns:  patterns,
	}
}

// Relevant reports whether a change to path should trigger a re-run.
func (f *FileFilter) Relevant(path string) bool {
	filename := filepath.Base(path)
	if !strings.HasSuffix(filename, f.extension) {
		return false
	}
	return !f.ShouldIgnore(path)
}

// ShouldIgnore checks if a file path matches any of the ignore patterns.
// It matches against the filename (base name) only.
func (f *FileFilter) ShouldIgnore(path string) bool {
	filename := filepath.Base(path)

	for _, pattern := range f.patterns {
		if matched, err := filepath.Match(pattern, filename); err == nil && matched {
			return true
		}
	}
	return false
}

// GetPatterns returns the current ignore patterns.
func (f *FileFilter) GetPatterns() []string {
	result := make([]string, len(f.patterns))
	copy(result, f.patterns)
	return result
}

// Extension returns the name ending a relevant file must have.
func (f *FileFilter) Extension() string {
	return f.extension
}
