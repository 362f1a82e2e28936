// Package scanner handles directory listing for matchcopy.
package scanner

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ScanErrorType represents the type of scanning error.
type ScanErrorType string

const (
	// DirectoryNotFound indicates the directory does not exist or is not a directory.
	DirectoryNotFound ScanErrorType = "DIRECTORY_NOT_FOUND"
	// PermissionDenied indicates insufficient permissions to read the directory.
	PermissionDenied ScanErrorType = "PERMISSION_DENIED"
	// SymlinkError indicates a symlink was encountered with "error" policy.
	SymlinkError ScanErrorType = "SYMLINK_ERROR"
)

// Symlink policy constants
const (
	SymlinkPolicyFollow = "follow"
	SymlinkPolicySkip   = "skip"
	SymlinkPolicyError  = "error"
)

// ScanError represents an error that occurred during directory scanning.
type ScanError struct {
	Type ScanErrorType
	Path string
	Err  error
}

func (e *ScanError) Error() string {
	if e.Err != nil {
		return string(e.Type) + ": " + e.Path + " (" + e.Err.Error() + ")"
	}
	return string(e.Type) + ": " + e.Path
}

func (e *ScanError) Unwrap() error {
	return e.Err
}

// IsNotFound reports whether err is a ScanError of type DirectoryNotFound.
func IsNotFound(err error) bool {
	var scanErr *ScanError
	return errors.As(err, &scanErr) && scanErr.Type == DirectoryNotFound
}

// IsPermission reports whether err is a ScanError of type PermissionDenied.
func IsPermission(err error) bool {
	var scanErr *ScanError
	return errors.As(err, &scanErr) && scanErr.Type == PermissionDenied
}

// ScanOptions configures scanning behavior.
type ScanOptions struct {
	Extension     string // Keep only names ending in this string (case-sensitive, "" keeps all)
	SymlinkPolicy string // "follow", "skip", or "error"
}

// DefaultScanOptions returns the default scan options.
// Symlinks are followed, matching a plain directory listing.
func DefaultScanOptions() ScanOptions {
	return ScanOptions{
		SymlinkPolicy: SymlinkPolicyFollow,
	}
}

// FileEntry represents a file found during scanning.
type FileEntry struct {
	Name     string // Filename only
	FullPath string // Absolute path
}

// Scan lists the files directly inside directory, sorted by name.
// This is a convenience wrapper around ScanWithOptions with default options.
func Scan(directory string) ([]FileEntry, error) {
	return ScanWithOptions(directory, DefaultScanOptions())
}

// ScanWithOptions lists the files directly inside directory, sorted by name.
// Subdirectories are never returned and never descended into.
func ScanWithOptions(directory string, opts ScanOptions) ([]FileEntry, error) {
	info, err := os.Stat(directory)
	if err != nil {
		return nil, classify(directory, err)
	}

	if !info.IsDir() {
		return nil, &ScanError{
			Type: DirectoryNotFound,
			Path: directory,
			Err:  errors.New("path is not a directory"),
		}
	}

	entries, err := os.ReadDir(directory)
	if err != nil {
		return nil, classify(directory, err)
	}

	files := make([]FileEntry, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasSuffix(name, opts.Extension) {
			continue
		}

		fullPath := filepath.Join(directory, name)
		absPath, err := filepath.Abs(fullPath)
		if err != nil {
			absPath = fullPath
		}

		info, err := os.Lstat(fullPath)
		if err != nil {
			continue // Entry vanished between ReadDir and Lstat
		}

		if info.Mode()&os.ModeSymlink != 0 {
			switch opts.SymlinkPolicy {
			case SymlinkPolicyError:
				return nil, &ScanError{
					Type: SymlinkError,
					Path: fullPath,
					Err:  errors.New("symlink encountered with error policy"),
				}
			case SymlinkPolicySkip:
				continue
			default:
				info, err = os.Stat(fullPath)
				if err != nil {
					continue // Broken symlink
				}
			}
		}

		if info.IsDir() {
			continue
		}

		files = append(files, FileEntry{
			Name:     name,
			FullPath: absPath,
		})
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].Name < files[j].Name
	})

	return files, nil
}

// Names returns the Name of every entry, preserving order.
func Names(entries []FileEntry) []string {
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name
	}
	return names
}

func classify(directory string, err error) error {
	if errors.Is(err, os.ErrNotExist) {
		return &ScanError{Type: DirectoryNotFound, Path: directory, Err: err}
	}
	if errors.Is(err, os.ErrPermission) {
		return &ScanError{Type: PermissionDenied, Path: directory, Err: err}
	}
	return err
}
