// Package organizer places matched files into the output directory.
package organizer

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"matchcopy/internal/scanner"
)

// CopyErrorType represents the type of copy error.
type CopyErrorType string

const (
	// PathNotFound indicates the source file or destination directory does not exist.
	PathNotFound CopyErrorType = "PATH_NOT_FOUND"
	// PermissionDenied indicates insufficient permissions for the operation.
	PermissionDenied CopyErrorType = "PERMISSION_DENIED"
	// CopyFailed covers any other I/O failure while copying.
	CopyFailed CopyErrorType = "COPY_FAILED"
)

// ErrSameFile is returned when the destination already is the source file,
// through a symlink or a hard link.
var ErrSameFile = errors.New("destination is the source file")

// CopyError represents an error that occurred while creating a directory or copying a file.
type CopyError struct {
	Type CopyErrorType
	Path string
	Err  error
}

func (e *CopyError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Type, e.Path, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Path)
}

func (e *CopyError) Unwrap() error {
	return e.Err
}

// IsPermission reports whether err is a CopyError of type PermissionDenied.
func IsPermission(err error) bool {
	var copyErr *CopyError
	return errors.As(err, &copyErr) && copyErr.Type == PermissionDenied
}

// CopyResult describes one completed copy.
type CopyResult struct {
	SourcePath      string
	DestinationPath string
	Bytes           int64
	Overwrote       bool // True if a file already existed at the destination
}

// EnsureDir creates dir and any missing parents.
func EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return wrap(dir, err)
	}
	return nil
}

// Place copies file into outputDir under its own name, overwriting any
// existing file of that name.
func Place(file scanner.FileEntry, outputDir string) (*CopyResult, error) {
	destPath := filepath.Join(outputDir, file.Name)
	overwrote := FileExists(destPath)

	n, err := CopyFile(file.FullPath, destPath)
	if err != nil {
		return nil, err
	}

	return &CopyResult{
		SourcePath:      file.FullPath,
		DestinationPath: destPath,
		Bytes:           n,
		Overwrote:       overwrote,
	}, nil
}

// CopyFile copies src to dst, then gives dst the permission bits and
// modification time of src. The access time is set to the same instant.
// An existing dst is truncated and rewritten.
func CopyFile(src, dst string) (int64, error) {
	in, err := os.Open(src)
	if err != nil {
		return 0, wrap(src, err)
	}
	defer in.Close()

	srcInfo, err := in.Stat()
	if err != nil {
		return 0, wrap(src, err)
	}
	if srcInfo.IsDir() {
		return 0, &CopyError{Type: CopyFailed, Path: src, Err: errors.New("source is a directory")}
	}
	// Truncating a dst that links back to src would empty the source.
	if dstInfo, err := os.Stat(dst); err == nil && os.SameFile(srcInfo, dstInfo) {
		return 0, &CopyError{Type: CopyFailed, Path: dst, Err: ErrSameFile}
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, srcInfo.Mode().Perm())
	if err != nil {
		return 0, wrap(dst, err)
	}

	n, err := io.Copy(out, in)
	if err != nil {
		out.Close()
		return n, wrap(dst, err)
	}
	if err := out.Close(); err != nil {
		return n, wrap(dst, err)
	}

	// OpenFile only applies the mode on creation
	if err := os.Chmod(dst, srcInfo.Mode().Perm()); err != nil {
		return n, wrap(dst, err)
	}

	mtime := srcInfo.ModTime()
	if err := os.Chtimes(dst, mtime, mtime); err != nil {
		return n, wrap(dst, err)
	}

	return n, nil
}

// FileExists checks if a file exists at the given path.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func wrap(path string, err error) error {
	switch {
	case errors.Is(err, os.ErrNotExist):
		return &CopyError{Type: PathNotFound, Path: path, Err: err}
	case errors.Is(err, os.ErrPermission):
		return &CopyError{Type: PermissionDenied, Path: path, Err: err}
	default:
		return &CopyError{Type: CopyFailed, Path: path, Err: err}
	}
}
