// Package fsys provides the file system abstraction used for task
// documents, archive files and link search.
//
// The FS interface allows swapping the OS file system for an in-memory one
// in tests.
package fsys

import (
	"io/fs"
	"time"
)

// FS is the set of file operations the task engine needs.
type FS interface {
	// ReadFile reads the entire file content.
	ReadFile(path string) ([]byte, error)

	// WriteFile writes data to a file, creating it if necessary.
	WriteFile(path string, data []byte, perm fs.FileMode) error

	// AppendFile appends data to a file, creating it if necessary.
	AppendFile(path string, data []byte) error

	// MkdirAll creates a directory and all parent directories.
	MkdirAll(path string, perm fs.FileMode) error

	// Stat returns file information.
	Stat(path string) (FileInfo, error)

	// Abs returns the absolute path.
	Abs(path string) (string, error)

	// WalkDir walks the file tree rooted at root in lexical order.
	WalkDir(root string, fn WalkDirFunc) error
}

// FileInfo describes a file or directory.
type FileInfo struct {
	path    string
	name    string
	size    int64
	mode    fs.FileMode
	modTime time.Time
}

// NewFileInfo creates a FileInfo from the given parameters.
func NewFileInfo(path, name string, size int64, mode fs.FileMode, modTime time.Time) FileInfo {
	return FileInfo{path: path, name: name, size: size, mode: mode, modTime: modTime}
}

// Path returns the full path.
func (fi FileInfo) Path() string { return fi.path }

// Name returns the base name.
func (fi FileInfo) Name() string { return fi.name }

// Size returns the file size in bytes.
func (fi FileInfo) Size() int64 { return fi.size }

// Mode returns the file mode.
func (fi FileInfo) Mode() fs.FileMode { return fi.mode }

// ModTime returns the modification time.
func (fi FileInfo) ModTime() time.Time { return fi.modTime }

// IsDir returns true if this is a directory.
func (fi FileInfo) IsDir() bool { return fi.mode.IsDir() }

// IsRegular returns true if this is a regular file.
func (fi FileInfo) IsRegular() bool { return fi.mode.IsRegular() }

// WalkDirFunc is the type of function called by WalkDir. Returning SkipDir
// from a directory skips its contents; SkipAll stops the walk.
type WalkDirFunc func(path string, info FileInfo, err error) error

// SkipDir is used as a return value from WalkDirFunc to indicate that
// the directory named in the call should be skipped.
var SkipDir = fs.SkipDir

// SkipAll is used as a return value from WalkDirFunc to indicate that
// all remaining files and directories should be skipped.
var SkipAll = fs.SkipAll
