// Package atomicfile writes files that become visible atomically.
//
// A File accumulates writes at a temporary path next to the target.
// Commit syncs the data and renames the temporary file into place, so
// readers observe either no file or the complete file, never a partial
// one. A File that is closed without Commit leaves the temporary file
// behind; a later File for the same target truncates it.
package atomicfile

import (
	"fmt"
	"os"
)

// TempSuffix is appended to the target path to form the staging path.
const TempSuffix = ".tmp"

// File is an in-progress atomic write.
type File struct {
	f         *os.File
	path      string
	tmp       string
	committed bool
	closed    bool
}

// Create opens a staging file for the given target path, truncating any
// stale staging file left by an earlier failed attempt.
func Create(path string) (*File, error) {
	tmp := path + TempSuffix
	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("create staging file: %w", err)
	}
	return &File{f: f, path: path, tmp: tmp}, nil
}

// Write appends to the staging file.
func (a *File) Write(p []byte) (int, error) {
	return a.f.Write(p)
}

// Commit syncs the staging file and renames it to the target path.
// After a successful Commit the File is closed and further calls
// return nil.
func (a *File) Commit() error {
	if a.committed {
		return nil
	}
	if err := a.f.Sync(); err != nil {
		return fmt.Errorf("sync staging file: %w", err)
	}
	if err := a.f.Close(); err != nil {
		return fmt.Errorf("close staging file: %w", err)
	}
	a.closed = true
	if err := os.Rename(a.tmp, a.path); err != nil {
		return fmt.Errorf("publish %s: %w", a.path, err)
	}
	a.committed = true
	return nil
}

// Close releases the file handle without publishing. The staging file
// stays on disk. Close after Commit is a no-op.
func (a *File) Close() error {
	if a.closed {
		return nil
	}
	a.closed = true
	return a.f.Close()
}

// Path returns the target path the file will be published at.
func (a *File) Path() string {
	return a.path
}
