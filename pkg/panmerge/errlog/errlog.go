// Package errlog records per-genome failures as an append-only log of
// JSON lines. The log is diagnostic output for operators deciding which
// genomes to fix before the next run; nothing in the pipeline reads it
// back.
package errlog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Entry is one recorded failure.
type Entry struct {
	Sample string    `json:"sample"`
	Source string    `json:"source"`
	Error  string    `json:"error"`
	Time   time.Time `json:"time"`
}

// Log appends failure entries to a file, creating the file and its
// parent directories on first use.
type Log struct {
	mu   sync.Mutex
	path string
}

// New creates a Log writing to path. The file is not created until the
// first Append.
func New(path string) *Log {
	return &Log{path: path}
}

// Append records one failure. Each entry is written as a single JSON
// line and synced, so entries survive a crash immediately after the
// call. Failures are rare enough that the per-call open is not worth
// optimizing away.
func (l *Log) Append(sample, source string, cause error) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if dir := filepath.Dir(l.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create error log directory: %w", err)
		}
	}

	f, err := os.OpenFile(l.path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open error log: %w", err)
	}
	defer f.Close()

	line, err := json.Marshal(Entry{
		Sample: sample,
		Source: source,
		Error:  cause.Error(),
		Time:   time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("encode error log entry: %w", err)
	}

	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("append error log entry: %w", err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("sync error log: %w", err)
	}
	return nil
}

// Path returns the location of the log file.
func (l *Log) Path() string {
	return l.path
}
