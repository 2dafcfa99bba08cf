package checkpoint

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"sync"
)

// FileStore persists the completed set as a plain text file, one sample
// name per line, appended as samples finish. The format is deliberately
// trivial so operators can inspect or edit progress with standard
// tools.
type FileStore struct {
	mu     sync.Mutex
	path   string
	f      *os.File // opened lazily on first Append
	closed bool
}

// NewFileStore creates a file-backed store at path. The file is not
// created until the first Append.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load implements Store. A missing file yields an empty set. Blank
// lines are ignored so a hand-edited file stays loadable.
func (s *FileStore) Load() (map[string]struct{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	done := make(map[string]struct{})

	f, err := os.Open(s.path)
	if os.IsNotExist(err) {
		return done, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open checkpoint file: %w", err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		name := strings.TrimSpace(sc.Text())
		if name == "" {
			continue
		}
		done[name] = struct{}{}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read checkpoint file: %w", err)
	}

	return done, nil
}

// Append implements Store. The entry is flushed to stable storage
// before Append returns, so a crash immediately afterwards cannot lose
// the completion record.
func (s *FileStore) Append(sample string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	if s.f == nil {
		f, err := os.OpenFile(s.path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open checkpoint file: %w", err)
		}
		s.f = f
	}

	if _, err := s.f.WriteString(sample + "\n"); err != nil {
		return fmt.Errorf("append checkpoint entry: %w", err)
	}
	if err := s.f.Sync(); err != nil {
		return fmt.Errorf("sync checkpoint file: %w", err)
	}
	return nil
}

// Reset implements Store. It removes the checkpoint file; a missing
// file is not an error.
func (s *FileStore) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	if s.f != nil {
		if err := s.f.Close(); err != nil {
			return fmt.Errorf("close checkpoint file: %w", err)
		}
		s.f = nil
	}

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove checkpoint file: %w", err)
	}
	return nil
}

// Close implements Store.
func (s *FileStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	if s.f != nil {
		f := s.f
		s.f = nil
		return f.Close()
	}
	return nil
}

// Path returns the location of the backing file.
func (s *FileStore) Path() string {
	return s.path
}
