package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// SaveDebounce is how long a snapshot waits after the last mutation before
// writing, so a burst of mutations produces a single write.
const SaveDebounce = 2 * time.Second

// Snapshot mirrors one in-memory store to a JSON file. Writes go to a
// temp file first and are renamed over the destination, so a crash
// mid-write never corrupts the previous valid snapshot.
type Snapshot struct {
	path     string
	debounce time.Duration
	marshal  func() ([]byte, error)

	mu    sync.Mutex
	timer *time.Timer
}

// NewSnapshot creates a snapshot bound to a file path and a marshal
// function that captures the current store state.
func NewSnapshot(path string, debounce time.Duration, marshal func() ([]byte, error)) *Snapshot {
	return &Snapshot{path: path, debounce: debounce, marshal: marshal}
}

// Load reads the on-disk snapshot, if any, and hands it to restore.
// A missing file is a cold start, not an error. Decode failures leave the
// store empty and are reported so the caller can log and continue.
func (s *Snapshot) Load(restore func([]byte) error) error {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read snapshot %s: %w", s.path, err)
	}
	if err := restore(data); err != nil {
		return fmt.Errorf("restore snapshot %s: %w", s.path, err)
	}
	return nil
}

// MarkDirty schedules a write after the debounce delay. A call arriving
// before the delay elapses restarts the timer.
func (s *Snapshot) MarkDirty() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.debounce, func() {
		if err := s.Flush(); err != nil {
			log.Errorf("snapshot save failed: %v", err)
		}
	})
}

// Flush writes the snapshot immediately, bypassing any pending debounce.
// Used on graceful shutdown.
func (s *Snapshot) Flush() error {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.mu.Unlock()

	data, err := s.marshal()
	if err != nil {
		return fmt.Errorf("marshal snapshot %s: %w", s.path, err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write snapshot temp file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace snapshot %s: %w", s.path, err)
	}
	return nil
}
