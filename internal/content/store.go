package content

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Store serves the current portfolio and can reload it from disk.
type Store struct {
	mu   sync.RWMutex
	p    *Portfolio
	path string
}

// NewStore loads copy from path, or the embedded copy when path is empty.
func NewStore(path string) (*Store, error) {
	s := &Store{path: path}
	if path == "" {
		s.p = Default()
		return s, nil
	}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Portfolio returns the current copy. Callers must not modify it.
func (s *Store) Portfolio() *Portfolio {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.p
}

// Path is the file backing the store, empty for the embedded copy.
func (s *Store) Path() string {
	return s.path
}

// Reload rereads the backing file. A broken file keeps the previous copy.
func (s *Store) Reload() error {
	if s.path == "" {
		return nil
	}
	p, err := LoadFile(s.path)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.p = p
	s.mu.Unlock()
	return nil
}

// Watch reloads the file whenever it changes until ctx is done. Events are
// debounced because editors write in several steps.
func (s *Store) Watch(ctx context.Context, debounce time.Duration) error {
	if s.path == "" {
		return nil
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch content: %w", err)
	}
	// Watch the directory so renames by editors are still seen.
	if err := watcher.Add(filepath.Dir(s.path)); err != nil {
		watcher.Close()
		return fmt.Errorf("watch content: %w", err)
	}

	go func() {
		defer watcher.Close()
		var timer *time.Timer
		target := filepath.Clean(s.path)
		for {
			select {
			case <-ctx.Done():
				if timer != nil {
					timer.Stop()
				}
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != target {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				if timer != nil {
					timer.Stop()
				}
				timer = time.AfterFunc(debounce, func() {
					if err := s.Reload(); err != nil {
						log.Printf("Content reload failed, keeping previous copy: %v", err)
						return
					}
					log.Printf("Reloaded portfolio content from %s", s.path)
				})
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Printf("Content watcher error: %v", err)
			}
		}
	}()
	return nil
}
