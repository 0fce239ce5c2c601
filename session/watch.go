package session

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch reloads the session table when another process rewrites it, so
// several editor windows sharing one table converge on the same state. It
// blocks until ctx is cancelled; run it on its own goroutine.
//
// The table is replaced by rename, so the watch is on the parent directory
// and filters for the table file name. Reload events caused by this store's
// own writes are harmless: reloading just-written state is idempotent.
func (s *Store) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(s.path)); err != nil {
		return err
	}

	target := filepath.Clean(s.path)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if err := s.load(); err != nil {
				s.logger.Warn("reload session table", "error", err)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Warn("session table watcher", "error", err)
		}
	}
}
