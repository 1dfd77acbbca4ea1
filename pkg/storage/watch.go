package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// Watch watches the store's schema directory tree for out-of-band edits
// (an operator hand-editing a schema.json, a sync job dropping in a new
// compiled table) and invalidates the in-process cache for the affected
// schema so the next lookup rereads from disk. It blocks until ctx is
// canceled. fsnotify watches are not recursive, so Watch also tracks
// schema subdirectories created after it starts.
func (s *FileSystemStore) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	schemasDir := filepath.Join(s.rootDir, "schemas")
	if err := watcher.Add(schemasDir); err != nil {
		return err
	}
	if entries, err := os.ReadDir(schemasDir); err == nil {
		for _, entry := range entries {
			if entry.IsDir() {
				_ = watcher.Add(filepath.Join(schemasDir, entry.Name()))
			}
		}
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = watcher.Add(event.Name)
				}
			}
			s.handleWatchEvent(event)
		case <-watcher.Errors:
			// Individual watch errors don't warrant tearing down the loop;
			// the next event or ctx cancellation will surface real problems.
		}
	}
}

func (s *FileSystemStore) handleWatchEvent(event fsnotify.Event) {
	if event.Op&(fsnotify.Write|fsnotify.Remove|fsnotify.Create) == 0 {
		return
	}

	rel, err := filepath.Rel(filepath.Join(s.rootDir, "schemas"), event.Name)
	if err != nil {
		return
	}
	parts := strings.Split(rel, string(filepath.Separator))
	if len(parts) == 0 || parts[0] == "." {
		return
	}

	schemaName := parts[0]
	prefix := schemaName + "|"
	for _, key := range s.cache.Keys() {
		if strings.HasPrefix(key, prefix) {
			s.cache.Remove(key)
		}
	}
}
