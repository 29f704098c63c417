package credential

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch monitors the token file for external changes and calls onChange with
// the new token each time it changes — "" when the file is removed. It runs
// until ctx is cancelled.
//
// The watch is placed on the parent directory rather than the file because
// the file may not exist yet (logged out) and because writers often replace
// it atomically via rename, which would silently detach a file-level watch.
func (s *Store) Watch(ctx context.Context, onChange func(token string)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	dir := filepath.Dir(s.path)
	if err := watcher.Add(dir); err != nil {
		return err
	}

	slog.Info("credential: watching for changes", "path", s.path)

	last := s.Token()
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != filepath.Clean(s.path) {
				continue
			}
			if err := s.reload(); err != nil {
				slog.Error("credential: reload failed — keeping previous token",
					"path", s.path, "err", err)
				continue
			}
			token := s.Token()
			if token == last {
				// Editors and atomic saves fire several events per change.
				continue
			}
			last = token
			if token == "" {
				slog.Info("credential: token removed")
			} else {
				slog.Info("credential: token updated")
			}
			onChange(token)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Error("credential: watcher error", "err", err)
		}
	}
}
