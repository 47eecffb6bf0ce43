package upload

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch keeps the inventory in sync with the uploads directory until ctx
// is cancelled, so files added or removed outside the API (e.g. a user
// pruning the directory by hand) are reflected in listings.
func (s *Service) Watch(ctx context.Context, logger *slog.Logger) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(s.dir); err != nil {
		return err
	}

	logger.Info("uploads watcher: started", slog.String("dir", s.dir))

	for {
		select {
		case <-ctx.Done():
			logger.Info("uploads watcher: stopped")
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			name := filepath.Base(ev.Name)

			switch {
			case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
				info, statErr := os.Stat(ev.Name)
				if statErr != nil || info.IsDir() {
					continue
				}
				s.track(name, info.Size())
				logger.Debug("uploads watcher: tracked", slog.String("file", name))

			case ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
				s.forget(name)
				logger.Debug("uploads watcher: removed", slog.String("file", name))
			}

		case werr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("uploads watcher: error", slog.String("error", werr.Error()))
		}
	}
}
