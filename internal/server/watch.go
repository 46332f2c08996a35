package server

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/euroalt/trustscore/internal/catalog"
)

// Watch reloads s whenever a table file in dir changes. Bursts of events
// within debounce collapse into one reload. It blocks until ctx is done.
func Watch(ctx context.Context, s *Server, dir string, debounce time.Duration, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("server.Watch: %w", err)
	}
	defer w.Close()

	// Editors often save by rename, so watch the directory rather than the files.
	if err := w.Add(dir); err != nil {
		return fmt.Errorf("server.Watch: %w", err)
	}
	logger.Info("watching data directory", "dir", dir, "debounce", debounce)

	timer := time.NewTimer(time.Hour)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !isTableEvent(ev) {
				continue
			}
			logger.Debug("data change", "file", filepath.Base(ev.Name), "op", ev.Op.String())
			timer.Reset(debounce)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error", "error", err)
		case <-timer.C:
			_ = s.Reload(ctx)
		}
	}
}

func isTableEvent(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
		return false
	}
	return slices.Contains(catalog.TableFiles, filepath.Base(ev.Name))
}
