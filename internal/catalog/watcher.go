package catalog

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/holtvik/ansuz/internal/sources"
)

// ReloadFunc is called after a debounced batch of source file changes.
type ReloadFunc func()

// Watch starts an fsnotify watcher over every non-ignored source root and
// the registry file, and invokes reload (debounced) whenever a Markdown file
// or the registry changes. The catalog is always rebuilt wholesale, so the
// watcher never tries to patch it incrementally. Blocks until ctx is done.
func Watch(ctx context.Context, reg *sources.Registry, sourcesFile string, logger *slog.Logger, reload ReloadFunc) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(reg.Root()); err != nil {
		return err
	}
	for _, src := range reg.All() {
		if src.Ignore {
			continue
		}
		root := reg.SourceRoot(src)
		if err := addDirsRecursive(w, root); err != nil {
			logger.Warn("watcher: source root not watchable",
				slog.String("source", src.Name),
				slog.String("error", err.Error()))
		}
	}

	logger.Info("watcher: started", slog.String("root", reg.Root()))

	registryPath := filepath.Join(reg.Root(), sourcesFile)

	// Debounce bursts of events into one reload.
	var reloadTimer *time.Timer
	var reloadCh <-chan time.Time

	scheduleReload := func() {
		if reloadTimer == nil {
			reloadTimer = time.NewTimer(500 * time.Millisecond)
			reloadCh = reloadTimer.C
		} else {
			reloadTimer.Reset(500 * time.Millisecond)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if reloadTimer != nil {
				reloadTimer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-reloadCh:
			logger.Debug("watcher: reloading catalog")
			if reload != nil {
				reload()
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}

			// New directories join the watch list so files created in them
			// are seen too.
			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(ev.Name); statErr == nil && info.IsDir() {
					if addErr := addDirsRecursive(w, ev.Name); addErr != nil {
						logger.Warn("watcher: add new dir failed",
							slog.String("path", ev.Name),
							slog.String("error", addErr.Error()))
					}
					scheduleReload()
					continue
				}
			}

			if ev.Name == registryPath || strings.HasSuffix(ev.Name, ".md") {
				scheduleReload()
			}

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher: error", slog.String("error", err.Error()))
		}
	}
}

// addDirsRecursive adds dir and all nested directories to the watcher.
// Non-directories are ignored.
func addDirsRecursive(w *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		return w.Add(p)
	})
}
