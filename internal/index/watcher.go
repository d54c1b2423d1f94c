package index

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/gobwas/glob"

	"github.com/starford/recall/internal/apperr"
	"github.com/starford/recall/internal/workspace"
)

// DefaultIgnore holds base-name patterns for files that never trigger a
// rebuild: the store's own temp files and common editor droppings.
var DefaultIgnore = []string{".recall-tmp-*", "*.swp", "*.swx", "*~", ".DS_Store", "4913"}

// WatchOptions tunes Watch. Zero values fall back to defaults.
type WatchOptions struct {
	Debounce time.Duration
	Ignore   []string
}

// CompileIgnore compiles base-name glob patterns.
func CompileIgnore(patterns []string) ([]glob.Glob, error) {
	out := make([]glob.Glob, 0, len(patterns))
	for _, pattern := range patterns {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("watch: ignore pattern %q: %v: %w", pattern, err, apperr.ErrInvalidArgument)
		}
		out = append(out, g)
	}
	return out, nil
}

func ignored(patterns []glob.Glob, name string) bool {
	base := filepath.Base(name)
	for _, g := range patterns {
		if g.Match(base) {
			return true
		}
	}
	return false
}

// ChangeCallback is called once per quiet period after record changes.
type ChangeCallback func()

// Watch starts an fsnotify watcher on both partitions and their record
// directories and calls cb after debounce has passed without further
// events. It returns when ctx is cancelled.
//
// Record directories created or moved in at runtime are added to the watch
// list; fsnotify drops removed ones on its own.
func Watch(ctx context.Context, layout *workspace.Layout, opts WatchOptions, logger *slog.Logger, cb ChangeCallback) error {
	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}
	patterns := opts.Ignore
	if patterns == nil {
		patterns = DefaultIgnore
	}
	ignore, err := CompileIgnore(patterns)
	if err != nil {
		return err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	for _, root := range []string{layout.Active(), layout.Archive()} {
		if err := addDirsRecursive(w, root); err != nil {
			return err
		}
	}

	logger.Info("watcher: started", slog.String("root", layout.RecordsRoot()))

	var timer *time.Timer
	var fire <-chan time.Time
	schedule := func() {
		if timer == nil {
			timer = time.NewTimer(debounce)
			fire = timer.C
		} else {
			timer.Reset(debounce)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-fire:
			timer = nil
			fire = nil
			if cb != nil {
				cb()
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ignored(ignore, ev.Name) {
				continue
			}
			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(ev.Name); statErr == nil && info.IsDir() {
					if addErr := addDirsRecursive(w, ev.Name); addErr != nil {
						logger.Warn("watcher: add new dir failed",
							slog.String("path", ev.Name),
							slog.String("error", addErr.Error()))
					} else {
						logger.Debug("watcher: watching new dir", slog.String("path", ev.Name))
					}
				}
			}
			if ev.Op == fsnotify.Chmod {
				continue
			}
			logger.Debug("watcher: change", slog.String("path", ev.Name), slog.String("op", ev.Op.String()))
			schedule()

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// addDirsRecursive adds root and all its subdirectories to the watcher.
func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.Add(path)
		}
		return nil
	})
}
