package build

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher reruns a pipeline whenever the source tree changes. Bursts of
// events within the debounce window cause a single rebuild, and rebuilds
// never overlap.
type Watcher struct {
	pipeline *Pipeline
	debounce time.Duration
	// OnBuild, if set, is called after every run including the first.
	OnBuild func(*Result, error)
}

func NewWatcher(pipeline *Pipeline, debounce time.Duration) *Watcher {
	if debounce <= 0 {
		debounce = 300 * time.Millisecond
	}
	return &Watcher{pipeline: pipeline, debounce: debounce}
}

// Watch builds once, then rebuilds on change until ctx is cancelled. A
// failed rebuild is logged and watching continues.
func (w *Watcher) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("fsnotify: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := w.addDirs(watcher, w.pipeline.SourceDir()); err != nil {
		return err
	}

	w.build(ctx)

	var timer *time.Timer
	var fire <-chan time.Time
	logger := w.pipeline.logger

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil

		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if w.ignore(ev.Name) {
				continue
			}
			logger.Debug("source change", "path", ev.Name, "op", ev.Op.String())

			if ev.Has(fsnotify.Create) {
				// New directories need their own watch.
				_ = w.addDirs(watcher, ev.Name)
			}

			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error", "error", err)

		case <-fire:
			fire = nil
			w.build(ctx)
		}
	}
}

func (w *Watcher) build(ctx context.Context) {
	result, err := w.pipeline.Run(ctx)
	if err != nil && ctx.Err() == nil {
		w.pipeline.logger.Error("build failed", "error", err)
	}
	if w.OnBuild != nil {
		w.OnBuild(result, err)
	}
}

func (w *Watcher) addDirs(watcher *fsnotify.Watcher, root string) error {
	out, _ := filepath.Abs(w.pipeline.OutputDir())

	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if abs, err := filepath.Abs(path); err == nil && abs == out {
			return filepath.SkipDir
		}
		if err := watcher.Add(path); err != nil {
			w.pipeline.logger.Warn("watch add failed", "dir", path, "error", err)
		}
		return nil
	})
}

// ignore filters editor swap files, hidden files, and anything under the
// output directory.
func (w *Watcher) ignore(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") || strings.HasSuffix(base, "~") ||
		strings.HasSuffix(base, ".swp") || strings.HasSuffix(base, ".swx") ||
		(strings.HasPrefix(base, "#") && strings.HasSuffix(base, "#")) {
		return true
	}

	out, err := filepath.Abs(w.pipeline.OutputDir())
	if err != nil {
		return false
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	return abs == out || strings.HasPrefix(abs, out+string(filepath.Separator))
}
