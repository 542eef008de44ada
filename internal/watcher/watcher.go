// Package watcher reports changes to file-backed layer sources.
package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"mapdash/internal/logging"
)

const DefaultDebounce = 500 * time.Millisecond

// Watcher watches a set of files and calls onChange once per burst of writes
// to any of them. onChange runs on a timer goroutine; it must hand the event
// over to the UI loop instead of touching map state.
type Watcher struct {
	paths    []string
	onChange func(path string)
	debounce time.Duration
	log      logging.Logger
}

func New(paths []string, onChange func(path string)) *Watcher {
	return &Watcher{
		paths:    paths,
		onChange: onChange,
		debounce: DefaultDebounce,
		log:      logging.NewNop(),
	}
}

// WithDebounce sets the debounce duration
func (w *Watcher) WithDebounce(d time.Duration) *Watcher {
	if d > 0 {
		w.debounce = d
	}
	return w
}

func (w *Watcher) WithLogger(l logging.Logger) *Watcher {
	w.log = l.Named("watcher")
	return w
}

// Start registers the watches and processes events in the background until
// ctx is done. The returned channel yields the loop's exit error once.
func (w *Watcher) Start(ctx context.Context) (<-chan error, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	// Watch the parent directories so files replaced by editors are still seen.
	dirs := map[string]bool{}
	files := map[string]bool{}
	for _, p := range w.paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			w.log.Warn("skip watch path", logging.String("path", p), logging.Err(err))
			continue
		}
		dir := filepath.Dir(abs)
		if !dirs[dir] {
			if err := fw.Add(dir); err != nil {
				w.log.Warn("watch directory failed", logging.String("dir", dir), logging.Err(err))
				continue
			}
			dirs[dir] = true
		}
		files[abs] = true
		w.log.Info("watching", logging.String("path", abs))
	}
	if len(files) == 0 {
		fw.Close()
		return nil, fmt.Errorf("no watchable paths among %d", len(w.paths))
	}

	done := make(chan error, 1)
	go func() {
		defer fw.Close()
		done <- w.loop(ctx, fw, files)
	}()
	return done, nil
}

// Watch is Start followed by waiting for the loop to end.
func (w *Watcher) Watch(ctx context.Context) error {
	done, err := w.Start(ctx)
	if err != nil {
		return err
	}
	return <-done
}

func (w *Watcher) loop(ctx context.Context, fw *fsnotify.Watcher, files map[string]bool) error {
	var mu sync.Mutex
	timers := map[string]*time.Timer{}
	stopAll := func() {
		mu.Lock()
		defer mu.Unlock()
		for _, t := range timers {
			t.Stop()
		}
	}

	for {
		select {
		case event, ok := <-fw.Events:
			if !ok {
				stopAll()
				return nil
			}
			abs, err := filepath.Abs(event.Name)
			if err != nil || !files[abs] {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			mu.Lock()
			if t, ok := timers[abs]; ok {
				t.Stop()
			}
			timers[abs] = time.AfterFunc(w.debounce, func() {
				if ctx.Err() != nil {
					return
				}
				w.log.Debug("file changed", logging.String("path", abs))
				w.onChange(abs)
			})
			mu.Unlock()

		case err, ok := <-fw.Errors:
			if !ok {
				stopAll()
				return nil
			}
			w.log.Warn("watcher error", logging.Err(err))

		case <-ctx.Done():
			stopAll()
			return ctx.Err()
		}
	}
}
