// Package watcher notices new video files landing in watched directories.
package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/sevanw/episodic/internal/logging"
)

// Handler receives a file path once the file has settled.
type Handler func(path string)

// Watcher wraps fsnotify with recursion and write-settling. Files being
// downloaded arrive in many writes; a path is only handed to the handler
// after it has gone quiet for the settle period.
type Watcher struct {
	fsWatcher  *fsnotify.Watcher
	handler    Handler
	log        *logging.Logger
	settle     time.Duration
	recursive  bool
	extensions map[string]bool

	mu      sync.Mutex
	pending map[string]*time.Timer
}

type Option func(*Watcher)

func WithRecursive(recursive bool) Option {
	return func(w *Watcher) {
		w.recursive = recursive
	}
}

func WithSettle(d time.Duration) Option {
	return func(w *Watcher) {
		w.settle = d
	}
}

func WithExtensions(exts []string) Option {
	return func(w *Watcher) {
		w.extensions = make(map[string]bool, len(exts))
		for _, e := range exts {
			w.extensions[strings.ToLower(e)] = true
		}
	}
}

func New(handler Handler, log *logging.Logger, opts ...Option) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("unable to create watcher: %w", err)
	}

	w := &Watcher{
		fsWatcher: fsWatcher,
		handler:   handler,
		log:       log,
		settle:    30 * time.Second,
		recursive: true,
		extensions: map[string]bool{
			".mkv": true, ".mp4": true, ".avi": true, ".m4v": true,
			".mov": true, ".wmv": true, ".ts": true,
		},
		pending: make(map[string]*time.Timer),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w, nil
}

// Watch registers the given directories.
func (w *Watcher) Watch(paths []string) error {
	for _, path := range paths {
		if w.recursive {
			if err := w.addRecursive(path); err != nil {
				return err
			}
		} else {
			if err := w.fsWatcher.Add(path); err != nil {
				return fmt.Errorf("unable to watch %s: %w", path, err)
			}
			w.log.Info("watcher", "watching directory", logging.F("path", path))
		}
	}
	return nil
}

func (w *Watcher) addRecursive(root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if !info.IsDir() {
			return nil
		}
		if strings.HasPrefix(filepath.Base(path), ".") && path != root {
			return filepath.SkipDir
		}
		if err := w.fsWatcher.Add(path); err != nil {
			return fmt.Errorf("unable to watch %s: %w", path, err)
		}
		w.log.Info("watcher", "watching directory", logging.F("path", path))
		return nil
	})
}

// Run processes events until the context is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			w.handleEvent(event)

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			w.log.Warn("watcher", "filesystem event error", logging.F("error", err))
		}
	}
}

func (w *Watcher) Close() error {
	w.mu.Lock()
	for path, timer := range w.pending {
		timer.Stop()
		delete(w.pending, path)
	}
	w.mu.Unlock()
	return w.fsWatcher.Close()
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if event.Op&fsnotify.Create == fsnotify.Create {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if w.recursive && !strings.HasPrefix(filepath.Base(event.Name), ".") {
				w.fsWatcher.Add(event.Name)
				w.log.Debug("watcher", "watching new directory", logging.F("path", event.Name))
			}
			return
		}
	}

	if !w.isVideoFile(event.Name) {
		return
	}

	switch {
	case event.Op&fsnotify.Create == fsnotify.Create,
		event.Op&fsnotify.Write == fsnotify.Write:
		w.touch(event.Name)
	case event.Op&fsnotify.Remove == fsnotify.Remove,
		event.Op&fsnotify.Rename == fsnotify.Rename:
		w.forget(event.Name)
	}
}

// touch starts or resets the settle timer for a path.
func (w *Watcher) touch(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if timer, ok := w.pending[path]; ok {
		timer.Reset(w.settle)
		return
	}
	w.pending[path] = time.AfterFunc(w.settle, func() {
		w.mu.Lock()
		delete(w.pending, path)
		w.mu.Unlock()

		// The file may have vanished while settling.
		if _, err := os.Lstat(path); err != nil {
			return
		}
		w.log.Info("watcher", "file settled", logging.F("path", path))
		w.handler(path)
	})
}

func (w *Watcher) forget(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if timer, ok := w.pending[path]; ok {
		timer.Stop()
		delete(w.pending, path)
	}
}

func (w *Watcher) isVideoFile(path string) bool {
	return w.extensions[strings.ToLower(filepath.Ext(path))]
}
