// Package watch reruns a function when files under a set of paths change.
package watch

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// DefaultDebounce is how long the watcher waits for changes to settle.
const DefaultDebounce = 200 * time.Millisecond

// Watcher watches files and directory trees. Directories are watched
// recursively, including ones created later.
type Watcher struct {
	fsw      *fsnotify.Watcher
	debounce time.Duration
	// files are watched through their parent directory, so that atomic
	// saves replacing the file are seen. Other entries of such a directory
	// are ignored unless the directory is watched itself.
	files  map[string]bool
	dirs   map[string]bool
	ignore func(path string) bool
	logger zerolog.Logger
}

type Option func(*Watcher)

func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithIgnore skips events for paths ignore reports true for, in addition to
// hidden files.
func WithIgnore(ignore func(path string) bool) Option {
	return func(w *Watcher) {
		w.ignore = ignore
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(w *Watcher) {
		w.logger = logger
	}
}

// New watches paths, which may be files or directories.
func New(paths []string, opts ...Option) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		fsw:      fsw,
		debounce: DefaultDebounce,
		files:    map[string]bool{},
		dirs:     map[string]bool{},
		ignore:   func(string) bool { return false },
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(w)
	}

	for _, p := range paths {
		if err := w.add(p); err != nil {
			fsw.Close()
			return nil, err
		}
	}
	return w, nil
}

// Run calls fn each time changes settle until ctx is done. Errors from fn
// are logged and do not stop the watcher.
func (w *Watcher) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	defer w.fsw.Close()

	// Go 1.23 timers: Reset discards a pending tick.
	timer := time.NewTimer(w.debounce)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(ev) {
				continue
			}
			if ev.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					if err := w.add(ev.Name); err != nil {
						w.logger.Warn().Err(err).Str("path", ev.Name).Msg("cannot watch directory")
					}
				}
			}
			w.logger.Trace().Str("path", ev.Name).Str("op", ev.Op.String()).Msg("change detected")

			timer.Reset(w.debounce)

		case <-timer.C:
			if err := fn(ctx); err != nil {
				w.logger.Error().Err(err).Msg("run after change failed")
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error().Err(err).Msg("watcher error")
		}
	}
}

// Close stops watching without running.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if ev.Op == fsnotify.Chmod {
		return false
	}
	if strings.HasPrefix(filepath.Base(ev.Name), ".") {
		return false
	}
	if !w.dirs[filepath.Dir(ev.Name)] && !w.files[ev.Name] {
		return false
	}
	return !w.ignore(ev.Name)
}

func (w *Watcher) add(path string) error {
	path, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		w.files[path] = true
		return w.fsw.Add(filepath.Dir(path))
	}

	return filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if p != path && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		w.dirs[p] = true
		return w.fsw.Add(p)
	})
}
