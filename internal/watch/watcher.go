// Package watch reformats files as they change on disk.
package watch

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"
	lru "github.com/hashicorp/golang-lru/v2"

	"bracefmt/internal/trace"
)

const (
	// DefaultDebounce groups bursts of events from a single save.
	DefaultDebounce = 200 * time.Millisecond
	// DefaultMemory is the number of self-written digests remembered.
	DefaultMemory = 1024
)

// Handler processes one changed file. It is called from the watch loop,
// one file at a time.
type Handler func(ctx context.Context, path string) error

// Options configures a Watcher.
type Options struct {
	Debounce time.Duration
	Memory   int
	// Accept filters file names; nil accepts everything.
	Accept func(name string) bool
	// OnError receives handler and fsnotify errors. Nil drops them.
	OnError func(path string, err error)
}

// Watcher watches a directory tree and hands changed files to a Handler.
type Watcher struct {
	fs      *fsnotify.Watcher
	opts    Options
	handler Handler
	digests *lru.Cache[string, [32]byte]
	pending map[string]struct{}
	dirs    map[string]struct{}
}

// New creates a Watcher. Close it (or let Run return) to release the
// underlying fsnotify watcher.
func New(opts Options, handler Handler) (*Watcher, error) {
	if handler == nil {
		return nil, errors.New("watch: nil handler")
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Memory <= 0 {
		opts.Memory = DefaultMemory
	}
	digests, err := lru.New[string, [32]byte](opts.Memory)
	if err != nil {
		return nil, fmt.Errorf("watch: %w", err)
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: %w", err)
	}
	return &Watcher{
		fs:      fw,
		opts:    opts,
		handler: handler,
		digests: digests,
		pending: make(map[string]struct{}),
		dirs:    make(map[string]struct{}),
	}, nil
}

// AddRecursive watches root and every directory below it.
func (w *Watcher) AddRecursive(root string) error {
	_, err := w.addTree(root)
	return err
}

// addTree registers directories under root and returns the accepted files
// found along the way.
func (w *Watcher) addTree(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			w.report(path, err)
			return nil
		}
		if !d.IsDir() {
			if w.accepts(path) {
				files = append(files, path)
			}
			return nil
		}
		if _, seen := w.dirs[path]; seen {
			return nil
		}
		if err := w.fs.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		w.dirs[path] = struct{}{}
		return nil
	})
	return files, err
}

// Remember records content as already handled for path, so the event caused
// by writing it is ignored.
func (w *Watcher) Remember(path string, content []byte) {
	w.digests.Add(filepath.Clean(path), sha256.Sum256(content))
}

// Run processes events until ctx is cancelled, then closes the watcher.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fs.Close()

	timer := time.NewTimer(w.opts.Debounce)
	timer.Stop()
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case ev, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if w.note(ev) {
				timer.Reset(w.opts.Debounce)
				fire = timer.C
			}
		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.report("", err)
		case <-fire:
			fire = nil
			w.flush(ctx)
		}
	}
}

// Close releases the fsnotify watcher without running.
func (w *Watcher) Close() error {
	return w.fs.Close()
}

// note folds one fsnotify event into the pending set and reports whether
// anything was queued.
func (w *Watcher) note(ev fsnotify.Event) bool {
	path := filepath.Clean(ev.Name)
	if ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename) {
		w.digests.Remove(path)
		delete(w.dirs, path)
		delete(w.pending, path)
		return false
	}
	if ev.Has(fsnotify.Create) {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			files, err := w.addTree(path)
			if err != nil {
				w.report(path, err)
			}
			for _, f := range files {
				w.pending[f] = struct{}{}
			}
			return len(files) > 0
		}
	}
	if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) {
		return false
	}
	if !w.accepts(path) {
		return false
	}
	w.pending[path] = struct{}{}
	return true
}

func (w *Watcher) flush(ctx context.Context) {
	paths := make([]string, 0, len(w.pending))
	for p := range w.pending {
		paths = append(paths, p)
	}
	clear(w.pending)
	sort.Strings(paths)

	tracer := trace.FromContext(ctx)
	for _, path := range paths {
		if ctx.Err() != nil {
			return
		}
		if w.unchangedSinceLastRun(path) {
			trace.Point(tracer, trace.ScopeFile, "watch.skip", path)
			continue
		}
		if err := w.handler(ctx, path); err != nil {
			w.report(path, err)
			continue
		}
		if data, err := os.ReadFile(path); err == nil {
			w.Remember(path, data)
		}
	}
}

func (w *Watcher) unchangedSinceLastRun(path string) bool {
	known, ok := w.digests.Get(path)
	if !ok {
		return false
	}
	data, err := os.ReadFile(path)
	if err != nil {
		// gone or unreadable; let the handler report it
		return false
	}
	return sha256.Sum256(data) == known
}

func (w *Watcher) accepts(path string) bool {
	return w.opts.Accept == nil || w.opts.Accept(filepath.Base(path))
}

func (w *Watcher) report(path string, err error) {
	if w.opts.OnError != nil {
		w.opts.OnError(path, err)
	}
}
