package driver

import (
	"context"
	"os"
	"path/filepath"

	"bracefmt/internal/trace"
)

// target is a discovered file, or a path that failed during discovery.
type target struct {
	path string
	err  error
}

// walker expands a root path into targets depth first, in the order the
// directory listing returns entries.
type walker struct {
	opts    Options
	tracer  trace.Tracer
	seen    map[string]struct{} // real paths of visited directories
	targets []target
	skips   []Result
}

func newWalker(opts Options, tracer trace.Tracer) *walker {
	return &walker{
		opts:   opts,
		tracer: tracer,
		seen:   make(map[string]struct{}),
	}
}

func (w *walker) visit(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	info, err := os.Stat(path)
	if err != nil {
		if isMissing(err) {
			w.skip(path, "missing")
			return nil
		}
		return w.record(path, accessError("stat", path, err))
	}
	if info.IsDir() {
		return w.visitDir(ctx, path)
	}
	if !info.Mode().IsRegular() || !w.opts.Accepts(filepath.Base(path)) {
		w.skip(path, "not accepted")
		return nil
	}
	w.targets = append(w.targets, target{path: path})
	return nil
}

func (w *walker) visitDir(ctx context.Context, dir string) error {
	key := dir
	if real, err := filepath.EvalSymlinks(dir); err == nil {
		key = real
	}
	if _, ok := w.seen[key]; ok {
		w.skip(dir, "already visited")
		return nil
	}
	w.seen[key] = struct{}{}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return w.record(dir, accessError("readdir", dir, err))
	}
	trace.Point(w.tracer, trace.ScopeWalk, "dir", dir)

	for _, entry := range entries {
		if err := w.visit(ctx, filepath.Join(dir, entry.Name())); err != nil {
			return err
		}
	}
	return nil
}

// record keeps a recoverable failure as a target so it is reported in
// order, and lets the walk continue. Anything else stops the walk.
func (w *walker) record(path string, err error) error {
	if !IsRecoverable(err) {
		return err
	}
	trace.Error(w.tracer, trace.ScopeWalk, "access", err)
	w.targets = append(w.targets, target{path: path, err: err})
	return nil
}

func (w *walker) skip(path, why string) {
	w.skips = append(w.skips, Result{Path: path, Status: StatusSkipped, Reason: why})
	trace.Point(w.tracer, trace.ScopeFile, "skip", path+": "+why)
}
