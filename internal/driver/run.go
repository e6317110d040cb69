package driver

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"bracefmt/internal/observ"
	"bracefmt/internal/trace"
)

// Plan is the outcome of discovery: the files a run will format, in order.
type Plan struct {
	Root    string
	opts    Options
	targets []target
	skips   []Result
	timer   *observ.Timer
}

// Discover expands root into a Plan. Missing paths and files with other
// suffixes are skipped; access failures become failed targets. The error
// is reserved for invalid input and cancellation.
func Discover(ctx context.Context, root string, opts Options) (*Plan, error) {
	if strings.TrimSpace(root) == "" {
		return nil, ErrNoTarget
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopeWalk, "walk", trace.ParentID(ctx)).WithExtra("root", root)
	timer := observ.NewTimer()
	idx := timer.Begin("walk")

	w := newWalker(opts, tracer)
	if err := w.visit(ctx, root); err != nil {
		span.End(err.Error())
		return nil, err
	}

	note := fmt.Sprintf("%d targets, %d skipped", len(w.targets), len(w.skips))
	timer.End(idx, note)
	span.End(note)

	return &Plan{
		Root:    root,
		opts:    opts,
		targets: w.targets,
		skips:   w.skips,
		timer:   timer,
	}, nil
}

// Files returns every discovered path in discovery order.
func (p *Plan) Files() []string {
	out := make([]string, len(p.targets))
	for i, t := range p.targets {
		out[i] = t.path
	}
	return out
}

// WithProgress routes progress events of Run to sink.
func (p *Plan) WithProgress(sink ProgressSink) *Plan {
	p.opts.Progress = sink
	return p
}

// Run formats every planned file. Per-file failures are reported in the
// Report; the error is only set when ctx is cancelled, in which case the
// Report holds the files that were processed.
func (p *Plan) Run(ctx context.Context) (*Report, error) {
	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopeRun, "format", trace.ParentID(ctx)).WithExtra("root", p.Root)
	ctx = trace.WithSpan(ctx, span)

	idx := p.timer.Begin("format")
	results, err := formatTargets(ctx, p.targets, p.opts)
	p.timer.End(idx, fmt.Sprintf("%d jobs", p.opts.jobs(len(p.targets))))

	report := &Report{
		Root:    p.Root,
		Results: results,
		Skips:   p.skips,
		Skipped: len(p.skips),
		Timing:  p.timer.Report(),
	}
	span.WithExtra("files", strconv.Itoa(len(results))).End("")
	return report, err
}

// FormatPath discovers and formats root in one call.
func FormatPath(ctx context.Context, root string, opts Options) (*Report, error) {
	plan, err := Discover(ctx, root, opts)
	if err != nil {
		return nil, err
	}
	return plan.Run(ctx)
}

// formatTargets formats every target with at most opts.Jobs workers.
// Results keep the discovery order.
func formatTargets(ctx context.Context, targets []target, opts Options) ([]Result, error) {
	results := make([]Result, len(targets))
	done := make([]bool, len(targets))

	for _, t := range targets {
		if t.err == nil {
			emit(opts.Progress, ProgressEvent{File: t.path, Status: ProgressQueued})
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.jobs(len(targets)))

	for i, t := range targets {
		if t.err != nil {
			results[i] = Result{Path: t.path, Status: StatusFailed, Err: t.err}
			done[i] = true
			emit(opts.Progress, ProgressEvent{File: t.path, Status: ProgressError, Result: StatusFailed, Err: t.err})
			continue
		}
		i, t := i, t
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = FormatFile(gctx, t.path, opts)
			done[i] = true
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		// cancelled: keep only what actually ran
		out := results[:0]
		for i, res := range results {
			if done[i] {
				out = append(out, res)
			}
		}
		return out, err
	}
	return results, nil
}
