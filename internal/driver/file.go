package driver

import (
	"context"
	"crypto/sha256"
	"path/filepath"
	"time"

	"fortio.org/safecast"

	"bracefmt/internal/format"
	"bracefmt/internal/source"
	"bracefmt/internal/trace"
)

// FormatFile reads, reflows and persists a single file. Failures are
// returned inside the Result as an *AccessError; a path that is gone or has
// a suffix opts does not accept is StatusSkipped.
func FormatFile(ctx context.Context, path string, opts Options) Result {
	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopeFile, "file", trace.ParentID(ctx)).WithExtra("path", path)
	started := time.Now()
	emit(opts.Progress, ProgressEvent{File: path, Status: ProgressWorking})

	res := formatFile(path, opts, tracer)

	status := ProgressDone
	if res.Err != nil {
		status = ProgressError
		trace.Error(tracer, trace.ScopeFile, "file", res.Err)
	}
	emit(opts.Progress, ProgressEvent{
		File:    path,
		Status:  status,
		Result:  res.Status,
		Err:     res.Err,
		Elapsed: time.Since(started),
	})
	span.End(string(res.Status))
	return res
}

func formatFile(path string, opts Options, tracer trace.Tracer) Result {
	res := Result{Path: path}
	if !opts.Accepts(filepath.Base(path)) {
		return skipped(res, "not accepted")
	}

	doc, err := source.Load(path)
	if err != nil {
		if isMissing(err) {
			return skipped(res, "missing")
		}
		return failed(res, accessError("read", path, err))
	}

	fingerprint := opts.Format.Fingerprint()
	if !opts.Stdout && opts.Cache.Fresh(path, doc.Hash, fingerprint) {
		res.Status = StatusUnchanged
		res.Cached = true
		return res
	}

	formatted := format.Document(doc, opts.Format)
	digest := sha256.Sum256(formatted)
	res.Changed = digest != doc.Hash
	res.Status = StatusUnchanged
	if res.Changed {
		res.Status = StatusFormatted
	}

	switch {
	case opts.Stdout:
		res.Formatted = formatted
		return res
	case opts.Check:
		if !res.Changed {
			remember(opts.Cache, path, digest, fingerprint, formatted, tracer)
		}
		return res
	}

	if res.Changed {
		if err := writeFile(path, formatted, opts.Atomic); err != nil {
			return failed(res, accessError("write", path, err))
		}
	}
	remember(opts.Cache, path, digest, fingerprint, formatted, tracer)
	return res
}

func skipped(res Result, why string) Result {
	res.Status = StatusSkipped
	res.Reason = why
	return res
}

func failed(res Result, err error) Result {
	res.Status = StatusFailed
	res.Changed = false
	res.Err = err
	return res
}

// remember stores the digest of a file known to be formatted. Cache
// problems are traced and otherwise ignored.
func remember(cache *FingerprintCache, path string, digest, fingerprint [32]byte, formatted []byte, tracer trace.Tracer) {
	if cache == nil {
		return
	}
	lines, err := safecast.Conv[uint32](countLines(formatted))
	if err != nil {
		lines = 0
	}
	entry := &FingerprintEntry{
		Schema:  fingerprintSchemaVersion,
		Options: fingerprint,
		Digest:  digest,
		Lines:   lines,
	}
	if err := cache.Put(path, entry); err != nil {
		trace.Error(tracer, trace.ScopeFile, "cache", err)
	}
}

func countLines(data []byte) int {
	n := 0
	for _, b := range data {
		if b == '\n' {
			n++
		}
	}
	return n
}
