package driver

import (
	"context"
	"crypto/sha256"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

const unformatted = "public class A {\n\tpublic void run() {\n\t\tif (x) {\n\t\t} else {\n\t\t}\n\t}\n}\n"

const formatted = "public class A\n{\n    public void run()\n    {\n        if (x)\n        {\n        }\n        else\n        {\n        }\n    }\n}\n"

func writeTestFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

func readTestFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read %s: %v", path, err)
	}
	return string(data)
}

func hashFile(t *testing.T, path string) [32]byte {
	t.Helper()
	return sha256.Sum256([]byte(readTestFile(t, path)))
}

func TestFormatPathSingleFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "A.cls")
	writeTestFile(t, path, unformatted)

	report, err := FormatPath(context.Background(), path, DefaultOptions())
	if err != nil {
		t.Fatalf("FormatPath returned error: %v", err)
	}
	if len(report.Results) != 1 || report.Results[0].Status != StatusFormatted {
		t.Fatalf("expected one formatted result, got %+v", report.Results)
	}
	if got := readTestFile(t, path); got != formatted {
		t.Fatalf("unexpected content:\nwant %q\ngot  %q", formatted, got)
	}

	report, err = FormatPath(context.Background(), path, DefaultOptions())
	if err != nil {
		t.Fatalf("second FormatPath returned error: %v", err)
	}
	if report.Results[0].Status != StatusUnchanged || report.HasChanges() {
		t.Fatalf("expected unchanged on second run, got %+v", report.Results[0])
	}
}

func TestFormatPathFiltersExtensions(t *testing.T) {
	dir := t.TempDir()
	cls := filepath.Join(dir, "A.cls")
	trg := filepath.Join(dir, "nested", "T.trigger")
	java := filepath.Join(dir, "B.java")
	upper := filepath.Join(dir, "C.CLS")
	meta := filepath.Join(dir, "A.cls-meta.xml")
	for _, p := range []string{cls, trg, java, upper, meta} {
		writeTestFile(t, p, unformatted)
	}
	untouched := map[string][32]byte{
		java:  hashFile(t, java),
		upper: hashFile(t, upper),
		meta:  hashFile(t, meta),
	}

	report, err := FormatPath(context.Background(), dir, DefaultOptions())
	if err != nil {
		t.Fatalf("FormatPath returned error: %v", err)
	}

	want := []string{cls, trg}
	if got := report.Files(); !slices.Equal(got, want) {
		t.Fatalf("expected files %q, got %q", want, got)
	}
	if report.Skipped != 3 || report.Count(StatusSkipped) != 3 {
		t.Fatalf("expected 3 skipped paths, got %d", report.Skipped)
	}
	wantSkips := []string{meta, java, upper}
	for i, s := range report.Skips {
		if s.Path != wantSkips[i] || s.Status != StatusSkipped || s.Reason != "not accepted" {
			t.Fatalf("skip %d: expected %s skipped as not accepted, got %+v", i, wantSkips[i], s)
		}
	}
	for _, p := range want {
		if got := readTestFile(t, p); got != formatted {
			t.Fatalf("%s not formatted: %q", p, got)
		}
	}
	for p, h := range untouched {
		if hashFile(t, p) != h {
			t.Fatalf("%s must not be modified", p)
		}
	}
}

func TestFormatPathMissingRootIsSkipped(t *testing.T) {
	report, err := FormatPath(context.Background(), filepath.Join(t.TempDir(), "nope"), DefaultOptions())
	if err != nil {
		t.Fatalf("missing root must not be an error, got %v", err)
	}
	if len(report.Results) != 0 || report.Skipped != 1 {
		t.Fatalf("expected a single skipped path, got %+v", report)
	}
	if s := report.Skips[0]; s.Status != StatusSkipped || s.Reason != "missing" {
		t.Fatalf("expected missing skip, got %+v", s)
	}
}

func TestFormatPathUnderRegularFileIsSkipped(t *testing.T) {
	file := filepath.Join(t.TempDir(), "A.cls")
	writeTestFile(t, file, unformatted)

	report, err := FormatPath(context.Background(), filepath.Join(file, "sub"), DefaultOptions())
	if err != nil {
		t.Fatalf("FormatPath returned error: %v", err)
	}
	if report.HasErrors() || len(report.Results) != 0 {
		t.Fatalf("expected no failed targets, got %+v", report.Results)
	}
	if len(report.Skips) != 1 || report.Skips[0].Reason != "missing" {
		t.Fatalf("expected one missing skip, got %+v", report.Skips)
	}
}

func TestFormatFileSkipsMissingAndForeignFiles(t *testing.T) {
	dir := t.TempDir()
	gone := FormatFile(context.Background(), filepath.Join(dir, "Gone.cls"), DefaultOptions())
	if gone.Status != StatusSkipped || gone.Err != nil || gone.Reason != "missing" {
		t.Fatalf("expected missing file to be skipped, got %+v", gone)
	}

	java := filepath.Join(dir, "B.java")
	writeTestFile(t, java, unformatted)
	res := FormatFile(context.Background(), java, DefaultOptions())
	if res.Status != StatusSkipped || res.Reason != "not accepted" {
		t.Fatalf("expected foreign suffix to be skipped, got %+v", res)
	}
	if got := readTestFile(t, java); got != unformatted {
		t.Fatalf("skipped file must not be modified")
	}
}

func TestFormatPathEmptyRoot(t *testing.T) {
	if _, err := FormatPath(context.Background(), "  ", DefaultOptions()); !errors.Is(err, ErrNoTarget) {
		t.Fatalf("expected ErrNoTarget, got %v", err)
	}
}

func TestFormatPathContinuesAfterAccessError(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "A.cls")
	last := filepath.Join(dir, "Z.cls")
	writeTestFile(t, first, unformatted)
	writeTestFile(t, last, unformatted)

	// A symlink loop cannot be stat'd, even by root.
	loopA := filepath.Join(dir, "M.cls")
	loopB := filepath.Join(dir, "N.cls")
	if err := os.Symlink(loopB, loopA); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}
	if err := os.Symlink(loopA, loopB); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	report, err := FormatPath(context.Background(), dir, DefaultOptions())
	if err != nil {
		t.Fatalf("FormatPath returned error: %v", err)
	}
	if !report.HasErrors() {
		t.Fatalf("expected failed results, got %+v", report.Results)
	}
	var failedCount int
	for _, res := range report.Results {
		if res.Status != StatusFailed {
			continue
		}
		failedCount++
		var ae *AccessError
		if !errors.As(res.Err, &ae) || ae.Op != "stat" {
			t.Fatalf("expected stat AccessError, got %v", res.Err)
		}
	}
	if failedCount != 2 {
		t.Fatalf("expected 2 failed paths, got %d", failedCount)
	}
	for _, p := range []string{first, last} {
		if got := readTestFile(t, p); got != formatted {
			t.Fatalf("sibling %s not formatted: %q", p, got)
		}
	}
}

func TestFormatPathUnreadableFile(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission bits are not enforced for root")
	}
	dir := t.TempDir()
	locked := filepath.Join(dir, "A.cls")
	sibling := filepath.Join(dir, "B.cls")
	writeTestFile(t, locked, unformatted)
	writeTestFile(t, sibling, unformatted)
	if err := os.Chmod(locked, 0o000); err != nil {
		t.Fatalf("chmod failed: %v", err)
	}
	t.Cleanup(func() { _ = os.Chmod(locked, 0o644) })

	report, err := FormatPath(context.Background(), dir, DefaultOptions())
	if err != nil {
		t.Fatalf("FormatPath returned error: %v", err)
	}
	if report.Results[0].Status != StatusFailed {
		t.Fatalf("expected first result to fail, got %+v", report.Results[0])
	}
	var ae *AccessError
	if !errors.As(report.Results[0].Err, &ae) || ae.Op != "read" {
		t.Fatalf("expected read AccessError, got %v", report.Results[0].Err)
	}
	if got := readTestFile(t, sibling); got != formatted {
		t.Fatalf("sibling not formatted: %q", got)
	}
}

func TestFormatPathCheckDoesNotWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "A.trigger")
	writeTestFile(t, path, unformatted)

	opts := DefaultOptions()
	opts.Check = true
	report, err := FormatPath(context.Background(), path, opts)
	if err != nil {
		t.Fatalf("FormatPath returned error: %v", err)
	}
	if !report.HasChanges() {
		t.Fatalf("expected check to report changes")
	}
	if got := readTestFile(t, path); got != unformatted {
		t.Fatalf("check mode must not write, got %q", got)
	}
}

func TestFormatPathStdout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "A.cls")
	writeTestFile(t, path, unformatted)

	opts := DefaultOptions()
	opts.Stdout = true
	report, err := FormatPath(context.Background(), path, opts)
	if err != nil {
		t.Fatalf("FormatPath returned error: %v", err)
	}
	if string(report.Results[0].Formatted) != formatted {
		t.Fatalf("unexpected stdout payload: %q", report.Results[0].Formatted)
	}
	if got := readTestFile(t, path); got != unformatted {
		t.Fatalf("stdout mode must not write, got %q", got)
	}
}

func TestFormatPathParallelKeepsOrder(t *testing.T) {
	dir := t.TempDir()
	var want []string
	for _, name := range []string{"a", "b", "c", "d", "e", "f", "g", "h"} {
		p := filepath.Join(dir, name+".cls")
		writeTestFile(t, p, unformatted)
		want = append(want, p)
	}

	opts := DefaultOptions()
	opts.Jobs = 4
	report, err := FormatPath(context.Background(), dir, opts)
	if err != nil {
		t.Fatalf("FormatPath returned error: %v", err)
	}
	if got := report.Files(); !slices.Equal(got, want) {
		t.Fatalf("expected discovery order %q, got %q", want, got)
	}
	if report.Count(StatusFormatted) != len(want) {
		t.Fatalf("expected all files formatted, got %+v", report.Results)
	}
}

func TestFormatPathCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := FormatPath(ctx, t.TempDir(), DefaultOptions()); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestFormatPathKeepsFileMode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "A.cls")
	writeTestFile(t, path, unformatted)
	if err := os.Chmod(path, 0o600); err != nil {
		t.Fatalf("chmod failed: %v", err)
	}

	if _, err := FormatPath(context.Background(), path, DefaultOptions()); err != nil {
		t.Fatalf("FormatPath returned error: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat failed: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("expected mode 0600, got %o", info.Mode().Perm())
	}
	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Fatalf("atomic write left temp files behind: %d entries", len(entries))
	}
}

func TestFormatFileKeepsSymlink(t *testing.T) {
	dir := t.TempDir()
	realPath := filepath.Join(dir, "real", "Real.cls")
	writeTestFile(t, realPath, unformatted)
	link := filepath.Join(dir, "Link.cls")
	if err := os.Symlink(realPath, link); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	res := FormatFile(context.Background(), link, DefaultOptions())
	if res.Err != nil || res.Status != StatusFormatted {
		t.Fatalf("expected link to be formatted, got %+v", res)
	}
	info, err := os.Lstat(link)
	if err != nil {
		t.Fatalf("lstat failed: %v", err)
	}
	if info.Mode()&os.ModeSymlink == 0 {
		t.Fatalf("expected %s to stay a symlink", link)
	}
	if got := readTestFile(t, realPath); got != formatted {
		t.Fatalf("expected link target to be formatted, got %q", got)
	}
	entries, _ := os.ReadDir(filepath.Dir(realPath))
	if len(entries) != 1 {
		t.Fatalf("atomic write left temp files next to the target: %d entries", len(entries))
	}
}

func TestAccessErrorMessageDoesNotRepeatPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "A.cls")
	_, statErr := os.Stat(path)
	err := accessError("stat", path, statErr)

	msg := err.Error()
	if strings.Count(msg, path) != 1 {
		t.Fatalf("expected path exactly once in %q", msg)
	}
	if !strings.HasPrefix(msg, "stat "+path+": ") {
		t.Fatalf("unexpected message %q", msg)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected wrapped cause to be preserved")
	}
}

func TestFormatPathSymlinkCycle(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, filepath.Join(dir, "src", "A.cls"), unformatted)
	if err := os.Symlink(dir, filepath.Join(dir, "src", "loop")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	report, err := FormatPath(context.Background(), dir, DefaultOptions())
	if err != nil {
		t.Fatalf("FormatPath returned error: %v", err)
	}
	if len(report.Results) != 1 {
		t.Fatalf("expected the file once, got %q", report.Files())
	}
}

func TestProgressEvents(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, filepath.Join(dir, "A.cls"), unformatted)

	plan, err := Discover(context.Background(), dir, DefaultOptions())
	if err != nil {
		t.Fatalf("Discover returned error: %v", err)
	}
	events := make(chan ProgressEvent, 16)
	if _, err := plan.WithProgress(ChannelSink{Ch: events}).Run(context.Background()); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	close(events)

	var statuses []string
	for ev := range events {
		statuses = append(statuses, string(ev.Status))
	}
	if got := strings.Join(statuses, ","); got != "queued,working,done" {
		t.Fatalf("unexpected event sequence %q", got)
	}
}

func TestOptionsValidate(t *testing.T) {
	opts := DefaultOptions()
	opts.Extensions = []string{"cls"}
	if err := opts.Validate(); err == nil {
		t.Fatalf("expected error for extension without dot")
	}
	opts = DefaultOptions()
	opts.Check, opts.Stdout = true, true
	if err := opts.Validate(); err == nil {
		t.Fatalf("expected error for check+stdout")
	}
}
