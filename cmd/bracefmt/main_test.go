package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"bracefmt/internal/driver"
	"bracefmt/internal/i18n"
)

type echoLocalizer struct{}

func (echoLocalizer) Sprintf(key i18n.Key, args ...any) string {
	parts := []string{string(key)}
	for _, a := range args {
		parts = append(parts, fmt.Sprint(a))
	}
	return strings.Join(parts, " ")
}

func noColor(t *testing.T) {
	t.Helper()
	orig := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = orig })
}

func sampleReport() *driver.Report {
	return &driver.Report{
		Root: "src",
		Results: []driver.Result{
			{Path: "src/A.cls", Status: driver.StatusFormatted, Changed: true},
			{Path: "src/B.cls", Status: driver.StatusUnchanged},
			{Path: "src/C.cls", Status: driver.StatusFailed, Err: &driver.AccessError{Op: "read", Path: "src/C.cls", Err: os.ErrPermission}},
		},
		Skips: []driver.Result{
			{Path: "src/notes.txt", Status: driver.StatusSkipped, Reason: "not accepted"},
			{Path: "src/gone.cls", Status: driver.StatusSkipped, Reason: "missing"},
		},
		Skipped: 2,
	}
}

func TestReadUIMode(t *testing.T) {
	for in, want := range map[string]uiMode{"": uiModeAuto, "AUTO": uiModeAuto, "on": uiModeOn, " off ": uiModeOff} {
		got, err := readUIMode(in)
		if err != nil || got != want {
			t.Fatalf("readUIMode(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := readUIMode("sometimes"); err == nil {
		t.Fatalf("expected error for invalid mode")
	}
}

func TestShouldUseTUI(t *testing.T) {
	tty := uiContext{tty: true, files: 3}
	if !shouldUseTUI(uiModeAuto, tty) {
		t.Fatalf("expected auto mode to use the UI on a terminal with several files")
	}
	single := tty
	single.files = 1
	if shouldUseTUI(uiModeAuto, single) {
		t.Fatalf("expected no UI for a single file")
	}
	quiet := tty
	quiet.quiet = true
	if shouldUseTUI(uiModeAuto, quiet) {
		t.Fatalf("expected no UI in quiet mode")
	}
	if shouldUseTUI(uiModeOn, uiContext{stdout: true}) {
		t.Fatalf("expected no UI when formatted code goes to stdout")
	}
	if !shouldUseTUI(uiModeOn, uiContext{}) {
		t.Fatalf("expected --ui on to force the UI")
	}
	if shouldUseTUI(uiModeOff, tty) {
		t.Fatalf("expected --ui off to disable the UI")
	}
}

func TestRenderFmtText(t *testing.T) {
	noColor(t)
	var out, errOut bytes.Buffer
	renderFmtText(&out, &errOut, echoLocalizer{}, sampleReport(), textOptions{})

	if got := out.String(); got != "formatted src/A.cls\n" {
		t.Fatalf("unexpected stdout %q", got)
	}
	if !strings.Contains(errOut.String(), "failed src/C.cls") {
		t.Fatalf("expected failure line on stderr, got %q", errOut.String())
	}
}

func TestRenderFmtTextVerboseAndCheck(t *testing.T) {
	noColor(t)
	var out, errOut bytes.Buffer
	renderFmtText(&out, &errOut, echoLocalizer{}, sampleReport(), textOptions{check: true, verbose: true})

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	want := []string{"would_format src/A.cls", "unchanged src/B.cls", "summary 1 1 1 2"}
	if len(lines) != len(want) {
		t.Fatalf("expected %d lines, got %q", len(want), lines)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Fatalf("line %d: expected %q, got %q", i, want[i], lines[i])
		}
	}
}

func TestRenderFmtTextHidesSkippedResults(t *testing.T) {
	noColor(t)
	report := &driver.Report{Root: "src", Results: []driver.Result{
		{Path: "src/Gone.cls", Status: driver.StatusSkipped, Reason: "missing"},
	}}
	var out, errOut bytes.Buffer
	renderFmtText(&out, &errOut, echoLocalizer{}, report, textOptions{verbose: true})
	if got := strings.TrimSpace(out.String()); got != "summary 0 0 0 1" {
		t.Fatalf("expected only the summary, got %q", got)
	}
}

func TestRenderFmtTextQuietKeepsErrors(t *testing.T) {
	noColor(t)
	var out, errOut bytes.Buffer
	renderFmtText(&out, &errOut, echoLocalizer{}, sampleReport(), textOptions{quiet: true, verbose: true})
	if out.Len() != 0 {
		t.Fatalf("expected nothing on stdout, got %q", out.String())
	}
	if errOut.Len() == 0 {
		t.Fatalf("expected errors on stderr in quiet mode")
	}
}

func TestRenderFmtJSON(t *testing.T) {
	var out bytes.Buffer
	if err := renderFmtJSON(&out, sampleReport(), true, false); err != nil {
		t.Fatalf("render: %v", err)
	}
	var payload fmtPayload
	if err := json.Unmarshal(out.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !payload.Check || len(payload.Files) != 3 || payload.Summary.Skipped != 2 {
		t.Fatalf("unexpected payload %+v", payload)
	}
	if payload.Files[2].Error == "" || payload.Files[0].Status != "formatted" {
		t.Fatalf("unexpected files %+v", payload.Files)
	}
	if len(payload.Skipped) != 2 || payload.Skipped[1].Reason != "missing" || payload.Skipped[0].Status != "skipped" {
		t.Fatalf("unexpected skipped entries %+v", payload.Skipped)
	}
	if payload.Timings != nil {
		t.Fatalf("expected no timings without --timings")
	}
}

func TestRenderFmtYAML(t *testing.T) {
	var out bytes.Buffer
	if err := renderFmtYAML(&out, sampleReport(), false, true); err != nil {
		t.Fatalf("render: %v", err)
	}
	var payload map[string]any
	if err := yaml.Unmarshal(out.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload["root"] != "src" {
		t.Fatalf("expected root src, got %v", payload["root"])
	}
	if _, ok := payload["timings"]; !ok {
		t.Fatalf("expected timings section, got %v", payload)
	}
}

func executeRoot(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("BRACEFMT_LANG", "en")
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	runCleanup()
	return out.String(), errOut.String(), err
}

func TestFmtCommandRewritesTree(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "A.cls")
	if err := os.WriteFile(path, []byte("class A {\n\tif (x) {\n\t}\n}\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	out, _, err := executeRoot(t, "fmt", "--no-cache", "--ui", "off", "--color", "off", dir)
	if err != nil {
		t.Fatalf("fmt: %v", err)
	}
	if !strings.Contains(out, "formatted "+path) {
		t.Fatalf("expected confirmation line, got %q", out)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	want := "class A\n{\n    if (x)\n    {\n    }\n}\n"
	if string(got) != want {
		t.Fatalf("expected %q, got %q", want, got)
	}

	_, _, err = executeRoot(t, "fmt", "--no-cache", "--check", "--ui", "off", "--color", "off", dir)
	if err != nil {
		t.Fatalf("expected formatted tree to pass --check, got %v", err)
	}
}

func TestFmtCommandRequiresPath(t *testing.T) {
	_, _, err := executeRoot(t, "fmt")
	if err == nil {
		t.Fatalf("expected error without a path")
	}
}

func TestErrorsAreDistinct(t *testing.T) {
	if errors.Is(errFmtFailed, errFmtChanges) {
		t.Fatalf("expected distinct sentinel errors")
	}
}
