package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"bracefmt/internal/driver"
	"bracefmt/internal/i18n"
	"bracefmt/internal/observ"
)

var (
	changedColor = color.New(color.FgGreen)
	pendingColor = color.New(color.FgYellow)
	errorColor   = color.New(color.FgRed, color.Bold)
	faintColor   = color.New(color.Faint)
)

type textOptions struct {
	check   bool
	quiet   bool
	verbose bool
}

func renderFmtText(out, errOut io.Writer, loc i18n.Localizer, report *driver.Report, opts textOptions) {
	if len(report.Results) == 0 && !opts.quiet {
		fmt.Fprintln(errOut, loc.Sprintf(i18n.MsgNoFiles, report.Root))
		return
	}
	for _, res := range report.Results {
		switch {
		case res.Err != nil:
			errorColor.Fprintln(errOut, loc.Sprintf(i18n.MsgFailed, res.Path, res.Err))
		case opts.quiet, res.Status == driver.StatusSkipped:
			// errors only; skips are counted in the summary
		case res.Changed && opts.check:
			pendingColor.Fprintln(out, loc.Sprintf(i18n.MsgWouldFormat, res.Path))
		case res.Changed:
			changedColor.Fprintln(out, loc.Sprintf(i18n.MsgFormatted, res.Path))
		case opts.verbose:
			faintColor.Fprintln(out, loc.Sprintf(i18n.MsgUnchanged, res.Path))
		}
	}
	if opts.verbose && !opts.quiet {
		s := summarize(report)
		fmt.Fprintln(out, loc.Sprintf(i18n.MsgSummary, s.Formatted, s.Unchanged, s.Failed, s.Skipped))
	}
}

func renderFmtStdout(out, errOut io.Writer, loc i18n.Localizer, report *driver.Report) {
	for _, res := range report.Results {
		if res.Err != nil {
			errorColor.Fprintln(errOut, loc.Sprintf(i18n.MsgFailed, res.Path, res.Err))
			continue
		}
		_, _ = out.Write(res.Formatted)
	}
}

type fmtSummary struct {
	Formatted int `json:"formatted" yaml:"formatted"`
	Unchanged int `json:"unchanged" yaml:"unchanged"`
	Failed    int `json:"failed" yaml:"failed"`
	Skipped   int `json:"skipped" yaml:"skipped"`
}

type fmtFile struct {
	Path    string `json:"path" yaml:"path"`
	Status  string `json:"status" yaml:"status"`
	Changed bool   `json:"changed" yaml:"changed"`
	Cached  bool   `json:"cached,omitempty" yaml:"cached,omitempty"`
	Reason  string `json:"reason,omitempty" yaml:"reason,omitempty"`
	Error   string `json:"error,omitempty" yaml:"error,omitempty"`
}

type fmtPayload struct {
	Root    string         `json:"root" yaml:"root"`
	Check   bool           `json:"check" yaml:"check"`
	Files   []fmtFile      `json:"files" yaml:"files"`
	Skipped []fmtFile      `json:"skipped,omitempty" yaml:"skipped,omitempty"`
	Summary fmtSummary     `json:"summary" yaml:"summary"`
	Timings *observ.Report `json:"timings,omitempty" yaml:"timings,omitempty"`
}

func summarize(report *driver.Report) fmtSummary {
	return fmtSummary{
		Formatted: report.Count(driver.StatusFormatted),
		Unchanged: report.Count(driver.StatusUnchanged),
		Failed:    report.Count(driver.StatusFailed),
		Skipped:   report.Count(driver.StatusSkipped),
	}
}

func buildPayload(report *driver.Report, check, timings bool) fmtPayload {
	payload := fmtPayload{
		Root:    report.Root,
		Check:   check,
		Files:   make([]fmtFile, 0, len(report.Results)),
		Summary: summarize(report),
	}
	for _, res := range report.Results {
		payload.Files = append(payload.Files, toFmtFile(res))
	}
	for _, res := range report.Skips {
		payload.Skipped = append(payload.Skipped, toFmtFile(res))
	}
	if timings {
		t := report.Timing
		payload.Timings = &t
	}
	return payload
}

func toFmtFile(res driver.Result) fmtFile {
	f := fmtFile{Path: res.Path, Status: string(res.Status), Changed: res.Changed, Cached: res.Cached, Reason: res.Reason}
	if res.Err != nil {
		f.Error = res.Err.Error()
	}
	return f
}

func renderFmtJSON(out io.Writer, report *driver.Report, check, timings bool) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(buildPayload(report, check, timings))
}

func renderFmtYAML(out io.Writer, report *driver.Report, check, timings bool) error {
	encoder := yaml.NewEncoder(out)
	encoder.SetIndent(2)
	if err := encoder.Encode(buildPayload(report, check, timings)); err != nil {
		return err
	}
	return encoder.Close()
}
