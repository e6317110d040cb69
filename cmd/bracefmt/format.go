package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"bracefmt/internal/driver"
	"bracefmt/internal/i18n"
	"bracefmt/internal/trace"
)

var fmtCmd = &cobra.Command{
	Use:   "fmt [flags] <path>",
	Short: "Reformat Apex sources to Allman brace style",
	Long: `Reformat a file, or every .cls/.trigger file below a directory, in place.
Unreadable paths are reported and skipped; the run continues.`,
	Args: cobra.ExactArgs(1),
	RunE: runFmt,
}

func init() {
	fmtCmd.Flags().Bool("check", false, "report files that need formatting without rewriting them")
	fmtCmd.Flags().Bool("stdout", false, "print formatted code to stdout instead of rewriting files")
	fmtCmd.Flags().String("format", "text", "output format (text|json|yaml)")
	fmtCmd.Flags().BoolP("verbose", "v", false, "also list unchanged files")
	addConfigFlags(fmtCmd)
}

var (
	errFmtFailed  = errors.New("fmt: failed to format some files")
	errFmtChanges = errors.New("fmt: formatting changes required")
)

func runFmt(cmd *cobra.Command, args []string) error {
	target := args[0]
	if strings.TrimSpace(target) == "" {
		return driver.ErrNoTarget
	}
	cmd.SilenceUsage = true

	check, err := cmd.Flags().GetBool("check")
	if err != nil {
		return err
	}
	writeToStdout, err := cmd.Flags().GetBool("stdout")
	if err != nil {
		return err
	}
	outputFormat, err := cmd.Flags().GetString("format")
	if err != nil {
		return err
	}
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		return err
	}
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return err
	}
	timings, err := cmd.Root().PersistentFlags().GetBool("timings")
	if err != nil {
		return err
	}
	uiValue, err := cmd.Root().PersistentFlags().GetString("ui")
	if err != nil {
		return err
	}
	mode, err := readUIMode(uiValue)
	if err != nil {
		return err
	}

	if writeToStdout && check {
		return fmt.Errorf("fmt: --stdout cannot be used with --check")
	}
	switch outputFormat {
	case "text", "json", "yaml":
	default:
		return fmt.Errorf("fmt: unsupported output format %q (expected text|json|yaml)", outputFormat)
	}
	if writeToStdout && outputFormat != "text" {
		return fmt.Errorf("fmt: --stdout is only supported with text output")
	}

	cfg, err := resolveConfig(cmd, target)
	if err != nil {
		return err
	}
	opts := driverOptions(cmd, cfg)
	opts.Check = check
	opts.Stdout = writeToStdout

	ctx := cmd.Context()
	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopeRun, "fmt", 0).WithExtra("target", target)
	ctx = trace.WithSpan(ctx, span)

	plan, err := driver.Discover(ctx, target, opts)
	if err != nil {
		span.End(err.Error())
		return err
	}

	var report *driver.Report
	uc := uiContext{tty: stdoutIsTerminal(), stdout: writeToStdout, quiet: quiet, files: len(plan.Files())}
	if outputFormat == "text" && shouldUseTUI(mode, uc) {
		report, err = runPlanWithUI(ctx, "bracefmt "+target, plan)
	} else {
		report, err = plan.Run(ctx)
	}
	span.End(fmt.Sprintf("%d files", len(report.Results)))

	loc := newLocalizer()
	out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()
	switch {
	case writeToStdout:
		renderFmtStdout(out, errOut, loc, report)
	case outputFormat == "json":
		if encErr := renderFmtJSON(out, report, check, timings); encErr != nil {
			return encErr
		}
	case outputFormat == "yaml":
		if encErr := renderFmtYAML(out, report, check, timings); encErr != nil {
			return encErr
		}
	default:
		renderFmtText(out, errOut, loc, report, textOptions{check: check, quiet: quiet, verbose: verbose})
		if timings {
			printTimings(errOut, report.Timing)
		}
	}

	// interrupted: the report holds what was done before the signal
	if err != nil {
		return err
	}
	if report.HasErrors() {
		cmd.SilenceErrors = true
		return errFmtFailed
	}
	if check && report.HasChanges() {
		cmd.SilenceErrors = true
		return errFmtChanges
	}
	return nil
}

func newLocalizer() i18n.Localizer {
	return i18n.NewCatalog(i18n.DetectLanguage(os.LookupEnv))
}
