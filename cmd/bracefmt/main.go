// Package main implements the bracefmt CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"bracefmt/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "bracefmt",
	Short: "Allman-style brace reformatter for Apex sources",
	Long: `bracefmt rewrites .cls and .trigger files so that every opening brace
sits on its own line, with tabs expanded and blank-line runs collapsed.`,
	PersistentPreRunE: setupRun,
}

// runCleanup flushes the tracer and stops the profilers installed by setupRun.
var runCleanup = func() {}

func init() {
	rootCmd.AddCommand(fmtCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)

	// Глобальные флаги
	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Bool("quiet", false, "suppress non-essential output")
	rootCmd.PersistentFlags().Bool("timings", false, "show timing information")
	rootCmd.PersistentFlags().String("ui", "auto", "progress UI (auto|on|off)")
	rootCmd.PersistentFlags().String("trace", "", "write trace events to file (- for stderr)")
	rootCmd.PersistentFlags().String("trace-level", "off", "trace level (off|error|phase|detail|debug)")
	rootCmd.PersistentFlags().String("cpu-profile", "", "write a CPU profile to file")
	rootCmd.PersistentFlags().String("mem-profile", "", "write a heap profile to file on exit")
}

// main executes the root command under a context cancelled by SIGINT/SIGTERM.
// If command execution returns an error, the process exits with status code 1.
func main() {
	rootCmd.Version = version.Version

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	runCleanup()
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func setupRun(cmd *cobra.Command, _ []string) error {
	if err := applyColorMode(cmd); err != nil {
		return err
	}
	stopTrace, err := setupTracing(cmd)
	if err != nil {
		return err
	}
	stopProfiles, err := setupProfiling(cmd)
	if err != nil {
		stopTrace()
		return err
	}
	runCleanup = func() {
		stopProfiles()
		stopTrace()
		runCleanup = func() {}
	}
	return nil
}

func applyColorMode(cmd *cobra.Command) error {
	mode, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return err
	}
	switch mode {
	case "on":
		color.NoColor = false
	case "off":
		color.NoColor = true
	case "auto", "":
		color.NoColor = !isTerminal(os.Stdout)
	default:
		return fmt.Errorf("invalid --color value %q (expected auto|on|off)", mode)
	}
	return nil
}

// isTerminal проверяет, является ли файл терминалом
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
