package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"bracefmt/internal/driver"
	"bracefmt/internal/project"
	"bracefmt/internal/trace"
)

// addConfigFlags registers the flags that override bracefmt.toml.
func addConfigFlags(cmd *cobra.Command) {
	cmd.Flags().Int("tab-width", 0, "spaces per tab (overrides [format].tab_width)")
	cmd.Flags().StringSlice("ext", nil, "accepted file suffix, repeatable (overrides [format].extensions)")
	cmd.Flags().Int("jobs", 0, "parallel workers (overrides [run].jobs)")
	cmd.Flags().Bool("no-cache", false, "do not use the fingerprint cache")
	cmd.Flags().Bool("no-atomic", false, "rewrite files in place instead of temp file + rename")
}

// resolveConfig loads the project configuration for target and applies
// the flags that were set explicitly.
func resolveConfig(cmd *cobra.Command, target string) (project.Config, error) {
	cfg, err := project.Load(target)
	if err != nil {
		return cfg, err
	}
	flags := cmd.Flags()
	if flags.Changed("tab-width") {
		if cfg.Format.TabWidth, err = flags.GetInt("tab-width"); err != nil {
			return cfg, err
		}
	}
	if flags.Changed("ext") {
		exts, err := flags.GetStringSlice("ext")
		if err != nil {
			return cfg, err
		}
		cfg.Format.Extensions = exts
	}
	if flags.Changed("jobs") {
		if cfg.Run.Jobs, err = flags.GetInt("jobs"); err != nil {
			return cfg, err
		}
	}
	if noCache, _ := flags.GetBool("no-cache"); noCache {
		cfg.Run.Cache = false
	}
	if noAtomic, _ := flags.GetBool("no-atomic"); noAtomic {
		cfg.Run.Atomic = false
	}
	if err := cfg.Validate(); err != nil {
		if cfg.ManifestPath != "" {
			return cfg, fmt.Errorf("%s: %w", cfg.ManifestPath, err)
		}
		return cfg, err
	}
	return cfg, nil
}

// driverOptions turns cfg into driver options and opens the cache when it
// is enabled. A cache that cannot be opened is traced and skipped.
func driverOptions(cmd *cobra.Command, cfg project.Config) driver.Options {
	opts := cfg.DriverOptions()
	if !cfg.Run.Cache {
		return opts
	}
	cache, err := driver.OpenFingerprintCache("bracefmt")
	if err != nil {
		trace.Error(trace.FromContext(cmd.Context()), trace.ScopeRun, "cache", err)
		return opts
	}
	opts.Cache = cache
	return opts
}
