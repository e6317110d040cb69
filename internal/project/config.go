// Package project loads bracefmt configuration: defaults, the nearest
// bracefmt.toml, an optional .env next to it, then BRACEFMT_* variables.
package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"bracefmt/internal/driver"
	"bracefmt/internal/format"
)

// Environment variables that override the manifest.
const (
	EnvTabWidth   = "BRACEFMT_TAB_WIDTH"
	EnvExtensions = "BRACEFMT_EXTENSIONS"
	EnvJobs       = "BRACEFMT_JOBS"
	EnvAtomic     = "BRACEFMT_ATOMIC"
)

// Config is the resolved configuration of a run.
type Config struct {
	Format FormatConfig `toml:"format"`
	Run    RunConfig    `toml:"run"`

	// ManifestPath is the bracefmt.toml that was read, if any.
	ManifestPath string `toml:"-"`
}

// FormatConfig is the [format] table.
type FormatConfig struct {
	TabWidth   int      `toml:"tab_width"`
	Extensions []string `toml:"extensions"`
}

// RunConfig is the [run] table.
type RunConfig struct {
	Jobs   int  `toml:"jobs"`
	Atomic bool `toml:"atomic"`
	Cache  bool `toml:"cache"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Format: FormatConfig{
			TabWidth:   format.DefaultTabWidth,
			Extensions: append([]string(nil), driver.DefaultExtensions...),
		},
		Run: RunConfig{
			Jobs:   1,
			Atomic: true,
			Cache:  true,
		},
	}
}

// Load resolves the configuration for a run started at startDir.
func Load(startDir string) (Config, error) {
	cfg := Default()

	manifestPath, ok, err := FindManifest(startDir)
	if err != nil {
		return Config{}, err
	}
	if ok {
		if err := decodeManifest(manifestPath, &cfg); err != nil {
			return Config{}, err
		}
		cfg.ManifestPath = manifestPath
		if err := loadDotEnv(filepath.Join(filepath.Dir(manifestPath), ".env")); err != nil {
			return Config{}, err
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		if cfg.ManifestPath != "" {
			return Config{}, fmt.Errorf("%s: %w", cfg.ManifestPath, err)
		}
		return Config{}, err
	}
	return cfg, nil
}

func decodeManifest(path string, cfg *Config) error {
	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	return nil
}

// loadDotEnv reads path if it exists. Variables already set in the
// environment win over the file.
func loadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvTabWidth); ok && strings.TrimSpace(v) != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s: %w", EnvTabWidth, err)
		}
		c.Format.TabWidth = n
	}
	if v, ok := lookup(EnvExtensions); ok && strings.TrimSpace(v) != "" {
		c.Format.Extensions = SplitList(v)
	}
	if v, ok := lookup(EnvJobs); ok && strings.TrimSpace(v) != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s: %w", EnvJobs, err)
		}
		c.Run.Jobs = n
	}
	if v, ok := lookup(EnvAtomic); ok && strings.TrimSpace(v) != "" {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s: %w", EnvAtomic, err)
		}
		c.Run.Atomic = b
	}
	return nil
}

// SplitList splits a comma-separated list, dropping empty items.
func SplitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Validate reports values that cannot be used.
func (c Config) Validate() error {
	if err := c.FormatOptions().Validate(); err != nil {
		return err
	}
	if len(c.Format.Extensions) == 0 {
		return errors.New("[format].extensions must not be empty")
	}
	for _, ext := range c.Format.Extensions {
		if !strings.HasPrefix(ext, ".") || len(ext) < 2 {
			return fmt.Errorf("[format].extensions: invalid extension %q", ext)
		}
	}
	if c.Run.Jobs < 1 {
		return fmt.Errorf("[run].jobs must be >= 1, got %d", c.Run.Jobs)
	}
	return nil
}

// FormatOptions returns the reflow options of the config.
func (c Config) FormatOptions() format.Options {
	return format.Options{TabWidth: c.Format.TabWidth}
}

// DriverOptions returns driver options for the config. Mode flags (check,
// stdout), the cache handle and the progress sink are set by the caller.
func (c Config) DriverOptions() driver.Options {
	return driver.Options{
		Format:     c.FormatOptions(),
		Extensions: append([]string(nil), c.Format.Extensions...),
		Atomic:     c.Run.Atomic,
		Jobs:       c.Run.Jobs,
	}
}
