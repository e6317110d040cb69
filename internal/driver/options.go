package driver

import (
	"fmt"
	"runtime"
	"strings"

	"bracefmt/internal/format"
)

// DefaultExtensions are the suffixes of Apex class and trigger files.
var DefaultExtensions = []string{".cls", ".trigger"}

// Options configures a formatting run.
type Options struct {
	Format     format.Options
	Extensions []string // accepted suffixes, case-sensitive
	Check      bool     // report changes without writing
	Stdout     bool     // return formatted bytes without writing
	Atomic     bool     // write via temp file + rename
	Jobs       int      // parallel per-file workers; <=0 means 1
	Cache      *FingerprintCache
	Progress   ProgressSink
}

// DefaultOptions returns the reference configuration: sequential, atomic
// writes, default extensions and tab width.
func DefaultOptions() Options {
	return Options{
		Format:     format.DefaultOptions(),
		Extensions: append([]string(nil), DefaultExtensions...),
		Atomic:     true,
		Jobs:       1,
	}
}

// Validate reports options that cannot be applied.
func (o Options) Validate() error {
	if err := o.Format.Validate(); err != nil {
		return err
	}
	if len(o.Extensions) == 0 {
		return fmt.Errorf("driver: no accepted extensions")
	}
	for _, ext := range o.Extensions {
		if !strings.HasPrefix(ext, ".") || len(ext) < 2 {
			return fmt.Errorf("driver: invalid extension %q (expected .suffix)", ext)
		}
	}
	if o.Check && o.Stdout {
		return fmt.Errorf("driver: check and stdout modes are exclusive")
	}
	return nil
}

// Accepts reports whether name ends in one of the accepted suffixes.
func (o Options) Accepts(name string) bool {
	for _, ext := range o.Extensions {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}

func (o Options) jobs(files int) int {
	jobs := o.Jobs
	if jobs <= 0 {
		jobs = 1
	}
	jobs = min(jobs, runtime.GOMAXPROCS(0)*4)
	return max(1, min(jobs, files))
}
