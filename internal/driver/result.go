package driver

import (
	"bracefmt/internal/observ"
)

// Status is the outcome of processing one path.
type Status string

const (
	// StatusFormatted means the file was rewritten (or would be, in check mode).
	StatusFormatted Status = "formatted"
	// StatusUnchanged means the file already had the formatted content.
	StatusUnchanged Status = "unchanged"
	// StatusFailed means the path hit an AccessError.
	StatusFailed Status = "failed"
	// StatusSkipped means the path is missing or not an accepted file.
	StatusSkipped Status = "skipped"
)

// Result captures the outcome for a single path.
type Result struct {
	Path      string
	Status    Status
	Changed   bool
	Cached    bool // answered from the fingerprint cache
	Err       error
	Reason    string // why a path was skipped
	Formatted []byte // only filled in stdout mode
}

// Report aggregates the results of one run in discovery order.
type Report struct {
	Root    string
	Results []Result
	Skips   []Result // StatusSkipped entries from discovery, in walk order
	Skipped int      // len(Skips)
	Timing  observ.Report
}

// Count returns the number of results with the given status. Skipped
// counts both discovery skips and files skipped at format time.
func (r *Report) Count(status Status) int {
	n := 0
	if status == StatusSkipped {
		n = len(r.Skips)
	}
	for _, res := range r.Results {
		if res.Status == status {
			n++
		}
	}
	return n
}

// HasErrors reports whether any path failed.
func (r *Report) HasErrors() bool { return r.Count(StatusFailed) > 0 }

// HasChanges reports whether any file was (or would be) rewritten.
func (r *Report) HasChanges() bool {
	for _, res := range r.Results {
		if res.Changed {
			return true
		}
	}
	return false
}

// Files returns the paths of every file result, failed ones included.
func (r *Report) Files() []string {
	out := make([]string, 0, len(r.Results))
	for _, res := range r.Results {
		out = append(out, res.Path)
	}
	return out
}
