package format

import (
	"crypto/sha256"
	"fmt"
	"strconv"
)

// rulesVersion is bumped whenever the reflow rules change output, so
// fingerprints of previously formatted files stop matching.
const rulesVersion = 1

const (
	// DefaultTabWidth is the number of spaces a tab expands to.
	DefaultTabWidth = 4
	// MaxTabWidth bounds the configurable tab width.
	MaxTabWidth = 16
)

// Options configures a formatting pass.
type Options struct {
	TabWidth int
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{TabWidth: DefaultTabWidth}
}

func (o Options) withDefaults() Options {
	if o.TabWidth == 0 {
		o.TabWidth = DefaultTabWidth
	}
	return o
}

// Validate reports options that cannot be applied.
func (o Options) Validate() error {
	if o.TabWidth < 1 || o.TabWidth > MaxTabWidth {
		return fmt.Errorf("format: tab width %d out of range 1..%d", o.TabWidth, MaxTabWidth)
	}
	return nil
}

// Fingerprint identifies the output produced by these options and the
// current rule set.
func (o Options) Fingerprint() [32]byte {
	o = o.withDefaults()
	return sha256.Sum256([]byte("allman/" + strconv.Itoa(rulesVersion) + "/tab=" + strconv.Itoa(o.TabWidth)))
}
