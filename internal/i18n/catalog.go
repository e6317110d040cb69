// Package i18n holds the console messages of bracefmt.
//
// Bundles are YAML files embedded in the binary. A Catalog loads them on the
// first lookup, exactly once, and serves translated strings through an
// x/text message printer. Callers depend on the Localizer interface so tests
// can pass a fixed bundle.
package i18n

import (
	"embed"
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
	"gopkg.in/yaml.v3"
)

// Key identifies a message.
type Key string

// Message keys used by the CLI.
const (
	MsgFormatted   Key = "formatted"
	MsgUnchanged   Key = "unchanged"
	MsgWouldFormat Key = "would_format"
	MsgFailed      Key = "failed"
	MsgSummary     Key = "summary"
	MsgNoFiles     Key = "no_files"
	MsgInitialized Key = "initialized"
	MsgWatching    Key = "watching"
)

// Localizer renders a message for key with printf-style arguments.
type Localizer interface {
	Sprintf(key Key, args ...any) string
}

// Bundles maps a BCP 47 tag to its key/message table.
type Bundles map[string]map[string]string

//go:embed locales/*.yaml
var embedded embed.FS

// Catalog is a lazily loaded message catalog for one language.
type Catalog struct {
	want language.Tag
	load func() (Bundles, error)

	once    sync.Once
	printer *message.Printer
	err     error
}

// NewCatalog returns a catalog over the embedded bundles.
func NewCatalog(want language.Tag) *Catalog {
	return &Catalog{want: want, load: loadEmbedded}
}

// NewCatalogFromBundles returns a catalog over fixed bundles.
func NewCatalogFromBundles(want language.Tag, bundles Bundles) *Catalog {
	return &Catalog{want: want, load: func() (Bundles, error) { return bundles, nil }}
}

// Sprintf implements Localizer. When loading failed, or key has no
// translation, the key itself is used as the format string.
func (c *Catalog) Sprintf(key Key, args ...any) string {
	c.once.Do(c.init)
	if c.printer == nil {
		return fallback(key, args...)
	}
	return c.printer.Sprintf(string(key), args...)
}

// Err returns the load error, if the catalog has been loaded and failed.
func (c *Catalog) Err() error {
	c.once.Do(c.init)
	return c.err
}

// Language returns the tag messages are rendered in.
func (c *Catalog) Language() language.Tag {
	c.once.Do(c.init)
	return c.want
}

func (c *Catalog) init() {
	bundles, err := c.load()
	if err != nil {
		c.err = fmt.Errorf("i18n: %w", err)
		return
	}

	tags := make([]language.Tag, 0, len(bundles))
	builder := catalog.NewBuilder(catalog.Fallback(language.English))
	for _, name := range sortedKeys(bundles) {
		tag, err := language.Parse(name)
		if err != nil {
			c.err = fmt.Errorf("i18n: bundle %q: %w", name, err)
			return
		}
		tags = append(tags, tag)
		for key, msg := range bundles[name] {
			if err := builder.SetString(tag, key, msg); err != nil {
				c.err = fmt.Errorf("i18n: bundle %q key %q: %w", name, key, err)
				return
			}
		}
	}
	if len(tags) == 0 {
		c.err = fmt.Errorf("i18n: no bundles")
		return
	}

	_, idx, _ := language.NewMatcher(tags).Match(c.want)
	c.want = tags[idx]
	c.printer = message.NewPrinter(c.want, message.Catalog(builder))
}

func loadEmbedded() (Bundles, error) {
	entries, err := embedded.ReadDir("locales")
	if err != nil {
		return nil, err
	}
	bundles := make(Bundles, len(entries))
	for _, entry := range entries {
		data, err := embedded.ReadFile(path.Join("locales", entry.Name()))
		if err != nil {
			return nil, err
		}
		table := make(map[string]string)
		if err := yaml.Unmarshal(data, &table); err != nil {
			return nil, fmt.Errorf("%s: %w", entry.Name(), err)
		}
		bundles[strings.TrimSuffix(entry.Name(), path.Ext(entry.Name()))] = table
	}
	return bundles, nil
}

func fallback(key Key, args ...any) string {
	if len(args) == 0 {
		return string(key)
	}
	return fmt.Sprint(append([]any{string(key) + ":"}, args...)...)
}

func sortedKeys(b Bundles) []string {
	keys := make([]string, 0, len(b))
	for k := range b {
		keys = append(keys, k)
	}
	// en first so it wins ties in the matcher
	sort.Slice(keys, func(i, j int) bool {
		if (keys[i] == "en") != (keys[j] == "en") {
			return keys[i] == "en"
		}
		return keys[i] < keys[j]
	})
	return keys
}
