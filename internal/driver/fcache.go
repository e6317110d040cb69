package driver

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// Current schema version - increment when FingerprintEntry format changes
const fingerprintSchemaVersion uint16 = 1

// FingerprintCache remembers, per file, the digest of content that is
// already formatted so later runs can skip the reflow.
// Thread-safe for concurrent access.
type FingerprintCache struct {
	mu  sync.RWMutex
	dir string
}

// FingerprintEntry is the msgpack payload stored for one file.
type FingerprintEntry struct {
	Schema  uint16
	Options [32]byte // format.Options fingerprint
	Digest  [32]byte // sha256 of the formatted content
	Lines   uint32
}

// OpenFingerprintCache initializes a cache at the standard per-user location.
func OpenFingerprintCache(app string) (*FingerprintCache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	return NewFingerprintCache(filepath.Join(base, app))
}

// NewFingerprintCache initializes a cache rooted at dir.
func NewFingerprintCache(dir string) (*FingerprintCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FingerprintCache{dir: dir}, nil
}

// Dir returns the cache directory.
func (c *FingerprintCache) Dir() string {
	if c == nil {
		return ""
	}
	return c.dir
}

func (c *FingerprintCache) pathFor(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	key := sha256.Sum256([]byte(filepath.ToSlash(path)))
	return filepath.Join(c.dir, "files", hex.EncodeToString(key[:])+".mp")
}

// Put serializes and writes an entry for path.
func (c *FingerprintCache) Put(path string, entry *FingerprintEntry) error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(path)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		// after a successful rename the temp name is already gone
		_ = os.Remove(f.Name())
	}()

	if err := msgpack.NewEncoder(f).Encode(entry); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), p)
}

// Get reads the entry for path.
func (c *FingerprintCache) Get(path string, out *FingerprintEntry) (bool, error) {
	if c == nil {
		return false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(path))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	defer f.Close()

	if err := msgpack.NewDecoder(f).Decode(out); err != nil {
		return false, err
	}
	return true, nil
}

// Fresh reports whether the file at path, whose current content hashes to
// digest, is known to be formatted under the given options fingerprint.
func (c *FingerprintCache) Fresh(path string, digest, fingerprint [32]byte) bool {
	if c == nil {
		return false
	}
	var entry FingerprintEntry
	ok, err := c.Get(path, &entry)
	if err != nil || !ok {
		return false
	}
	return entry.Schema == fingerprintSchemaVersion &&
		entry.Options == fingerprint &&
		entry.Digest == digest
}

// DropAll invalidates the cache.
func (c *FingerprintCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	old := c.dir + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(c.dir, old); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if err := os.RemoveAll(old); err != nil {
		return err
	}
	return os.MkdirAll(c.dir, 0o755)
}
