package driver

import (
	"fmt"
	"os"
	"path/filepath"
)

// writeFile replaces path with data, keeping the permission bits of the
// existing file. In atomic mode the data goes to a temp file in the same
// directory which is then renamed over path. A symlink is resolved first so
// the link stays and its target is rewritten.
func writeFile(path string, data []byte, atomic bool) error {
	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		path = resolved
	}
	mode := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}
	if !atomic {
		return os.WriteFile(path, data, mode)
	}

	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(tmp)
		}
	}()

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Chmod(mode); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	// Атомарная замена
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace: %w", err)
	}
	committed = true
	return nil
}
