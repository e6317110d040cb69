package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{EnvTabWidth, EnvExtensions, EnvJobs, EnvAtomic} {
		t.Setenv(k, "")
	}
}

func TestLoadDefaultsWithoutManifest(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, Default().Format, cfg.Format)
	assert.Equal(t, 1, cfg.Run.Jobs)
	assert.True(t, cfg.Run.Atomic)
}

func TestLoadManifestFromParent(t *testing.T) {
	clearEnv(t)
	root := t.TempDir()
	manifest := "[format]\ntab_width = 2\nextensions = [\".cls\"]\n\n[run]\njobs = 3\natomic = false\n"
	require.NoError(t, os.WriteFile(filepath.Join(root, ManifestName), []byte(manifest), 0o644))
	nested := filepath.Join(root, "force-app", "main", "classes")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	cfg, err := Load(nested)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(root, ManifestName), cfg.ManifestPath)
	assert.Equal(t, 2, cfg.Format.TabWidth)
	assert.Equal(t, []string{".cls"}, cfg.Format.Extensions)
	assert.Equal(t, 3, cfg.Run.Jobs)
	assert.False(t, cfg.Run.Atomic)

	opts := cfg.DriverOptions()
	assert.Equal(t, 2, opts.Format.TabWidth)
	assert.True(t, opts.Accepts("A.cls"))
	assert.False(t, opts.Accepts("T.trigger"))
}

func TestLoadSkipsUnreachableCandidates(t *testing.T) {
	clearEnv(t)
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, ManifestName), []byte("[format]\ntab_width = 2\n"), 0o644))
	loop := filepath.Join(root, "loop")
	if err := os.Symlink(loop, loop); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	cfg, err := Load(loop)
	require.NoError(t, err, "a looping target must not fail config lookup")
	assert.Equal(t, filepath.Join(root, ManifestName), cfg.ManifestPath)
	assert.Equal(t, 2, cfg.Format.TabWidth)
}

func TestLoadManifestFromFilePath(t *testing.T) {
	clearEnv(t)
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, ManifestName), []byte("[format]\ntab_width = 8\n"), 0o644))
	file := filepath.Join(root, "A.cls")
	require.NoError(t, os.WriteFile(file, []byte("x;\n"), 0o644))

	cfg, err := Load(file)
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.Format.TabWidth)
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	clearEnv(t)
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, ManifestName), []byte("[format]\ntabwidth = 2\n"), 0o644))

	_, err := Load(root)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown keys")
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	clearEnv(t)
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, ManifestName), []byte("[format]\ntab_width = 0\n"), 0o644))

	_, err := Load(root)
	require.Error(t, err)
	assert.Contains(t, err.Error(), ManifestName)
}

func TestEnvOverridesManifest(t *testing.T) {
	clearEnv(t)
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, ManifestName), []byte("[format]\ntab_width = 2\n"), 0o644))
	t.Setenv(EnvTabWidth, "3")
	t.Setenv(EnvExtensions, ".cls, .trigger ,.apex")
	t.Setenv(EnvAtomic, "false")

	cfg, err := Load(root)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Format.TabWidth)
	assert.Equal(t, []string{".cls", ".trigger", ".apex"}, cfg.Format.Extensions)
	assert.False(t, cfg.Run.Atomic)
}

func TestEnvRejectsGarbage(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvJobs, "many")
	_, err := Load(t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), EnvJobs)
}

func TestDotEnvNextToManifest(t *testing.T) {
	clearEnv(t)
	os.Unsetenv(EnvJobs)
	t.Cleanup(func() { os.Unsetenv(EnvJobs) })

	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, ManifestName), []byte("[run]\njobs = 1\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, ".env"), []byte(EnvJobs+"=6\n"), 0o644))

	cfg, err := Load(root)
	require.NoError(t, err)
	assert.Equal(t, 6, cfg.Run.Jobs)
}

func TestWriteDefault(t *testing.T) {
	clearEnv(t)
	dir := filepath.Join(t.TempDir(), "proj")

	path, err := WriteDefault(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, ManifestName), path)

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, Default().Format, cfg.Format)
	assert.Equal(t, Default().Run, cfg.Run)

	_, err = WriteDefault(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already initialized")
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, SplitList(" a,, b ,"))
	assert.Nil(t, SplitList(" , "))
}
