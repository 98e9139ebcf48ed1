package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/skilltree/internal/skilltree"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	v, err := New("")
	require.NoError(t, err)
	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, DefaultFile, cfg.File)
	assert.Equal(t, skilltree.PolicyCascade, cfg.Policy)
	assert.Empty(t, cfg.DB)
	assert.True(t, cfg.History.Enabled)
	assert.Equal(t, DefaultHistoryKeep, cfg.History.Keep)
}

func TestLoad_FileInConfigDir(t *testing.T) {
	home := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", home)
	dir := filepath.Join(home, "skilltree")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(`
file: math.json
policy: leaf-only
history:
  keep: 3
  enabled: false
`), 0o644))

	v, err := New("")
	require.NoError(t, err)
	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, "math.json", cfg.File)
	assert.Equal(t, skilltree.PolicyLeafOnly, cfg.Policy)
	assert.Equal(t, 3, cfg.History.Keep)
	assert.False(t, cfg.History.Enabled)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("policy: leaf-only\n"), 0o644))
	t.Setenv("SKILLTREE_POLICY", "cascade")
	t.Setenv("SKILLTREE_HISTORY_KEEP", "7")

	v, err := New(path)
	require.NoError(t, err)
	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, skilltree.PolicyCascade, cfg.Policy)
	assert.Equal(t, 7, cfg.History.Keep)
}

func TestNew_ExplicitMissingFile(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoad_Invalid(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	t.Run("policy", func(t *testing.T) {
		v, err := New("")
		require.NoError(t, err)
		v.Set(KeyPolicy, "sideways")
		_, err = Load(v)
		assert.Error(t, err)
	})

	t.Run("keep", func(t *testing.T) {
		v, err := New("")
		require.NoError(t, err)
		v.Set(KeyHistoryKeep, -1)
		_, err = Load(v)
		assert.Error(t, err)
	})
}

func TestWriteDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "skilltree", "config.yaml")

	created, err := WriteDefault(path)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = WriteDefault(path)
	require.NoError(t, err)
	assert.False(t, created)

	v, err := New(path)
	require.NoError(t, err)
	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, skilltree.PolicyCascade, cfg.Policy)
	assert.Equal(t, DefaultHistoryKeep, cfg.History.Keep)
}

func TestXDGDirs(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/data")
	t.Setenv("XDG_STATE_HOME", "/state")

	data, err := DataDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/data", "skilltree"), data)

	state, err := StateDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/state", "skilltree"), state)
}
