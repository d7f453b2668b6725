package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := Default()
	require.Equal(t, "quiver", cfg.Name)
	require.GreaterOrEqual(t, cfg.Shards, 1)
	require.False(t, cfg.Verbose)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "quiver", cfg.Name)
}

func TestLoadExplicitMissingFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "quiver.yaml")
	want := &Config{Name: "social", Shards: 4, Verbose: true}
	require.NoError(t, Save(want, path))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "social", cfg.Name)
	require.Equal(t, 4, cfg.Shards)
	require.True(t, cfg.Verbose)
}

func TestLoadClampsShards(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quiver.yaml")
	require.NoError(t, os.WriteFile(path, []byte("shards: -2\n"), 0o644))
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 1, cfg.Shards)
}
