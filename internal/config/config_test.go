package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.Equal(t, 30*time.Second, cfg.Storage.BusyTimeout)
	require.Equal(t, "sqlite3", cfg.Storage.Driver)
	require.Contains(t, cfg.Ingest.IgnoreDirs, "node_modules")
	require.Equal(t, 5*time.Second, cfg.Snapshot.DebounceWindow)
}

func TestLoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "kotadb.yaml")
	require.NoError(t, os.WriteFile(path, []byte("storage:\n  path: /tmp/x.db\n  driver: modernc\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "/tmp/x.db", cfg.Storage.Path)
	require.Equal(t, "modernc", cfg.Storage.Driver)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv(envDBPath, "/env/path.db")
	t.Setenv(envCacheSizeKB, "1024")

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "/env/path.db", cfg.Storage.Path)
	require.Equal(t, 1024, cfg.Storage.CacheSizeKB)
}

func TestEnvOverrideDoesNotClobberExplicitPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "kotadb.yaml")
	require.NoError(t, os.WriteFile(path, []byte("storage:\n  path: /explicit.db\n"), 0o644))
	t.Setenv(envDBPath, "/env/path.db")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "/explicit.db", cfg.Storage.Path)
}
