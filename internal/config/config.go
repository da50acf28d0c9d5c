// Package config holds kotadb-index's configuration, loaded from an
// optional YAML file plus environment variable overrides, in the shape of
// the teacher's internal/config package (struct-per-concern, DefaultConfig,
// applyEnvOverrides).
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration object for the indexing core.
type Config struct {
	Storage  StorageConfig  `yaml:"storage"`
	Ingest   IngestConfig   `yaml:"ingest"`
	Snapshot SnapshotConfig `yaml:"snapshot"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// StorageConfig controls the embedded SQL engine (spec.md §4.1, §6.5).
type StorageConfig struct {
	// Path is the explicit database file path. Empty means resolve via
	// KOTADB_DB_PATH then the project-local default (spec.md §4.1).
	Path             string        `yaml:"path"`
	BusyTimeout      time.Duration `yaml:"busy_timeout"`
	CacheSizeKB      int           `yaml:"cache_size_kb"` // negative cache_size interpreted as KB
	MmapSizeBytes    int64         `yaml:"mmap_size_bytes"`
	ReaderCount      int           `yaml:"reader_count"` // 0 = runtime.NumCPU()
	Driver           string        `yaml:"driver"`        // "sqlite3" (cgo, default) or "modernc"
}

// IngestConfig controls the ingestion orchestrator and file discovery
// (spec.md §4.7, §6.2).
type IngestConfig struct {
	IgnoreDirs     []string `yaml:"ignore_dirs"`
	IgnoreGlobs    []string `yaml:"ignore_globs"`
	WorkerCount    int      `yaml:"worker_count"` // 0 = runtime.NumCPU()
	MaxFileBytes   int64    `yaml:"max_file_bytes"`
	PathAliasesCfg string   `yaml:"path_aliases_config"` // explicit tsconfig path override
}

// SnapshotConfig controls export/import of JSON-lines snapshots (spec.md
// §4.9, §6.4, §6.5).
type SnapshotConfig struct {
	Directory       string              `yaml:"directory"`
	DebounceWindow  time.Duration       `yaml:"debounce_window"`
	Tables          []string            `yaml:"tables"`
	SensitiveFields map[string][]string `yaml:"sensitive_fields"` // table -> field names to drop
}

// LoggingConfig controls the categorized logger (spec.md §2 ambient stack).
type LoggingConfig struct {
	Verbose    bool `yaml:"verbose"`
	JSONFormat bool `yaml:"json_format"`
}

const (
	envDBPath       = "KOTADB_DB_PATH"
	envSnapshotDir  = "KOTADB_SNAPSHOT_DIR"
	envBusyTimeout  = "KOTADB_BUSY_TIMEOUT_MS"
	envCacheSizeKB  = "KOTADB_CACHE_SIZE_KB"
	envMmapBytes    = "KOTADB_MMAP_SIZE_BYTES"
)

// DefaultIgnoreDirs are excluded by default during discovery (spec.md §6.2:
// "version-control metadata, dependency caches, build outputs").
var DefaultIgnoreDirs = []string{
	".git", ".hg", ".svn",
	"node_modules", "vendor", ".kotadb",
	"dist", "build", "out", ".next", ".turbo", "coverage",
}

// DefaultTables are the tables snapshot export/import operate over by
// default (spec.md §4.9).
var DefaultTables = []string{
	"repositories", "indexed_files", "indexed_symbols",
	"indexed_references", "dependency_graph", "projects", "project_repositories",
}

// Default returns the configuration applied when no file is supplied.
func Default() *Config {
	return &Config{
		Storage: StorageConfig{
			BusyTimeout:   30 * time.Second,
			CacheSizeKB:   64 * 1024, // ~64 MiB, per spec.md §4.1
			MmapSizeBytes: 256 * 1024 * 1024,
			Driver:        "sqlite3",
		},
		Ingest: IngestConfig{
			IgnoreDirs:   DefaultIgnoreDirs,
			MaxFileBytes: 10 * 1024 * 1024,
		},
		Snapshot: SnapshotConfig{
			Directory:      ".kotadb/snapshots",
			DebounceWindow: 5 * time.Second,
			Tables:         DefaultTables,
		},
	}
}

// Load reads path (if non-empty) as YAML over the default configuration,
// then applies environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	cfg.applyEnvOverrides()
	return cfg, nil
}

// applyEnvOverrides overlays recognized environment variables onto cfg, in
// the shape of the teacher's Config.applyEnvOverrides. KOTADB_DB_PATH only
// fills an empty Storage.Path, so an explicit path is not clobbered; the
// other variables replace whatever value the defaults or the file set.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(envDBPath); v != "" && c.Storage.Path == "" {
		c.Storage.Path = v
	}
	if v := os.Getenv(envSnapshotDir); v != "" {
		c.Snapshot.Directory = v
	}
	if v := os.Getenv(envBusyTimeout); v != "" {
		if d, err := time.ParseDuration(v + "ms"); err == nil {
			c.Storage.BusyTimeout = d
		}
	}
	if v := os.Getenv(envCacheSizeKB); v != "" {
		var n int
		if _, err := fmt.Sscanf(v, "%d", &n); err == nil {
			c.Storage.CacheSizeKB = n
		}
	}
	if v := os.Getenv(envMmapBytes); v != "" {
		var n int64
		if _, err := fmt.Sscanf(v, "%d", &n); err == nil {
			c.Storage.MmapSizeBytes = n
		}
	}
}
