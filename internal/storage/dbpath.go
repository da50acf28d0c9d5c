package storage

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	envDBPath          = "KOTADB_DB_PATH"
	defaultRelativeDir = ".kotadb"
	defaultDBFile      = "kotadb.db"
)

var vcsMarkers = []string{".git", ".hg", ".svn"}

// ResolvePath turns a configured database path into the path the pool
// opens. ":memory:" and "file:" URIs (such as shared-cache in-memory DSNs)
// pass through unchanged. Otherwise it follows the precedence spec.md §4.1
// sets: an explicit non-empty path wins outright (a relative one is joined
// to the current working directory), otherwise KOTADB_DB_PATH as given,
// otherwise "<project root>/.kotadb/kotadb.db", which fails with
// FindProjectRoot's error when there is no project root.
func ResolvePath(configured string) (string, error) {
	if configured == ":memory:" || isSharedMemoryDSN(configured) {
		return configured, nil
	}
	if configured != "" {
		if filepath.IsAbs(configured) {
			return configured, nil
		}
		root, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("resolve cwd: %w", err)
		}
		return filepath.Join(root, configured), nil
	}
	if env := os.Getenv(envDBPath); env != "" {
		return env, nil
	}

	root, err := FindProjectRoot(".")
	if err != nil {
		return "", err
	}
	return filepath.Join(root, defaultRelativeDir, defaultDBFile), nil
}

func isSharedMemoryDSN(path string) bool {
	return len(path) >= 5 && path[:5] == "file:"
}

// FindProjectRoot walks upward from start looking for the nearest ancestor
// carrying a VCS marker directory (.git, .hg, .svn). It returns an error if
// no marker is found before reaching the filesystem root.
func FindProjectRoot(start string) (string, error) {
	abs, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("resolve start dir: %w", err)
	}

	dir := abs
	for {
		for _, marker := range vcsMarkers {
			if info, err := os.Stat(filepath.Join(dir, marker)); err == nil && info.IsDir() {
				return dir, nil
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("no project root (.git, .hg or .svn) found at or above %s: "+
				"configure an explicit database path, set %s, or run from inside a project", abs, envDBPath)
		}
		dir = parent
	}
}
