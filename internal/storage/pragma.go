package storage

import (
	"database/sql"
	"fmt"

	"github.com/jayminwest/kotadb-index/internal/config"
	"github.com/jayminwest/kotadb-index/internal/logging"
)

// applyWriterPragmas sets the pragmas the spec requires on the writer
// connection (spec.md §4.1): WAL journal mode, synchronous=NORMAL, a
// configurable busy timeout, foreign keys on, memory temp store, an mmap
// region, and a negative cache_size interpreted as kilobytes. Grounded on
// the teacher's NewLocalStore pragma sequence (internal/store/local_core.go),
// generalized with the configurable sizes this spec calls for.
func applyWriterPragmas(db *sql.DB, cfg config.StorageConfig) error {
	stmts := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		fmt.Sprintf("PRAGMA busy_timeout = %d", cfg.BusyTimeout.Milliseconds()),
		"PRAGMA foreign_keys = ON",
		"PRAGMA temp_store = MEMORY",
		fmt.Sprintf("PRAGMA mmap_size = %d", cfg.MmapSizeBytes),
		fmt.Sprintf("PRAGMA cache_size = -%d", cfg.CacheSizeKB),
	}
	return execPragmas(db, stmts)
}

// applyReaderPragmas sets the pragmas a read-only connection can safely
// apply: cache_size and mmap_size are shared with the writer; WAL mode and
// foreign-key enforcement are writer-only concerns a reader cannot (and
// need not) set (spec.md §4.1: "Reader connections skip WAL/foreign-key
// pragmas they cannot set read-only but share cache and mmap settings").
func applyReaderPragmas(db *sql.DB, cfg config.StorageConfig) error {
	stmts := []string{
		fmt.Sprintf("PRAGMA busy_timeout = %d", cfg.BusyTimeout.Milliseconds()),
		"PRAGMA temp_store = MEMORY",
		fmt.Sprintf("PRAGMA mmap_size = %d", cfg.MmapSizeBytes),
		fmt.Sprintf("PRAGMA cache_size = -%d", cfg.CacheSizeKB),
	}
	return execPragmas(db, stmts)
}

func execPragmas(db *sql.DB, stmts []string) error {
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			logging.Get(logging.CategoryStorage).Warnw("pragma failed", "stmt", stmt, "err", err)
			return fmt.Errorf("pragma %q: %w", stmt, err)
		}
	}
	return nil
}
