package storage

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"io/fs"
	"sort"

	"github.com/jayminwest/kotadb-index/internal/logging"
)

// MigrationResult summarizes one RunMigrations pass (spec.md §4.1: "the
// migration runner reports how many migrations applied, how many were
// already applied with a checksum mismatch, and any execution errors").
type MigrationResult struct {
	Applied []string
	Drift   []string
	Errors  []error
}

// RunMigrations applies every schema/*.sql file embedded in the binary that
// has not yet been recorded in schema_migrations, in filename order, inside
// a single IMMEDIATE transaction per the BeadsLog migration idiom this is
// grounded on (other_examples 355fe713 migrations.go). Already-applied
// migrations are checksummed against the embedded file content; a mismatch
// is reported as drift rather than silently re-applied, since re-running a
// mutated migration against a database that already has its original
// effects could corrupt the schema.
func RunMigrations(ctx context.Context, db *sql.DB) (MigrationResult, error) {
	timer := logging.StartTimer(logging.CategoryMigration, "RunMigrations")
	defer timer.Stop()

	var result MigrationResult

	names, err := migrationNames()
	if err != nil {
		return result, err
	}

	if _, err := db.ExecContext(ctx, "CREATE TABLE IF NOT EXISTS schema_migrations ("+
		"id INTEGER PRIMARY KEY AUTOINCREMENT, name TEXT NOT NULL UNIQUE, "+
		"applied_at TEXT NOT NULL DEFAULT(datetime('now')), checksum TEXT)"); err != nil {
		return result, fmt.Errorf("ensure schema_migrations: %w", err)
	}

	applied, err := appliedChecksums(ctx, db)
	if err != nil {
		return result, err
	}

	if _, err := db.ExecContext(ctx, "BEGIN IMMEDIATE"); err != nil {
		return result, fmt.Errorf("begin migration transaction: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_, _ = db.ExecContext(ctx, "ROLLBACK")
		}
	}()

	for _, name := range names {
		body, err := fs.ReadFile(schemaFS, "schema/"+name)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("read %s: %w", name, err))
			continue
		}
		sum := checksum(body)

		if priorSum, ok := applied[name]; ok {
			if priorSum != sum {
				result.Drift = append(result.Drift, name)
				logging.Get(logging.CategoryMigration).Warnw("migration checksum drift",
					"migration", name, "recorded", priorSum, "current", sum)
			}
			continue
		}

		if _, err := db.ExecContext(ctx, string(body)); err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("apply %s: %w", name, err))
			continue
		}
		if _, err := db.ExecContext(ctx,
			"INSERT INTO schema_migrations(name, checksum) VALUES (?, ?)", name, sum); err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("record %s: %w", name, err))
			continue
		}
		result.Applied = append(result.Applied, name)
	}

	if len(result.Errors) > 0 {
		return result, fmt.Errorf("%d migration(s) failed: %w", len(result.Errors), result.Errors[0])
	}

	if _, err := db.ExecContext(ctx, "COMMIT"); err != nil {
		return result, fmt.Errorf("commit migrations: %w", err)
	}
	committed = true
	return result, nil
}

// migrationNames lists the embedded schema files in lexical order, which is
// also NNN-ascending order given the zero-padded filename convention.
func migrationNames() ([]string, error) {
	entries, err := fs.ReadDir(schemaFS, "schema")
	if err != nil {
		return nil, fmt.Errorf("read schema dir: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

func appliedChecksums(ctx context.Context, db *sql.DB) (map[string]string, error) {
	result := map[string]string{}

	var exists int
	if err := db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_migrations'").Scan(&exists); err != nil {
		return nil, fmt.Errorf("check schema_migrations: %w", err)
	}
	if exists == 0 {
		return result, nil
	}

	rows, err := db.QueryContext(ctx, "SELECT name, checksum FROM schema_migrations")
	if err != nil {
		return nil, fmt.Errorf("read schema_migrations: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var name string
		var sum sql.NullString
		if err := rows.Scan(&name, &sum); err != nil {
			return nil, fmt.Errorf("scan schema_migrations row: %w", err)
		}
		result[name] = sum.String
	}
	return result, rows.Err()
}

func checksum(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}
