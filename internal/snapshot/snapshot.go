// Package snapshot exports and imports git-trackable JSON-lines snapshots
// of the indexed tables (spec.md §4.9, §6.4). One file per table, one JSON
// object per line, hash-compared against the last export so an unchanged
// table is never rewritten. Grounded on the teacher's migration checksum
// idiom (internal/storage/migrate.go's sha256 checksum function) for the
// change-detection hash, and on internal/core/mangle_watcher.go's
// debounce-map pattern for the scheduled-export debouncer in debounce.go.
package snapshot

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/jayminwest/kotadb-index/internal/config"
	"github.com/jayminwest/kotadb-index/internal/logging"
	"github.com/jayminwest/kotadb-index/internal/storage"
)

// primaryKeyColumn is "id" for every table spec.md §6.3 defines; there is
// no per-table configuration surface for this, since all exportable tables
// share the same primary key column name.
const primaryKeyColumn = "id"

// Exporter writes JSON-lines snapshots of configured tables to a directory,
// skipping tables whose content hash has not changed since the last export
// (spec.md §4.9).
type Exporter struct {
	pool   *storage.Pool
	dir    string
	tables []string
	drop   map[string][]string
}

// NewExporter builds an Exporter from the storage pool and snapshot
// configuration.
func NewExporter(pool *storage.Pool, cfg config.SnapshotConfig) *Exporter {
	tables := cfg.Tables
	if len(tables) == 0 {
		tables = config.DefaultTables
	}
	return &Exporter{pool: pool, dir: cfg.Directory, tables: tables, drop: cfg.SensitiveFields}
}

// TableResult reports the outcome of exporting one table.
type TableResult struct {
	Table   string
	Rows    int
	Written bool // false if the table's content hash was unchanged
}

// ExportResult is the outcome of one Export call.
type ExportResult struct {
	Tables []TableResult
}

// Export serializes every configured table to <dir>/<table>.jsonl, skipping
// tables whose hash is unchanged, then persists the updated sidecar state
// file (spec.md §4.9, §6.4).
func (e *Exporter) Export(ctx context.Context) (*ExportResult, error) {
	timer := logging.StartTimer(logging.CategorySnapshot, "Export "+e.dir)
	defer timer.Stop()

	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return nil, fmt.Errorf("create snapshot dir %s: %w", e.dir, err)
	}

	state, err := loadState(e.dir)
	if err != nil {
		return nil, err
	}

	result := &ExportResult{}
	for _, table := range e.tables {
		tr, lines, err := e.exportTable(ctx, table)
		if err != nil {
			return nil, fmt.Errorf("export table %s: %w", table, err)
		}

		sum := hashLines(lines)
		if state.LastHashes[table] == sum {
			tr.Written = false
			result.Tables = append(result.Tables, tr)
			continue
		}

		path := filepath.Join(e.dir, table+".jsonl")
		if err := writeLines(path, lines); err != nil {
			return nil, fmt.Errorf("write %s: %w", path, err)
		}
		state.LastHashes[table] = sum
		tr.Written = true
		result.Tables = append(result.Tables, tr)
	}

	state.LastExportAt = time.Now().UTC().Format(time.RFC3339)
	if err := saveState(e.dir, state); err != nil {
		return nil, err
	}
	return result, nil
}

func (e *Exporter) exportTable(ctx context.Context, table string) (TableResult, []string, error) {
	var lines []string
	err := e.pool.Read(ctx, func(ctx context.Context, db *sql.DB) error {
		rows, err := db.QueryContext(ctx, "SELECT * FROM "+table) //nolint:gosec // table comes from fixed config, not user input
		if err != nil {
			return err
		}
		defer rows.Close()

		cols, err := rows.Columns()
		if err != nil {
			return err
		}
		sensitive := toSet(e.drop[table])

		for rows.Next() {
			record, err := scanRow(rows, cols)
			if err != nil {
				return err
			}
			for _, field := range cols {
				if sensitive[field] {
					delete(record, field)
				}
			}
			b, err := json.Marshal(record)
			if err != nil {
				return fmt.Errorf("marshal %s row: %w", table, err)
			}
			lines = append(lines, string(b))
		}
		return rows.Err()
	})
	if err != nil {
		return TableResult{}, nil, err
	}
	return TableResult{Table: table, Rows: len(lines)}, lines, nil
}

// scanRow reads the current row into a column-name-keyed map, decoding
// []byte values to string since both the cgo and pure-Go SQLite drivers
// surface TEXT/BLOB columns that way.
func scanRow(rows *sql.Rows, cols []string) (map[string]interface{}, error) {
	values := make([]interface{}, len(cols))
	ptrs := make([]interface{}, len(cols))
	for i := range values {
		ptrs[i] = &values[i]
	}
	if err := rows.Scan(ptrs...); err != nil {
		return nil, err
	}

	record := make(map[string]interface{}, len(cols))
	for i, col := range cols {
		switch v := values[i].(type) {
		case []byte:
			record[col] = string(v)
		default:
			record[col] = v
		}
	}
	return record, nil
}

func hashLines(lines []string) string {
	h := sha256.New()
	for _, l := range lines {
		h.Write([]byte(l))
		h.Write([]byte("\n"))
	}
	return hex.EncodeToString(h.Sum(nil))
}

func writeLines(path string, lines []string) error {
	var b strings.Builder
	for _, l := range lines {
		b.WriteString(l)
		b.WriteString("\n")
	}
	return os.WriteFile(path, []byte(b.String()), 0o644)
}

func toSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, i := range items {
		set[i] = true
	}
	return set
}

// ImportResult reports per-table import outcomes (spec.md §4.9: "malformed
// lines are skipped with an error captured").
type ImportResult struct {
	Tables []TableImportResult
}

// TableImportResult is the outcome of importing one table's jsonl file.
type TableImportResult struct {
	Table      string
	RowsLoaded int
	Errors     []string
}

// Import reads <dir>/<table>.jsonl for each configured table and applies it
// as INSERT OR REPLACE rows inside one IMMEDIATE transaction per table
// (spec.md §4.9). A table whose file is absent is skipped silently.
func Import(ctx context.Context, pool *storage.Pool, dir string, tables []string) (*ImportResult, error) {
	timer := logging.StartTimer(logging.CategorySnapshot, "Import "+dir)
	defer timer.Stop()

	result := &ImportResult{}
	for _, table := range tables {
		path := filepath.Join(dir, table+".jsonl")
		data, err := os.ReadFile(path)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}

		tr := TableImportResult{Table: table}
		lines := splitLines(string(data))
		records := make([]map[string]interface{}, 0, len(lines))
		for i, line := range lines {
			if strings.TrimSpace(line) == "" {
				continue
			}
			var record map[string]interface{}
			if err := json.Unmarshal([]byte(line), &record); err != nil {
				tr.Errors = append(tr.Errors, fmt.Sprintf("line %d: %v", i+1, err))
				continue
			}
			if _, ok := record[primaryKeyColumn]; !ok {
				tr.Errors = append(tr.Errors, fmt.Sprintf("line %d: missing %s", i+1, primaryKeyColumn))
				continue
			}
			records = append(records, record)
		}

		if len(records) > 0 {
			if err := pool.WriteTransaction(ctx, func(ctx context.Context, conn *sql.Conn) error {
				for _, record := range records {
					if err := upsertRecord(ctx, conn, table, record); err != nil {
						return err
					}
				}
				return nil
			}); err != nil {
				return nil, fmt.Errorf("import table %s: %w", table, err)
			}
		}
		tr.RowsLoaded = len(records)
		result.Tables = append(result.Tables, tr)
	}
	return result, nil
}

func upsertRecord(ctx context.Context, conn *sql.Conn, table string, record map[string]interface{}) error {
	cols := make([]string, 0, len(record))
	for col := range record {
		cols = append(cols, col)
	}
	sort.Strings(cols)

	placeholders := make([]string, len(cols))
	args := make([]interface{}, len(cols))
	for i, col := range cols {
		placeholders[i] = "?"
		args[i] = record[col]
	}

	query := fmt.Sprintf("INSERT OR REPLACE INTO %s (%s) VALUES (%s)",
		table, strings.Join(cols, ", "), strings.Join(placeholders, ", "))
	_, err := conn.ExecContext(ctx, query, args...)
	return err
}

func splitLines(s string) []string {
	s = strings.TrimSuffix(s, "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

// ValidateResult is the outcome of validating a snapshot file without
// mutating the database (spec.md §4.9: "a separate validate(path) returns
// {valid, lineCount, errors[]}").
type ValidateResult struct {
	Valid     bool
	LineCount int
	Errors    []string
}

// Validate checks that every non-empty line in path is well-formed JSON
// containing the primary key field, without writing to the database.
func Validate(path string) (*ValidateResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	result := &ValidateResult{Valid: true}
	for i, line := range splitLines(string(data)) {
		if strings.TrimSpace(line) == "" {
			continue
		}
		result.LineCount++

		var record map[string]interface{}
		if err := json.Unmarshal([]byte(line), &record); err != nil {
			result.Valid = false
			result.Errors = append(result.Errors, fmt.Sprintf("line %d: %v", i+1, err))
			continue
		}
		if _, ok := record[primaryKeyColumn]; !ok {
			result.Valid = false
			result.Errors = append(result.Errors, fmt.Sprintf("line %d: missing %s", i+1, primaryKeyColumn))
		}
	}
	return result, nil
}
