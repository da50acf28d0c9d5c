package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jayminwest/kotadb-index/internal/model"
)

// InsertSymbol inserts one Symbol row. Symbols are immutable per indexing
// pass; re-indexing a file replaces its whole symbol set rather than
// updating individual rows (spec.md §4.5).
func InsertSymbol(ctx context.Context, exec Execer, s *model.Symbol) error {
	_, err := exec.ExecContext(ctx, `
		INSERT INTO indexed_symbols (id, file_id, repository_id, name, kind, line_start, line_end,
		       column_start, column_end, signature, documentation, metadata, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, datetime('now'))
	`, s.ID, s.FileID, s.RepositoryID, s.Name, string(s.Kind), s.LineStart, s.LineEnd,
		s.ColumnStart, s.ColumnEnd, nullStringPtr(s.Signature), nullStringPtr(s.Documentation),
		marshalJSON(s.Metadata))
	if err != nil {
		return fmt.Errorf("insert symbol %s: %w", s.Name, err)
	}
	return nil
}

// DeleteSymbolsForFile removes every symbol belonging to a file, ahead of
// a re-index pass inserting its replacement set.
func DeleteSymbolsForFile(ctx context.Context, exec Execer, fileID string) error {
	_, err := exec.ExecContext(ctx, `DELETE FROM indexed_symbols WHERE file_id = ?`, fileID)
	return err
}

// ListSymbolsByFile returns every symbol defined in a file, ordered by
// position.
func ListSymbolsByFile(ctx context.Context, db *sql.DB, fileID string) ([]*model.Symbol, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, file_id, repository_id, name, kind, line_start, line_end,
		       column_start, column_end, signature, documentation, metadata
		FROM indexed_symbols WHERE file_id = ? ORDER BY line_start, column_start`, fileID)
	if err != nil {
		return nil, fmt.Errorf("list symbols: %w", err)
	}
	defer rows.Close()
	return scanSymbols(rows)
}

// FindSymbolByKey looks up a symbol by the three parts of the
// "<file_path>::<name>::<line_start>" symbol key (spec.md §4.4, Open
// Question resolution documented in DESIGN.md). Ingestion does not call it:
// ingest.Run links references to symbols by file path and name only.
func FindSymbolByKey(ctx context.Context, db *sql.DB, repositoryID, filePath, name string, lineStart int) (*model.Symbol, error) {
	row := db.QueryRowContext(ctx, `
		SELECT s.id, s.file_id, s.repository_id, s.name, s.kind, s.line_start, s.line_end,
		       s.column_start, s.column_end, s.signature, s.documentation, s.metadata
		FROM indexed_symbols s
		JOIN indexed_files f ON f.id = s.file_id
		WHERE s.repository_id = ? AND f.path = ? AND s.name = ? AND s.line_start = ?
		LIMIT 1`, repositoryID, filePath, name, lineStart)
	return scanSymbol(row)
}

// FindSymbolsByName returns every symbol in a repository with the given
// name, across all files, used to resolve references when the defining
// line is not known.
func FindSymbolsByName(ctx context.Context, db *sql.DB, repositoryID, name string) ([]*model.Symbol, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, file_id, repository_id, name, kind, line_start, line_end,
		       column_start, column_end, signature, documentation, metadata
		FROM indexed_symbols WHERE repository_id = ? AND name = ?`, repositoryID, name)
	if err != nil {
		return nil, fmt.Errorf("find symbols by name: %w", err)
	}
	defer rows.Close()
	return scanSymbols(rows)
}

func scanSymbols(rows *sql.Rows) ([]*model.Symbol, error) {
	var out []*model.Symbol
	for rows.Next() {
		var s model.Symbol
		var kind string
		var signature, documentation sql.NullString
		var metadata string
		if err := rows.Scan(&s.ID, &s.FileID, &s.RepositoryID, &s.Name, &kind, &s.LineStart, &s.LineEnd,
			&s.ColumnStart, &s.ColumnEnd, &signature, &documentation, &metadata); err != nil {
			return nil, fmt.Errorf("scan symbol: %w", err)
		}
		s.Kind = model.SymbolKind(kind)
		s.Signature = stringPtr(signature)
		s.Documentation = stringPtr(documentation)
		unmarshalJSON(metadata, &s.Metadata)
		out = append(out, &s)
	}
	return out, rows.Err()
}

func scanSymbol(row *sql.Row) (*model.Symbol, error) {
	var s model.Symbol
	var kind string
	var signature, documentation sql.NullString
	var metadata string
	if err := row.Scan(&s.ID, &s.FileID, &s.RepositoryID, &s.Name, &kind, &s.LineStart, &s.LineEnd,
		&s.ColumnStart, &s.ColumnEnd, &signature, &documentation, &metadata); err != nil {
		return nil, err
	}
	s.Kind = model.SymbolKind(kind)
	s.Signature = stringPtr(signature)
	s.Documentation = stringPtr(documentation)
	unmarshalJSON(metadata, &s.Metadata)
	return &s, nil
}
