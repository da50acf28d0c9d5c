package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jayminwest/kotadb-index/internal/model"
)

// InsertReference inserts one Reference row, same replace-the-whole-set
// discipline as symbols (spec.md §4.5).
func InsertReference(ctx context.Context, exec Execer, r *model.Reference) error {
	_, err := exec.ExecContext(ctx, `
		INSERT INTO indexed_references (id, file_id, repository_id, symbol_name, target_symbol_id,
		       target_file_path, line_number, column_number, reference_type, metadata, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, datetime('now'))
	`, r.ID, r.FileID, r.RepositoryID, r.SymbolName, nullStringPtr(r.TargetSymbolID),
		nullStringPtr(r.TargetFilePath), r.LineNumber, r.ColumnNumber, string(r.Type),
		marshalJSON(r.Metadata))
	if err != nil {
		return fmt.Errorf("insert reference %s: %w", r.SymbolName, err)
	}
	return nil
}

// DeleteReferencesForFile removes every reference recorded for a file,
// ahead of a re-index pass inserting its replacement set.
func DeleteReferencesForFile(ctx context.Context, exec Execer, fileID string) error {
	_, err := exec.ExecContext(ctx, `DELETE FROM indexed_references WHERE file_id = ?`, fileID)
	return err
}

// ListReferencesByFile returns every reference recorded in a file.
func ListReferencesByFile(ctx context.Context, db *sql.DB, fileID string) ([]*model.Reference, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, file_id, repository_id, symbol_name, target_symbol_id, target_file_path,
		       line_number, column_number, reference_type, metadata
		FROM indexed_references WHERE file_id = ? ORDER BY line_number`, fileID)
	if err != nil {
		return nil, fmt.Errorf("list references: %w", err)
	}
	defer rows.Close()
	return scanReferences(rows)
}

// ListReferencesBySymbol returns every reference targeting a given symbol
// id (used by the dependency graph's symbol_usage edges).
func ListReferencesBySymbol(ctx context.Context, db *sql.DB, symbolID string) ([]*model.Reference, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, file_id, repository_id, symbol_name, target_symbol_id, target_file_path,
		       line_number, column_number, reference_type, metadata
		FROM indexed_references WHERE target_symbol_id = ?`, symbolID)
	if err != nil {
		return nil, fmt.Errorf("list references by symbol: %w", err)
	}
	defer rows.Close()
	return scanReferences(rows)
}

// ListImportReferences returns every import/re_export/export_all/dynamic_import
// reference in a repository, the subset internal/graph builds file_import
// edges from.
func ListImportReferences(ctx context.Context, db *sql.DB, repositoryID string) ([]*model.Reference, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, file_id, repository_id, symbol_name, target_symbol_id, target_file_path,
		       line_number, column_number, reference_type, metadata
		FROM indexed_references
		WHERE repository_id = ? AND reference_type IN ('import', 're_export', 'export_all', 'dynamic_import')`,
		repositoryID)
	if err != nil {
		return nil, fmt.Errorf("list import references: %w", err)
	}
	defer rows.Close()
	return scanReferences(rows)
}

func scanReferences(rows *sql.Rows) ([]*model.Reference, error) {
	var out []*model.Reference
	for rows.Next() {
		var r model.Reference
		var refType string
		var targetSymbolID, targetFilePath sql.NullString
		var metadata string
		if err := rows.Scan(&r.ID, &r.FileID, &r.RepositoryID, &r.SymbolName, &targetSymbolID,
			&targetFilePath, &r.LineNumber, &r.ColumnNumber, &refType, &metadata); err != nil {
			return nil, fmt.Errorf("scan reference: %w", err)
		}
		r.Type = model.ReferenceType(refType)
		r.TargetSymbolID = stringPtr(targetSymbolID)
		r.TargetFilePath = stringPtr(targetFilePath)
		unmarshalJSON(metadata, &r.Metadata)
		out = append(out, &r)
	}
	return out, rows.Err()
}

// UpdateReferenceTarget sets a reference's resolved target symbol id,
// called once the symbol table has been fully populated and cross-file
// linkage can be resolved (spec.md §4.4).
func UpdateReferenceTarget(ctx context.Context, exec Execer, referenceID, targetSymbolID string) error {
	_, err := exec.ExecContext(ctx, `UPDATE indexed_references SET target_symbol_id = ? WHERE id = ?`,
		targetSymbolID, referenceID)
	return err
}
