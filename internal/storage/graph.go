package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jayminwest/kotadb-index/internal/model"
)

// InsertDependencyEdge inserts one directed edge into dependency_graph.
func InsertDependencyEdge(ctx context.Context, exec Execer, e *model.DependencyEdge) error {
	_, err := exec.ExecContext(ctx, `
		INSERT INTO dependency_graph (id, repository_id, from_file_id, to_file_id,
		       from_symbol_id, to_symbol_id, dependency_type, metadata)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, e.ID, e.RepositoryID, nullStringPtr(e.FromFileID), nullStringPtr(e.ToFileID),
		nullStringPtr(e.FromSymbolID), nullStringPtr(e.ToSymbolID), string(e.Type), marshalJSON(e.Metadata))
	if err != nil {
		return fmt.Errorf("insert dependency edge: %w", err)
	}
	return nil
}

// DeleteEdgesFromFile removes every outbound edge originating at a file,
// ahead of a re-index pass inserting its replacement edge set.
func DeleteEdgesFromFile(ctx context.Context, exec Execer, fileID string) error {
	_, err := exec.ExecContext(ctx, `DELETE FROM dependency_graph WHERE from_file_id = ?`, fileID)
	return err
}

// ListEdgesByRepository returns every dependency edge in a repository, the
// input internal/graph builds its adjacency maps from.
func ListEdgesByRepository(ctx context.Context, db *sql.DB, repositoryID string) ([]*model.DependencyEdge, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, repository_id, from_file_id, to_file_id, from_symbol_id, to_symbol_id,
		       dependency_type, metadata
		FROM dependency_graph WHERE repository_id = ?`, repositoryID)
	if err != nil {
		return nil, fmt.Errorf("list dependency edges: %w", err)
	}
	defer rows.Close()

	var out []*model.DependencyEdge
	for rows.Next() {
		var e model.DependencyEdge
		var depType string
		var fromFile, toFile, fromSym, toSym sql.NullString
		var metadata sql.NullString
		if err := rows.Scan(&e.ID, &e.RepositoryID, &fromFile, &toFile, &fromSym, &toSym,
			&depType, &metadata); err != nil {
			return nil, fmt.Errorf("scan dependency edge: %w", err)
		}
		e.Type = model.DependencyType(depType)
		e.FromFileID = stringPtr(fromFile)
		e.ToFileID = stringPtr(toFile)
		e.FromSymbolID = stringPtr(fromSym)
		e.ToSymbolID = stringPtr(toSym)
		unmarshalJSON(metadata.String, &e.Metadata)
		out = append(out, &e)
	}
	return out, rows.Err()
}
