package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jayminwest/kotadb-index/internal/model"
)

// UpsertFile inserts or replaces an IndexedFile row, re-syncing its FTS5
// shadow table via the triggers in schema/0001_baseline.sql.
func UpsertFile(ctx context.Context, exec Execer, f *model.IndexedFile) error {
	_, err := exec.ExecContext(ctx, `
		INSERT INTO indexed_files (id, repository_id, path, content, language, size_bytes, content_hash, indexed_at, metadata)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(repository_id, path) DO UPDATE SET
			id=excluded.id, content=excluded.content, language=excluded.language,
			size_bytes=excluded.size_bytes, content_hash=excluded.content_hash,
			indexed_at=excluded.indexed_at, metadata=excluded.metadata
	`,
		f.ID, f.RepositoryID, f.Path, f.Content, nullString(f.Language), f.SizeBytes,
		nullString(f.ContentHash), formatTime(f.IndexedAt), marshalJSON(f.Metadata))
	if err != nil {
		return fmt.Errorf("upsert file %s: %w", f.Path, err)
	}
	return nil
}

// GetFileByPath loads a file by (repository_id, path).
func GetFileByPath(ctx context.Context, db *sql.DB, repositoryID, path string) (*model.IndexedFile, error) {
	row := db.QueryRowContext(ctx, `
		SELECT id, repository_id, path, content, language, size_bytes, content_hash, indexed_at, metadata
		FROM indexed_files WHERE repository_id = ? AND path = ?`, repositoryID, path)
	return scanFile(row)
}

// GetFileByID loads a file by its primary key.
func GetFileByID(ctx context.Context, db *sql.DB, id string) (*model.IndexedFile, error) {
	row := db.QueryRowContext(ctx, `
		SELECT id, repository_id, path, content, language, size_bytes, content_hash, indexed_at, metadata
		FROM indexed_files WHERE id = ?`, id)
	return scanFile(row)
}

func scanFile(row *sql.Row) (*model.IndexedFile, error) {
	var f model.IndexedFile
	var language, contentHash sql.NullString
	var indexedAt, metadata string
	if err := row.Scan(&f.ID, &f.RepositoryID, &f.Path, &f.Content, &language,
		&f.SizeBytes, &contentHash, &indexedAt, &metadata); err != nil {
		return nil, err
	}
	f.Language = language.String
	f.ContentHash = contentHash.String
	f.IndexedAt = parseTime(indexedAt)
	unmarshalJSON(metadata, &f.Metadata)
	return &f, nil
}

// ListFilesByRepository returns every file belonging to a repository,
// ordered by path.
func ListFilesByRepository(ctx context.Context, db *sql.DB, repositoryID string) ([]*model.IndexedFile, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, repository_id, path, content, language, size_bytes, content_hash, indexed_at, metadata
		FROM indexed_files WHERE repository_id = ? ORDER BY path`, repositoryID)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	defer rows.Close()

	var out []*model.IndexedFile
	for rows.Next() {
		var f model.IndexedFile
		var language, contentHash sql.NullString
		var indexedAt, metadata string
		if err := rows.Scan(&f.ID, &f.RepositoryID, &f.Path, &f.Content, &language,
			&f.SizeBytes, &contentHash, &indexedAt, &metadata); err != nil {
			return nil, fmt.Errorf("scan file: %w", err)
		}
		f.Language = language.String
		f.ContentHash = contentHash.String
		f.IndexedAt = parseTime(indexedAt)
		unmarshalJSON(metadata, &f.Metadata)
		out = append(out, &f)
	}
	return out, rows.Err()
}

// RecentFiles returns the N most recently indexed files across a
// repository (spec.md §7's "recent files" query).
func RecentFiles(ctx context.Context, db *sql.DB, repositoryID string, limit int) ([]*model.IndexedFile, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, repository_id, path, content, language, size_bytes, content_hash, indexed_at, metadata
		FROM indexed_files WHERE repository_id = ? ORDER BY indexed_at DESC LIMIT ?`, repositoryID, limit)
	if err != nil {
		return nil, fmt.Errorf("recent files: %w", err)
	}
	defer rows.Close()

	var out []*model.IndexedFile
	for rows.Next() {
		var f model.IndexedFile
		var language, contentHash sql.NullString
		var indexedAt, metadata string
		if err := rows.Scan(&f.ID, &f.RepositoryID, &f.Path, &f.Content, &language,
			&f.SizeBytes, &contentHash, &indexedAt, &metadata); err != nil {
			return nil, fmt.Errorf("scan file: %w", err)
		}
		f.Language = language.String
		f.ContentHash = contentHash.String
		f.IndexedAt = parseTime(indexedAt)
		unmarshalJSON(metadata, &f.Metadata)
		out = append(out, &f)
	}
	return out, rows.Err()
}

// DeleteFile removes a file and, via ON DELETE CASCADE, its symbols and
// references.
func DeleteFile(ctx context.Context, exec Execer, id string) error {
	_, err := exec.ExecContext(ctx, `DELETE FROM indexed_files WHERE id = ?`, id)
	return err
}

// SearchResult is one FTS5 match against indexed_files (spec.md §7).
type SearchResult struct {
	File *model.IndexedFile
	Rank float64
}

// SearchFiles runs query, unmodified, as an FTS5 MATCH expression scoped to
// one repository, ranked by bm25 (spec.md §7: "full text search over file
// contents"). It does no sanitizing of its own; query.SearchFiles quotes
// user input before calling it.
func SearchFiles(ctx context.Context, db *sql.DB, repositoryID, query string, limit int) ([]SearchResult, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT f.id, f.repository_id, f.path, f.content, f.language, f.size_bytes,
		       f.content_hash, f.indexed_at, f.metadata, bm25(indexed_files_fts) AS rank
		FROM indexed_files_fts
		JOIN indexed_files f ON f.rowid = indexed_files_fts.rowid
		WHERE indexed_files_fts MATCH ? AND f.repository_id = ?
		ORDER BY rank LIMIT ?`, query, repositoryID, limit)
	if err != nil {
		return nil, fmt.Errorf("search files: %w", err)
	}
	defer rows.Close()

	var out []SearchResult
	for rows.Next() {
		var f model.IndexedFile
		var language, contentHash sql.NullString
		var indexedAt, metadata string
		var rank float64
		if err := rows.Scan(&f.ID, &f.RepositoryID, &f.Path, &f.Content, &language,
			&f.SizeBytes, &contentHash, &indexedAt, &metadata, &rank); err != nil {
			return nil, fmt.Errorf("scan search result: %w", err)
		}
		f.Language = language.String
		f.ContentHash = contentHash.String
		f.IndexedAt = parseTime(indexedAt)
		unmarshalJSON(metadata, &f.Metadata)
		out = append(out, SearchResult{File: &f, Rank: rank})
	}
	return out, rows.Err()
}
