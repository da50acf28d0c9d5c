package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jayminwest/kotadb-index/internal/model"
)

// UpsertRepository inserts or replaces a Repository row. Grounded on the
// teacher's write-through-one-connection pattern (internal/store/local_core.go),
// adapted to run over any *sql.DB/*sql.Conn the pool hands it so it works
// both inside WriteTransaction and standalone via Write.
func UpsertRepository(ctx context.Context, exec Execer, r *model.Repository) error {
	_, err := exec.ExecContext(ctx, `
		INSERT INTO repositories (id, user_id, org_id, name, full_name, git_url, default_branch, last_indexed_at, created_at, updated_at, metadata)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name=excluded.name, full_name=excluded.full_name, git_url=excluded.git_url,
			default_branch=excluded.default_branch, last_indexed_at=excluded.last_indexed_at,
			updated_at=excluded.updated_at, metadata=excluded.metadata
	`,
		r.ID, nullString(r.UserID), nullString(r.OrgID), r.Name, r.FullName,
		nullString(r.GitURL), r.DefaultBranchOrDefault(), formatTimePtr(r.LastIndexedAt),
		formatTime(r.CreatedAt), formatTime(r.UpdatedAt), marshalJSON(r.Metadata))
	if err != nil {
		return fmt.Errorf("upsert repository %s: %w", r.ID, err)
	}
	return nil
}

// GetRepository loads a Repository by id, returning sql.ErrNoRows if absent.
func GetRepository(ctx context.Context, db *sql.DB, id string) (*model.Repository, error) {
	row := db.QueryRowContext(ctx, `
		SELECT id, user_id, org_id, name, full_name, git_url, default_branch,
		       last_indexed_at, created_at, updated_at, metadata
		FROM repositories WHERE id = ?`, id)
	return scanRepository(row)
}

// GetRepositoryByFullName loads a Repository by its unique full_name.
func GetRepositoryByFullName(ctx context.Context, db *sql.DB, fullName string) (*model.Repository, error) {
	row := db.QueryRowContext(ctx, `
		SELECT id, user_id, org_id, name, full_name, git_url, default_branch,
		       last_indexed_at, created_at, updated_at, metadata
		FROM repositories WHERE full_name = ?`, fullName)
	return scanRepository(row)
}

func scanRepository(row *sql.Row) (*model.Repository, error) {
	var r model.Repository
	var userID, orgID, gitURL sql.NullString
	var lastIndexed sql.NullString
	var createdAt, updatedAt string
	var metadata string

	if err := row.Scan(&r.ID, &userID, &orgID, &r.Name, &r.FullName, &gitURL,
		&r.DefaultBranch, &lastIndexed, &createdAt, &updatedAt, &metadata); err != nil {
		return nil, err
	}
	r.UserID = userID.String
	r.OrgID = orgID.String
	r.GitURL = gitURL.String
	r.LastIndexedAt = parseTimePtr(lastIndexed)
	r.CreatedAt = parseTime(createdAt)
	r.UpdatedAt = parseTime(updatedAt)
	unmarshalJSON(metadata, &r.Metadata)
	return &r, nil
}

// ListRepositories returns every repository, ordered by name.
func ListRepositories(ctx context.Context, db *sql.DB) ([]*model.Repository, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, user_id, org_id, name, full_name, git_url, default_branch,
		       last_indexed_at, created_at, updated_at, metadata
		FROM repositories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list repositories: %w", err)
	}
	defer rows.Close()

	var out []*model.Repository
	for rows.Next() {
		var r model.Repository
		var userID, orgID, gitURL sql.NullString
		var lastIndexed sql.NullString
		var createdAt, updatedAt, metadata string
		if err := rows.Scan(&r.ID, &userID, &orgID, &r.Name, &r.FullName, &gitURL,
			&r.DefaultBranch, &lastIndexed, &createdAt, &updatedAt, &metadata); err != nil {
			return nil, fmt.Errorf("scan repository: %w", err)
		}
		r.UserID = userID.String
		r.OrgID = orgID.String
		r.GitURL = gitURL.String
		r.LastIndexedAt = parseTimePtr(lastIndexed)
		r.CreatedAt = parseTime(createdAt)
		r.UpdatedAt = parseTime(updatedAt)
		unmarshalJSON(metadata, &r.Metadata)
		out = append(out, &r)
	}
	return out, rows.Err()
}

// TouchLastIndexed updates a repository's last_indexed_at to now.
func TouchLastIndexed(ctx context.Context, exec Execer, repositoryID string, ts string) error {
	_, err := exec.ExecContext(ctx, `UPDATE repositories SET last_indexed_at = ?, updated_at = ? WHERE id = ?`,
		ts, ts, repositoryID)
	return err
}

// DeleteRepository removes a repository and, via ON DELETE CASCADE, every
// file/symbol/reference that belongs to it. dependency_graph rows carry no
// foreign keys, so the repository's edges are left in place.
func DeleteRepository(ctx context.Context, exec Execer, id string) error {
	_, err := exec.ExecContext(ctx, `DELETE FROM repositories WHERE id = ?`, id)
	return err
}
