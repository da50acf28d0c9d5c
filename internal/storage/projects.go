package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jayminwest/kotadb-index/internal/model"
)

// UpsertProject inserts or replaces a Project row (spec.md supplemental
// feature: project grouping of repositories).
func UpsertProject(ctx context.Context, exec Execer, p *model.Project) error {
	_, err := exec.ExecContext(ctx, `
		INSERT INTO projects (id, user_id, org_id, name, description, created_at, updated_at, metadata)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name=excluded.name, description=excluded.description, updated_at=excluded.updated_at,
			metadata=excluded.metadata
	`, p.ID, nullString(p.UserID), nullString(p.OrgID), p.Name, nullStringPtr(p.Description),
		formatTime(p.CreatedAt), formatTime(p.UpdatedAt), marshalJSON(p.Metadata))
	if err != nil {
		return fmt.Errorf("upsert project %s: %w", p.Name, err)
	}
	return nil
}

// GetProject loads a Project by id.
func GetProject(ctx context.Context, db *sql.DB, id string) (*model.Project, error) {
	row := db.QueryRowContext(ctx, `
		SELECT id, user_id, org_id, name, description, created_at, updated_at, metadata
		FROM projects WHERE id = ?`, id)

	var p model.Project
	var userID, orgID, description sql.NullString
	var createdAt, updatedAt, metadata string
	if err := row.Scan(&p.ID, &userID, &orgID, &p.Name, &description, &createdAt, &updatedAt, &metadata); err != nil {
		return nil, err
	}
	p.UserID = userID.String
	p.OrgID = orgID.String
	p.Description = stringPtr(description)
	p.CreatedAt = parseTime(createdAt)
	p.UpdatedAt = parseTime(updatedAt)
	unmarshalJSON(metadata, &p.Metadata)
	return &p, nil
}

// DeleteProject removes a project; its project_repositories rows cascade.
func DeleteProject(ctx context.Context, exec Execer, id string) error {
	_, err := exec.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
	return err
}

// AddRepositoryToProject links a repository into a project.
func AddRepositoryToProject(ctx context.Context, exec Execer, link *model.ProjectRepository) error {
	_, err := exec.ExecContext(ctx, `
		INSERT INTO project_repositories (id, project_id, repository_id, added_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(project_id, repository_id) DO NOTHING
	`, link.ID, link.ProjectID, link.RepositoryID, formatTime(link.AddedAt))
	if err != nil {
		return fmt.Errorf("add repository %s to project %s: %w", link.RepositoryID, link.ProjectID, err)
	}
	return nil
}

// RemoveRepositoryFromProject unlinks a repository from a project.
func RemoveRepositoryFromProject(ctx context.Context, exec Execer, projectID, repositoryID string) error {
	_, err := exec.ExecContext(ctx,
		`DELETE FROM project_repositories WHERE project_id = ? AND repository_id = ?`, projectID, repositoryID)
	return err
}

// ListProjectRepositories returns every repository linked to a project.
func ListProjectRepositories(ctx context.Context, db *sql.DB, projectID string) ([]*model.Repository, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT r.id, r.user_id, r.org_id, r.name, r.full_name, r.git_url, r.default_branch,
		       r.last_indexed_at, r.created_at, r.updated_at, r.metadata
		FROM repositories r
		JOIN project_repositories pr ON pr.repository_id = r.id
		WHERE pr.project_id = ? ORDER BY r.name`, projectID)
	if err != nil {
		return nil, fmt.Errorf("list project repositories: %w", err)
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
			return nil, fmt.Errorf("scan project repository: %w", err)
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
