// Package projects is the domain-facing API over the project/repository
// grouping entities spec.md §3.1 defines: validation and id assignment in
// front of internal/storage's existing projects.go/repositories.go CRUD,
// which has no business-logic layer of its own. No teacher package covers
// this concern directly (codenerd has no multi-tenant grouping entity); the
// shape follows internal/storage's existing Upsert/Get/List/Delete naming.
package projects

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jayminwest/kotadb-index/internal/logging"
	"github.com/jayminwest/kotadb-index/internal/model"
	"github.com/jayminwest/kotadb-index/internal/storage"
)

// ErrInvalidOwner is returned when neither or both of userID/orgID are set;
// a project belongs to exactly one owning scope (spec.md §6.3:
// UNIQUE(user_id, name), UNIQUE(org_id, name)).
var ErrInvalidOwner = errors.New("project must belong to exactly one of user or org")

// ErrNameRequired is returned when Create is called with an empty name.
var ErrNameRequired = errors.New("project name is required")

// CreateOptions configures a new project.
type CreateOptions struct {
	UserID      string
	OrgID       string
	Name        string
	Description string
}

// Create validates and inserts a new project, assigning it a fresh id
// (spec.md §3.1: "identifier, name unique within owning scope").
func Create(ctx context.Context, pool *storage.Pool, opts CreateOptions) (*model.Project, error) {
	if opts.Name == "" {
		return nil, ErrNameRequired
	}
	if (opts.UserID == "") == (opts.OrgID == "") {
		return nil, ErrInvalidOwner
	}

	now := time.Now()
	project := &model.Project{
		ID:        uuid.NewString(),
		UserID:    opts.UserID,
		OrgID:     opts.OrgID,
		Name:      opts.Name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if opts.Description != "" {
		project.Description = &opts.Description
	}

	err := pool.Write(ctx, func(ctx context.Context, db *sql.DB) error {
		return storage.UpsertProject(ctx, db, project)
	})
	if err != nil {
		return nil, fmt.Errorf("create project %s: %w", opts.Name, err)
	}

	logging.Get(logging.CategoryProjects).Infow("project created", "id", project.ID, "name", project.Name)
	return project, nil
}

// Get loads a project by id.
func Get(ctx context.Context, pool *storage.Pool, id string) (*model.Project, error) {
	var project *model.Project
	err := pool.Read(ctx, func(ctx context.Context, db *sql.DB) error {
		p, err := storage.GetProject(ctx, db, id)
		if err != nil {
			return err
		}
		project = p
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("get project %s: %w", id, err)
	}
	return project, nil
}

// Delete removes a project; its repository links cascade (spec.md §6.3:
// project_repositories ON DELETE CASCADE).
func Delete(ctx context.Context, pool *storage.Pool, id string) error {
	err := pool.Write(ctx, func(ctx context.Context, db *sql.DB) error {
		return storage.DeleteProject(ctx, db, id)
	})
	if err != nil {
		return fmt.Errorf("delete project %s: %w", id, err)
	}
	return nil
}

// AddRepository links a repository into a project, silently no-op if the
// pair is already linked (spec.md §6.3: "junction enforces unique (project,
// repository) pairs").
func AddRepository(ctx context.Context, pool *storage.Pool, projectID, repositoryID string) error {
	link := &model.ProjectRepository{
		ID:           uuid.NewString(),
		ProjectID:    projectID,
		RepositoryID: repositoryID,
		AddedAt:      time.Now(),
	}
	err := pool.Write(ctx, func(ctx context.Context, db *sql.DB) error {
		return storage.AddRepositoryToProject(ctx, db, link)
	})
	if err != nil {
		return fmt.Errorf("add repository %s to project %s: %w", repositoryID, projectID, err)
	}
	return nil
}

// RemoveRepository unlinks a repository from a project.
func RemoveRepository(ctx context.Context, pool *storage.Pool, projectID, repositoryID string) error {
	err := pool.Write(ctx, func(ctx context.Context, db *sql.DB) error {
		return storage.RemoveRepositoryFromProject(ctx, db, projectID, repositoryID)
	})
	if err != nil {
		return fmt.Errorf("remove repository %s from project %s: %w", repositoryID, projectID, err)
	}
	return nil
}

// ListRepositories returns every repository linked to a project.
func ListRepositories(ctx context.Context, pool *storage.Pool, projectID string) ([]*model.Repository, error) {
	var out []*model.Repository
	err := pool.Read(ctx, func(ctx context.Context, db *sql.DB) error {
		repos, err := storage.ListProjectRepositories(ctx, db, projectID)
		if err != nil {
			return err
		}
		out = repos
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list repositories for project %s: %w", projectID, err)
	}
	return out, nil
}
