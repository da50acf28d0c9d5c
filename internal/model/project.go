package model

import "time"

// Project is a user-named grouping of repositories (spec.md §3.1).
type Project struct {
	ID          string            `json:"id"`
	UserID      string            `json:"user_id,omitempty"`
	OrgID       string            `json:"org_id,omitempty"`
	Name        string            `json:"name"`
	Description *string           `json:"description,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// ProjectRepository is the junction entity between Project and Repository
// (spec.md §3.1).
type ProjectRepository struct {
	ID           string    `json:"id"`
	ProjectID    string    `json:"project_id"`
	RepositoryID string    `json:"repository_id"`
	AddedAt      time.Time `json:"added_at"`
}

// SchemaMigration records one applied schema change (spec.md §3.1).
type SchemaMigration struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	AppliedAt time.Time `json:"applied_at"`
	Checksum  string    `json:"checksum"`
}
