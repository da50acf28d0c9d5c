// Package model defines the tagged Go records for every entity in the
// code-indexing data model (spec.md §3). Each type mirrors one SQL table;
// metadata blobs are modeled as strongly-typed structs here and serialized
// to JSON only at the storage edge, per the design note in spec.md §9.
package model

import "time"

// Repository is a named code tree (spec.md §3.1).
type Repository struct {
	ID             string            `json:"id"`
	UserID         string            `json:"user_id,omitempty"`
	OrgID          string            `json:"org_id,omitempty"`
	Name           string            `json:"name"`
	FullName       string            `json:"full_name"`
	GitURL         string            `json:"git_url,omitempty"`
	DefaultBranch  string            `json:"default_branch"`
	LastIndexedAt  *time.Time        `json:"last_indexed_at,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
	Metadata       map[string]string `json:"metadata,omitempty"`
}

// DefaultBranchOrDefault returns the repository's default branch, falling
// back to "main" when unset (spec.md §3.1: "default branch (default
// 'main')").
func (r *Repository) DefaultBranchOrDefault() string {
	if r.DefaultBranch == "" {
		return "main"
	}
	return r.DefaultBranch
}
