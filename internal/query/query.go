// Package query is the read-only surface over an indexed repository
// (spec.md §4.8): search, recent files, path resolution, and dependency
// graph traversal. Every operation here runs through Pool.Read, never
// Pool.Write, per spec.md §4.8: "All reads go through reader connections."
package query

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jayminwest/kotadb-index/internal/graph"
	"github.com/jayminwest/kotadb-index/internal/logging"
	"github.com/jayminwest/kotadb-index/internal/model"
	"github.com/jayminwest/kotadb-index/internal/storage"
)

// SearchFiles runs a full-text search over a repository's indexed files,
// sanitizing term so FTS5 operators in user input are treated as literal
// text rather than query syntax (spec.md §4.8).
func SearchFiles(ctx context.Context, pool *storage.Pool, repositoryID, term string, limit int) ([]storage.SearchResult, error) {
	sanitized := sanitizeFTSQuery(term)
	if sanitized == "" {
		return nil, nil
	}

	var out []storage.SearchResult
	err := pool.Read(ctx, func(ctx context.Context, db *sql.DB) error {
		var err error
		out, err = storage.SearchFiles(ctx, db, repositoryID, sanitized, limit)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("search files: %w", err)
	}
	return out, nil
}

// sanitizeFTSQuery tokenizes on whitespace/punctuation and wraps each
// resulting non-empty token in double quotes (internal double-quotes
// doubled), joining with spaces so FTS5 treats the whole query as an
// implicit AND of literal terms, never operators (spec.md §4.8: "FTS
// operators (AND, OR, NOT, NEAR) in user input MUST be treated as literal
// terms, not operators").
func sanitizeFTSQuery(term string) string {
	tokens := strings.FieldsFunc(term, func(r rune) bool {
		return !(r == '_' || r >= '0' && r <= '9' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z')
	})
	quoted := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		escaped := strings.ReplaceAll(tok, `"`, `""`)
		quoted = append(quoted, `"`+escaped+`"`)
	}
	return strings.Join(quoted, " ")
}

// RecentFiles returns a repository's files ordered by indexed-at
// descending (spec.md §4.8).
func RecentFiles(ctx context.Context, pool *storage.Pool, repositoryID string, limit int) ([]*model.IndexedFile, error) {
	var out []*model.IndexedFile
	err := pool.Read(ctx, func(ctx context.Context, db *sql.DB) error {
		var err error
		out, err = storage.RecentFiles(ctx, db, repositoryID, limit)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("recent files: %w", err)
	}
	return out, nil
}

// ResolveFilePath returns the file id for the unique (repositoryID, path)
// pair, or "" if no such file is indexed (spec.md §4.8).
func ResolveFilePath(ctx context.Context, pool *storage.Pool, repositoryID, path string) (string, error) {
	var id string
	err := pool.Read(ctx, func(ctx context.Context, db *sql.DB) error {
		file, err := storage.GetFileByPath(ctx, db, repositoryID, path)
		if err == sql.ErrNoRows {
			return nil
		}
		if err != nil {
			return err
		}
		id = file.ID
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("resolve file path %s: %w", path, err)
	}
	return id, nil
}

// Target identifies one endpoint of a dependency-graph query: exactly one
// of FileID/SymbolID is set (spec.md §4.8: "Exactly one of fileId and
// symbolId is provided").
type Target struct {
	FileID   string
	SymbolID string
}

func (t Target) key() string {
	return model.NodeRef{FileID: t.FileID, SymbolID: t.SymbolID}.Key()
}

// QueryDependents returns every node with a transitive path into target,
// depth-bounded (spec.md §4.6, §4.8). depth <= 0 means unbounded.
func QueryDependents(ctx context.Context, pool *storage.Pool, repositoryID string, target Target, depth int) ([]graph.TraversalResult, error) {
	g, err := buildGraph(ctx, pool, repositoryID)
	if err != nil {
		return nil, err
	}
	return g.Dependents(target.key(), depth), nil
}

// QueryDependencies returns every node reachable from target by following
// outbound edges, depth-bounded (spec.md §4.6, §4.8).
func QueryDependencies(ctx context.Context, pool *storage.Pool, repositoryID string, target Target, depth int) ([]graph.TraversalResult, error) {
	g, err := buildGraph(ctx, pool, repositoryID)
	if err != nil {
		return nil, err
	}
	return g.Dependencies(target.key(), depth), nil
}

func buildGraph(ctx context.Context, pool *storage.Pool, repositoryID string) (*graph.Graph, error) {
	timer := logging.StartTimer(logging.CategoryQuery, "buildGraph "+repositoryID)
	defer timer.Stop()

	var edges []*model.DependencyEdge
	err := pool.Read(ctx, func(ctx context.Context, db *sql.DB) error {
		var err error
		edges, err = storage.ListEdgesByRepository(ctx, db, repositoryID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("build dependency graph for %s: %w", repositoryID, err)
	}

	values := make([]model.DependencyEdge, len(edges))
	for i, e := range edges {
		values[i] = *e
	}
	return graph.Build(values), nil
}
