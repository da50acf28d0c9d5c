package query_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/jayminwest/kotadb-index/internal/config"
	"github.com/jayminwest/kotadb-index/internal/ingest"
	"github.com/jayminwest/kotadb-index/internal/model"
	"github.com/jayminwest/kotadb-index/internal/query"
	"github.com/jayminwest/kotadb-index/internal/resolve"
	"github.com/jayminwest/kotadb-index/internal/storage"
)

func openTestPool(t *testing.T) *storage.Pool {
	t.Helper()
	cfg := config.Default().Storage
	cfg.Path = fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	cfg.ReaderCount = 2

	pool, err := storage.Open(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pool.Close() })
	return pool
}

func seedRepo(t *testing.T, pool *storage.Pool) *model.Repository {
	t.Helper()
	repo := &model.Repository{
		ID: uuid.NewString(), Name: "widgets", FullName: "acme/widgets-" + uuid.NewString(),
		DefaultBranch: "main", CreatedAt: time.Now(), UpdatedAt: time.Now(),
	}
	files := []ingest.FileInput{
		{Path: "src/widget.ts", Content: []byte("export function createWidget() { return 1; }\n"), SizeBytes: 50},
		{Path: "src/app.ts", Content: []byte("import { createWidget } from './widget';\ncreateWidget();\n"), SizeBytes: 60},
	}
	resolver := resolve.New([]string{"/repo/src/widget.ts", "/repo/src/app.ts"}, nil)
	_, err := ingest.Run(context.Background(), pool, repo, files, ingest.Options{RepoRoot: "/repo", Resolver: resolver})
	require.NoError(t, err)
	return repo
}

func TestSanitizesFTSOperatorsAsLiterals(t *testing.T) {
	pool := openTestPool(t)
	repo := seedRepo(t, pool)

	results, err := query.SearchFiles(context.Background(), pool, repo.ID, "createWidget AND NOT widget", 10)
	require.NoError(t, err)
	require.NotEmpty(t, results)
}

func TestRecentFilesOrdersByIndexedAtDescending(t *testing.T) {
	pool := openTestPool(t)
	repo := seedRepo(t, pool)

	files, err := query.RecentFiles(context.Background(), pool, repo.ID, 10)
	require.NoError(t, err)
	require.Len(t, files, 2)
	require.False(t, files[0].IndexedAt.Before(files[1].IndexedAt), "most recently indexed file must come first")
}

func TestResolveFilePathReturnsEmptyForMissingFile(t *testing.T) {
	pool := openTestPool(t)
	repo := seedRepo(t, pool)

	id, err := query.ResolveFilePath(context.Background(), pool, repo.ID, "src/widget.ts")
	require.NoError(t, err)
	require.NotEmpty(t, id)

	missing, err := query.ResolveFilePath(context.Background(), pool, repo.ID, "src/missing.ts")
	require.NoError(t, err)
	require.Empty(t, missing)
}

func TestQueryDependenciesFollowsFileImportEdges(t *testing.T) {
	pool := openTestPool(t)
	repo := seedRepo(t, pool)

	appID, err := query.ResolveFilePath(context.Background(), pool, repo.ID, "src/app.ts")
	require.NoError(t, err)

	deps, err := query.QueryDependencies(context.Background(), pool, repo.ID, query.Target{FileID: appID}, 0)
	require.NoError(t, err)
	require.NotEmpty(t, deps)
}
