package ingest_test

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/jayminwest/kotadb-index/internal/config"
	"github.com/jayminwest/kotadb-index/internal/ingest"
	"github.com/jayminwest/kotadb-index/internal/model"
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

func testRepo() *model.Repository {
	return &model.Repository{
		ID: uuid.NewString(), Name: "widgets", FullName: "acme/widgets-" + uuid.NewString(),
		DefaultBranch: "main", CreatedAt: time.Now(), UpdatedAt: time.Now(),
	}
}

func TestRunIndexesFilesSymbolsAndReferences(t *testing.T) {
	pool := openTestPool(t)
	repo := testRepo()

	files := []ingest.FileInput{
		{
			Path:        "src/widget.ts",
			Content:     []byte("export function createWidget() {\n  return helper();\n}\n\nfunction helper() { return 1; }\n"),
			ContentHash: "abc123",
			SizeBytes:   80,
		},
	}

	result, err := ingest.Run(context.Background(), pool, repo, files, ingest.Options{})
	require.NoError(t, err)
	require.Equal(t, 1, result.FilesIndexed)
	require.GreaterOrEqual(t, result.SymbolsExtracted, 2)
	require.GreaterOrEqual(t, result.ReferencesFound, 1)

	err = pool.Read(context.Background(), func(ctx context.Context, db *sql.DB) error {
		file, err := storage.GetFileByPath(ctx, db, repo.ID, "src/widget.ts")
		require.NoError(t, err)
		require.Equal(t, model.LangTypeScript, file.Language)

		syms, err := storage.ListSymbolsByFile(ctx, db, file.ID)
		require.NoError(t, err)
		require.Len(t, syms, 2)

		refs, err := storage.ListReferencesByFile(ctx, db, file.ID)
		require.NoError(t, err)
		require.NotEmpty(t, refs)
		return nil
	})
	require.NoError(t, err)
}

func TestRunIsIdempotentOnFileID(t *testing.T) {
	pool := openTestPool(t)
	repo := testRepo()
	files := []ingest.FileInput{
		{Path: "src/a.ts", Content: []byte("export const a = 1;\n"), SizeBytes: 20},
	}

	first, err := ingest.Run(context.Background(), pool, repo, files, ingest.Options{})
	require.NoError(t, err)
	second, err := ingest.Run(context.Background(), pool, repo, files, ingest.Options{})
	require.NoError(t, err)

	require.Equal(t, ingest.DeriveFileID(repo.ID, "src/a.ts"), ingest.DeriveFileID(repo.ID, "src/a.ts"))
	require.Equal(t, first.FilesIndexed, second.FilesIndexed)

	err = pool.Read(context.Background(), func(ctx context.Context, db *sql.DB) error {
		stored, err := storage.ListFilesByRepository(ctx, db, repo.ID)
		require.NoError(t, err)
		require.Len(t, stored, 1, "re-indexing the same path must not duplicate the file row")
		return nil
	})
	require.NoError(t, err)
}

func TestRunSkipsSQLFilesWithoutExtraction(t *testing.T) {
	pool := openTestPool(t)
	repo := testRepo()
	files := []ingest.FileInput{
		{Path: "migrations/0001.sql", Content: []byte("CREATE TABLE widgets (id TEXT);\n"), SizeBytes: 40},
	}

	result, err := ingest.Run(context.Background(), pool, repo, files, ingest.Options{})
	require.NoError(t, err)
	require.Equal(t, 1, result.FilesIndexed)
	require.Equal(t, 0, result.SymbolsExtracted)
}

func TestBuildSymbolKeyCollisionShadowsFirstDefinition(t *testing.T) {
	// Two symbols sharing file+name+line_start collide in a map keyed by
	// BuildSymbolKey: the second write silently shadows the first,
	// documented as the accepted resolution to the spec's Open Question.
	m := map[string]string{}
	key := ingest.BuildSymbolKey("src/widget.ts", "Widget", 3)
	m[key] = "symbol-1"
	m[key] = "symbol-2"
	require.Equal(t, "symbol-2", m[key])
}

func TestDeriveIDsAreDeterministic(t *testing.T) {
	require.Equal(t,
		ingest.DeriveFileID("repo-1", "src/a.ts"),
		ingest.DeriveFileID("repo-1", "src/a.ts"))
	require.NotEqual(t,
		ingest.DeriveFileID("repo-1", "src/a.ts"),
		ingest.DeriveFileID("repo-2", "src/a.ts"))
	require.Equal(t,
		ingest.DeriveSymbolID("file-1", "Widget", 3, 0),
		ingest.DeriveSymbolID("file-1", "Widget", 3, 0))
}
