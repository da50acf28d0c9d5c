package storage_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/jayminwest/kotadb-index/internal/model"
	"github.com/jayminwest/kotadb-index/internal/storage"
)

func seedRepository(t *testing.T, pool *storage.Pool) *model.Repository {
	t.Helper()
	repo := &model.Repository{
		ID: uuid.NewString(), Name: "widgets", FullName: "acme/widgets",
		DefaultBranch: "main", CreatedAt: time.Now(), UpdatedAt: time.Now(),
	}
	err := pool.WriteTransaction(context.Background(), func(ctx context.Context, conn *sql.Conn) error {
		return storage.UpsertRepository(ctx, conn, repo)
	})
	require.NoError(t, err)
	return repo
}

func TestFileSymbolReferenceLifecycle(t *testing.T) {
	pool := openTestPool(t)
	ctx := context.Background()
	repo := seedRepository(t, pool)

	file := &model.IndexedFile{
		ID: uuid.NewString(), RepositoryID: repo.ID, Path: "src/widget.ts",
		Content: "export function createWidget() { return 1 }", Language: model.LangTypeScript,
		SizeBytes: 42, IndexedAt: time.Now(),
	}
	sym := &model.Symbol{
		ID: uuid.NewString(), FileID: file.ID, RepositoryID: repo.ID, Name: "createWidget",
		Kind: model.SymbolFunction, LineStart: 1, LineEnd: 1,
		Metadata: model.SymbolMetadata{IsExported: true},
	}
	ref := &model.Reference{
		ID: uuid.NewString(), FileID: file.ID, RepositoryID: repo.ID, SymbolName: "createWidget",
		LineNumber: 5, Type: model.RefCall,
	}

	err := pool.WriteTransaction(ctx, func(ctx context.Context, conn *sql.Conn) error {
		if err := storage.UpsertFile(ctx, conn, file); err != nil {
			return err
		}
		if err := storage.InsertSymbol(ctx, conn, sym); err != nil {
			return err
		}
		return storage.InsertReference(ctx, conn, ref)
	})
	require.NoError(t, err)

	err = pool.Read(ctx, func(ctx context.Context, db *sql.DB) error {
		got, err := storage.GetFileByPath(ctx, db, repo.ID, "src/widget.ts")
		require.NoError(t, err)
		require.Equal(t, file.Content, got.Content)

		syms, err := storage.ListSymbolsByFile(ctx, db, file.ID)
		require.NoError(t, err)
		require.Len(t, syms, 1)
		require.True(t, syms[0].Metadata.IsExported)

		found, err := storage.FindSymbolByKey(ctx, db, repo.ID, "src/widget.ts", "createWidget", 1)
		require.NoError(t, err)
		require.Equal(t, sym.ID, found.ID)

		refs, err := storage.ListReferencesByFile(ctx, db, file.ID)
		require.NoError(t, err)
		require.Len(t, refs, 1)

		results, err := storage.SearchFiles(ctx, db, repo.ID, "createWidget", 10)
		require.NoError(t, err)
		require.Len(t, results, 1)
		return nil
	})
	require.NoError(t, err)

	// re-index: replace the symbol/reference set
	err = pool.WriteTransaction(ctx, func(ctx context.Context, conn *sql.Conn) error {
		if err := storage.DeleteSymbolsForFile(ctx, conn, file.ID); err != nil {
			return err
		}
		return storage.DeleteReferencesForFile(ctx, conn, file.ID)
	})
	require.NoError(t, err)

	err = pool.Read(ctx, func(ctx context.Context, db *sql.DB) error {
		syms, err := storage.ListSymbolsByFile(ctx, db, file.ID)
		require.NoError(t, err)
		require.Empty(t, syms)
		return nil
	})
	require.NoError(t, err)
}

func TestDependencyGraphEdges(t *testing.T) {
	pool := openTestPool(t)
	ctx := context.Background()
	repo := seedRepository(t, pool)

	fileA := &model.IndexedFile{ID: uuid.NewString(), RepositoryID: repo.ID, Path: "a.ts", Content: "a", IndexedAt: time.Now()}
	fileB := &model.IndexedFile{ID: uuid.NewString(), RepositoryID: repo.ID, Path: "b.ts", Content: "b", IndexedAt: time.Now()}
	edge := &model.DependencyEdge{
		ID: uuid.NewString(), RepositoryID: repo.ID, FromFileID: &fileA.ID, ToFileID: &fileB.ID,
		Type: model.DependencyFileImport,
	}

	err := pool.WriteTransaction(ctx, func(ctx context.Context, conn *sql.Conn) error {
		if err := storage.UpsertFile(ctx, conn, fileA); err != nil {
			return err
		}
		if err := storage.UpsertFile(ctx, conn, fileB); err != nil {
			return err
		}
		return storage.InsertDependencyEdge(ctx, conn, edge)
	})
	require.NoError(t, err)

	err = pool.Read(ctx, func(ctx context.Context, db *sql.DB) error {
		edges, err := storage.ListEdgesByRepository(ctx, db, repo.ID)
		require.NoError(t, err)
		require.Len(t, edges, 1)
		require.Equal(t, fileA.ID, *edges[0].FromFileID)
		require.Equal(t, fileB.ID, *edges[0].ToFileID)
		return nil
	})
	require.NoError(t, err)
}

func TestProjectRepositoryLinkage(t *testing.T) {
	pool := openTestPool(t)
	ctx := context.Background()
	repo := seedRepository(t, pool)

	project := &model.Project{ID: uuid.NewString(), Name: "platform", CreatedAt: time.Now(), UpdatedAt: time.Now()}
	link := &model.ProjectRepository{ID: uuid.NewString(), ProjectID: project.ID, RepositoryID: repo.ID, AddedAt: time.Now()}

	err := pool.WriteTransaction(ctx, func(ctx context.Context, conn *sql.Conn) error {
		if err := storage.UpsertProject(ctx, conn, project); err != nil {
			return err
		}
		return storage.AddRepositoryToProject(ctx, conn, link)
	})
	require.NoError(t, err)

	err = pool.Read(ctx, func(ctx context.Context, db *sql.DB) error {
		repos, err := storage.ListProjectRepositories(ctx, db, project.ID)
		require.NoError(t, err)
		require.Len(t, repos, 1)
		require.Equal(t, repo.FullName, repos[0].FullName)
		return nil
	})
	require.NoError(t, err)
}
