package storage_test

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/jayminwest/kotadb-index/internal/config"
	"github.com/jayminwest/kotadb-index/internal/model"
	"github.com/jayminwest/kotadb-index/internal/storage"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

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

func TestOpenRunsBaselineMigration(t *testing.T) {
	pool := openTestPool(t)

	var count int
	err := pool.Read(context.Background(), func(ctx context.Context, db *sql.DB) error {
		return db.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='repositories'").Scan(&count)
	})
	require.NoError(t, err)
	require.Equal(t, 1, count)
}

func TestWriteTransactionCommitsAndRollsBack(t *testing.T) {
	pool := openTestPool(t)
	ctx := context.Background()

	repo := &model.Repository{
		ID: uuid.NewString(), Name: "acme", FullName: "acme/widgets",
		DefaultBranch: "main", CreatedAt: time.Now(), UpdatedAt: time.Now(),
	}

	err := pool.WriteTransaction(ctx, func(ctx context.Context, conn *sql.Conn) error {
		return storage.UpsertRepository(ctx, conn, repo)
	})
	require.NoError(t, err)

	err = pool.Read(ctx, func(ctx context.Context, db *sql.DB) error {
		got, err := storage.GetRepository(ctx, db, repo.ID)
		require.NoError(t, err)
		require.Equal(t, repo.FullName, got.FullName)
		return nil
	})
	require.NoError(t, err)

	failErr := fmt.Errorf("boom")
	err = pool.WriteTransaction(ctx, func(ctx context.Context, conn *sql.Conn) error {
		other := &model.Repository{ID: uuid.NewString(), Name: "rollback-me", FullName: "rollback/me",
			CreatedAt: time.Now(), UpdatedAt: time.Now()}
		if err := storage.UpsertRepository(ctx, conn, other); err != nil {
			return err
		}
		return failErr
	})
	require.ErrorIs(t, err, failErr)

	err = pool.Read(ctx, func(ctx context.Context, db *sql.DB) error {
		_, err := storage.GetRepositoryByFullName(ctx, db, "rollback/me")
		require.ErrorIs(t, err, sql.ErrNoRows)
		return nil
	})
	require.NoError(t, err)
}

func TestResolvePathHonorsExplicitOverEnv(t *testing.T) {
	t.Setenv("KOTADB_DB_PATH", "/env/path.db")
	path, err := storage.ResolvePath("/explicit/path.db")
	require.NoError(t, err)
	require.Equal(t, "/explicit/path.db", path)
}

func TestResolvePathFallsBackToEnv(t *testing.T) {
	t.Setenv("KOTADB_DB_PATH", "/env/path.db")
	path, err := storage.ResolvePath("")
	require.NoError(t, err)
	require.Equal(t, "/env/path.db", path)
}
