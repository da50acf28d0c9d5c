package storage_test

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/jayminwest/kotadb-index/internal/storage"

	_ "github.com/mattn/go-sqlite3"
)

func openRawDB(t *testing.T) *sql.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := sql.Open("sqlite3", dsn)
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestRunMigrationsIsIdempotent(t *testing.T) {
	db := openRawDB(t)
	ctx := context.Background()

	first, err := storage.RunMigrations(ctx, db)
	require.NoError(t, err)
	require.NotEmpty(t, first.Applied)
	require.Empty(t, first.Drift)

	second, err := storage.RunMigrations(ctx, db)
	require.NoError(t, err)
	require.Empty(t, second.Applied)
	require.Empty(t, second.Drift)
}

func TestRunMigrationsDetectsDrift(t *testing.T) {
	db := openRawDB(t)
	ctx := context.Background()

	_, err := storage.RunMigrations(ctx, db)
	require.NoError(t, err)

	_, err = db.ExecContext(ctx,
		"UPDATE schema_migrations SET checksum = 'deadbeef' WHERE name = '0001_baseline.sql'")
	require.NoError(t, err)

	result, err := storage.RunMigrations(ctx, db)
	require.NoError(t, err)
	require.Contains(t, result.Drift, "0001_baseline.sql")
}
