// Package storage implements the embedded SQL engine of spec.md §4.1: a
// writer/reader connection pool over SQLite, a migration runner with drift
// detection, and FTS5-backed full text search. Grounded on the teacher's
// NewLocalStore (internal/store/local_core.go) for pragma sequencing and
// internal/store/migrations.go for the migration-runner shape, generalized
// from the teacher's single-connection store into the writer+N-reader pool
// spec.md requires.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"runtime"
	"strings"
	"sync/atomic"

	"github.com/jayminwest/kotadb-index/internal/config"
	"github.com/jayminwest/kotadb-index/internal/logging"

	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"
)

const (
	// DriverSQLite3 is the cgo-based, FTS5-enabled go-sqlite3 driver.
	DriverSQLite3 = "sqlite3"
	// DriverModernc is the pure-Go modernc.org/sqlite driver.
	DriverModernc = "modernc"
)

// Pool is the process-wide connection pool: one exclusive writer and N
// round-robin readers (spec.md §4.1, §5). Creation and teardown are
// explicit via Open/Close, matching spec.md §5's requirement that tests be
// able to create and tear down isolated in-memory databases.
type Pool struct {
	cfg     config.StorageConfig
	path    string
	writer  *sql.DB
	readers []*sql.DB
	next    uint64
}

// driverName maps the configured driver label to the registered
// database/sql driver name.
func driverName(label string) string {
	if label == DriverModernc {
		return "sqlite"
	}
	return "sqlite3"
}

// Open resolves the database path, opens the writer connection, runs
// pending migrations, then opens the reader connections. Readers are
// opened only after migrations succeed so they never observe a
// partially-migrated schema.
func Open(ctx context.Context, cfg config.StorageConfig) (*Pool, error) {
	path, err := ResolvePath(cfg.Path)
	if err != nil {
		return nil, err
	}
	drv := driverName(cfg.Driver)

	writerDSN := path
	if drv == DriverSQLite3 {
		sep := "?"
		if strings.Contains(path, "?") {
			sep = "&"
		}
		writerDSN = path + sep + "_txlock=immediate"
	}
	writer, err := sql.Open(drv, writerDSN)
	if err != nil {
		return nil, fmt.Errorf("open writer: %w", err)
	}
	writer.SetMaxOpenConns(1)
	writer.SetMaxIdleConns(1)
	if err := writer.PingContext(ctx); err != nil {
		writer.Close()
		return nil, fmt.Errorf("ping writer: %w", err)
	}
	if err := applyWriterPragmas(writer, cfg); err != nil {
		writer.Close()
		return nil, err
	}

	result, err := RunMigrations(ctx, writer)
	if err != nil {
		writer.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	logging.Get(logging.CategoryMigration).Infow("migrations applied",
		"applied", result.Applied, "drift", result.Drift, "errors", len(result.Errors))

	readerCount := cfg.ReaderCount
	if readerCount <= 0 {
		readerCount = runtime.NumCPU()
	}
	if readerCount < 1 {
		readerCount = 1
	}

	readers := make([]*sql.DB, 0, readerCount)
	for i := 0; i < readerCount; i++ {
		r, err := sql.Open(drv, path)
		if err != nil {
			closeAll(writer, readers)
			return nil, fmt.Errorf("open reader %d: %w", i, err)
		}
		if err := r.PingContext(ctx); err != nil {
			r.Close()
			closeAll(writer, readers)
			return nil, fmt.Errorf("ping reader %d: %w", i, err)
		}
		if err := applyReaderPragmas(r, cfg); err != nil {
			r.Close()
			closeAll(writer, readers)
			return nil, err
		}
		readers = append(readers, r)
	}

	return &Pool{cfg: cfg, path: path, writer: writer, readers: readers}, nil
}

func closeAll(writer *sql.DB, readers []*sql.DB) {
	writer.Close()
	for _, r := range readers {
		r.Close()
	}
}

// Close tears down every connection in the pool.
func (p *Pool) Close() error {
	var firstErr error
	if err := p.writer.Close(); err != nil {
		firstErr = err
	}
	for _, r := range p.readers {
		if err := r.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Path returns the resolved database file path this pool was opened
// against.
func (p *Pool) Path() string {
	return p.path
}

// nextReader returns the next reader connection, round-robin.
func (p *Pool) nextReader() *sql.DB {
	i := atomic.AddUint64(&p.next, 1)
	return p.readers[i%uint64(len(p.readers))]
}

// Read runs fn against the next reader connection (spec.md §4.1: "The pool
// exposes read(fn) ... primitives").
func (p *Pool) Read(ctx context.Context, fn func(ctx context.Context, db *sql.DB) error) error {
	return fn(ctx, p.nextReader())
}

// Write runs fn directly against the writer connection, without wrapping
// it in an explicit transaction. Used for single-statement writes where
// SQLite's implicit per-statement transaction is sufficient.
func (p *Pool) Write(ctx context.Context, fn func(ctx context.Context, db *sql.DB) error) error {
	return fn(ctx, p.writer)
}

// WriteTransaction runs fn inside a single IMMEDIATE transaction on the
// writer connection, acquiring the reserved write lock at BEGIN so the
// transaction never escalates mid-flight into SQLITE_BUSY (spec.md §4.1).
// All write paths funnel through here or through Write; there is never more
// than one writer connection, so transactions are implicitly serialized
// (spec.md §5).
func (p *Pool) WriteTransaction(ctx context.Context, fn func(ctx context.Context, conn *sql.Conn) error) error {
	conn, err := p.writer.Conn(ctx)
	if err != nil {
		return fmt.Errorf("acquire writer conn: %w", err)
	}
	defer conn.Close()

	// _txlock=immediate covers go-sqlite3's own Begin; issuing the
	// statement explicitly here also covers modernc.org/sqlite, which has
	// no DSN equivalent.
	if _, err := conn.ExecContext(ctx, "BEGIN IMMEDIATE"); err != nil {
		return fmt.Errorf("begin immediate: %w", err)
	}

	if err := fn(ctx, conn); err != nil {
		if _, rbErr := conn.ExecContext(ctx, "ROLLBACK"); rbErr != nil {
			logging.Get(logging.CategoryStorage).Warnw("rollback failed", "err", rbErr)
		}
		return err
	}

	if _, err := conn.ExecContext(ctx, "COMMIT"); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
