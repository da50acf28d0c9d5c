// Package logging provides categorized, level-filtered structured logging
// for kotadb-index, backed by zap. Each subsystem logs through its own
// Category so operators can enable verbose output for one stage of the
// pipeline (parsing, storage, ingestion, ...) without drowning in the rest.
package logging

import (
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Category identifies the subsystem emitting a log line.
type Category string

const (
	CategoryStorage   Category = "storage"
	CategoryParser    Category = "parser"
	CategorySymbols   Category = "symbols"
	CategoryRefs      Category = "references"
	CategoryResolve   Category = "resolve"
	CategoryGraph     Category = "graph"
	CategoryDiscover  Category = "discover"
	CategoryIngest    Category = "ingest"
	CategoryQuery     Category = "query"
	CategorySnapshot  Category = "snapshot"
	CategoryProjects  Category = "projects"
	CategoryCLI       Category = "cli"
	CategoryMigration Category = "migration"
)

var (
	mu          sync.RWMutex
	base        *zap.Logger = zap.NewNop()
	debugMode   bool
	initialized bool
)

// Initialize configures the package-wide base logger. verbose turns on
// debug-level output; jsonFormat switches between console and JSON
// encoding. Safe to call more than once (e.g. in tests); the last call
// wins.
func Initialize(verbose bool, jsonFormat bool) error {
	mu.Lock()
	defer mu.Unlock()

	level := zapcore.InfoLevel
	if verbose {
		level = zapcore.DebugLevel
	}

	cfg := zap.NewProductionConfig()
	if !jsonFormat {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.DisableStacktrace = true

	l, err := cfg.Build()
	if err != nil {
		return err
	}

	base = l
	debugMode = verbose
	initialized = true
	return nil
}

// IsDebugMode reports whether verbose logging was requested at Initialize time.
func IsDebugMode() bool {
	mu.RLock()
	defer mu.RUnlock()
	return debugMode
}

// Get returns a logger scoped to category. Safe to call before Initialize
// (returns a no-op logger in that case).
func Get(category Category) *zap.SugaredLogger {
	mu.RLock()
	l := base
	mu.RUnlock()
	return l.With(zap.String("category", string(category))).Sugar()
}

// Sync flushes any buffered log entries. Callers should defer this at
// process exit.
func Sync() {
	mu.RLock()
	l := base
	mu.RUnlock()
	_ = l.Sync()
}

// Timer measures and logs the duration of an operation, mirroring the
// start/stop timing helper used throughout the ingestion pipeline.
type Timer struct {
	category Category
	op       string
	start    time.Time
}

// StartTimer begins timing operation within category.
func StartTimer(category Category, operation string) *Timer {
	return &Timer{category: category, op: operation, start: time.Now()}
}

// Stop ends the timer and logs the elapsed duration at debug level.
func (t *Timer) Stop() time.Duration {
	elapsed := time.Since(t.start)
	Get(t.category).Debugf("%s completed in %v", t.op, elapsed)
	return elapsed
}

// StopWithThreshold logs a warning if the operation exceeded threshold,
// otherwise logs at debug level.
func (t *Timer) StopWithThreshold(threshold time.Duration) time.Duration {
	elapsed := time.Since(t.start)
	if elapsed > threshold {
		Get(t.category).Warnf("%s took %v (threshold %v)", t.op, elapsed, threshold)
	} else {
		Get(t.category).Debugf("%s completed in %v", t.op, elapsed)
	}
	return elapsed
}
