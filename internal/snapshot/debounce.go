package snapshot

import (
	"context"
	"sync"
	"time"

	"github.com/jayminwest/kotadb-index/internal/logging"
)

// Debouncer collapses repeated RequestExport calls arriving within the
// configured window into a single Export at the end of the window
// (spec.md §4.9: "a scheduled export uses a fixed-delay debounce").
// Generalized from the teacher's per-path debounceMap/debounceDur idiom
// in internal/core/mangle_watcher.go: that watcher debounces many
// independent file paths, one timestamp each, polled by a ticker; a
// snapshot export always serializes the same fixed set of tables, so one
// shared timer reset on every request is sufficient.
type Debouncer struct {
	mu       sync.Mutex
	exporter *Exporter
	window   time.Duration
	timer    *time.Timer
	pending  bool
}

// NewDebouncer builds a Debouncer around exporter with the given window. A
// non-positive window disables debouncing: RequestExport exports
// immediately.
func NewDebouncer(exporter *Exporter, window time.Duration) *Debouncer {
	return &Debouncer{exporter: exporter, window: window}
}

// RequestExport schedules an export window seconds from now, resetting any
// already-pending timer. The export itself runs in a background goroutine
// once the window elapses; errors are logged, not returned, since no
// caller is waiting on this particular invocation.
func (d *Debouncer) RequestExport(ctx context.Context) {
	if d.window <= 0 {
		d.runExport(ctx)
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.pending = true
	d.timer = time.AfterFunc(d.window, func() {
		d.mu.Lock()
		d.pending = false
		d.mu.Unlock()
		d.runExport(ctx)
	})
}

// Flush cancels any pending debounce timer and exports immediately.
func (d *Debouncer) Flush(ctx context.Context) (*ExportResult, error) {
	d.mu.Lock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.pending = false
	d.mu.Unlock()

	return d.exporter.Export(ctx)
}

// Pending reports whether a debounced export is currently scheduled.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending
}

func (d *Debouncer) runExport(ctx context.Context) {
	if _, err := d.exporter.Export(ctx); err != nil {
		logging.Get(logging.CategorySnapshot).Errorw("debounced export failed", "err", err)
	}
}
