package ingest

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// ingestMetrics holds the Prometheus instruments for the ingestion
// pipeline, grounded on kraklabs-cie's pkg/ingestion/metrics.go
// (package-level counters/histograms behind a sync.Once registration so
// repeated Run calls across a process never double-register).
type ingestMetrics struct {
	once sync.Once

	runsTotal        prometheus.Counter
	runsFailedTotal  prometheus.Counter
	filesIndexed     prometheus.Counter
	symbolsExtracted prometheus.Counter
	referencesFound  prometheus.Counter
	dependenciesEdge prometheus.Counter
	fallbackParses   prometheus.Counter

	parseDuration prometheus.Histogram
	runDuration   prometheus.Histogram
}

var metrics ingestMetrics

func (m *ingestMetrics) init() {
	m.once.Do(func() {
		m.runsTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kotadb_ingest_runs_total", Help: "Ingestion runs started.",
		})
		m.runsFailedTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kotadb_ingest_runs_failed_total", Help: "Ingestion runs that returned an error.",
		})
		m.filesIndexed = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kotadb_ingest_files_indexed_total", Help: "Files written to indexed_files.",
		})
		m.symbolsExtracted = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kotadb_ingest_symbols_extracted_total", Help: "Symbols written to indexed_symbols.",
		})
		m.referencesFound = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kotadb_ingest_references_found_total", Help: "References written to indexed_references.",
		})
		m.dependenciesEdge = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kotadb_ingest_dependency_edges_total", Help: "Edges written to dependency_graph.",
		})
		m.fallbackParses = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kotadb_ingest_fallback_parses_total", Help: "Files that fell back to regex extraction after AST parse/recovery both failed.",
		})

		buckets := []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30}
		m.parseDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name: "kotadb_ingest_file_parse_seconds", Help: "Per-file parse+extract duration.", Buckets: buckets,
		})
		m.runDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name: "kotadb_ingest_run_seconds", Help: "Whole-repository ingestion run duration.", Buckets: buckets,
		})

		prometheus.MustRegister(
			m.runsTotal, m.runsFailedTotal,
			m.filesIndexed, m.symbolsExtracted, m.referencesFound, m.dependenciesEdge, m.fallbackParses,
			m.parseDuration, m.runDuration,
		)
	})
}
