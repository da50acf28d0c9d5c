// Package main is the kotadb-index CLI entry point and command
// registration hub, grounded on the teacher's cmd/nerd/main.go root-command
// wiring (persistent flags, PersistentPreRunE logger init, AddCommand at
// the bottom of init). Everything agent/chat/campaign-specific is replaced
// with the index/search/query/migrate/snapshot/project commands spec.md
// defines.
package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/jayminwest/kotadb-index/internal/config"
	"github.com/jayminwest/kotadb-index/internal/logging"
	"github.com/jayminwest/kotadb-index/internal/storage"
)

var (
	verbose     bool
	jsonLogs    bool
	configPath  string
	dbPath      string
	metricsAddr string

	cfg        *config.Config
	pool       *storage.Pool
	metricsSrv *http.Server
)

var rootCmd = &cobra.Command{
	Use:   "kotadb-index",
	Short: "SQLite-backed code indexer for TypeScript/JavaScript repositories",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := logging.Initialize(verbose, jsonLogs); err != nil {
			return fmt.Errorf("initialize logging: %w", err)
		}

		loaded, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if dbPath != "" {
			loaded.Storage.Path = dbPath
		}
		cfg = loaded

		if metricsAddr != "" {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			metricsSrv = &http.Server{Addr: metricsAddr, Handler: mux}
			go func() {
				if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logging.Get(logging.CategoryCLI).Warnw("metrics server stopped", "error", err)
				}
			}()
		}

		if cmd.Name() == "validate" {
			return nil
		}

		p, err := storage.Open(cmd.Context(), cfg.Storage)
		if err != nil {
			return fmt.Errorf("open storage: %w", err)
		}
		pool = p
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		logging.Sync()
		if metricsSrv != nil {
			_ = metricsSrv.Close()
		}
		if pool != nil {
			return pool.Close()
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug-level logging")
	rootCmd.PersistentFlags().BoolVar(&jsonLogs, "json-logs", false, "Emit logs as JSON")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Database path override (KOTADB_DB_PATH)")
	rootCmd.PersistentFlags().StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics at this address (e.g. :9090) for the command's duration")

	snapshotCmd.AddCommand(snapshotExportCmd, snapshotImportCmd, snapshotValidateCmd)
	projectCmd.AddCommand(projectCreateCmd, projectAddRepoCmd, projectRemoveRepoCmd, projectListReposCmd)
	migrateCmd.AddCommand(migrateStatusCmd)

	rootCmd.AddCommand(
		indexCmd,
		searchCmd,
		recentCmd,
		dependentsCmd,
		dependenciesCmd,
		migrateCmd,
		snapshotCmd,
		projectCmd,
	)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
