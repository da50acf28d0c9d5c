package main

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jayminwest/kotadb-index/internal/discover"
	"github.com/jayminwest/kotadb-index/internal/ingest"
	"github.com/jayminwest/kotadb-index/internal/model"
	"github.com/jayminwest/kotadb-index/internal/resolve"
	"github.com/jayminwest/kotadb-index/internal/storage"
)

var (
	indexFullName string
	indexBranch   string
)

var indexCmd = &cobra.Command{
	Use:   "index <path>",
	Short: "Discover, parse, and index every source file under path",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := filepath.Abs(args[0])
		if err != nil {
			return fmt.Errorf("resolve repository path: %w", err)
		}

		fullName := indexFullName
		if fullName == "" {
			fullName = filepath.Base(root)
		}

		files, err := discover.Walk(cmd.Context(), root, discover.Options{
			IgnoreDirs:   cfg.Ingest.IgnoreDirs,
			IgnoreGlobs:  cfg.Ingest.IgnoreGlobs,
			MaxFileBytes: cfg.Ingest.MaxFileBytes,
			WorkerCount:  cfg.Ingest.WorkerCount,
		})
		if err != nil {
			return fmt.Errorf("discover files: %w", err)
		}

		aliases, err := resolve.LoadPathAliases(root)
		if err != nil {
			return fmt.Errorf("load path aliases: %w", err)
		}

		absPaths := make([]string, len(files))
		inputs := make([]ingest.FileInput, len(files))
		for i, f := range files {
			absPaths[i] = f.AbsPath
			inputs[i] = ingest.FileInput{
				Path:        f.Path,
				Content:     f.Content,
				ContentHash: f.ContentHash,
				SizeBytes:   f.SizeBytes,
			}
		}
		resolver := resolve.New(absPaths, aliases)

		var repo *model.Repository
		err = pool.Read(cmd.Context(), func(ctx context.Context, db *sql.DB) error {
			existing, err := storage.GetRepositoryByFullName(ctx, db, fullName)
			if err == nil {
				repo = existing
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("look up repository %s: %w", fullName, err)
		}
		if repo == nil {
			repo = &model.Repository{
				ID:            uuid.NewString(),
				Name:          filepath.Base(root),
				FullName:      fullName,
				DefaultBranch: indexBranch,
				CreatedAt:     time.Now(),
				UpdatedAt:     time.Now(),
			}
		} else {
			repo.UpdatedAt = time.Now()
		}

		result, err := ingest.Run(cmd.Context(), pool, repo, inputs, ingest.Options{
			WorkerCount: cfg.Ingest.WorkerCount,
			Resolver:    resolver,
			RepoRoot:    root,
		})
		if err != nil {
			return fmt.Errorf("ingest %s: %w", root, err)
		}

		fmt.Printf("repository %s: %d files, %d symbols, %d references, %d dependency edges\n",
			result.RepositoryID, result.FilesIndexed, result.SymbolsExtracted,
			result.ReferencesFound, result.DependenciesExtracted)
		return nil
	},
}

func init() {
	indexCmd.Flags().StringVar(&indexFullName, "full-name", "", "Repository full name (default: directory base name)")
	indexCmd.Flags().StringVar(&indexBranch, "branch", "main", "Default branch recorded for a newly created repository")
}
