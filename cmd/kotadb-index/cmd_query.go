package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jayminwest/kotadb-index/internal/graph"
	"github.com/jayminwest/kotadb-index/internal/query"
)

var queryRepoID string

var searchCmd = &cobra.Command{
	Use:   "search <term>",
	Short: "Full-text search over a repository's indexed files",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		results, err := query.SearchFiles(cmd.Context(), pool, queryRepoID, args[0], limit)
		if err != nil {
			return err
		}
		for _, r := range results {
			fmt.Printf("%s\t(rank %.3f)\n", r.File.Path, r.Rank)
		}
		return nil
	},
}

var recentCmd = &cobra.Command{
	Use:   "recent",
	Short: "List a repository's most recently indexed files",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		files, err := query.RecentFiles(cmd.Context(), pool, queryRepoID, limit)
		if err != nil {
			return err
		}
		for _, f := range files {
			fmt.Printf("%s\t%s\n", f.Path, f.IndexedAt.Format("2006-01-02T15:04:05Z07:00"))
		}
		return nil
	},
}

var dependentsCmd = &cobra.Command{
	Use:   "dependents <file-path>",
	Short: "List files/symbols that transitively depend on a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		depth, _ := cmd.Flags().GetInt("depth")
		fileID, err := query.ResolveFilePath(cmd.Context(), pool, queryRepoID, args[0])
		if err != nil {
			return err
		}
		if fileID == "" {
			return fmt.Errorf("file not indexed: %s", args[0])
		}
		results, err := query.QueryDependents(cmd.Context(), pool, queryRepoID, query.Target{FileID: fileID}, depth)
		if err != nil {
			return err
		}
		printTraversal(results)
		return nil
	},
}

var dependenciesCmd = &cobra.Command{
	Use:   "dependencies <file-path>",
	Short: "List files/symbols a file transitively depends on",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		depth, _ := cmd.Flags().GetInt("depth")
		fileID, err := query.ResolveFilePath(cmd.Context(), pool, queryRepoID, args[0])
		if err != nil {
			return err
		}
		if fileID == "" {
			return fmt.Errorf("file not indexed: %s", args[0])
		}
		results, err := query.QueryDependencies(cmd.Context(), pool, queryRepoID, query.Target{FileID: fileID}, depth)
		if err != nil {
			return err
		}
		printTraversal(results)
		return nil
	},
}

func printTraversal(results []graph.TraversalResult) {
	for _, r := range results {
		fmt.Printf("%s\t(depth %d)\n", r.NodeKey, r.Depth)
	}
}

func init() {
	for _, c := range []*cobra.Command{searchCmd, recentCmd, dependentsCmd, dependenciesCmd} {
		c.Flags().StringVar(&queryRepoID, "repo", "", "Repository id (required)")
		c.MarkFlagRequired("repo")
	}
	searchCmd.Flags().Int("limit", 20, "Maximum results")
	recentCmd.Flags().Int("limit", 20, "Maximum results")
	dependentsCmd.Flags().Int("depth", 0, "Maximum traversal depth (0 = unbounded)")
	dependenciesCmd.Flags().Int("depth", 0, "Maximum traversal depth (0 = unbounded)")
}
