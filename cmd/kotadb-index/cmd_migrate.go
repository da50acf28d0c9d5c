package main

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Schema migration inspection",
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "List applied migrations and their recorded checksums",
	RunE: func(cmd *cobra.Command, args []string) error {
		return pool.Read(cmd.Context(), func(ctx context.Context, db *sql.DB) error {
			rows, err := db.QueryContext(ctx, "SELECT name, applied_at, checksum FROM schema_migrations ORDER BY id")
			if err != nil {
				return fmt.Errorf("list schema_migrations: %w", err)
			}
			defer rows.Close()

			for rows.Next() {
				var name, appliedAt, checksum string
				if err := rows.Scan(&name, &appliedAt, &checksum); err != nil {
					return fmt.Errorf("scan schema_migrations row: %w", err)
				}
				fmt.Printf("%s\t%s\t%s\n", name, appliedAt, checksum)
			}
			return rows.Err()
		})
	},
}
