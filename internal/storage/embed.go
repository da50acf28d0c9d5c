package storage

import "embed"

// schemaFS embeds the baseline schema and any numbered migration files
// shipped with the binary, mirroring the teacher's internal/core/defaults
// embed-at-build-time pattern for baked-in SQL/data assets.
//
//go:embed schema/*.sql
var schemaFS embed.FS

const baselineMigrationFile = "schema/0001_baseline.sql"
