package model

import "time"

// FileMetadata is the strongly-typed shape of an IndexedFile's metadata
// column (spec.md §3.1: "metadata including declared dependencies and
// project-root origin").
type FileMetadata struct {
	Dependencies []string `json:"dependencies,omitempty"`
	ProjectRoot  string   `json:"project_root,omitempty"`
}

// IndexedFile is one parsed source file within a repository (spec.md §3.1).
type IndexedFile struct {
	ID           string       `json:"id"`
	RepositoryID string       `json:"repository_id"`
	Path         string       `json:"path"`
	Content      string       `json:"content"`
	Language     string       `json:"language"`
	SizeBytes    int64        `json:"size_bytes"`
	ContentHash  string       `json:"content_hash,omitempty"`
	IndexedAt    time.Time    `json:"indexed_at"`
	Metadata     FileMetadata `json:"metadata"`
}

// Language extensions recognized for AST parsing (spec.md §6.1).
const (
	LangTypeScript = "typescript"
	LangTSX        = "typescript" // .tsx parses as typescript with JSX support
	LangJavaScript = "javascript"
	LangSQL        = "sql"
	LangOther      = "other"
)

// ExtensionLanguage maps a recognized file extension to its detected
// language label. ".sql" files are stored verbatim without AST parsing
// (spec.md §6.1); any other extension outside this map is discovered but
// only its content is stored.
var ExtensionLanguage = map[string]string{
	".ts":  LangTypeScript,
	".tsx": LangTypeScript,
	".js":  LangJavaScript,
	".jsx": LangJavaScript,
	".cjs": LangJavaScript,
	".mjs": LangJavaScript,
	".sql": LangSQL,
}

// ParseableExtensions are the extensions routed through the AST parser
// (everything in ExtensionLanguage except .sql, per spec.md §6.1).
var ParseableExtensions = map[string]bool{
	".ts":  true,
	".tsx": true,
	".js":  true,
	".jsx": true,
	".cjs": true,
	".mjs": true,
}
