package model

// DependencyType enumerates the two edge kinds in the dependency graph
// (spec.md §3.1).
type DependencyType string

const (
	DependencyFileImport   DependencyType = "file_import"
	DependencySymbolUsage  DependencyType = "symbol_usage"
)

// DependencyEdgeMetadata carries free-form edge context (e.g. the
// reference that produced the edge).
type DependencyEdgeMetadata struct {
	ReferenceID string `json:"reference_id,omitempty"`
}

// DependencyEdge is a directed edge in the cross-file dependency graph
// (spec.md §3.1). Exactly one of (FromFileID, FromSymbolID) and one of
// (ToFileID, ToSymbolID) is set, depending on Type.
type DependencyEdge struct {
	ID           string                 `json:"id"`
	RepositoryID string                 `json:"repository_id"`
	FromFileID   *string                `json:"from_file_id,omitempty"`
	ToFileID     *string                `json:"to_file_id,omitempty"`
	FromSymbolID *string                `json:"from_symbol_id,omitempty"`
	ToSymbolID   *string                `json:"to_symbol_id,omitempty"`
	Type         DependencyType         `json:"dependency_type"`
	Metadata     DependencyEdgeMetadata `json:"metadata"`
}

// NodeRef identifies one endpoint of a dependency edge, file or symbol.
type NodeRef struct {
	FileID   string
	SymbolID string
}

// IsSymbol reports whether this node ref is a symbol node rather than a
// file node.
func (n NodeRef) IsSymbol() bool {
	return n.SymbolID != ""
}

// Key returns a string uniquely identifying this node across the combined
// file/symbol node space, for use as a map key in graph traversal.
func (n NodeRef) Key() string {
	if n.IsSymbol() {
		return "sym:" + n.SymbolID
	}
	return "file:" + n.FileID
}
