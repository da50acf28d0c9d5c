package model

// SymbolKind enumerates the 12 legal symbol kinds (spec.md §3.1 / §6.3).
type SymbolKind string

const (
	SymbolFunction    SymbolKind = "function"
	SymbolClass       SymbolKind = "class"
	SymbolInterface   SymbolKind = "interface"
	SymbolType        SymbolKind = "type"
	SymbolVariable    SymbolKind = "variable"
	SymbolConstant    SymbolKind = "constant"
	SymbolMethod      SymbolKind = "method"
	SymbolProperty    SymbolKind = "property"
	SymbolModule      SymbolKind = "module"
	SymbolNamespace   SymbolKind = "namespace"
	SymbolEnum        SymbolKind = "enum"
	SymbolEnumMember  SymbolKind = "enum_member"
)

// ValidSymbolKinds is the enumerated set a Symbol.Kind must belong to
// (spec.md invariant #3).
var ValidSymbolKinds = map[SymbolKind]bool{
	SymbolFunction:   true,
	SymbolClass:      true,
	SymbolInterface:  true,
	SymbolType:       true,
	SymbolVariable:   true,
	SymbolConstant:   true,
	SymbolMethod:     true,
	SymbolProperty:   true,
	SymbolModule:     true,
	SymbolNamespace:  true,
	SymbolEnum:       true,
	SymbolEnumMember: true,
}

// AccessModifier is a class-member visibility modifier.
type AccessModifier string

const (
	AccessPublic    AccessModifier = "public"
	AccessPrivate   AccessModifier = "private"
	AccessProtected AccessModifier = "protected"
)

// SymbolMetadata is the strongly-typed shape of a Symbol's metadata column
// (spec.md §3.1: "is_exported, is_async, access modifier, generic params").
type SymbolMetadata struct {
	IsExported     bool           `json:"is_exported"`
	IsAsync        bool           `json:"is_async,omitempty"`
	Access         AccessModifier `json:"access,omitempty"`
	IsReadonly     bool           `json:"is_readonly,omitempty"`
	GenericParams  []string       `json:"generic_params,omitempty"`
	FromFallback   bool           `json:"from_fallback,omitempty"` // regex-fallback extraction, reduced precision (§4.2)
}

// Symbol is a definition inside a file (spec.md §3.1).
type Symbol struct {
	ID            string         `json:"id"`
	FileID        string         `json:"file_id"`
	RepositoryID  string         `json:"repository_id"`
	Name          string         `json:"name"`
	Kind          SymbolKind     `json:"kind"`
	LineStart     int            `json:"line_start"` // 1-based
	LineEnd       int            `json:"line_end"`   // 1-based
	ColumnStart   int            `json:"column_start"` // 0-based
	ColumnEnd     int            `json:"column_end"`   // 0-based
	Signature     *string        `json:"signature,omitempty"`
	Documentation *string        `json:"documentation,omitempty"`
	Metadata      SymbolMetadata `json:"metadata"`
}

// AnonymousDefaultExportName is the name assigned to anonymous default
// exports (spec.md §4.3).
const AnonymousDefaultExportName = "<anonymous>"
