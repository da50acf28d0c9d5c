package model

// ReferenceType enumerates the legal reference kinds (spec.md §3.1 / §4.4).
type ReferenceType string

const (
	RefImport         ReferenceType = "import"
	RefCall           ReferenceType = "call"
	RefExtends        ReferenceType = "extends"
	RefImplements     ReferenceType = "implements"
	RefPropertyAccess ReferenceType = "property_access"
	RefTypeReference  ReferenceType = "type_reference"
	RefVariableRef    ReferenceType = "variable_reference"
	RefReExport       ReferenceType = "re_export"
	RefExportAll      ReferenceType = "export_all"
	RefDynamicImport  ReferenceType = "dynamic_import"
)

// ValidReferenceTypes is the enumerated set a Reference.Type must belong to
// (spec.md invariant #3).
var ValidReferenceTypes = map[ReferenceType]bool{
	RefImport:         true,
	RefCall:           true,
	RefExtends:        true,
	RefImplements:     true,
	RefPropertyAccess: true,
	RefTypeReference:  true,
	RefVariableRef:    true,
	RefReExport:       true,
	RefExportAll:      true,
	RefDynamicImport:  true,
}

// ReferenceMetadata is the strongly-typed shape of a Reference's metadata
// column (spec.md §4.4 table).
type ReferenceMetadata struct {
	ImportSource        string `json:"import_source,omitempty"`
	ImportAlias         string `json:"import_alias,omitempty"`
	IsDefaultImport     bool   `json:"is_default_import,omitempty"`
	IsNamespaceImport   bool   `json:"is_namespace_import,omitempty"`
	IsSideEffectImport  bool   `json:"is_side_effect_import,omitempty"`
	LocalName           string `json:"local_name,omitempty"`
	ExportedName        string `json:"exported_name,omitempty"`
	ExportedAs          string `json:"exported_as,omitempty"`
	IsMethodCall        bool   `json:"is_method_call,omitempty"`
	IsOptionalChaining  bool   `json:"is_optional_chaining,omitempty"`
	IsDynamic           bool   `json:"is_dynamic,omitempty"`
	IsTemplatePattern   bool   `json:"is_template_pattern,omitempty"`
	TargetName          string `json:"target_name,omitempty"`
}

// UnresolvableDynamicImportSource is used when a dynamic import's argument
// cannot be resolved to any literal or single-wildcard template
// (spec.md §4.4 table, dynamic_import row).
const UnresolvableDynamicImportSource = "<dynamic>"

// Reference is a use of a name within a file (spec.md §3.1).
type Reference struct {
	ID             string            `json:"id"`
	FileID         string            `json:"file_id"`
	RepositoryID   string            `json:"repository_id"`
	SymbolName     string            `json:"symbol_name"` // textual reference, not necessarily globally unique
	TargetSymbolID *string           `json:"target_symbol_id,omitempty"`
	TargetFilePath *string           `json:"target_file_path,omitempty"`
	LineNumber     int               `json:"line_number"`   // 1-based
	ColumnNumber   int               `json:"column_number"` // 0-based
	Type           ReferenceType     `json:"reference_type"`
	Metadata       ReferenceMetadata `json:"metadata"`
}
