// Package resolve turns an import specifier into the absolute path of the
// file it refers to within a discovered file set (spec.md §4.5). No pack
// example implements TypeScript-style baseUrl/paths alias resolution, so
// this package is standard-library-only (path/filepath, encoding/json);
// see DESIGN.md for the justification this spec requires before reaching
// for stdlib over a third-party dependency.
package resolve

import "path/filepath"

// searchExtensions is the extension search order spec.md §4.5 mandates:
// ".ts" must be preferred over ".js" when both exist.
var searchExtensions = []string{".ts", ".tsx", ".js", ".jsx", ".cjs", ".mjs"}

// Resolver resolves import specifiers against a fixed set of discovered
// file paths and an optional path-alias configuration.
type Resolver struct {
	files   map[string]bool // absolute, slash-normalized paths known to exist
	aliases *PathAliases
}

// New builds a Resolver over discoveredPaths (absolute paths), optionally
// configured with path aliases (nil disables alias resolution).
func New(discoveredPaths []string, aliases *PathAliases) *Resolver {
	files := make(map[string]bool, len(discoveredPaths))
	for _, p := range discoveredPaths {
		files[filepath.ToSlash(p)] = true
	}
	return &Resolver{files: files, aliases: aliases}
}

// Resolve returns the absolute path specifier resolves to from within
// importerPath, or "" if it does not resolve to a project file (spec.md
// §4.5: external packages and bare specifiers resolve to null).
func (r *Resolver) Resolve(specifier, importerPath string) string {
	switch classify(specifier) {
	case specifierRelative:
		base := filepath.Join(filepath.Dir(importerPath), specifier)
		return r.searchCandidate(base)
	case specifierAbsolute:
		return ""
	default:
		if r.aliases != nil {
			for _, candidate := range r.aliases.Expand(specifier) {
				if resolved := r.searchCandidate(candidate); resolved != "" {
					return resolved
				}
			}
		}
		return ""
	}
}

type specifierKind int

const (
	specifierBare specifierKind = iota
	specifierRelative
	specifierAbsolute
)

func classify(specifier string) specifierKind {
	switch {
	case len(specifier) >= 2 && specifier[:2] == "./":
		return specifierRelative
	case len(specifier) >= 3 && specifier[:3] == "../":
		return specifierRelative
	case filepath.IsAbs(specifier):
		return specifierAbsolute
	default:
		return specifierBare
	}
}

// searchCandidate tries candidate itself (if it already has a known
// extension), then every search extension appended, then index.<ext> within
// candidate treated as a directory (spec.md §4.5's extension/index rules).
func (r *Resolver) searchCandidate(candidate string) string {
	norm := filepath.ToSlash(candidate)
	if r.files[norm] {
		return norm
	}
	for _, ext := range searchExtensions {
		if p := norm + ext; r.files[p] {
			return p
		}
	}
	for _, ext := range searchExtensions {
		if p := norm + "/index" + ext; r.files[p] {
			return p
		}
	}
	return ""
}
