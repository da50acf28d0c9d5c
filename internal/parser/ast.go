// Package parser converts TypeScript/JavaScript source text into a
// tree-sitter-backed AST with an error-recovery contract, and falls back to
// a line-oriented regex pass when even recovery yields nothing usable
// (spec.md §4.2). Grounded on the teacher's tree-sitter wrapper
// (internal/world/ast_treesitter.go, typescript_parser.go), generalized
// from the teacher's bespoke CodeElement output to a reusable AST handle
// that the symbol/reference extractors walk directly.
package parser

import (
	sitter "github.com/smacker/go-tree-sitter"
)

// AST wraps a parsed tree-sitter tree together with the source bytes and
// detected language, so downstream extractors never need to re-open the
// file or guess the grammar that produced a node.
type AST struct {
	Tree     *sitter.Tree
	Source   []byte
	Language string // "typescript" or "javascript", see model.Language*
	Path     string
}

// Root returns the tree's root node.
func (a *AST) Root() *sitter.Node {
	return a.Tree.RootNode()
}

// Close releases the underlying tree-sitter tree. Callers must call this
// once they are done walking the AST.
func (a *AST) Close() {
	if a != nil && a.Tree != nil {
		a.Tree.Close()
	}
}

// Text returns the source text spanned by node.
func (a *AST) Text(node *sitter.Node) string {
	if node == nil {
		return ""
	}
	return node.Content(a.Source)
}

// Line returns the 1-based line a node starts on.
func Line(node *sitter.Node) int {
	return int(node.StartPoint().Row) + 1
}

// EndLine returns the 1-based line a node ends on.
func EndLine(node *sitter.Node) int {
	return int(node.EndPoint().Row) + 1
}

// Column returns the 0-based column a node starts on.
func Column(node *sitter.Node) int {
	return int(node.StartPoint().Column)
}

// EndColumn returns the 0-based column a node ends on.
func EndColumn(node *sitter.Node) int {
	return int(node.EndPoint().Column)
}
