package references_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jayminwest/kotadb-index/internal/model"
	"github.com/jayminwest/kotadb-index/internal/parser"
	"github.com/jayminwest/kotadb-index/internal/references"
)

func parseTS(t *testing.T, src string) *parser.AST {
	t.Helper()
	p := parser.New()
	ast := p.Parse(context.Background(), "widget.ts", []byte(src))
	require.NotNil(t, ast)
	t.Cleanup(ast.Close)
	return ast
}

func byType(refs []model.Reference, rt model.ReferenceType) []model.Reference {
	var out []model.Reference
	for _, r := range refs {
		if r.Type == rt {
			out = append(out, r)
		}
	}
	return out
}

func TestExtractImports(t *testing.T) {
	src := `
import { createWidget } from "./widget"
import Default from "./default-widget"
import * as NS from "./ns-widget"
import "./side-effect"
`
	ast := parseTS(t, src)
	refs := references.Extract(ast, "file-1", "repo-1")

	imports := byType(refs, model.RefImport)
	require.Len(t, imports, 4)

	var foundNamed, foundDefault, foundNS, foundSideEffect bool
	for _, r := range imports {
		switch {
		case r.SymbolName == "createWidget":
			foundNamed = true
			require.Equal(t, "./widget", r.Metadata.ImportSource)
		case r.Metadata.IsDefaultImport:
			foundDefault = true
		case r.Metadata.IsNamespaceImport:
			foundNS = true
		case r.Metadata.IsSideEffectImport:
			foundSideEffect = true
		}
	}
	require.True(t, foundNamed)
	require.True(t, foundDefault)
	require.True(t, foundNS)
	require.True(t, foundSideEffect)
}

func TestExtractReExportAndExportAll(t *testing.T) {
	src := `
export { Widget } from "./widget"
export * from "./all"
export * as NS from "./ns"
`
	ast := parseTS(t, src)
	refs := references.Extract(ast, "file-1", "repo-1")

	require.Len(t, byType(refs, model.RefReExport), 1)
	require.Len(t, byType(refs, model.RefExportAll), 2)
}

func TestExtractCallAndPropertyAccess(t *testing.T) {
	src := `
widget.build()
widget?.build()
const x = widget.id
const y = widget[key]
`
	ast := parseTS(t, src)
	refs := references.Extract(ast, "file-1", "repo-1")

	calls := byType(refs, model.RefCall)
	require.GreaterOrEqual(t, len(calls), 1)

	props := byType(refs, model.RefPropertyAccess)
	var foundID bool
	for _, p := range props {
		if p.SymbolName == "id" {
			foundID = true
		}
		require.NotEqual(t, "key", p.SymbolName) // computed access must not emit property_access
	}
	require.True(t, foundID)
}

func TestExtractClassHeritage(t *testing.T) {
	src := `
class Widget extends BaseWidget implements Renderable, Disposable {
  render() {}
}
`
	ast := parseTS(t, src)
	refs := references.Extract(ast, "file-1", "repo-1")

	extends := byType(refs, model.RefExtends)
	require.Len(t, extends, 1)
	require.Equal(t, "BaseWidget", extends[0].SymbolName)

	implements := byType(refs, model.RefImplements)
	require.Len(t, implements, 2)
	var names []string
	for _, r := range implements {
		names = append(names, r.SymbolName)
	}
	require.Contains(t, names, "Renderable")
	require.Contains(t, names, "Disposable")
}

func TestExtractDynamicImport(t *testing.T) {
	src := `
const mod = import("./widget")
`
	ast := parseTS(t, src)
	refs := references.Extract(ast, "file-1", "repo-1")

	dynamic := byType(refs, model.RefDynamicImport)
	require.Len(t, dynamic, 1)
	require.Equal(t, "./widget", dynamic[0].Metadata.ImportSource)
	require.True(t, dynamic[0].Metadata.IsDynamic)
}
