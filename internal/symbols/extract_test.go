package symbols_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jayminwest/kotadb-index/internal/model"
	"github.com/jayminwest/kotadb-index/internal/parser"
	"github.com/jayminwest/kotadb-index/internal/symbols"
)

func parseTS(t *testing.T, src string) *parser.AST {
	t.Helper()
	p := parser.New()
	ast := p.Parse(context.Background(), "widget.ts", []byte(src))
	require.NotNil(t, ast)
	t.Cleanup(ast.Close)
	return ast
}

func names(syms []model.Symbol) []string {
	var out []string
	for _, s := range syms {
		out = append(out, s.Name)
	}
	return out
}

func TestExtractFunctionAndClass(t *testing.T) {
	src := `
export function createWidget(): Widget {
  return {} as Widget
}

export class WidgetFactory<T> {
  private count: number = 0
  async build(): Promise<T> {
    return null as any
  }
}
`
	ast := parseTS(t, src)
	syms := symbols.Extract(ast, "file-1", "repo-1")

	require.Contains(t, names(syms), "createWidget")
	require.Contains(t, names(syms), "WidgetFactory")
	require.Contains(t, names(syms), "build")
	require.Contains(t, names(syms), "count")

	for _, s := range syms {
		require.Equal(t, "file-1", s.FileID)
		require.Equal(t, "repo-1", s.RepositoryID)
		switch s.Name {
		case "createWidget":
			require.Equal(t, model.SymbolFunction, s.Kind)
			require.True(t, s.Metadata.IsExported)
		case "WidgetFactory":
			require.Equal(t, model.SymbolClass, s.Kind)
			require.Equal(t, []string{"T"}, s.Metadata.GenericParams)
		case "build":
			require.Equal(t, model.SymbolMethod, s.Kind)
			require.True(t, s.Metadata.IsAsync)
		case "count":
			require.Equal(t, model.SymbolProperty, s.Kind)
			require.Equal(t, model.AccessPrivate, s.Metadata.Access)
		}
	}
}

func TestExtractEnumAndConst(t *testing.T) {
	src := `
export enum Color {
  Red,
  Green,
  Blue
}

export const MAX_SIZE = 100

const internalOnly = 1
`
	ast := parseTS(t, src)
	syms := symbols.Extract(ast, "file-1", "repo-1")

	require.Contains(t, names(syms), "Color")
	require.Contains(t, names(syms), "Red")
	require.Contains(t, names(syms), "MAX_SIZE")
	require.NotContains(t, names(syms), "internalOnly", "non-exported top-level const must not be emitted (spec.md §4.3)")

	for _, s := range syms {
		if s.Name == "MAX_SIZE" {
			require.Equal(t, model.SymbolConstant, s.Kind)
			require.True(t, s.Metadata.IsExported)
		}
		if s.Name == "Red" {
			require.Equal(t, model.SymbolEnumMember, s.Kind)
		}
	}
}

func TestExtractInterfaceAndType(t *testing.T) {
	src := `
export interface Widget {
  id: string
}

export type WidgetID = string
`
	ast := parseTS(t, src)
	syms := symbols.Extract(ast, "file-1", "repo-1")
	require.Contains(t, names(syms), "Widget")
	require.Contains(t, names(syms), "WidgetID")
}
