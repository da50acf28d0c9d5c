package parser_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jayminwest/kotadb-index/internal/model"
	"github.com/jayminwest/kotadb-index/internal/parser"
)

func TestFallbackFindsTopLevelDeclarations(t *testing.T) {
	src := []byte(`export function greet(name) {
  return name
}

export class Widget {
  render() {}
}

interface Props {
  name: string
}

export type ID = string

const enum Color { Red, Green }

export const MAX = 10

let total = 0
`)

	symbols := parser.Fallback(src)

	byName := map[string]model.Symbol{}
	for _, s := range symbols {
		byName[s.Name] = s
	}

	greet, ok := byName["greet"]
	require.True(t, ok)
	require.Equal(t, model.SymbolFunction, greet.Kind)
	require.True(t, greet.Metadata.IsExported)
	require.True(t, greet.Metadata.FromFallback)
	require.Equal(t, 1, greet.LineStart)

	widget, ok := byName["Widget"]
	require.True(t, ok)
	require.Equal(t, model.SymbolClass, widget.Kind)
	require.True(t, widget.Metadata.IsExported)

	props, ok := byName["Props"]
	require.True(t, ok)
	require.Equal(t, model.SymbolInterface, props.Kind)
	require.False(t, props.Metadata.IsExported)

	id, ok := byName["ID"]
	require.True(t, ok)
	require.Equal(t, model.SymbolType, id.Kind)

	color, ok := byName["Color"]
	require.True(t, ok)
	require.Equal(t, model.SymbolEnum, color.Kind)

	max, ok := byName["MAX"]
	require.True(t, ok)
	require.Equal(t, model.SymbolConstant, max.Kind)
	require.True(t, max.Metadata.IsExported)

	total, ok := byName["total"]
	require.True(t, ok)
	require.Equal(t, model.SymbolVariable, total.Kind)
	require.False(t, total.Metadata.IsExported)
}

func TestFallbackReturnsNilForNonDeclarationSource(t *testing.T) {
	src := []byte(`console.log("just a call, no declarations")
return 1
`)
	symbols := parser.Fallback(src)
	require.Empty(t, symbols)
}

func TestFallbackFirstMatchingPatternWins(t *testing.T) {
	src := []byte(`export function firstWord(s) { return s.split(" ")[0] }`)
	symbols := parser.Fallback(src)
	require.Len(t, symbols, 1)
	require.Equal(t, model.SymbolFunction, symbols[0].Kind)
}
