package parser_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jayminwest/kotadb-index/internal/model"
	"github.com/jayminwest/kotadb-index/internal/parser"
)

func TestLanguageForPath(t *testing.T) {
	lang, ok := parser.LanguageForPath("src/widget.tsx")
	require.True(t, ok)
	require.Equal(t, model.LangTypeScript, lang)

	lang, ok = parser.LanguageForPath("src/widget.mjs")
	require.True(t, ok)
	require.Equal(t, model.LangJavaScript, lang)

	_, ok = parser.LanguageForPath("schema.sql")
	require.False(t, ok)
}

func TestParseable(t *testing.T) {
	require.True(t, parser.Parseable("widget.ts"))
	require.True(t, parser.Parseable("widget.jsx"))
	require.False(t, parser.Parseable("schema.sql"))
}

func TestParseReturnsASTForValidSource(t *testing.T) {
	p := parser.New()
	src := []byte(`export function greet(name: string): string {
	return "hello " + name
}
`)
	ast := p.Parse(context.Background(), "greet.ts", src)
	require.NotNil(t, ast)
	defer ast.Close()

	require.Equal(t, model.LangTypeScript, ast.Language)
	require.Equal(t, "greet.ts", ast.Path)
	require.NotNil(t, ast.Root())
}

func TestParseReturnsNilOnSyntaxError(t *testing.T) {
	p := parser.New()
	src := []byte(`export function broken( {{{`)
	ast := p.Parse(context.Background(), "broken.ts", src)
	require.Nil(t, ast)
}

func TestParseWithRecoveryReturnsCleanASTWhenNoErrors(t *testing.T) {
	p := parser.New()
	src := []byte(`const x = 1
`)
	result := p.ParseWithRecovery(context.Background(), "clean.js", src)
	require.NotNil(t, result.AST)
	defer result.AST.Close()

	require.False(t, result.Partial)
	require.Empty(t, result.Errors)
}

func TestParseWithRecoveryYieldsPartialASTAlongsideDiagnostics(t *testing.T) {
	p := parser.New()
	src := []byte(`function ok() { return 1 }

function broken(
`)
	result := p.ParseWithRecovery(context.Background(), "partial.js", src)
	require.NotEmpty(t, result.Errors)
	for _, d := range result.Errors {
		require.NotEmpty(t, d.Message)
	}

	if result.AST != nil {
		require.True(t, result.Partial)
		result.AST.Close()
	}
}

func TestParseWithRecoveryDiscardsASTWhenNothingRecovers(t *testing.T) {
	p := parser.New()
	src := []byte(`{{{{{`)
	result := p.ParseWithRecovery(context.Background(), "garbage.ts", src)
	require.Nil(t, result.AST)
	require.NotEmpty(t, result.Errors)
}

func TestASTTextAndLineHelpers(t *testing.T) {
	p := parser.New()
	src := []byte("function greet() {\n  return 1\n}\n")
	ast := p.Parse(context.Background(), "greet.js", src)
	require.NotNil(t, ast)
	defer ast.Close()

	root := ast.Root()
	fn := root.NamedChild(0)
	require.NotNil(t, fn)
	require.Equal(t, 1, parser.Line(fn))
	require.GreaterOrEqual(t, parser.EndLine(fn), parser.Line(fn))
	require.Equal(t, 0, parser.Column(fn))
	require.Contains(t, ast.Text(fn), "greet")
}
