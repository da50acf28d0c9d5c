package parser

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/jayminwest/kotadb-index/internal/logging"
	"github.com/jayminwest/kotadb-index/internal/model"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// Parser converts source text into AST values for the supported
// TypeScript/JavaScript extension set (spec.md §6.1). Tree-sitter parser
// instances are pooled per-grammar, mirroring the teacher's
// Scanner.parserPool (internal/world/fs.go) since constructing a
// sitter.Parser is not free and parsers are not safe for concurrent use.
type Parser struct {
	tsPool  sync.Pool
	tsxPool sync.Pool
	jsPool  sync.Pool
}

// New creates a Parser ready to parse TypeScript/JavaScript source.
func New() *Parser {
	return &Parser{
		tsPool: sync.Pool{New: func() interface{} {
			p := sitter.NewParser()
			p.SetLanguage(typescript.GetLanguage())
			return p
		}},
		tsxPool: sync.Pool{New: func() interface{} {
			p := sitter.NewParser()
			p.SetLanguage(tsx.GetLanguage())
			return p
		}},
		jsPool: sync.Pool{New: func() interface{} {
			p := sitter.NewParser()
			p.SetLanguage(javascript.GetLanguage())
			return p
		}},
	}
}

// LanguageForPath returns the detected language label for a recognized
// extension, and ok=false for anything outside model.ExtensionLanguage.
func LanguageForPath(path string) (lang string, ok bool) {
	ext := strings.ToLower(filepath.Ext(path))
	lang, ok = model.ExtensionLanguage[ext]
	return lang, ok
}

// Parseable reports whether path's extension is routed through the AST
// parser rather than stored content-only (spec.md §6.1).
func Parseable(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return model.ParseableExtensions[ext]
}

func (p *Parser) poolFor(path string) (*sync.Pool, string) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".tsx":
		return &p.tsxPool, model.LangTypeScript
	case ".ts":
		return &p.tsPool, model.LangTypeScript
	default:
		return &p.jsPool, model.LangJavaScript
	}
}

func (p *Parser) parseInternal(ctx context.Context, path string, content []byte) (*AST, error) {
	pool, lang := p.poolFor(path)
	sp := pool.Get().(*sitter.Parser)
	defer pool.Put(sp)

	tree, err := sp.ParseCtx(ctx, nil, content)
	if err != nil {
		return nil, fmt.Errorf("tree-sitter parse %s: %w", path, err)
	}
	return &AST{Tree: tree, Source: content, Language: lang, Path: path}, nil
}

// Parse returns the parsed AST, or nil if the source has a syntax error
// anywhere in the tree (spec.md §4.2: "parse(path, content) -> AST |
// null").
func (p *Parser) Parse(ctx context.Context, path string, content []byte) *AST {
	timer := logging.StartTimer(logging.CategoryParser, "Parse "+filepath.Base(path))
	defer timer.Stop()

	ast, err := p.parseInternal(ctx, path, content)
	if err != nil {
		logging.Get(logging.CategoryParser).Warnf("parse failed for %s: %v", path, err)
		return nil
	}
	if hasError(ast.Root()) {
		ast.Close()
		return nil
	}
	return ast
}

// ParseWithRecovery attempts to yield a best-effort AST even when the
// source contains syntax errors (spec.md §4.2). Tree-sitter itself always
// returns a tree shaped around ERROR nodes, so recovery succeeds whenever
// at least one top-level declaration parsed cleanly; otherwise the AST is
// discarded and Errors carries at least one diagnostic.
func (p *Parser) ParseWithRecovery(ctx context.Context, path string, content []byte) Result {
	timer := logging.StartTimer(logging.CategoryParser, "ParseWithRecovery "+filepath.Base(path))
	defer timer.Stop()

	ast, err := p.parseInternal(ctx, path, content)
	if err != nil {
		line := 1
		return Result{Errors: []Diagnostic{{Message: err.Error(), Line: &line}}}
	}

	root := ast.Root()
	if !hasError(root) {
		return Result{AST: ast}
	}

	errs := collectDiagnostics(root, content)
	if !recoverable(root) {
		ast.Close()
		return Result{Errors: errs}
	}
	return Result{AST: ast, Partial: true, Errors: errs}
}

// hasError reports whether any node in the subtree rooted at n is an
// ERROR node or a MISSING node (tree-sitter's two error-recovery markers).
func hasError(n *sitter.Node) bool {
	if n == nil {
		return false
	}
	return n.HasError()
}

// recoverable reports whether the tree contains at least one cleanly
// parsed top-level declaration alongside its error nodes, i.e. recovery
// produced something extractors can use.
func recoverable(root *sitter.Node) bool {
	count := int(root.NamedChildCount())
	for i := 0; i < count; i++ {
		child := root.NamedChild(i)
		if child.Type() != "ERROR" && !child.IsMissing() {
			return true
		}
	}
	return false
}

// collectDiagnostics walks the tree and emits one diagnostic per ERROR or
// MISSING node encountered.
func collectDiagnostics(n *sitter.Node, source []byte) []Diagnostic {
	var out []Diagnostic
	var walk func(node *sitter.Node)
	walk = func(node *sitter.Node) {
		if node == nil {
			return
		}
		if node.Type() == "ERROR" || node.IsMissing() {
			line := Line(node)
			msg := fmt.Sprintf("unexpected syntax near line %d", line)
			out = append(out, Diagnostic{Message: msg, Line: &line})
		}
		count := int(node.ChildCount())
		for i := 0; i < count; i++ {
			walk(node.Child(i))
		}
	}
	walk(n)
	if len(out) == 0 {
		line := 1
		out = append(out, Diagnostic{Message: "syntax error", Line: &line})
	}
	return out
}

// ParseTimeout bounds how long a single file's parse may run before the
// caller's context is canceled; ingestion wires this per-file.
const ParseTimeout = 10 * time.Second
