// Package symbols walks a parsed AST and extracts symbol definitions
// (spec.md §4.3). Grounded on the teacher's TypeScriptCodeParser.walkNode
// node-type dispatch (internal/world/typescript_parser.go), generalized
// from the teacher's CodeElement output to model.Symbol and extended to
// cover every kind spec.md §3.1 names (enums/enum members, namespaces,
// properties, access modifiers) that the teacher's agent-context extractor
// never needed.
package symbols

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/jayminwest/kotadb-index/internal/model"
	"github.com/jayminwest/kotadb-index/internal/parser"
)

// Extract walks ast and returns the symbols it defines. The walk descends
// through nested statements and expressions and into namespace bodies; it
// does not descend into the bodies of function, class, interface or enum
// declarations (class methods and fields and enum members are emitted), nor
// into const/let/var declarations. fileID and repositoryID are stamped onto
// each emitted symbol so callers don't need a second pass to attach them.
func Extract(ast *parser.AST, fileID, repositoryID string) []model.Symbol {
	w := &walker{ast: ast, fileID: fileID, repositoryID: repositoryID}
	w.walk(ast.Root(), "")
	return w.out
}

type walker struct {
	ast          *parser.AST
	fileID       string
	repositoryID string
	out          []model.Symbol
}

func (w *walker) emit(name string, kind model.SymbolKind, node *sitter.Node, meta model.SymbolMetadata) {
	if name == "" {
		name = model.AnonymousDefaultExportName
	}
	w.out = append(w.out, model.Symbol{
		FileID:       w.fileID,
		RepositoryID: w.repositoryID,
		Name:         name,
		Kind:         kind,
		LineStart:    parser.Line(node),
		LineEnd:      parser.EndLine(node),
		ColumnStart:  parser.Column(node),
		ColumnEnd:    parser.EndColumn(node),
		Signature:    strPtr(w.signatureLine(node)),
		Metadata:     meta,
	})
}

// signatureLine returns the trimmed source line the node starts on, the
// same "first line as signature" heuristic the teacher uses.
func (w *walker) signatureLine(node *sitter.Node) string {
	lines := strings.Split(string(w.ast.Source), "\n")
	line := parser.Line(node)
	if line > 0 && line <= len(lines) {
		return strings.TrimSpace(lines[line-1])
	}
	return ""
}

func isExported(n *sitter.Node) bool {
	parent := n.Parent()
	return parent != nil && parent.Type() == "export_statement"
}

// walk recurses through node, dispatching on node type exactly as the
// teacher's walkNode does. namespacePrefix carries the enclosing namespace
// name down the recursion; no emitted symbol records it, and names stay
// unqualified within their file (spec.md §4.3).
func (w *walker) walk(node *sitter.Node, namespacePrefix string) {
	count := int(node.NamedChildCount())
	for i := 0; i < count; i++ {
		child := node.NamedChild(i)
		switch child.Type() {
		case "class_declaration", "abstract_class_declaration":
			w.classDecl(child)
		case "interface_declaration":
			w.interfaceDecl(child)
		case "type_alias_declaration":
			w.typeAlias(child)
		case "function_declaration", "generator_function_declaration":
			w.funcDecl(child)
		case "enum_declaration":
			w.enumDecl(child)
		case "internal_module", "module":
			w.namespaceDecl(child)
		case "lexical_declaration", "variable_declaration":
			w.varDecl(child)
		case "export_statement":
			w.walk(child, namespacePrefix)
		default:
			w.walk(child, namespacePrefix)
		}
	}
}

func (w *walker) classDecl(node *sitter.Node) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	name := w.ast.Text(nameNode)
	w.emit(name, model.SymbolClass, node, model.SymbolMetadata{
		IsExported:    isExported(node),
		GenericParams: typeParamNames(node, w.ast),
	})

	body := node.ChildByFieldName("body")
	if body == nil {
		return
	}
	count := int(body.NamedChildCount())
	for i := 0; i < count; i++ {
		member := body.NamedChild(i)
		switch member.Type() {
		case "method_definition":
			w.methodDef(member)
		case "public_field_definition":
			w.fieldDef(member)
		}
	}
}

func (w *walker) interfaceDecl(node *sitter.Node) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	w.emit(w.ast.Text(nameNode), model.SymbolInterface, node, model.SymbolMetadata{
		IsExported:    isExported(node),
		GenericParams: typeParamNames(node, w.ast),
	})
}

func (w *walker) typeAlias(node *sitter.Node) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	w.emit(w.ast.Text(nameNode), model.SymbolType, node, model.SymbolMetadata{
		IsExported:    isExported(node),
		GenericParams: typeParamNames(node, w.ast),
	})
}

func (w *walker) funcDecl(node *sitter.Node) {
	nameNode := node.ChildByFieldName("name")
	name := ""
	if nameNode != nil {
		name = w.ast.Text(nameNode)
	}
	w.emit(name, model.SymbolFunction, node, model.SymbolMetadata{
		IsExported: isExported(node),
		IsAsync:    hasAsyncModifier(node, w.ast),
	})
}

func (w *walker) methodDef(node *sitter.Node) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	sig := w.signatureLine(node)
	w.emit(w.ast.Text(nameNode), model.SymbolMethod, node, model.SymbolMetadata{
		IsExported: true, // class membership implies visibility to instances, not file export
		IsAsync:    strings.Contains(sig, "async "),
		Access:     accessModifier(sig),
		IsReadonly: strings.Contains(sig, "readonly "),
	})
}

func (w *walker) fieldDef(node *sitter.Node) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	sig := w.signatureLine(node)
	w.emit(w.ast.Text(nameNode), model.SymbolProperty, node, model.SymbolMetadata{
		Access:     accessModifier(sig),
		IsReadonly: strings.Contains(sig, "readonly "),
	})
}

func (w *walker) enumDecl(node *sitter.Node) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	w.emit(w.ast.Text(nameNode), model.SymbolEnum, node, model.SymbolMetadata{
		IsExported: isExported(node),
	})

	body := node.ChildByFieldName("body")
	if body == nil {
		return
	}
	count := int(body.NamedChildCount())
	for i := 0; i < count; i++ {
		member := body.NamedChild(i)
		if member.Type() != "property_identifier" && member.Type() != "enum_assignment" {
			continue
		}
		memberName := member
		if member.Type() == "enum_assignment" {
			memberName = member.NamedChild(0)
		}
		if memberName == nil {
			continue
		}
		w.emit(w.ast.Text(memberName), model.SymbolEnumMember, member, model.SymbolMetadata{})
	}
}

func (w *walker) namespaceDecl(node *sitter.Node) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	w.emit(w.ast.Text(nameNode), model.SymbolNamespace, node, model.SymbolMetadata{
		IsExported: isExported(node),
	})

	body := node.ChildByFieldName("body")
	if body != nil {
		w.walk(body, w.ast.Text(nameNode))
	}
}

// varDecl emits top-level const/let/var declarations, but only when
// exported (spec.md §4.3: "Top-level const/let/var: emitted only when
// exported (or default-exported)") — a non-exported module-scope binding
// is not part of the file's symbol surface.
func (w *walker) varDecl(node *sitter.Node) {
	isConst := w.ast.Text(node.Child(0)) == "const"
	exported := isExported(node)
	if !exported {
		return
	}

	count := int(node.NamedChildCount())
	for i := 0; i < count; i++ {
		child := node.NamedChild(i)
		if child.Type() != "variable_declarator" {
			continue
		}
		nameNode := child.ChildByFieldName("name")
		valueNode := child.ChildByFieldName("value")
		if nameNode == nil {
			continue
		}
		name := w.ast.Text(nameNode)

		if valueNode != nil && isFunctionLike(valueNode.Type()) {
			w.emit(name, model.SymbolFunction, node, model.SymbolMetadata{
				IsExported: exported,
				IsAsync:    hasAsyncModifier(valueNode, w.ast),
			})
			continue
		}

		kind := model.SymbolVariable
		if isConst {
			kind = model.SymbolConstant
		}
		w.emit(name, kind, node, model.SymbolMetadata{IsExported: exported})
	}
}

func isFunctionLike(nodeType string) bool {
	switch nodeType {
	case "arrow_function", "function", "function_expression":
		return true
	default:
		return false
	}
}

func hasAsyncModifier(node *sitter.Node, ast *parser.AST) bool {
	return strings.HasPrefix(strings.TrimSpace(ast.Text(node)), "async ") ||
		strings.Contains(ast.Text(node), "async (") ||
		strings.Contains(ast.Text(node), "async function")
}

func accessModifier(signature string) model.AccessModifier {
	switch {
	case strings.Contains(signature, "private "):
		return model.AccessPrivate
	case strings.Contains(signature, "protected "):
		return model.AccessProtected
	default:
		return model.AccessPublic
	}
}

// typeParamNames extracts generic parameter names from a declaration's
// type_parameters child, if present.
func typeParamNames(node *sitter.Node, ast *parser.AST) []string {
	tp := node.ChildByFieldName("type_parameters")
	if tp == nil {
		return nil
	}
	var names []string
	count := int(tp.NamedChildCount())
	for i := 0; i < count; i++ {
		param := tp.NamedChild(i)
		nameNode := param.ChildByFieldName("name")
		if nameNode != nil {
			names = append(names, ast.Text(nameNode))
		} else {
			names = append(names, ast.Text(param))
		}
	}
	return names
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
