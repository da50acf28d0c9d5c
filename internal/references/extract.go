// Package references walks a parsed AST and extracts uses of names (spec.md
// §4.4), sibling to internal/symbols and sharing its AST traversal helpers
// (internal/parser). Grounded on the same walkNode dispatch idiom as the
// symbol extractor, generalized to the reference_type/metadata table spec.md
// §4.4 specifies instead of the teacher's single "reference" fact predicate.
package references

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/jayminwest/kotadb-index/internal/model"
	"github.com/jayminwest/kotadb-index/internal/parser"
)

// Extract walks ast and returns every reference recorded within it.
func Extract(ast *parser.AST, fileID, repositoryID string) []model.Reference {
	w := &walker{ast: ast, fileID: fileID, repositoryID: repositoryID}
	w.walk(ast.Root())
	return w.out
}

type walker struct {
	ast          *parser.AST
	fileID       string
	repositoryID string
	out          []model.Reference
}

func (w *walker) emit(name string, node *sitter.Node, refType model.ReferenceType, meta model.ReferenceMetadata) {
	w.out = append(w.out, model.Reference{
		FileID:       w.fileID,
		RepositoryID: w.repositoryID,
		SymbolName:   name,
		LineNumber:   parser.Line(node),
		ColumnNumber: parser.Column(node),
		Type:         refType,
		Metadata:     meta,
	})
}

func (w *walker) walk(node *sitter.Node) {
	count := int(node.NamedChildCount())
	for i := 0; i < count; i++ {
		child := node.NamedChild(i)
		switch child.Type() {
		case "import_statement":
			w.importStatement(child)
		case "export_statement":
			if !w.reExport(child) {
				w.walk(child)
			}
		case "call_expression":
			w.callExpression(child)
		case "member_expression", "subscript_expression":
			w.memberExpression(child)
		case "type_annotation":
			w.typeAnnotation(child)
		case "class_declaration", "abstract_class_declaration":
			w.classHeritage(child)
			w.walk(child)
		default:
			w.walk(child)
		}
	}
}

// importStatement handles `import ... from "s"` and the bare `import "s"`
// side-effect form (spec.md §4.4 table, import rows).
func (w *walker) importStatement(node *sitter.Node) {
	source := w.stringFieldText(node, "source")
	if source == "" {
		return
	}

	clause := firstChildOfType(node, "import_clause")
	if clause == nil {
		// import "s" — side-effect only, no bindings.
		w.emit(source, node, model.RefImport, model.ReferenceMetadata{
			ImportSource:       source,
			IsSideEffectImport: true,
			TargetName:         source,
		})
		return
	}

	count := int(clause.NamedChildCount())
	for i := 0; i < count; i++ {
		binding := clause.NamedChild(i)
		switch binding.Type() {
		case "identifier":
			// default import: import X from "s"
			w.emit(w.ast.Text(binding), node, model.RefImport, model.ReferenceMetadata{
				ImportSource:    source,
				IsDefaultImport: true,
				LocalName:       w.ast.Text(binding),
			})
		case "namespace_import":
			nameNode := binding.NamedChild(0)
			if nameNode == nil {
				continue
			}
			w.emit(w.ast.Text(nameNode), node, model.RefImport, model.ReferenceMetadata{
				ImportSource:      source,
				IsNamespaceImport: true,
				LocalName:         w.ast.Text(nameNode),
			})
		case "named_imports":
			w.namedImports(binding, node, source)
		}
	}
}

func (w *walker) namedImports(named *sitter.Node, stmt *sitter.Node, source string) {
	count := int(named.NamedChildCount())
	for i := 0; i < count; i++ {
		spec := named.NamedChild(i)
		if spec.Type() != "import_specifier" {
			continue
		}
		nameNode := spec.ChildByFieldName("name")
		aliasNode := spec.ChildByFieldName("alias")
		if nameNode == nil {
			continue
		}
		meta := model.ReferenceMetadata{ImportSource: source}
		if aliasNode != nil {
			meta.ImportAlias = w.ast.Text(aliasNode)
			meta.LocalName = w.ast.Text(aliasNode)
		} else {
			meta.LocalName = w.ast.Text(nameNode)
		}
		w.emit(w.ast.Text(nameNode), stmt, model.RefImport, meta)
	}
}

// reExport handles `export { X } from "s"`, `export * from "s"`, and
// `export * as N from "s"`. Returns true when it produced a reference, so
// the caller skips also recursing into re-export statements (they carry no
// local declarations to walk into). Local `export { X }` without a source
// clause is intentionally left unhandled (spec.md §4.4: "MUST NOT produce a
// re_export").
func (w *walker) reExport(node *sitter.Node) bool {
	source := w.stringFieldText(node, "source")
	if source == "" {
		return false
	}

	// export * as N from "s"
	if ns := firstChildOfType(node, "namespace_export"); ns != nil {
		nameNode := ns.NamedChild(0)
		exportedAs := ""
		if nameNode != nil {
			exportedAs = w.ast.Text(nameNode)
		}
		w.emit("*", node, model.RefExportAll, model.ReferenceMetadata{
			ImportSource: source, ExportedAs: exportedAs, TargetName: "*",
		})
		return true
	}

	clause := firstChildOfType(node, "export_clause")
	if clause == nil {
		// export * from "s"
		w.emit("*", node, model.RefExportAll, model.ReferenceMetadata{
			ImportSource: source, TargetName: "*",
		})
		return true
	}

	count := int(clause.NamedChildCount())
	for i := 0; i < count; i++ {
		spec := clause.NamedChild(i)
		if spec.Type() != "export_specifier" {
			continue
		}
		nameNode := spec.ChildByFieldName("name")
		aliasNode := spec.ChildByFieldName("alias")
		if nameNode == nil {
			continue
		}
		meta := model.ReferenceMetadata{ImportSource: source, LocalName: w.ast.Text(nameNode)}
		exportedName := w.ast.Text(nameNode)
		if aliasNode != nil {
			exportedName = w.ast.Text(aliasNode)
		}
		meta.ExportedName = exportedName
		w.emit(exportedName, node, model.RefReExport, meta)
	}
	return true
}

// callExpression handles both plain calls and `import("s")` dynamic
// imports (spec.md §4.4 table, call and dynamic_import rows).
func (w *walker) callExpression(node *sitter.Node) {
	fn := node.ChildByFieldName("function")
	if fn == nil {
		w.walk(node)
		return
	}

	if fn.Type() == "import" {
		w.dynamicImport(node)
		w.walk(node)
		return
	}

	isOptional := strings.Contains(w.ast.Text(fn), "?.")
	isMethodCall := fn.Type() == "member_expression"
	name := callTargetName(fn, w.ast)

	w.emit(name, node, model.RefCall, model.ReferenceMetadata{
		IsMethodCall:       isMethodCall,
		IsOptionalChaining: isOptional,
	})
	w.walk(node)
}

func (w *walker) dynamicImport(node *sitter.Node) {
	args := node.ChildByFieldName("arguments")
	source := model.UnresolvableDynamicImportSource
	isTemplate := false

	if args != nil && args.NamedChildCount() > 0 {
		arg := args.NamedChild(0)
		switch arg.Type() {
		case "string":
			source = stringLiteralValue(w.ast.Text(arg))
		case "template_string":
			source, isTemplate = templateWildcardSource(w.ast.Text(arg))
		}
	}

	w.emit(source, node, model.RefDynamicImport, model.ReferenceMetadata{
		IsDynamic:         true,
		ImportSource:      source,
		IsTemplatePattern: isTemplate,
	})
}

// memberExpression handles property access (spec.md §4.4 table). Computed
// access (obj[expr], a subscript_expression) MUST NOT produce a
// property_access reference per spec.md §4.4.
func (w *walker) memberExpression(node *sitter.Node) {
	if node.Type() == "subscript_expression" {
		w.walk(node)
		return
	}
	propNode := node.ChildByFieldName("property")
	if propNode == nil {
		w.walk(node)
		return
	}
	isOptional := strings.Contains(w.ast.Text(node), "?.")
	w.emit(w.ast.Text(propNode), node, model.RefPropertyAccess, model.ReferenceMetadata{
		IsOptionalChaining: isOptional,
	})
	w.walk(node)
}

// typeAnnotation handles `: T` and generic type arguments (spec.md §4.4
// table, type_reference row).
func (w *walker) typeAnnotation(node *sitter.Node) {
	count := int(node.NamedChildCount())
	for i := 0; i < count; i++ {
		w.typeRef(node.NamedChild(i))
	}
}

func (w *walker) typeRef(node *sitter.Node) {
	switch node.Type() {
	case "type_identifier":
		w.emit(w.ast.Text(node), node, model.RefTypeReference, model.ReferenceMetadata{})
	case "generic_type":
		nameNode := node.ChildByFieldName("name")
		if nameNode != nil {
			w.emit(w.ast.Text(nameNode), node, model.RefTypeReference, model.ReferenceMetadata{})
		}
		args := node.ChildByFieldName("type_arguments")
		if args != nil {
			count := int(args.NamedChildCount())
			for i := 0; i < count; i++ {
				w.typeRef(args.NamedChild(i))
			}
		}
	}
}

// classHeritage handles a class's extends/implements clauses (spec.md §3.1,
// §4.4): the superclass produces an extends reference, and each interface
// named in an implements clause produces an implements reference. Neither
// clause is a field on class_declaration in the tree-sitter-typescript
// grammar, so class_heritage is located by type among the class's named
// children.
func (w *walker) classHeritage(class *sitter.Node) {
	heritage := firstChildOfType(class, "class_heritage")
	if heritage == nil {
		return
	}
	if extends := firstChildOfType(heritage, "extends_clause"); extends != nil {
		w.emitHeritageTargets(extends, model.RefExtends)
	}
	if impl := firstChildOfType(heritage, "implements_clause"); impl != nil {
		w.emitHeritageTargets(impl, model.RefImplements)
	}
}

func (w *walker) emitHeritageTargets(clause *sitter.Node, refType model.ReferenceType) {
	count := int(clause.NamedChildCount())
	for i := 0; i < count; i++ {
		name, node := w.heritageTargetName(clause.NamedChild(i))
		if name == "" {
			continue
		}
		w.emit(name, node, refType, model.ReferenceMetadata{})
	}
}

// heritageTargetName resolves the name a heritage entry targets: a plain
// identifier/type_identifier, the outer name of a generic instantiation
// (Base<T>), or the rightmost segment of a qualified name (ns.Base).
func (w *walker) heritageTargetName(node *sitter.Node) (string, *sitter.Node) {
	switch node.Type() {
	case "identifier", "type_identifier":
		return w.ast.Text(node), node
	case "generic_type":
		nameNode := node.ChildByFieldName("name")
		if nameNode != nil {
			return w.heritageTargetName(nameNode)
		}
	case "member_expression", "nested_type_identifier":
		prop := node.ChildByFieldName("property")
		if prop == nil {
			prop = node.ChildByFieldName("name")
		}
		if prop != nil {
			return w.ast.Text(prop), node
		}
	}
	return "", node
}

func firstChildOfType(node *sitter.Node, nodeType string) *sitter.Node {
	count := int(node.NamedChildCount())
	for i := 0; i < count; i++ {
		child := node.NamedChild(i)
		if child.Type() == nodeType {
			return child
		}
	}
	return nil
}

func (w *walker) stringFieldText(node *sitter.Node, field string) string {
	n := node.ChildByFieldName(field)
	if n == nil {
		return ""
	}
	return stringLiteralValue(w.ast.Text(n))
}

func stringLiteralValue(raw string) string {
	s := strings.TrimSpace(raw)
	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if (first == '"' || first == '\'' || first == '`') && first == last {
			return s[1 : len(s)-1]
		}
	}
	return s
}

// templateWildcardSource reduces a template literal like `./routes/${name}`
// to "./routes/*" when it has exactly one interpolation and that
// interpolation ends the literal, marking it a wildcard pattern; anything
// else is unresolvable (spec.md §4.4 dynamic import row).
func templateWildcardSource(raw string) (source string, isTemplate bool) {
	inner := strings.TrimSuffix(strings.TrimPrefix(raw, "`"), "`")
	start := strings.Index(inner, "${")
	end := strings.LastIndex(inner, "}")
	if start == -1 || end == -1 || end < start {
		return model.UnresolvableDynamicImportSource, false
	}
	if strings.Count(inner, "${") != 1 {
		return model.UnresolvableDynamicImportSource, false
	}
	prefix := inner[:start]
	suffix := inner[end+1:]
	if suffix != "" {
		return model.UnresolvableDynamicImportSource, false
	}
	return prefix + "*", true
}

func callTargetName(fn *sitter.Node, ast *parser.AST) string {
	if fn.Type() == "member_expression" {
		prop := fn.ChildByFieldName("property")
		if prop != nil {
			return ast.Text(prop)
		}
	}
	return ast.Text(fn)
}
