// Package parse reads legacy component declarations and module bindings from
// source files using tree-sitter.
package parse

import (
	"context"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/phobologic/reactmod/internal/lang"
	"github.com/phobologic/reactmod/internal/model"
)

var declarationShapes = map[string]model.Shape{
	"declaration.variable": model.VariableShape,
	"declaration.exports":  model.ExportsShape,
	"declaration.default":  model.DefaultExportShape,
}

var importCaptures = map[string]struct{}{
	"import.default":   {},
	"import.namespace": {},
	"import.require":   {},
}

// File is a parsed source file. Nodes handed out by a File are valid until Close.
type File struct {
	Path   string
	Lang   *lang.Language
	Source []byte
	tree   *sitter.Tree
}

// Parse parses source with parser, which must be created for l.
// path is used only for diagnostics.
func Parse(l *lang.Language, parser *sitter.Parser, source []byte, path string) (*File, error) {
	tree, err := parser.ParseCtx(context.Background(), nil, source)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &File{Path: path, Lang: l, Source: source, tree: tree}, nil
}

// Close releases the syntax tree.
func (f *File) Close() {
	f.tree.Close()
}

// Root returns the root node of the tree.
func (f *File) Root() *sitter.Node {
	return f.tree.RootNode()
}

// Text returns the source text of node.
func (f *File) Text(node *sitter.Node) string {
	return lang.NodeText(node, f.Source)
}

// Import is a module binding: `import X from 'm'`, `import * as X from 'm'`
// or `var X = require('m')`.
type Import struct {
	Source  string
	Binding string
	// Statement is the whole import statement, or nil when it declares more
	// than the binding and so cannot be removed on its own.
	Statement *sitter.Node
}

// Imports returns the module bindings of the file in source order.
func (f *File) Imports(query *sitter.Query) []Import {
	qc := sitter.NewQueryCursor()
	defer qc.Close()
	qc.Exec(query, f.Root())

	var imports []Import
	for {
		match, ok := qc.NextMatch()
		if !ok {
			break
		}
		match = qc.FilterPredicates(match, f.Source)

		var binding, source, stmt *sitter.Node
		var kind string
		for _, c := range match.Captures {
			name := query.CaptureNameForId(c.Index)
			switch name {
			case "binding":
				binding = c.Node
			case "source":
				source = c.Node
			default:
				if _, ok := importCaptures[name]; ok {
					kind = name
					stmt = c.Node
				}
			}
		}
		if binding == nil || source == nil || stmt == nil {
			continue
		}

		imp := Import{Source: StringValue(source, f.Source), Binding: f.Text(binding)}
		if kind == "import.require" {
			stmt = soleDeclaration(stmt)
		} else if hasOtherImports(stmt, binding) {
			stmt = nil
		}
		imp.Statement = stmt
		imports = append(imports, imp)
	}
	return imports
}

// Binding returns the local name bound to module, or "" if it is not imported.
func Binding(imports []Import, module string) string {
	for _, imp := range imports {
		if imp.Source == module {
			return imp.Binding
		}
	}
	return ""
}

// FactoryFunc reports whether callee is a component factory, returning the
// binding the migrated class should take its base class from.
type FactoryFunc func(callee *sitter.Node, source []byte) (framework string, ok bool)

// Declarations returns the legacy component declarations of the file in
// source order.
func (f *File) Declarations(query *sitter.Query, factory FactoryFunc) []model.Declaration {
	qc := sitter.NewQueryCursor()
	defer qc.Close()
	qc.Exec(query, f.Root())

	var decls []model.Declaration
	for {
		match, ok := qc.NextMatch()
		if !ok {
			break
		}
		match = qc.FilterPredicates(match, f.Source)

		var nameNode, call, declNode *sitter.Node
		shape := model.Shape(-1)
		for _, c := range match.Captures {
			cname := query.CaptureNameForId(c.Index)
			switch cname {
			case "name":
				nameNode = c.Node
			case "factory":
				call = c.Node
			default:
				if s, ok := declarationShapes[cname]; ok {
					shape = s
					declNode = c.Node
				}
			}
		}
		if call == nil || declNode == nil || shape < 0 {
			continue
		}

		callee := call.ChildByFieldName("function")
		if callee == nil {
			continue
		}
		framework, ok := factory(callee, f.Source)
		if !ok {
			continue
		}

		decl := model.Declaration{Shape: shape, Call: call, Framework: framework}
		switch shape {
		case model.VariableShape:
			stmt := declNode.Parent()
			if stmt == nil || !isStatementContext(stmt) {
				continue
			}
			decl.Node = stmt
			decl.Name = f.Text(nameNode)
			if countNamed(stmt, "variable_declarator") > 1 {
				decl.Malformed = "multiple declarators in one statement"
			}
			if stmt.Parent() != nil && stmt.Parent().Type() != "export_statement" {
				decl.Comments = leadingComments(stmt, f.Source)
			}
		default:
			decl.Node = call
			decl.Statement = declNode
		}

		f.readSpec(&decl)
		if decl.Name == "" {
			decl.Name = displayName(&decl, f.Source)
		}
		decls = append(decls, decl)
	}
	return decls
}

// readSpec fills in the spec object and its fields.
func (f *File) readSpec(decl *model.Declaration) {
	args := decl.Call.ChildByFieldName("arguments")
	var argNodes []*sitter.Node
	if args != nil {
		for i := 0; i < int(args.NamedChildCount()); i++ {
			if arg := args.NamedChild(i); arg.Type() != "comment" {
				argNodes = append(argNodes, arg)
			}
		}
	}
	if len(argNodes) != 1 || argNodes[0].Type() != "object" {
		if decl.Malformed == "" {
			decl.Malformed = "a factory call without a single object literal argument"
		}
		return
	}
	decl.Spec = argNodes[0]
	decl.Fields, decl.Dangling = Fields(decl.Spec, f.Source, f.Lang.TypeCasts)
}

func displayName(decl *model.Declaration, source []byte) string {
	field := decl.Field("displayName")
	if field == nil || field.Value == nil || field.Value.Type() != "string" {
		return ""
	}
	name := StringValue(field.Value, source)
	if !isIdentifier(name) {
		return ""
	}
	return name
}

func isStatementContext(stmt *sitter.Node) bool {
	switch stmt.Type() {
	case "lexical_declaration", "variable_declaration":
	default:
		return false
	}
	parent := stmt.Parent()
	if parent == nil {
		return false
	}
	switch parent.Type() {
	case "program", "statement_block", "export_statement", "switch_case", "switch_default":
		return true
	}
	return false
}

// leadingComments returns the comments directly above node, each on its own line.
func leadingComments(node *sitter.Node, source []byte) []*sitter.Node {
	var comments []*sitter.Node
	next := node
	for prev := node.PrevSibling(); prev != nil && prev.Type() == "comment"; prev = prev.PrevSibling() {
		gap := string(source[prev.EndByte():next.StartByte()])
		if strings.TrimSpace(gap) != "" || strings.Count(gap, "\n") > 1 {
			break
		}
		if !startsLine(prev, source) {
			break
		}
		comments = append([]*sitter.Node{prev}, comments...)
		next = prev
	}
	return comments
}

func startsLine(node *sitter.Node, source []byte) bool {
	for i := int(node.StartByte()) - 1; i >= 0; i-- {
		switch source[i] {
		case '\n':
			return true
		case ' ', '\t':
			continue
		default:
			return false
		}
	}
	return true
}

func countNamed(node *sitter.Node, typ string) int {
	n := 0
	for i := 0; i < int(node.NamedChildCount()); i++ {
		if node.NamedChild(i).Type() == typ {
			n++
		}
	}
	return n
}

// soleDeclaration returns the statement around a declarator when it is the
// statement's only declarator.
func soleDeclaration(declarator *sitter.Node) *sitter.Node {
	stmt := declarator.Parent()
	if stmt == nil || countNamed(stmt, "variable_declarator") != 1 {
		return nil
	}
	if !isStatementContext(stmt) || stmt.Parent().Type() == "export_statement" {
		return nil
	}
	return stmt
}

// hasOtherImports reports whether an import statement binds more than binding.
func hasOtherImports(stmt, binding *sitter.Node) bool {
	other := false
	Walk(stmt, func(n *sitter.Node) bool {
		switch n.Type() {
		case "named_imports":
			other = true
			return false
		case "identifier":
			if n.StartByte() != binding.StartByte() {
				other = true
			}
		}
		return !other
	})
	return other
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_' || r == '$':
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}
