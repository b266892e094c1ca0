package parse

import (
	"testing"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/phobologic/reactmod/internal/lang"
	"github.com/phobologic/reactmod/internal/model"
)

func createClass(callee *sitter.Node, source []byte) (string, bool) {
	if callee.Type() != "member_expression" {
		return "", false
	}
	if lang.NodeText(callee.ChildByFieldName("property"), source) != "createClass" {
		return "", false
	}
	return lang.NodeText(callee.ChildByFieldName("object"), source), true
}

func setup(t *testing.T, langName string) func(source string) *File {
	t.Helper()
	l := lang.Languages[langName]
	if l == nil {
		t.Fatalf("language %q not registered", langName)
	}
	return func(source string) *File {
		p := l.NewParser()
		t.Cleanup(p.Close)
		f, err := Parse(l, p, []byte(source), "test"+l.Extensions[0])
		if err != nil {
			t.Fatalf("Parse: %v", err)
		}
		t.Cleanup(f.Close)
		return f
	}
}

func declarations(t *testing.T, f *File) []model.Declaration {
	t.Helper()
	q, err := f.Lang.GetQuery()
	if err != nil {
		t.Fatalf("GetQuery: %v", err)
	}
	return f.Declarations(q, createClass)
}

func TestDeclarationVariable(t *testing.T) {
	t.Parallel()
	parse := setup(t, "javascript")

	f := parse("// Shows a list.\n/* eslint-disable */\nvar List = React.createClass({\n  render: function() {},\n});\n")
	decls := declarations(t, f)
	if len(decls) != 1 {
		t.Fatalf("expected 1 declaration, got %d", len(decls))
	}
	d := decls[0]
	if d.Name != "List" {
		t.Errorf("name = %q, want List", d.Name)
	}
	if d.Shape != model.VariableShape {
		t.Errorf("shape = %v, want variable", d.Shape)
	}
	if d.Framework != "React" {
		t.Errorf("framework = %q, want React", d.Framework)
	}
	if len(d.Comments) != 2 {
		t.Fatalf("expected 2 comments, got %d", len(d.Comments))
	}
	if d.Start() != 0 {
		t.Errorf("start = %d, want 0", d.Start())
	}
	if got := f.Source[d.End()-1]; got != ';' {
		t.Errorf("declaration should end at the semicolon, ends at %q", got)
	}
	if len(d.Fields) != 1 || d.Fields[0].Key != "render" || d.Fields[0].Kind != model.KindFunction {
		t.Errorf("fields = %+v", d.Fields)
	}
}

func TestDeclarationDetachedComment(t *testing.T) {
	t.Parallel()
	parse := setup(t, "javascript")

	decls := declarations(t, parse("// License.\n\nvar A = React.createClass({});\n"))
	if len(decls) != 1 {
		t.Fatalf("expected 1 declaration, got %d", len(decls))
	}
	if len(decls[0].Comments) != 0 {
		t.Errorf("comment separated by a blank line should stay, got %d comments", len(decls[0].Comments))
	}
}

func TestDeclarationExports(t *testing.T) {
	t.Parallel()
	parse := setup(t, "javascript")

	f := parse("module.exports = React.createClass({\n  displayName: 'Menu',\n});\n")
	decls := declarations(t, f)
	if len(decls) != 1 {
		t.Fatalf("expected 1 declaration, got %d", len(decls))
	}
	d := decls[0]
	if d.Shape != model.ExportsShape {
		t.Errorf("shape = %v, want exports", d.Shape)
	}
	if d.Name != "Menu" {
		t.Errorf("name = %q, want Menu from displayName", d.Name)
	}
	if got := f.Text(d.Node); got[:len("React.createClass")] != "React.createClass" {
		t.Errorf("node should be the call, got %q", got)
	}
}

func TestDeclarationDefaultExport(t *testing.T) {
	t.Parallel()
	parse := setup(t, "javascript")

	f := parse("export default React.createClass({\n  displayName: 'not an identifier',\n});\n")
	decls := declarations(t, f)
	if len(decls) != 1 {
		t.Fatalf("expected 1 declaration, got %d", len(decls))
	}
	d := decls[0]
	if d.Shape != model.DefaultExportShape {
		t.Errorf("shape = %v, want default", d.Shape)
	}
	if d.Name != "" {
		t.Errorf("name = %q, want empty", d.Name)
	}
	if d.DisplayName() != "anonymous component" {
		t.Errorf("display name = %q", d.DisplayName())
	}
	if int(d.End()) != len(f.Source)-1 {
		t.Errorf("end = %d, want %d (through the semicolon)", d.End(), len(f.Source)-1)
	}
}

func TestDeclarationIgnoresOtherCalls(t *testing.T) {
	t.Parallel()
	parse := setup(t, "javascript")

	decls := declarations(t, parse("var a = require('a');\nvar b = make({});\nfoo(React.createClass({}));\n"))
	if len(decls) != 0 {
		t.Errorf("expected no declarations, got %d", len(decls))
	}
}

func TestDeclarationMalformed(t *testing.T) {
	t.Parallel()
	parse := setup(t, "javascript")

	decls := declarations(t, parse("var A = React.createClass(spec, extra);\n"))
	if len(decls) != 1 {
		t.Fatalf("expected 1 declaration, got %d", len(decls))
	}
	if decls[0].Malformed == "" || decls[0].Spec != nil {
		t.Errorf("expected a malformed declaration, got %+v", decls[0])
	}
}

func TestFieldKinds(t *testing.T) {
	t.Parallel()
	parse := setup(t, "typescript")

	f := parse(`var A = React.createClass({
  propTypes: {},
  statics: {of() {}},
  mixins: [],
  getDefaultProps() { return {}; },
  getInitialState: function() { return {}; },
  count: 0,
  mode: 'a' as Mode,
  handle: function() {},
  computed: compute(),
  ['dynamic']: 1,
  *gen() {},
  // trailing
});
`)
	decls := declarations(t, f)
	if len(decls) != 1 {
		t.Fatalf("expected 1 declaration, got %d", len(decls))
	}
	want := []struct {
		key  string
		kind model.FieldKind
	}{
		{"propTypes", model.KindStaticKey},
		{"statics", model.KindStatics},
		{"mixins", model.KindMixins},
		{"getDefaultProps", model.KindDefaultProps},
		{"getInitialState", model.KindInitialState},
		{"count", model.KindData},
		{"mode", model.KindTyped},
		{"handle", model.KindFunction},
		{"computed", model.KindOther},
		{"['dynamic']", model.KindOther},
		{"gen", model.KindOther},
	}
	fields := decls[0].Fields
	if len(fields) != len(want) {
		t.Fatalf("expected %d fields, got %d", len(want), len(fields))
	}
	for i, w := range want {
		if fields[i].Key != w.key || fields[i].Kind != w.kind {
			t.Errorf("field %d = %q (%v), want %q (%v)", i, fields[i].Key, fields[i].Kind, w.key, w.kind)
		}
	}
	if len(decls[0].Dangling) != 1 {
		t.Errorf("expected 1 dangling comment, got %d", len(decls[0].Dangling))
	}
}

func TestImports(t *testing.T) {
	t.Parallel()
	parse := setup(t, "javascript")

	f := parse(`import React from 'react';
import * as Mixins from "mixins";
import Thing, {other} from 'things';
var create = require('create-react-class');
var a = require('a'), b = 2;
`)
	q, err := f.Lang.GetQuery()
	if err != nil {
		t.Fatalf("GetQuery: %v", err)
	}
	imports := f.Imports(q)
	want := []struct {
		source, binding string
		removable       bool
	}{
		{"react", "React", true},
		{"mixins", "Mixins", true},
		{"things", "Thing", false},
		{"create-react-class", "create", true},
		{"a", "a", false},
	}
	if len(imports) != len(want) {
		t.Fatalf("expected %d imports, got %d: %+v", len(want), len(imports), imports)
	}
	for i, w := range want {
		imp := imports[i]
		if imp.Source != w.source || imp.Binding != w.binding || (imp.Statement != nil) != w.removable {
			t.Errorf("import %d = %+v, want %+v", i, imp, w)
		}
	}
	if got := Binding(imports, "create-react-class"); got != "create" {
		t.Errorf("Binding = %q, want create", got)
	}
	if got := Binding(imports, "missing"); got != "" {
		t.Errorf("Binding = %q, want empty", got)
	}
}

func TestSingleReturn(t *testing.T) {
	t.Parallel()
	parse := setup(t, "javascript")

	tests := []struct {
		name string
		body string
		want string
	}{
		{"plain", "return {a: 1};", "{a: 1}"},
		{"comments around", "// first\n  /* second */\n  return {a: 1}; // after", "{a: 1}"},
		{"statement before", "var x = 1;\n  return {a: x};", ""},
		{"no return", "// nothing", ""},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := parse("var A = React.createClass({\n getInitialState: function() {\n  " + tt.body + "\n },\n});\n")
			decls := declarations(t, f)
			if len(decls) != 1 {
				t.Fatalf("expected 1 declaration, got %d", len(decls))
			}
			got := ""
			if v := SingleReturn(decls[0].Fields[0].Value); v != nil {
				got = f.Text(v)
			}
			if got != tt.want {
				t.Errorf("SingleReturn = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLiterals(t *testing.T) {
	t.Parallel()
	parse := setup(t, "javascript")

	f := parse("var a = `x\ny`;\nvar b = 'one';\n/*\n * doc\n */\nvar c = `${`in\nner`}`;\n// line\n")
	var got []string
	for _, n := range Literals(f.Root()) {
		got = append(got, f.Text(n))
	}
	want := []string{"`x\ny`", "/*\n * doc\n */", "`${`in\nner`}`"}
	if len(got) != len(want) {
		t.Fatalf("Literals = %q, want %q", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("literal %d = %q, want %q", i, got[i], want[i])
		}
	}
}
