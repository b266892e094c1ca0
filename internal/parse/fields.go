package parse

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/phobologic/reactmod/internal/lang"
	"github.com/phobologic/reactmod/internal/model"
)

// staticKeys are spec keys hoisted to static class members.
var staticKeys = map[string]struct{}{
	"childContextTypes": {},
	"contextTypes":      {},
	"displayName":       {},
	"propTypes":         {},
}

const (
	staticsKey      = "statics"
	mixinsKey       = "mixins"
	defaultPropsKey = "getDefaultProps"
	initialStateKey = "getInitialState"
)

// IsStaticKey reports whether key is hoisted to a static member.
func IsStaticKey(key string) bool {
	_, ok := staticKeys[key]
	return ok
}

// Fields returns the entries of a spec object in source order, with their
// comments. Comments after the last entry are returned as dangling.
// typeCasts enables `as` expressions as typed literals.
func Fields(object *sitter.Node, source []byte, typeCasts bool) (fields []model.Field, dangling []*sitter.Node) {
	var pending []*sitter.Node
	for i := 0; i < int(object.ChildCount()); i++ {
		child := object.Child(i)
		if !child.IsNamed() {
			continue
		}
		if child.Type() == "comment" {
			if len(pending) == 0 && len(fields) > 0 {
				last := &fields[len(fields)-1]
				if last.Trailing == nil && child.StartPoint().Row == last.Node.EndPoint().Row {
					last.Trailing = child
					continue
				}
			}
			pending = append(pending, child)
			continue
		}
		field := readField(child, source, typeCasts)
		field.Leading = pending
		pending = nil
		fields = append(fields, field)
	}
	return fields, pending
}

func readField(node *sitter.Node, source []byte, typeCasts bool) model.Field {
	field := model.Field{Node: node, Key: lang.CollapseWhitespace(lang.NodeText(node, source))}
	switch node.Type() {
	case "pair":
		key := node.ChildByFieldName("key")
		field.Value = node.ChildByFieldName("value")
		if key == nil || field.Value == nil {
			return field
		}
		field.Key = lang.NodeText(key, source)
		if key.Type() != "property_identifier" {
			return field
		}
		field.Kind = fieldKind(field.Key, field.Value, source, typeCasts)
	case "method_definition":
		name := node.ChildByFieldName("name")
		field.Value = node
		if name == nil {
			return field
		}
		field.Key = lang.NodeText(name, source)
		if name.Type() != "property_identifier" {
			return field
		}
		field.Kind = fieldKind(field.Key, node, source, typeCasts)
	}
	return field
}

func fieldKind(key string, value *sitter.Node, source []byte, typeCasts bool) model.FieldKind {
	switch {
	case IsStaticKey(key):
		return model.KindStaticKey
	case key == staticsKey:
		if value.Type() == "object" && plainObject(value) {
			return model.KindStatics
		}
		return model.KindOther
	case key == defaultPropsKey:
		if IsFunction(value) {
			return model.KindDefaultProps
		}
		return model.KindOther
	case key == initialStateKey:
		if IsFunction(value) {
			return model.KindInitialState
		}
		return model.KindOther
	case key == mixinsKey:
		return model.KindMixins
	case IsFunction(value):
		return model.KindFunction
	case typeCasts && IsTypeCast(value) && IsLiteral(value.NamedChild(0), source):
		return model.KindTyped
	case IsLiteral(value, source):
		return model.KindData
	}
	return model.KindOther
}

// plainObject reports whether every entry of object is a pair or a plain method.
func plainObject(object *sitter.Node) bool {
	for i := 0; i < int(object.NamedChildCount()); i++ {
		child := object.NamedChild(i)
		switch child.Type() {
		case "comment", "pair":
		case "method_definition":
			if !IsFunction(child) {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// IsFunction reports whether node is a function expression or a plain
// shorthand method. Generators, getters and setters are not.
func IsFunction(node *sitter.Node) bool {
	if node == nil || !node.IsNamed() {
		return false
	}
	switch node.Type() {
	case "function_expression", "function":
		return true
	case "method_definition":
		for i := 0; i < int(node.ChildCount()); i++ {
			child := node.Child(i)
			if child.IsNamed() {
				continue
			}
			switch child.Type() {
			case "*", "get", "set", "static":
				return false
			}
		}
		return true
	}
	return false
}

// IsAsync reports whether a function node is declared async.
func IsAsync(node *sitter.Node) bool {
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if !child.IsNamed() && child.Type() == "async" {
			return true
		}
	}
	return false
}

// OwnsThis reports whether node introduces its own `this` binding.
func OwnsThis(node *sitter.Node) bool {
	if !node.IsNamed() {
		return false
	}
	switch node.Type() {
	case "function_expression", "function", "function_declaration",
		"generator_function", "generator_function_declaration",
		"method_definition", "class", "class_declaration":
		return true
	}
	return false
}

// IsTypeCast reports whether node is an `as` expression.
func IsTypeCast(node *sitter.Node) bool {
	return node != nil && node.Type() == "as_expression" && node.NamedChildCount() == 2
}

// IsLiteral reports whether node is a literal value or `undefined`.
func IsLiteral(node *sitter.Node, source []byte) bool {
	if node == nil || !node.IsNamed() {
		return false
	}
	switch node.Type() {
	case "string", "number", "true", "false", "null", "undefined", "regex":
		return true
	case "template_string":
		for i := 0; i < int(node.NamedChildCount()); i++ {
			if node.NamedChild(i).Type() == "template_substitution" {
				return false
			}
		}
		return true
	case "identifier":
		return lang.NodeText(node, source) == "undefined"
	}
	return false
}

// Unparen strips parentheses around an expression.
func Unparen(node *sitter.Node) *sitter.Node {
	for node != nil && node.Type() == "parenthesized_expression" && node.NamedChildCount() == 1 {
		node = node.NamedChild(0)
	}
	return node
}

// IsThisMember reports whether node is `this.<property>`.
func IsThisMember(node *sitter.Node, source []byte, property string) bool {
	if node == nil || node.Type() != "member_expression" {
		return false
	}
	object := node.ChildByFieldName("object")
	prop := node.ChildByFieldName("property")
	return object != nil && object.Type() == "this" &&
		prop != nil && lang.NodeText(prop, source) == property
}

// StringValue returns the contents of a string literal without its quotes.
func StringValue(node *sitter.Node, source []byte) string {
	text := lang.NodeText(node, source)
	if len(text) >= 2 && (text[0] == '\'' || text[0] == '"' || text[0] == '`') && text[len(text)-1] == text[0] {
		return text[1 : len(text)-1]
	}
	return text
}

// Walk calls fn for node and its descendants in source order.
// Returning false from fn skips the node's children.
func Walk(node *sitter.Node, fn func(*sitter.Node) bool) {
	if node == nil || !fn(node) {
		return
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		Walk(node.Child(i), fn)
	}
}

// Statements returns the named children of a statement block, comments included.
func Statements(block *sitter.Node) []*sitter.Node {
	var stmts []*sitter.Node
	for i := 0; i < int(block.NamedChildCount()); i++ {
		stmts = append(stmts, block.NamedChild(i))
	}
	return stmts
}

// ReturnValue returns the argument of a return statement, or nil for a bare return.
func ReturnValue(ret *sitter.Node) *sitter.Node {
	for i := 0; i < int(ret.NamedChildCount()); i++ {
		if child := ret.NamedChild(i); child.Type() != "comment" {
			return child
		}
	}
	return nil
}

// SingleReturn returns the argument of a function whose body is exactly
// one return statement, or nil. Comments are not statements.
func SingleReturn(fn *sitter.Node) *sitter.Node {
	body := fn.ChildByFieldName("body")
	if body == nil || body.Type() != "statement_block" {
		return nil
	}
	var ret *sitter.Node
	for _, stmt := range Statements(body) {
		switch {
		case stmt.Type() == "comment":
		case ret != nil || stmt.Type() != "return_statement":
			return nil
		default:
			ret = stmt
		}
	}
	if ret == nil {
		return nil
	}
	return ReturnValue(ret)
}

// ArrayElements returns the elements of an array literal, without comments.
// It returns nil when node is not an array.
func ArrayElements(node *sitter.Node) []*sitter.Node {
	node = Unparen(node)
	if node == nil || node.Type() != "array" {
		return nil
	}
	var elems []*sitter.Node
	for i := 0; i < int(node.NamedChildCount()); i++ {
		if elem := node.NamedChild(i); elem.Type() != "comment" {
			elems = append(elems, elem)
		}
	}
	return elems
}

// Literals returns the strings, template literals and comments under node
// that span several lines. Their line breaks are part of the value, so
// reindenting the code around them must not touch their lines.
func Literals(node *sitter.Node) []*sitter.Node {
	var literals []*sitter.Node
	Walk(node, func(n *sitter.Node) bool {
		switch n.Type() {
		case "string", "template_string", "comment":
			if n.EndPoint().Row > n.StartPoint().Row {
				literals = append(literals, n)
			}
			return false
		}
		return true
	})
	return literals
}
