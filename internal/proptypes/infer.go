package proptypes

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/phobologic/reactmod/internal/lang"
	"github.com/phobologic/reactmod/internal/parse"
)

var primitives = map[string]*Type{
	"any":     anyType,
	"array":   arrayType,
	"bool":    boolType,
	"element": anyType,
	"func":    functionType,
	"node":    anyType,
	"number":  numberType,
	"object":  objectType,
	"string":  stringType,
}

// Infer maps a validator expression to a static type. The second result is
// false when the validator ends in `.isRequired`. Any shape Infer does not
// recognize maps to Any.
func Infer(node *sitter.Node, source []byte) (*Type, bool) {
	optional := true
	cursor := parse.Unparen(node)
	if cursor != nil && cursor.Type() == "member_expression" && propertyName(cursor, source) == "isRequired" {
		cursor = parse.Unparen(cursor.ChildByFieldName("object"))
		optional = false
	}
	if cursor == nil {
		return anyType, optional
	}
	switch cursor.Type() {
	case "call_expression":
		return inferCall(cursor, source), optional
	case "member_expression":
		if t, ok := primitives[propertyName(cursor, source)]; ok {
			return t, optional
		}
	}
	return anyType, optional
}

// Props returns the Shape of a propTypes object, or nil when the value is not
// an object of plain `key: validator` entries.
func Props(object *sitter.Node, source []byte) *Type {
	object = parse.Unparen(object)
	if object == nil || object.Type() != "object" {
		return nil
	}
	fields, ok := shapeFields(object, source)
	if !ok {
		return nil
	}
	return &Type{Kind: Shape, Fields: fields}
}

func inferCall(call *sitter.Node, source []byte) *Type {
	arg := firstArgument(call)
	switch calleeName(call, source) {
	case "arrayOf":
		if arg == nil {
			return anyType
		}
		elem, _ := Infer(arg, source)
		return &Type{Kind: ArrayOf, Elem: elem}
	case "objectOf":
		if arg == nil {
			return anyType
		}
		elem, _ := Infer(arg, source)
		return &Type{Kind: ObjectOf, Elem: elem}
	case "instanceOf":
		if arg == nil || arg.Type() != "identifier" {
			return anyType
		}
		return &Type{Kind: InstanceOf, Name: lang.NodeText(arg, source)}
	case "oneOf":
		return inferOneOf(arg, source)
	case "oneOfType":
		elems, ok := arrayElements(arg)
		if !ok || len(elems) == 0 {
			return anyType
		}
		t := &Type{Kind: Union}
		for _, elem := range elems {
			v, _ := Infer(elem, source)
			t.Variants = append(t.Variants, v)
		}
		return t
	case "shape":
		arg = parse.Unparen(arg)
		if arg == nil || arg.Type() != "object" {
			return anyType
		}
		fields, ok := shapeFields(arg, source)
		if !ok {
			return anyType
		}
		return &Type{Kind: Shape, Fields: fields}
	}
	return anyType
}

func inferOneOf(arg *sitter.Node, source []byte) *Type {
	elems, ok := arrayElements(arg)
	if !ok || len(elems) == 0 {
		return anyType
	}
	t := &Type{Kind: Union}
	for _, elem := range elems {
		switch elem.Type() {
		case "string":
			t.Variants = append(t.Variants, &Type{Kind: Literal, Name: parse.StringValue(elem, source), Quoted: true})
		case "number", "true", "false", "null":
			t.Variants = append(t.Variants, &Type{Kind: Literal, Name: lang.NodeText(elem, source)})
		default:
			return anyType
		}
	}
	return t
}

func shapeFields(object *sitter.Node, source []byte) ([]Field, bool) {
	var fields []Field
	for i := 0; i < int(object.NamedChildCount()); i++ {
		entry := object.NamedChild(i)
		switch entry.Type() {
		case "comment":
			continue
		case "pair":
		default:
			return nil, false
		}
		key := entry.ChildByFieldName("key")
		value := entry.ChildByFieldName("value")
		if key == nil || value == nil {
			return nil, false
		}
		var name string
		switch key.Type() {
		case "property_identifier":
			name = lang.NodeText(key, source)
		case "string":
			name = parse.StringValue(key, source)
		case "number":
			name = lang.NodeText(key, source)
		default:
			return nil, false
		}
		t, optional := Infer(value, source)
		fields = append(fields, Field{Name: name, Type: t, Optional: optional})
	}
	return fields, true
}

func arrayElements(node *sitter.Node) ([]*sitter.Node, bool) {
	node = parse.Unparen(node)
	if node == nil || node.Type() != "array" {
		return nil, false
	}
	return parse.ArrayElements(node), true
}

func firstArgument(call *sitter.Node) *sitter.Node {
	args := call.ChildByFieldName("arguments")
	if args == nil {
		return nil
	}
	for i := 0; i < int(args.NamedChildCount()); i++ {
		if arg := args.NamedChild(i); arg.Type() != "comment" {
			return arg
		}
	}
	return nil
}

func calleeName(call *sitter.Node, source []byte) string {
	callee := call.ChildByFieldName("function")
	if callee == nil {
		return ""
	}
	switch callee.Type() {
	case "identifier":
		return lang.NodeText(callee, source)
	case "member_expression":
		return propertyName(callee, source)
	}
	return ""
}

func propertyName(member *sitter.Node, source []byte) string {
	prop := member.ChildByFieldName("property")
	if prop == nil {
		return ""
	}
	return lang.NodeText(prop, source)
}
