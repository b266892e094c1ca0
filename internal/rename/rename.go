// Package rename renames deprecated lifecycle hooks to their UNSAFE_ names.
package rename

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/phobologic/reactmod/internal/lang"
	"github.com/phobologic/reactmod/internal/parse"
	"github.com/phobologic/reactmod/internal/rewrite"
)

// Table maps each deprecated lifecycle hook to its replacement.
var Table = map[string]string{
	"componentWillMount":        "UNSAFE_componentWillMount",
	"componentWillReceiveProps": "UNSAFE_componentWillReceiveProps",
	"componentWillUpdate":       "UNSAFE_componentWillUpdate",
}

// Rename returns the edits that rename every definition of a hook in Table,
// and the property of every `<expr>.<hook>(...)` call. Matching is by name
// only: an unrelated property that happens to share a hook's name is
// renamed too.
func Rename(root *sitter.Node, source []byte) []rewrite.Edit {
	var edits []rewrite.Edit
	parse.Walk(root, func(n *sitter.Node) bool {
		if name := definedName(n); name != nil {
			if e, ok := renameNode(name, source); ok {
				edits = append(edits, e)
			}
		}
		if n.Type() == "call_expression" {
			callee := n.ChildByFieldName("function")
			if callee != nil && callee.Type() == "member_expression" {
				if e, ok := renameNode(callee.ChildByFieldName("property"), source); ok {
					edits = append(edits, e)
				}
			}
		}
		return true
	})
	return edits
}

// definedName returns the name node of a property, method or class field
// definition, or nil.
func definedName(n *sitter.Node) *sitter.Node {
	switch n.Type() {
	case "method_definition", "public_field_definition":
		return n.ChildByFieldName("name")
	case "pair":
		return n.ChildByFieldName("key")
	case "field_definition":
		return n.ChildByFieldName("property")
	}
	return nil
}

func renameNode(name *sitter.Node, source []byte) (rewrite.Edit, bool) {
	if name == nil || name.Type() != "property_identifier" {
		return rewrite.Edit{}, false
	}
	to, ok := Table[lang.NodeText(name, source)]
	if !ok {
		return rewrite.Edit{}, false
	}
	return rewrite.Edit{Start: name.StartByte(), End: name.EndByte(), Text: to}, true
}
