// Package analyze decides whether a legacy component declaration can be
// migrated to a class without changing its behavior.
package analyze

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/phobologic/reactmod/internal/lang"
	"github.com/phobologic/reactmod/internal/model"
	"github.com/phobologic/reactmod/internal/parse"
)

// DeprecatedAPIs are instance methods that do not exist on class components.
var DeprecatedAPIs = []string{
	"getDOMNode",
	"isMounted",
	"replaceProps",
	"replaceState",
	"setProps",
}

// Env is the per-file context eligibility depends on.
type Env struct {
	Source []byte
	// PureMixin is the local binding of the pure-render mixin import, or ""
	// when the file does not import it.
	PureMixin string
}

// Check is one eligibility predicate.
type Check func(decl *model.Declaration, env Env) model.Verdict

// Checks are run in order by Evaluate.
var Checks = []Check{
	WellFormed,
	BoundFramework,
	ConvertibleMixins,
	NoDeprecatedAPIs,
	NoDuplicateFactories,
	NoArguments,
	ValidFields,
}

// Evaluate returns the first failing verdict of Checks, or model.Eligible.
func Evaluate(decl *model.Declaration, env Env) model.Verdict {
	for _, check := range Checks {
		if v := check(decl, env); !v.Eligible {
			return v
		}
	}
	return model.Eligible
}

// WellFormed fails declarations whose factory call could not be read.
func WellFormed(decl *model.Declaration, _ Env) model.Verdict {
	if decl.Malformed != "" || decl.Spec == nil {
		reason := decl.Malformed
		if reason == "" {
			reason = "a missing spec object"
		}
		return model.Ineligible("%s", reason)
	}
	return model.Eligible
}

// BoundFramework fails declarations whose base class has no React binding
// to be read from, as with a create-react-class call in a file that never
// imports React.
func BoundFramework(decl *model.Declaration, _ Env) model.Verdict {
	if decl.Framework == "" {
		return model.Ineligible("no React binding in scope for the base class")
	}
	return model.Eligible
}

// ConvertibleMixins passes when the declaration has no mixins, or only the
// pure-render mixin.
func ConvertibleMixins(decl *model.Declaration, env Env) model.Verdict {
	field := decl.Field("mixins")
	if field == nil {
		return model.Eligible
	}
	if field.Value == nil || field.Value.Type() != "array" {
		return model.Ineligible("inconvertible mixins")
	}
	for _, elem := range Mixins(field) {
		if env.PureMixin == "" || elem.Type() != "identifier" || lang.NodeText(elem, env.Source) != env.PureMixin {
			return model.Ineligible("inconvertible mixins")
		}
	}
	return model.Eligible
}

// Mixins returns the elements of a mixins field.
func Mixins(field *model.Field) []*sitter.Node {
	if field == nil {
		return nil
	}
	return parse.ArrayElements(field.Value)
}

// NoDeprecatedAPIs fails when any deprecated API name appears in the spec.
// The scan is lexical: it does not check what the name is called on.
func NoDeprecatedAPIs(decl *model.Declaration, env Env) model.Verdict {
	found := false
	parse.Walk(decl.Spec, func(n *sitter.Node) bool {
		switch n.Type() {
		case "identifier", "property_identifier", "shorthand_property_identifier":
			name := lang.NodeText(n, env.Source)
			for _, api := range DeprecatedAPIs {
				if name == api {
					found = true
				}
			}
		}
		return !found
	})
	if found {
		return model.Ineligible("deprecated API calls. Remove calls to `%s` in your React component and re-run this script",
			strings.Join(DeprecatedAPIs, "`, `"))
	}
	return model.Eligible
}

// NoDuplicateFactories fails when getDefaultProps or getInitialState is
// defined more than once.
func NoDuplicateFactories(decl *model.Declaration, _ Env) model.Verdict {
	var defaults, states int
	for _, f := range decl.Fields {
		switch f.Kind {
		case model.KindDefaultProps:
			defaults++
		case model.KindInitialState:
			states++
		}
	}
	if defaults > 1 || states > 1 {
		return model.Ineligible("multiple getDefaultProps or getInitialState definitions")
	}
	return model.Eligible
}

// NoArguments fails when the spec references `arguments`: migrated methods
// become arrow functions, which do not have their own.
func NoArguments(decl *model.Declaration, env Env) model.Verdict {
	found := false
	parse.Walk(decl.Spec, func(n *sitter.Node) bool {
		if n.Type() == "identifier" && lang.NodeText(n, env.Source) == "arguments" {
			found = true
		}
		return !found
	})
	if found {
		return model.Ineligible("use of `arguments` in the component spec")
	}
	return model.Eligible
}

// ValidFields fails when any field cannot be expressed as a class member,
// naming every offending field.
func ValidFields(decl *model.Declaration, _ Env) model.Verdict {
	var invalid []string
	for _, f := range decl.Fields {
		if f.Kind == model.KindOther {
			invalid = append(invalid, f.Key)
		}
	}
	if len(invalid) > 0 {
		return model.Ineligible("invalid field(s) `%s` on the React component. "+
			"Remove any right-hand-side expressions that are not simple, like: "+
			"`componentWillUpdate: createWillUpdate()` or `render: foo ? renderA : renderB`",
			strings.Join(invalid, ", "))
	}
	return model.Eligible
}
