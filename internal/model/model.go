// Package model defines core data structures for reactmod.
package model

import (
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
)

// Shape is the syntactic form a legacy component declaration takes.
type Shape int

const (
	// VariableShape is `var Foo = React.createClass({...});`.
	VariableShape Shape = iota
	// ExportsShape is `module.exports = React.createClass({...});`.
	ExportsShape
	// DefaultExportShape is `export default React.createClass({...});`.
	DefaultExportShape
)

func (s Shape) String() string {
	switch s {
	case VariableShape:
		return "variable"
	case ExportsShape:
		return "exports"
	case DefaultExportShape:
		return "default"
	}
	return fmt.Sprintf("Shape(%d)", int(s))
}

// BaseKind selects the class a migrated component extends.
type BaseKind int

const (
	Component BaseKind = iota
	PureComponent
)

func (b BaseKind) String() string {
	if b == PureComponent {
		return "PureComponent"
	}
	return "Component"
}

// FieldKind classifies one entry of a component spec object.
// It is computed once, when the field is extracted.
type FieldKind int

const (
	// KindOther is anything the class transform cannot express; it blocks migration.
	KindOther FieldKind = iota
	// KindData is a literal (or `undefined`) value.
	KindData
	// KindTyped is a literal wrapped in a type cast (`'a' as Mode`).
	KindTyped
	// KindFunction is a function expression or shorthand method.
	KindFunction
	// KindStatics is the `statics: {...}` block.
	KindStatics
	// KindDefaultProps is the `getDefaultProps` factory.
	KindDefaultProps
	// KindInitialState is the `getInitialState` factory.
	KindInitialState
	// KindMixins is the `mixins` list.
	KindMixins
	// KindStaticKey is one of the metadata keys hoisted to statics.
	KindStaticKey
)

var fieldKindNames = [...]string{
	KindOther:        "other",
	KindData:         "data",
	KindTyped:        "typed",
	KindFunction:     "function",
	KindStatics:      "statics",
	KindDefaultProps: "default-props",
	KindInitialState: "initial-state",
	KindMixins:       "mixins",
	KindStaticKey:    "static-key",
}

func (k FieldKind) String() string {
	if k >= 0 && int(k) < len(fieldKindNames) {
		return fieldKindNames[k]
	}
	return fmt.Sprintf("FieldKind(%d)", int(k))
}

// Field is one entry of a component spec object.
type Field struct {
	// Key is the property name, or the source text of the entry when it has
	// no plain identifier key.
	Key string
	// Node is the object member (pair, method_definition, spread, ...).
	Node *sitter.Node
	// Value is the value expression; for shorthand methods it is Node itself.
	Value    *sitter.Node
	Kind     FieldKind
	Leading  []*sitter.Node
	Trailing *sitter.Node
}

// Declaration is a legacy component declaration found in a file.
type Declaration struct {
	Name  string
	Shape Shape
	// Node is the subtree the migrated class replaces: the whole statement
	// for VariableShape, the factory call otherwise.
	Node *sitter.Node
	// Statement encloses Node for ExportsShape and DefaultExportShape.
	Statement *sitter.Node
	Call      *sitter.Node
	// Spec is the object literal argument; nil when Malformed is set.
	Spec *sitter.Node
	// Framework is the binding the base class is read from (`React`).
	Framework string
	Fields    []Field
	// Comments lead a VariableShape statement and move with it.
	Comments []*sitter.Node
	// Dangling comments sit after the last field of the spec object.
	Dangling []*sitter.Node
	// Malformed explains why the declaration cannot be read structurally.
	Malformed string
}

// Field returns the first field with the given key, or nil.
func (d *Declaration) Field(key string) *Field {
	for i := range d.Fields {
		if d.Fields[i].Key == key {
			return &d.Fields[i]
		}
	}
	return nil
}

// Start is the first byte the migration replaces.
func (d *Declaration) Start() uint32 {
	if len(d.Comments) > 0 {
		return d.Comments[0].StartByte()
	}
	return d.Node.StartByte()
}

// End is the byte after the last one the migration replaces. A default
// export gives up its semicolon, since the class becomes a declaration.
func (d *Declaration) End() uint32 {
	if d.Shape == DefaultExportShape && d.Statement != nil && d.Statement.ChildCount() > 0 {
		last := d.Statement.Child(int(d.Statement.ChildCount()) - 1)
		if last != nil && last.Type() == ";" {
			return last.EndByte()
		}
	}
	return d.Node.EndByte()
}

// DisplayName returns the name used in diagnostics.
func (d *Declaration) DisplayName() string {
	if d.Name != "" {
		return d.Name
	}
	return "anonymous component"
}

// Verdict is the outcome of eligibility analysis for one declaration.
type Verdict struct {
	Eligible bool
	Reason   string
}

// Eligible is the passing verdict.
var Eligible = Verdict{Eligible: true}

// Ineligible returns a failing verdict with a formatted reason.
func Ineligible(format string, args ...any) Verdict {
	return Verdict{Reason: fmt.Sprintf(format, args...)}
}

// MemberKind is the kind of a synthesized class member.
type MemberKind int

const (
	PropsType MemberKind = iota
	StaticProperty
	StaticMethod
	Constructor
	State
	Property
	BoundMethod
	Method
)

// Member is one member of a synthesized class. Multi-line texts are stored
// relative to the member's own column: continuation lines carry only the
// indentation nested inside the member.
type Member struct {
	Kind MemberKind
	Name string
	// Type is a type annotation without the leading colon.
	Type  string
	Value string
	// Params includes the parentheses; Return includes the leading colon.
	Params string
	Return string
	Body   string
	Async  bool
	// Declare emits a type-only field (`declare props: T;`) that does not
	// overwrite the value set by the base constructor.
	Declare bool
	// ReadsThis is set when the initializer references `this`.
	ReadsThis bool
	Comments  []string
	Trailing  string
}

// Diagnostic explains why a declaration was left untouched.
type Diagnostic struct {
	File      string
	Component string
	Reason    string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: `%s` was skipped because of %s", d.File, d.Component, d.Reason)
}

// FileReport is the outcome of running the transforms over one file.
type FileReport struct {
	Path     string
	Language string
	Migrated int
	Skipped  int
	Renamed  int
	Err      string
}

// Report is the outcome of a whole run, ready for serialization.
type Report struct {
	Root        string
	Files       []FileReport
	Diagnostics []Diagnostic
}
