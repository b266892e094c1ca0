// Package synth assembles the class declaration that replaces a legacy
// component declaration.
package synth

import (
	"strings"

	"github.com/phobologic/reactmod/internal/model"
	"github.com/phobologic/reactmod/internal/rewrite"
)

// Class is a class declaration ready to be printed.
type Class struct {
	// Name is empty for an anonymous class expression.
	Name string
	// Base is the qualified superclass, e.g. `React.Component`.
	Base        string
	Comments    []string
	PropsType   *model.Member
	Statics     []model.Member
	Constructor *model.Member
	State       *model.Member
	// Members are the instance properties and methods in source order.
	Members  []model.Member
	Dangling []string
}

// Layout is the indentation the class is printed with.
type Layout struct {
	// Indent is the indentation of the line the declaration starts on.
	Indent string
	// Unit is one level of indentation.
	Unit string
}

// DefaultUnit is used when the spec object does not reveal its indentation.
const DefaultUnit = "  "

// DetectLayout reads the layout from the declaration's own formatting.
func DetectLayout(source []byte, decl *model.Declaration) Layout {
	layout := Layout{
		Indent: rewrite.LineIndent(source, decl.Node.StartByte()),
		Unit:   DefaultUnit,
	}
	for _, f := range decl.Fields {
		fieldIndent := rewrite.LineIndent(source, f.Node.StartByte())
		if len(fieldIndent) > len(layout.Indent) && strings.HasPrefix(fieldIndent, layout.Indent) {
			layout.Unit = fieldIndent[len(layout.Indent):]
			break
		}
	}
	return layout
}

// Order returns the members of c in the order they are printed: props type,
// statics, constructor, then instance members with the state property
// placed before anything that could observe it uninitialized.
func Order(c *Class) []model.Member {
	var members []model.Member
	if c.PropsType != nil {
		members = append(members, *c.PropsType)
	}
	members = append(members, c.Statics...)
	if c.Constructor != nil {
		members = append(members, *c.Constructor)
	}
	return append(members, instanceMembers(c)...)
}

func instanceMembers(c *Class) []model.Member {
	if c.State == nil {
		return c.Members
	}
	at := 0
	if c.State.ReadsThis {
		// After the last initializer, scanning from the end.
		for i := len(c.Members) - 1; i >= 0; i-- {
			if c.Members[i].Kind != model.Method {
				at = i + 1
				break
			}
		}
	}
	out := make([]model.Member, 0, len(c.Members)+1)
	out = append(out, c.Members[:at]...)
	out = append(out, *c.State)
	return append(out, c.Members[at:]...)
}

// Synthesize prints c. The first line carries no indentation, since it
// replaces text that starts mid-line; every later line is indented for l,
// except lines inside multi-line literals.
func Synthesize(c *Class, l Layout) string {
	var b strings.Builder
	for _, comment := range c.Comments {
		b.WriteString(rewrite.Indent(comment, l.Indent))
		b.WriteString("\n" + l.Indent)
	}
	b.WriteString("class ")
	if c.Name != "" {
		b.WriteString(c.Name + " ")
	}
	b.WriteString("extends " + c.Base + " {")

	members := Order(c)
	if len(members) == 0 && len(c.Dangling) == 0 {
		b.WriteString("}")
		return rewrite.Unmark(b.String())
	}
	inner := l.Indent + l.Unit
	b.WriteString("\n")
	for i, m := range members {
		if i > 0 {
			b.WriteString("\n")
		}
		for _, comment := range m.Comments {
			b.WriteString(inner + rewrite.Indent(comment, inner) + "\n")
		}
		b.WriteString(inner + rewrite.Indent(Member(m), inner))
		if m.Trailing != "" {
			b.WriteString(" " + m.Trailing)
		}
		b.WriteString("\n")
	}
	if len(c.Dangling) > 0 {
		if len(members) > 0 {
			b.WriteString("\n")
		}
		for _, comment := range c.Dangling {
			b.WriteString(inner + rewrite.Indent(comment, inner) + "\n")
		}
	}
	b.WriteString(l.Indent + "}")
	return rewrite.Unmark(b.String())
}

// Member prints one member relative to its own column.
func Member(m model.Member) string {
	var b strings.Builder
	switch m.Kind {
	case model.PropsType:
		if m.Declare {
			b.WriteString("declare ")
		}
		b.WriteString("props: " + m.Type + ";")
	case model.StaticProperty:
		b.WriteString("static ")
		property(&b, m)
	case model.State, model.Property:
		property(&b, m)
	case model.StaticMethod:
		b.WriteString("static ")
		method(&b, m)
	case model.Constructor, model.Method:
		method(&b, m)
	case model.BoundMethod:
		b.WriteString(m.Name + " = ")
		if m.Async {
			b.WriteString("async ")
		}
		b.WriteString(m.Params + m.Return + " => " + m.Body + ";")
	}
	return b.String()
}

func property(b *strings.Builder, m model.Member) {
	b.WriteString(m.Name)
	if m.Type != "" {
		b.WriteString(": " + m.Type)
	}
	b.WriteString(" = " + m.Value + ";")
}

func method(b *strings.Builder, m model.Member) {
	if m.Async {
		b.WriteString("async ")
	}
	b.WriteString(m.Name + m.Params + m.Return + " " + m.Body)
}
