// Package proptypes infers static type annotations from runtime prop-type
// validators such as `PropTypes.arrayOf(PropTypes.string).isRequired`.
package proptypes

import (
	"strings"
)

// Kind is the variant of a Type.
type Kind int

const (
	Any Kind = iota
	Bool
	Number
	String
	Literal
	ArrayOf
	ObjectOf
	InstanceOf
	Union
	Shape
	GenericObject
	GenericArray
	GenericFunction
)

// Type is an inferred static type. Values are never modified after Infer
// returns them.
type Type struct {
	Kind Kind
	// Elem is the element type of ArrayOf and ObjectOf.
	Elem *Type
	// Name is the constructor of InstanceOf, or the value of Literal.
	Name string
	// Quoted marks a string Literal.
	Quoted   bool
	Variants []*Type
	Fields   []Field
}

// Field is one property of a Shape.
type Field struct {
	Name     string
	Type     *Type
	Optional bool
}

var (
	anyType      = &Type{Kind: Any}
	boolType     = &Type{Kind: Bool}
	numberType   = &Type{Kind: Number}
	stringType   = &Type{Kind: String}
	objectType   = &Type{Kind: GenericObject}
	arrayType    = &Type{Kind: GenericArray}
	functionType = &Type{Kind: GenericFunction}
)

// Style controls how types are printed.
type Style struct {
	// Quote is the quote character for string literal types and keys.
	Quote         byte
	TrailingComma bool
}

// DefaultStyle prints single-quoted literals and trailing commas.
var DefaultStyle = Style{Quote: '\'', TrailingComma: true}

// Format prints t on one line in syntax accepted by both Flow and TypeScript.
func Format(t *Type, style Style) string {
	var b strings.Builder
	format(&b, t, style)
	return b.String()
}

// FormatBlock prints a Shape with one field per line, continuation lines
// indented by indent. Other kinds print as Format does.
func FormatBlock(t *Type, style Style, indent string) string {
	if t.Kind != Shape || len(t.Fields) == 0 {
		return Format(t, style)
	}
	var b strings.Builder
	b.WriteString("{\n")
	for i, f := range t.Fields {
		b.WriteString(indent)
		formatField(&b, f, style)
		if i < len(t.Fields)-1 || style.TrailingComma {
			b.WriteByte(',')
		}
		b.WriteByte('\n')
	}
	b.WriteByte('}')
	return b.String()
}

func format(b *strings.Builder, t *Type, style Style) {
	switch t.Kind {
	case Bool:
		b.WriteString("boolean")
	case Number:
		b.WriteString("number")
	case String:
		b.WriteString("string")
	case Literal:
		if t.Quoted {
			b.WriteString(quote(t.Name, style.Quote))
		} else {
			b.WriteString(t.Name)
		}
	case ArrayOf:
		b.WriteString("Array<")
		format(b, t.Elem, style)
		b.WriteByte('>')
	case ObjectOf:
		b.WriteString("{[key: string]: ")
		format(b, t.Elem, style)
		b.WriteByte('}')
	case InstanceOf:
		b.WriteString(t.Name)
	case Union:
		for i, v := range t.Variants {
			if i > 0 {
				b.WriteString(" | ")
			}
			format(b, v, style)
		}
	case Shape:
		b.WriteByte('{')
		for i, f := range t.Fields {
			if i > 0 {
				b.WriteString(", ")
			}
			formatField(b, f, style)
		}
		b.WriteByte('}')
	case GenericObject:
		b.WriteString("Object")
	case GenericArray:
		b.WriteString("Array<any>")
	case GenericFunction:
		b.WriteString("Function")
	default:
		b.WriteString("any")
	}
}

func formatField(b *strings.Builder, f Field, style Style) {
	if isIdentifier(f.Name) {
		b.WriteString(f.Name)
	} else {
		b.WriteString(quote(f.Name, style.Quote))
	}
	if f.Optional {
		b.WriteByte('?')
	}
	b.WriteString(": ")
	format(b, f.Type, style)
}

// quote wraps s, an unquoted string literal body, in q.
func quote(s string, q byte) string {
	if q == 0 {
		q = '\''
	}
	other := byte('"')
	if q == '"' {
		other = '\''
	}
	var b strings.Builder
	b.WriteByte(q)
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '\\' && i+1 < len(s):
			if s[i+1] == other {
				b.WriteByte(other)
			} else {
				b.WriteByte(c)
				b.WriteByte(s[i+1])
			}
			i++
		case c == q:
			b.WriteByte('\\')
			b.WriteByte(c)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte(q)
	return b.String()
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
