// Package classify turns the fields of an eligible component spec into class
// members: statics, default props, initial state and instance members.
package classify

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/phobologic/reactmod/internal/lang"
	"github.com/phobologic/reactmod/internal/model"
	"github.com/phobologic/reactmod/internal/parse"
	"github.com/phobologic/reactmod/internal/rewrite"
)

// lifecycleMethods stay prototype methods. Every other function field
// becomes an auto-bound arrow property.
var lifecycleMethods = map[string]struct{}{
	"componentDidCatch":                {},
	"componentDidMount":                {},
	"componentDidUpdate":               {},
	"componentWillMount":               {},
	"componentWillReceiveProps":        {},
	"componentWillUnmount":             {},
	"componentWillUpdate":              {},
	"getChildContext":                  {},
	"render":                           {},
	"shouldComponentUpdate":            {},
	"UNSAFE_componentWillMount":        {},
	"UNSAFE_componentWillReceiveProps": {},
	"UNSAFE_componentWillUpdate":       {},
}

// IsLifecycle reports whether name is a lifecycle method React calls itself.
func IsLifecycle(name string) bool {
	_, ok := lifecycleMethods[name]
	return ok
}

// Result is the classified content of one declaration.
type Result struct {
	Base    model.BaseKind
	Statics []model.Member
	// Constructor is set when the initial state could not be lifted.
	Constructor *model.Member
	State       *model.Member
	Members     []model.Member
	// PropTypes is the value of the propTypes field, for type inference.
	PropTypes *sitter.Node
}

// Options are the file-level inputs to Classify.
type Options struct {
	Source    []byte
	TypeCasts bool
	// Unit is one level of indentation in the component body.
	Unit string
}

type classifier struct {
	Options
}

// Classify builds the members of an eligible declaration. It assumes
// analyze.Evaluate passed.
func Classify(decl *model.Declaration, opts Options) *Result {
	if opts.Unit == "" {
		opts.Unit = "  "
	}
	c := classifier{opts}
	res := &Result{}
	for i := range decl.Fields {
		f := &decl.Fields[i]
		switch f.Kind {
		case model.KindMixins:
			if len(parse.ArrayElements(f.Value)) > 0 {
				res.Base = model.PureComponent
			}
		case model.KindStaticKey:
			res.Statics = append(res.Statics, c.static(f))
			if f.Key == "propTypes" {
				res.PropTypes = f.Value
			}
		case model.KindStatics:
			entries, _ := parse.Fields(f.Value, c.Source, c.TypeCasts)
			for j := range entries {
				m := c.static(&entries[j])
				if j == 0 {
					m.Comments = append(c.base(f).Comments, m.Comments...)
				}
				res.Statics = append(res.Statics, m)
				if entries[j].Key == "propTypes" {
					res.PropTypes = entries[j].Value
				}
			}
		case model.KindDefaultProps:
			res.Statics = append(res.Statics, c.defaultProps(f))
		case model.KindInitialState:
			c.initialState(f, res)
		case model.KindData, model.KindTyped, model.KindFunction:
			res.Members = append(res.Members, c.member(f))
		}
	}
	return res
}

func (c *classifier) static(f *model.Field) model.Member {
	m := c.base(f)
	m.Kind = model.StaticProperty
	indent := c.indent(f)
	switch {
	case f.Value == nil:
	case parse.IsFunction(f.Value):
		m.Kind = model.StaticMethod
		c.function(&m, f.Value, indent)
	case parse.IsTypeCast(f.Value):
		m.Value = c.text(f.Value.NamedChild(0), indent)
		m.Type = c.text(f.Value.NamedChild(1), indent)
	default:
		m.Value = c.text(f.Value, indent)
	}
	return m
}

func (c *classifier) defaultProps(f *model.Field) model.Member {
	m := c.base(f)
	m.Kind = model.StaticProperty
	m.Name = "defaultProps"
	indent := c.indent(f)
	if obj := objectReturn(f.Value); obj != nil {
		m.Value = c.text(obj, indent)
		m.Comments = append(m.Comments, c.comments(bodyComments(f.Value, obj))...)
		return m
	}
	m.Value = "(" + c.functionExpression(f.Value, indent) + ")()"
	return m
}

func (c *classifier) initialState(f *model.Field, res *Result) {
	indent := c.indent(f)
	if obj := objectReturn(f.Value); obj != nil {
		m := c.base(f)
		m.Kind = model.State
		m.Name = "state"
		m.Value = c.text(obj, indent)
		m.Comments = append(m.Comments, c.comments(bodyComments(f.Value, obj))...)
		if ret := f.Value.ChildByFieldName("return_type"); ret != nil {
			m.Type = strings.TrimSpace(strings.TrimPrefix(c.text(ret, indent), ":"))
		}
		parse.Walk(obj, func(n *sitter.Node) bool {
			if n.Type() == "this" {
				m.ReadsThis = true
			}
			return !m.ReadsThis
		})
		res.State = &m
		return
	}
	ctor := c.constructor(f, indent)
	res.Constructor = &ctor
}

// constructor rewrites a getInitialState body into a class constructor:
// instance reads of props and context use the constructor parameters, and
// every return assigns this.state instead.
func (c *classifier) constructor(f *model.Field, indent string) model.Member {
	m := c.base(f)
	m.Kind = model.Constructor
	m.Name = "constructor"
	body := f.Value.ChildByFieldName("body")

	var edits []rewrite.Edit
	needsContext := false
	parse.Walk(body, func(n *sitter.Node) bool {
		if n != body && parse.OwnsThis(n) {
			return false
		}
		switch n.Type() {
		case "member_expression":
			switch {
			case parse.IsThisMember(n, c.Source, "props"):
				edits = append(edits, rewrite.Edit{Start: n.StartByte(), End: n.EndByte(), Text: "props"})
				return false
			case parse.IsThisMember(n, c.Source, "context"):
				needsContext = true
				edits = append(edits, rewrite.Edit{Start: n.StartByte(), End: n.EndByte(), Text: "context"})
				return false
			}
		case "this":
			needsContext = true
		}
		return true
	})

	edits = append(edits, verbatim(c.Source, body)...)

	var returns []rewrite.Edit
	parse.Walk(body, func(n *sitter.Node) bool {
		if n != body && (parse.OwnsThis(n) || n.Type() == "arrow_function") {
			return false
		}
		if n.Type() != "return_statement" {
			return true
		}
		if value := parse.ReturnValue(n); value != nil {
			returns = append(returns, c.assignState(n, value, body, edits))
		}
		return false
	})
	edits = append(edits, returns...)

	params := "(props)"
	if needsContext {
		params = "(props, context)"
	}
	inner := rewrite.Slice(c.Source, body.StartByte()+1, body.EndByte()-1, edits)
	inner = rewrite.Dedent(strings.TrimSpace(inner), indent)

	var b strings.Builder
	b.WriteString("{\n")
	b.WriteString(c.Unit + "super" + params + ";\n")
	if inner != "" {
		b.WriteString(c.Unit + inner + "\n")
	}
	b.WriteString("}")
	m.Params = params
	m.Body = b.String()
	return m
}

// assignState replaces one return statement of a getInitialState body.
// Returns nested inside control flow keep their early exit.
func (c *classifier) assignState(ret, value, body *sitter.Node, edits []rewrite.Edit) rewrite.Edit {
	assign := "this.state = " + rewrite.Slice(c.Source, value.StartByte(), value.EndByte(), edits) + ";"
	edit := rewrite.Edit{Start: ret.StartByte(), End: ret.EndByte()}
	parent := ret.Parent()
	indent := rewrite.LineIndent(c.Source, ret.StartByte())
	switch {
	case parent == nil || parent.Equal(body):
		edit.Text = assign
	case parent.Type() == "statement_block":
		edit.Text = assign + "\n" + indent + "return;"
	default:
		inner := indent + c.Unit
		edit.Text = "{\n" + inner + assign + "\n" + inner + "return;\n" + indent + "}"
	}
	return edit
}

func (c *classifier) member(f *model.Field) model.Member {
	m := c.base(f)
	indent := c.indent(f)
	switch f.Kind {
	case model.KindTyped:
		m.Kind = model.Property
		m.Value = c.text(f.Value.NamedChild(0), indent)
		m.Type = c.text(f.Value.NamedChild(1), indent)
	case model.KindData:
		m.Kind = model.Property
		m.Value = c.text(f.Value, indent)
	case model.KindFunction:
		m.Kind = model.BoundMethod
		if IsLifecycle(f.Key) {
			m.Kind = model.Method
		}
		c.function(&m, f.Value, indent)
	}
	return m
}

func (c *classifier) base(f *model.Field) model.Member {
	m := model.Member{Name: f.Key, Comments: c.comments(f.Leading)}
	if f.Trailing != nil {
		m.Trailing = lang.NodeText(f.Trailing, c.Source)
	}
	return m
}

// comments returns the texts of comments, each relative to its own line.
func (c *classifier) comments(nodes []*sitter.Node) []string {
	var texts []string
	for _, comment := range nodes {
		texts = append(texts, c.text(comment, rewrite.LineIndent(c.Source, comment.StartByte())))
	}
	return texts
}

// function fills the signature and body of a method-like member from a
// function expression or shorthand method.
func (c *classifier) function(m *model.Member, fn *sitter.Node, indent string) {
	m.Async = parse.IsAsync(fn)
	if tp := fn.ChildByFieldName("type_parameters"); tp != nil {
		m.Params = c.text(tp, indent)
	}
	if params := fn.ChildByFieldName("parameters"); params != nil {
		m.Params += c.text(params, indent)
	} else {
		m.Params += "()"
	}
	if ret := fn.ChildByFieldName("return_type"); ret != nil {
		m.Return = c.text(ret, indent)
	}
	if body := fn.ChildByFieldName("body"); body != nil {
		m.Body = c.text(body, indent)
	}
}

// functionExpression prints fn as a function expression, converting a
// shorthand method if needed.
func (c *classifier) functionExpression(fn *sitter.Node, indent string) string {
	if fn.Type() != "method_definition" {
		return c.text(fn, indent)
	}
	var m model.Member
	c.function(&m, fn, indent)
	prefix := "function"
	if m.Async {
		prefix = "async function"
	}
	return prefix + m.Params + m.Return + " " + m.Body
}

func (c *classifier) indent(f *model.Field) string {
	return rewrite.LineIndent(c.Source, f.Node.StartByte())
}

func (c *classifier) text(node *sitter.Node, indent string) string {
	return Text(c.Source, node, indent)
}

// Text returns the source of node with indent removed from every line after
// the first. Lines inside multi-line literals are marked verbatim and keep
// their exact text.
func Text(source []byte, node *sitter.Node, indent string) string {
	text := rewrite.Slice(source, node.StartByte(), node.EndByte(), verbatim(source, node))
	return rewrite.Dedent(text, indent)
}

func verbatim(source []byte, node *sitter.Node) []rewrite.Edit {
	var edits []rewrite.Edit
	for _, lit := range parse.Literals(node) {
		edits = append(edits, rewrite.Verbatim(source, lit.StartByte(), lit.EndByte())...)
	}
	return edits
}

// objectReturn returns the object literal a function returns when its body
// is exactly one return statement.
func objectReturn(fn *sitter.Node) *sitter.Node {
	value := parse.Unparen(parse.SingleReturn(fn))
	if value == nil || value.Type() != "object" {
		return nil
	}
	return value
}

// bodyComments returns the comments in the body of fn outside value.
func bodyComments(fn, value *sitter.Node) []*sitter.Node {
	var comments []*sitter.Node
	parse.Walk(fn.ChildByFieldName("body"), func(n *sitter.Node) bool {
		switch {
		case n.Equal(value):
			return false
		case n.Type() == "comment":
			comments = append(comments, n)
			return false
		}
		return true
	})
	return comments
}
