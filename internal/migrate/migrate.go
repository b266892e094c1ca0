// Package migrate runs the codemod passes over one source file.
package migrate

import (
	"errors"
	"fmt"
	"slices"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/phobologic/reactmod/internal/analyze"
	"github.com/phobologic/reactmod/internal/classify"
	"github.com/phobologic/reactmod/internal/lang"
	"github.com/phobologic/reactmod/internal/model"
	"github.com/phobologic/reactmod/internal/parse"
	"github.com/phobologic/reactmod/internal/proptypes"
	"github.com/phobologic/reactmod/internal/rename"
	"github.com/phobologic/reactmod/internal/rewrite"
	"github.com/phobologic/reactmod/internal/synth"
)

// Pass names.
const (
	PassClass  = "class"
	PassRename = "rename-unsafe-lifecycles"
)

// Passes lists every pass in the order Transform runs them.
var Passes = []string{PassClass, PassRename}

const (
	// DefaultMixinModule is the module the pure-render mixin is imported from.
	DefaultMixinModule = "react-addons-pure-render-mixin"
	createClassModule  = "create-react-class"
	// maxRounds bounds the class pass when declarations are nested.
	maxRounds = 8
)

var frameworkModules = []string{"react", "React"}

// ErrSyntax is returned for files tree-sitter cannot parse cleanly. They are
// left alone rather than rewritten around the damage.
var ErrSyntax = errors.New("syntax error")

// Options configures an Engine.
type Options struct {
	// Passes selects the passes to run; nil runs all of them.
	Passes []string
	// ExplicitRequire limits the class pass to files importing React or
	// create-react-class.
	ExplicitRequire bool
	MixinModule     string
	// TypeInference adds a props type annotation built from propTypes.
	TypeInference bool
	Style         proptypes.Style
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		Passes:          Passes,
		ExplicitRequire: true,
		MixinModule:     DefaultMixinModule,
		Style:           proptypes.DefaultStyle,
	}
}

// Result is the outcome of transforming one file.
type Result struct {
	Output []byte
	// Migrated names the declarations rewritten into classes.
	Migrated []string
	Skipped  []model.Diagnostic
	// Renamed counts renamed lifecycle hooks.
	Renamed int
}

// Changed reports whether Output differs from the input.
func (r *Result) Changed() bool {
	return len(r.Migrated) > 0 || r.Renamed > 0
}

// Engine transforms files of one language. It owns a tree-sitter parser and
// must not be shared between goroutines.
type Engine struct {
	lang   *lang.Language
	parser *sitter.Parser
	query  *sitter.Query
	opts   Options
}

// New returns an Engine for l.
func New(l *lang.Language, opts Options) (*Engine, error) {
	query, err := l.GetQuery()
	if err != nil {
		return nil, fmt.Errorf("loading %s query: %w", l.Name, err)
	}
	if opts.Passes == nil {
		opts.Passes = Passes
	}
	for _, p := range opts.Passes {
		if !slices.Contains(Passes, p) {
			return nil, fmt.Errorf("unknown transform %q", p)
		}
	}
	if opts.MixinModule == "" {
		opts.MixinModule = DefaultMixinModule
	}
	if opts.Style.Quote == 0 {
		opts.Style.Quote = proptypes.DefaultStyle.Quote
	}
	return &Engine{lang: l, parser: l.NewParser(), query: query, opts: opts}, nil
}

// Close releases the parser.
func (e *Engine) Close() {
	e.parser.Close()
}

// Transform runs the enabled passes over source. A file with nothing to do
// yields a Result whose Changed is false; that is not an error.
func (e *Engine) Transform(path string, source []byte) (*Result, error) {
	res := &Result{Output: source}
	f, err := e.parse(path, source)
	if err != nil {
		return nil, err
	}
	if f.Root().HasError() {
		f.Close()
		return nil, fmt.Errorf("%s: %w", path, ErrSyntax)
	}
	f.Close()

	if slices.Contains(e.opts.Passes, PassClass) {
		if err := e.classPass(path, res); err != nil {
			return nil, err
		}
	}
	if slices.Contains(e.opts.Passes, PassRename) {
		if err := e.renamePass(path, res); err != nil {
			return nil, err
		}
	}
	return res, nil
}

// parse parses an intermediate result. Only the input is checked for syntax
// errors: synthesized Flow annotations are not valid to the JavaScript grammar.
func (e *Engine) parse(path string, source []byte) (*parse.File, error) {
	return parse.Parse(e.lang, e.parser, source, path)
}

// classPass rewrites declarations round by round: a declaration nested in
// another one being migrated is found again in the next round, inside the
// synthesized class.
func (e *Engine) classPass(path string, res *Result) error {
	seen := map[string]struct{}{}
	for round := 0; round < maxRounds; round++ {
		f, err := e.parse(path, res.Output)
		if err != nil {
			return err
		}
		edits, deferred := e.classRound(f, res, seen)
		f.Close()
		if len(edits) == 0 {
			break
		}
		res.Output = rewrite.Apply(res.Output, edits)
		if !deferred {
			break
		}
	}
	if len(res.Migrated) == 0 {
		return nil
	}
	f, err := e.parse(path, res.Output)
	if err != nil {
		return err
	}
	defer f.Close()
	if edits := e.unusedImports(f); len(edits) > 0 {
		res.Output = rewrite.Apply(res.Output, edits)
	}
	return nil
}

func (e *Engine) classRound(f *parse.File, res *Result, seen map[string]struct{}) ([]rewrite.Edit, bool) {
	imports := f.Imports(e.query)
	if e.opts.ExplicitRequire && !importsFramework(imports) {
		return nil, false
	}
	decls := f.Declarations(e.query, factory(imports))
	env := analyze.Env{Source: f.Source, PureMixin: parse.Binding(imports, e.opts.MixinModule)}

	var eligible []*model.Declaration
	ordinals := map[string]int{}
	for i := range decls {
		d := &decls[i]
		v := analyze.Evaluate(d, env)
		if v.Eligible {
			eligible = append(eligible, d)
			continue
		}
		// A skipped declaration is found again in every round. Its text,
		// up to reindentation, and its rank among identical texts identify
		// it across rounds.
		key := lang.CollapseWhitespace(f.Text(d.Node))
		ordinals[key]++
		key = fmt.Sprintf("%d\x00%s", ordinals[key], key)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		res.Skipped = append(res.Skipped, model.Diagnostic{File: f.Path, Component: d.DisplayName(), Reason: v.Reason})
	}

	var edits []rewrite.Edit
	deferred := false
	for _, d := range eligible {
		if nested(d, eligible) {
			deferred = true
			continue
		}
		edits = append(edits, rewrite.Edit{Start: d.Start(), End: d.End(), Text: e.synthesize(f, d)})
		res.Migrated = append(res.Migrated, d.DisplayName())
	}
	return edits, deferred
}

func (e *Engine) synthesize(f *parse.File, d *model.Declaration) string {
	layout := synth.DetectLayout(f.Source, d)
	members := classify.Classify(d, classify.Options{
		Source:    f.Source,
		TypeCasts: f.Lang.TypeCasts,
		Unit:      layout.Unit,
	})
	c := &synth.Class{
		Name:        d.Name,
		Base:        d.Framework + "." + members.Base.String(),
		Comments:    commentTexts(f, d.Comments),
		Statics:     members.Statics,
		Constructor: members.Constructor,
		State:       members.State,
		Members:     members.Members,
		Dangling:    commentTexts(f, d.Dangling),
	}
	if e.opts.TypeInference && members.PropTypes != nil {
		if t := proptypes.Props(members.PropTypes, f.Source); t != nil {
			c.PropsType = &model.Member{
				Kind:    model.PropsType,
				Name:    "props",
				Type:    proptypes.FormatBlock(t, e.opts.Style, layout.Unit),
				Declare: f.Lang.TypeCasts,
			}
		}
	}
	return synth.Synthesize(c, layout)
}

// unusedImports removes the pure-render mixin and create-react-class
// imports once migration left them unreferenced.
func (e *Engine) unusedImports(f *parse.File) []rewrite.Edit {
	var edits []rewrite.Edit
	for _, imp := range f.Imports(e.query) {
		if imp.Statement == nil || (imp.Source != e.opts.MixinModule && imp.Source != createClassModule) {
			continue
		}
		if referenced(f, imp) {
			continue
		}
		end := imp.Statement.EndByte()
		if int(end) < len(f.Source) && f.Source[end] == '\n' {
			end++
		}
		edits = append(edits, rewrite.Edit{Start: imp.Statement.StartByte(), End: end})
	}
	return edits
}

func referenced(f *parse.File, imp parse.Import) bool {
	found := false
	parse.Walk(f.Root(), func(n *sitter.Node) bool {
		if found || n.Equal(imp.Statement) {
			return false
		}
		switch n.Type() {
		case "identifier", "shorthand_property_identifier", "type_identifier":
			if f.Text(n) == imp.Binding {
				found = true
			}
		}
		return !found
	})
	return found
}

func (e *Engine) renamePass(path string, res *Result) error {
	f, err := e.parse(path, res.Output)
	if err != nil {
		return err
	}
	defer f.Close()
	edits := rename.Rename(f.Root(), f.Source)
	if len(edits) == 0 {
		return nil
	}
	res.Output = rewrite.Apply(res.Output, edits)
	res.Renamed = len(edits)
	return nil
}

// importsFramework reports whether the file imports React itself. The
// create-react-class module alone does not bind the base class.
func importsFramework(imports []parse.Import) bool {
	for _, imp := range imports {
		if slices.Contains(frameworkModules, imp.Source) {
			return true
		}
	}
	return false
}

// factory recognizes `React.createClass` and calls to the create-react-class
// binding. The base class comes from the React binding in both cases; a
// create-react-class call in a file without one yields an empty framework,
// which analyze.BoundFramework rejects.
func factory(imports []parse.Import) parse.FactoryFunc {
	react := ""
	for _, m := range frameworkModules {
		if b := parse.Binding(imports, m); b != "" {
			react = b
			break
		}
	}
	createClass := parse.Binding(imports, createClassModule)
	return func(callee *sitter.Node, source []byte) (string, bool) {
		switch callee.Type() {
		case "identifier":
			if createClass != "" && lang.NodeText(callee, source) == createClass {
				return react, true
			}
		case "member_expression":
			object := callee.ChildByFieldName("object")
			property := callee.ChildByFieldName("property")
			if object == nil || property == nil || object.Type() != "identifier" ||
				lang.NodeText(property, source) != "createClass" {
				return "", false
			}
			if name := lang.NodeText(object, source); name == react || name == "React" {
				return name, true
			}
		}
		return "", false
	}
}

// nested reports whether d lies inside another declaration of decls.
func nested(d *model.Declaration, decls []*model.Declaration) bool {
	for _, other := range decls {
		if other == d {
			continue
		}
		if other.Start() <= d.Start() && d.End() <= other.End() {
			return true
		}
	}
	return false
}

func commentTexts(f *parse.File, comments []*sitter.Node) []string {
	var texts []string
	for _, c := range comments {
		texts = append(texts, classify.Text(f.Source, c, rewrite.LineIndent(f.Source, c.StartByte())))
	}
	return texts
}
