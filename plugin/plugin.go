// Package plugin turns struct declarations into cleanup rules: what to look
// for (a trigger pattern) and what to turn it into (a rewrite template).
package plugin

import (
	"errors"
	"fmt"
	"go/ast"
	"go/types"
	"strings"

	"github.com/gnolang/sweep/replacement"
	"github.com/gnolang/sweep/rewrite"
	"github.com/gnolang/sweep/visitor"
)

var (
	// ErrNoPattern is returned by New for a declaration that neither tags a
	// pattern nor implements PatternProvider.
	ErrNoPattern = errors.New("plugin: no trigger pattern")
	// ErrNoRewrite is returned by Rule.Rewrite for a declaration that neither
	// tags a rewrite nor implements Rewriter.
	ErrNoRewrite = errors.New("plugin: no rewrite rule")
	ErrBadTag    = errors.New("plugin: malformed tag")
)

type PatternKind int

const (
	KindCall PatternKind = iota + 1
	KindDirective
	KindImport
)

var kindNames = map[PatternKind]string{
	KindCall:      "call",
	KindDirective: "directive",
	KindImport:    "import",
}

func (k PatternKind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("PatternKind(%d)", int(k))
}

func ParseKind(s string) (PatternKind, error) {
	for k, name := range kindNames {
		if name == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown pattern kind %q", s)
}

// Pattern is what a rule triggers on.
type Pattern struct {
	Kind PatternKind
	// Value is a call template ("ReadFile($args$)"), a directive template
	// ("@nolint:deadcode($reason)") or an import path.
	Value string
	// QualifiedType is the package path or qualified type owning a call.
	// When empty the package part of Value is used.
	QualifiedType string
}

// Match is one node a pattern found, with the values its placeholder captured.
type Match struct {
	Node     ast.Node
	Pattern  Pattern
	Bindings *rewrite.Bindings
	File     *ast.File
	Info     *types.Info
}

// PatternProvider is implemented by declarations computing their patterns.
type PatternProvider interface {
	Patterns() []Pattern
}

// Processor is implemented by declarations that veto individual matches.
type Processor interface {
	ShouldProcess(m Match) bool
}

// Rewriter is implemented by declarations with their own rewrite logic.
type Rewriter interface {
	Rewrite(rw *rewrite.Rewriter, m Match) error
}

// Template is the declarative rewrite of a rule.
type Template struct {
	Replace replacement.Replacement
	Imports rewrite.Imports
}

// Rule is a cleanup rule built from a declaration.
type Rule struct {
	ID          string
	Description string
	patterns    []Pattern
	template    *Template
	decl        any
	name        string
}

// New builds a rule from decl, a struct embedding Meta.
func New(decl any) (*Rule, error) {
	tag, name, ok := metaTag(decl)
	r := &Rule{decl: decl, name: name}
	if !ok {
		tag = ""
	}

	cleanup, err := tagFields(tag.Get("cleanup"))
	if err != nil {
		return nil, fmt.Errorf("%w on %s: %v", ErrBadTag, name, err)
	}
	r.ID = cleanup["id"]
	r.Description = cleanup["desc"]
	if r.ID == "" {
		r.ID = name
	}

	if p, ok := decl.(PatternProvider); ok {
		r.patterns = p.Patterns()
	} else if value := cleanup["pattern"]; value != "" {
		p := Pattern{Kind: KindCall, Value: value, QualifiedType: cleanup["type"]}
		if k := cleanup["kind"]; k != "" {
			if p.Kind, err = ParseKind(k); err != nil {
				return nil, fmt.Errorf("%w on %s: %v", ErrBadTag, name, err)
			}
		}
		r.patterns = []Pattern{p}
	}
	if len(r.patterns) == 0 {
		return nil, fmt.Errorf("%w: %s must carry a cleanup pattern tag or implement Patterns", ErrNoPattern, name)
	}
	if err := r.validate(); err != nil {
		return nil, err
	}

	if raw, ok := tag.Lookup("rewrite"); ok {
		t, err := parseTemplate(raw)
		if err != nil {
			return nil, fmt.Errorf("rule %s: %w", r.ID, err)
		}
		r.template = t
	}
	return r, nil
}

// Declare builds a rule from values rather than a tagged declaration.
func Declare(id, desc string, patterns []Pattern, tmpl *Template) (*Rule, error) {
	if len(patterns) == 0 {
		return nil, fmt.Errorf("%w: rule %s", ErrNoPattern, id)
	}
	r := &Rule{ID: id, Description: desc, patterns: patterns, template: tmpl, name: id}
	if err := r.validate(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Rule) validate() error {
	for _, p := range r.patterns {
		if _, err := matcher(p); err != nil {
			return fmt.Errorf("rule %s: %w", r.ID, err)
		}
	}
	return nil
}

// MustNew is New for declarations known to be valid.
func MustNew(decl any) *Rule {
	r, err := New(decl)
	if err != nil {
		panic(err)
	}
	return r
}

func parseTemplate(raw string) (*Template, error) {
	fields, err := tagFields(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadTag, err)
	}
	t := &Template{Imports: rewrite.Imports{
		Add:       tagList(fields["add"]),
		Remove:    tagList(fields["remove"]),
		AddDot:    tagList(fields["adddot"]),
		RemoveDot: tagList(fields["removedot"]),
	}}
	if s := fields["replace"]; s != "" {
		if t.Replace, err = replacement.Parse(s); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func (r *Rule) Patterns() []Pattern {
	return r.patterns
}

// Template returns the declarative rewrite, or nil when the declaration
// rewrites in code.
func (r *Rule) Template() *Template {
	return r.template
}

// Find returns the matches of every pattern of r in file. Nodes already in
// processed are skipped; every node found is added to processed before the
// declaration's ShouldProcess hook is consulted. A nil processed set tracks
// the nodes of this call only.
func (r *Rule) Find(file *ast.File, info *types.Info, processed visitor.NodeSet) ([]Match, error) {
	if processed == nil {
		processed = visitor.NewNodeSet()
	}
	var matches []Match
	for _, p := range r.patterns {
		m, err := matcher(p)
		if err != nil {
			return nil, fmt.Errorf("rule %s: %w", r.ID, err)
		}
		nodes, err := m(file, info, processed)
		if err != nil {
			return nil, fmt.Errorf("rule %s: %w", r.ID, err)
		}
		for _, n := range nodes {
			if processed.Has(n) {
				continue
			}
			processed.Add(n)

			b, err := bind(p, n)
			if err != nil {
				return nil, fmt.Errorf("rule %s: %w", r.ID, err)
			}
			match := Match{Node: n, Pattern: p, Bindings: b, File: file, Info: info}
			if hook, ok := r.decl.(Processor); ok && !hook.ShouldProcess(match) {
				continue
			}
			matches = append(matches, match)
		}
	}
	return matches, nil
}

// CanRewrite reports whether Rewrite has something to apply.
func (r *Rule) CanRewrite() bool {
	if _, ok := r.decl.(Rewriter); ok {
		return true
	}
	return r.template != nil
}

// Rewrite applies r to one of its matches.
func (r *Rule) Rewrite(rw *rewrite.Rewriter, m Match) error {
	if custom, ok := r.decl.(Rewriter); ok {
		return custom.Rewrite(rw, m)
	}
	if r.template == nil {
		return fmt.Errorf("%w: %s must carry a rewrite tag or implement Rewrite", ErrNoRewrite, r.name)
	}

	var err error
	switch n := m.Node.(type) {
	case *ast.Comment:
		err = rewrite.ApplyDirective(rw, n, r.template.Replace, m.Bindings)
	case *ast.CallExpr:
		err = rewrite.ApplyCall(rw, n, r.template.Replace, m.Bindings)
	case *ast.ImportSpec:
		// imports only
	default:
		err = fmt.Errorf("%w: %T", rewrite.ErrTemplateKind, n)
	}
	if err != nil {
		return fmt.Errorf("rule %s: %w", r.ID, err)
	}
	r.template.Imports.Apply(rw)
	return nil
}

type matchFunc func(file *ast.File, info *types.Info, processed visitor.NodeSet) ([]ast.Node, error)

func matcher(p Pattern) (matchFunc, error) {
	switch p.Kind {
	case KindCall:
		repl, err := replacement.Parse(p.Value)
		if err != nil {
			return nil, err
		}
		owner := p.QualifiedType
		if owner == "" {
			owner = repl.Package()
		}
		return func(file *ast.File, info *types.Info, processed visitor.NodeSet) ([]ast.Node, error) {
			return visitor.ForMethodCall(owner, repl.Func()).In(file).WithTypes(info).Excluding(processed).Collect()
		}, nil
	case KindDirective:
		repl, err := replacement.Parse(p.Value)
		if err != nil {
			return nil, err
		}
		return func(file *ast.File, _ *types.Info, processed visitor.NodeSet) ([]ast.Node, error) {
			return visitor.ForDirective(repl.Name).In(file).Excluding(processed).Collect()
		}, nil
	case KindImport:
		return func(file *ast.File, _ *types.Info, processed visitor.NodeSet) ([]ast.Node, error) {
			return visitor.ForImport(p.Value).AndDotImports().In(file).Excluding(processed).Collect()
		}, nil
	}
	return nil, fmt.Errorf("unsupported pattern kind %v", p.Kind)
}

// bind captures the value of the pattern's placeholder from n.
func bind(p Pattern, n ast.Node) (*rewrite.Bindings, error) {
	b := rewrite.NewBindings()
	if p.Kind == KindImport {
		return b, nil
	}
	repl, err := replacement.Parse(p.Value)
	if err != nil || !repl.HasPlaceholders() {
		return b, nil
	}

	var v rewrite.Value
	switch n := n.(type) {
	case *ast.CallExpr:
		switch {
		case repl.IsMultiPlaceholder():
			v = rewrite.Value{Exprs: n.Args, Spread: n.Ellipsis.IsValid()}
		case len(n.Args) == 1:
			v = rewrite.Value{Exprs: n.Args}
		default:
			return b, nil
		}
	case *ast.Comment:
		d, ok := visitor.DirectiveOf(n)
		if !ok || d.Args == "" {
			return b, nil
		}
		v = rewrite.Value{Text: d.Args}
	default:
		return b, nil
	}
	if err := b.Put(repl.BindingKey(), v); err != nil {
		return nil, err
	}
	return b, nil
}

func (r *Rule) String() string {
	var kinds []string
	for _, p := range r.patterns {
		kinds = append(kinds, p.Kind.String())
	}
	return fmt.Sprintf("%s (%s)", r.ID, strings.Join(kinds, ","))
}
