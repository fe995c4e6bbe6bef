// Package nolint finds //nolint directives and the source ranges they cover.
//
//	//nolint                       every rule
//	//nolint:rule-a,rule-b         the listed rules
//	//nolint:rule-a // reason      trailing explanation is ignored
//
// A directive above the package clause covers the file. An inline directive
// covers the statement on its line. A directive on its own line covers the
// statement or declaration that starts on the next line, and otherwise only
// its own line.
package nolint

import (
	"errors"
	"go/ast"
	"go/token"
	"strings"

	"github.com/gnolang/sweep/kind"
	"github.com/gnolang/sweep/visitor"
)

const prefix = "//nolint"

var errNotNolint = errors.New("not a nolint directive")

// Suppressions holds the nolint ranges of one file.
type Suppressions struct {
	scopes []scope
}

type scope struct {
	// rules is empty when every rule is suppressed.
	rules      map[string]struct{}
	start, end int
}

// index maps lines to the outermost statement and declaration starting on them.
type index struct {
	fset     *token.FileSet
	stmts    map[int]ast.Stmt
	decls    map[int]ast.Decl
	comments []*ast.Comment
}

// Parse collects the nolint directives of f.
func Parse(f *ast.File, fset *token.FileSet) *Suppressions {
	idx := &index{
		fset:  fset,
		stmts: make(map[int]ast.Stmt),
		decls: make(map[int]ast.Decl),
	}
	v := visitor.New(idx)
	for _, k := range kind.All() {
		if _, ok := k.Prototype().(ast.Stmt); ok {
			v.On(k, recordStmt)
		}
	}
	visitor.Register(v, func(c *ast.Comment, idx *index) bool {
		if strings.HasPrefix(c.Text, prefix) {
			idx.comments = append(idx.comments, c)
		}
		return true
	})
	// Run only fails on misuse of the visitor.
	_ = v.Run(f)

	for _, d := range f.Decls {
		line := fset.Position(d.Pos()).Line
		if _, ok := idx.decls[line]; !ok {
			idx.decls[line] = d
		}
	}

	s := &Suppressions{}
	packageLine := fset.Position(f.Package).Line
	for _, c := range idx.comments {
		sc, err := idx.scopeOf(c, f, packageLine)
		if err != nil {
			continue
		}
		s.scopes = append(s.scopes, sc)
	}
	return s
}

func recordStmt(n ast.Node, idx *index) bool {
	line := idx.fset.Position(n.Pos()).Line
	if _, ok := idx.stmts[line]; !ok {
		idx.stmts[line] = n.(ast.Stmt)
	}
	return true
}

func (idx *index) scopeOf(c *ast.Comment, f *ast.File, packageLine int) (scope, error) {
	rules, err := parseRules(c.Text)
	if err != nil {
		return scope{}, err
	}
	sc := scope{rules: rules}
	pos := idx.fset.Position(c.Slash)
	line := func(p token.Pos) int { return idx.fset.Position(p).Line }

	if pos.Line < packageLine {
		sc.start, sc.end = line(f.Pos()), line(f.End())
		return sc, nil
	}
	if stmt, ok := idx.stmts[pos.Line]; ok && pos.Offset > idx.fset.Position(stmt.Pos()).Offset {
		sc.start, sc.end = line(stmt.Pos()), line(stmt.End())
		return sc, nil
	}
	sc.start, sc.end = pos.Line, pos.Line
	if stmt, ok := idx.stmts[pos.Line+1]; ok {
		sc.end = line(stmt.End())
	} else if decl, ok := idx.decls[pos.Line+1]; ok {
		sc.end = line(decl.End())
	}
	return sc, nil
}

func parseRules(text string) (map[string]struct{}, error) {
	rest, ok := strings.CutPrefix(text, prefix)
	if !ok {
		return nil, errNotNolint
	}
	rules := make(map[string]struct{})
	switch {
	case rest == "" || rest[0] == ' ' || rest[0] == '\t':
		return rules, nil
	case rest[0] != ':':
		// //nolintfoo
		return nil, errNotNolint
	}
	list, _, _ := strings.Cut(rest[1:], " ")
	for _, r := range strings.Split(list, ",") {
		if r = strings.TrimSpace(r); r != "" {
			rules[r] = struct{}{}
		}
	}
	if len(rules) == 0 {
		return nil, errors.New("nolint: no rules after colon")
	}
	return rules, nil
}

// Suppressed reports whether rule is suppressed on line.
func (s *Suppressions) Suppressed(line int, rule string) bool {
	if s == nil {
		return false
	}
	for _, sc := range s.scopes {
		if line < sc.start || line > sc.end {
			continue
		}
		if len(sc.rules) == 0 {
			return true
		}
		if _, ok := sc.rules[rule]; ok {
			return true
		}
	}
	return false
}

// Len returns the number of directives found.
func (s *Suppressions) Len() int {
	return len(s.scopes)
}
