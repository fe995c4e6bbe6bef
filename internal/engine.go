package internal

import (
	"fmt"
	"go/ast"
	"go/importer"
	"go/parser"
	"go/token"
	"go/types"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/gnolang/sweep/internal/nolint"
	tt "github.com/gnolang/sweep/internal/types"
	"github.com/gnolang/sweep/plugin"
	"github.com/gnolang/sweep/rewrite"
	"github.com/gnolang/sweep/visitor"
)

// Engine runs cleanup rules over files.
type Engine struct {
	registry     *plugin.Registry
	ignoredRules map[string]bool
	ignoredPaths []string
	severities   map[string]tt.Severity
	typeCheck    bool
	importer     types.Importer
	logger       *zap.Logger
}

// NewEngine returns an engine over the rules of registry. Rules set to
// SeverityOff in config are ignored.
func NewEngine(registry *plugin.Registry, config map[string]tt.ConfigRule, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Engine{
		registry:     registry,
		ignoredRules: make(map[string]bool),
		severities:   make(map[string]tt.Severity),
		logger:       logger,
	}
	for id, rule := range config {
		if _, ok := registry.Get(id); !ok {
			logger.Warn("unknown rule in configuration", zap.String("rule", id))
			continue
		}
		if rule.Severity == tt.SeverityOff {
			e.IgnoreRule(id)
		}
		e.severities[id] = rule.Severity
	}
	return e
}

func (e *Engine) IgnoreRule(id string) {
	e.ignoredRules[id] = true
}

// IgnorePath skips files whose path contains path.
func (e *Engine) IgnorePath(path string) {
	e.ignoredPaths = append(e.ignoredPaths, filepath.Clean(path))
}

// EnableTypeCheck type-checks each file before matching. Type errors are
// tolerated; whatever information the checker recovers is used.
func (e *Engine) EnableTypeCheck() {
	e.typeCheck = true
}

// Rules returns the rules the engine runs, sorted by id.
func (e *Engine) Rules() []*plugin.Rule {
	var rules []*plugin.Rule
	for _, r := range e.registry.Rules() {
		if !e.ignoredRules[r.ID] {
			rules = append(rules, r)
		}
	}
	return rules
}

func (e *Engine) Severity(id string) tt.Severity {
	if s, ok := e.severities[id]; ok {
		return s
	}
	return tt.SeverityWarning
}

func (e *Engine) isIgnoredPath(filename string) bool {
	clean := filepath.Clean(filename)
	for _, p := range e.ignoredPaths {
		if strings.Contains(clean, p) {
			return true
		}
	}
	return false
}

// found is a match together with the rule that produced it.
type found struct {
	rule  *plugin.Rule
	match plugin.Match
}

// Run reports the findings of every rule in the file.
func (e *Engine) Run(filename string) ([]tt.Finding, error) {
	if e.isIgnoredPath(filename) {
		return nil, nil
	}
	src, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("error reading file: %w", err)
	}
	return e.RunSource(filename, src)
}

// RunSource reports the findings in src, which is named filename.
func (e *Engine) RunSource(filename string, src []byte) ([]tt.Finding, error) {
	fset, file, info, err := e.parse(filename, src)
	if err != nil {
		return nil, err
	}
	return e.RunFile(fset, file, info)
}

// RunFile reports the findings in an already parsed file. info may be nil.
func (e *Engine) RunFile(fset *token.FileSet, file *ast.File, info *types.Info) ([]tt.Finding, error) {
	matches, err := e.find(fset, file, info)
	if err != nil {
		return nil, err
	}
	findings := make([]tt.Finding, 0, len(matches))
	for _, m := range matches {
		findings = append(findings, e.finding(fset, m))
	}
	return findings, nil
}

// Fix rewrites src with every rule that matched and returns the new source
// with the findings that were fixed. src is returned unchanged when nothing
// matched.
func (e *Engine) Fix(filename string, src []byte) ([]byte, []tt.Finding, error) {
	fset, file, info, err := e.parse(filename, src)
	if err != nil {
		return nil, nil, err
	}
	matches, err := e.find(fset, file, info)
	if err != nil {
		return nil, nil, err
	}

	rw := rewrite.New(fset, file)
	var fixed []tt.Finding
	for _, m := range matches {
		if !m.rule.CanRewrite() {
			continue
		}
		// positions are read before the node is swapped out
		f := e.finding(fset, m)
		if err := m.rule.Rewrite(rw, m.match); err != nil {
			return nil, nil, fmt.Errorf("%s: %w", f.Start, err)
		}
		fixed = append(fixed, f)
	}
	if !rw.Changed() {
		return src, fixed, nil
	}
	out, err := rw.Bytes()
	if err != nil {
		return nil, nil, err
	}
	return out, fixed, nil
}

// find runs every rule over file, sharing one processed set so that a node
// is claimed by the first rule matching it.
func (e *Engine) find(fset *token.FileSet, file *ast.File, info *types.Info) ([]found, error) {
	suppressions := nolint.Parse(file, fset)
	processed := visitor.NewNodeSet()

	var all []found
	for _, rule := range e.Rules() {
		matches, err := rule.Find(file, info, processed)
		if err != nil {
			return nil, err
		}
		for _, m := range matches {
			line := fset.Position(m.Node.Pos()).Line
			if suppressions.Suppressed(line, rule.ID) {
				e.logger.Debug("suppressed", zap.String("rule", rule.ID), zap.Int("line", line))
				continue
			}
			all = append(all, found{rule: rule, match: m})
		}
	}
	return all, nil
}

func (e *Engine) finding(fset *token.FileSet, m found) tt.Finding {
	f := tt.Finding{
		Rule:     m.rule.ID,
		Severity: e.Severity(m.rule.ID),
		Message:  m.rule.Description,
		Fixable:  m.rule.CanRewrite(),
		Start:    fset.Position(m.match.Node.Pos()),
		End:      fset.Position(m.match.Node.End()),
	}
	f.Filename = f.Start.Filename
	if f.Message == "" {
		f.Message = m.rule.ID
	}
	if t := m.rule.Template(); t != nil && t.Replace.Name != "" {
		f.Suggestion = t.Replace.String()
	}
	return f
}

func (e *Engine) parse(filename string, src []byte) (*token.FileSet, *ast.File, *types.Info, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, filename, src, parser.ParseComments)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("error parsing file: %w", err)
	}
	if !e.typeCheck {
		return fset, file, nil, nil
	}
	if e.importer == nil {
		e.importer = importer.ForCompiler(fset, "source", nil)
	}
	info := NewInfo()
	conf := types.Config{
		Importer: e.importer,
		Error: func(err error) {
			e.logger.Debug("type error", zap.Error(err))
		},
	}
	_, _ = conf.Check(file.Name.Name, fset, []*ast.File{file}, info)
	return fset, file, info, nil
}

// NewInfo returns a types.Info recording what matching needs.
func NewInfo() *types.Info {
	return &types.Info{
		Types:      make(map[ast.Expr]types.TypeAndValue),
		Defs:       make(map[*ast.Ident]types.Object),
		Uses:       make(map[*ast.Ident]types.Object),
		Selections: make(map[*ast.SelectorExpr]*types.Selection),
	}
}
