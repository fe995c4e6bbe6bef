package plugin

import (
	"errors"
	"fmt"
	"sort"
)

var ErrDuplicateRule = errors.New("plugin: duplicate rule id")

// Registry holds rules by id.
type Registry struct {
	rules map[string]*Rule
}

func NewRegistry() *Registry {
	return &Registry{rules: make(map[string]*Rule)}
}

// Register adds rules, failing on the first id already present.
func (r *Registry) Register(rules ...*Rule) error {
	for _, rule := range rules {
		if _, ok := r.rules[rule.ID]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateRule, rule.ID)
		}
		r.rules[rule.ID] = rule
	}
	return nil
}

// RegisterDecls builds a rule from each declaration and registers it.
func (r *Registry) RegisterDecls(decls ...any) error {
	for _, d := range decls {
		rule, err := New(d)
		if err != nil {
			return err
		}
		if err := r.Register(rule); err != nil {
			return err
		}
	}
	return nil
}

func (r *Registry) Get(id string) (*Rule, bool) {
	rule, ok := r.rules[id]
	return rule, ok
}

func (r *Registry) Len() int {
	return len(r.rules)
}

// Rules returns the rules sorted by id.
func (r *Registry) Rules() []*Rule {
	rules := make([]*Rule, 0, len(r.rules))
	for _, rule := range r.rules {
		rules = append(rules, rule)
	}
	sort.Slice(rules, func(i, j int) bool { return rules[i].ID < rules[j].ID })
	return rules
}

// Default returns a registry holding the built-in rules.
func Default() *Registry {
	r := NewRegistry()
	if err := r.RegisterDecls(builtins...); err != nil {
		panic(err)
	}
	rules, err := deprecations().Rules()
	if err != nil {
		panic(err)
	}
	if err := r.Register(rules...); err != nil {
		panic(err)
	}
	return r
}
