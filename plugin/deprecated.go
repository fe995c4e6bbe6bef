package plugin

import (
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/gnolang/sweep/replacement"
	"github.com/gnolang/sweep/rewrite"
)

// Deprecations is a table of deprecated functions and methods, turned into
// rules by Rules. An entry with an empty alternative only reports.
type Deprecations struct {
	funcs   map[string]map[string]string
	methods map[string]map[string]map[string]string
}

func NewDeprecations() *Deprecations {
	return &Deprecations{
		funcs:   make(map[string]map[string]string),
		methods: make(map[string]map[string]map[string]string),
	}
}

// Register marks pkgPath.funcName as deprecated. alternative is a
// replacement template such as "os.ReadFile($args$)".
func (d *Deprecations) Register(pkgPath, funcName, alternative string) {
	if _, ok := d.funcs[pkgPath]; !ok {
		d.funcs[pkgPath] = make(map[string]string)
	}
	d.funcs[pkgPath][funcName] = alternative
}

// RegisterMethod marks a method of pkgPath.typeName as deprecated. Method
// rules only match when type information is available, and only report:
// alternative is named in the description.
func (d *Deprecations) RegisterMethod(pkgPath, typeName, methodName, alternative string) {
	if _, ok := d.methods[pkgPath]; !ok {
		d.methods[pkgPath] = make(map[string]map[string]string)
	}
	if _, ok := d.methods[pkgPath][typeName]; !ok {
		d.methods[pkgPath][typeName] = make(map[string]string)
	}
	d.methods[pkgPath][typeName][methodName] = alternative
}

// Rules declares one rule per entry, in a stable order.
func (d *Deprecations) Rules() ([]*Rule, error) {
	var rules []*Rule
	for _, pkgPath := range sortedKeys(d.funcs) {
		for _, fn := range sortedKeys(d.funcs[pkgPath]) {
			r, err := deprecationRule(pkgPath, "", fn, d.funcs[pkgPath][fn])
			if err != nil {
				return nil, err
			}
			rules = append(rules, r)
		}
	}
	for _, pkgPath := range sortedKeys(d.methods) {
		for _, typ := range sortedKeys(d.methods[pkgPath]) {
			for _, method := range sortedKeys(d.methods[pkgPath][typ]) {
				r, err := deprecationRule(pkgPath, typ, method, d.methods[pkgPath][typ][method])
				if err != nil {
					return nil, err
				}
				rules = append(rules, r)
			}
		}
	}
	return rules, nil
}

func deprecationRule(pkgPath, typeName, name, alternative string) (*Rule, error) {
	base := path.Base(pkgPath)
	owner, qualified := base, pkgPath
	if typeName != "" {
		owner = base + "." + typeName
		qualified = pkgPath + "." + typeName
	}
	id := strings.ToLower(strings.ReplaceAll(owner, ".", "-") + "-" + name)
	desc := fmt.Sprintf("%s.%s is deprecated", owner, name)

	pattern := Pattern{Kind: KindCall, Value: name + "($args$)", QualifiedType: qualified}
	if alternative == "" {
		return Declare(id, desc, []Pattern{pattern}, nil)
	}
	if typeName != "" {
		return Declare(id, desc+", use "+alternative, []Pattern{pattern}, nil)
	}

	repl, err := replacement.Parse(alternative)
	if err != nil {
		return nil, fmt.Errorf("deprecation %s: %w", id, err)
	}
	desc += ", use " + repl.Name
	tmpl := &Template{Replace: repl}
	if pkg := repl.Package(); pkg != "" && pkg != base {
		tmpl.Imports = rewrite.Imports{Add: []string{pkg}, Remove: []string{pkgPath}}
	}
	return Declare(id, desc, []Pattern{pattern}, tmpl)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
