package visitor

import (
	"go/ast"
	"go/types"
	"sort"

	"go.uber.org/zap"

	"github.com/gnolang/sweep/kind"
)

// Matcher is implemented by every builder returned from the For* functions.
type Matcher interface {
	// ProcessEach calls fn for every match in walk order until fn returns false.
	ProcessEach(fn func(n ast.Node) bool) error
	// Collect returns all matches in source order.
	Collect() ([]ast.Node, error)
}

// Each is ProcessEach with a caller-supplied holder handed to every call.
func Each[H any](m Matcher, holder H, fn func(n ast.Node, h H) bool) error {
	return m.ProcessEach(func(n ast.Node) bool {
		return fn(n, holder)
	})
}

// registration is one dispatch-table entry a builder contributes.
type registration struct {
	kind   kind.Kind
	filter Filter
	// accept narrows further using state computed from the whole root.
	accept func(ast.Node) bool
}

// chain carries the target and options shared by all builders. B is the
// concrete builder type so the fluent methods return it.
type chain[B any] struct {
	self     B
	root     ast.Node
	info     *types.Info
	excluded NodeSet
	logger   *zap.Logger
	regs     func(root ast.Node) []registration
}

// In sets the tree to search.
func (c *chain[B]) In(root ast.Node) B {
	c.root = root
	return c.self
}

// WithTypes supplies type information for type-qualified matching.
func (c *chain[B]) WithTypes(info *types.Info) B {
	c.info = info
	return c.self
}

// Excluding skips the nodes in set. The set is never modified by the builder.
func (c *chain[B]) Excluding(set NodeSet) B {
	c.excluded = set
	return c.self
}

func (c *chain[B]) WithLogger(logger *zap.Logger) B {
	c.logger = logger
	return c.self
}

func (c *chain[B]) ProcessEach(fn func(n ast.Node) bool) error {
	if c.root == nil {
		return ErrNoTarget
	}
	opts := []Option{WithExcluded(c.excluded), WithTypes(c.info)}
	if c.logger != nil {
		opts = append(opts, WithLogger(c.logger))
	}
	v := New(struct{}{}, opts...)

	stopped := false
	for _, r := range c.regs(c.root) {
		accept := r.accept
		v.OnFiltered(r.kind, r.filter, func(n ast.Node, _ struct{}) bool {
			if stopped || (accept != nil && !accept(n)) {
				return true
			}
			if !fn(n) {
				stopped = true
			}
			return true
		})
	}
	return v.Run(c.root)
}

func (c *chain[B]) Collect() ([]ast.Node, error) {
	var nodes []ast.Node
	err := c.ProcessEach(func(n ast.Node) bool {
		nodes = append(nodes, n)
		return true
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(nodes, func(i, j int) bool {
		return nodes[i].Pos() < nodes[j].Pos()
	})
	return nodes, nil
}

// MethodCallBuilder matches calls of named functions or methods.
type MethodCallBuilder struct {
	chain[*MethodCallBuilder]
	typeName   string
	methods    []string
	params     []string
	andImports bool
}

// ForMethodCall matches calls of method on typeName. typeName is a package
// path for package-level functions ("os") or a qualified type for methods
// ("strings.Builder").
func ForMethodCall(typeName, method string) *MethodCallBuilder {
	return ForMethodCalls(typeName, method)
}

// ForMethodCalls matches calls of any of methods on typeName.
func ForMethodCalls(typeName string, methods ...string) *MethodCallBuilder {
	b := &MethodCallBuilder{typeName: typeName, methods: methods}
	b.self = b
	b.regs = b.registrations
	return b
}

// AndImports also matches the import of the package owning the methods.
func (b *MethodCallBuilder) AndImports() *MethodCallBuilder {
	b.andImports = true
	return b
}

// WithParams restricts matches to callees with these parameter types.
// It only matches when type information is supplied.
func (b *MethodCallBuilder) WithParams(params ...string) *MethodCallBuilder {
	b.params = params
	return b
}

func (b *MethodCallBuilder) registrations(ast.Node) []registration {
	regs := []registration{{
		kind: kind.CallExpr,
		filter: Filter{
			TypeName:    b.typeName,
			MethodNames: b.methods,
			ParamTypes:  b.params,
		},
	}}
	if b.andImports {
		regs = append(regs, registration{
			kind: kind.ImportSpec,
			accept: func(n ast.Node) bool {
				path := ImportPath(n.(*ast.ImportSpec))
				return path == b.typeName || path == PackageOf(b.typeName)
			},
		})
	}
	return regs
}

// DirectiveBuilder matches directive comments by name.
type DirectiveBuilder struct {
	chain[*DirectiveBuilder]
	name      string
	declsOnly bool
}

// ForDirective matches directives such as "//go:noinline" given the name
// "go:noinline". A leading "//" or "@" on name is ignored.
func ForDirective(name string) *DirectiveBuilder {
	for _, prefix := range []string{"//", "@"} {
		if len(name) > len(prefix) && name[:len(prefix)] == prefix {
			name = name[len(prefix):]
		}
	}
	b := &DirectiveBuilder{name: name}
	b.self = b
	b.regs = b.registrations
	return b
}

// OnDecls restricts matches to directives in the doc comment of a declaration.
func (b *DirectiveBuilder) OnDecls() *DirectiveBuilder {
	b.declsOnly = true
	return b
}

func (b *DirectiveBuilder) registrations(root ast.Node) []registration {
	reg := registration{
		kind:   kind.Comment,
		filter: Filter{DirectiveName: b.name},
	}
	if b.declsOnly {
		docs := declDocs(root)
		reg.accept = func(n ast.Node) bool { return docs[n.(*ast.Comment)] }
	}
	return []registration{reg}
}

func declDocs(root ast.Node) map[*ast.Comment]bool {
	docs := make(map[*ast.Comment]bool)
	add := func(cg *ast.CommentGroup) {
		if cg == nil {
			return
		}
		for _, c := range cg.List {
			docs[c] = true
		}
	}
	ast.Inspect(root, func(n ast.Node) bool {
		switch n := n.(type) {
		case *ast.FuncDecl:
			add(n.Doc)
		case *ast.GenDecl:
			add(n.Doc)
		case *ast.TypeSpec:
			add(n.Doc)
		case *ast.ValueSpec:
			add(n.Doc)
		case *ast.Field:
			add(n.Doc)
		}
		return true
	})
	return docs
}

// ImportBuilder matches import specs by path.
type ImportBuilder struct {
	chain[*ImportBuilder]
	path string
	dot  bool
}

// ForImport matches the imports of path, leaving dot imports out.
func ForImport(path string) *ImportBuilder {
	b := &ImportBuilder{path: path}
	b.self = b
	b.regs = b.registrations
	return b
}

// AndDotImports also matches `import . "path"`.
func (b *ImportBuilder) AndDotImports() *ImportBuilder {
	b.dot = true
	return b
}

func (b *ImportBuilder) registrations(ast.Node) []registration {
	return []registration{{
		kind:   kind.ImportSpec,
		filter: Filter{ImportPath: b.path},
		accept: func(n ast.Node) bool {
			imp := n.(*ast.ImportSpec)
			return b.dot || imp.Name == nil || imp.Name.Name != "."
		},
	}}
}

// CompositeLitBuilder matches composite literals of a named type.
type CompositeLitBuilder struct {
	chain[*CompositeLitBuilder]
	typeName string
}

// ForCompositeLit matches literals such as bytes.Buffer{} given "bytes.Buffer".
func ForCompositeLit(typeName string) *CompositeLitBuilder {
	b := &CompositeLitBuilder{typeName: typeName}
	b.self = b
	b.regs = b.registrations
	return b
}

func (b *CompositeLitBuilder) registrations(ast.Node) []registration {
	return []registration{{
		kind:   kind.CompositeLit,
		filter: Filter{TypeName: b.typeName},
	}}
}

// FieldBuilder matches struct fields.
type FieldBuilder struct {
	chain[*FieldBuilder]
	typeName string
	tag      string
}

// ForField matches every struct field until narrowed with OfType or WithTag.
func ForField() *FieldBuilder {
	b := &FieldBuilder{}
	b.self = b
	b.regs = b.registrations
	return b
}

func (b *FieldBuilder) OfType(typeName string) *FieldBuilder {
	b.typeName = typeName
	return b
}

// WithTag restricts matches to fields whose tag has key.
func (b *FieldBuilder) WithTag(key string) *FieldBuilder {
	b.tag = key
	return b
}

func (b *FieldBuilder) registrations(root ast.Node) []registration {
	fields := make(map[*ast.Field]bool)
	ast.Inspect(root, func(n ast.Node) bool {
		if st, ok := n.(*ast.StructType); ok && st.Fields != nil {
			for _, f := range st.Fields.List {
				fields[f] = true
			}
		}
		return true
	})
	return []registration{{
		kind:   kind.Field,
		filter: Filter{TypeName: b.typeName, FieldTag: b.tag},
		accept: func(n ast.Node) bool { return fields[n.(*ast.Field)] },
	}}
}

// KindBuilder matches every node of one kind that passes a Filter.
type KindBuilder struct {
	chain[*KindBuilder]
	kind   kind.Kind
	filter Filter
}

func ForKind(k kind.Kind) *KindBuilder {
	b := &KindBuilder{kind: k}
	b.self = b
	b.regs = b.registrations
	return b
}

func (b *KindBuilder) Where(f Filter) *KindBuilder {
	b.filter = f
	return b
}

func (b *KindBuilder) registrations(ast.Node) []registration {
	return []registration{{kind: b.kind, filter: b.filter}}
}
