package visitor

import (
	"go/ast"
	"go/parser"
	"go/token"
	"go/types"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/tools/go/ast/inspector"

	"github.com/gnolang/sweep/kind"
)

func parse(t *testing.T, src string) (*token.FileSet, *ast.File) {
	t.Helper()
	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, "test.go", src, parser.ParseComments)
	require.NoError(t, err)
	return fset, f
}

func check(t *testing.T, fset *token.FileSet, f *ast.File) *types.Info {
	t.Helper()
	info := &types.Info{
		Types:      make(map[ast.Expr]types.TypeAndValue),
		Defs:       make(map[*ast.Ident]types.Object),
		Uses:       make(map[*ast.Ident]types.Object),
		Selections: make(map[*ast.SelectorExpr]*types.Selection),
	}
	_, err := (&types.Config{}).Check("example.com/p", fset, []*ast.File{f}, info)
	require.NoError(t, err)
	return info
}

const twoFuncs = `package p

func a() {
	println("a")
	println("a2")
}

func b() {
	println("b")
}
`

func TestLastRegistrationWins(t *testing.T) {
	_, f := parse(t, twoFuncs)

	first, second := 0, 0
	v := New(struct{}{})
	v.On(kind.CallExpr, func(ast.Node, struct{}) bool { first++; return true })
	v.On(kind.CallExpr, func(ast.Node, struct{}) bool { second++; return true })
	require.NoError(t, v.Run(f))

	assert.Equal(t, 0, first)
	assert.Equal(t, 3, second)
}

func TestRegisterDropsPreviousFilter(t *testing.T) {
	_, f := parse(t, twoFuncs)

	count := 0
	v := New(struct{}{})
	v.OnFiltered(kind.FuncDecl, Filter{MethodNames: []string{"a"}}, func(ast.Node, struct{}) bool { return true })
	v.On(kind.FuncDecl, func(ast.Node, struct{}) bool { count++; return true })
	require.NoError(t, v.Run(f))

	assert.Equal(t, 2, count)
}

func TestEndConsumerRunsAfterSubtree(t *testing.T) {
	_, f := parse(t, twoFuncs)

	var events []string
	v := New(&events)
	Register(v, func(fn *ast.FuncDecl, ev *[]string) bool {
		*ev = append(*ev, "enter "+fn.Name.Name)
		return true
	})
	RegisterEnd(v, func(fn *ast.FuncDecl, ev *[]string) {
		*ev = append(*ev, "leave "+fn.Name.Name)
	})
	Register(v, func(*ast.CallExpr, *[]string) bool {
		events = append(events, "call")
		return true
	})
	require.NoError(t, v.Run(f))

	assert.Equal(t, []string{
		"enter a", "call", "call", "leave a",
		"enter b", "call", "leave b",
	}, events)
}

func TestFalsePrunesSubtree(t *testing.T) {
	_, f := parse(t, twoFuncs)

	calls, ends := 0, 0
	v := New(struct{}{})
	Register(v, func(fn *ast.FuncDecl, _ struct{}) bool {
		return fn.Name.Name != "a"
	})
	RegisterEnd(v, func(*ast.FuncDecl, struct{}) { ends++ })
	Register(v, func(*ast.CallExpr, struct{}) bool { calls++; return true })
	require.NoError(t, v.Run(f))

	assert.Equal(t, 1, calls, "calls inside a must be skipped")
	assert.Equal(t, 2, ends, "end consumer runs for pruned nodes too")
}

func TestExcludedNodesAreSkipped(t *testing.T) {
	_, f := parse(t, twoFuncs)

	seen := NewNodeSet()
	fnA := f.Decls[0].(*ast.FuncDecl)
	seen.Add(fnA)

	var funcs []string
	calls := 0
	v := New(struct{}{}, WithExcluded(seen))
	Register(v, func(fn *ast.FuncDecl, _ struct{}) bool {
		funcs = append(funcs, fn.Name.Name)
		return true
	})
	Register(v, func(*ast.CallExpr, struct{}) bool { calls++; return true })
	require.NoError(t, v.Run(f))

	assert.Equal(t, []string{"b"}, funcs)
	assert.Equal(t, 3, calls, "children of excluded nodes are still visited")
	assert.Equal(t, 1, seen.Len())
}

func TestVisitorIsSingleUse(t *testing.T) {
	_, f := parse(t, twoFuncs)

	v := New(struct{}{})
	v.On(kind.CallExpr, func(ast.Node, struct{}) bool { return true })
	require.NoError(t, v.Run(f))
	assert.ErrorIs(t, v.Run(f), ErrConsumed)

	v = New(struct{}{})
	require.NoError(t, v.Run(f))
	v.On(kind.CallExpr, func(ast.Node, struct{}) bool { return true })
	assert.ErrorIs(t, v.Run(f), ErrConsumed)
}

func TestUnknownKind(t *testing.T) {
	_, f := parse(t, twoFuncs)

	called := false
	v := New(struct{}{})
	v.On(kind.Invalid, func(ast.Node, struct{}) bool { called = true; return true })
	assert.ErrorIs(t, v.Run(f), ErrUnknownKind)
	assert.False(t, called)

	v = New(struct{}{})
	Register(v, func(ast.Expr, struct{}) bool { return true })
	assert.ErrorIs(t, v.Run(f), ErrUnknownKind)
}

func TestCallbackPanicPropagates(t *testing.T) {
	_, f := parse(t, twoFuncs)

	v := New(struct{}{})
	v.On(kind.CallExpr, func(ast.Node, struct{}) bool { panic("boom") })
	assert.PanicsWithValue(t, "boom", func() { _ = v.Run(f) })
}

func TestScopeFollowsSubtrees(t *testing.T) {
	_, f := parse(t, twoFuncs)

	type funcKey struct{}
	scope := NewScope()
	owners := make(map[string]int)

	v := New(scope, WithScope(scope))
	Register(v, func(fn *ast.FuncDecl, s *Scope) bool {
		s.Set(funcKey{}, fn.Name.Name)
		return true
	})
	Register(v, func(call *ast.CallExpr, s *Scope) bool {
		name, ok := ScopeValue[string](s, funcKey{})
		require.True(t, ok)
		owners[name]++
		assert.Equal(t, 2, s.Depth())
		return true
	})
	require.NoError(t, v.Run(f))

	assert.Equal(t, map[string]int{"a": 2, "b": 1}, owners)
	assert.Equal(t, 0, scope.Depth())
	_, ok := scope.Lookup(funcKey{})
	assert.False(t, ok)
}

func TestFilterOperator(t *testing.T) {
	_, f := parse(t, `package p

func f() {
	x := 1
	x += 2
	x = 3
	x += 4
}
`)
	count := 0
	v := New(struct{}{})
	v.OnFiltered(kind.AssignStmt, Filter{Operator: token.ADD_ASSIGN}, func(ast.Node, struct{}) bool {
		count++
		return true
	})
	require.NoError(t, v.Run(f))
	assert.Equal(t, 2, count)
}

func TestFilterSuperType(t *testing.T) {
	_, f := parse(t, `package p

import "sync"

type guarded struct {
	sync.Mutex
	n int
}

type plain struct {
	mu sync.Mutex
}
`)
	var names []string
	v := New(struct{}{})
	RegisterFiltered(v, Filter{SuperType: "sync.Mutex"}, func(ts *ast.TypeSpec, _ struct{}) bool {
		names = append(names, ts.Name.Name)
		return true
	})
	require.NoError(t, v.Run(f))
	assert.Equal(t, []string{"guarded"}, names)
}

func TestFreeFloatingComments(t *testing.T) {
	_, f := parse(t, `package p

//go:noinline
func f() {
	//lint:ignore SA1000 inside a body
	println()
}
`)
	var directives []string
	v := New(struct{}{})
	Register(v, func(c *ast.Comment, _ struct{}) bool {
		if d, ok := DirectiveOf(c); ok {
			directives = append(directives, d.Name)
		}
		return true
	})
	require.NoError(t, v.Run(f))
	assert.Equal(t, []string{"go:noinline", "lint:ignore"}, directives)
}

func TestRunInspectorMatchesRun(t *testing.T) {
	_, f := parse(t, twoFuncs)

	count := func(run func(v *Visitor[*int]) error) (int, int) {
		calls, ends := 0, 0
		v := New(&calls)
		v.On(kind.CallExpr, func(_ ast.Node, c *int) bool { *c++; return true })
		v.OnEnd(kind.FuncDecl, func(ast.Node, *int) { ends++ })
		require.NoError(t, run(v))
		return calls, ends
	}

	c1, e1 := count(func(v *Visitor[*int]) error { return v.Run(f) })
	c2, e2 := count(func(v *Visitor[*int]) error { return v.RunInspector(inspector.New([]*ast.File{f})) })
	assert.Equal(t, 3, c1)
	assert.Equal(t, c1, c2)
	assert.Equal(t, 2, e1)
	assert.Equal(t, e1, e2)
}

func TestRunInspectorPrunes(t *testing.T) {
	_, f := parse(t, twoFuncs)

	calls := 0
	v := New(struct{}{})
	Register(v, func(fn *ast.FuncDecl, _ struct{}) bool { return fn.Name.Name == "a" })
	Register(v, func(*ast.CallExpr, struct{}) bool { calls++; return true })
	require.NoError(t, v.RunInspector(inspector.New([]*ast.File{f})))
	assert.Equal(t, 2, calls)
}

func TestKinds(t *testing.T) {
	v := New(struct{}{})
	v.On(kind.IfStmt, nil)
	v.OnEnd(kind.CallExpr, func(ast.Node, struct{}) {})
	assert.Equal(t, []kind.Kind{kind.CallExpr, kind.IfStmt}, v.Kinds())
}

func TestRunWithoutRoot(t *testing.T) {
	v := New(struct{}{})
	v.On(kind.CallExpr, func(ast.Node, struct{}) bool { return true })
	assert.ErrorIs(t, v.Run(nil), ErrNoTarget)
	assert.ErrorIs(t, v.RunInspector(nil), ErrNoTarget)

	_, f := parse(t, twoFuncs)
	require.NoError(t, v.Run(f), "a failed start leaves the visitor usable")
}

func TestFilterSuperTypeLocalName(t *testing.T) {
	_, f := parse(t, `package p

type Mutex struct{}

type guarded struct {
	Mutex
}
`)
	var names []string
	v := New(struct{}{})
	RegisterFiltered(v, Filter{SuperType: "sync.Mutex"}, func(ts *ast.TypeSpec, _ struct{}) bool {
		names = append(names, ts.Name.Name)
		return true
	})
	require.NoError(t, v.Run(f))
	assert.Empty(t, names)
}
