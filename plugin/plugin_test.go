package plugin

import (
	"go/ast"
	"go/parser"
	"go/token"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnolang/sweep/rewrite"
	"github.com/gnolang/sweep/visitor"
)

func parse(t *testing.T, src string) (*token.FileSet, *ast.File) {
	t.Helper()
	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, "test.go", src, parser.ParseComments)
	require.NoError(t, err)
	return fset, f
}

// apply runs rule over src and returns the rewritten source.
func apply(t *testing.T, rule *Rule, src string) (string, []Match) {
	t.Helper()
	fset, f := parse(t, src)
	matches, err := rule.Find(f, nil, visitor.NewNodeSet())
	require.NoError(t, err)

	rw := rewrite.New(fset, f)
	for _, m := range matches {
		require.NoError(t, rule.Rewrite(rw, m))
	}
	out, err := rw.Bytes()
	require.NoError(t, err)
	return string(out), matches
}

type noPattern struct {
	Meta `cleanup:"id=no-pattern"`
}

type noRewrite struct {
	Meta `cleanup:"id=no-rewrite;kind=call;pattern=Getenv($name);type=os"`
}

type badKind struct {
	Meta `cleanup:"id=bad-kind;kind=field;pattern=X"`
}

type badTemplate struct {
	Meta `cleanup:"id=bad-template;pattern=os.Getenv($name)" rewrite:"replace=not a valid pattern!"`
}

func TestNewErrors(t *testing.T) {
	_, err := New(noPattern{})
	assert.ErrorIs(t, err, ErrNoPattern)
	assert.Contains(t, err.Error(), "noPattern")

	_, err = New(struct{}{})
	assert.ErrorIs(t, err, ErrNoPattern)

	_, err = New(badKind{})
	assert.ErrorIs(t, err, ErrBadTag)

	_, err = New(badTemplate{})
	assert.Error(t, err)
}

func TestRewriteWithoutTemplate(t *testing.T) {
	rule, err := New(&noRewrite{})
	require.NoError(t, err)
	assert.Equal(t, "no-rewrite", rule.ID)
	assert.Nil(t, rule.Template())

	fset, f := parse(t, `package p

import "os"

var home = os.Getenv("HOME")
`)
	matches, err := rule.Find(f, nil, visitor.NewNodeSet())
	require.NoError(t, err)
	require.Len(t, matches, 1)

	err = rule.Rewrite(rewrite.New(fset, f), matches[0])
	assert.ErrorIs(t, err, ErrNoRewrite)
	assert.Contains(t, err.Error(), "noRewrite")
}

func TestTagParsing(t *testing.T) {
	rule := MustNew(ioutilReadFile{})
	assert.Equal(t, "ioutil-readfile", rule.ID)
	assert.Equal(t, "ioutil.ReadFile is deprecated, use os.ReadFile", rule.Description)
	assert.Equal(t, []Pattern{{Kind: KindCall, Value: "ReadFile($args$)", QualifiedType: "io/ioutil"}}, rule.Patterns())

	tmpl := rule.Template()
	require.NotNil(t, tmpl)
	assert.Equal(t, "os.ReadFile", tmpl.Replace.Name)
	assert.Equal(t, rewrite.Imports{Add: []string{"os"}, Remove: []string{"io/ioutil"}}, tmpl.Imports)
}

func TestIoutilReadFile(t *testing.T) {
	out, matches := apply(t, MustNew(ioutilReadFile{}), `package main

import (
	"fmt"
	"io/ioutil"
)

func main() {
	data, err := ioutil.ReadFile("a.txt")
	fmt.Println(data, err)
}
`)
	require.Len(t, matches, 1)
	assert.Contains(t, out, `os.ReadFile("a.txt")`)
	assert.Contains(t, out, `"os"`)
	assert.NotContains(t, out, "ioutil")
}

func TestFindMarksProcessed(t *testing.T) {
	_, f := parse(t, `package main

import "io/ioutil"

func main() {
	ioutil.ReadFile("a")
	ioutil.ReadFile("b")
}
`)
	rule := MustNew(ioutilReadFile{})
	processed := visitor.NewNodeSet()

	matches, err := rule.Find(f, nil, processed)
	require.NoError(t, err)
	assert.Len(t, matches, 2)
	assert.Equal(t, 2, processed.Len())

	again, err := rule.Find(f, nil, processed)
	require.NoError(t, err)
	assert.Empty(t, again)
}

func TestFindWithoutProcessedSet(t *testing.T) {
	_, f := parse(t, `package main

import "io/ioutil"

func main() {
	ioutil.ReadFile("a")
}
`)
	rule := MustNew(ioutilReadFile{})

	matches, err := rule.Find(f, nil, nil)
	require.NoError(t, err)
	assert.Len(t, matches, 1)

	again, err := rule.Find(f, nil, nil)
	require.NoError(t, err)
	assert.Len(t, again, 1)
}

func TestFindDotImportedCall(t *testing.T) {
	rule, ok := Default().Get("ioutil-readfile")
	require.True(t, ok)

	_, f := parse(t, `package main

import . "io/ioutil"

func main() {
	ReadFile("a")
}
`)
	matches, err := rule.Find(f, nil, nil)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	v, ok := matches[0].Bindings.Get("$args$")
	require.True(t, ok)
	assert.Len(t, v.Exprs, 1)

	_, f = parse(t, `package main

func ReadFile(string) {}

func main() {
	ReadFile("a")
}
`)
	matches, err = rule.Find(f, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestFindBindsArguments(t *testing.T) {
	_, f := parse(t, `package main

import "io/ioutil"

func main() {
	ioutil.WriteFile("a", nil, 0o644)
}
`)
	matches, err := MustNew(ioutilWriteFile{}).Find(f, nil, visitor.NewNodeSet())
	require.NoError(t, err)
	require.Len(t, matches, 1)

	v, ok := matches[0].Bindings.Get("$args$")
	require.True(t, ok)
	assert.Len(t, v.Exprs, 3)
}

func TestDirectiveRule(t *testing.T) {
	out, matches := apply(t, MustNew(nolintDeadcode{}), `package p

//nolint:deadcode kept for plugins
func a() {}

//nolint:deadcode
func b() {}

//nolint:errcheck
func c() {}
`)
	assert.Len(t, matches, 2)
	assert.Contains(t, out, "//nolint:unused kept for plugins\nfunc a")
	assert.Contains(t, out, "//nolint:unused\nfunc b")
	assert.Contains(t, out, "//nolint:errcheck\nfunc c")
}

func TestErrorsNewSprintf(t *testing.T) {
	out, matches := apply(t, MustNew(errorsNewSprintf{}), `package p

import (
	"errors"
	"fmt"
)

var errA = errors.New(fmt.Sprintf("bad %d", 1))

var errB = errors.New("plain")
`)
	require.Len(t, matches, 1)
	assert.Contains(t, out, `fmt.Errorf("bad %d", 1)`)
	assert.Contains(t, out, `errors.New("plain")`)
	assert.Contains(t, out, `"errors"`)
}

func TestErrorsNewSprintfDropsImport(t *testing.T) {
	out, _ := apply(t, MustNew(errorsNewSprintf{}), `package p

import (
	"errors"
	"fmt"
)

var errA = errors.New(fmt.Sprintf("bad %d", 1))
`)
	assert.NotContains(t, out, `"errors"`)
	assert.Contains(t, out, `"fmt"`)
}

type shouldProcessCounter struct {
	Meta  `cleanup:"id=counter;kind=call;pattern=Getenv($name);type=os"`
	calls *int
}

func (s shouldProcessCounter) ShouldProcess(Match) bool {
	*s.calls++
	return false
}

func TestShouldProcessSeesMarkedNodes(t *testing.T) {
	_, f := parse(t, `package p

import "os"

var a, b = os.Getenv("A"), os.Getenv("B")
`)
	calls := 0
	rule := MustNew(shouldProcessCounter{calls: &calls})
	processed := visitor.NewNodeSet()

	matches, err := rule.Find(f, nil, processed)
	require.NoError(t, err)
	assert.Empty(t, matches)
	assert.Equal(t, 2, calls)
	assert.Equal(t, 2, processed.Len(), "vetoed nodes stay processed")
}

func TestImportRule(t *testing.T) {
	type dropIoutil struct {
		Meta `cleanup:"id=drop-ioutil;kind=import;pattern=io/ioutil" rewrite:"remove=io/ioutil"`
	}
	rule := MustNew(dropIoutil{})

	out, matches := apply(t, rule, `package p

import (
	"io/ioutil"
	"os"
)

var _ = os.Args
`)
	assert.Len(t, matches, 1)
	assert.NotContains(t, out, "ioutil")

	out, _ = apply(t, rule, `package p

import "io/ioutil"

var _ = ioutil.Discard
`)
	assert.Contains(t, out, `"io/ioutil"`, "still referenced")
}

func TestRegistry(t *testing.T) {
	r := Default()
	assert.Equal(t, len(builtins)+5, r.Len())

	rule, ok := r.Get("errors-new-sprintf")
	require.True(t, ok)
	assert.Equal(t, "use fmt.Errorf instead of errors.New(fmt.Sprintf(...))", rule.Description)

	ids := make([]string, 0, r.Len())
	for _, rule := range r.Rules() {
		ids = append(ids, rule.ID)
	}
	assert.IsIncreasing(t, ids)

	err := r.RegisterDecls(ioutilReadAll{})
	assert.ErrorIs(t, err, ErrDuplicateRule)
}

func TestParseKind(t *testing.T) {
	for _, k := range []PatternKind{KindCall, KindDirective, KindImport} {
		got, err := ParseKind(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, got)
	}
	_, err := ParseKind("field")
	assert.Error(t, err)
}
