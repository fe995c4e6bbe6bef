package plugin

import (
	"go/ast"

	"github.com/gnolang/sweep/replacement"
	"github.com/gnolang/sweep/rewrite"
	"github.com/gnolang/sweep/visitor"
)

var builtins = []any{
	ioutilReadFile{},
	ioutilWriteFile{},
	ioutilReadAll{},
	ioutilNopCloser{},
	ioutilTempDir{},
	ioutilTempFile{},
	nolintDeadcode{},
	errorsNewSprintf{},
}

// deprecations lists the standard library functions whose replacement is
// not a drop-in rewrite, or that only need a rename.
func deprecations() *Deprecations {
	d := NewDeprecations()
	d.Register("reflect", "PtrTo", "reflect.PointerTo($args$)")
	d.Register("io/ioutil", "ReadDir", "")
	d.Register("math/rand", "Seed", "")
	d.Register("strings", "Title", "")
	d.RegisterMethod("net/http", "Transport", "CancelRequest", "Request.WithContext")
	return d
}

// io/ioutil has been deprecated since Go 1.16; each function moved to io or os.

type ioutilReadFile struct {
	Meta `cleanup:"id=ioutil-readfile;kind=call;pattern=ReadFile($args$);type=io/ioutil;desc=ioutil.ReadFile is deprecated, use os.ReadFile" rewrite:"replace=os.ReadFile($args$);add=os;remove=io/ioutil"`
}

type ioutilWriteFile struct {
	Meta `cleanup:"id=ioutil-writefile;kind=call;pattern=WriteFile($args$);type=io/ioutil;desc=ioutil.WriteFile is deprecated, use os.WriteFile" rewrite:"replace=os.WriteFile($args$);add=os;remove=io/ioutil"`
}

type ioutilReadAll struct {
	Meta `cleanup:"id=ioutil-readall;kind=call;pattern=ReadAll($args$);type=io/ioutil;desc=ioutil.ReadAll is deprecated, use io.ReadAll" rewrite:"replace=io.ReadAll($args$);add=io;remove=io/ioutil"`
}

type ioutilNopCloser struct {
	Meta `cleanup:"id=ioutil-nopcloser;kind=call;pattern=NopCloser($args$);type=io/ioutil;desc=ioutil.NopCloser is deprecated, use io.NopCloser" rewrite:"replace=io.NopCloser($args$);add=io;remove=io/ioutil"`
}

type ioutilTempDir struct {
	Meta `cleanup:"id=ioutil-tempdir;kind=call;pattern=TempDir($args$);type=io/ioutil;desc=ioutil.TempDir is deprecated, use os.MkdirTemp" rewrite:"replace=os.MkdirTemp($args$);add=os;remove=io/ioutil"`
}

type ioutilTempFile struct {
	Meta `cleanup:"id=ioutil-tempfile;kind=call;pattern=TempFile($args$);type=io/ioutil;desc=ioutil.TempFile is deprecated, use os.CreateTemp" rewrite:"replace=os.CreateTemp($args$);add=os;remove=io/ioutil"`
}

// deadcode was removed from golangci-lint in favour of unused.
type nolintDeadcode struct {
	Meta `cleanup:"id=nolint-deadcode;kind=directive;pattern=@nolint:deadcode($reason);desc=the deadcode linter was replaced by unused" rewrite:"replace=@nolint:unused($reason)"`
}

// errorsNewSprintf rewrites errors.New(fmt.Sprintf(...)) to fmt.Errorf(...).
// Only calls whose single argument is a fmt.Sprintf call qualify, which a
// tag cannot express.
type errorsNewSprintf struct {
	Meta `cleanup:"id=errors-new-sprintf;desc=use fmt.Errorf instead of errors.New(fmt.Sprintf(...))"`
}

var errorfTemplate = replacement.MustParse("fmt.Errorf($args$)")

func (errorsNewSprintf) Patterns() []Pattern {
	return []Pattern{{Kind: KindCall, Value: "New($msg)", QualifiedType: "errors"}}
}

func (errorsNewSprintf) ShouldProcess(m Match) bool {
	_, ok := sprintfArg(m)
	return ok
}

func (errorsNewSprintf) Rewrite(rw *rewrite.Rewriter, m Match) error {
	inner, ok := sprintfArg(m)
	if !ok {
		return nil
	}
	b := rewrite.NewBindings()
	if err := b.Put(errorfTemplate.BindingKey(), rewrite.Value{Exprs: inner.Args, Spread: inner.Ellipsis.IsValid()}); err != nil {
		return err
	}
	if err := rewrite.ApplyCall(rw, m.Node.(*ast.CallExpr), errorfTemplate, b); err != nil {
		return err
	}
	rewrite.Imports{Remove: []string{"errors"}}.Apply(rw)
	return nil
}

func sprintfArg(m Match) (*ast.CallExpr, bool) {
	if m.Bindings == nil {
		return nil, false
	}
	v, ok := m.Bindings.Get("$msg")
	if !ok || len(v.Exprs) != 1 {
		return nil, false
	}
	inner, ok := v.Exprs[0].(*ast.CallExpr)
	if !ok {
		return nil, false
	}
	callee, ok := visitor.ResolveCallee(inner, m.Info, visitor.ImportsOf(m.File))
	return inner, ok && callee.Owner() == "fmt" && callee.Name == "Sprintf"
}
