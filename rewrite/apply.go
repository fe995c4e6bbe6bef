package rewrite

import (
	"errors"
	"fmt"
	"go/ast"
	"go/token"

	"github.com/gnolang/sweep/replacement"
	"github.com/gnolang/sweep/visitor"
)

// ErrTemplateKind is returned when a template is applied to the wrong kind
// of node, such as a call template to a directive.
var ErrTemplateKind = errors.New("rewrite: template does not fit node")

// Value is what a placeholder captured: the arguments of a directive, or
// the expressions of a call.
type Value struct {
	Text  string
	Exprs []ast.Expr
	// Spread marks Exprs whose last element was passed with "...".
	Spread bool
}

// Bindings maps placeholder keys ("$value", "$args$") to captured values.
type Bindings = visitor.Holder[string, Value]

func NewBindings() *Bindings {
	return visitor.NewHolder[string, Value]()
}

// ApplyDirective replaces the directive c with one built from repl.
//
// A placeholder takes its bound value. When nothing is bound the existing
// arguments of c are reused; when c has none the directive is written
// without arguments.
func ApplyDirective(rw *Rewriter, c *ast.Comment, repl replacement.Replacement, b *Bindings) error {
	old, ok := visitor.DirectiveOf(c)
	if !ok {
		return fmt.Errorf("%w: %q", ErrNotDirective, c.Text)
	}
	d := visitor.Directive{Name: repl.Name}
	if repl.HasPlaceholders() {
		if v, ok := lookup(b, repl.BindingKey()); ok {
			d.Args = v.Text
		} else {
			d.Args = old.Args
		}
	}
	return rw.ReplaceDirective(c, d)
}

// ApplyCall replaces call with a call of the function repl names.
//
// A bound placeholder supplies the arguments. Unbound, a multi placeholder
// keeps all of the original arguments and a single one keeps the original
// argument only if there was exactly one. A template without placeholder
// produces a call without arguments.
func ApplyCall(rw *Rewriter, call *ast.CallExpr, repl replacement.Replacement, b *Bindings) error {
	if repl.Directive {
		return fmt.Errorf("%w: directive template %s for call", ErrTemplateKind, repl)
	}

	var args []ast.Expr
	ellipsis := token.NoPos
	if repl.HasPlaceholders() {
		if v, ok := lookup(b, repl.BindingKey()); ok {
			args = v.Exprs
			if v.Spread && len(args) > 0 {
				ellipsis = call.Ellipsis
				if !ellipsis.IsValid() {
					ellipsis = call.Rparen
				}
			}
		} else if repl.IsMultiPlaceholder() {
			args = call.Args
			ellipsis = call.Ellipsis
		} else if len(call.Args) == 1 {
			args = call.Args
		}
	}

	return rw.Replace(call, &ast.CallExpr{
		Fun:      funcExpr(repl, call.Fun.Pos()),
		Lparen:   call.Lparen,
		Args:     args,
		Ellipsis: ellipsis,
		Rparen:   call.Rparen,
	})
}

func funcExpr(repl replacement.Replacement, pos token.Pos) ast.Expr {
	pkg := repl.Package()
	if pkg == "" {
		return &ast.Ident{NamePos: pos, Name: repl.Func()}
	}
	return &ast.SelectorExpr{
		X:   &ast.Ident{NamePos: pos, Name: pkg},
		Sel: ast.NewIdent(repl.Func()),
	}
}

func lookup(b *Bindings, key string) (Value, bool) {
	if b == nil || key == "" {
		return Value{}, false
	}
	return b.Get(key)
}

// Imports lists the import edits that follow a replacement.
type Imports struct {
	Add       []string
	Remove    []string
	AddDot    []string
	RemoveDot []string
}

func (im Imports) IsZero() bool {
	return len(im.Add) == 0 && len(im.Remove) == 0 && len(im.AddDot) == 0 && len(im.RemoveDot) == 0
}

// Apply performs removals before additions. Removals of regular imports
// that are still referenced are skipped.
func (im Imports) Apply(rw *Rewriter) {
	for _, path := range im.Remove {
		rw.RemoveImport(path)
	}
	for _, path := range im.Add {
		rw.AddImport(path)
	}
	for _, path := range im.RemoveDot {
		rw.RemoveDotImport(path)
	}
	for _, path := range im.AddDot {
		rw.AddDotImport(path)
	}
}
