// Package rewrite swaps matched nodes for newly built ones and keeps the
// import list of the file in step.
package rewrite

import (
	"bytes"
	"errors"
	"fmt"
	"go/ast"
	"go/format"
	"go/token"

	"golang.org/x/tools/go/ast/astutil"

	"github.com/gnolang/sweep/visitor"
)

var (
	ErrNodeNotFound = errors.New("rewrite: node not found in file")
	ErrNotDirective = errors.New("rewrite: comment is not a directive")
)

// Rewriter edits a single parsed file in place.
type Rewriter struct {
	fset    *token.FileSet
	file    *ast.File
	changed bool
}

func New(fset *token.FileSet, file *ast.File) *Rewriter {
	return &Rewriter{fset: fset, file: file}
}

func (r *Rewriter) File() *ast.File {
	return r.file
}

func (r *Rewriter) FileSet() *token.FileSet {
	return r.fset
}

// Changed reports whether any edit has been made.
func (r *Rewriter) Changed() bool {
	return r.changed
}

// Replace swaps old for repl wherever old is a child of another node.
func (r *Rewriter) Replace(old, repl ast.Node) error {
	found := false
	astutil.Apply(r.file, func(c *astutil.Cursor) bool {
		if found {
			return false
		}
		if c.Node() == old {
			c.Replace(repl)
			found = true
			return false
		}
		return true
	}, nil)
	if !found {
		return fmt.Errorf("%w: %T at %v", ErrNodeNotFound, old, r.fset.Position(old.Pos()))
	}
	r.changed = true
	return nil
}

// ReplaceDirective rewrites the directive comment c to name and args.
// Comments are shared between the file's comment list and doc groups, so
// the edit is made on c itself.
func (r *Rewriter) ReplaceDirective(c *ast.Comment, d visitor.Directive) error {
	if _, ok := visitor.DirectiveOf(c); !ok {
		return fmt.Errorf("%w: %q", ErrNotDirective, c.Text)
	}
	text := d.String()
	if c.Text != text {
		c.Text = text
		r.changed = true
	}
	return nil
}

// AddImport adds path unless the file already imports it.
func (r *Rewriter) AddImport(path string) bool {
	return r.track(astutil.AddImport(r.fset, r.file, path))
}

func (r *Rewriter) AddNamedImport(name, path string) bool {
	return r.track(astutil.AddNamedImport(r.fset, r.file, name, path))
}

// AddDotImport adds `import . "path"`.
func (r *Rewriter) AddDotImport(path string) bool {
	return r.AddNamedImport(".", path)
}

// RemoveImport deletes the import of path when no selector in the file
// refers to it any more.
func (r *Rewriter) RemoveImport(path string) bool {
	if astutil.UsesImport(r.file, path) {
		return false
	}
	return r.track(astutil.DeleteImport(r.fset, r.file, path))
}

// RemoveDotImport deletes `import . "path"`. Identifiers brought in by a dot
// import cannot be told apart without type information, so the caller
// decides whether it is still needed.
func (r *Rewriter) RemoveDotImport(path string) bool {
	return r.track(astutil.DeleteNamedImport(r.fset, r.file, ".", path))
}

func (r *Rewriter) track(changed bool) bool {
	if changed {
		r.changed = true
	}
	return changed
}

// Bytes formats the file.
func (r *Rewriter) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := format.Node(&buf, r.fset, r.file); err != nil {
		return nil, fmt.Errorf("format %s: %w", r.fset.Position(r.file.Pos()).Filename, err)
	}
	return buf.Bytes(), nil
}
