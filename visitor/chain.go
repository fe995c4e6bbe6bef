package visitor

import (
	"go/ast"

	"github.com/gnolang/sweep/kind"
)

// Navigate picks the subtree the next step of a Chain searches, given a
// match of the current step. Returning nil ends that branch.
type Navigate func(n ast.Node) ast.Node

type step[H any] struct {
	kind     kind.Kind
	filter   Filter
	pred     Predicate[H]
	navigate Navigate
}

// Chain runs a sequence of nested searches. Every match of step i that its
// predicate accepts starts a fresh walk for step i+1, rooted at the match or
// at the node its Navigate function returns. All walks share one holder and
// one excluded set.
type Chain[H any] struct {
	holder H
	opts   []Option
	steps  []step[H]
}

// NewChain returns an empty Chain whose predicates receive holder. The
// options apply to every walk of the chain.
func NewChain[H any](holder H, opts ...Option) *Chain[H] {
	return &Chain[H]{holder: holder, opts: opts}
}

// Then appends a step matching nodes of kind k. A nil pred accepts every node.
func (c *Chain[H]) Then(k kind.Kind, pred Predicate[H]) *Chain[H] {
	return c.ThenFiltered(k, Filter{}, pred)
}

func (c *Chain[H]) ThenFiltered(k kind.Kind, f Filter, pred Predicate[H]) *Chain[H] {
	c.steps = append(c.steps, step[H]{kind: k, filter: f, pred: pred})
	return c
}

// Navigate sets how the last step hands its matches to the next one.
func (c *Chain[H]) Navigate(fn Navigate) *Chain[H] {
	if len(c.steps) > 0 {
		c.steps[len(c.steps)-1].navigate = fn
	}
	return c
}

// Len returns the number of steps.
func (c *Chain[H]) Len() int {
	return len(c.steps)
}

// Run performs the chain on root. It stops at the first walk that fails.
func (c *Chain[H]) Run(root ast.Node) error {
	if root == nil {
		return ErrNoTarget
	}
	opts := c.opts
	if f, ok := root.(*ast.File); ok {
		opts = append(append([]Option(nil), opts...), WithFile(f))
	}
	return c.run(0, root, opts)
}

func (c *Chain[H]) run(i int, root ast.Node, opts []Option) error {
	if i == len(c.steps) {
		return nil
	}
	s := c.steps[i]
	v := New(c.holder, opts...)

	var err error
	v.OnFiltered(s.kind, s.filter, func(n ast.Node, h H) bool {
		if err != nil {
			return false
		}
		if s.pred != nil && !s.pred(n, h) {
			return false
		}
		next := n
		if s.navigate != nil {
			next = s.navigate(n)
		}
		if next != nil {
			err = c.run(i+1, next, opts)
		}
		return true
	})
	if runErr := v.Run(root); runErr != nil {
		return runErr
	}
	return err
}
