// Package visitor dispatches callbacks over go/ast trees by node kind.
//
// A Visitor holds a table mapping each kind.Kind to at most one predicate and
// one end consumer. Registering a kind again replaces the earlier callback.
// The table is consumed by a single Run; a Visitor is not reusable.
//
// A predicate returning false prunes the walk below that node: its children
// are not visited, while the node's own end consumer still runs. Callback
// panics are not recovered.
package visitor

import (
	"fmt"
	"go/ast"
	"go/types"

	"go.uber.org/zap"
	"golang.org/x/tools/go/ast/inspector"

	"github.com/gnolang/sweep/kind"
)

// Predicate is called when the walk enters a node of a registered kind.
// Returning false skips the node's children.
type Predicate[H any] func(n ast.Node, h H) bool

// Consumer is called when the walk leaves a node of a registered kind.
type Consumer[H any] func(n ast.Node, h H)

type entry[H any] struct {
	pred   Predicate[H]
	end    Consumer[H]
	filter Filter
}

type config struct {
	excluded NodeSet
	info     *types.Info
	file     *ast.File
	scope    *Scope
	logger   *zap.Logger
}

// Option configures a Visitor.
type Option func(*config)

// WithExcluded skips the nodes in set. The set is only read.
func WithExcluded(set NodeSet) Option {
	return func(c *config) { c.excluded = set }
}

// WithTypes supplies type information used by filters.
func WithTypes(info *types.Info) Option {
	return func(c *config) { c.info = info }
}

// WithScope attaches a Scope that gets a frame per matched node.
func WithScope(s *Scope) Option {
	return func(c *config) { c.scope = s }
}

// WithFile names the file a walk rooted below *ast.File belongs to, so
// filters can resolve that file's imports.
func WithFile(f *ast.File) Option {
	return func(c *config) { c.file = f }
}

// WithLogger sets the logger that receives debug output of the walk.
func WithLogger(logger *zap.Logger) Option {
	return func(c *config) { c.logger = logger }
}

// Visitor is a single-use dispatch table over node kinds.
type Visitor[H any] struct {
	holder   H
	table    map[kind.Kind]*entry[H]
	cfg      config
	err      error
	consumed bool
}

// New returns an empty Visitor whose callbacks receive holder.
func New[H any](holder H, opts ...Option) *Visitor[H] {
	cfg := config{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Visitor[H]{
		holder: holder,
		table:  make(map[kind.Kind]*entry[H]),
		cfg:    cfg,
	}
}

// Holder returns the value passed to callbacks.
func (v *Visitor[H]) Holder() H {
	return v.holder
}

// On registers pred for nodes of kind k, dropping any filter set before.
func (v *Visitor[H]) On(k kind.Kind, pred Predicate[H]) *Visitor[H] {
	return v.OnFiltered(k, Filter{}, pred)
}

// OnFiltered registers pred for the nodes of kind k that satisfy f.
func (v *Visitor[H]) OnFiltered(k kind.Kind, f Filter, pred Predicate[H]) *Visitor[H] {
	e := v.slot(k)
	if e == nil {
		return v
	}
	e.pred = pred
	e.filter = f
	return v
}

// OnEnd registers a consumer called after the subtree of each node of kind k.
func (v *Visitor[H]) OnEnd(k kind.Kind, end Consumer[H]) *Visitor[H] {
	if e := v.slot(k); e != nil {
		e.end = end
	}
	return v
}

// Registered reports whether any callback is registered for k.
func (v *Visitor[H]) Registered(k kind.Kind) bool {
	_, ok := v.table[k]
	return ok
}

// Kinds returns the registered kinds in enumeration order.
func (v *Visitor[H]) Kinds() []kind.Kind {
	var kinds []kind.Kind
	for _, k := range kind.All() {
		if v.Registered(k) {
			kinds = append(kinds, k)
		}
	}
	return kinds
}

func (v *Visitor[H]) slot(k kind.Kind) *entry[H] {
	if v.consumed {
		v.err = ErrConsumed
		return nil
	}
	if !k.Valid() {
		v.err = fmt.Errorf("%w: %v", ErrUnknownKind, k)
		return nil
	}
	e, ok := v.table[k]
	if !ok {
		e = &entry[H]{}
		v.table[k] = e
	}
	return e
}

// Register is the typed form of On: the kind is derived from N and the
// callback receives the node already converted.
func Register[N ast.Node, H any](v *Visitor[H], fn func(N, H) bool) *Visitor[H] {
	return RegisterFiltered(v, Filter{}, fn)
}

// RegisterFiltered is the typed form of OnFiltered.
func RegisterFiltered[N ast.Node, H any](v *Visitor[H], f Filter, fn func(N, H) bool) *Visitor[H] {
	return v.OnFiltered(kind.For[N](), f, func(n ast.Node, h H) bool {
		return fn(n.(N), h)
	})
}

// RegisterEnd is the typed form of OnEnd.
func RegisterEnd[N ast.Node, H any](v *Visitor[H], fn func(N, H)) *Visitor[H] {
	return v.OnEnd(kind.For[N](), func(n ast.Node, h H) {
		fn(n.(N), h)
	})
}

func (v *Visitor[H]) start() error {
	if v.err != nil {
		return v.err
	}
	if v.consumed {
		return ErrConsumed
	}
	v.consumed = true
	v.cfg.logger.Debug("dispatch",
		zap.Int("kinds", len(v.table)),
		zap.Int("excluded", v.cfg.excluded.Len()))
	return nil
}

func (v *Visitor[H]) env() *env {
	e := newEnv(v.cfg.info)
	if v.cfg.file != nil {
		e.setFile(v.cfg.file)
	}
	return e
}

// visit records what enter did for a node so leave can undo it.
type visit struct {
	node   ast.Node
	end    func(ast.Node)
	scoped bool
}

func (v *Visitor[H]) enter(n ast.Node, e *env) (visit, bool) {
	ent := v.table[kind.Of(n)]
	if ent == nil || v.cfg.excluded.Has(n) {
		return visit{}, true
	}
	if !ent.filter.IsZero() && !ent.filter.matches(n, e) {
		return visit{}, true
	}

	vis := visit{node: n}
	if ent.end != nil {
		end := ent.end
		vis.end = func(n ast.Node) { end(n, v.holder) }
	}
	if v.cfg.scope != nil {
		v.cfg.scope.push()
		vis.scoped = true
	}
	if ent.pred != nil {
		return vis, ent.pred(n, v.holder)
	}
	return vis, true
}

func (v *Visitor[H]) leave(vis visit) {
	if vis.end != nil {
		vis.end(vis.node)
	}
	if vis.scoped {
		v.cfg.scope.pop()
	}
}

// Run walks root once, dispatching to the registered callbacks.
//
// When root is a file and comments are registered, comment groups that are
// not attached to any node are dispatched after the walk.
func (v *Visitor[H]) Run(root ast.Node) error {
	if root == nil {
		return ErrNoTarget
	}
	if err := v.start(); err != nil {
		return err
	}
	e := v.env()

	f, isFile := root.(*ast.File)
	var attached map[*ast.CommentGroup]bool
	if isFile && (v.Registered(kind.Comment) || v.Registered(kind.CommentGroup)) {
		attached = attachedComments(f)
	}

	var stack []visit
	walk := func(n ast.Node) bool {
		if n == nil {
			vis := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			v.leave(vis)
			return false
		}
		if f, ok := n.(*ast.File); ok {
			e.setFile(f)
		}
		vis, proceed := v.enter(n, e)
		if !proceed {
			v.leave(vis)
			return false
		}
		stack = append(stack, vis)
		return true
	}
	ast.Inspect(root, walk)

	if attached != nil {
		for _, cg := range f.Comments {
			if !attached[cg] {
				ast.Inspect(cg, walk)
			}
		}
	}
	return nil
}

func attachedComments(f *ast.File) map[*ast.CommentGroup]bool {
	attached := make(map[*ast.CommentGroup]bool)
	ast.Inspect(f, func(n ast.Node) bool {
		if cg, ok := n.(*ast.CommentGroup); ok {
			attached[cg] = true
			return false
		}
		return true
	})
	return attached
}

// RunInspector walks every file of in, visiting only registered kinds.
// Free-floating comments are not dispatched.
func (v *Visitor[H]) RunInspector(in *inspector.Inspector) error {
	if in == nil {
		return ErrNoTarget
	}
	if err := v.start(); err != nil {
		return err
	}
	e := v.env()

	filter := []ast.Node{(*ast.File)(nil)}
	for k := range v.table {
		if k != kind.File {
			filter = append(filter, k.Prototype())
		}
	}

	var stack []visit
	in.Nodes(filter, func(n ast.Node, push bool) bool {
		if !push {
			vis := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			v.leave(vis)
			return true
		}
		if f, ok := n.(*ast.File); ok {
			e.setFile(f)
		}
		vis, proceed := v.enter(n, e)
		if !proceed {
			v.leave(vis)
			return false
		}
		stack = append(stack, vis)
		return true
	})
	return nil
}
