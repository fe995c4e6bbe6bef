package visitor

import "go/ast"

// NodeSet records nodes already handled by an earlier pass over the same tree.
// Traversals read it to skip nodes; only callbacks add to it.
type NodeSet map[ast.Node]struct{}

// NewNodeSet returns an empty set.
func NewNodeSet() NodeSet {
	return make(NodeSet)
}

func (s NodeSet) Add(n ast.Node) {
	s[n] = struct{}{}
}

// Has reports whether n is in the set. A nil set contains nothing.
func (s NodeSet) Has(n ast.Node) bool {
	if s == nil {
		return false
	}
	_, ok := s[n]
	return ok
}

func (s NodeSet) Len() int {
	return len(s)
}

func (s NodeSet) Clone() NodeSet {
	c := make(NodeSet, len(s))
	for n := range s {
		c[n] = struct{}{}
	}
	return c
}
