package visitor

// Scope passes data from the callback of an enclosing node to the callbacks
// of nodes nested beneath it. A visitor with a Scope pushes a frame before a
// matched node's predicate and pops it after the node's end consumer, so a
// value set while handling a node is visible exactly within its subtree.
type Scope struct {
	frames []map[any]any
}

// NewScope returns a Scope holding a single root frame.
func NewScope() *Scope {
	return &Scope{frames: []map[any]any{nil}}
}

// Set stores a value in the innermost frame.
func (s *Scope) Set(key, value any) {
	top := len(s.frames) - 1
	if s.frames[top] == nil {
		s.frames[top] = make(map[any]any)
	}
	s.frames[top][key] = value
}

// Lookup searches the frames from innermost to outermost.
func (s *Scope) Lookup(key any) (any, bool) {
	for i := len(s.frames) - 1; i >= 0; i-- {
		if v, ok := s.frames[i][key]; ok {
			return v, true
		}
	}
	return nil, false
}

// Depth returns the number of frames pushed above the root frame.
func (s *Scope) Depth() int {
	return len(s.frames) - 1
}

func (s *Scope) push() {
	s.frames = append(s.frames, nil)
}

func (s *Scope) pop() {
	if len(s.frames) > 1 {
		s.frames = s.frames[:len(s.frames)-1]
	}
}

// ScopeValue looks key up and converts the result to T.
func ScopeValue[T any](s *Scope, key any) (T, bool) {
	var zero T
	v, ok := s.Lookup(key)
	if !ok {
		return zero, false
	}
	t, ok := v.(T)
	return t, ok
}
