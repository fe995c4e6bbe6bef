package visitor

import (
	"fmt"
	"reflect"
)

// Holder is the caller-owned store handed to every callback of a traversal.
// It never holds nil values.
type Holder[K comparable, V any] struct {
	m map[K]V
}

// NewHolder returns an empty Holder.
func NewHolder[K comparable, V any]() *Holder[K, V] {
	return &Holder[K, V]{m: make(map[K]V)}
}

// Put stores v under k, replacing any previous value.
func (h *Holder[K, V]) Put(k K, v V) error {
	if isNil(v) {
		return fmt.Errorf("%w for key %v", ErrNilValue, k)
	}
	if h.m == nil {
		h.m = make(map[K]V)
	}
	h.m[k] = v
	return nil
}

// Get returns the value stored under k.
func (h *Holder[K, V]) Get(k K) (V, bool) {
	v, ok := h.m[k]
	return v, ok
}

// MustGet is Get for keys the caller stored itself; it panics when k is absent.
func (h *Holder[K, V]) MustGet(k K) V {
	v, ok := h.m[k]
	if !ok {
		panic(fmt.Sprintf("visitor: no value for key %v", k))
	}
	return v
}

func (h *Holder[K, V]) Delete(k K) {
	delete(h.m, k)
}

func (h *Holder[K, V]) Len() int {
	return len(h.m)
}

// Keys returns the stored keys in unspecified order.
func (h *Holder[K, V]) Keys() []K {
	keys := make([]K, 0, len(h.m))
	for k := range h.m {
		keys = append(keys, k)
	}
	return keys
}

// Range calls fn for each entry until fn returns false.
func (h *Holder[K, V]) Range(fn func(K, V) bool) {
	for k, v := range h.m {
		if !fn(k, v) {
			return
		}
	}
}

// GetAs returns the value under k converted to R, if it has that dynamic type.
func GetAs[R any, K comparable, V any](h *Holder[K, V], k K) (R, bool) {
	var zero R
	v, ok := h.Get(k)
	if !ok {
		return zero, false
	}
	r, ok := any(v).(R)
	if !ok {
		return zero, false
	}
	return r, true
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return rv.IsNil()
	}
	return false
}
