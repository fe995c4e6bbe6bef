package visitor

import "errors"

var (
	// ErrNoTarget is returned when a walk has no tree, such as a builder
	// executed before In was called.
	ErrNoTarget = errors.New("visitor: no target tree")

	// ErrConsumed is returned when a visitor is registered on or run after it already ran.
	ErrConsumed = errors.New("visitor: dispatch table already consumed")

	// ErrUnknownKind is returned when a callback was registered for an invalid kind.
	ErrUnknownKind = errors.New("visitor: unknown node kind")

	// ErrNilValue is returned when a nil value is stored in a Holder.
	ErrNilValue = errors.New("visitor: nil value")
)
