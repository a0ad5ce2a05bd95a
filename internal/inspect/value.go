package inspect

import "context"

// ValueFlags is a bit-flag capability set describing the shape of a
// runtime value.
type ValueFlags uint32

const (
	// FlagHasChildren indicates the value has child values.
	FlagHasChildren ValueFlags = 1 << iota

	// FlagEnumerable indicates the children form a large indexed
	// sequence and should be fetched a page at a time.
	FlagEnumerable

	// FlagEvaluating indicates the backend is still computing the value.
	FlagEvaluating

	// FlagError indicates the value represents an evaluation error.
	FlagError

	// FlagNull indicates a null value.
	FlagNull

	// FlagPrimitive indicates a primitive value with no structure.
	FlagPrimitive

	// FlagReadOnly indicates the value cannot be modified.
	FlagReadOnly

	// FlagCanRefresh indicates the value can be re-evaluated on demand.
	FlagCanRefresh
)

// Has returns true if all bits of flag are set.
func (f ValueFlags) Has(flag ValueFlags) bool {
	return f&flag == flag
}

// Value is the capability surface of a backing runtime value produced by
// a debugger backend. Child enumeration may be long-running and must be
// called off the UI goroutine; the flag accessors are pure projections
// and never trigger I/O.
type Value interface {
	// Name is the value's name (variable, field, or element index).
	Name() string

	// TypeName is the runtime type name, if known.
	TypeName() string

	// DisplayValue is the rendered value text.
	DisplayValue() string

	// Flags returns the capability flags.
	Flags() ValueFlags

	// Children returns all of the value's children.
	Children(ctx context.Context) ([]Value, error)

	// ChildRange returns up to count children starting at start.
	// A short result indicates the sequence is exhausted.
	ChildRange(ctx context.Context, start, count int) ([]Value, error)

	// OnChanged subscribes to the value's change notification, fired
	// when a pending evaluation completes. The returned cancel func
	// removes the subscription and is safe to call more than once.
	OnChanged(fn func()) (cancel func())
}
