package inspect

import (
	"context"
	"sync"
)

// StaticValue is an in-memory Value backed by a scripted child list. It
// is used by tests and by the demo binary in place of a live debugger
// backend: child fetches count their calls, can be forced to fail or to
// block on a gate, and pending evaluations complete via Complete.
//
// StaticValue is safe for concurrent use.
type StaticValue struct {
	mu        sync.Mutex
	name      string
	typeName  string
	display   string
	flags     ValueFlags
	children  []Value
	listeners map[int]func()
	nextID    int

	fetchErr   error
	gate       chan struct{}
	childCalls int
	rangeCalls int
}

// NewStaticValue creates a static value with the given name, rendered
// text, and capability flags.
func NewStaticValue(name, display string, flags ValueFlags) *StaticValue {
	return &StaticValue{
		name:      name,
		display:   display,
		flags:     flags,
		listeners: make(map[int]func()),
	}
}

// SetTypeName sets the reported runtime type name.
func (v *StaticValue) SetTypeName(typeName string) {
	v.mu.Lock()
	v.typeName = typeName
	v.mu.Unlock()
}

// AddChildren appends scripted children.
func (v *StaticValue) AddChildren(children ...*StaticValue) {
	v.mu.Lock()
	for _, c := range children {
		v.children = append(v.children, c)
	}
	v.mu.Unlock()
}

// FailWith forces subsequent child fetches to return err. A nil err
// restores normal behavior.
func (v *StaticValue) FailWith(err error) {
	v.mu.Lock()
	v.fetchErr = err
	v.mu.Unlock()
}

// SetGate installs a channel that child fetches block on until it is
// closed or the fetch context is done. A nil gate removes the block.
func (v *StaticValue) SetGate(gate chan struct{}) {
	v.mu.Lock()
	v.gate = gate
	v.mu.Unlock()
}

// ChildCalls returns the number of full-child fetches issued.
func (v *StaticValue) ChildCalls() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.childCalls
}

// RangeCalls returns the number of ranged fetches issued.
func (v *StaticValue) RangeCalls() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.rangeCalls
}

// Name implements Value.
func (v *StaticValue) Name() string { return v.name }

// TypeName implements Value.
func (v *StaticValue) TypeName() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.typeName
}

// DisplayValue implements Value.
func (v *StaticValue) DisplayValue() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.display
}

// SetDisplayValue updates the rendered text.
func (v *StaticValue) SetDisplayValue(display string) {
	v.mu.Lock()
	v.display = display
	v.mu.Unlock()
}

// Flags implements Value.
func (v *StaticValue) Flags() ValueFlags {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.flags
}

// SetFlags replaces the capability flags.
func (v *StaticValue) SetFlags(flags ValueFlags) {
	v.mu.Lock()
	v.flags = flags
	v.mu.Unlock()
}

// Children implements Value.
func (v *StaticValue) Children(ctx context.Context) ([]Value, error) {
	v.mu.Lock()
	v.childCalls++
	gate := v.gate
	err := v.fetchErr
	children := append([]Value{}, v.children...)
	v.mu.Unlock()

	if waitErr := waitGate(ctx, gate); waitErr != nil {
		return nil, waitErr
	}
	if err != nil {
		return nil, err
	}
	return children, nil
}

// ChildRange implements Value.
func (v *StaticValue) ChildRange(ctx context.Context, start, count int) ([]Value, error) {
	v.mu.Lock()
	v.rangeCalls++
	gate := v.gate
	err := v.fetchErr
	children := append([]Value{}, v.children...)
	v.mu.Unlock()

	if waitErr := waitGate(ctx, gate); waitErr != nil {
		return nil, waitErr
	}
	if err != nil {
		return nil, err
	}

	if start >= len(children) {
		return nil, nil
	}
	end := start + count
	if end > len(children) {
		end = len(children)
	}
	return children[start:end], nil
}

// OnChanged implements Value.
func (v *StaticValue) OnChanged(fn func()) (cancel func()) {
	v.mu.Lock()
	id := v.nextID
	v.nextID++
	v.listeners[id] = fn
	v.mu.Unlock()

	return func() {
		v.mu.Lock()
		delete(v.listeners, id)
		v.mu.Unlock()
	}
}

// MarkChanged fires the value-changed notification to all listeners.
func (v *StaticValue) MarkChanged() {
	v.mu.Lock()
	listeners := make([]func(), 0, len(v.listeners))
	for _, fn := range v.listeners {
		listeners = append(listeners, fn)
	}
	v.mu.Unlock()

	for _, fn := range listeners {
		fn()
	}
}

// Complete clears the evaluating flag, optionally updates the rendered
// text, and fires the value-changed notification.
func (v *StaticValue) Complete(display string) {
	v.mu.Lock()
	v.flags &^= FlagEvaluating
	if display != "" {
		v.display = display
	}
	v.mu.Unlock()

	v.MarkChanged()
}

func waitGate(ctx context.Context, gate chan struct{}) error {
	if gate == nil {
		return ctx.Err()
	}
	select {
	case <-gate:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
