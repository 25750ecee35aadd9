package binding

import (
	"fmt"

	"github.com/wippyai/jsbind"
)

// Args is a fixed-capacity ordered sequence of value wrappers, used both to
// build arguments for outgoing calls and to expose the arguments of incoming
// native calls. Each contained wrapper is owned exclusively by the list and
// released by Free. Index accesses are bounds-checked against the current
// length, not the capacity; violations are programming errors and panic.
type Args struct {
	capacity uint16
	slots    []*Value
}

// Shared singleton for the zero-argument call case. Never freed, never
// appended to.
var emptyArgs = &Args{}

// NewArgs creates an argument list with a fixed capacity.
func NewArgs(capacity uint16) *Args {
	return &Args{
		capacity: capacity,
		slots:    make([]*Value, 0, capacity),
	}
}

// Empty returns the shared zero-capacity list.
func Empty() *Args {
	return emptyArgs
}

// Len returns the current length.
func (a *Args) Len() uint16 {
	return uint16(len(a.slots))
}

// Add appends a copy the list owns; the caller keeps its own wrapper.
// Appending beyond capacity is fatal.
func (a *Args) Add(v *Value) {
	if uint16(len(a.slots)) >= a.capacity {
		panic(fmt.Sprintf("binding: argument list capacity %d exceeded", a.capacity))
	}
	a.slots = append(a.slots, v.Copy())
}

// Set overwrites an existing slot within the current length, releasing the
// previous occupant.
func (a *Args) Set(i uint16, v *Value) {
	if i >= a.Len() {
		panic(fmt.Sprintf("binding: argument index %d out of range (length %d)", i, a.Len()))
	}
	old := a.slots[i]
	a.slots[i] = v.Copy()
	old.Free()
}

// Get returns a borrowed pointer to the wrapper at index i, valid only while
// the list lives.
func (a *Args) Get(i uint16) *Value {
	if i >= a.Len() {
		panic(fmt.Sprintf("binding: argument index %d out of range (length %d)", i, a.Len()))
	}
	return a.slots[i]
}

// Free releases every contained wrapper. The list must not be used
// afterwards.
func (a *Args) Free() {
	for _, v := range a.slots {
		v.Free()
	}
	a.slots = nil
}

// raws flattens the list into the engine's argument array form.
func (a *Args) raws() []jsbind.Raw {
	if len(a.slots) == 0 {
		return nil
	}
	out := make([]jsbind.Raw, len(a.slots))
	for i, v := range a.slots {
		out[i] = v.raw
	}
	return out
}

// newBorrowedArgs builds a non-owning view over an engine-supplied argument
// array. The engine retains ownership of the handles for the call duration,
// so the wrappers never release.
func newBorrowedArgs(raw []jsbind.Raw) *Args {
	slots := make([]*Value, len(raw))
	for i, r := range raw {
		slots[i] = &Value{raw: r, release: false}
	}
	return &Args{capacity: uint16(len(raw)), slots: slots}
}
