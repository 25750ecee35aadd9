package binding

import (
	"fmt"
	"runtime"

	"github.com/wippyai/jsbind"
)

// Handler is a native function implementation written against the CallInfo
// abstraction instead of the engine's raw calling convention.
type Handler func(*CallInfo)

// CallInfo is the per-invocation state a native handler sees: the callee,
// the receiver, the argument list, and a single-shot return/throw slot.
// The engine owns every handle in it for the call's duration; none of the
// exposed wrappers may outlive the handler body.
type CallInfo struct {
	function Value
	this     Value
	args     *Args
	ret      *jsbind.Raw
	thrown   bool
	done     bool
}

func newCallInfo(fn, this jsbind.Raw, args []jsbind.Raw, ret *jsbind.Raw) *CallInfo {
	return &CallInfo{
		function: Value{raw: fn, release: false},
		this:     Value{raw: this, release: false},
		args:     newBorrowedArgs(args),
		ret:      ret,
	}
}

// Function returns a borrowed wrapper for the callee.
func (c *CallInfo) Function() *Value {
	return &c.function
}

// This returns a borrowed wrapper for the receiver.
func (c *CallInfo) This() *Value {
	return &c.this
}

// Arg returns a borrowed wrapper for the i-th argument.
func (c *CallInfo) Arg(i uint16) *Value {
	return c.args.Get(i)
}

// ArgLen returns the number of supplied arguments.
func (c *CallInfo) ArgLen() uint16 {
	return c.args.Len()
}

// Return writes v into the output slot as the call's result. Terminal: at
// most one of Return/Throw per invocation; a second call panics.
func (c *CallInfo) Return(v *Value) {
	c.terminal()
	eng().Acquire(v.raw)
	*c.ret = v.raw
}

// Throw writes err into the output slot and marks the invocation as thrown,
// signaling the calling convention to re-raise it as an engine-level
// exception. Terminal.
func (c *CallInfo) Throw(err *Value) {
	c.terminal()
	eng().Acquire(err.raw)
	*c.ret = err.raw
	c.thrown = true
}

// ThrowError constructs a standard error value and throws it in one step.
func (c *CallInfo) ThrowError(kind jsbind.ErrorKind, message string) {
	err := newError(kind, message)
	c.Throw(err)
	err.Free()
}

// HasThrown reports whether Throw has been invoked.
func (c *CallInfo) HasThrown() bool {
	return c.thrown
}

// Check throws an internal Error naming the calling handler and reports
// false when the condition does not hold. Callers return immediately on
// false.
func (c *CallInfo) Check(cond bool) bool {
	if !cond {
		name := "handler"
		if pc, _, _, ok := runtime.Caller(1); ok {
			if f := runtime.FuncForPC(pc); f != nil {
				name = f.Name()
			}
		}
		c.ThrowError(jsbind.ErrorPlain, fmt.Sprintf("Internal error (%s)", name))
	}
	return cond
}

func (c *CallInfo) terminal() {
	if c.done {
		panic("binding: Return/Throw already invoked for this call")
	}
	c.done = true
}

// Wrap adapts a handler to the engine's native calling convention. The
// output slot starts as undefined, so a handler that invokes neither Return
// nor Throw yields an implicit "return undefined". The initial undefined
// handle is an immediate value and needs no release when overwritten.
func Wrap(h Handler) jsbind.NativeFunc {
	return func(fn, this jsbind.Raw, args []jsbind.Raw) (jsbind.Raw, bool) {
		ret := eng().Undefined()
		info := newCallInfo(fn, this, args, &ret)
		h(info)
		return ret, info.thrown
	}
}
