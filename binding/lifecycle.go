package binding

import (
	"github.com/wippyai/jsbind"
)

// Process-wide engine and the two lazily torn-down singletons. Guarded only
// by the Init/Cleanup ordering contract; the binding layer is single-threaded.
var (
	engInst      jsbind.Engine
	nullVal      *Value
	undefinedVal *Value
)

// Init installs the engine and constructs the Null/Undefined singletons.
// It must be called exactly once before any other operation in this package.
// Calling it again without an intervening Cleanup panics.
func Init(e jsbind.Engine) {
	if engInst != nil {
		panic("binding: Init called twice")
	}
	if e == nil {
		panic("binding: Init with nil engine")
	}
	engInst = e
	nullVal = NewRaw(e.Null(), true)
	undefinedVal = NewRaw(e.Undefined(), true)
}

// Cleanup releases the singletons and detaches the engine. No operation in
// this package is valid afterwards until a fresh Init.
func Cleanup() {
	if engInst == nil {
		panic("binding: Cleanup without Init")
	}
	nullVal.Free()
	undefinedVal.Free()
	nullVal = nil
	undefinedVal = nil
	engInst = nil
}

// eng returns the installed engine. Use before Init or after Cleanup is a
// contract violation with no safe recovery path.
func eng() jsbind.Engine {
	if engInst == nil {
		panic("binding: not initialized (call Init first)")
	}
	return engInst
}

// Null returns the process-wide null singleton. Borrowed: callers must not
// Free it.
func Null() *Value {
	eng()
	return nullVal
}

// Undefined returns the process-wide undefined singleton. Borrowed: callers
// must not Free it.
func Undefined() *Value {
	eng()
	return undefinedVal
}

// Global returns an owned wrapper for the engine's global object.
func Global() *Value {
	return NewRaw(eng().Global(), true)
}
