package jsbind

// Raw is an opaque reference-counted handle owned by the embedded engine.
// The binding layer never inspects its bit representation; it only passes it
// back through the Engine API. 0 is never a valid handle.
type Raw uint64

// FreeFunc releases native data attached to an engine object. The engine's
// collector invokes it exactly once when the owning object is reclaimed.
// Callbacks may run at points outside caller control; they must execute
// quickly and must not assume reentrancy into the engine is safe.
type FreeFunc func(ptr uintptr)

// NativeFunc is the raw calling convention for natively implemented
// functions. The engine supplies borrowed handles for the callee, receiver,
// and arguments; they stay valid only for the duration of the call. The
// returned handle is an owned reference transferred to the engine. When
// threw is true the engine re-raises ret as an exception instead of
// returning it.
type NativeFunc func(fn, this Raw, args []Raw) (ret Raw, threw bool)

// ErrorKind selects one of the standard error constructors of the engine.
type ErrorKind int

const (
	ErrorPlain ErrorKind = iota
	ErrorEval
	ErrorRange
	ErrorReference
	ErrorSyntax
	ErrorType
	ErrorURI
)

func (k ErrorKind) String() string {
	switch k {
	case ErrorPlain:
		return "Error"
	case ErrorEval:
		return "EvalError"
	case ErrorRange:
		return "RangeError"
	case ErrorReference:
		return "ReferenceError"
	case ErrorSyntax:
		return "SyntaxError"
	case ErrorType:
		return "TypeError"
	case ErrorURI:
		return "URIError"
	default:
		return "Error"
	}
}

// Engine is the C-style API an embedded runtime exposes to the binding
// layer. The binding layer consumes this interface; it never implements the
// engine itself.
//
// Every creation method returns an owned reference: the caller must balance
// it with exactly one Release. Acquire/Release on immediate values
// (undefined, null, booleans) may be no-ops; only balance is required.
//
// Call, Eval, and ExecSnapshot report failure exclusively through the threw
// flag: the returned handle is then the thrown exception value. They never
// return a Go error and never panic for script-level failures.
type Engine interface {
	// Value creation. All returned handles are owned by the caller.
	Undefined() Raw
	Null() Raw
	Boolean(v bool) Raw
	Number(v float64) Raw
	String(s string) Raw
	// ArrayBuffer creates an array value from a fixed-length byte buffer.
	ArrayBuffer(data []byte) Raw
	Object() Raw
	Function(fn NativeFunc) Raw
	NewError(kind ErrorKind, message string) Raw

	// Reference counting.
	Acquire(v Raw)
	Release(v Raw)

	// Type predicates. Pure queries, always succeed.
	IsNull(v Raw) bool
	IsUndefined(v Raw) bool
	IsBoolean(v Raw) bool
	IsNumber(v Raw) bool
	IsString(v Raw) bool
	IsObject(v Raw) bool
	IsFunction(v Raw) bool
	IsArray(v Raw) bool

	// Scalar conversion. Calling these on a handle of the wrong type is
	// unchecked behavior inherited from the engine.
	ToBoolean(v Raw) bool
	ToNumber(v Raw) float64
	ToString(v Raw) string

	// GetProperty returns an owned reference to the named property, or an
	// undefined handle when the key is absent. Absence is not an error.
	GetProperty(obj Raw, name string) Raw
	SetProperty(obj Raw, name string, v Raw)

	// SetNative attaches one native integer-sized pointer to an object,
	// replacing any previous attachment. free fires when the object is
	// collected. GetNative returns 0 when nothing is attached.
	SetNative(obj Raw, ptr uintptr, free FreeFunc)
	GetNative(obj Raw) uintptr

	// Call invokes a function handle with a receiver and arguments.
	Call(fn, this Raw, args []Raw) (Raw, bool)
	// Eval parses and executes top-level source.
	Eval(source string, strict bool) (Raw, bool)
	// ExecSnapshot executes a precompiled form of top-level source.
	ExecSnapshot(snapshot []byte) (Raw, bool)

	// Global returns an owned reference to the global object.
	Global() Raw
}
