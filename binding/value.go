package binding

import (
	"github.com/wippyai/jsbind"
)

// Value wraps one raw engine handle. When release is set the wrapper owns a
// reference and must release it exactly once via Free; borrowed wrappers
// (engine-supplied handles inside a native call) never release.
type Value struct {
	raw     jsbind.Raw
	release bool
}

// NewObject creates an empty object value.
func NewObject() *Value {
	return &Value{raw: eng().Object(), release: true}
}

// NewBoolean creates a boolean value.
func NewBoolean(v bool) *Value {
	return &Value{raw: eng().Boolean(v), release: true}
}

// NewInt creates a number value from a Go int.
func NewInt(v int) *Value {
	return &Value{raw: eng().Number(float64(v)), release: true}
}

// NewNumber creates a number value.
func NewNumber(v float64) *Value {
	return &Value{raw: eng().Number(v), release: true}
}

// NewString creates a string value.
func NewString(s string) *Value {
	return &Value{raw: eng().String(s), release: true}
}

// NewArrayBuffer creates an array value from a fixed-length byte buffer.
func NewArrayBuffer(data []byte) *Value {
	return &Value{raw: eng().ArrayBuffer(data), release: true}
}

// NewFunction creates a callable value backed by a raw native function.
// Handlers written against CallInfo go through Wrap first.
func NewFunction(fn jsbind.NativeFunc) *Value {
	return &Value{raw: eng().Function(fn), release: true}
}

// NewRaw wraps an existing raw handle. When owned is true the wrapper
// releases the reference on Free; pass false for handles the engine retains
// ownership of (call-duration borrows).
func NewRaw(raw jsbind.Raw, owned bool) *Value {
	return &Value{raw: raw, release: owned}
}

// Copy acquires a new reference and returns an owning wrapper for the same
// handle. Either wrapper may be freed independently.
func (v *Value) Copy() *Value {
	eng().Acquire(v.raw)
	return &Value{raw: v.raw, release: true}
}

// Free releases the wrapper's reference if it owns one. The wrapper must not
// be used afterwards.
func (v *Value) Free() {
	if v.release {
		eng().Release(v.raw)
		v.release = false
	}
}

// Raw returns the underlying engine handle.
func (v *Value) Raw() jsbind.Raw {
	return v.raw
}

// Type predicates. Pure queries, always succeed.

func (v *Value) IsNull() bool      { return eng().IsNull(v.raw) }
func (v *Value) IsUndefined() bool { return eng().IsUndefined(v.raw) }
func (v *Value) IsBoolean() bool   { return eng().IsBoolean(v.raw) }
func (v *Value) IsNumber() bool    { return eng().IsNumber(v.raw) }
func (v *Value) IsString() bool    { return eng().IsString(v.raw) }
func (v *Value) IsObject() bool    { return eng().IsObject(v.raw) }
func (v *Value) IsFunction() bool  { return eng().IsFunction(v.raw) }
func (v *Value) IsArray() bool     { return eng().IsArray(v.raw) }

// SetMethod attaches a native handler as a named function property.
func (v *Value) SetMethod(name string, h Handler) {
	fn := NewFunction(Wrap(h))
	v.SetProperty(name, fn)
	fn.Free()
}

// SetProperty sets a property by string key. The property table takes its
// own reference; the caller keeps ownership of val.
func (v *Value) SetProperty(name string, val *Value) {
	eng().SetProperty(v.raw, name, val.raw)
}

// GetProperty returns an owned wrapper for the named property. A missing key
// yields a wrapper whose IsUndefined reports true, never an error; callers
// that must distinguish absence check the predicate.
func (v *Value) GetProperty(name string) *Value {
	return NewRaw(eng().GetProperty(v.raw, name), true)
}

// SetNative attaches one native integer-sized pointer to the object,
// replacing any previous attachment. free fires exactly once when the engine
// collects the object. This is the sole mechanism for associating native
// data with a managed value.
func (v *Value) SetNative(ptr uintptr, free jsbind.FreeFunc) {
	eng().SetNative(v.raw, ptr, free)
}

// GetNative returns the attached native pointer, or 0 when none is set.
func (v *Value) GetNative() uintptr {
	return eng().GetNative(v.raw)
}

// Scalar accessors. The caller must have verified the corresponding type
// predicate first; calling on a mismatched type is unchecked behavior
// inherited from the engine.

// GetBoolean returns the boolean contents. Precondition: IsBoolean.
func (v *Value) GetBoolean() bool {
	return eng().ToBoolean(v.raw)
}

// GetInt32 returns the number contents truncated to int32. Precondition: IsNumber.
func (v *Value) GetInt32() int32 {
	return int32(int64(eng().ToNumber(v.raw)))
}

// GetInt64 returns the number contents truncated to int64. Precondition: IsNumber.
func (v *Value) GetInt64() int64 {
	return int64(eng().ToNumber(v.raw))
}

// GetNumber returns the number contents. Precondition: IsNumber.
func (v *Value) GetNumber() float64 {
	return eng().ToNumber(v.raw)
}

// GetString returns the string contents. Precondition: IsString.
func (v *Value) GetString() string {
	return eng().ToString(v.raw)
}

// Call invokes a function-typed value with a receiver and arguments. It
// never panics for script-level failures: a thrown value surfaces as an
// exception Result. args may be nil for a zero-argument call.
func (v *Value) Call(this *Value, args *Args) Result {
	if args == nil {
		args = Empty()
	}
	ret, threw := eng().Call(v.raw, this.raw, args.raws())
	return newResult(ret, threw)
}

// CallOk invokes like Call but treats an exception as a fatal programming
// error. Use only where the caller has established by construction that no
// exception is possible.
func (v *Value) CallOk(this *Value, args *Args) *Value {
	r := v.Call(this, args)
	if r.IsException() {
		panic("binding: CallOk got exception: " + eng().ToString(r.Value().raw))
	}
	return r.Value()
}

// Error factories. These construct error values; they are not yet thrown.

func Error(message string) *Value          { return newError(jsbind.ErrorPlain, message) }
func EvalError(message string) *Value      { return newError(jsbind.ErrorEval, message) }
func RangeError(message string) *Value     { return newError(jsbind.ErrorRange, message) }
func ReferenceError(message string) *Value { return newError(jsbind.ErrorReference, message) }
func SyntaxError(message string) *Value    { return newError(jsbind.ErrorSyntax, message) }
func TypeError(message string) *Value      { return newError(jsbind.ErrorType, message) }
func URIError(message string) *Value       { return newError(jsbind.ErrorURI, message) }

func newError(kind jsbind.ErrorKind, message string) *Value {
	return &Value{raw: eng().NewError(kind, message), release: true}
}

// Eval parses and executes top-level source. Failures of any sort, including
// syntax errors, surface only as an exception Result.
func Eval(source string, strict bool) Result {
	ret, threw := eng().Eval(source, strict)
	return newResult(ret, threw)
}

// ExecSnapshot executes a precompiled form of top-level source.
func ExecSnapshot(snapshot []byte) Result {
	ret, threw := eng().ExecSnapshot(snapshot)
	return newResult(ret, threw)
}
