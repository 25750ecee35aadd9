package enginetest

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/wippyai/jsbind"
)

// Engine is the in-process reference engine. Not safe for concurrent use;
// the binding layer's execution model is single-threaded.
type Engine struct {
	store  *store
	global jsbind.Raw
}

// New creates an engine with an empty global object.
func New() *Engine {
	e := &Engine{store: newStore()}
	e.global = e.store.alloc(entry{kind: kindObject, props: map[string]jsbind.Raw{}})
	return e
}

var _ jsbind.Engine = (*Engine)(nil)

// Value creation

func (e *Engine) Undefined() jsbind.Raw { return hUndefined }
func (e *Engine) Null() jsbind.Raw      { return hNull }

func (e *Engine) Boolean(v bool) jsbind.Raw {
	if v {
		return hTrue
	}
	return hFalse
}

func (e *Engine) Number(v float64) jsbind.Raw {
	return e.store.alloc(entry{kind: kindNumber, num: v})
}

func (e *Engine) String(s string) jsbind.Raw {
	return e.store.alloc(entry{kind: kindString, str: s})
}

// ArrayBuffer creates an array of byte-sized numbers plus a length property.
func (e *Engine) ArrayBuffer(data []byte) jsbind.Raw {
	buf := make([]byte, len(data))
	copy(buf, data)

	props := map[string]jsbind.Raw{
		"length": e.Number(float64(len(buf))),
	}
	for i, b := range buf {
		props[strconv.Itoa(i)] = e.Number(float64(b))
	}
	return e.store.alloc(entry{kind: kindArray, data: buf, props: props})
}

func (e *Engine) Object() jsbind.Raw {
	return e.store.alloc(entry{kind: kindObject, props: map[string]jsbind.Raw{}})
}

func (e *Engine) Function(fn jsbind.NativeFunc) jsbind.Raw {
	return e.store.alloc(entry{kind: kindFunction, fn: fn, props: map[string]jsbind.Raw{}})
}

func (e *Engine) NewError(kind jsbind.ErrorKind, message string) jsbind.Raw {
	props := map[string]jsbind.Raw{
		"name":    e.String(kind.String()),
		"message": e.String(message),
	}
	return e.store.alloc(entry{kind: kindObject, isError: true, errKind: kind, props: props})
}

// Reference counting

func (e *Engine) Acquire(v jsbind.Raw) { e.store.acquire(v) }
func (e *Engine) Release(v jsbind.Raw) { e.store.release(v) }

// Type predicates

func (e *Engine) IsNull(v jsbind.Raw) bool      { return v == hNull }
func (e *Engine) IsUndefined(v jsbind.Raw) bool { return v == hUndefined }
func (e *Engine) IsBoolean(v jsbind.Raw) bool   { return v == hTrue || v == hFalse }

func (e *Engine) IsNumber(v jsbind.Raw) bool {
	ent := e.store.get(v)
	return ent != nil && ent.kind == kindNumber
}

func (e *Engine) IsString(v jsbind.Raw) bool {
	ent := e.store.get(v)
	return ent != nil && ent.kind == kindString
}

func (e *Engine) IsObject(v jsbind.Raw) bool {
	ent := e.store.get(v)
	if ent == nil {
		return false
	}
	return ent.kind == kindObject || ent.kind == kindFunction || ent.kind == kindArray
}

func (e *Engine) IsFunction(v jsbind.Raw) bool {
	ent := e.store.get(v)
	return ent != nil && ent.kind == kindFunction
}

func (e *Engine) IsArray(v jsbind.Raw) bool {
	ent := e.store.get(v)
	return ent != nil && ent.kind == kindArray
}

// Scalar conversion

func (e *Engine) ToBoolean(v jsbind.Raw) bool {
	switch v {
	case hTrue:
		return true
	case hFalse, hNull, hUndefined:
		return false
	}
	ent := e.store.get(v)
	if ent == nil {
		return false
	}
	switch ent.kind {
	case kindNumber:
		return ent.num != 0 && !math.IsNaN(ent.num)
	case kindString:
		return len(ent.str) > 0
	default:
		return true
	}
}

func (e *Engine) ToNumber(v jsbind.Raw) float64 {
	switch v {
	case hTrue:
		return 1
	case hFalse, hNull:
		return 0
	case hUndefined:
		return math.NaN()
	}
	ent := e.store.get(v)
	if ent == nil {
		return math.NaN()
	}
	switch ent.kind {
	case kindNumber:
		return ent.num
	case kindString:
		n, err := strconv.ParseFloat(strings.TrimSpace(ent.str), 64)
		if err != nil {
			return math.NaN()
		}
		return n
	default:
		return math.NaN()
	}
}

func (e *Engine) ToString(v jsbind.Raw) string {
	switch v {
	case hTrue:
		return "true"
	case hFalse:
		return "false"
	case hNull:
		return "null"
	case hUndefined:
		return "undefined"
	}
	ent := e.store.get(v)
	if ent == nil {
		return "undefined"
	}
	switch ent.kind {
	case kindNumber:
		return formatNumber(ent.num)
	case kindString:
		return ent.str
	case kindFunction:
		return "function"
	case kindArray:
		parts := make([]string, len(ent.data))
		for i, b := range ent.data {
			parts[i] = strconv.Itoa(int(b))
		}
		return strings.Join(parts, ",")
	default:
		if ent.isError {
			return e.ToString(ent.props["name"]) + ": " + e.ToString(ent.props["message"])
		}
		return "[object Object]"
	}
}

func formatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == math.Trunc(f) && math.Abs(f) < 1e21:
		return strconv.FormatFloat(f, 'f', -1, 64)
	default:
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
}

// Properties

func (e *Engine) GetProperty(obj jsbind.Raw, name string) jsbind.Raw {
	ent := e.store.get(obj)
	if ent == nil || ent.props == nil {
		return hUndefined
	}
	p, ok := ent.props[name]
	if !ok {
		return hUndefined
	}
	e.store.acquire(p)
	return p
}

func (e *Engine) SetProperty(obj jsbind.Raw, name string, v jsbind.Raw) {
	ent := e.store.get(obj)
	if ent == nil || ent.props == nil {
		return
	}
	e.store.acquire(v)
	if old, ok := ent.props[name]; ok {
		e.store.release(old)
	}
	ent.props[name] = v
}

// Native data

func (e *Engine) SetNative(obj jsbind.Raw, ptr uintptr, free jsbind.FreeFunc) {
	ent := e.store.get(obj)
	if ent == nil {
		return
	}
	ent.native = ptr
	ent.nativeFree = free
	ent.hasNative = true
}

func (e *Engine) GetNative(obj jsbind.Raw) uintptr {
	ent := e.store.get(obj)
	if ent == nil || !ent.hasNative {
		return 0
	}
	return ent.native
}

// Invocation

func (e *Engine) Call(fn, this jsbind.Raw, args []jsbind.Raw) (jsbind.Raw, bool) {
	ent := e.store.get(fn)
	if ent == nil || ent.kind != kindFunction || ent.fn == nil {
		return e.NewError(jsbind.ErrorType, "value is not a function"), true
	}
	return ent.fn(fn, this, args)
}

func (e *Engine) Eval(source string, strict bool) (jsbind.Raw, bool) {
	prog, err := parse(source)
	if err != nil {
		return e.NewError(jsbind.ErrorSyntax, err.Error()), true
	}
	return e.run(prog)
}

func (e *Engine) Global() jsbind.Raw {
	e.store.acquire(e.global)
	return e.global
}

// Refs reports the live reference count for a handle. Test helper; not part
// of the Engine contract.
func (e *Engine) Refs(v jsbind.Raw) uint32 {
	return e.store.refs(v)
}

// Live reports the number of live heap entries (the global object included).
// Test helper for leak checks.
func (e *Engine) Live() int {
	return e.store.live()
}

// SetGlobal binds a name on the global object, taking its own reference.
// Convenience for tests and the REPL.
func (e *Engine) SetGlobal(name string, v jsbind.Raw) {
	e.SetProperty(e.global, name, v)
}

func (e *Engine) typeError(format string, args ...any) (jsbind.Raw, bool) {
	return e.NewError(jsbind.ErrorType, fmt.Sprintf(format, args...)), true
}
