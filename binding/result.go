package binding

import (
	"github.com/wippyai/jsbind"
)

// ResultType discriminates a Result between a produced value and a thrown
// exception. The discriminant fully determines interpretation of the value.
type ResultType int

const (
	ResultOK ResultType = iota
	ResultException
)

// Result is the outcome of every operation that can fail inside the engine:
// either the produced value or the thrown exception value, never both.
// Immutable once constructed; lifetime is bound to the call that produced it.
type Result struct {
	value Value
	rtype ResultType
}

func newResult(raw jsbind.Raw, threw bool) Result {
	rtype := ResultOK
	if threw {
		rtype = ResultException
	}
	return Result{value: Value{raw: raw, release: true}, rtype: rtype}
}

// Type returns the discriminant.
func (r Result) Type() ResultType {
	return r.rtype
}

// IsOk reports whether the result wraps a successfully produced value.
func (r Result) IsOk() bool {
	return r.rtype == ResultOK
}

// IsException reports whether the result wraps a thrown exception value.
func (r Result) IsException() bool {
	return r.rtype == ResultException
}

// Value returns the wrapped value regardless of discriminant: for an
// exception result this is the exception object, not a fabricated empty
// value. Check the discriminant first. The returned wrapper stays owned by
// the Result; release it through Free.
func (r *Result) Value() *Value {
	return &r.value
}

// Clone duplicates the result, acquiring an independent reference on the
// wrapped value per Value ownership rules.
func (r Result) Clone() Result {
	eng().Acquire(r.value.raw)
	return Result{value: Value{raw: r.value.raw, release: true}, rtype: r.rtype}
}

// Free releases the wrapped value.
func (r *Result) Free() {
	r.value.Free()
}
