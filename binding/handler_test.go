package binding_test

import (
	"strings"
	"testing"

	"github.com/wippyai/jsbind"
	"github.com/wippyai/jsbind/binding"
)

func TestCallInfo_ExposesCallTriple(t *testing.T) {
	setup(t)

	var fnRaw, thisRaw jsbind.Raw
	fn := binding.NewFunction(binding.Wrap(func(c *binding.CallInfo) {
		fnRaw = c.Function().Raw()
		thisRaw = c.This().Raw()
		if c.ArgLen() != 2 {
			t.Errorf("Expected 2 args, got %d", c.ArgLen())
		}
		if c.Arg(0).GetNumber() != 10 || c.Arg(1).GetString() != "s" {
			t.Error("Arguments arrived in wrong order or shape")
		}
	}))
	defer fn.Free()

	this := binding.NewObject()
	defer this.Free()

	args := binding.NewArgs(2)
	defer args.Free()
	n := binding.NewNumber(10)
	args.Add(n)
	n.Free()
	s := binding.NewString("s")
	args.Add(s)
	s.Free()

	r := fn.Call(this, args)
	defer r.Free()

	if fnRaw != fn.Raw() {
		t.Error("Handler saw the wrong callee")
	}
	if thisRaw != this.Raw() {
		t.Error("Handler saw the wrong receiver")
	}
}

func TestCallInfo_FallthroughReturnsUndefined(t *testing.T) {
	setup(t)

	fn := binding.NewFunction(binding.Wrap(func(c *binding.CallInfo) {
		// Neither Return nor Throw: implicit "return undefined".
	}))
	defer fn.Free()

	r := fn.Call(binding.Undefined(), nil)
	defer r.Free()

	if !r.IsOk() {
		t.Fatal("Expected OK result")
	}
	if !r.Value().IsUndefined() {
		t.Fatal("Expected undefined result from fallthrough handler")
	}
}

func TestCallInfo_DoubleTerminalIsFatal(t *testing.T) {
	setup(t)

	fn := binding.NewFunction(binding.Wrap(func(c *binding.CallInfo) {
		v := binding.NewNumber(1)
		defer v.Free()
		c.Return(v)

		defer func() {
			if recover() == nil {
				t.Error("Expected second terminal action to panic")
			}
		}()
		c.Return(v)
	}))
	defer fn.Free()

	r := fn.Call(binding.Undefined(), nil)
	r.Free()
}

func TestCallInfo_HasThrown(t *testing.T) {
	setup(t)

	observed := false
	fn := binding.NewFunction(binding.Wrap(func(c *binding.CallInfo) {
		err := binding.RangeError("out of range")
		defer err.Free()
		c.Throw(err)
		observed = c.HasThrown()
	}))
	defer fn.Free()

	r := fn.Call(binding.Undefined(), nil)
	defer r.Free()

	if !observed {
		t.Fatal("Expected HasThrown true after Throw")
	}
	if !r.IsException() {
		t.Fatal("Expected exception result")
	}
	name := r.Value().GetProperty("name")
	if name.GetString() != "RangeError" {
		t.Fatalf("Expected RangeError, got %q", name.GetString())
	}
	name.Free()
}

func TestCallInfo_ReturnValueSurvivesHandlerExit(t *testing.T) {
	e := setup(t)

	fn := binding.NewFunction(binding.Wrap(func(c *binding.CallInfo) {
		v := binding.NewString("kept alive")
		c.Return(v)
		v.Free() // handler's own ref gone; Return acquired for the engine
	}))
	defer fn.Free()

	r := fn.Call(binding.Undefined(), nil)
	if got := r.Value().GetString(); got != "kept alive" {
		t.Fatalf("Expected %q, got %q", "kept alive", got)
	}

	raw := r.Value().Raw()
	r.Free()
	if e.Refs(raw) != 0 {
		t.Fatal("Expected no leaked references after result freed")
	}
}

func TestCallInfo_Check(t *testing.T) {
	setup(t)

	fn := binding.NewFunction(binding.Wrap(func(c *binding.CallInfo) {
		if !c.Check(c.ArgLen() == 1) {
			return
		}
		t.Error("Check should have failed and thrown")
	}))
	defer fn.Free()

	r := fn.Call(binding.Undefined(), nil)
	defer r.Free()

	if !r.IsException() {
		t.Fatal("Expected failed Check to throw")
	}
	msg := r.Value().GetProperty("message")
	if !strings.HasPrefix(msg.GetString(), "Internal error") {
		t.Fatalf("Expected internal error message, got %q", msg.GetString())
	}
	msg.Free()
}

func TestResult_Clone(t *testing.T) {
	e := setup(t)

	r := binding.Eval(`"original"`, false)
	clone := r.Clone()

	if e.Refs(r.Value().Raw()) != 2 {
		t.Fatalf("Expected 2 refs after Clone, got %d", e.Refs(r.Value().Raw()))
	}

	r.Free()
	if clone.Value().GetString() != "original" {
		t.Fatal("Clone must survive the original being freed")
	}
	if !clone.IsOk() {
		t.Fatal("Clone must preserve the discriminant")
	}
	clone.Free()
}

func TestResult_ExceptionValueIsTheException(t *testing.T) {
	setup(t)

	r := binding.Eval(`throw "the value"`, false)
	defer r.Free()

	if !r.IsException() {
		t.Fatal("Expected exception result")
	}
	// Value() yields the exception object itself, not a fabricated empty
	// value.
	if r.Value().GetString() != "the value" {
		t.Fatalf("Expected thrown string, got %q", r.Value().GetString())
	}
}
