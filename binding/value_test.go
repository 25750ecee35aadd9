package binding_test

import (
	"testing"

	"github.com/wippyai/jsbind"
	"github.com/wippyai/jsbind/binding"
	"github.com/wippyai/jsbind/enginetest"
)

// setup installs a fresh reference engine for one test and tears the
// binding layer down afterwards.
func setup(t *testing.T) *enginetest.Engine {
	t.Helper()
	e := enginetest.New()
	binding.Init(e)
	t.Cleanup(binding.Cleanup)
	return e
}

func TestValue_CopyIndependence(t *testing.T) {
	e := setup(t)

	a := binding.NewString("shared")
	b := a.Copy()

	if e.Refs(a.Raw()) != 2 {
		t.Fatalf("Expected 2 refs after Copy, got %d", e.Refs(a.Raw()))
	}

	a.Free()
	if e.Refs(b.Raw()) != 1 {
		t.Fatal("Freeing one copy must not invalidate the other")
	}
	if b.GetString() != "shared" {
		t.Fatalf("Expected surviving copy to read %q, got %q", "shared", b.GetString())
	}

	b.Free()
	if e.Refs(b.Raw()) != 0 {
		t.Fatal("Expected handle dropped after last owner freed")
	}
}

func TestValue_FreeIsConditional(t *testing.T) {
	e := setup(t)

	owned := binding.NewNumber(7)
	raw := owned.Raw()

	borrowed := binding.NewRaw(raw, false)
	borrowed.Free()
	if e.Refs(raw) != 1 {
		t.Fatal("Freeing a borrowed wrapper must not release the reference")
	}

	owned.Free()
	if e.Refs(raw) != 0 {
		t.Fatal("Expected owning wrapper to release on Free")
	}
}

func TestValue_StringRoundTrip(t *testing.T) {
	setup(t)

	tests := []string{
		"",
		"hello",
		"embedded \x00 byte",
		"unicode é世界",
		string([]byte{0x01, 0x00, 0xff & 0x7f, 'x'}),
	}

	for _, s := range tests {
		v := binding.NewString(s)
		if !v.IsString() {
			t.Fatalf("Expected IsString for %q", s)
		}
		if got := v.GetString(); got != s {
			t.Errorf("Round trip mismatch: want %q, got %q", s, got)
		}
		v.Free()
	}
}

func TestValue_Predicates(t *testing.T) {
	setup(t)

	b := binding.NewBoolean(true)
	if !b.IsBoolean() || b.IsNumber() {
		t.Error("Boolean predicates wrong")
	}
	if b.GetBoolean() != true {
		t.Error("Expected GetBoolean true")
	}
	b.Free()

	n := binding.NewNumber(3.5)
	if !n.IsNumber() || n.IsString() {
		t.Error("Number predicates wrong")
	}
	if n.GetNumber() != 3.5 {
		t.Error("Expected GetNumber 3.5")
	}
	n.Free()

	i := binding.NewInt(-40)
	if i.GetInt32() != -40 || i.GetInt64() != -40 {
		t.Error("Integer accessors wrong")
	}
	i.Free()

	o := binding.NewObject()
	if !o.IsObject() || o.IsFunction() {
		t.Error("Object predicates wrong")
	}
	o.Free()

	arr := binding.NewArrayBuffer([]byte{1, 2, 3})
	if !arr.IsArray() || !arr.IsObject() {
		t.Error("Array predicates wrong")
	}
	arr.Free()

	if !binding.Null().IsNull() {
		t.Error("Null singleton predicate wrong")
	}
	if !binding.Undefined().IsUndefined() {
		t.Error("Undefined singleton predicate wrong")
	}
}

func TestValue_Properties(t *testing.T) {
	setup(t)

	obj := binding.NewObject()
	defer obj.Free()

	val := binding.NewString("payload")
	obj.SetProperty("key", val)
	val.Free()

	got := obj.GetProperty("key")
	if got.GetString() != "payload" {
		t.Fatalf("Expected %q, got %q", "payload", got.GetString())
	}
	got.Free()

	missing := obj.GetProperty("absent")
	if !missing.IsUndefined() {
		t.Fatal("GetProperty on a missing key must return an undefined wrapper")
	}
	missing.Free()
}

func TestValue_NativeData(t *testing.T) {
	setup(t)

	obj := binding.NewObject()

	freed := 0
	obj.SetNative(0x1234, func(ptr uintptr) {
		if ptr != 0x1234 {
			t.Errorf("Expected ptr 0x1234, got %#x", ptr)
		}
		freed++
	})

	if obj.GetNative() != 0x1234 {
		t.Fatalf("Expected GetNative 0x1234, got %#x", obj.GetNative())
	}

	obj.Free()
	if freed != 1 {
		t.Fatalf("Expected release callback exactly once, fired %d times", freed)
	}
}

func TestValue_CallWithException(t *testing.T) {
	setup(t)

	fn := binding.NewFunction(binding.Wrap(func(c *binding.CallInfo) {
		c.ThrowError(jsbind.ErrorType, "x")
	}))
	defer fn.Free()

	r := fn.Call(binding.Undefined(), nil)
	defer r.Free()

	if !r.IsException() {
		t.Fatal("Expected exception result")
	}
	if !r.Value().IsObject() {
		t.Fatal("Expected thrown value to be an object")
	}
	msg := r.Value().GetProperty("message")
	if msg.GetString() != "x" {
		t.Fatalf("Expected message %q, got %q", "x", msg.GetString())
	}
	msg.Free()
}

func TestValue_CallReturnsValue(t *testing.T) {
	setup(t)

	fn := binding.NewFunction(binding.Wrap(func(c *binding.CallInfo) {
		sum := float64(0)
		for i := uint16(0); i < c.ArgLen(); i++ {
			sum += c.Arg(i).GetNumber()
		}
		v := binding.NewNumber(sum)
		defer v.Free()
		c.Return(v)
	}))
	defer fn.Free()

	args := binding.NewArgs(3)
	defer args.Free()
	for _, n := range []float64{1, 2, 3} {
		v := binding.NewNumber(n)
		args.Add(v)
		v.Free()
	}

	r := fn.Call(binding.Undefined(), args)
	defer r.Free()

	if !r.IsOk() {
		t.Fatal("Expected OK result")
	}
	if r.Value().GetNumber() != 6 {
		t.Fatalf("Expected 6, got %v", r.Value().GetNumber())
	}
}

func TestValue_CallOk(t *testing.T) {
	setup(t)

	fn := binding.NewFunction(binding.Wrap(func(c *binding.CallInfo) {
		v := binding.NewNumber(1)
		defer v.Free()
		c.Return(v)
	}))
	defer fn.Free()

	v := fn.CallOk(binding.Undefined(), nil)
	if v.GetNumber() != 1 {
		t.Fatalf("Expected 1, got %v", v.GetNumber())
	}
	v.Free()

	thrower := binding.NewFunction(binding.Wrap(func(c *binding.CallInfo) {
		c.ThrowError(jsbind.ErrorPlain, "nope")
	}))
	defer thrower.Free()

	defer func() {
		if recover() == nil {
			t.Fatal("Expected CallOk to panic on exception")
		}
	}()
	thrower.CallOk(binding.Undefined(), nil)
}

func TestValue_ErrorFactories(t *testing.T) {
	setup(t)

	tests := []struct {
		make func(string) *binding.Value
		name string
	}{
		{binding.Error, "Error"},
		{binding.EvalError, "EvalError"},
		{binding.RangeError, "RangeError"},
		{binding.ReferenceError, "ReferenceError"},
		{binding.SyntaxError, "SyntaxError"},
		{binding.TypeError, "TypeError"},
		{binding.URIError, "URIError"},
	}

	for _, tt := range tests {
		v := tt.make("msg")
		if !v.IsObject() {
			t.Errorf("%s: expected object", tt.name)
		}
		name := v.GetProperty("name")
		if name.GetString() != tt.name {
			t.Errorf("Expected name %q, got %q", tt.name, name.GetString())
		}
		name.Free()
		msg := v.GetProperty("message")
		if msg.GetString() != "msg" {
			t.Errorf("%s: expected message %q, got %q", tt.name, "msg", msg.GetString())
		}
		msg.Free()
		v.Free()
	}
}

func TestEval_Success(t *testing.T) {
	setup(t)

	r := binding.Eval("1+1", false)
	defer r.Free()

	if !r.IsOk() {
		t.Fatal("Expected OK result")
	}
	if !r.Value().IsNumber() {
		t.Fatal("Expected number result")
	}
	if r.Value().GetNumber() != 2 {
		t.Fatalf("Expected 2, got %v", r.Value().GetNumber())
	}
}

func TestEval_SyntaxError(t *testing.T) {
	setup(t)

	r := binding.Eval("x syntax error (", false)
	defer r.Free()

	if !r.IsException() {
		t.Fatal("Expected exception result")
	}
	name := r.Value().GetProperty("name")
	if name.GetString() != "SyntaxError" {
		t.Fatalf("Expected SyntaxError, got %q", name.GetString())
	}
	name.Free()
}

func TestExecSnapshot(t *testing.T) {
	setup(t)

	r := binding.ExecSnapshot(enginetest.Compile("40+2"))
	defer r.Free()

	if !r.IsOk() {
		t.Fatal("Expected OK result")
	}
	if r.Value().GetNumber() != 42 {
		t.Fatalf("Expected 42, got %v", r.Value().GetNumber())
	}

	bad := binding.ExecSnapshot([]byte("garbage"))
	defer bad.Free()
	if !bad.IsException() {
		t.Fatal("Expected exception for malformed snapshot")
	}
}

func TestGlobal_SetMethodVisibleToScript(t *testing.T) {
	setup(t)

	global := binding.Global()
	defer global.Free()

	global.SetMethod("double", func(c *binding.CallInfo) {
		v := binding.NewNumber(c.Arg(0).GetNumber() * 2)
		defer v.Free()
		c.Return(v)
	})

	r := binding.Eval("double(21)", false)
	defer r.Free()

	if !r.IsOk() {
		t.Fatalf("Expected OK result, got exception %q", r.Value().GetString())
	}
	if r.Value().GetNumber() != 42 {
		t.Fatalf("Expected 42, got %v", r.Value().GetNumber())
	}
}
