package engine

import (
	"context"
	"encoding/binary"
	"math"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	"github.com/wippyai/jsbind"
	jserrors "github.com/wippyai/jsbind/errors"
)

// Config holds configuration for engine creation
type Config struct {
	// MemoryLimitPages sets the maximum memory per instance in pages (64KB each).
	// 0 means default (65536 pages = 4GB).
	// 256 = 16MB, 1024 = 64MB, 4096 = 256MB
	MemoryLimitPages uint32
}

// nativeAttachment is the host half of a SetNative call: the pointer handed
// back by GetNative and the callback fired by host_free_native.
type nativeAttachment struct {
	ptr  uintptr
	free jsbind.FreeFunc
}

// WasmEngine implements jsbind.Engine on top of a wasm32 engine binary
// executed by wazero. Instances are single-threaded, matching the binding
// layer's process-wide contract.
type WasmEngine struct {
	ctx     context.Context
	runtime wazero.Runtime
	mod     api.Module
	mem     api.Memory

	fns   map[string]api.Function
	stack []uint64

	jsctx   uint64 // guest engine context handle
	scratch uint32 // guest cell reused for out-parameters

	natives   map[uint32]jsbind.NativeFunc
	nativeSeq uint32

	attachments map[uint32]nativeAttachment
	attachSeq   uint32
}

var _ jsbind.Engine = (*WasmEngine)(nil)

// New compiles and instantiates an engine binary.
func New(ctx context.Context, wasmBytes []byte, cfg *Config) (*WasmEngine, error) {
	runtimeCfg := wazero.NewRuntimeConfig()
	if cfg != nil && cfg.MemoryLimitPages > 0 {
		runtimeCfg = runtimeCfg.WithMemoryLimitPages(cfg.MemoryLimitPages)
	}

	runtime := wazero.NewRuntimeWithConfig(ctx, runtimeCfg)
	e := &WasmEngine{
		ctx:         ctx,
		runtime:     runtime,
		fns:         make(map[string]api.Function, len(requiredExports)),
		stack:       make([]uint64, 8),
		natives:     make(map[uint32]jsbind.NativeFunc),
		attachments: make(map[uint32]nativeAttachment),
	}

	_, err := runtime.NewHostModuleBuilder(hostModule).
		NewFunctionBuilder().
		WithGoModuleFunction(api.GoModuleFunc(e.hostCallNative),
			[]api.ValueType{api.ValueTypeI32, api.ValueTypeI32, api.ValueTypeI32, api.ValueTypeI32, api.ValueTypeI32, api.ValueTypeI32},
			[]api.ValueType{api.ValueTypeI32}).
		Export(hostCallNative).
		NewFunctionBuilder().
		WithGoModuleFunction(api.GoModuleFunc(e.hostFreeNative),
			[]api.ValueType{api.ValueTypeI32}, nil).
		Export(hostFreeNative).
		Instantiate(ctx)
	if err != nil {
		runtime.Close(ctx)
		return nil, jserrors.Load("instantiate host module", err)
	}

	compiled, err := runtime.CompileModule(ctx, wasmBytes)
	if err != nil {
		runtime.Close(ctx)
		return nil, jserrors.Load("compile engine binary", err)
	}

	mod, err := runtime.InstantiateModule(ctx, compiled, wazero.NewModuleConfig().WithName("engine"))
	if err != nil {
		runtime.Close(ctx)
		return nil, jserrors.Load("instantiate engine binary", err)
	}
	e.mod = mod

	for _, name := range requiredExports {
		fn := mod.ExportedFunction(name)
		if fn == nil {
			runtime.Close(ctx)
			return nil, jserrors.MissingExport(jserrors.PhaseLoad, name)
		}
		e.fns[name] = fn
	}
	if e.mem = mod.Memory(); e.mem == nil {
		runtime.Close(ctx)
		return nil, jserrors.Load("engine binary exports no memory", nil)
	}

	e.jsctx = e.call(fnOpen)
	if e.scratch = uint32(e.call(fnMalloc, 8)); e.scratch == 0 {
		runtime.Close(ctx)
		return nil, jserrors.AllocationFailed(jserrors.PhaseInit, 8)
	}

	Logger().Debug("engine instantiated",
		zap.Int("binary_size", len(wasmBytes)),
		zap.Int("exports", len(e.fns)))
	return e, nil
}

// Close tears down the engine instance. Handles minted by this engine are
// invalid afterwards; attachments that were never collected have their
// release callbacks fired so host resources do not leak.
func (e *WasmEngine) Close(ctx context.Context) error {
	e.call(fnClose, e.jsctx)
	for id, att := range e.attachments {
		if att.free != nil {
			att.free(att.ptr)
		}
		delete(e.attachments, id)
	}
	return e.runtime.Close(ctx)
}

// call invokes a cached export through a reusable stack buffer. A trap here
// is a fault at the wasm boundary, not a script exception; the instance
// state is no longer trustworthy, so it panics.
func (e *WasmEngine) call(name string, args ...uint64) uint64 {
	fn := e.fns[name]
	copy(e.stack, args)
	if err := fn.CallWithStack(e.ctx, e.stack); err != nil {
		Logger().Error("engine trapped", zap.String("export", name), zap.Error(err))
		panic(jserrors.Trap(jserrors.PhaseCall, name, err))
	}
	return e.stack[0]
}

// writeBytes copies data into guest memory using the guest allocator.
// The caller releases the buffer with freeGuest.
func (e *WasmEngine) writeBytes(data []byte) (ptr, length uint32) {
	length = uint32(len(data))
	if length == 0 {
		return 0, 0
	}
	ptr = uint32(e.call(fnMalloc, uint64(length)))
	if ptr == 0 {
		panic(jserrors.AllocationFailed(jserrors.PhaseCall, length))
	}
	if !e.mem.Write(ptr, data) {
		panic(jserrors.OutOfBounds(jserrors.PhaseCall, ptr, length))
	}
	return ptr, length
}

func (e *WasmEngine) freeGuest(ptr uint32) {
	if ptr != 0 {
		e.call(fnFree, uint64(ptr))
	}
}

func (e *WasmEngine) readBytes(ptr, length uint32) []byte {
	if length == 0 {
		return nil
	}
	data, ok := e.mem.Read(ptr, length)
	if !ok {
		panic(jserrors.OutOfBounds(jserrors.PhaseCall, ptr, length))
	}
	out := make([]byte, length)
	copy(out, data)
	return out
}

// Value creation.

func (e *WasmEngine) Undefined() jsbind.Raw {
	return jsbind.Raw(e.call(fnUndefined, e.jsctx))
}

func (e *WasmEngine) Null() jsbind.Raw {
	return jsbind.Raw(e.call(fnNull, e.jsctx))
}

func (e *WasmEngine) Boolean(v bool) jsbind.Raw {
	b := uint64(0)
	if v {
		b = 1
	}
	return jsbind.Raw(e.call(fnBool, e.jsctx, b))
}

func (e *WasmEngine) Number(v float64) jsbind.Raw {
	return jsbind.Raw(e.call(fnNumber, e.jsctx, math.Float64bits(v)))
}

func (e *WasmEngine) String(s string) jsbind.Raw {
	ptr, length := e.writeBytes([]byte(s))
	defer e.freeGuest(ptr)
	return jsbind.Raw(e.call(fnString, e.jsctx, uint64(ptr), uint64(length)))
}

func (e *WasmEngine) ArrayBuffer(data []byte) jsbind.Raw {
	ptr, length := e.writeBytes(data)
	defer e.freeGuest(ptr)
	return jsbind.Raw(e.call(fnArrayBuffer, e.jsctx, uint64(ptr), uint64(length)))
}

func (e *WasmEngine) Object() jsbind.Raw {
	return jsbind.Raw(e.call(fnObject, e.jsctx))
}

func (e *WasmEngine) Function(fn jsbind.NativeFunc) jsbind.Raw {
	e.nativeSeq++
	id := e.nativeSeq
	e.natives[id] = fn
	return jsbind.Raw(e.call(fnFunction, e.jsctx, uint64(id)))
}

func (e *WasmEngine) NewError(kind jsbind.ErrorKind, message string) jsbind.Raw {
	ptr, length := e.writeBytes([]byte(message))
	defer e.freeGuest(ptr)
	return jsbind.Raw(e.call(fnError, e.jsctx, uint64(kind), uint64(ptr), uint64(length)))
}

// Reference counting.

func (e *WasmEngine) Acquire(v jsbind.Raw) { e.call(fnAcquire, e.jsctx, uint64(v)) }
func (e *WasmEngine) Release(v jsbind.Raw) { e.call(fnRelease, e.jsctx, uint64(v)) }

// Predicates.

func (e *WasmEngine) predicate(name string, v jsbind.Raw) bool {
	return e.call(name, e.jsctx, uint64(v)) != 0
}

func (e *WasmEngine) IsUndefined(v jsbind.Raw) bool { return e.predicate(fnIsUndefined, v) }
func (e *WasmEngine) IsNull(v jsbind.Raw) bool      { return e.predicate(fnIsNull, v) }
func (e *WasmEngine) IsBoolean(v jsbind.Raw) bool   { return e.predicate(fnIsBool, v) }
func (e *WasmEngine) IsNumber(v jsbind.Raw) bool    { return e.predicate(fnIsNumber, v) }
func (e *WasmEngine) IsString(v jsbind.Raw) bool    { return e.predicate(fnIsString, v) }
func (e *WasmEngine) IsObject(v jsbind.Raw) bool    { return e.predicate(fnIsObject, v) }
func (e *WasmEngine) IsFunction(v jsbind.Raw) bool  { return e.predicate(fnIsFunction, v) }
func (e *WasmEngine) IsArray(v jsbind.Raw) bool     { return e.predicate(fnIsArray, v) }

// Conversion.

func (e *WasmEngine) ToBoolean(v jsbind.Raw) bool {
	return e.call(fnToBool, e.jsctx, uint64(v)) != 0
}

func (e *WasmEngine) ToNumber(v jsbind.Raw) float64 {
	return math.Float64frombits(e.call(fnToNumber, e.jsctx, uint64(v)))
}

func (e *WasmEngine) ToString(v jsbind.Raw) string {
	ptr := uint32(e.call(fnToString, e.jsctx, uint64(v), uint64(e.scratch)))
	length, ok := e.mem.ReadUint32Le(e.scratch)
	if !ok {
		panic(jserrors.OutOfBounds(jserrors.PhaseCall, e.scratch, 4))
	}
	s := string(e.readBytes(ptr, length))
	e.freeGuest(ptr)
	return s
}

// Properties.

func (e *WasmEngine) GetProperty(obj jsbind.Raw, name string) jsbind.Raw {
	ptr, length := e.writeBytes([]byte(name))
	defer e.freeGuest(ptr)
	return jsbind.Raw(e.call(fnGetProperty, e.jsctx, uint64(obj), uint64(ptr), uint64(length)))
}

func (e *WasmEngine) SetProperty(obj jsbind.Raw, name string, v jsbind.Raw) {
	ptr, length := e.writeBytes([]byte(name))
	defer e.freeGuest(ptr)
	e.call(fnSetProperty, e.jsctx, uint64(obj), uint64(ptr), uint64(length), uint64(v))
}

// Native data.

func (e *WasmEngine) SetNative(obj jsbind.Raw, ptr uintptr, free jsbind.FreeFunc) {
	e.attachSeq++
	id := e.attachSeq
	e.attachments[id] = nativeAttachment{ptr: ptr, free: free}
	e.call(fnSetNative, e.jsctx, uint64(obj), uint64(id))
}

func (e *WasmEngine) GetNative(obj jsbind.Raw) uintptr {
	id := uint32(e.call(fnGetNative, e.jsctx, uint64(obj)))
	if id == 0 {
		return 0
	}
	return e.attachments[id].ptr
}

// Execution.

func (e *WasmEngine) Call(fn, this jsbind.Raw, args []jsbind.Raw) (jsbind.Raw, bool) {
	var argvPtr uint32
	if len(args) > 0 {
		buf := make([]byte, 4*len(args))
		for i, a := range args {
			binary.LittleEndian.PutUint32(buf[4*i:], uint32(a))
		}
		argvPtr, _ = e.writeBytes(buf)
		defer e.freeGuest(argvPtr)
	}
	threw := e.call(fnCall, e.jsctx, uint64(fn), uint64(this),
		uint64(argvPtr), uint64(len(args)), uint64(e.scratch))
	return e.readResult(threw)
}

func (e *WasmEngine) Eval(source string, strict bool) (jsbind.Raw, bool) {
	ptr, length := e.writeBytes([]byte(source))
	defer e.freeGuest(ptr)
	strictFlag := uint64(0)
	if strict {
		strictFlag = 1
	}
	threw := e.call(fnEval, e.jsctx, uint64(ptr), uint64(length), strictFlag, uint64(e.scratch))
	return e.readResult(threw)
}

func (e *WasmEngine) ExecSnapshot(snapshot []byte) (jsbind.Raw, bool) {
	ptr, length := e.writeBytes(snapshot)
	defer e.freeGuest(ptr)
	threw := e.call(fnExecSnapshot, e.jsctx, uint64(ptr), uint64(length), uint64(e.scratch))
	return e.readResult(threw)
}

// readResult picks up the handle an execution export stored in the scratch
// cell and pairs it with the threw flag.
func (e *WasmEngine) readResult(threw uint64) (jsbind.Raw, bool) {
	ret, ok := e.mem.ReadUint32Le(e.scratch)
	if !ok {
		panic(jserrors.OutOfBounds(jserrors.PhaseCall, e.scratch, 4))
	}
	return jsbind.Raw(ret), threw != 0
}

func (e *WasmEngine) Global() jsbind.Raw {
	return jsbind.Raw(e.call(fnGlobal, e.jsctx))
}

// Host-side dispatch for natively implemented functions.

// hostCallNative handles (id, fn, this, argvPtr, argc, retPtr) -> threw.
func (e *WasmEngine) hostCallNative(_ context.Context, mod api.Module, stack []uint64) {
	id := uint32(stack[0])
	fn := jsbind.Raw(uint32(stack[1]))
	this := jsbind.Raw(uint32(stack[2]))
	argvPtr := uint32(stack[3])
	argc := uint32(stack[4])
	retPtr := uint32(stack[5])

	native := e.natives[id]
	if native == nil {
		// Only the guest can mint a call with an id we never issued.
		panic(jserrors.Trap(jserrors.PhaseNative, hostCallNative,
			jserrors.InvalidInput(jserrors.PhaseNative, "unknown native function id")))
	}

	mem := mod.Memory()
	args := make([]jsbind.Raw, argc)
	for i := uint32(0); i < argc; i++ {
		h, ok := mem.ReadUint32Le(argvPtr + 4*i)
		if !ok {
			panic(jserrors.OutOfBounds(jserrors.PhaseNative, argvPtr, 4*argc))
		}
		args[i] = jsbind.Raw(h)
	}

	ret, threw := native(fn, this, args)
	if !mem.WriteUint32Le(retPtr, uint32(ret)) {
		panic(jserrors.OutOfBounds(jserrors.PhaseNative, retPtr, 4))
	}
	stack[0] = 0
	if threw {
		stack[0] = 1
	}
}

// hostFreeNative fires the release callback for a collected attachment.
func (e *WasmEngine) hostFreeNative(_ context.Context, _ api.Module, stack []uint64) {
	id := uint32(stack[0])
	att, ok := e.attachments[id]
	if !ok {
		return
	}
	delete(e.attachments, id)
	if att.free != nil {
		att.free(att.ptr)
	}
}
