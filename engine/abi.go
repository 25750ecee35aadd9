package engine

// Host module imported by the engine binary.
const (
	hostModule     = "env"
	hostCallNative = "host_call_native"
	hostFreeNative = "host_free_native"
)

// Exports the engine binary must provide. Handles are i32, numbers f64,
// buffers are (ptr, len) pairs in guest linear memory. Operations that can
// throw take a retPtr out-parameter and return the threw flag.
const (
	fnOpen   = "qjs_open"   // () -> ctx
	fnClose  = "qjs_close"  // (ctx)
	fnMalloc = "qjs_malloc" // (size) -> ptr
	fnFree   = "qjs_free"   // (ptr)

	fnUndefined   = "qjs_undefined"    // (ctx) -> v
	fnNull        = "qjs_null"         // (ctx) -> v
	fnBool        = "qjs_bool"         // (ctx, i32) -> v
	fnNumber      = "qjs_number"       // (ctx, f64) -> v
	fnString      = "qjs_string"       // (ctx, ptr, len) -> v
	fnArrayBuffer = "qjs_array_buffer" // (ctx, ptr, len) -> v
	fnObject      = "qjs_object"       // (ctx) -> v
	fnFunction    = "qjs_function"     // (ctx, id) -> v
	fnError       = "qjs_error"        // (ctx, kind, ptr, len) -> v

	fnAcquire = "qjs_acquire" // (ctx, v)
	fnRelease = "qjs_release" // (ctx, v)

	fnIsUndefined = "qjs_is_undefined" // (ctx, v) -> i32
	fnIsNull      = "qjs_is_null"
	fnIsBool      = "qjs_is_bool"
	fnIsNumber    = "qjs_is_number"
	fnIsString    = "qjs_is_string"
	fnIsObject    = "qjs_is_object"
	fnIsFunction  = "qjs_is_function"
	fnIsArray     = "qjs_is_array"

	fnToBool   = "qjs_to_bool"   // (ctx, v) -> i32
	fnToNumber = "qjs_to_number" // (ctx, v) -> f64
	fnToString = "qjs_to_string" // (ctx, v, lenPtr) -> ptr; caller frees

	fnGetProperty = "qjs_get_property" // (ctx, obj, ptr, len) -> v
	fnSetProperty = "qjs_set_property" // (ctx, obj, ptr, len, v)
	fnSetNative   = "qjs_set_native"   // (ctx, obj, id)
	fnGetNative   = "qjs_get_native"   // (ctx, obj) -> id (0 = none)

	fnCall         = "qjs_call"          // (ctx, fn, this, argvPtr, argc, retPtr) -> threw
	fnEval         = "qjs_eval"          // (ctx, srcPtr, srcLen, strict, retPtr) -> threw
	fnExecSnapshot = "qjs_exec_snapshot" // (ctx, ptr, len, retPtr) -> threw

	fnGlobal = "qjs_global" // (ctx) -> v
)

var requiredExports = []string{
	fnOpen, fnClose, fnMalloc, fnFree,
	fnUndefined, fnNull, fnBool, fnNumber, fnString, fnArrayBuffer,
	fnObject, fnFunction, fnError,
	fnAcquire, fnRelease,
	fnIsUndefined, fnIsNull, fnIsBool, fnIsNumber, fnIsString,
	fnIsObject, fnIsFunction, fnIsArray,
	fnToBool, fnToNumber, fnToString,
	fnGetProperty, fnSetProperty, fnSetNative, fnGetNative,
	fnCall, fnEval, fnExecSnapshot, fnGlobal,
}
