// Package engine hosts a script engine compiled to WebAssembly and adapts
// it to the binding layer's engine API.
//
// # Architecture
//
// The engine binary is a wasm32 module exposing a fixed C-style ABI: one
// export per primitive operation (value creation, refcounting, predicates,
// conversion, property access, call, eval). The export names live in abi.go.
// All value handles cross the boundary as 32-bit integers minted by the
// guest; the host never interprets them.
//
// Data crosses the boundary through guest linear memory. The host allocates
// transfer buffers with the guest's own allocator (qjs_malloc/qjs_free) so
// the guest's heap bookkeeping stays consistent.
//
// Natively implemented functions flow the other way: the guest imports an
// "env" module providing host_call_native and host_free_native, which
// dispatch into Go callbacks registered on the host side and keyed by small
// integer ids.
//
// # Fault model
//
// Script-level exceptions are ordinary results reported through the threw
// flag. A wasm trap, by contrast, means the engine instance is in an unknown
// state; the adapter panics with a structured error rather than hand back
// handles it can no longer trust.
package engine
