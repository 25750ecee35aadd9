// Package jsbind provides a Go binding layer for embedded script engines.
//
// The library lets host code create, inspect, and invoke values living inside
// an embedded scripting-engine runtime (objects, functions, primitives,
// exceptions) without touching the engine's raw reference-counted handles
// directly.
//
// # Architecture Overview
//
// The library is organized into several packages with distinct responsibilities:
//
//	jsbind/              Root package with the raw-handle Engine boundary
//	├── binding/         Value wrapper, call results, argument lists, and the
//	│                    native-call adapter (the public embedding surface)
//	├── engine/          wazero-backed Engine driving a wasm build of a
//	│                    script engine through its exported C ABI
//	├── enginetest/      In-process reference Engine for tests and the REPL
//	├── errors/          Structured error types for host-side operations
//	├── modules/         Native modules built on top of the binding layer
//	└── cmd/jsrepl/      Script runner and interactive REPL
//
// # Quick Start
//
// Install an engine, wrap values, call into the runtime:
//
//	binding.Init(enginetest.New())
//	defer binding.Cleanup()
//
//	r := binding.Eval("1+1", false)
//	defer r.Free()
//	if r.IsOk() {
//	    fmt.Println(r.Value().GetNumber()) // 2
//	}
//
// # Ownership Model
//
// Every handle crossing the Engine boundary is reference counted. A Value
// either owns one reference (released by Free) or borrows one the engine
// holds for the duration of a call. Copying a Value acquires a new reference
// so each copy releases independently. See the binding package for the full
// contract.
//
// # Thread Safety
//
// The binding layer assumes one logical thread of control. A call into the
// engine runs to completion (or exception) before control returns. There is
// no internal locking and no cancellation of in-flight evaluation.
package jsbind
