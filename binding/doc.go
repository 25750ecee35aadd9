// Package binding is the public embedding surface of jsbind: value wrappers,
// call results, argument lists, and the adapter that turns Go handlers into
// engine-callable native functions.
//
// # Lifecycle
//
// Init must run exactly once before any other operation; Cleanup must run
// exactly once at shutdown and invalidates the Null/Undefined singletons:
//
//	binding.Init(eng)
//	defer binding.Cleanup()
//
// # Ownership
//
// A Value owns one engine reference unless constructed as borrowed
// (NewRaw with owned=false, or the wrappers a CallInfo exposes). Free
// releases the owned reference; Copy acquires a new one so each wrapper
// releases independently. Violations of this contract (double release,
// use after Cleanup) corrupt engine handle state and are treated as fatal.
//
// # Errors
//
// Script-level failures travel as Result values with an exception
// discriminant, or as CallInfo.Throw inside native handlers. They never
// unwind the Go stack. Programming errors (argument list overflow, double
// Return/Throw, use before Init) panic.
//
// # Native Functions
//
// Wrap adapts a Handler to the engine's raw calling convention:
//
//	obj.SetMethod("greet", func(c *binding.CallInfo) {
//	    name := c.Arg(0).GetString()
//	    v := binding.NewString("hello " + name)
//	    defer v.Free()
//	    c.Return(v)
//	})
package binding
