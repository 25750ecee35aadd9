// Package errors provides structured error types for the jsbind library.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error
// category). They cover host-side fallible operations: loading an engine
// binary, registering native modules, driving the wasm boundary. Script-level
// failures never appear here; those travel as exception results through the
// binding package.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseLoad, errors.KindInvalidBinary).
//		Detail("truncated header").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.MissingExport(errors.PhaseLoad, "qjs_eval")
//	err := errors.NotInitialized(errors.PhaseCall, "engine")
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
