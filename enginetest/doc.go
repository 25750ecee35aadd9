// Package enginetest provides an in-process reference implementation of the
// jsbind.Engine boundary for tests, examples, and the REPL's built-in mode.
//
// It models what the binding layer needs from a real engine: a reference-
// counted handle table with free-list reuse, property tables, native-data
// attachment with release callbacks, standard error kinds, native function
// invocation, and a minimal expression evaluator behind Eval/ExecSnapshot.
//
// # Handle Model
//
// Undefined, null, true, and false are immediate handles: Acquire/Release on
// them are no-ops, matching how real engines encode such values without heap
// cells. Every other value lives in a heap entry whose reference count drops
// to zero exactly when the last owner releases it; at that point attached
// native data is released and property references are returned.
//
// # Evaluator
//
// Eval accepts ;-separated expression statements over number, string,
// boolean, null, and undefined literals, the operators + - * / % and unary
// minus, parentheses, global identifiers, calls into function values, and
// throw statements. This subset exists to exercise the binding layer (native
// calls included) from script source; it is a test double, not a language
// implementation.
package enginetest
