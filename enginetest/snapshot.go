package enginetest

import (
	"bytes"

	"github.com/wippyai/jsbind"
)

// Snapshot format: a fixed magic header followed by the compiled payload.
// The reference engine's "compiled" form is the source itself; real engines
// substitute bytecode here without changing the entry-point contract.
var snapshotMagic = []byte("JSNAP\x01")

// Compile produces a snapshot of top-level source suitable for ExecSnapshot.
func Compile(source string) []byte {
	out := make([]byte, 0, len(snapshotMagic)+len(source))
	out = append(out, snapshotMagic...)
	out = append(out, source...)
	return out
}

// ExecSnapshot executes a precompiled snapshot. A malformed snapshot
// surfaces as a thrown SyntaxError, never a native fault.
func (e *Engine) ExecSnapshot(snapshot []byte) (jsbind.Raw, bool) {
	if !bytes.HasPrefix(snapshot, snapshotMagic) {
		return e.NewError(jsbind.ErrorSyntax, "invalid snapshot header"), true
	}
	return e.Eval(string(snapshot[len(snapshotMagic):]), false)
}
