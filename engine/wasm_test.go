package engine

import (
	"context"
	"errors"
	"testing"

	jserrors "github.com/wippyai/jsbind/errors"
)

// emptyModule is the smallest valid wasm binary: magic + version, no
// sections. It compiles and instantiates but exports nothing.
var emptyModule = []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}

func TestNew_InvalidBinary(t *testing.T) {
	_, err := New(context.Background(), []byte("not wasm"), nil)
	if err == nil {
		t.Fatal("Expected error for invalid binary")
	}
	if !errors.Is(err, &jserrors.Error{Phase: jserrors.PhaseLoad, Kind: jserrors.KindInvalidBinary}) {
		t.Fatalf("Expected load/invalid_binary error, got %v", err)
	}
}

func TestNew_MissingExports(t *testing.T) {
	_, err := New(context.Background(), emptyModule, nil)
	if err == nil {
		t.Fatal("Expected error for engine binary without exports")
	}
	if !errors.Is(err, &jserrors.Error{Phase: jserrors.PhaseLoad, Kind: jserrors.KindMissingExport}) {
		t.Fatalf("Expected load/missing_export error, got %v", err)
	}

	var structured *jserrors.Error
	if !errors.As(err, &structured) {
		t.Fatal("Expected structured error")
	}
	if structured.Name != fnOpen {
		t.Fatalf("Expected first missing export to be %q, got %q", fnOpen, structured.Name)
	}
}

func TestNew_MemoryLimitConfig(t *testing.T) {
	// The limit applies at instantiation; with an export-free module the
	// failure must still be missing_export, proving config plumbing does
	// not break loading.
	_, err := New(context.Background(), emptyModule, &Config{MemoryLimitPages: 256})
	if !errors.Is(err, &jserrors.Error{Phase: jserrors.PhaseLoad, Kind: jserrors.KindMissingExport}) {
		t.Fatalf("Expected load/missing_export error, got %v", err)
	}
}
