package enginetest

import (
	"github.com/wippyai/jsbind"
)

// Immediate handles. Everything at heapBase and above indexes the entry table.
const (
	hInvalid   jsbind.Raw = 0
	hUndefined jsbind.Raw = 1
	hNull      jsbind.Raw = 2
	hTrue      jsbind.Raw = 3
	hFalse     jsbind.Raw = 4

	heapBase jsbind.Raw = 16
)

type kind uint8

const (
	kindNumber kind = iota
	kindString
	kindObject
	kindFunction
	kindArray
)

type entry struct {
	props      map[string]jsbind.Raw
	fn         jsbind.NativeFunc
	nativeFree jsbind.FreeFunc
	str        string
	data       []byte
	num        float64
	native     uintptr
	refs       uint32
	errKind    jsbind.ErrorKind
	kind       kind
	isError    bool
	hasNative  bool
	valid      bool
}

// store is the refcounted handle table. Entries are reused through a free
// list once their count reaches zero. Single-threaded by contract.
type store struct {
	entries  []entry
	freeList []jsbind.Raw
}

func newStore() *store {
	return &store{
		entries:  make([]entry, 0, 64),
		freeList: make([]jsbind.Raw, 0, 16),
	}
}

// alloc stores a fresh entry with one reference and returns its handle.
func (s *store) alloc(e entry) jsbind.Raw {
	e.refs = 1
	e.valid = true

	if len(s.freeList) > 0 {
		h := s.freeList[len(s.freeList)-1]
		s.freeList = s.freeList[:len(s.freeList)-1]
		s.entries[h-heapBase] = e
		return h
	}

	s.entries = append(s.entries, e)
	return heapBase + jsbind.Raw(len(s.entries)-1)
}

func isImmediate(h jsbind.Raw) bool {
	return h < heapBase
}

// get returns the entry for a heap handle, or nil for immediates and stale
// handles.
func (s *store) get(h jsbind.Raw) *entry {
	if isImmediate(h) {
		return nil
	}
	idx := h - heapBase
	if int(idx) >= len(s.entries) {
		return nil
	}
	e := &s.entries[idx]
	if !e.valid {
		return nil
	}
	return e
}

func (s *store) acquire(h jsbind.Raw) {
	if e := s.get(h); e != nil {
		e.refs++
	}
}

// release decrements the count and drops the entry when it reaches zero:
// the native release callback fires exactly once, then every property
// reference is returned.
func (s *store) release(h jsbind.Raw) {
	e := s.get(h)
	if e == nil {
		return
	}
	if e.refs == 0 {
		panic("enginetest: release on handle with zero references")
	}
	e.refs--
	if e.refs > 0 {
		return
	}

	if e.hasNative && e.nativeFree != nil {
		free := e.nativeFree
		ptr := e.native
		e.nativeFree = nil
		e.hasNative = false
		free(ptr)
	}

	props := e.props
	e.props = nil
	e.fn = nil
	e.data = nil
	e.str = ""
	e.valid = false
	s.freeList = append(s.freeList, h)

	for _, p := range props {
		s.release(p)
	}
}

// refs reports the live reference count for a heap handle; immediates and
// dropped handles report 0.
func (s *store) refs(h jsbind.Raw) uint32 {
	if e := s.get(h); e != nil {
		return e.refs
	}
	return 0
}

// live counts valid heap entries. Used by leak checks in tests.
func (s *store) live() int {
	n := 0
	for i := range s.entries {
		if s.entries[i].valid {
			n++
		}
	}
	return n
}
