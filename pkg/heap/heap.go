// Package heap implements the tracing mark–sweep heap that backs every
// heap object lumen allocates: strings, functions, closures,
// classes, instances, bound methods and upvalues.
//
// Design:
//
// The heap is an indexed slab: a slice of slots, each holding either a live
// Object or nothing. A Reference is an opaque {index, kind} handle into that
// slab — copyable, comparable, and never an owner. Freed slots are recorded
// on a free list and reused by the next Alloc, so the slab never shrinks but
// also never grows without bound under steady-state allocation.
//
// Collection is a textbook mark–sweep: clear every mark, walk the root set
// (and anything reachable from it) marking as you go, then sweep every slot
// that came out unmarked. There is no write barrier because there is no
// concurrent mutation and no generations — see spec §5.
package heap

import (
	"github.com/kristofer/lumen/internal/invariant"
)

// ObjectKind tags the dynamic type behind a Reference so Deref can type-assert
// safely and so Value (which stores kind + Reference) knows what it's holding.
type ObjectKind uint8

const (
	KindString ObjectKind = iota
	KindFunction
	KindUpvalue
	KindClosure
	KindClass
	KindInstance
	KindBoundMethod
)

func (k ObjectKind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindFunction:
		return "function"
	case KindUpvalue:
		return "upvalue"
	case KindClosure:
		return "closure"
	case KindClass:
		return "class"
	case KindInstance:
		return "instance"
	case KindBoundMethod:
		return "bound method"
	default:
		return "unknown"
	}
}

// Reference is an opaque, copyable handle to a heap-resident object.
// Equality is slot equality: two references are the same object iff their
// Index and Kind both match. The zero Reference is never valid (Index 0 is
// reserved by construction — see New).
type Reference struct {
	Index uint32
	Kind  ObjectKind
}

// Trace is the capability every heap object implements: format itself for
// display, report its own contribution to bytesAllocated, and enumerate the
// References it holds so the collector can mark them.
type Trace interface {
	Format(h *Heap) string
	Size() int
	TraceRefs(h *Heap)
}

type slot struct {
	object Trace
	marked bool
	live   bool
}

const (
	initialGCThreshold = 1 << 20 // 1 MiB, per spec §4.1
	gcGrowthFactor      = 2
)

// Heap owns every object lumen allocates and the string intern table.
type Heap struct {
	slots []slot
	free  []uint32

	intern map[string]Reference

	bytesAllocated int64
	nextGC         int64

	// stress forces a collection on every Alloc; used only by tests
	// that must prove a value is correctly rooted (spec §9, "GC timing").
	stress bool

	// extraRoots lets a collaborator outside the VM (namely the
	// compiler, mid-compilation) contribute additional roots for the
	// duration it holds pinned objects. See spec §4.1 "Compiler roots".
	extraRoots []func() []Reference

	// collecting guards against Alloc re-entering Collect from within
	// a trace callback.
	collecting bool
}

// New returns an empty heap with the default GC threshold.
func New() *Heap {
	return &Heap{
		slots:  make([]slot, 1, 64), // slot 0 is permanently reserved/dead
		intern: make(map[string]Reference),
		nextGC: initialGCThreshold,
	}
}

// SetStressGC toggles collect-on-every-allocation mode (test only).
func (h *Heap) SetStressGC(enabled bool) { h.stress = enabled }

// BytesAllocated reports the heap's current live-object byte estimate.
func (h *Heap) BytesAllocated() int64 { return h.bytesAllocated }

// NextGCThreshold reports the byte count that triggers the next collection.
func (h *Heap) NextGCThreshold() int64 { return h.nextGC }

// SlotCount reports the number of slab entries, live or free (diagnostic only).
func (h *Heap) SlotCount() int { return len(h.slots) }

// AddRootProvider registers a callback contributing additional GC roots and
// returns a function that unregisters it. Used by the compiler to pin
// currently-compiling Functions (invariant I6) for the duration of Compile.
func (h *Heap) AddRootProvider(fn func() []Reference) (remove func()) {
	h.extraRoots = append(h.extraRoots, fn)
	idx := len(h.extraRoots) - 1
	return func() {
		h.extraRoots[idx] = nil
	}
}

// Alloc stores obj in a free (or new) slot, tagged with kind, and returns its
// Reference. If bytesAllocated already exceeds nextGC (or stress mode is
// on), a collection runs first against the supplied roots.
func (h *Heap) Alloc(kind ObjectKind, obj Trace, roots []Reference) Reference {
	if !h.collecting && (h.stress || h.bytesAllocated > h.nextGC) {
		h.Collect(roots)
	}

	var idx uint32
	if n := len(h.free); n > 0 {
		idx = h.free[n-1]
		h.free = h.free[:n-1]
		h.slots[idx] = slot{object: obj, live: true}
	} else {
		idx = uint32(len(h.slots))
		h.slots = append(h.slots, slot{object: obj, live: true})
	}

	h.bytesAllocated += int64(obj.Size())
	return Reference{Index: idx, Kind: kind}
}

// Intern returns the Reference for a String object holding s, allocating and
// registering one if this is the first time s has been seen (spec I4).
func (h *Heap) Intern(s string, roots []Reference, makeString func(string) Trace) Reference {
	if ref, ok := h.intern[s]; ok {
		return ref
	}
	ref := h.Alloc(KindString, makeString(s), roots)
	h.intern[s] = ref
	return ref
}

// InternedString looks up an already-interned string without allocating.
func (h *Heap) InternedString(s string) (Reference, bool) {
	ref, ok := h.intern[s]
	return ref, ok
}

// Deref resolves ref to its live object, or reports ok=false if the slot is
// dead or out of range (a dangling Reference should never occur if I1
// holds; this is a defensive check). Slots do not record a kind, so ref.Kind
// is not compared against the stored object, and a Reference to a slot
// that was freed and reused resolves to the new occupant.
func (h *Heap) Deref(ref Reference) (Trace, bool) {
	if int(ref.Index) >= len(h.slots) {
		return nil, false
	}
	s := h.slots[ref.Index]
	if !s.live {
		return nil, false
	}
	return s.object, true
}

// MustDeref is Deref but panics on a dangling reference; used internally
// where a dangling reference would indicate a GC-soundness bug (P2), not a
// recoverable runtime condition.
func (h *Heap) MustDeref(ref Reference) Trace {
	obj, ok := h.Deref(ref)
	invariant.Check(ok, "dereferenced a dangling reference %v", ref)
	return obj
}

// Mark marks ref live for this collection cycle and recursively traces its
// outgoing references. Safe to call on an already-marked ref (no-op), which
// is what keeps cyclic graphs from infinite-looping.
func (h *Heap) Mark(ref Reference) {
	if int(ref.Index) >= len(h.slots) {
		return
	}
	s := &h.slots[ref.Index]
	if !s.live || s.marked {
		return
	}
	s.marked = true
	s.object.TraceRefs(h)
}

// Collect runs one mark–sweep cycle against roots plus any registered extra
// root providers (spec §4.1 algorithm, steps 1–4).
func (h *Heap) Collect(roots []Reference) {
	h.collecting = true
	defer func() { h.collecting = false }()

	for i := range h.slots {
		h.slots[i].marked = false
	}

	for _, r := range roots {
		h.Mark(r)
	}
	for _, provider := range h.extraRoots {
		if provider == nil {
			continue
		}
		for _, r := range provider() {
			h.Mark(r)
		}
	}

	for idx := range h.slots {
		s := &h.slots[idx]
		if !s.live || s.marked {
			continue
		}
		h.bytesAllocated -= int64(s.object.Size())
		if str, ok := s.object.(interface{ StringValue() string }); ok {
			delete(h.intern, str.StringValue())
		}
		s.object = nil
		s.live = false
		h.free = append(h.free, uint32(idx))
	}

	h.nextGC = h.bytesAllocated * gcGrowthFactor
	if h.nextGC < initialGCThreshold {
		h.nextGC = initialGCThreshold
	}
}
