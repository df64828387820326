// Package object implements lumen's heap-resident object variants: String,
// Function, Upvalue, Closure, Class, Instance and BoundMethod (spec §3).
// Each type implements heap.Trace so pkg/heap can format, size and walk it
// during collection without knowing its concrete shape.
package object

import "github.com/kristofer/lumen/pkg/heap"

// String is an interned, immutable byte string (spec I4: every String with
// equal content shares one heap slot).
type String struct {
	Value string
}

// NewString allocates a new String object wrapper; callers go through
// heap.Heap.Intern so that interning actually happens.
func NewString(s string) *String {
	return &String{Value: s}
}

// StringValue satisfies the duck-typed interface heap.Collect uses to evict
// a swept string's intern-table entry.
func (s *String) StringValue() string { return s.Value }

func (s *String) Format(h *heap.Heap) string { return s.Value }

// Size approximates String's contribution to bytesAllocated: struct
// overhead plus its backing byte array.
func (s *String) Size() int { return 16 + len(s.Value) }

// TraceRefs is a no-op: strings hold no outgoing references.
func (s *String) TraceRefs(h *heap.Heap) {}
