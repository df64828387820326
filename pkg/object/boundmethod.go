package object

import (
	"github.com/kristofer/lumen/pkg/heap"
	"github.com/kristofer/lumen/pkg/value"
)

// BoundMethod pairs a receiver with the Closure a property access resolved
// to, so that calling the result later still has `this` available without
// re-doing the method lookup (spec §4.6, "OpGetProperty on a method name").
// The VM's invoke/super-invoke fusion exists specifically to skip allocating
// one of these on the hot `receiver.method(args)` path.
type BoundMethod struct {
	Receiver value.Value
	Method   heap.Reference // Closure
}

func NewBoundMethod(receiver value.Value, method heap.Reference) *BoundMethod {
	return &BoundMethod{Receiver: receiver, Method: method}
}

func (b *BoundMethod) Format(h *heap.Heap) string {
	fn, ok := h.Deref(b.Method)
	if !ok {
		return "<bound method ?>"
	}
	return fn.Format(h)
}

func (b *BoundMethod) Size() int { return 32 }

func (b *BoundMethod) TraceRefs(h *heap.Heap) {
	b.Receiver.TraceRefs(h)
	h.Mark(b.Method)
}
