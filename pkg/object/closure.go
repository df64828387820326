package object

import (
	"github.com/kristofer/lumen/pkg/heap"
)

// Closure pairs a Function with the concrete Upvalue references it captured
// at the point it was created. Every callable value the VM actually invokes
// is a Closure — even a function with zero free variables is wrapped in one
// (spec §4.6, "every call target is a Closure").
type Closure struct {
	Function heap.Reference // Function
	Upvalues []heap.Reference // Upvalue, one per Function.Upvalues entry
}

func NewClosure(fn heap.Reference, upvalues []heap.Reference) *Closure {
	return &Closure{Function: fn, Upvalues: upvalues}
}

func (c *Closure) Format(h *heap.Heap) string {
	fn, ok := h.Deref(c.Function)
	if !ok {
		return "<closure ?>"
	}
	return fn.Format(h)
}

func (c *Closure) Size() int { return 24 + len(c.Upvalues)*8 }

func (c *Closure) TraceRefs(h *heap.Heap) {
	h.Mark(c.Function)
	for _, uv := range c.Upvalues {
		h.Mark(uv)
	}
}
