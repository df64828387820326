package object

import (
	"github.com/kristofer/lumen/pkg/heap"
	"github.com/kristofer/lumen/pkg/value"
)

// Upvalue is the indirection a Closure uses to share a captured local with
// its enclosing frame. While Closed is false, StackIndex names a slot on the
// VM's value stack that the VM must keep consulting; once the frame that
// owns the slot returns, the VM copies the slot's value into Closed and
// flips IsClosed to true (spec §4.6, "close_upvalues").
//
// Go has no way to alias a stack slot the way a C pointer or Rust &mut can,
// so an open Upvalue only remembers which slot it was opened over and the
// VM reads and writes its value stack at that index. The VM's list of open
// upvalues, sorted by descending stack index, is used to find an existing
// one to reuse and to close them.
type Upvalue struct {
	StackIndex int // valid only while IsClosed is false
	IsClosed   bool
	Closed     value.Value
}

// NewOpenUpvalue returns an upvalue pointing at a not-yet-closed stack slot.
func NewOpenUpvalue(stackIndex int) *Upvalue {
	return &Upvalue{StackIndex: stackIndex}
}

func (u *Upvalue) Format(h *heap.Heap) string { return "<upvalue>" }

func (u *Upvalue) Size() int { return 24 }

func (u *Upvalue) TraceRefs(h *heap.Heap) {
	if u.IsClosed {
		u.Closed.TraceRefs(h)
	}
}
