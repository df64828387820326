package object

import (
	"fmt"

	"github.com/kristofer/lumen/pkg/chunk"
	"github.com/kristofer/lumen/pkg/heap"
)

// UpvalueSpec tells a Closure, at the moment it wraps a Function, where each
// of the function's upvalues comes from: a local slot in the *enclosing*
// frame (IsLocal true) or an upvalue already captured by the enclosing
// closure (IsLocal false). The compiler emits one of these per captured
// variable (spec §4.5, "upvalue resolution").
type UpvalueSpec struct {
	IsLocal bool
	Index   int
}

// Function is a compiled function body: its bytecode chunk, arity, name and
// the upvalue layout a Closure needs to capture around it. Functions are
// immutable once compiled and are shared by every Closure wrapping them.
type Function struct {
	Name    heap.Reference // String, zero Reference for the implicit top-level script
	Arity   int
	Chunk   *chunk.Chunk
	Upvalues []UpvalueSpec
}

// NewFunction returns an empty function ready for the compiler to emit into.
func NewFunction() *Function {
	return &Function{Chunk: chunk.New()}
}

// UpvalueCount reports how many upvalues this function captures; used by
// chunk.Disassemble to size the Closure instruction's variable trailer.
func (f *Function) UpvalueCount() int { return len(f.Upvalues) }

func (f *Function) Format(h *heap.Heap) string {
	if f.Name.Index == 0 {
		return "<script>"
	}
	name, ok := h.Deref(f.Name)
	if !ok {
		return "<fn ?>"
	}
	return fmt.Sprintf("<fn %s>", name.Format(h))
}

// Size accounts for the function struct plus its chunk's backing storage and
// its upvalue spec slice, mirroring how the reference implementation sums a
// Function's own size with its vectors' capacities.
func (f *Function) Size() int {
	size := 40
	if f.Chunk != nil {
		size += len(f.Chunk.Code) + len(f.Chunk.Lines)*8 + len(f.Chunk.Constants)*24
	}
	size += len(f.Upvalues) * 16
	return size
}

// TraceRefs marks the function's name and every constant in its chunk that
// carries a reference (nested function constants, interned strings).
func (f *Function) TraceRefs(h *heap.Heap) {
	if f.Name.Index != 0 {
		h.Mark(f.Name)
	}
	if f.Chunk == nil {
		return
	}
	for _, c := range f.Chunk.Constants {
		c.TraceRefs(h)
	}
}
