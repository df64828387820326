package chunk

import (
	"fmt"

	"github.com/kristofer/lumen/pkg/heap"
	"github.com/kristofer/lumen/pkg/value"
)

// Row is one disassembled instruction, shaped for tabular rendering
// (cmd/lumen's `disasm` feeds these straight into a tablewriter table).
type Row struct {
	Offset  int
	Line    int
	SameLine bool // true if this instruction shares a line with the previous one
	Name    string
	Operand string
}

// Disassemble walks the whole chunk and returns one Row per instruction.
// h is used only to format constant operands for display; a nil heap still
// works for non-reference constants (numbers, bools, nil).
func Disassemble(c *Chunk, h *heap.Heap) []Row {
	var rows []Row
	offset := 0
	prevLine := -1
	for offset < len(c.Code) {
		line := c.LineFor(offset)
		row := Row{Offset: offset, Line: line, SameLine: line == prevLine}
		prevLine = line

		op := OpCode(c.Code[offset])
		name, operand, width := describe(c, offset, op, h)
		row.Name = name
		row.Operand = operand
		rows = append(rows, row)
		offset += width
	}
	return rows
}

func describe(c *Chunk, offset int, op OpCode, h *heap.Heap) (name, operand string, width int) {
	switch op {
	case OpConstant, OpConstantLong:
		idx, w := c.ReadConstantIndex(offset)
		return op.String(), formatConstant(c.Constants[idx], h), w
	case OpGetLocal, OpSetLocal, OpGetUpvalue, OpSetUpvalue, OpCall:
		return op.String(), fmt.Sprintf("%d", c.Code[offset+1]), 2
	case OpGetGlobal, OpDefineGlobal, OpSetGlobal, OpGetProperty, OpSetProperty,
		OpGetSuper, OpClass, OpMethod:
		idx := int(c.Code[offset+1])
		return op.String(), formatConstant(c.Constants[idx], h), 2
	case OpInvoke, OpSuperInvoke:
		idx := int(c.Code[offset+1])
		argc := c.Code[offset+2]
		return op.String(), fmt.Sprintf("%s (%d args)", formatConstant(c.Constants[idx], h), argc), 3
	case OpJump, OpJumpIfFalse:
		jump := c.ReadU16(offset + 1)
		return op.String(), fmt.Sprintf("-> %d", offset+3+int(jump)), 3
	case OpLoop:
		jump := c.ReadU16(offset + 1)
		return op.String(), fmt.Sprintf("-> %d", offset+3-int(jump)), 3
	case OpClosure:
		idx := int(c.Code[offset+1])
		fn := c.Constants[idx]
		width = 2
		upvalueCount := 0
		if h != nil {
			if fnObj, ok := h.Deref(fn.Ref()); ok {
				if f, ok := fnObj.(interface{ UpvalueCount() int }); ok {
					upvalueCount = f.UpvalueCount()
				}
			}
		}
		width += upvalueCount * 2
		return op.String(), fmt.Sprintf("%s (%d upvalues)", formatConstant(fn, h), upvalueCount), width
	default:
		return op.String(), "", 1
	}
}

func formatConstant(v value.Value, h *heap.Heap) string {
	if h == nil {
		return v.Kind().String()
	}
	return v.Format(h)
}
