// Package chunk implements lumen's bytecode container: a flat byte stream,
// a parallel line-number table for error reporting, and a constant pool
// (spec §4.3). Chunks are produced by pkg/compiler and consumed by pkg/vm.
package chunk

import (
	"fmt"

	"github.com/kristofer/lumen/pkg/value"
)

// OpCode is a single bytecode instruction tag. Operand widths are fixed per
// opcode (see the table in spec §4.3) so the VM and disassembler can both
// decode a stream without a side table.
type OpCode byte

const (
	OpConstant     OpCode = iota // u8 constant index
	OpConstantLong               // u24 constant index
	OpNil
	OpTrue
	OpFalse
	OpPop
	OpGetLocal     // u8 slot
	OpSetLocal     // u8 slot
	OpGetGlobal    // u8 constant index (name)
	OpDefineGlobal // u8 constant index (name)
	OpSetGlobal    // u8 constant index (name)
	OpGetUpvalue   // u8 upvalue index
	OpSetUpvalue   // u8 upvalue index
	OpGetProperty  // u8 constant index (name)
	OpSetProperty  // u8 constant index (name)
	OpGetSuper     // u8 constant index (name)
	OpEqual
	OpGreater
	OpLess
	OpAdd
	OpSubtract
	OpMultiply
	OpDivide
	OpNot
	OpNegate
	OpPrint
	OpJump        // u16 offset, forward
	OpJumpIfFalse // u16 offset, forward
	OpLoop        // u16 offset, backward
	OpCall        // u8 arg count
	OpInvoke      // u8 constant index (name), u8 arg count
	OpSuperInvoke // u8 constant index (name), u8 arg count
	OpClosure     // u8 constant index (function), then per-upvalue (isLocal u8, index u8) pairs
	OpCloseUpvalue
	OpReturn
	OpClass // u8 constant index (name)
	OpInherit
	OpMethod // u8 constant index (name)
)

var opNames = [...]string{
	"OP_CONSTANT", "OP_CONSTANT_LONG", "OP_NIL", "OP_TRUE", "OP_FALSE", "OP_POP",
	"OP_GET_LOCAL", "OP_SET_LOCAL", "OP_GET_GLOBAL", "OP_DEFINE_GLOBAL", "OP_SET_GLOBAL",
	"OP_GET_UPVALUE", "OP_SET_UPVALUE", "OP_GET_PROPERTY", "OP_SET_PROPERTY", "OP_GET_SUPER",
	"OP_EQUAL", "OP_GREATER", "OP_LESS", "OP_ADD", "OP_SUBTRACT", "OP_MULTIPLY", "OP_DIVIDE",
	"OP_NOT", "OP_NEGATE", "OP_PRINT", "OP_JUMP", "OP_JUMP_IF_FALSE", "OP_LOOP",
	"OP_CALL", "OP_INVOKE", "OP_SUPER_INVOKE", "OP_CLOSURE", "OP_CLOSE_UPVALUE",
	"OP_RETURN", "OP_CLASS", "OP_INHERIT", "OP_METHOD",
}

func (op OpCode) String() string {
	if int(op) < len(opNames) {
		return opNames[op]
	}
	return fmt.Sprintf("OP_UNKNOWN(%d)", byte(op))
}

// Chunk holds one compiled function body or script's bytecode, one-to-one
// with a source-level function (spec §3, "Chunk").
type Chunk struct {
	Code  []byte
	Lines []int // Lines[i] is the source line that emitted Code[i]

	Constants []value.Value
}

// New returns an empty chunk.
func New() *Chunk {
	return &Chunk{}
}

// WriteByte appends a raw byte, recording line as its source line.
func (c *Chunk) WriteByte(b byte, line int) int {
	c.Code = append(c.Code, b)
	c.Lines = append(c.Lines, line)
	return len(c.Code) - 1
}

// WriteOp appends an opcode byte.
func (c *Chunk) WriteOp(op OpCode, line int) int {
	return c.WriteByte(byte(op), line)
}

// WriteU16 appends a big-endian 16-bit operand (jump offsets).
func (c *Chunk) WriteU16(v uint16, line int) {
	c.WriteByte(byte(v>>8), line)
	c.WriteByte(byte(v), line)
}

// PatchU16 overwrites the u16 operand starting at offset, used once a jump's
// forward target is known (spec §4.5, "jump-patching").
func (c *Chunk) PatchU16(offset int, v uint16) {
	c.Code[offset] = byte(v >> 8)
	c.Code[offset+1] = byte(v)
}

// ReadU16 decodes a big-endian 16-bit operand starting at offset.
func (c *Chunk) ReadU16(offset int) uint16 {
	return uint16(c.Code[offset])<<8 | uint16(c.Code[offset+1])
}

// AddConstant appends v to the constant pool and returns its index.
// WriteConstant then chooses OpConstant (index < 256) or OpConstantLong
// (index < 2^24) based on that index.
func (c *Chunk) AddConstant(v value.Value) int {
	c.Constants = append(c.Constants, v)
	return len(c.Constants) - 1
}

// WriteConstant emits the correct load opcode (OpConstant or
// OpConstantLong) for a constant at poolIndex, per I3's 24-bit ceiling.
func (c *Chunk) WriteConstant(poolIndex int, line int) {
	if poolIndex < 256 {
		c.WriteOp(OpConstant, line)
		c.WriteByte(byte(poolIndex), line)
		return
	}
	c.WriteOp(OpConstantLong, line)
	c.WriteByte(byte(poolIndex>>16), line)
	c.WriteByte(byte(poolIndex>>8), line)
	c.WriteByte(byte(poolIndex), line)
}

// ReadConstantIndex decodes the constant-pool index for the OpConstant or
// OpConstantLong instruction at offset, returning the index and the total
// instruction width in bytes (including the opcode byte).
func (c *Chunk) ReadConstantIndex(offset int) (index, width int) {
	switch OpCode(c.Code[offset]) {
	case OpConstant:
		return int(c.Code[offset+1]), 2
	case OpConstantLong:
		idx := int(c.Code[offset+1])<<16 | int(c.Code[offset+2])<<8 | int(c.Code[offset+3])
		return idx, 4
	default:
		return 0, 1
	}
}

// LineFor reports the source line for the byte at offset.
func (c *Chunk) LineFor(offset int) int {
	if offset < 0 || offset >= len(c.Lines) {
		return -1
	}
	return c.Lines[offset]
}
