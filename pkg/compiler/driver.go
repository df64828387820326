package compiler

import (
	"fmt"

	"github.com/kristofer/lumen/pkg/chunk"
	"github.com/kristofer/lumen/pkg/heap"
	"github.com/kristofer/lumen/pkg/object"
	"github.com/kristofer/lumen/pkg/token"
	"github.com/kristofer/lumen/pkg/value"
)

func (c *Compiler) advance() {
	c.previous = c.current
	for {
		c.current = c.lex.Next()
		if c.current.Type != token.Error {
			break
		}
		c.errorAtCurrent(c.current.Lexeme)
	}
}

func (c *Compiler) check(t token.Type) bool { return c.current.Type == t }

func (c *Compiler) match(t token.Type) bool {
	if !c.check(t) {
		return false
	}
	c.advance()
	return true
}

func (c *Compiler) consume(t token.Type, msg string) {
	if c.current.Type == t {
		c.advance()
		return
	}
	c.errorAtCurrent(msg)
}

func (c *Compiler) errorAtCurrent(msg string) { c.errorAt(c.current, msg) }
func (c *Compiler) error(msg string)          { c.errorAt(c.previous, msg) }

// errorAt records a diagnostic and enters panic mode. Panic mode suppresses
// further errors until the parser resynchronizes at the next statement
// boundary (spec §4.5, "error recovery"), so one bad token doesn't cascade
// into a screenful of misleading follow-on errors.
func (c *Compiler) errorAt(t token.Token, msg string) {
	if c.panicMode {
		return
	}
	c.panicMode = true
	c.hadError = true

	where := ""
	switch t.Type {
	case token.EOF:
		where = " at end"
	case token.Error:
		// lexical error: lexeme IS the message, don't repeat it
	default:
		where = fmt.Sprintf(" at '%s'", t.Lexeme)
	}
	c.errMessages = append(c.errMessages, fmt.Sprintf("[line %d] Error%s: %s", t.Line, where, msg))
}

// synchronize skips tokens until it finds a statement boundary, so parsing
// can resume after a syntax error instead of aborting the whole compile.
func (c *Compiler) synchronize() {
	c.panicMode = false
	for c.current.Type != token.EOF {
		if c.previous.Type == token.Semicolon {
			return
		}
		switch c.current.Type {
		case token.Class, token.Fun, token.Var, token.For, token.If,
			token.While, token.Print, token.Return:
			return
		}
		c.advance()
	}
}

func (c *Compiler) emitByte(b byte) { c.currentChunk().WriteByte(b, c.previous.Line) }
func (c *Compiler) emitOp(op chunk.OpCode) { c.currentChunk().WriteOp(op, c.previous.Line) }

func (c *Compiler) emitOps(a, b chunk.OpCode) {
	c.emitOp(a)
	c.emitOp(b)
}

func (c *Compiler) emitReturn() {
	if c.fnType == TypeInitializer {
		// initializers implicitly return `this`, which always lives in
		// local slot 0 (spec §4.6, "init() always returns the instance").
		c.emitOp(chunk.OpGetLocal)
		c.emitByte(0)
	} else {
		c.emitOp(chunk.OpNil)
	}
	c.emitOp(chunk.OpReturn)
}

// emitJump writes a jump opcode with a placeholder u16 operand and returns
// the operand's offset for patchJump to fill in once the target is known.
func (c *Compiler) emitJump(op chunk.OpCode) int {
	c.emitOp(op)
	c.emitByte(0xff)
	c.emitByte(0xff)
	return len(c.currentChunk().Code) - 2
}

func (c *Compiler) patchJump(offset int) {
	jump := len(c.currentChunk().Code) - offset - 2
	if jump > 0xffff {
		c.error("loop body too large")
		return
	}
	c.currentChunk().PatchU16(offset, uint16(jump))
}

func (c *Compiler) emitLoop(loopStart int) {
	c.emitOp(chunk.OpLoop)
	offset := len(c.currentChunk().Code) - loopStart + 2
	if offset > 0xffff {
		c.error("loop body too large")
		return
	}
	c.emitByte(byte(offset >> 8))
	c.emitByte(byte(offset))
}

func (c *Compiler) makeConstant(v value.Value) int {
	idx := c.currentChunk().AddConstant(v)
	if idx > 0xffffff {
		c.error("too many constants in one chunk")
		return 0
	}
	return idx
}

// emitConstant adds v to the constant pool and emits the load instruction
// for it, choosing OpConstant or OpConstantLong based on the pool index.
func (c *Compiler) emitConstant(v value.Value) {
	c.currentChunk().WriteConstant(c.makeConstant(v), c.previous.Line)
}

// endCompiler finalizes the function being compiled: emits the implicit
// return, allocates the Function on the heap, pins it for the remainder of
// the enclosing compiler's work, and returns its Reference. If this
// compiler has an enclosing one, control returns to it with its lexer
// position resynced.
func (c *Compiler) endCompiler() heap.Reference {
	c.emitReturn()
	c.fn.Upvalues = make([]object.UpvalueSpec, len(c.upvalues))
	for i, uv := range c.upvalues {
		c.fn.Upvalues[i] = object.UpvalueSpec{IsLocal: uv.isLocal, Index: uv.index}
	}

	ref := c.h.Alloc(heap.KindFunction, c.fn, c.pinnedRoots())
	c.fnRef = ref
	c.unpinRoots()

	if c.enclosing != nil {
		c.enclosing.previous = c.previous
		c.enclosing.current = c.current
		c.enclosing.errMessages = c.errMessages
		c.enclosing.hadError = c.enclosing.hadError || c.hadError
		c.enclosing.panicMode = c.panicMode
	}
	return ref
}

func (c *Compiler) beginScope() { c.scopeDepth++ }

func (c *Compiler) endScope() {
	c.scopeDepth--
	for len(c.locals) > 0 && c.locals[len(c.locals)-1].depth > c.scopeDepth {
		if c.locals[len(c.locals)-1].isCaptured {
			c.emitOp(chunk.OpCloseUpvalue)
		} else {
			c.emitOp(chunk.OpPop)
		}
		c.locals = c.locals[:len(c.locals)-1]
	}
}
