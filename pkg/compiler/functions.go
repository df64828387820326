package compiler

import (
	"github.com/kristofer/lumen/pkg/chunk"
	"github.com/kristofer/lumen/pkg/token"
	"github.com/kristofer/lumen/pkg/value"
)

func (c *Compiler) funDeclaration() {
	global := c.parseVariable("expect function name")
	c.markInitialized()
	c.compileFunction(TypeFunction, c.previous.Lexeme)
	c.defineVariable(global)
}

// compileFunction pushes a nested Compiler for one function body, parses
// its parameter list and block, then closes over it: emits OpClosure with
// the function constant plus one (isLocal, index) pair per captured
// upvalue, exactly as the finished nested Compiler recorded them (spec
// §4.6, "OpClosure variable trailer").
func (c *Compiler) compileFunction(fnType FunctionType, name string) {
	nested := newCompiler(c, c.h, nil, fnType, name)
	nested.beginScope()

	nested.consume(token.LeftParen, "expect '(' after function name")
	if !nested.check(token.RightParen) {
		for {
			nested.fn.Arity++
			if nested.fn.Arity > 255 {
				nested.errorAtCurrent("can't have more than 255 parameters")
			}
			constant := nested.parseVariable("expect parameter name")
			nested.defineVariable(constant)
			if !nested.match(token.Comma) {
				break
			}
		}
	}
	nested.consume(token.RightParen, "expect ')' after parameters")
	nested.consume(token.LeftBrace, "expect '{' before function body")
	nested.block()

	fnRef := nested.endCompiler()

	c.emitOp(chunk.OpClosure)
	idx := c.makeConstant(value.Function(fnRef))
	c.currentChunk().WriteByte(byte(idx), c.previous.Line)
	for _, uv := range nested.upvalues {
		isLocal := byte(0)
		if uv.isLocal {
			isLocal = 1
		}
		c.emitByte(isLocal)
		c.emitByte(byte(uv.index))
	}
}
