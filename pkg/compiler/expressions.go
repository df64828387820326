package compiler

import (
	"strconv"

	"github.com/kristofer/lumen/pkg/chunk"
	"github.com/kristofer/lumen/pkg/token"
	"github.com/kristofer/lumen/pkg/value"
)

func (c *Compiler) grouping(canAssign bool) {
	c.expression()
	c.consume(token.RightParen, "expect ')' after expression")
}

func (c *Compiler) number(canAssign bool) {
	n, err := strconv.ParseFloat(c.previous.Lexeme, 64)
	if err != nil {
		c.error("invalid number literal")
		return
	}
	c.emitConstant(value.Number(n))
}

func (c *Compiler) stringLiteral(canAssign bool) {
	raw := c.previous.Lexeme
	s := raw[1 : len(raw)-1] // strip surrounding quotes
	ref := c.intern(s)
	c.emitConstant(value.String(ref))
}

func (c *Compiler) literal(canAssign bool) {
	switch c.previous.Type {
	case token.False:
		c.emitOp(chunk.OpFalse)
	case token.Nil:
		c.emitOp(chunk.OpNil)
	case token.True:
		c.emitOp(chunk.OpTrue)
	}
}

func (c *Compiler) unary(canAssign bool) {
	opType := c.previous.Type
	c.parsePrecedence(PrecUnary)
	switch opType {
	case token.Minus:
		c.emitOp(chunk.OpNegate)
	case token.Bang:
		c.emitOp(chunk.OpNot)
	}
}

func (c *Compiler) binary(canAssign bool) {
	opType := c.previous.Type
	rule := ruleFor(opType)
	c.parsePrecedence(rule.Precedence + 1)

	switch opType {
	case token.BangEqual:
		c.emitOps(chunk.OpEqual, chunk.OpNot)
	case token.EqualEqual:
		c.emitOp(chunk.OpEqual)
	case token.Greater:
		c.emitOp(chunk.OpGreater)
	case token.GreaterEqual:
		c.emitOps(chunk.OpLess, chunk.OpNot)
	case token.Less:
		c.emitOp(chunk.OpLess)
	case token.LessEqual:
		c.emitOps(chunk.OpGreater, chunk.OpNot)
	case token.Plus:
		c.emitOp(chunk.OpAdd)
	case token.Minus:
		c.emitOp(chunk.OpSubtract)
	case token.Star:
		c.emitOp(chunk.OpMultiply)
	case token.Slash:
		c.emitOp(chunk.OpDivide)
	}
}

func (c *Compiler) and_(canAssign bool) {
	endJump := c.emitJump(chunk.OpJumpIfFalse)
	c.emitOp(chunk.OpPop)
	c.parsePrecedence(PrecAnd)
	c.patchJump(endJump)
}

func (c *Compiler) or_(canAssign bool) {
	elseJump := c.emitJump(chunk.OpJumpIfFalse)
	endJump := c.emitJump(chunk.OpJump)
	c.patchJump(elseJump)
	c.emitOp(chunk.OpPop)
	c.parsePrecedence(PrecOr)
	c.patchJump(endJump)
}

// variable resolves an identifier reference, falling through local ->
// upvalue -> global in that order (spec §4.5, "globals by default"), and
// compiles `= expr` after it into a store when canAssign permits.
func (c *Compiler) variable(canAssign bool) {
	c.namedVariable(c.previous.Lexeme, canAssign)
}

func (c *Compiler) namedVariable(name string, canAssign bool) {
	var getOp, setOp chunk.OpCode
	arg := c.resolveLocal(name)
	if arg != -1 {
		getOp, setOp = chunk.OpGetLocal, chunk.OpSetLocal
	} else if arg = c.resolveUpvalue(name); arg != -1 {
		getOp, setOp = chunk.OpGetUpvalue, chunk.OpSetUpvalue
	} else {
		arg = c.identifierConstant(name)
		getOp, setOp = chunk.OpGetGlobal, chunk.OpSetGlobal
	}

	if canAssign && c.match(token.Equal) {
		c.expression()
		c.emitOp(setOp)
		c.emitByte(byte(arg))
		return
	}
	c.emitOp(getOp)
	c.emitByte(byte(arg))
}

// call compiles a `(args...)` call suffix following a primary expression.
func (c *Compiler) call(canAssign bool) {
	argCount := c.argumentList()
	c.emitOp(chunk.OpCall)
	c.emitByte(byte(argCount))
}

func (c *Compiler) argumentList() int {
	count := 0
	if !c.check(token.RightParen) {
		for {
			c.expression()
			if count == 255 {
				c.error("can't have more than 255 arguments")
			}
			count++
			if !c.match(token.Comma) {
				break
			}
		}
	}
	c.consume(token.RightParen, "expect ')' after arguments")
	return count
}

// dot compiles `.name`, `.name = expr`, and the invoke-fusion fast path
// `.name(args)` which skips materializing a BoundMethod (spec §4.6,
// "invoke fusion").
func (c *Compiler) dot(canAssign bool) {
	c.consume(token.Identifier, "expect property name after '.'")
	name := c.identifierConstant(c.previous.Lexeme)

	switch {
	case canAssign && c.match(token.Equal):
		c.expression()
		c.emitOp(chunk.OpSetProperty)
		c.emitByte(byte(name))
	case c.match(token.LeftParen):
		argCount := c.argumentList()
		c.emitOp(chunk.OpInvoke)
		c.emitByte(byte(name))
		c.emitByte(byte(argCount))
	default:
		c.emitOp(chunk.OpGetProperty)
		c.emitByte(byte(name))
	}
}

func (c *Compiler) this_(canAssign bool) {
	if c.class == nil {
		c.error("can't use 'this' outside of a class")
		return
	}
	c.variable(false)
}

// super_ compiles `super.method` and its invoke-fusion form
// `super.method(args)` (spec §4.5, "super").
func (c *Compiler) super_(canAssign bool) {
	if c.class == nil {
		c.error("can't use 'super' outside of a class")
	} else if !c.class.hasSuperclass {
		c.error("can't use 'super' in a class with no superclass")
	}

	c.consume(token.Dot, "expect '.' after 'super'")
	c.consume(token.Identifier, "expect superclass method name")
	name := c.identifierConstant(c.previous.Lexeme)

	c.namedVariable("this", false)
	if c.match(token.LeftParen) {
		argCount := c.argumentList()
		c.namedVariable("super", false)
		c.emitOp(chunk.OpSuperInvoke)
		c.emitByte(byte(name))
		c.emitByte(byte(argCount))
		return
	}
	c.namedVariable("super", false)
	c.emitOp(chunk.OpGetSuper)
	c.emitByte(byte(name))
}
