package compiler

import (
	"github.com/kristofer/lumen/pkg/chunk"
	"github.com/kristofer/lumen/pkg/token"
)

// classDeclaration compiles `class Name [< Super] { methods... }`. The
// class itself is defined as a global/local binding like any other
// variable; its superclass (if any) is bound under a synthetic "super"
// local in its own scope so method bodies can resolve `super` exactly like
// any other upvalue-captured name (spec §4.5, "synthetic super scope").
func (c *Compiler) classDeclaration() {
	c.consume(token.Identifier, "expect class name")
	nameTok := c.previous
	nameConstant := c.identifierConstant(nameTok.Lexeme)
	c.declareVariable(nameTok.Lexeme)

	c.emitOp(chunk.OpClass)
	c.emitByte(byte(nameConstant))
	c.defineVariable(nameConstant)

	enclosingClass := c.class
	c.class = &classState{enclosing: enclosingClass}

	if c.match(token.Less) {
		c.consume(token.Identifier, "expect superclass name")
		c.variable(false) // pushes the superclass value
		if c.previous.Lexeme == nameTok.Lexeme {
			c.error("a class can't inherit from itself")
		}

		c.beginScope()
		c.addLocal("super")
		c.defineVariable(0)

		c.namedVariable(nameTok.Lexeme, false)
		c.emitOp(chunk.OpInherit)
		c.class.hasSuperclass = true
	}

	c.namedVariable(nameTok.Lexeme, false)
	c.consume(token.LeftBrace, "expect '{' before class body")
	for !c.check(token.RightBrace) && !c.check(token.EOF) {
		c.method()
	}
	c.consume(token.RightBrace, "expect '}' after class body")
	c.emitOp(chunk.OpPop) // pop the class itself, left on stack by namedVariable above

	if c.class.hasSuperclass {
		c.endScope()
	}
	c.class = enclosingClass
}

func (c *Compiler) method() {
	c.consume(token.Identifier, "expect method name")
	name := c.previous.Lexeme
	constant := c.identifierConstant(name)

	fnType := TypeMethod
	if name == "init" {
		fnType = TypeInitializer
	}
	c.compileFunction(fnType, name)

	c.emitOp(chunk.OpMethod)
	c.emitByte(byte(constant))
}
