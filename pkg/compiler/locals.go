package compiler

import (
	"github.com/kristofer/lumen/pkg/chunk"
	"github.com/kristofer/lumen/pkg/token"
	"github.com/kristofer/lumen/pkg/value"
)

// declareVariable registers the identifier just consumed (c.previous) as a
// new local in the current scope, enforcing the shadowing rule: no two
// locals in the *same* scope may share a name (spec §4.5, "locals"). Globals
// skip this entirely — they're resolved by name at runtime, never given a
// stack slot.
func (c *Compiler) declareVariable(name string) {
	if c.scopeDepth == 0 {
		return
	}
	for i := len(c.locals) - 1; i >= 0; i-- {
		l := c.locals[i]
		if l.depth != -1 && l.depth < c.scopeDepth {
			break
		}
		if l.name == name {
			c.error("already a variable with this name in this scope")
		}
	}
	c.addLocal(name)
}

func (c *Compiler) addLocal(name string) {
	if len(c.locals) >= maxLocals {
		c.error("too many local variables in function")
		return
	}
	c.locals = append(c.locals, local{name: name, depth: -1})
}

// markInitialized flips the most recently declared local's depth from the
// -1 sentinel to the current scope depth, making it resolvable from then
// on. A `var` is marked after its initializer; a function declaration is
// marked before its body, so the function can call itself.
func (c *Compiler) markInitialized() {
	if c.scopeDepth == 0 {
		return
	}
	c.locals[len(c.locals)-1].depth = c.scopeDepth
}

// resolveLocal finds name among this compiler's own locals, innermost
// scope first, returning its stack slot or -1 if not found. A local whose
// depth is still -1 (its own initializer is in progress) is an error: that
// is exactly the `var a = a;` self-reference spec §4.5 forbids.
func (c *Compiler) resolveLocal(name string) int {
	for i := len(c.locals) - 1; i >= 0; i-- {
		if c.locals[i].name == name {
			if c.locals[i].depth == -1 {
				c.error("can't read local variable in its own initializer")
			}
			return i
		}
	}
	return -1
}

// resolveUpvalue recursively searches enclosing compilers for name,
// capturing it as an upvalue at every level between its declaring scope and
// the current function (spec §4.5, "upvalue resolution"). Two captures of
// the exact same (isLocal, index) pair within one function are deduplicated
// so nested references to the same free variable don't each get their own
// Upvalue slot.
func (c *Compiler) resolveUpvalue(name string) int {
	if c.enclosing == nil {
		return -1
	}
	if local := c.enclosing.resolveLocal(name); local != -1 {
		c.enclosing.locals[local].isCaptured = true
		return c.addUpvalue(local, true)
	}
	if up := c.enclosing.resolveUpvalue(name); up != -1 {
		return c.addUpvalue(up, false)
	}
	return -1
}

func (c *Compiler) addUpvalue(index int, isLocal bool) int {
	for i, uv := range c.upvalues {
		if uv.index == index && uv.isLocal == isLocal {
			return i
		}
	}
	if len(c.upvalues) >= maxUpvalues {
		c.error("too many closure variables in function")
		return 0
	}
	c.upvalues = append(c.upvalues, upvalueSlot{index: index, isLocal: isLocal})
	return len(c.upvalues) - 1
}

// identifierConstant interns name and adds it to the constant pool, for use
// by any opcode that names a global, property, method or superclass by
// string (OpGetGlobal, OpGetProperty, OpClass, OpMethod, ...).
func (c *Compiler) identifierConstant(name string) int {
	ref := c.intern(name)
	idx := c.makeConstant(value.String(ref))
	if idx > 0xff {
		c.error("too many constants in one chunk")
		return 0
	}
	return idx
}

// parseVariable consumes an identifier token and, for a global, returns its
// constant-pool index; for a local it declares the variable and returns 0
// (unused by the caller in that case).
func (c *Compiler) parseVariable(errMsg string) int {
	c.consume(token.Identifier, errMsg)
	name := c.previous.Lexeme
	c.declareVariable(name)
	if c.scopeDepth > 0 {
		return 0
	}
	return c.identifierConstant(name)
}

func (c *Compiler) defineVariable(global int) {
	if c.scopeDepth > 0 {
		c.markInitialized()
		return
	}
	c.emitOp(chunk.OpDefineGlobal)
	c.emitByte(byte(global))
}
