// Package compiler implements lumen's single-pass Pratt-parsing compiler:
// source text goes in, a compiled object.Function chunk comes out, with no
// intermediate AST (spec §4.5). Errors are accumulated in panic-mode so one
// malformed statement doesn't cascade into a wall of spurious diagnostics.
package compiler

import (
	"fmt"

	"github.com/kristofer/lumen/pkg/chunk"
	"github.com/kristofer/lumen/pkg/heap"
	"github.com/kristofer/lumen/pkg/lexer"
	"github.com/kristofer/lumen/pkg/object"
	"github.com/kristofer/lumen/pkg/token"
	"github.com/kristofer/lumen/pkg/value"
)

// FunctionType distinguishes the handful of ways a chunk gets compiled,
// since each has different rules for slot 0 and the implicit return.
type FunctionType int

const (
	TypeFunction FunctionType = iota
	TypeInitializer
	TypeMethod
	TypeScript
)

const maxLocals = 256
const maxUpvalues = 256

// local is a block-scoped variable on the compiler's locals stack. Depth is
// -1 between declaration and initialization ("declared but uninitialized",
// spec §4.5) so a variable's own initializer can't refer to itself, e.g.
// `var a = a;` at the top of a new scope is a compile error.
type local struct {
	name       string
	depth      int
	isCaptured bool
}

type upvalueSlot struct {
	index   int
	isLocal bool
}

// classState tracks the class currently being compiled, so `this` and
// `super` resolve correctly and nested classes restore their enclosing
// class's state afterward (spec §4.5, "classes").
type classState struct {
	enclosing    *classState
	hasSuperclass bool
}

// Compiler compiles one function body (or the top-level script) into a
// chunk. Nested function/method compilation pushes a new Compiler whose
// enclosing field chains back to the function it's nested in, which is how
// upvalue resolution walks outward (spec §4.5, "upvalue resolution").
type Compiler struct {
	enclosing *Compiler

	h        *heap.Heap
	lex      *lexer.Lexer
	previous token.Token
	current  token.Token

	fnType FunctionType
	fnRef  heap.Reference // object.Function, pinned as a compile-time GC root
	fn     *object.Function

	locals     []local
	scopeDepth int
	upvalues   []upvalueSlot

	class *classState

	hadError    bool
	panicMode   bool
	errMessages []string

	unpinRoots func()
}

// CompileError reports one or more syntax errors found in panic-mode
// recovery; spec §7 requires the CLI to exit 65 on any CompileError.
type CompileError struct {
	Messages []string
}

func (e *CompileError) Error() string {
	if len(e.Messages) == 1 {
		return e.Messages[0]
	}
	s := fmt.Sprintf("%d compile errors:", len(e.Messages))
	for _, m := range e.Messages {
		s += "\n  " + m
	}
	return s
}

// Compile compiles source as a top-level script against h, returning the
// script's Function reference. The caller (normally pkg/vm) is responsible
// for wrapping it in a Closure and calling it with an empty argument list.
func Compile(source string, h *heap.Heap) (heap.Reference, error) {
	c := newCompiler(nil, h, lexer.New(source), TypeScript, "")
	c.advance()

	for !c.check(token.EOF) {
		c.declaration()
	}

	fnRef := c.endCompiler()
	if c.hadError {
		return heap.Reference{}, &CompileError{Messages: c.errMessages}
	}
	return fnRef, nil
}

func newCompiler(enclosing *Compiler, h *heap.Heap, lex *lexer.Lexer, fnType FunctionType, name string) *Compiler {
	c := &Compiler{
		enclosing:  enclosing,
		h:          h,
		fnType:     fnType,
		fn:         object.NewFunction(),
		scopeDepth: 0,
	}
	if enclosing != nil {
		c.lex = enclosing.lex
		c.previous = enclosing.previous
		c.current = enclosing.current
		c.errMessages = enclosing.errMessages
	} else {
		c.lex = lex
	}

	if name != "" {
		nameRef := c.intern(name)
		c.fn.Name = nameRef
	}

	// Slot 0 is reserved: "this" for methods/initializers, the empty
	// string for plain functions and the script itself (spec §4.5,
	// "slot 0 reserved").
	reserved := ""
	if fnType == TypeMethod || fnType == TypeInitializer {
		reserved = "this"
	}
	c.locals = append(c.locals, local{name: reserved, depth: 0})

	remove := h.AddRootProvider(func() []heap.Reference { return c.pinnedRoots() })
	c.unpinRoots = remove

	return c
}

// pinnedRoots walks the enclosing chain collecting every in-progress
// Function reference, so an allocation during compilation of an outer
// function can't collect a still-being-built inner one (invariant I6). A
// compiler that hasn't reached endCompiler yet has no fnRef, so it
// contributes its in-progress constants directly instead — those are the
// only things an allocation right now could otherwise lose, since they
// aren't reachable from anywhere until the Function itself is heap-allocated.
func (c *Compiler) pinnedRoots() []heap.Reference {
	var roots []heap.Reference
	if c.fnRef.Index != 0 {
		roots = append(roots, c.fnRef)
	} else {
		roots = append(roots, c.inProgressRoots()...)
	}
	if c.enclosing != nil {
		roots = append(roots, c.enclosing.pinnedRoots()...)
	}
	return roots
}

// inProgressRoots collects every Reference already reachable from this
// compiler's not-yet-allocated Function: its interned name, if set, and
// every reference-carrying constant added to its chunk so far (identifier
// constants from intern/identifierConstant, nested Function constants from
// functions.go). Spec §9's "compiler roots during allocation" requires
// these survive any GC triggered while this function is still being built.
func (c *Compiler) inProgressRoots() []heap.Reference {
	var roots []heap.Reference
	if c.fn.Name.Index != 0 {
		roots = append(roots, c.fn.Name)
	}
	for _, v := range c.fn.Chunk.Constants {
		switch v.Kind() {
		case value.KindString, value.KindFunction, value.KindClosure, value.KindClass, value.KindInstance, value.KindBoundMethod:
			roots = append(roots, v.Ref())
		}
	}
	return roots
}

func (c *Compiler) currentChunk() *chunk.Chunk { return c.fn.Chunk }

func (c *Compiler) intern(s string) heap.Reference {
	return c.h.Intern(s, c.pinnedRoots(), func(s string) heap.Trace { return object.NewString(s) })
}
