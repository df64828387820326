package compiler_test

import (
	"strconv"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kristofer/lumen/pkg/chunk"
	"github.com/kristofer/lumen/pkg/compiler"
	"github.com/kristofer/lumen/pkg/heap"
	"github.com/kristofer/lumen/pkg/object"
	"github.com/kristofer/lumen/pkg/value"
)

func opNames(c *chunk.Chunk) []string {
	rows := chunk.Disassemble(c, nil)
	names := make([]string, len(rows))
	for i, r := range rows {
		names[i] = r.Name
	}
	return names
}

func mustCompile(t *testing.T, source string) (*object.Function, *heap.Heap) {
	t.Helper()
	h := heap.New()
	ref, err := compiler.Compile(source, h)
	require.NoError(t, err)
	fn, ok := h.Deref(ref)
	require.True(t, ok)
	function, ok := fn.(*object.Function)
	require.True(t, ok)
	return function, h
}

func TestCompilesGlobalVarDeclarationAndArithmetic(t *testing.T) {
	fn, _ := mustCompile(t, "var x = 1 + 2;")
	names := opNames(fn.Chunk)
	assert.Contains(t, names, "OP_ADD")
	assert.Contains(t, names, "OP_DEFINE_GLOBAL")
	assert.Equal(t, "OP_RETURN", names[len(names)-1])
}

func TestCompilesFunctionDeclarationAsClosure(t *testing.T) {
	fn, h := mustCompile(t, "fun greet(name) { print name; }")
	names := opNames(fn.Chunk)
	require.Contains(t, names, "OP_CLOSURE")

	// the function constant embedded by OP_CLOSURE should itself disassemble
	// to a body that prints its single parameter and returns nil implicitly.
	var nestedRef heap.Reference
	for _, c := range fn.Chunk.Constants {
		if c.Kind() == value.KindFunction {
			nestedRef = c.Ref()
		}
	}
	require.NotZero(t, nestedRef.Index)
	nested, ok := h.Deref(nestedRef)
	require.True(t, ok)
	nestedFn := nested.(*object.Function)
	assert.Equal(t, 1, nestedFn.Arity)
	assert.Contains(t, opNames(nestedFn.Chunk), "OP_PRINT")
}

func TestClosureCapturesEnclosingLocalAsUpvalue(t *testing.T) {
	fn, h := mustCompile(t, `
		fun outer() {
			var x = 1;
			fun inner() { return x; }
			return inner;
		}
	`)
	names := opNames(fn.Chunk)
	require.Contains(t, names, "OP_CLOSURE")

	var outerRef heap.Reference
	for _, c := range fn.Chunk.Constants {
		if c.Kind() == value.KindFunction {
			outerRef = c.Ref()
		}
	}
	outerObj, ok := h.Deref(outerRef)
	require.True(t, ok)
	outerFn := outerObj.(*object.Function)

	var innerRef heap.Reference
	for _, c := range outerFn.Chunk.Constants {
		if c.Kind() == value.KindFunction {
			innerRef = c.Ref()
		}
	}
	require.NotZero(t, innerRef.Index)
	innerObj, ok := h.Deref(innerRef)
	require.True(t, ok)
	innerFn := innerObj.(*object.Function)
	require.Len(t, innerFn.Upvalues, 1)
	assert.True(t, innerFn.Upvalues[0].IsLocal)
}

func TestCompilesClassWithInheritanceAndSuper(t *testing.T) {
	fn, h := mustCompile(t, `
		class Animal {
			speak() { print "..."; }
		}
		class Dog < Animal {
			speak() {
				super.speak();
				print "woof";
			}
		}
	`)
	// Dog's method captures the synthetic "super" local, so the script's
	// OP_CLOSURE carries an upvalue trailer that only a heap-aware
	// disassembly can size.
	rows := chunk.Disassemble(fn.Chunk, h)
	names := make([]string, len(rows))
	for i, r := range rows {
		names[i] = r.Name
	}
	assert.Contains(t, names, "OP_CLASS")
	assert.Contains(t, names, "OP_INHERIT")
	assert.Contains(t, names, "OP_METHOD")

	// super.speak() lives in Dog's speak method (the script's last function
	// constant) and compiles to the fused super-invoke form.
	var dogSpeakRef heap.Reference
	for _, c := range fn.Chunk.Constants {
		if c.Kind() == value.KindFunction {
			dogSpeakRef = c.Ref()
		}
	}
	dogSpeak, ok := h.Deref(dogSpeakRef)
	require.True(t, ok)
	assert.Contains(t, opNames(dogSpeak.(*object.Function).Chunk), "OP_SUPER_INVOKE")
}

func TestSelfReferenceInInitializerIsCompileError(t *testing.T) {
	h := heap.New()
	_, err := compiler.Compile("{ var a = a; }", h)
	require.Error(t, err)
	ce, ok := err.(*compiler.CompileError)
	require.True(t, ok)
	found := false
	for _, m := range ce.Messages {
		if strings.Contains(m, "own initializer") {
			found = true
		}
	}
	assert.True(t, found, "expected a self-initializer error, got %v", ce.Messages)
}

func TestShadowingSameScopeIsCompileError(t *testing.T) {
	h := heap.New()
	_, err := compiler.Compile("{ var a = 1; var a = 2; }", h)
	require.Error(t, err)
	ce := err.(*compiler.CompileError)
	found := false
	for _, m := range ce.Messages {
		if strings.Contains(m, "already a variable") {
			found = true
		}
	}
	assert.True(t, found, "expected a redeclaration error, got %v", ce.Messages)
}

func TestPanicModeRecoversAtNextStatement(t *testing.T) {
	h := heap.New()
	// the first statement is malformed (missing initializer expression); the second is
	// syntactically fine and should still compile its body as normal.
	_, err := compiler.Compile("var x = ;\nvar y = 2;", h)
	require.Error(t, err)
	ce := err.(*compiler.CompileError)
	// synchronize() should keep this from cascading into more than a
	// couple of reported errors for one bad token.
	assert.LessOrEqual(t, len(ce.Messages), 2)
}

func TestLoopTooLargeIsCompileError(t *testing.T) {
	var b strings.Builder
	b.WriteString("var x = 0;\nwhile (x < 1) {\n")
	for i := 0; i < 20000; i++ {
		b.WriteString("x = x + 1;\n")
	}
	b.WriteString("}\n")

	h := heap.New()
	_, err := compiler.Compile(b.String(), h)
	require.Error(t, err)
	ce := err.(*compiler.CompileError)
	found := false
	for _, m := range ce.Messages {
		if strings.Contains(m, "too large") {
			found = true
		}
	}
	assert.True(t, found, "expected a loop-too-large error, got %v", ce.Messages)
}

func TestCompileIsDeterministicAcrossRuns(t *testing.T) {
	source := `
		class Shape {
			area() { return 0; }
		}
		class Rectangle < Shape {
			init(w, h) { this.w = w; this.h = h; }
			area() { return this.w * this.h; }
		}
		var r = Rectangle(3, 4);
		print r.area();
	`
	first, _ := mustCompile(t, source)
	second, _ := mustCompile(t, source)

	if diff := cmp.Diff(first.Chunk.Code, second.Chunk.Code); diff != "" {
		t.Errorf("two compiles of the same source produced different bytecode (-first +second):\n%s", diff)
	}
	if diff := cmp.Diff(first.Chunk.Lines, second.Chunk.Lines); diff != "" {
		t.Errorf("two compiles of the same source produced different line tables (-first +second):\n%s", diff)
	}
}

// assertConstantsResolve walks fn's constant pool (and recursively, any
// nested Function constants) asserting every reference-carrying constant
// still dereferences, i.e. nothing got swept out from under the compiler.
func assertConstantsResolve(t *testing.T, h *heap.Heap, fn *object.Function) {
	t.Helper()
	if fn.Name.Index != 0 {
		_, ok := h.Deref(fn.Name)
		assert.True(t, ok, "function name reference was collected")
	}
	for _, c := range fn.Chunk.Constants {
		switch c.Kind() {
		case value.KindString:
			_, ok := h.Deref(c.Ref())
			assert.True(t, ok, "string constant reference was collected")
		case value.KindFunction:
			obj, ok := h.Deref(c.Ref())
			require.True(t, ok, "nested function reference was collected")
			assertConstantsResolve(t, h, obj.(*object.Function))
		}
	}
}

func TestCompileSurvivesStressGCWithNestedFunctions(t *testing.T) {
	h := heap.New()
	h.SetStressGC(true)

	source := `
		var a = "alpha";
		var b = "beta";
		fun outer(x) {
			var captured = "inner-local";
			fun middle(y) {
				fun inner(z) {
					return captured + x + y + z;
				}
				return inner;
			}
			return middle;
		}
		class Greeter {
			init(name) { this.name = name; }
			greet() { return "hello " + this.name; }
		}
		var g = Greeter("world");
		print g.greet();
		print outer("one")("two")("three");
	`

	ref, err := compiler.Compile(source, h)
	require.NoError(t, err)

	obj, ok := h.Deref(ref)
	require.True(t, ok, "top-level script Function reference was collected")
	fn := obj.(*object.Function)
	assertConstantsResolve(t, h, fn)
}

func TestTooManyLocalsIsCompileError(t *testing.T) {
	var b strings.Builder
	b.WriteString("{\n")
	for i := 0; i < 300; i++ {
		b.WriteString("var v")
		b.WriteString(strconv.Itoa(i))
		b.WriteString(" = 0;\n")
	}
	b.WriteString("}\n")

	h := heap.New()
	_, err := compiler.Compile(b.String(), h)
	require.Error(t, err)
	ce := err.(*compiler.CompileError)
	found := false
	for _, m := range ce.Messages {
		if strings.Contains(m, "too many local variables") {
			found = true
		}
	}
	assert.True(t, found, "expected a too-many-locals error, got %v", ce.Messages)
}
