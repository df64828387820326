package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kristofer/lumen/pkg/heap"
	"github.com/kristofer/lumen/pkg/lexer"
)

func TestAddUpvalueDedupesSameSlot(t *testing.T) {
	h := heap.New()
	outer := newCompiler(nil, h, lexer.New(""), TypeScript, "")
	inner := newCompiler(outer, h, lexer.New(""), TypeFunction, "inner")

	first := inner.addUpvalue(2, true)
	second := inner.addUpvalue(2, true)
	assert.Equal(t, first, second, "capturing the same local twice should reuse the upvalue slot")
	assert.Len(t, inner.upvalues, 1)
}

func TestAddUpvalueDistinctSlotsGetDistinctIndices(t *testing.T) {
	h := heap.New()
	outer := newCompiler(nil, h, lexer.New(""), TypeScript, "")
	inner := newCompiler(outer, h, lexer.New(""), TypeFunction, "inner")

	a := inner.addUpvalue(0, true)
	b := inner.addUpvalue(1, true)
	assert.NotEqual(t, a, b)
}

func TestTooManyUpvaluesIsCompileError(t *testing.T) {
	h := heap.New()
	outer := newCompiler(nil, h, lexer.New(""), TypeScript, "")
	inner := newCompiler(outer, h, lexer.New(""), TypeFunction, "inner")

	for i := 0; i < maxUpvalues; i++ {
		inner.addUpvalue(i, true)
	}
	inner.addUpvalue(maxUpvalues, true)
	assert.True(t, inner.hadError)
}

func TestResolveUpvalueMarksEnclosingLocalCaptured(t *testing.T) {
	h := heap.New()
	outer := newCompiler(nil, h, lexer.New(""), TypeScript, "")
	outer.locals = append(outer.locals, local{name: "x", depth: 1})
	inner := newCompiler(outer, h, lexer.New(""), TypeFunction, "inner")

	idx := inner.resolveUpvalue("x")
	assert.Equal(t, 0, idx)
	assert.True(t, outer.locals[len(outer.locals)-1].isCaptured)
}

func TestResolveUpvalueMissingNameReturnsNegativeOne(t *testing.T) {
	h := heap.New()
	outer := newCompiler(nil, h, lexer.New(""), TypeScript, "")
	inner := newCompiler(outer, h, lexer.New(""), TypeFunction, "inner")

	assert.Equal(t, -1, inner.resolveUpvalue("nonexistent"))
}
