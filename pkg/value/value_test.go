package value_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kristofer/lumen/pkg/heap"
	"github.com/kristofer/lumen/pkg/value"
)

type fakeString struct{ s string }

func (f *fakeString) Format(h *heap.Heap) string { return f.s }
func (f *fakeString) Size() int                  { return len(f.s) }
func (f *fakeString) TraceRefs(h *heap.Heap)      {}

func TestIsFalsey(t *testing.T) {
	assert.True(t, value.Nil().IsFalsey())
	assert.True(t, value.Bool(false).IsFalsey())
	assert.False(t, value.Bool(true).IsFalsey())
	assert.False(t, value.Number(0).IsFalsey(), "0 is truthy")
	assert.False(t, value.Number(1).IsFalsey())
}

func TestEqualStructuralForPrimitives(t *testing.T) {
	assert.True(t, value.Equal(value.Nil(), value.Nil()))
	assert.True(t, value.Equal(value.Bool(true), value.Bool(true)))
	assert.False(t, value.Equal(value.Bool(true), value.Bool(false)))
	assert.True(t, value.Equal(value.Number(3), value.Number(3)))
	assert.False(t, value.Equal(value.Number(3), value.Number(4)))
}

func TestEqualDifferentKindsAreUnequal(t *testing.T) {
	assert.False(t, value.Equal(value.Nil(), value.Bool(false)))
	assert.False(t, value.Equal(value.Number(0), value.Bool(false)))
}

func TestEqualIdentityForReferenceVariants(t *testing.T) {
	a := heap.Reference{Index: 1, Kind: heap.KindString}
	b := heap.Reference{Index: 2, Kind: heap.KindString}
	assert.True(t, value.Equal(value.String(a), value.String(a)))
	assert.False(t, value.Equal(value.String(a), value.String(b)))
}

func TestEqualNativeFnsNeverEqual(t *testing.T) {
	fn := func(args []value.Value) (value.Value, error) { return value.Nil(), nil }
	a := value.Native(fn)
	assert.False(t, value.Equal(a, a), "native functions are never equal, even to themselves")
}

func TestFormatPrimitives(t *testing.T) {
	assert.Equal(t, "nil", value.Nil().Format(nil))
	assert.Equal(t, "true", value.Bool(true).Format(nil))
	assert.Equal(t, "false", value.Bool(false).Format(nil))
	assert.Equal(t, "3", value.Number(3).Format(nil))
	assert.Equal(t, "<native fn>", value.Native(nil).Format(nil))
}

func TestFormatResolvesThroughHeap(t *testing.T) {
	h := heap.New()
	ref := h.Alloc(heap.KindString, &fakeString{s: "hi"}, nil)
	v := value.String(ref)
	assert.Equal(t, "hi", v.Format(h))
}

func TestFormatInvalidReference(t *testing.T) {
	h := heap.New()
	v := value.String(heap.Reference{Index: 999, Kind: heap.KindString})
	assert.Equal(t, "<invalid reference>", v.Format(h))
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "number", value.KindNumber.String())
	assert.Equal(t, "bound method", value.KindBoundMethod.String())
}

func TestTraceRefsMarksReferenceVariantsOnly(t *testing.T) {
	h := heap.New()
	ref := h.Alloc(heap.KindString, &fakeString{s: "kept"}, nil)
	v := value.String(ref)

	remove := h.AddRootProvider(func() []heap.Reference {
		v.TraceRefs(h)
		return nil
	})
	defer remove()

	h.Collect(nil)
	_, ok := h.Deref(ref)
	assert.True(t, ok, "TraceRefs on a reference-carrying Value should mark its Reference")
}

func TestTraceRefsNoopForPrimitives(t *testing.T) {
	assert.NotPanics(t, func() {
		value.Nil().TraceRefs(nil)
		value.Bool(true).TraceRefs(nil)
		value.Number(1).TraceRefs(nil)
		value.Native(nil).TraceRefs(nil)
	})
}
