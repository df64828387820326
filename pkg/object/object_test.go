package object_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kristofer/lumen/pkg/heap"
	"github.com/kristofer/lumen/pkg/object"
	"github.com/kristofer/lumen/pkg/value"
)

func internString(h *heap.Heap, s string) heap.Reference {
	return h.Intern(s, nil, func(s string) heap.Trace { return object.NewString(s) })
}

func TestStringFormatAndStringValue(t *testing.T) {
	s := object.NewString("hello")
	assert.Equal(t, "hello", s.Format(nil))
	assert.Equal(t, "hello", s.StringValue())
}

func TestFunctionFormatsScriptAndNamed(t *testing.T) {
	h := heap.New()
	script := object.NewFunction()
	assert.Equal(t, "<script>", script.Format(h))

	named := object.NewFunction()
	named.Name = internString(h, "area")
	assert.Equal(t, "<fn area>", named.Format(h))
}

func TestFunctionTraceRefsMarksNameAndConstants(t *testing.T) {
	h := heap.New()
	nameRef := internString(h, "f")
	fn := object.NewFunction()
	fn.Name = nameRef

	constRef := internString(h, "literal")
	fn.Chunk.AddConstant(value.String(constRef))

	fnRef := h.Alloc(heap.KindFunction, fn, nil)

	h.Collect([]heap.Reference{fnRef})

	_, ok := h.Deref(nameRef)
	assert.True(t, ok, "function name should be traced")
	_, ok = h.Deref(constRef)
	assert.True(t, ok, "chunk constant should be traced")
}

func TestUpvalueOpenVsClosed(t *testing.T) {
	open := object.NewOpenUpvalue(3)
	assert.False(t, open.IsClosed)
	assert.Equal(t, 3, open.StackIndex)
	assert.Equal(t, "<upvalue>", open.Format(nil))
}

func TestUpvalueTraceRefsOnlyWhenClosed(t *testing.T) {
	h := heap.New()
	inner := internString(h, "captured")

	open := object.NewOpenUpvalue(0)
	// not closed: tracing should not touch Closed's (zero) value at all
	assert.NotPanics(t, func() { open.TraceRefs(h) })

	closed := object.NewOpenUpvalue(0)
	closed.IsClosed = true
	closed.Closed = value.String(inner)
	uvRef := h.Alloc(heap.KindUpvalue, closed, nil)

	h.Collect([]heap.Reference{uvRef})
	_, ok := h.Deref(inner)
	assert.True(t, ok, "a closed upvalue should trace its captured value")
}

func TestClosureFormatsViaWrappedFunction(t *testing.T) {
	h := heap.New()
	fn := object.NewFunction()
	fn.Name = internString(h, "make")
	fnRef := h.Alloc(heap.KindFunction, fn, nil)

	cl := object.NewClosure(fnRef, nil)
	assert.Equal(t, "<fn make>", cl.Format(h))
}

func TestClosureTraceRefsMarksFunctionAndUpvalues(t *testing.T) {
	h := heap.New()
	fn := object.NewFunction()
	fnRef := h.Alloc(heap.KindFunction, fn, nil)
	uvRef := h.Alloc(heap.KindUpvalue, object.NewOpenUpvalue(0), nil)

	cl := object.NewClosure(fnRef, []heap.Reference{uvRef})
	clRef := h.Alloc(heap.KindClosure, cl, nil)

	h.Collect([]heap.Reference{clRef})

	_, ok := h.Deref(fnRef)
	assert.True(t, ok)
	_, ok = h.Deref(uvRef)
	assert.True(t, ok)
}

func TestClassMethodTableAndFormat(t *testing.T) {
	h := heap.New()
	nameRef := internString(h, "Shape")
	cls := object.NewClass(nameRef)
	assert.Equal(t, "Shape", cls.Format(h))
	assert.Empty(t, cls.Methods)
}

func TestClassTraceRefsMarksNameSuperclassAndMethods(t *testing.T) {
	h := heap.New()
	superNameRef := internString(h, "Shape")
	super := object.NewClass(superNameRef)
	superRef := h.Alloc(heap.KindClass, super, nil)

	subNameRef := internString(h, "Circle")
	sub := object.NewClass(subNameRef)
	sub.Superclass = superRef

	selector := internString(h, "area")
	methodFn := object.NewFunction()
	methodRef := h.Alloc(heap.KindFunction, methodFn, nil)
	sub.Methods[selector] = methodRef

	subRef := h.Alloc(heap.KindClass, sub, nil)

	h.Collect([]heap.Reference{subRef})

	for _, ref := range []heap.Reference{subNameRef, superRef, selector, methodRef} {
		_, ok := h.Deref(ref)
		assert.True(t, ok)
	}
}

func TestInstanceFieldsLazyAndTraced(t *testing.T) {
	h := heap.New()
	classRef := h.Alloc(heap.KindClass, object.NewClass(internString(h, "Point")), nil)
	inst := object.NewInstance(classRef)
	assert.Empty(t, inst.Fields)

	fieldName := internString(h, "x")
	fieldValRef := internString(h, "3")
	inst.Fields[fieldName] = value.String(fieldValRef)

	instRef := h.Alloc(heap.KindInstance, inst, nil)

	got := inst.Format(h)
	assert.Contains(t, got, "instance")

	h.Collect([]heap.Reference{instRef})
	for _, ref := range []heap.Reference{classRef, fieldName, fieldValRef} {
		_, ok := h.Deref(ref)
		assert.True(t, ok)
	}
}

func TestBoundMethodFormatsAsMethod(t *testing.T) {
	h := heap.New()
	fn := object.NewFunction()
	fn.Name = internString(h, "speak")
	fnRef := h.Alloc(heap.KindFunction, fn, nil)
	cl := object.NewClosure(fnRef, nil)
	clRef := h.Alloc(heap.KindClosure, cl, nil)

	classRef := h.Alloc(heap.KindClass, object.NewClass(internString(h, "Dog")), nil)
	instRef := h.Alloc(heap.KindInstance, object.NewInstance(classRef), nil)

	bound := object.NewBoundMethod(value.Instance(instRef), clRef)
	require.Equal(t, "<fn speak>", bound.Format(h))
}

func TestBoundMethodTraceRefsMarksReceiverAndMethod(t *testing.T) {
	h := heap.New()
	classRef := h.Alloc(heap.KindClass, object.NewClass(internString(h, "Dog")), nil)
	instRef := h.Alloc(heap.KindInstance, object.NewInstance(classRef), nil)
	fnRef := h.Alloc(heap.KindFunction, object.NewFunction(), nil)
	clRef := h.Alloc(heap.KindClosure, object.NewClosure(fnRef, nil), nil)

	bound := object.NewBoundMethod(value.Instance(instRef), clRef)
	boundRef := h.Alloc(heap.KindBoundMethod, bound, nil)

	h.Collect([]heap.Reference{boundRef})

	for _, ref := range []heap.Reference{instRef, clRef} {
		_, ok := h.Deref(ref)
		assert.True(t, ok)
	}
}
