package object

import (
	"fmt"

	"github.com/kristofer/lumen/pkg/heap"
	"github.com/kristofer/lumen/pkg/value"
)

// Class is a runtime class: its name and its method table. Methods are
// keyed by the interned String reference naming the selector, so looking a
// method up never needs to hash or compare byte content at runtime — two
// equal names always share one Reference (spec I4).
type Class struct {
	Name       heap.Reference                    // String
	Superclass heap.Reference                    // Class, zero Reference if none (spec §4.5, "single inheritance")
	Methods    map[heap.Reference]heap.Reference // selector String -> Closure
}

func NewClass(name heap.Reference) *Class {
	return &Class{Name: name, Methods: make(map[heap.Reference]heap.Reference)}
}

func (c *Class) Format(h *heap.Heap) string {
	name, ok := h.Deref(c.Name)
	if !ok {
		return "<class ?>"
	}
	return name.Format(h)
}

func (c *Class) Size() int { return 32 + len(c.Methods)*16 }

func (c *Class) TraceRefs(h *heap.Heap) {
	h.Mark(c.Name)
	if c.Superclass.Index != 0 {
		h.Mark(c.Superclass)
	}
	for selector, method := range c.Methods {
		h.Mark(selector)
		h.Mark(method)
	}
}

// Instance is a runtime object: a reference to its class plus a field
// table, keyed by the same interned-selector References the method table
// uses. Fields are created lazily on first assignment (spec §4.3,
// OpSetProperty).
type Instance struct {
	Class  heap.Reference
	Fields map[heap.Reference]value.Value
}

func NewInstance(class heap.Reference) *Instance {
	return &Instance{Class: class, Fields: make(map[heap.Reference]value.Value)}
}

func (i *Instance) Format(h *heap.Heap) string {
	class, ok := h.Deref(i.Class)
	if !ok {
		return "<instance ?>"
	}
	return fmt.Sprintf("%s instance", class.Format(h))
}

func (i *Instance) Size() int { return 24 + len(i.Fields)*24 }

func (i *Instance) TraceRefs(h *heap.Heap) {
	h.Mark(i.Class)
	for selector, v := range i.Fields {
		h.Mark(selector)
		v.TraceRefs(h)
	}
}
