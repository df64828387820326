// Package value defines lumen's tagged-union runtime value and the
// equality/truthiness rules the VM and compiler share (spec §3).
//
// Go has no sum types, so Value is a small hand-rolled tagged union: a kind
// byte, an inline float64 for numbers, a heap.Reference for anything
// heap-resident, and a NativeFn slot for host functions. Values are always
// copied by value — on the VM stack, in constant pools, as map values — never
// boxed, which is what keeps Nil/Bool/Number allocation-free.
package value

import (
	"fmt"

	"github.com/kristofer/lumen/pkg/heap"
)

// Kind discriminates the Value union.
type Kind uint8

const (
	KindNil Kind = iota
	KindBool
	KindNumber
	KindNativeFn
	KindString
	KindFunction
	KindClosure
	KindClass
	KindInstance
	KindBoundMethod
)

// NativeFn is a host function callable from lumen source (spec §6.2).
// It receives the argument slice (never the receiver) and returns a result
// or a HostError-flavored error that the VM surfaces like a RuntimeError.
type NativeFn func(args []Value) (Value, error)

// Value is the tagged union Nil | Bool | Number | NativeFn | String(Ref) |
// Function(Ref) | Closure(Ref) | Class(Ref) | Instance(Ref) | BoundMethod(Ref).
type Value struct {
	kind   Kind
	b      bool
	num    float64
	ref    heap.Reference
	native NativeFn
}

// Constructors mirror the union's variants.

func Nil() Value                           { return Value{kind: KindNil} }
func Bool(b bool) Value                    { return Value{kind: KindBool, b: b} }
func Number(n float64) Value               { return Value{kind: KindNumber, num: n} }
func Native(fn NativeFn) Value              { return Value{kind: KindNativeFn, native: fn} }
func String(ref heap.Reference) Value      { return Value{kind: KindString, ref: ref} }
func Function(ref heap.Reference) Value    { return Value{kind: KindFunction, ref: ref} }
func Closure(ref heap.Reference) Value     { return Value{kind: KindClosure, ref: ref} }
func Class(ref heap.Reference) Value       { return Value{kind: KindClass, ref: ref} }
func Instance(ref heap.Reference) Value    { return Value{kind: KindInstance, ref: ref} }
func BoundMethod(ref heap.Reference) Value { return Value{kind: KindBoundMethod, ref: ref} }

// Kind reports which variant v holds.
func (v Value) Kind() Kind { return v.kind }

// AsBool, AsNumber, AsNative and Ref extract the payload; callers must check
// Kind first, matching the "accept interfaces, explicit errors" discipline
// used throughout the compiler and VM rather than silently coercing.
func (v Value) AsBool() bool         { return v.b }
func (v Value) AsNumber() float64    { return v.num }
func (v Value) AsNative() NativeFn   { return v.native }
func (v Value) Ref() heap.Reference  { return v.ref }

func (v Value) IsNil() bool    { return v.kind == KindNil }
func (v Value) IsBool() bool   { return v.kind == KindBool }
func (v Value) IsNumber() bool { return v.kind == KindNumber }

// IsFalsey implements lumen's truthiness rule: nil and false are falsey,
// everything else — including 0 and "" — is truthy.
func (v Value) IsFalsey() bool {
	switch v.kind {
	case KindNil:
		return true
	case KindBool:
		return !v.b
	default:
		return false
	}
}

// Equal implements spec §3's equality rule: structural for Nil/Bool/Number,
// identity (slot equality) for every reference-carrying variant. Because
// strings are interned (I4), identity equality on String values is exactly
// byte equality on their contents.
func Equal(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindNil:
		return true
	case KindBool:
		return a.b == b.b
	case KindNumber:
		return a.num == b.num
	case KindNativeFn:
		return false // native functions are never equal, even to themselves twice-wrapped
	default:
		return a.ref == b.ref
	}
}

// TraceRefs marks the inner Reference for reference-carrying variants and is
// a no-op for Nil/Bool/Number/NativeFn, per spec §4.2.
func (v Value) TraceRefs(h *heap.Heap) {
	switch v.kind {
	case KindString, KindFunction, KindClosure, KindClass, KindInstance, KindBoundMethod:
		h.Mark(v.ref)
	}
}

// Format renders v for `print` and error messages, resolving nested
// references through h. Heap objects are asked to format themselves via the
// heap.Trace capability so this package never needs to know their concrete
// Go types.
func (v Value) Format(h *heap.Heap) string {
	switch v.kind {
	case KindNil:
		return "nil"
	case KindBool:
		if v.b {
			return "true"
		}
		return "false"
	case KindNumber:
		return formatNumber(v.num)
	case KindNativeFn:
		return "<native fn>"
	default:
		obj, ok := h.Deref(v.ref)
		if !ok {
			return "<invalid reference>"
		}
		return obj.Format(h)
	}
}

func formatNumber(n float64) string {
	if n == float64(int64(n)) {
		return fmt.Sprintf("%g", n)
	}
	return fmt.Sprintf("%v", n)
}

func (k Kind) String() string {
	switch k {
	case KindNil:
		return "nil"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindNativeFn:
		return "native function"
	case KindString:
		return "string"
	case KindFunction:
		return "function"
	case KindClosure:
		return "closure"
	case KindClass:
		return "class"
	case KindInstance:
		return "instance"
	case KindBoundMethod:
		return "bound method"
	default:
		return "unknown"
	}
}
