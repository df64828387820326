package vm

import (
	"github.com/kristofer/lumen/pkg/chunk"
	"github.com/kristofer/lumen/pkg/heap"
	"github.com/kristofer/lumen/pkg/object"
	"github.com/kristofer/lumen/pkg/value"
)

// numericBinary implements OpGreater/OpLess/OpSubtract/OpMultiply/OpDivide:
// both operands must be numbers. Division by zero follows IEEE-754 (±Inf
// or NaN), it never traps (spec §4.6, "arithmetic").
func (vm *VM) numericBinary(op chunk.OpCode) error {
	if !vm.peek(0).IsNumber() || !vm.peek(1).IsNumber() {
		return vm.runtimeError("operands must be numbers")
	}
	b := vm.pop().AsNumber()
	a := vm.pop().AsNumber()
	switch op {
	case chunk.OpGreater:
		vm.push(value.Bool(a > b))
	case chunk.OpLess:
		vm.push(value.Bool(a < b))
	case chunk.OpSubtract:
		vm.push(value.Number(a - b))
	case chunk.OpMultiply:
		vm.push(value.Number(a * b))
	case chunk.OpDivide:
		vm.push(value.Number(a / b))
	}
	return nil
}

// add implements OpAdd: number+number is arithmetic, string+string is
// concatenation through the intern table (so two concatenations producing
// equal content still share one heap slot, preserving I4), anything else
// is a type error.
func (vm *VM) add() error {
	b, a := vm.peek(0), vm.peek(1)
	switch {
	case a.IsNumber() && b.IsNumber():
		vm.pop()
		vm.pop()
		vm.push(value.Number(a.AsNumber() + b.AsNumber()))
		return nil
	case a.Kind() == value.KindString && b.Kind() == value.KindString:
		vm.pop()
		vm.pop()
		aStr := vm.Heap.MustDeref(a.Ref()).(*object.String).Value
		bStr := vm.Heap.MustDeref(b.Ref()).(*object.String).Value
		ref := vm.Heap.Intern(aStr+bStr, vm.roots(), func(s string) heap.Trace { return object.NewString(s) })
		vm.push(value.String(ref))
		return nil
	default:
		return vm.runtimeError("operands must be two numbers or two strings")
	}
}
