package vm

import (
	"fmt"

	"github.com/kristofer/lumen/pkg/chunk"
	"github.com/kristofer/lumen/pkg/heap"
	"github.com/kristofer/lumen/pkg/object"
	"github.com/kristofer/lumen/pkg/value"
)

// run is the fetch-decode-execute loop: one iteration reads one opcode from
// the current frame's chunk and dispatches on it (spec §4.6). It returns
// when the outermost frame returns, or as soon as any instruction produces
// a RuntimeError.
func (vm *VM) run() error {
	for {
		op := chunk.OpCode(vm.readByte())
		switch op {
		case chunk.OpConstant, chunk.OpConstantLong:
			vm.push(vm.readConstant())

		case chunk.OpNil:
			vm.push(value.Nil())
		case chunk.OpTrue:
			vm.push(value.Bool(true))
		case chunk.OpFalse:
			vm.push(value.Bool(false))
		case chunk.OpPop:
			vm.pop()

		case chunk.OpGetLocal:
			slot := int(vm.readByte())
			vm.push(vm.stack[vm.frame().slotBase+slot])
		case chunk.OpSetLocal:
			slot := int(vm.readByte())
			vm.stack[vm.frame().slotBase+slot] = vm.peek(0)

		case chunk.OpGetGlobal:
			name := vm.readStringConstant()
			v, ok := vm.globals[name]
			if !ok {
				return vm.runtimeError("Undefined variable '%s'", vm.nameOf(name))
			}
			vm.push(v)
		case chunk.OpDefineGlobal:
			name := vm.readStringConstant()
			vm.globals[name] = vm.peek(0)
			vm.pop()
		case chunk.OpSetGlobal:
			name := vm.readStringConstant()
			if _, ok := vm.globals[name]; !ok {
				return vm.runtimeError("Undefined variable '%s'", vm.nameOf(name))
			}
			vm.globals[name] = vm.peek(0)

		case chunk.OpGetUpvalue:
			slot := int(vm.readByte())
			cl := vm.closureOf(vm.frame().closure)
			vm.push(vm.readUpvalue(cl.Upvalues[slot]))
		case chunk.OpSetUpvalue:
			slot := int(vm.readByte())
			cl := vm.closureOf(vm.frame().closure)
			vm.writeUpvalue(cl.Upvalues[slot], vm.peek(0))

		case chunk.OpGetProperty:
			if err := vm.getProperty(); err != nil {
				return err
			}
		case chunk.OpSetProperty:
			if err := vm.setProperty(); err != nil {
				return err
			}
		case chunk.OpGetSuper:
			name := vm.readStringConstant()
			super := vm.pop()
			if err := vm.bindMethod(super.Ref(), name); err != nil {
				return err
			}

		case chunk.OpEqual:
			b, a := vm.pop(), vm.pop()
			vm.push(value.Bool(value.Equal(a, b)))
		case chunk.OpGreater:
			if err := vm.numericBinary(op); err != nil {
				return err
			}
		case chunk.OpLess:
			if err := vm.numericBinary(op); err != nil {
				return err
			}
		case chunk.OpAdd:
			if err := vm.add(); err != nil {
				return err
			}
		case chunk.OpSubtract, chunk.OpMultiply, chunk.OpDivide:
			if err := vm.numericBinary(op); err != nil {
				return err
			}
		case chunk.OpNot:
			vm.push(value.Bool(vm.pop().IsFalsey()))
		case chunk.OpNegate:
			if !vm.peek(0).IsNumber() {
				return vm.runtimeError("operand must be a number")
			}
			vm.push(value.Number(-vm.pop().AsNumber()))

		case chunk.OpPrint:
			fmt.Fprintln(vm.out, vm.pop().Format(vm.Heap))

		case chunk.OpJump:
			offset := vm.readU16()
			vm.frame().ip += int(offset)
		case chunk.OpJumpIfFalse:
			offset := vm.readU16()
			if vm.peek(0).IsFalsey() {
				vm.frame().ip += int(offset)
			}
		case chunk.OpLoop:
			offset := vm.readU16()
			vm.frame().ip -= int(offset)

		case chunk.OpCall:
			argCount := int(vm.readByte())
			if err := vm.callValue(vm.peek(argCount), argCount); err != nil {
				return err
			}
		case chunk.OpInvoke:
			name := vm.readStringConstant()
			argCount := int(vm.readByte())
			if err := vm.invoke(name, argCount); err != nil {
				return err
			}
		case chunk.OpSuperInvoke:
			name := vm.readStringConstant()
			argCount := int(vm.readByte())
			superclass := vm.pop()
			if err := vm.invokeFromClass(superclass.Ref(), name, argCount); err != nil {
				return err
			}

		case chunk.OpClosure:
			if err := vm.makeClosure(); err != nil {
				return err
			}
		case chunk.OpCloseUpvalue:
			vm.closeUpvalues(vm.sp - 1)
			vm.pop()

		case chunk.OpReturn:
			result := vm.pop()
			frame := vm.frame()
			vm.closeUpvalues(frame.slotBase)
			returnBase := frame.slotBase
			vm.frames = vm.frames[:len(vm.frames)-1]
			if len(vm.frames) == 0 {
				vm.pop() // the top-level script closure
				return nil
			}
			vm.sp = returnBase
			vm.push(result)

		case chunk.OpClass:
			name := vm.readStringConstant()
			ref := vm.Heap.Alloc(heap.KindClass, object.NewClass(name), vm.roots())
			vm.push(value.Class(ref))
		case chunk.OpInherit:
			superVal := vm.peek(1)
			if superVal.Kind() != value.KindClass {
				return vm.runtimeError("superclass must be a class")
			}
			subclass := vm.Heap.MustDeref(vm.peek(0).Ref()).(*object.Class)
			superclass := vm.Heap.MustDeref(superVal.Ref()).(*object.Class)
			for selector, method := range superclass.Methods {
				subclass.Methods[selector] = method
			}
			subclass.Superclass = superVal.Ref()
			vm.pop() // pops the subclass; the superclass value stays as the "super" local
		case chunk.OpMethod:
			name := vm.readStringConstant()
			vm.defineMethod(name)

		default:
			return vm.runtimeError("unknown opcode %v", op)
		}
	}
}

func (vm *VM) nameOf(ref heap.Reference) string {
	obj, ok := vm.Heap.Deref(ref)
	if !ok {
		return "?"
	}
	return obj.Format(vm.Heap)
}
