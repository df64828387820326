package vm

import (
	"github.com/kristofer/lumen/pkg/heap"
	"github.com/kristofer/lumen/pkg/object"
	"github.com/kristofer/lumen/pkg/value"
)

// callValue dispatches a call expression's callee to the right protocol:
// Closure, NativeFn, Class (instantiation + init), or BoundMethod (spec
// §4.6, "call protocol").
func (vm *VM) callValue(callee value.Value, argCount int) error {
	switch callee.Kind() {
	case value.KindClosure:
		return vm.call(callee.Ref(), argCount)

	case value.KindNativeFn:
		args := vm.stack[vm.sp-argCount : vm.sp]
		result, err := callee.AsNative()(args)
		if err != nil {
			return vm.runtimeError("%s", err.Error())
		}
		vm.sp -= argCount + 1
		vm.push(result)
		return nil

	case value.KindClass:
		classRef := callee.Ref()
		cls := vm.Heap.MustDeref(classRef).(*object.Class)
		instRef := vm.Heap.Alloc(heap.KindInstance, object.NewInstance(classRef), vm.roots())
		vm.stack[vm.sp-argCount-1] = value.Instance(instRef)

		if initRef, ok := cls.Methods[vm.initString]; ok {
			return vm.call(initRef, argCount)
		}
		if argCount != 0 {
			return vm.runtimeError("expected 0 arguments but got %d", argCount)
		}
		return nil

	case value.KindBoundMethod:
		bound := vm.Heap.MustDeref(callee.Ref()).(*object.BoundMethod)
		vm.stack[vm.sp-argCount-1] = bound.Receiver
		return vm.call(bound.Method, argCount)

	default:
		return vm.runtimeError("can only call functions and classes")
	}
}

func (vm *VM) call(closureRef heap.Reference, argCount int) error {
	cl := vm.closureOf(closureRef)
	fn := vm.functionOf(cl.Function)
	if argCount != fn.Arity {
		return vm.runtimeError("expected %d arguments but got %d", fn.Arity, argCount)
	}
	if len(vm.frames) >= framesMax {
		return vm.runtimeError("stack overflow")
	}
	vm.frames = append(vm.frames, CallFrame{
		closure:  closureRef,
		ip:       0,
		slotBase: vm.sp - argCount - 1,
	})
	return nil
}

// resolveMethod looks up selector in class's (already-flattened, thanks to
// OpInherit copying entries forward) method table, consulting the bounded
// dispatch cache first. A cache miss always falls through to the exact
// table lookup, so the cache can never produce a different answer than the
// uncached path (spec SPEC_FULL §4.6).
func (vm *VM) resolveMethod(classRef, selector heap.Reference) (heap.Reference, bool) {
	key := methodCacheKey{class: classRef, selector: selector}
	if cached, ok := vm.methodCache.Get(key); ok {
		return cached.(heap.Reference), true
	}
	cls := vm.Heap.MustDeref(classRef).(*object.Class)
	method, ok := cls.Methods[selector]
	if !ok {
		return heap.Reference{}, false
	}
	vm.methodCache.Add(key, method)
	return method, true
}

func (vm *VM) invokeFromClass(classRef, selector heap.Reference, argCount int) error {
	methodRef, ok := vm.resolveMethod(classRef, selector)
	if !ok {
		return vm.runtimeError("undefined property '%s'", vm.nameOf(selector))
	}
	return vm.call(methodRef, argCount)
}

// invoke implements the `receiver.selector(args)` fast path: it resolves
// and calls the method directly off the receiver's class without
// allocating a BoundMethod first (spec §4.6, "invoke fusion"). A field that
// shadows a method name is still checked first, matching plain
// OpGetProperty + OpCall semantics exactly.
func (vm *VM) invoke(selector heap.Reference, argCount int) error {
	receiver := vm.peek(argCount)
	if receiver.Kind() != value.KindInstance {
		return vm.runtimeError("only instances have methods")
	}
	inst := vm.Heap.MustDeref(receiver.Ref()).(*object.Instance)
	if v, ok := inst.Fields[selector]; ok {
		vm.stack[vm.sp-argCount-1] = v
		return vm.callValue(v, argCount)
	}
	return vm.invokeFromClass(inst.Class, selector, argCount)
}

// bindMethod resolves selector against classRef and wraps it with the
// current peek(0) receiver into a BoundMethod, replacing the receiver on
// the stack with the bound value (spec §4.6, "OpGetProperty on a method").
func (vm *VM) bindMethod(classRef, selector heap.Reference) error {
	methodRef, ok := vm.resolveMethod(classRef, selector)
	if !ok {
		return vm.runtimeError("undefined property '%s'", vm.nameOf(selector))
	}
	receiver := vm.peek(0)
	boundRef := vm.Heap.Alloc(heap.KindBoundMethod, object.NewBoundMethod(receiver, methodRef), vm.roots())
	vm.pop()
	vm.push(value.BoundMethod(boundRef))
	return nil
}

func (vm *VM) getProperty() error {
	name := vm.readStringConstant()
	receiver := vm.peek(0)
	if receiver.Kind() != value.KindInstance {
		return vm.runtimeError("only instances have properties")
	}
	inst := vm.Heap.MustDeref(receiver.Ref()).(*object.Instance)
	if v, ok := inst.Fields[name]; ok {
		vm.pop()
		vm.push(v)
		return nil
	}
	return vm.bindMethod(inst.Class, name)
}

func (vm *VM) setProperty() error {
	name := vm.readStringConstant()
	receiver := vm.peek(1)
	if receiver.Kind() != value.KindInstance {
		return vm.runtimeError("only instances have fields")
	}
	inst := vm.Heap.MustDeref(receiver.Ref()).(*object.Instance)
	v := vm.peek(0)
	inst.Fields[name] = v
	vm.pop()
	vm.pop()
	vm.push(v)
	return nil
}

func (vm *VM) defineMethod(name heap.Reference) {
	method := vm.peek(0)
	cls := vm.Heap.MustDeref(vm.peek(1).Ref()).(*object.Class)
	cls.Methods[name] = method.Ref()
	vm.pop()
}

func (vm *VM) makeClosure() error {
	idx := int(vm.readByte())
	fnVal := vm.currentChunk().Constants[idx]
	fnRef := fnVal.Ref()
	fn := vm.functionOf(fnRef)

	upvalues := make([]heap.Reference, len(fn.Upvalues))
	for i := range upvalues {
		isLocal := vm.readByte() != 0
		index := int(vm.readByte())
		if isLocal {
			upvalues[i] = vm.captureUpvalue(vm.frame().slotBase + index)
		} else {
			cl := vm.closureOf(vm.frame().closure)
			upvalues[i] = cl.Upvalues[index]
		}
	}

	closureRef := vm.Heap.Alloc(heap.KindClosure, object.NewClosure(fnRef, upvalues), vm.roots())
	vm.push(value.Closure(closureRef))
	return nil
}
