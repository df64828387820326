package vm

import (
	"github.com/kristofer/lumen/pkg/heap"
	"github.com/kristofer/lumen/pkg/object"
	"github.com/kristofer/lumen/pkg/value"
)

// captureUpvalue returns the Upvalue for stackIndex, reusing an existing
// open one if a prior closure already captured the same slot (spec §4.6,
// "capture_upvalue"). The open list is kept sorted by descending
// StackIndex, which is what lets closeUpvalues pop a contiguous prefix
// instead of scanning the whole list.
func (vm *VM) captureUpvalue(stackIndex int) heap.Reference {
	i := 0
	for i < len(vm.openUpvalues) {
		uv := vm.Heap.MustDeref(vm.openUpvalues[i]).(*object.Upvalue)
		if uv.StackIndex == stackIndex {
			return vm.openUpvalues[i]
		}
		if uv.StackIndex < stackIndex {
			break
		}
		i++
	}

	ref := vm.Heap.Alloc(heap.KindUpvalue, object.NewOpenUpvalue(stackIndex), vm.roots())
	vm.openUpvalues = append(vm.openUpvalues, heap.Reference{})
	copy(vm.openUpvalues[i+1:], vm.openUpvalues[i:])
	vm.openUpvalues[i] = ref
	return ref
}

// closeUpvalues closes every open upvalue at or above stack index `from`,
// copying the stack slot's current value into the upvalue so it survives
// the frame that owned the slot returning (spec §4.6, "close_upvalues").
func (vm *VM) closeUpvalues(from int) {
	i := 0
	for i < len(vm.openUpvalues) {
		uv := vm.Heap.MustDeref(vm.openUpvalues[i]).(*object.Upvalue)
		if uv.StackIndex < from {
			break
		}
		uv.Closed = vm.stack[uv.StackIndex]
		uv.IsClosed = true
		i++
	}
	vm.openUpvalues = vm.openUpvalues[i:]
}

func (vm *VM) readUpvalue(ref heap.Reference) value.Value {
	uv := vm.Heap.MustDeref(ref).(*object.Upvalue)
	if uv.IsClosed {
		return uv.Closed
	}
	return vm.stack[uv.StackIndex]
}

func (vm *VM) writeUpvalue(ref heap.Reference, v value.Value) {
	uv := vm.Heap.MustDeref(ref).(*object.Upvalue)
	if uv.IsClosed {
		uv.Closed = v
	} else {
		vm.stack[uv.StackIndex] = v
	}
}
