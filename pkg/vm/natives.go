package vm

import (
	"time"

	"github.com/kristofer/lumen/pkg/heap"
	"github.com/kristofer/lumen/pkg/object"
	"github.com/kristofer/lumen/pkg/value"
)

// HostError is returned by a native function to report a host-side failure
// (spec §7); the VM surfaces it exactly like a RuntimeError, with no
// special-casing beyond the message.
type HostError struct{ Message string }

func (e *HostError) Error() string { return e.Message }

// DefineNative registers fn as a global callable under name (spec §6.2).
// Natives are looked up by name like any other global, so shadowing one
// with a local `var` of the same name works exactly like shadowing any
// other global.
func (vm *VM) DefineNative(name string, fn value.NativeFn) {
	ref := vm.Heap.Intern(name, vm.roots(), func(s string) heap.Trace { return object.NewString(s) })
	vm.globals[ref] = value.Native(fn)
}

// DefineStandardNatives registers the runtime's small built-in native
// surface: clock() and type(value). This is deliberately narrow — a
// classic clox-style native surface, not a general stdlib-binding layer.
func (vm *VM) DefineStandardNatives() {
	vm.DefineNative("clock", func(args []value.Value) (value.Value, error) {
		if len(args) != 0 {
			return value.Value{}, &HostError{Message: "clock() takes no arguments"}
		}
		return value.Number(float64(time.Now().UnixNano()) / 1e9), nil
	})

	vm.DefineNative("type", func(args []value.Value) (value.Value, error) {
		if len(args) != 1 {
			return value.Value{}, &HostError{Message: "type() takes exactly one argument"}
		}
		ref := vm.Heap.Intern(args[0].Kind().String(), vm.roots(), func(s string) heap.Trace { return object.NewString(s) })
		return value.String(ref), nil
	})
}
