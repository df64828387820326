// Package invariant panics on conditions that indicate a bug in the
// compiler or VM itself — never a condition an object-language program can
// trigger. These never surface as CompileError, RuntimeError or HostError
// (spec §7); they're a programmer-error escape hatch, and a panic with a
// captured stack frame is the fastest way to find where things went wrong.
package invariant

import (
	"fmt"

	"github.com/go-stack/stack"
)

// Violation is the panic value invariant.Check raises; it carries the
// message and the call stack at the point of the violation.
type Violation struct {
	Message string
	Stack   stack.CallStack
}

func (v *Violation) Error() string {
	return fmt.Sprintf("internal invariant violated: %s\n%+v", v.Message, v.Stack)
}

// Check panics with a Violation if cond is false. Call sites name the
// invariant that should have held, e.g.
//
//	invariant.Check(frame.slotBase <= len(vm.stack), "call frame slot base within stack bounds")
func Check(cond bool, message string, args ...interface{}) {
	if cond {
		return
	}
	panic(&Violation{
		Message: fmt.Sprintf(message, args...),
		Stack:   stack.Trace().TrimRuntime(),
	})
}

// Unreachable panics unconditionally; use it for switch default cases that
// should be impossible given the caller's own invariants.
func Unreachable(message string, args ...interface{}) {
	panic(&Violation{
		Message: fmt.Sprintf(message, args...),
		Stack:   stack.Trace().TrimRuntime(),
	})
}
