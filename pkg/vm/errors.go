package vm

import (
	"fmt"
	"strings"
)

// StackFrame is one entry in a RuntimeError's backtrace: the function it
// was raised in and the source line being executed at the time.
type StackFrame struct {
	FunctionName string
	Line         int
}

// RuntimeError is a failure raised while running already-compiled
// bytecode — a type error, an undefined variable, a failed call — as
// opposed to a CompileError caught before execution starts (spec §7).
type RuntimeError struct {
	Message    string
	StackTrace []StackFrame
}

func (e *RuntimeError) Error() string {
	var b strings.Builder
	b.WriteString(e.Message)
	b.WriteString("\nStack trace:\n")
	for i := len(e.StackTrace) - 1; i >= 0; i-- {
		f := e.StackTrace[i]
		fmt.Fprintf(&b, "  at %s [line %d]\n", f.FunctionName, f.Line)
	}
	return b.String()
}

// runtimeError builds a RuntimeError from every active call frame's current
// line, outermost frame first in StackTrace (Error renders them top frame
// first, matching the teacher's own "Stack trace:" format), and resets the
// VM's stack so a REPL session can keep going after one.
func (vm *VM) runtimeError(format string, args ...interface{}) error {
	msg := fmt.Sprintf(format, args...)

	trace := make([]StackFrame, len(vm.frames))
	for i, f := range vm.frames {
		cl := vm.closureOf(f.closure)
		fn := vm.functionOf(cl.Function)
		name := "<script>"
		if fn.Name.Index != 0 {
			name = fn.Format(vm.Heap)
		}
		line := fn.Chunk.LineFor(f.ip - 1)
		trace[i] = StackFrame{FunctionName: name, Line: line}
	}

	vm.resetStack()
	return &RuntimeError{Message: msg, StackTrace: trace}
}
