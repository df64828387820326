package vm

import (
	"github.com/kristofer/lumen/pkg/compiler"
	"github.com/kristofer/lumen/pkg/heap"
)

// Version is the embedded runtime version string, checked against any
// `// lumen: requires <constraint>` pragma a source file declares.
const Version = "1.0.0"

func (vm *VM) compile(source string) (heap.Reference, error) {
	if err := compiler.CheckVersionPragma(source, Version); err != nil {
		return heap.Reference{}, &compiler.CompileError{Messages: []string{err.Error()}}
	}
	return compiler.Compile(source, vm.Heap)
}
