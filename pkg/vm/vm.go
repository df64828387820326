// Package vm implements lumen's stack-based bytecode interpreter: the
// fetch-decode-execute loop, call/return protocol, closures, classes and
// runtime error reporting (spec §4.6). There is exactly one VM per program
// run; it is not safe for concurrent use (spec §5).
package vm

import (
	"io"
	"os"

	lru "github.com/hashicorp/golang-lru"

	"github.com/kristofer/lumen/pkg/chunk"
	"github.com/kristofer/lumen/pkg/heap"
	"github.com/kristofer/lumen/pkg/object"
	"github.com/kristofer/lumen/pkg/value"
)

const (
	framesMax = 64
	stackMax  = framesMax * 256
)

// CallFrame is one activation record: which closure is running, where its
// instruction pointer is, and where its locals begin on the value stack.
type CallFrame struct {
	closure  heap.Reference // Closure
	ip       int
	slotBase int
}

// methodCacheKey indexes the bounded method-dispatch cache by the exact
// (class, selector) pair a lookup resolves — a pure speed optimization
// layered on top of the method-table walk (spec SPEC_FULL §4.6); a miss
// always falls back to that walk, so it can never change what a program
// observes.
type methodCacheKey struct {
	class    heap.Reference
	selector heap.Reference
}

// VM executes one compiled program against a heap. Construct with New,
// optionally register natives with DefineNative, then call Interpret.
type VM struct {
	Heap *heap.Heap

	stack []value.Value
	sp    int

	frames []CallFrame

	globals map[heap.Reference]value.Value

	openUpvalues []heap.Reference // Upvalue, sorted by descending StackIndex

	initString heap.Reference

	out io.Writer

	methodCache *lru.Cache
}

// New returns a VM backed by h, writing `print` output to stdout.
func New(h *heap.Heap) *VM {
	cache, err := lru.New(512)
	if err != nil {
		panic(err) // only returns an error for a non-positive size, which 512 isn't
	}
	vm := &VM{
		Heap:        h,
		stack:       make([]value.Value, stackMax),
		frames:      make([]CallFrame, 0, framesMax),
		globals:     make(map[heap.Reference]value.Value),
		out:         os.Stdout,
		methodCache: cache,
	}
	vm.initString = h.Intern("init", nil, func(s string) heap.Trace { return object.NewString(s) })
	// Keep VM state rooted for collections triggered outside the VM's own
	// allocations, such as those the compiler makes during Interpret.
	h.AddRootProvider(vm.roots)
	return vm
}

// SetOutput redirects `print` output; used by tests that assert exact
// output via a bytes.Buffer or pkg/vm/vmmock.
func (vm *VM) SetOutput(w io.Writer) { vm.out = w }

// Global returns the current value bound to the global interned under ref,
// used by the REPL's `:dump` command to inspect state between statements.
func (vm *VM) Global(ref heap.Reference) (value.Value, bool) {
	v, ok := vm.globals[ref]
	return v, ok
}

// roots returns every heap.Reference directly reachable from VM state:
// the value stack, globals, call frames' closures, and open upvalues
// (spec §4.1, "root set"). Passed to every Heap.Alloc/Intern call the VM
// makes. Zero-value References (non-reference-kind Values) are harmless to
// include — Heap.Mark is a no-op on the permanently-dead slot 0.
func (vm *VM) roots() []heap.Reference {
	roots := make([]heap.Reference, 0, vm.sp+len(vm.globals)+len(vm.frames)+len(vm.openUpvalues)+1)
	for i := 0; i < vm.sp; i++ {
		roots = append(roots, vm.stack[i].Ref())
	}
	for _, v := range vm.globals {
		roots = append(roots, v.Ref())
	}
	for _, f := range vm.frames {
		roots = append(roots, f.closure)
	}
	roots = append(roots, vm.openUpvalues...)
	roots = append(roots, vm.initString)
	return roots
}

func (vm *VM) push(v value.Value) { vm.stack[vm.sp] = v; vm.sp++ }
func (vm *VM) pop() value.Value   { vm.sp--; return vm.stack[vm.sp] }
func (vm *VM) peek(distance int) value.Value { return vm.stack[vm.sp-1-distance] }

func (vm *VM) resetStack() {
	vm.sp = 0
	vm.frames = vm.frames[:0]
	vm.openUpvalues = nil
}

func (vm *VM) frame() *CallFrame { return &vm.frames[len(vm.frames)-1] }

func (vm *VM) closureOf(ref heap.Reference) *object.Closure {
	obj := vm.Heap.MustDeref(ref)
	return obj.(*object.Closure)
}

func (vm *VM) functionOf(ref heap.Reference) *object.Function {
	obj := vm.Heap.MustDeref(ref)
	return obj.(*object.Function)
}

func (vm *VM) currentChunk() *chunk.Chunk {
	f := vm.frame()
	cl := vm.closureOf(f.closure)
	return vm.functionOf(cl.Function).Chunk
}

func (vm *VM) readByte() byte {
	f := vm.frame()
	c := vm.currentChunk()
	b := c.Code[f.ip]
	f.ip++
	return b
}

func (vm *VM) readU16() uint16 {
	hi := vm.readByte()
	lo := vm.readByte()
	return uint16(hi)<<8 | uint16(lo)
}

func (vm *VM) readConstant() value.Value {
	f := vm.frame()
	c := vm.currentChunk()
	idx, width := c.ReadConstantIndex(f.ip - 1)
	f.ip += width - 1
	return c.Constants[idx]
}

// readStringConstant reads a plain single-byte constant-pool index, used by
// every opcode that names a global/property/method/class by string
// (OpGetGlobal, OpGetProperty, OpClass, OpMethod, ...). Unlike OpConstant,
// these have no u24 long-index form: the compiler reports a compile error
// for a name whose constant index does not fit in one byte.
func (vm *VM) readStringConstant() heap.Reference {
	idx := int(vm.readByte())
	return vm.currentChunk().Constants[idx].Ref()
}

// Interpret compiles and runs source against this VM, returning a
// *CompileError or *RuntimeError on failure (spec §7).
func (vm *VM) Interpret(source string) error {
	fnRef, err := vm.compile(source)
	if err != nil {
		return err
	}

	closureRef := vm.Heap.Alloc(heap.KindClosure, object.NewClosure(fnRef, nil), vm.roots())
	vm.push(value.Closure(closureRef))
	vm.frames = append(vm.frames, CallFrame{closure: closureRef, ip: 0, slotBase: 0})

	return vm.run()
}

func (vm *VM) callFrameCount() int { return len(vm.frames) }
