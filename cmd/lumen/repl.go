package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/peterh/liner"
	"gopkg.in/urfave/cli.v1"

	"github.com/kristofer/lumen/pkg/compiler"
	"github.com/kristofer/lumen/pkg/heap"
	"github.com/kristofer/lumen/pkg/object"
	"github.com/kristofer/lumen/pkg/vm"
)

var replCommand = cli.Command{
	Name:   "repl",
	Usage:  "start an interactive lumen session",
	Action: replAction,
}

const historyFile = ".lumen_history"

func replAction(ctx *cli.Context) error {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	if f, err := openHistory(); err == nil {
		line.ReadHistory(f)
		f.Close()
	}

	h := heap.New()
	machine := vm.New(h)
	machine.DefineStandardNatives()

	fmt.Printf("lumen %s — :dump <name> inspects a global, Ctrl-D exits\n", runtimeVersion)

	for {
		input, err := readStatement(line)
		if err == io.EOF || err == liner.ErrPromptAborted {
			break
		}
		if err != nil {
			printRuntimeError(err)
			continue
		}
		if input == "" {
			continue
		}
		line.AppendHistory(input)

		if name, ok := strings.CutPrefix(input, ":dump "); ok {
			dumpGlobal(h, machine, strings.TrimSpace(name))
			continue
		}

		if err := machine.Interpret(input); err != nil {
			switch err.(type) {
			case *compiler.CompileError:
				printCompileError(err)
			default:
				printRuntimeError(err)
			}
		}
	}

	if f, err := saveHistory(); err == nil {
		line.WriteHistory(f)
		f.Close()
	}
	return nil
}

// readStatement reads one logical statement from the REPL, continuing
// across lines while `{`/`}` braces are unbalanced so a multi-line
// function or block can be entered a line at a time.
func readStatement(line *liner.State) (string, error) {
	first, err := line.Prompt("lumen> ")
	if err != nil {
		return "", err
	}
	var b strings.Builder
	b.WriteString(first)
	for braceDepth(b.String()) > 0 {
		next, err := line.Prompt("  ... ")
		if err != nil {
			return "", err
		}
		b.WriteByte('\n')
		b.WriteString(next)
	}
	return b.String(), nil
}

func braceDepth(s string) int {
	depth := 0
	for _, r := range s {
		switch r {
		case '{':
			depth++
		case '}':
			depth--
		}
	}
	return depth
}

// dumpGlobal pretty-prints the resolved heap object behind global name
// using go-spew, for ad-hoc REPL debugging (spec SPEC_FULL §9). It never
// runs on the VM's execution path.
func dumpGlobal(h *heap.Heap, machine *vm.VM, name string) {
	ref := h.Intern(name, nil, func(s string) heap.Trace { return object.NewString(s) })
	v, ok := machine.Global(ref)
	if !ok {
		fmt.Printf("undefined global %q\n", name)
		return
	}
	if obj, ok := h.Deref(v.Ref()); ok {
		spew.Dump(obj)
		return
	}
	spew.Dump(v)
}
