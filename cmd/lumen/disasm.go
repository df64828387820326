package main

import (
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"gopkg.in/urfave/cli.v1"

	"github.com/kristofer/lumen/pkg/chunk"
	"github.com/kristofer/lumen/pkg/compiler"
	"github.com/kristofer/lumen/pkg/heap"
	"github.com/kristofer/lumen/pkg/object"
	"github.com/kristofer/lumen/pkg/value"
)

var disasmCommand = cli.Command{
	Name:      "disasm",
	Usage:     "compile a file and print its bytecode without running it",
	ArgsUsage: "<path>",
	Action:    disasmAction,
}

func disasmAction(ctx *cli.Context) error {
	path := ctx.Args().First()
	if path == "" {
		return cli.NewExitError("usage: lumen disasm <path>", 1)
	}

	src, err := os.ReadFile(path)
	if err != nil {
		return cli.NewExitError(err.Error(), 70)
	}

	h := heap.New()
	fnRef, err := compiler.Compile(string(src), h)
	if err != nil {
		printCompileError(err)
		return cli.NewExitError("", 65)
	}

	seen := make(map[heap.Reference]bool)
	printFunction(h, fnRef, seen)
	return nil
}

// printFunction renders fnRef's chunk as a table, then recurses into every
// nested Function found among its constants so a whole program's call
// tree is disassembled in one pass.
func printFunction(h *heap.Heap, fnRef heap.Reference, seen map[heap.Reference]bool) {
	if seen[fnRef] {
		return
	}
	seen[fnRef] = true

	fn, ok := h.Deref(fnRef)
	if !ok {
		return
	}
	function := fn.(*object.Function)

	fmt.Printf("== %s ==\n", function.Format(h))
	rows := chunk.Disassemble(function.Chunk, h)

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"offset", "line", "op", "operand"})
	for _, row := range rows {
		line := fmt.Sprintf("%d", row.Line)
		if row.SameLine {
			line = "|"
		}
		table.Append([]string{fmt.Sprintf("%04d", row.Offset), line, row.Name, row.Operand})
	}
	table.Render()
	fmt.Println()

	for _, c := range function.Chunk.Constants {
		if c.Kind() == value.KindFunction {
			printFunction(h, c.Ref(), seen)
		}
	}
}
