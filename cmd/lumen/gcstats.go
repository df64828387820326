package main

import (
	"fmt"
	"os"

	"github.com/fjl/memsize"
	"gopkg.in/urfave/cli.v1"

	"github.com/kristofer/lumen/pkg/heap"
	"github.com/kristofer/lumen/pkg/vm"
)

var gcstatsCommand = cli.Command{
	Name:      "gcstats",
	Usage:     "run a file and report heap memory usage",
	ArgsUsage: "<path>",
	Action:    gcstatsAction,
}

func gcstatsAction(ctx *cli.Context) error {
	path := ctx.Args().First()
	if path == "" {
		return cli.NewExitError("usage: lumen gcstats <path>", 1)
	}

	src, err := os.ReadFile(path)
	if err != nil {
		return cli.NewExitError(err.Error(), 70)
	}

	h := heap.New()
	machine := vm.New(h)
	machine.DefineStandardNatives()

	runErr := machine.Interpret(string(src))

	fmt.Printf("lumen accounting: %d bytes allocated, next GC at %d bytes, %d slab slots (live or free)\n",
		h.BytesAllocated(), h.NextGCThreshold(), h.SlotCount())

	sizes := memsize.Scan(h)
	sizes.Report(os.Stdout)

	if runErr != nil {
		printRuntimeError(runErr)
		return cli.NewExitError("", 70)
	}
	return nil
}
