package main

import (
	"os"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/urfave/cli.v1"

	"github.com/kristofer/lumen/pkg/compiler"
	"github.com/kristofer/lumen/pkg/heap"
	"github.com/kristofer/lumen/pkg/vm"
)

var runCommand = cli.Command{
	Name:      "run",
	Usage:     "compile and execute a lumen source file",
	ArgsUsage: "<path>",
	Flags: []cli.Flag{
		cli.BoolFlag{Name: "watch", Usage: "re-run on file save"},
		cli.BoolFlag{Name: "stress-gc", Usage: "collect before every allocation"},
	},
	Action: runAction,
}

func runAction(ctx *cli.Context) error {
	path := ctx.Args().First()
	if path == "" {
		return cli.NewExitError("usage: lumen run <path>", 1)
	}

	if !ctx.Bool("watch") {
		os.Exit(runFile(path, ctx.Bool("stress-gc")))
	}
	return watchAndRun(path, ctx.Bool("stress-gc"))
}

// runFile compiles and runs the file at path in a fresh VM, returning the
// process exit code per spec §6.3 (0 ok, 65 compile error, 70 runtime
// error).
func runFile(path string, stressGC bool) int {
	src, err := os.ReadFile(path)
	if err != nil {
		printRuntimeError(err)
		return 70
	}

	h := heap.New()
	h.SetStressGC(stressGC)
	machine := vm.New(h)
	machine.DefineStandardNatives()

	if err := machine.Interpret(string(src)); err != nil {
		switch err.(type) {
		case *compiler.CompileError:
			printCompileError(err)
			return 65
		default:
			printRuntimeError(err)
			return 70
		}
	}
	return 0
}

// watchAndRun re-runs the file on every write event, used by `lumen run
// --watch` for a tight edit/run loop during development.
func watchAndRun(path string, stressGC bool) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(path); err != nil {
		return err
	}

	runFile(path, stressGC)
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				runFile(path, stressGC)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			printRuntimeError(err)
		}
	}
}
