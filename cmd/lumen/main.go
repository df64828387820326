// Command lumen is the CLI driver for the lumen bytecode interpreter: run
// scripts, start a REPL, disassemble compiled chunks, or report heap
// statistics (spec §6.3).
package main

import (
	"fmt"
	"os"

	"gopkg.in/urfave/cli.v1"
)

func main() {
	app := cli.NewApp()
	app.Name = "lumen"
	app.Usage = "a bytecode interpreter for the lumen scripting language"
	app.Version = runtimeVersion
	app.Commands = []cli.Command{
		runCommand,
		replCommand,
		disasmCommand,
		gcstatsCommand,
		versionCommand,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
