package main

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
)

// stderrWriter wraps os.Stderr through go-colorable so ANSI codes render on
// Windows consoles, and disables color entirely when stderr isn't a
// terminal (piped to a file, captured by CI) per spec §6.3.
func stderrWriter() io.Writer {
	if !isatty.IsTerminal(os.Stderr.Fd()) && !isatty.IsCygwinTerminal(os.Stderr.Fd()) {
		color.NoColor = true
	}
	return colorable.NewColorableStderr()
}

func printCompileError(err error) {
	red := color.New(color.FgRed, color.Bold).SprintFunc()
	fmt.Fprintf(stderrWriter(), "%s %s\n", red("compile error:"), err.Error())
}

func printRuntimeError(err error) {
	red := color.New(color.FgRed, color.Bold).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	fmt.Fprintf(stderrWriter(), "%s %s\n", red("runtime error:"), yellow(err.Error()))
}
