package main

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
	"gopkg.in/urfave/cli.v1"

	"github.com/kristofer/lumen/pkg/vm"
)

// runtimeVersion is validated as a real semantic version at init time
// rather than trusted as a bare string literal, so a malformed
// vm.Version would fail fast instead of silently propagating into every
// `// lumen: requires` pragma check.
var runtimeVersion = mustValidVersion(vm.Version)

func mustValidVersion(v string) string {
	if _, err := semver.NewVersion(v); err != nil {
		panic(fmt.Sprintf("invalid embedded runtime version %q: %v", v, err))
	}
	return v
}

var versionCommand = cli.Command{
	Name:   "version",
	Usage:  "print the runtime version",
	Action: versionAction,
}

func versionAction(ctx *cli.Context) error {
	fmt.Println(runtimeVersion)
	return nil
}
