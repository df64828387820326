package compiler

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// versionPragmaPrefix is the leading comment form a source file may use to
// declare the runtime versions it expects: `// lumen: requires <constraint>`.
const versionPragmaPrefix = "// lumen: requires "

// CheckVersionPragma inspects the first line of source for a version
// pragma and, if present, validates runtimeVersion against it using
// semantic-version constraint syntax (e.g. ">=1.0.0, <2.0.0"). This is
// tooling bolted onto the compiler, not a language feature: a source file
// with no pragma always compiles.
func CheckVersionPragma(source, runtimeVersion string) error {
	firstLine := source
	if idx := strings.IndexByte(source, '\n'); idx != -1 {
		firstLine = source[:idx]
	}
	firstLine = strings.TrimRight(firstLine, "\r")

	if !strings.HasPrefix(firstLine, versionPragmaPrefix) {
		return nil
	}
	constraintText := strings.TrimSpace(strings.TrimPrefix(firstLine, versionPragmaPrefix))

	constraint, err := semver.NewConstraint(constraintText)
	if err != nil {
		return fmt.Errorf("invalid version pragma %q: %w", constraintText, err)
	}
	v, err := semver.NewVersion(runtimeVersion)
	if err != nil {
		return fmt.Errorf("invalid runtime version %q: %w", runtimeVersion, err)
	}
	if !constraint.Check(v) {
		return fmt.Errorf("source requires lumen %s, running %s", constraintText, runtimeVersion)
	}
	return nil
}
