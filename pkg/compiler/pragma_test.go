package compiler_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kristofer/lumen/pkg/compiler"
)

func TestVersionPragmaAbsentAlwaysPasses(t *testing.T) {
	err := compiler.CheckVersionPragma("var x = 1;", "1.0.0")
	assert.NoError(t, err)
}

func TestVersionPragmaSatisfiedConstraint(t *testing.T) {
	err := compiler.CheckVersionPragma("// lumen: requires >=1.0.0, <2.0.0\nvar x = 1;", "1.5.0")
	assert.NoError(t, err)
}

func TestVersionPragmaUnsatisfiedConstraint(t *testing.T) {
	err := compiler.CheckVersionPragma("// lumen: requires >=2.0.0\nvar x = 1;", "1.5.0")
	assert.Error(t, err)
}

func TestVersionPragmaInvalidConstraintSyntax(t *testing.T) {
	err := compiler.CheckVersionPragma("// lumen: requires not-a-constraint\nvar x = 1;", "1.5.0")
	assert.Error(t, err)
}
