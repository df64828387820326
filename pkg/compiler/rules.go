package compiler

import "github.com/kristofer/lumen/pkg/token"

// Precedence orders binary operators from loosest- to tightest-binding,
// exactly as spec §4.5's table lists them. parsePrecedence(p) consumes
// every infix operator whose own precedence is >= p.
type Precedence int

const (
	PrecNone Precedence = iota
	PrecAssignment // =
	PrecOr         // or
	PrecAnd        // and
	PrecEquality   // == !=
	PrecComparison // < > <= >=
	PrecTerm       // + -
	PrecFactor     // * /
	PrecUnary      // ! -
	PrecCall       // . ()
	PrecPrimary
)

// ParseFn compiles one prefix or infix expression form. canAssign tells a
// prefix handler (namely `variable`) whether `=` following it should be
// treated as assignment, which matters only at PrecAssignment or looser —
// `a + b = c` must not silently compile as an assignment to `b`.
type ParseFn func(c *Compiler, canAssign bool)

// Rule is one row of the Pratt parsing table: the prefix handler (if this
// token can start an expression), the infix handler (if it can continue
// one), and the infix's binding precedence.
type Rule struct {
	Prefix     ParseFn
	Infix      ParseFn
	Precedence Precedence
}

var rules map[token.Type]Rule

func init() {
	rules = map[token.Type]Rule{
		token.LeftParen:    {Prefix: (*Compiler).grouping, Infix: (*Compiler).call, Precedence: PrecCall},
		token.Dot:          {Infix: (*Compiler).dot, Precedence: PrecCall},
		token.Minus:        {Prefix: (*Compiler).unary, Infix: (*Compiler).binary, Precedence: PrecTerm},
		token.Plus:         {Infix: (*Compiler).binary, Precedence: PrecTerm},
		token.Slash:        {Infix: (*Compiler).binary, Precedence: PrecFactor},
		token.Star:         {Infix: (*Compiler).binary, Precedence: PrecFactor},
		token.Bang:         {Prefix: (*Compiler).unary},
		token.BangEqual:    {Infix: (*Compiler).binary, Precedence: PrecEquality},
		token.EqualEqual:   {Infix: (*Compiler).binary, Precedence: PrecEquality},
		token.Greater:      {Infix: (*Compiler).binary, Precedence: PrecComparison},
		token.GreaterEqual: {Infix: (*Compiler).binary, Precedence: PrecComparison},
		token.Less:         {Infix: (*Compiler).binary, Precedence: PrecComparison},
		token.LessEqual:    {Infix: (*Compiler).binary, Precedence: PrecComparison},
		token.Identifier:   {Prefix: (*Compiler).variable},
		token.String:       {Prefix: (*Compiler).stringLiteral},
		token.Number:       {Prefix: (*Compiler).number},
		token.And:          {Infix: (*Compiler).and_, Precedence: PrecAnd},
		token.Or:           {Infix: (*Compiler).or_, Precedence: PrecOr},
		token.False:        {Prefix: (*Compiler).literal},
		token.Nil:          {Prefix: (*Compiler).literal},
		token.True:         {Prefix: (*Compiler).literal},
		token.Super:        {Prefix: (*Compiler).super_},
		token.This:         {Prefix: (*Compiler).this_},
	}
}

func ruleFor(t token.Type) Rule { return rules[t] }

// parsePrecedence is the heart of the Pratt parser: consume a prefix
// expression, then keep consuming infix operators as long as they bind at
// least as tightly as minPrec.
func (c *Compiler) parsePrecedence(minPrec Precedence) {
	c.advance()
	prefix := ruleFor(c.previous.Type).Prefix
	if prefix == nil {
		c.error("expect expression")
		return
	}
	canAssign := minPrec <= PrecAssignment
	prefix(c, canAssign)

	for minPrec <= ruleFor(c.current.Type).Precedence {
		c.advance()
		infix := ruleFor(c.previous.Type).Infix
		infix(c, canAssign)
	}

	if canAssign && c.match(token.Equal) {
		c.error("invalid assignment target")
	}
}

func (c *Compiler) expression() { c.parsePrecedence(PrecAssignment) }
