/*
Package regexpr builds parsers out of composable regular expressions.

# Overview

A grammar is an expression tree: literals, character classes, sequences,
choices, repetitions, look-around assertions and tokens. A token is a named
capture group; the text it matches becomes a node of the parse tree, and its
production rules turn that node into a Go value.

Parsing runs in four steps:

 1. Compile renders the expression tree into a single .NET-dialect regular
    expression and a table from capture-group names to tokens.

 2. Pattern.Match runs the expression once, in multiline mode, and collects
    the capture history of every group.

 3. BuildTree nests the flat list of captures by span containment and
    recovers document order among siblings.

 4. Produce walks the tree children first and applies the production rules
    of each token.

# Whitespace

Every token is preceded by a whitespace expression, outside of its capture
group. The default is given to Compile; a token may override it with WithWs
or disable it with NoSkipWs. SkipWs returns a marker which only skips
whitespace.

# Production rules

Siblings of the parse tree are evaluated as an operator-precedence
expression. Tokens without rules produce their captured text. Plain rules
produce a value from the captured text and from the productions of the
node's children; operator rules (PrefixRule, PostfixRule, InfixRule) and
delimiter rules (LeftDelimiterRule, RightDelimiterRule) also consume the
productions of neighbouring siblings:

	num := regexpr.NewToken("num", regexpr.OneOrMore(regexpr.CharDigit()),
		regexpr.NewRule(regexpr.Capture(strconv.Atoi)))
	add := regexpr.NewToken("expr", regexpr.Lit("+"),
		regexpr.InfixRule(10, regexpr.Create2(nil, func(x, y int) int { return x + y })))

	p, err := regexpr.Render(regexpr.OneOrMore(regexpr.Alt(num, add)), regexpr.Space())
	if err != nil {
		// handle error
	}
	prods, err := p.Parse("1 + 2")
	// regexpr.FirstOf[int](prods, "expr") == 3

# Deferred productions

A rule marked with Defer returns a *Deferred instead of a finished value.
An enclosing rule classifies it with the Classify action; the object is
constructed when the production Context is drained, which Parse does once
before returning.

# Errors

Errors are *CompileError, *ParseError or *ProductionError, and match
ErrCompile, ErrParse and ErrProduction with errors.Is.
*/
package regexpr
