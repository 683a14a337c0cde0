package regexpr

import (
	"fmt"
	"strconv"
	"strings"
)

// ExprType identifies the variant of an expression node.
type ExprType int

const (
	ExprLiteral  ExprType = iota // escaped literal text
	ExprRaw                      // verbatim regex fragment
	ExprChars                    // character class element
	ExprRange                    // character range element
	ExprSet                      // combination of class elements
	ExprSequence                 // concatenation
	ExprChoice                   // alternation
	ExprRepeat                   // quantifier
	ExprToken                    // capture group bound to a token id
	ExprAssert                   // look-ahead / look-behind
)

func (t ExprType) String() string {
	switch t {
	case ExprLiteral:
		return "Literal"
	case ExprRaw:
		return "Raw"
	case ExprChars:
		return "Chars"
	case ExprRange:
		return "Range"
	case ExprSet:
		return "Set"
	case ExprSequence:
		return "Sequence"
	case ExprChoice:
		return "Choice"
	case ExprRepeat:
		return "Repeat"
	case ExprToken:
		return "Token"
	case ExprAssert:
		return "Assert"
	}
	return "ExprType(" + strconv.Itoa(int(t)) + ")"
}

// Expr is a node of the pattern-composition tree.
type Expr interface {
	Type() ExprType
	String() string
}

var (
	_ Expr = (*Literal)(nil)
	_ Expr = (*RawPattern)(nil)
	_ Expr = (*CharClass)(nil)
	_ Expr = (*CharRange)(nil)
	_ Expr = (*CharSet)(nil)
	_ Expr = (*Sequence)(nil)
	_ Expr = (*Choice)(nil)
	_ Expr = (*Repetition)(nil)
	_ Expr = (*Token)(nil)
	_ Expr = (*Assertion)(nil)
)

// Literal matches Text verbatim. Meta-characters are escaped when rendered.
type Literal struct {
	Text string
}

// Lit returns a literal expression.
func Lit(text string) *Literal { return &Literal{Text: text} }

func (l *Literal) Type() ExprType  { return ExprLiteral }
func (l *Literal) String() string { return fmt.Sprintf("Literal(%q)", l.Text) }

// RawPattern is inserted into the rendered pattern unchanged.
type RawPattern struct {
	Pattern string
}

// Raw returns an expression rendered verbatim, e.g. an anchor or ".".
func Raw(pattern string) *RawPattern { return &RawPattern{Pattern: pattern} }

func (r *RawPattern) Type() ExprType  { return ExprRaw }
func (r *RawPattern) String() string { return fmt.Sprintf("Raw(%q)", r.Pattern) }

// Sequence matches each item in order.
type Sequence struct {
	Items []Expr
}

// Seq concatenates expressions. Nested sequences are flattened.
func Seq(items ...Expr) *Sequence {
	s := &Sequence{}
	for _, item := range items {
		if nested, ok := item.(*Sequence); ok {
			s.Items = append(s.Items, nested.Items...)
			continue
		}
		s.Items = append(s.Items, item)
	}
	return s
}

func (s *Sequence) Type() ExprType { return ExprSequence }
func (s *Sequence) String() string { return listString("Sequence", s.Items) }

// Choice matches the first alternative that succeeds.
type Choice struct {
	Items []Expr
}

// Alt returns an alternation. Nested alternations are flattened.
func Alt(items ...Expr) *Choice {
	c := &Choice{}
	for _, item := range items {
		if nested, ok := item.(*Choice); ok {
			c.Items = append(c.Items, nested.Items...)
			continue
		}
		c.Items = append(c.Items, item)
	}
	return c
}

func (c *Choice) Type() ExprType { return ExprChoice }
func (c *Choice) String() string { return listString("Choice", c.Items) }

// Unbounded is the Max of a repetition without upper limit.
const Unbounded = -1

// Repetition matches Expr between Min and Max times.
type Repetition struct {
	Min  int
	Max  int
	Expr Expr
}

// Repeat returns expr repeated between min and max times; use Unbounded for max
// to leave the upper limit open.
func Repeat(expr Expr, min, max int) *Repetition {
	return &Repetition{Min: min, Max: max, Expr: expr}
}

// Optional matches expr zero or one time.
func Optional(expr Expr) *Repetition { return Repeat(expr, 0, 1) }

// ZeroOrMore matches expr any number of times.
func ZeroOrMore(expr Expr) *Repetition { return Repeat(expr, 0, Unbounded) }

// OneOrMore matches expr at least once.
func OneOrMore(expr Expr) *Repetition { return Repeat(expr, 1, Unbounded) }

// Times matches expr exactly n times.
func Times(expr Expr, n int) *Repetition { return Repeat(expr, n, n) }

func (r *Repetition) Type() ExprType { return ExprRepeat }
func (r *Repetition) String() string {
	max := "inf"
	if r.Max != Unbounded {
		max = strconv.Itoa(r.Max)
	}
	return fmt.Sprintf("Repeat{%d,%s}(%s)", r.Min, max, exprString(r.Expr))
}

// Assertion checks Expr at the current position without consuming input.
type Assertion struct {
	Behind   bool
	Negative bool
	Expr     Expr
}

// LookAhead asserts that expr follows.
func LookAhead(expr Expr) *Assertion { return &Assertion{Expr: expr} }

// LookBehind asserts that expr precedes.
func LookBehind(expr Expr) *Assertion { return &Assertion{Behind: true, Expr: expr} }

// Not negates an assertion. Any other expression is first turned into a
// look-ahead.
func Not(expr Expr) *Assertion {
	if a, ok := expr.(*Assertion); ok {
		return &Assertion{Behind: a.Behind, Negative: !a.Negative, Expr: a.Expr}
	}
	return &Assertion{Negative: true, Expr: expr}
}

func (a *Assertion) Type() ExprType { return ExprAssert }
func (a *Assertion) String() string {
	dir := "Ahead"
	if a.Behind {
		dir = "Behind"
	}
	if a.Negative {
		dir = "Not" + dir
	}
	return fmt.Sprintf("Look%s(%s)", dir, exprString(a.Expr))
}

func listString(kind string, items []Expr) string {
	parts := make([]string, len(items))
	for i, item := range items {
		parts[i] = exprString(item)
	}
	return kind + "(" + strings.Join(parts, ", ") + ")"
}

func exprString(e Expr) string {
	if e == nil {
		return "<nil>"
	}
	return e.String()
}
