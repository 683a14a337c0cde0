package regexpr

import (
	"fmt"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// XML with integer expressions as tag values: exercises operator
// precedence, prefix selection and nested delimiters.

const (
	idNum      = "num"
	idExpr     = "expr"
	idExprLPar = "lpar"
	idTag      = "tag"
	idTagBegin = "tagBegin"
	idTagName  = "tagName"
	idTagValue = "tagValue"
)

func newXMLIntParser(t *testing.T) *Parser {
	t.Helper()

	charLt := Chars("<")
	charGt := Chars(">")
	charSlash := Chars("/")

	charPlus := Chars("+")
	charMinus := Chars("-")
	charMult := Chars("*")
	charDiv := Chars("/")
	charLPar := Chars("(")
	charRPar := Chars(")")
	charDigit := Range('0', '9')
	charOper := Set(Set(charPlus, charMinus), Set(charMult, charDiv))

	const (
		priorityInfixAddt  = 10
		priorityInfixMult  = 20
		priorityPrefixAddt = 30
	)

	notFollowedBy := func(elems ...Expr) Expr {
		return Not(LookAhead(Seq(SkipWs(), Alt(elems...))))
	}
	isPrefix := func(n *Node) bool {
		return (n.IsFirst() || n.Prev().Is(idExprLPar)) && n.Next().Is(idNum, idExprLPar)
	}
	str := func(v string) (string, error) { return v, nil }

	exprNum := NewToken(idNum, Seq(OneOrMore(charDigit), notFollowedBy(charDigit, charLPar)),
		NewRule(Capture(strconv.Atoi)))

	exprPlus := NewToken(idExpr, Seq(charPlus, notFollowedBy(charOper, charRPar, charLt)),
		PrefixRule(priorityPrefixAddt, Create1("", nil, func(x int) int { return +x })).When(isPrefix),
		InfixRule(priorityInfixAddt, Create2(nil, func(x, y int) int { return x + y })))

	exprMinus := NewToken(idExpr, Seq(charMinus, notFollowedBy(charOper, charRPar, charLt)),
		PrefixRule(priorityPrefixAddt, Create1("", nil, func(x int) int { return -x })).When(isPrefix),
		InfixRule(priorityInfixAddt, Create2(nil, func(x, y int) int { return x - y })))

	exprMult := NewToken(idExpr, Seq(charMult, notFollowedBy(charOper, charRPar, charLt)),
		InfixRule(priorityInfixMult, Create2(nil, func(x, y int) int { return x * y })))

	exprDiv := NewToken(idExpr, Seq(charDiv, notFollowedBy(charOper, charRPar, charLt)),
		InfixRule(priorityInfixMult, Create2(nil, func(x, y int) int { return x / y })))

	exprLPar := NewToken(idExprLPar, Seq(charLPar, notFollowedBy(charRPar, charLt)),
		LeftDelimiterRule(Capture(str)))

	exprRPar := NewToken(idExpr, Seq(charRPar, notFollowedBy(charDigit, charLPar)),
		RightDelimiterRule(Create2(nil, func(_ string, n int) int { return n })))

	numExpr := OneOrMore(Alt(exprNum, exprPlus, exprMinus, exprMult, exprDiv, exprLPar, exprRPar))

	tagValue := NewToken(idTagValue,
		Seq(LookAhead(Seq(SkipWs(), NotSet(CharSpace(), charLt))), numExpr, LookAhead(charLt)),
		NewRule(
			Create1(idNum, nil, func(n int) string { return "=" + strconv.Itoa(n) }),
			Create1(idExpr, nil, func(n int) string { return "=" + strconv.Itoa(n) }),
		)).NoSkipWs()

	tagBegin := NewToken(idTagBegin, Seq(charLt, NewToken(idTagName, OneOrMore(CharWord())), charGt),
		LeftDelimiterRule(Create1(idTagName, nil, func(name string) string { return name })))

	tagEnd := NewToken(idTag, Seq(charLt, charSlash, NewToken(idTagName, OneOrMore(CharWord())), LookAhead(charGt)),
		RightDelimiterRule(
			Create1(idTagName, nil, func(name string) string { return name }),
			Error1("",
				func(tag, tagName string) bool { return tagName != tag },
				func(tag, tagName string) string { return fmt.Sprintf("expected %s, found %s", tagName, tag) }),
			Create2(
				func(_, value string) bool { return strings.HasPrefix(value, "=") },
				func(tag, value string) string { return tag + value }),
			Create2(
				func(_, value string) bool { return !strings.HasPrefix(value, "=") },
				func(tag, value string) string { return tag + ":{" + value + "}" }),
		))

	tagConcat := NewToken(idTag, Seq(charGt, LookAhead(Seq(SkipWs(), charLt, NotSet(charSlash)))),
		InfixRule(0, Create2(nil, func(l, r string) string { return l + "," + r })).
			Requires(func(n *Node) bool { return n.LeftOperand().Is(idTag) && n.RightOperand().Is(idTag) }))

	xmlInt := Seq(
		StartOfLine(),
		ZeroOrMore(Alt(tagBegin, tagValue, Seq(tagEnd, Alt(tagConcat, charGt)))),
		SkipWs(),
		EndOfFile(),
	)

	p, err := Render(xmlInt, ZeroOrMore(CharSpace()))
	require.NoError(t, err)
	return p
}

func TestXMLIntParser(t *testing.T) {
	t.Parallel()
	p := newXMLIntParser(t)

	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "const", input: "<x>42</x>", want: "x=42"},
		{name: "const error", input: "<x>foo</x>", wantErr: true},
		{name: "infix", input: "<x>2 - 1</x>", want: "x=1"},
		{name: "infix error", input: "<x>2 - </x>", wantErr: true},
		{name: "prefix", input: "<x>-2 + 1</x>", want: "x=-1"},
		{name: "prefix error", input: "<x>- + 1</x>", wantErr: true},
		{name: "precedence", input: "<x>2 + 3 * 4</x>", want: "x=14"},
		{name: "parentheses", input: "<x>(2 + 3) * 4</x>", want: "x=20"},
		{name: "parentheses left error", input: "<x>2 + 3) * 4</x>", wantErr: true},
		{name: "parentheses right error", input: "<x>(2 + 3 * 4</x>", wantErr: true},
		{name: "parentheses nested", input: "<x>(-((2 + 3) * 4) / 5) * 3</x>", want: "x=-12"},
		{
			name:  "nested tags",
			input: "<a><x>(-((2 + 3) * 4) / 5) * 3</x><y>(2 + 3) * 4</y></a>",
			want:  "a:{x=-12,y=20}",
		},
		{name: "nested tags error", input: "<a><x>1</x><y>2<z><w>", wantErr: true},
		{name: "mismatched tag", input: "<a><x>1</y></a>", wantErr: true},
		{
			name:  "multiple lines",
			input: "<a>\r\n  <x>2 + 3 * 4</x>\r\n  <y>(2 + 3) * 4</y>\r\n</a>",
			want:  "a:{x=14,y=20}",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			prods, err := p.Parse(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrParse)
				return
			}
			require.NoError(t, err)
			got, ok := FirstOf[string](prods, idTag)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestXMLIntMismatchMessage(t *testing.T) {
	t.Parallel()
	p := newXMLIntParser(t)

	_, err := p.Parse("<x>1</y>")
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "expected x, found y", pe.Msg)
	assert.Equal(t, strings.Index("<x>1</y>", "</y"), pe.Pos)
}
