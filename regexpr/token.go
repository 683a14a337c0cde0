package regexpr

import "fmt"

// Token is a named capture group. Text matched by Expr is reported as a
// parse-tree node carrying ID, and turned into productions by Rules.
//
// Unless whitespace skipping is disabled, the leading whitespace expression
// (Ws, or the parser default) is matched right before the capture group, so
// captured text never includes it.
type Token struct {
	ID string
	// Name overrides the generated capture-group name. It must be unique in
	// the rendered pattern.
	Name  string
	Expr  Expr
	Ws    Expr
	NoWs  bool
	Rules []*Rule
}

// NewToken returns a token capturing expr under the given id.
func NewToken(id string, expr Expr, rules ...*Rule) *Token {
	return &Token{ID: id, Expr: expr, Rules: rules}
}

// SkipWs returns an id-less token: it only applies whitespace skipping.
func SkipWs() *Token { return &Token{} }

// WithWs sets the leading whitespace expression of the token.
func (t *Token) WithWs(ws Expr) *Token {
	t.Ws = ws
	t.NoWs = false
	return t
}

// NoSkipWs disables leading whitespace skipping.
func (t *Token) NoSkipWs() *Token {
	t.NoWs = true
	t.Ws = nil
	return t
}

// Named sets an explicit capture-group name.
func (t *Token) Named(name string) *Token {
	t.Name = name
	return t
}

// Add appends production rules.
func (t *Token) Add(rules ...*Rule) *Token {
	t.Rules = append(t.Rules, rules...)
	return t
}

func (t *Token) Type() ExprType { return ExprToken }
func (t *Token) String() string {
	if t.ID == "" && t.Expr == nil {
		return "SkipWs"
	}
	return fmt.Sprintf("Token(%s: %s)", t.ID, exprString(t.Expr))
}

// leadingWs resolves the whitespace expression to render before the token.
func (t *Token) leadingWs(defaultWs Expr) Expr {
	if t.NoWs {
		return nil
	}
	if t.Ws != nil {
		return t.Ws
	}
	return defaultWs
}

// SelectRule returns the rule that applies to n: the first rule whose
// selector accepts the node, else the last rule without selector.
func (t *Token) SelectRule(n *Node) *Rule {
	var fallback *Rule
	for _, r := range t.Rules {
		if r == nil {
			continue
		}
		if r.Select == nil {
			fallback = r
			continue
		}
		if r.Select(n) {
			return r
		}
	}
	return fallback
}
