package grammar

import (
	"fmt"
	"strings"

	"github.com/gnoswap-labs/rxparse/regexpr"
)

// Compile turns the grammar into an expression tree and the default
// whitespace expression. The whitespace is nil when skipping is disabled.
func Compile(g *Grammar) (regexpr.Expr, regexpr.Expr, error) {
	if err := g.Validate(); err != nil {
		return nil, nil, err
	}
	c := &compiler{
		g:    g,
		defs: make(map[string]regexpr.Expr),
	}

	var ws regexpr.Expr
	switch {
	case g.SkipWs != nil && !*g.SkipWs:
	case g.Whitespace != nil:
		var err error
		if ws, err = c.node(g.Whitespace, "whitespace"); err != nil {
			return nil, nil, err
		}
	default:
		ws = regexpr.Space()
	}

	root, err := c.node(g.Root, "root")
	if err != nil {
		return nil, nil, err
	}
	return root, ws, nil
}

// Build compiles the grammar and renders its parser.
func Build(g *Grammar) (*regexpr.Parser, error) {
	root, ws, err := Compile(g)
	if err != nil {
		return nil, err
	}
	return regexpr.Render(root, ws)
}

type compiler struct {
	g        *Grammar
	defs     map[string]regexpr.Expr
	visiting []string
}

func (c *compiler) node(n *Node, path string) (regexpr.Expr, error) {
	kind, err := n.kind(path)
	if err != nil {
		return nil, err
	}

	var e regexpr.Expr
	switch kind {
	case "lit":
		e = regexpr.Lit(*n.Lit)
	case "raw":
		e = regexpr.Raw(*n.Raw)
	case "chars", "class", "range", "set":
		if e, err = c.class(n, path); err != nil {
			return nil, err
		}
	case "seq":
		items, err := c.list(n.Seq, path+"/seq")
		if err != nil {
			return nil, err
		}
		e = regexpr.Seq(items...)
	case "alt":
		items, err := c.list(n.Alt, path+"/alt")
		if err != nil {
			return nil, err
		}
		e = regexpr.Alt(items...)
	case "anchor":
		if e, err = anchor(*n.Anchor, path); err != nil {
			return nil, err
		}
	case "ref":
		if e, err = c.ref(*n.Ref, path); err != nil {
			return nil, err
		}
	case "ahead", "behind":
		inner := n.Ahead
		if kind == "behind" {
			inner = n.Behind
		}
		x, err := c.node(inner, path+"/"+kind)
		if err != nil {
			return nil, err
		}
		a := regexpr.LookAhead(x)
		if kind == "behind" {
			a = regexpr.LookBehind(x)
		}
		if n.Negate {
			a = regexpr.Not(a)
		}
		e = a
	case "repeat":
		x, err := c.node(n.Expr, path+"/expr")
		if err != nil {
			return nil, err
		}
		max := regexpr.Unbounded
		if n.Repeat.Max != nil {
			max = *n.Repeat.Max
		}
		e = regexpr.Repeat(x, n.Repeat.Min, max)
	case "token":
		if e, err = c.token(n, path); err != nil {
			return nil, err
		}
	case "skipws":
		e = regexpr.SkipWs()
	}

	switch {
	case n.Optional:
		e = regexpr.Optional(e)
	case n.Min != nil || n.Max != nil:
		min, max := 0, regexpr.Unbounded
		if n.Min != nil {
			min = *n.Min
		}
		if n.Max != nil {
			max = *n.Max
		}
		e = regexpr.Repeat(e, min, max)
	}
	return e, nil
}

func (c *compiler) list(nodes []*Node, path string) ([]regexpr.Expr, error) {
	items := make([]regexpr.Expr, 0, len(nodes))
	for i, item := range nodes {
		x, err := c.node(item, fmt.Sprintf("%s/%d", path, i))
		if err != nil {
			return nil, err
		}
		items = append(items, x)
	}
	return items, nil
}

// ref compiles a definition once; later references share the result.
func (c *compiler) ref(name, path string) (regexpr.Expr, error) {
	if e, ok := c.defs[name]; ok {
		return e, nil
	}
	def, ok := c.g.Definitions[name]
	if !ok {
		return nil, errorf(path, "undefined reference %q", name)
	}
	for i, v := range c.visiting {
		if v == name {
			cycle := append(append([]string{}, c.visiting[i:]...), name)
			return nil, errorf(path, "cyclic reference %s", strings.Join(cycle, " -> "))
		}
	}

	c.visiting = append(c.visiting, name)
	e, err := c.node(def, "definitions/"+name)
	c.visiting = c.visiting[:len(c.visiting)-1]
	if err != nil {
		return nil, err
	}
	c.defs[name] = e
	return e, nil
}

func (c *compiler) class(n *Node, path string) (regexpr.ClassElement, error) {
	switch {
	case n.Chars != nil:
		return regexpr.Chars(*n.Chars), nil
	case n.Class != nil:
		return regexpr.RawChars(*n.Class), nil
	case n.Range != nil:
		r := []rune(*n.Range)
		if len(r) != 3 || r[1] != '-' {
			return nil, errorf(path, "range %q is not of the form a-z", *n.Range)
		}
		return regexpr.Range(r[0], r[2]), nil
	}

	include, err := c.classList(n.Set.Include, path+"/set/include")
	if err != nil {
		return nil, err
	}
	exclude, err := c.classList(n.Set.Exclude, path+"/set/exclude")
	if err != nil {
		return nil, err
	}
	if len(include) == 0 && !n.Set.Negate {
		return nil, errorf(path, "set includes nothing")
	}

	set := regexpr.Set(include...)
	if n.Set.Negate {
		set = regexpr.NotSet(include...)
	}
	if len(exclude) > 0 {
		set = set.Minus(exclude...)
	}
	return set, nil
}

func (c *compiler) classList(nodes []*Node, path string) ([]regexpr.ClassElement, error) {
	var out []regexpr.ClassElement
	for i, item := range nodes {
		p := fmt.Sprintf("%s/%d", path, i)
		kind, err := item.kind(p)
		if err != nil {
			return nil, err
		}
		if kind == "ref" {
			x, err := c.ref(*item.Ref, p)
			if err != nil {
				return nil, err
			}
			elem, ok := x.(regexpr.ClassElement)
			if !ok {
				return nil, errorf(p, "reference %q is not a character class", *item.Ref)
			}
			out = append(out, elem)
			continue
		}
		switch kind {
		case "chars", "class", "range", "set":
		default:
			return nil, errorf(p, "%s node in a character set", kind)
		}
		if item.Optional || item.Min != nil || item.Max != nil {
			return nil, errorf(p, "repetition in a character set")
		}
		elem, err := c.class(item, p)
		if err != nil {
			return nil, err
		}
		out = append(out, elem)
	}
	return out, nil
}

func anchor(name, path string) (regexpr.Expr, error) {
	switch name {
	case "line-start":
		return regexpr.StartOfLine(), nil
	case "line-end":
		return regexpr.EndOfLine(), nil
	case "start":
		return regexpr.StartOfFile(), nil
	case "end":
		return regexpr.EndOfFile(), nil
	case "linebreak":
		return regexpr.LineBreak(), nil
	case "any":
		return regexpr.AnyChar(), nil
	}
	return nil, errorf(path, "unknown anchor %q", name)
}

func (c *compiler) token(n *Node, path string) (*regexpr.Token, error) {
	id := *n.Token
	expr, err := c.node(n.Expr, path+"/expr")
	if err != nil {
		return nil, err
	}
	tok := regexpr.NewToken(id, expr)
	if n.Name != "" {
		tok.Named(n.Name)
	}
	if n.Ws != nil {
		ws, err := c.node(n.Ws, path+"/ws")
		if err != nil {
			return nil, err
		}
		tok.WithWs(ws)
	}
	if n.SkipWs != nil && !*n.SkipWs {
		tok.NoSkipWs()
	}

	rules, err := tokenRules(n, path)
	if err != nil {
		return nil, err
	}
	return tok.Add(rules...), nil
}
