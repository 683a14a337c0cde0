package regexpr

// Operand flags the sibling operands an operator rule consumes.
type Operand uint8

const (
	OperandNone  Operand = 0
	OperandLeft  Operand = 1 << 0
	OperandRight Operand = 1 << 1
)

// Delimiter marks rules that open or close a delimited sub-expression.
type Delimiter uint8

const (
	DelimiterNone Delimiter = iota
	DelimiterLeft
	DelimiterRight
)

// Rule turns a parse-tree node into a production.
//
// Plain rules execute as soon as the node is reached. Operator rules take
// part in an operator-precedence evaluation among the siblings of the node:
// prefix rules consume the operand to their right, postfix rules the one to
// their left, and infix rules both. Delimiter rules bracket a sub-expression
// and are evaluated when the right delimiter is reached.
type Rule struct {
	Priority  int
	Operands  Operand
	Delimiter Delimiter

	// Select restricts the rule to the nodes it accepts. A rule without
	// selector is the default rule of its token.
	Select func(n *Node) bool
	// Pre is checked right before the rule executes; a false result is a
	// parse error.
	Pre func(n *Node) bool
	// New returns the initial production, which is nil otherwise.
	New func() any

	Actions []*Action

	// Deferred rules wrap their production in a *Deferred which an
	// enclosing rule classifies. Resolve is used when none does.
	Deferred bool
	Resolve  func(d *Deferred) (any, error)
}

// NewRule returns a plain rule.
func NewRule(actions ...*Action) *Rule {
	return &Rule{Actions: actions}
}

// PrefixRule returns an operator rule consuming the operand that follows it.
func PrefixRule(priority int, actions ...*Action) *Rule {
	return &Rule{Priority: priority, Operands: OperandRight, Actions: actions}
}

// PostfixRule returns an operator rule consuming the operand before it.
func PostfixRule(priority int, actions ...*Action) *Rule {
	return &Rule{Priority: priority, Operands: OperandLeft, Actions: actions}
}

// InfixRule returns an operator rule consuming the operands on both sides.
func InfixRule(priority int, actions ...*Action) *Rule {
	return &Rule{Priority: priority, Operands: OperandLeft | OperandRight, Actions: actions}
}

// LeftDelimiterRule returns a rule opening a delimited expression. Its
// actions see no operands.
func LeftDelimiterRule(actions ...*Action) *Rule {
	return &Rule{Delimiter: DelimiterLeft, Actions: actions}
}

// RightDelimiterRule returns a rule closing a delimited expression. Its
// actions see two operands: the production of the matching left delimiter
// and the production of the enclosed expression.
func RightDelimiterRule(actions ...*Action) *Rule {
	return &Rule{Delimiter: DelimiterRight, Actions: actions}
}

// When sets the rule selector.
func (r *Rule) When(sel func(n *Node) bool) *Rule {
	r.Select = sel
	return r
}

// Requires sets the rule precondition.
func (r *Rule) Requires(pre func(n *Node) bool) *Rule {
	r.Pre = pre
	return r
}

// Init sets the constructor of the initial production.
func (r *Rule) Init(fn func() any) *Rule {
	r.New = fn
	return r
}

// Defer makes the rule produce deferred objects. resolve may be nil when an
// enclosing rule always classifies the production.
func (r *Rule) Defer(resolve func(d *Deferred) (any, error)) *Rule {
	r.Deferred = true
	r.Resolve = resolve
	return r
}

func (r *Rule) isOperator() bool { return r.Operands != OperandNone }

// fetchOperands pops the operand nodes of n from its parent's operand stack
// and returns them left to right.
func (r *Rule) fetchOperands(n *Node) ([]*Node, error) {
	p := n.Parent
	pop := func() *Node {
		if p == nil || len(p.operands) == 0 {
			return nil
		}
		top := p.operands[len(p.operands)-1]
		p.operands = p.operands[:len(p.operands)-1]
		return top
	}

	switch {
	case r.Delimiter == DelimiterLeft:
		return nil, nil

	case r.Delimiter == DelimiterRight:
		expr := pop()
		left := pop()
		if expr == nil || left == nil {
			return nil, parseErrorf(n.Begin, "missing delimited expression before %q", n.Value)
		}
		return []*Node{left, expr}, nil

	case r.Operands == OperandLeft|OperandRight:
		right := pop()
		left := pop()
		if right == nil || left == nil {
			return nil, parseErrorf(n.Begin, "missing operand for %q", n.Value)
		}
		return []*Node{left, right}, nil

	case r.Operands != OperandNone:
		x := pop()
		if x == nil {
			return nil, parseErrorf(n.Begin, "missing operand for %q", n.Value)
		}
		return []*Node{x}, nil
	}
	return nil, nil
}

// execute runs the rule actions on n and returns its production.
func (r *Rule) execute(ctx *Context, n *Node) (any, error) {
	if r.Pre != nil && !r.Pre(n) {
		return nil, parseErrorf(n.Begin, "unexpected %q", n.Value)
	}
	nodes, err := r.fetchOperands(n)
	if err != nil {
		return nil, err
	}
	operands := make([]any, len(nodes))
	for i, x := range nodes {
		operands[i] = x.Production
	}

	var prod any
	if r.New != nil {
		prod = r.New()
	}
	for _, a := range r.Actions {
		if a == nil {
			continue
		}
		if a.Source == "" {
			if prod, err = a.apply(n, prod, operands); err != nil {
				return nil, err
			}
			continue
		}
		for _, child := range n.ChildProductions().Values(a.Source) {
			if prod, err = a.apply(n, prod, []any{child}); err != nil {
				return nil, err
			}
		}
	}

	if r.Deferred {
		return ctx.Defer(n, prod, r.Resolve), nil
	}
	return prod, nil
}
