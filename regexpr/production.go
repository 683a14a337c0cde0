package regexpr

import "fmt"

type haltUnwind int

const (
	haltWhenEmpty haltUnwind = iota
	haltAtLeftDelimiter
	haltAtLowerPriority
)

// Produce walks the tree rooted at root depth first and generates the
// productions of every node, children before parents. Deferred productions
// are registered in ctx and left pending.
//
// Siblings are evaluated as an operator-precedence expression: plain nodes
// are operands, operator rules consume neighbouring operands, and delimiter
// rules bracket sub-expressions. When the last sibling is reached, the
// remaining operands become the child productions of the parent and are
// appended to the output.
func Produce(ctx *Context, root *Node) (*Productions, error) {
	if ctx == nil {
		ctx = NewContext()
	}
	out := NewProductions()
	stack := []*Node{root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if n.next < len(n.children) {
			child := n.children[n.next]
			n.next++
			stack = append(stack, n, child)
			continue
		}
		if n.Parent == nil {
			continue
		}
		if err := produceNode(ctx, n, out); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func produceNode(ctx *Context, n *Node, out *Productions) error {
	parent := n.Parent
	rule := n.Rule()

	switch {
	case rule == nil:
		if n.Token != nil && len(n.Token.Rules) > 0 {
			return &ProductionError{TokenID: n.TokenID(), Msg: fmt.Sprintf("no rule applies to %q", n.Value)}
		}
		n.Production = n.Value
		parent.operands = append(parent.operands, n)

	case rule.Delimiter == DelimiterLeft:
		n.depth = len(parent.operands)
		parent.operators = append(parent.operators, n)

	case rule.Delimiter == DelimiterRight:
		if err := unwind(ctx, parent, haltAtLeftDelimiter, 0); err != nil {
			return err
		}
		// left delimiter becomes the left operand, the enclosed expression
		// the right one
		last := len(parent.operands) - 1
		parent.operands[last], parent.operands[last-1] = parent.operands[last-1], parent.operands[last]
		if err := execute(ctx, n); err != nil {
			return err
		}

	case rule.isOperator():
		if err := unwind(ctx, parent, haltAtLowerPriority, rule.Priority); err != nil {
			return err
		}
		if rule.Operands&OperandLeft != 0 && len(parent.operands) == 0 {
			return parseErrorf(n.Begin, "missing left operand for %q", n.Value)
		}
		if rule.Operands&OperandRight != 0 {
			parent.operators = append(parent.operators, n)
		} else if err := execute(ctx, n); err != nil {
			return err
		}

	default:
		if err := execute(ctx, n); err != nil {
			return err
		}
	}

	if parent.next < len(parent.children) {
		return nil
	}

	// last sibling
	if err := unwind(ctx, parent, haltWhenEmpty, 0); err != nil {
		return err
	}
	for _, operand := range parent.operands {
		if r := operand.Rule(); r != nil && r.Delimiter == DelimiterLeft {
			return parseErrorf(operand.Begin, "unmatched %q", operand.Value)
		}
		parent.ChildProductions().addNode(operand)
		out.addNode(operand)
	}
	parent.operands = nil
	return nil
}

// execute runs the rule of n and pushes n onto its parent's operand stack.
func execute(ctx *Context, n *Node) error {
	prod, err := n.Rule().execute(ctx, n)
	if err != nil {
		return err
	}
	n.Production = prod
	n.Parent.operands = append(n.Parent.operands, n)
	return nil
}

// unwind executes pending operators of parent, most recent first, until the
// halting condition is met. Left delimiters are never executed while
// unwinding for an operator.
func unwind(ctx *Context, parent *Node, halt haltUnwind, priority int) error {
	for len(parent.operators) > 0 {
		last := len(parent.operators) - 1
		op := parent.operators[last]
		parent.operators = parent.operators[:last]
		rule := op.Rule()

		if rule.Delimiter == DelimiterLeft {
			switch halt {
			case haltAtLeftDelimiter:
				if len(parent.operands) <= op.depth {
					return parseErrorf(op.Begin, "empty expression after %q", op.Value)
				}
				return execute(ctx, op)
			case haltAtLowerPriority:
				parent.operators = append(parent.operators, op)
				return nil
			}
		} else if halt == haltAtLowerPriority && rule.Priority < priority {
			parent.operators = append(parent.operators, op)
			return nil
		}

		if err := execute(ctx, op); err != nil {
			return err
		}
	}
	if halt == haltAtLeftDelimiter {
		return parseErrorf(-1, "unmatched right delimiter")
	}
	return nil
}
