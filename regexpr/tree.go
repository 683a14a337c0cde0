package regexpr

import (
	"fmt"
	"slices"
	"sort"
	"strings"
)

// Span is one capture reported by the matcher for a capture group.
type Span struct {
	// Name is the capture-group name; KeyRoot for the whole match.
	Name string
	// GroupIdx is the group number in the regular expression.
	GroupIdx int
	// CaptureIdx orders the captures of a group that fired more than once.
	CaptureIdx int
	// Begin and End are byte offsets into the input, End exclusive.
	Begin, End int
	Value      string
}

// Node is a node of the parse tree: a capture plus the captures nested
// inside it.
type Node struct {
	CaptureID  string
	Token      *Token
	Value      string
	Begin, End int
	GroupIdx   int
	CaptureIdx int

	// Production is set once the production generator visited the node.
	Production any

	Parent   *Node
	children []*Node
	orderKey int
	idx      int

	childProductions *Productions
	rule             *Rule
	ruleSelected     bool

	next      int
	operands  []*Node
	operators []*Node
	// depth is the parent's operand count when a left delimiter was pushed.
	depth int
}

// Key identifies the node among all captures of a match.
func (n *Node) Key() string {
	if n.CaptureID == KeyRoot {
		return KeyRoot
	}
	return fmt.Sprintf("%s:%d:%d", n.CaptureID, n.Begin, n.End)
}

// TokenID returns the id of the token that captured the node. It is empty
// for the root and for a nil node.
func (n *Node) TokenID() string {
	if n == nil || n.Token == nil {
		return ""
	}
	return n.Token.ID
}

// IsRoot reports whether n is the root of its tree.
func (n *Node) IsRoot() bool { return n != nil && n.Parent == nil }

// Children returns the child nodes in document order.
func (n *Node) Children() []*Node {
	if n == nil {
		return nil
	}
	return n.children
}

// ChildProductions returns the productions generated by the children of n.
func (n *Node) ChildProductions() *Productions {
	if n.childProductions == nil {
		n.childProductions = NewProductions()
	}
	return n.childProductions
}

// Rule returns the production rule selected for the node, or nil.
func (n *Node) Rule() *Rule {
	if n == nil || n.Token == nil {
		return nil
	}
	if !n.ruleSelected {
		n.rule = n.Token.SelectRule(n)
		n.ruleSelected = true
	}
	return n.rule
}

func (n *Node) String() string {
	if n == nil {
		return "<end>"
	}
	return fmt.Sprintf("%s[%s]", n.TokenID(), n.Value)
}

func (n *Node) siblingIdx() int {
	if n.Parent == nil {
		return 0
	}
	return n.idx
}

func (n *Node) siblingCount() int {
	if n.Parent == nil {
		return 1
	}
	return len(n.Parent.children)
}

// IsFirst reports whether n is the first of its siblings.
func (n *Node) IsFirst() bool { return n != nil && n.siblingIdx() == 0 }

// IsLast reports whether n is the last of its siblings.
func (n *Node) IsLast() bool { return n != nil && n.siblingIdx() == n.siblingCount()-1 }

// LookAhead returns the following siblings, nearest first, restricted to the
// given token ids when any are passed.
func (n *Node) LookAhead(ids ...string) []*Node {
	if n == nil || n.Parent == nil {
		return nil
	}
	var out []*Node
	for _, s := range n.Parent.children[n.siblingIdx()+1:] {
		if len(ids) == 0 || s.Is(ids...) {
			out = append(out, s)
		}
	}
	return out
}

// LookBehind returns the preceding siblings, nearest first, restricted to
// the given token ids when any are passed.
func (n *Node) LookBehind(ids ...string) []*Node {
	if n == nil || n.Parent == nil {
		return nil
	}
	prev := n.Parent.children[:n.siblingIdx()]
	var out []*Node
	for i := len(prev) - 1; i >= 0; i-- {
		if len(ids) == 0 || prev[i].Is(ids...) {
			out = append(out, prev[i])
		}
	}
	return out
}

// Next returns the first of LookAhead(ids...), or nil.
func (n *Node) Next(ids ...string) *Node {
	if ahead := n.LookAhead(ids...); len(ahead) > 0 {
		return ahead[0]
	}
	return nil
}

// Prev returns the first of LookBehind(ids...), or nil.
func (n *Node) Prev(ids ...string) *Node {
	if behind := n.LookBehind(ids...); len(behind) > 0 {
		return behind[0]
	}
	return nil
}

// Is reports whether the node was captured by one of the given tokens.
func (n *Node) Is(ids ...string) bool {
	if n == nil {
		return false
	}
	return slices.Contains(ids, n.TokenID())
}

// IsNot is the negation of Is. It is true for a nil node.
func (n *Node) IsNot(ids ...string) bool { return !n.Is(ids...) }

// Operand returns the top of the parent's operand stack, or nil.
func (n *Node) Operand() *Node {
	if n == nil || n.Parent == nil || len(n.Parent.operands) == 0 {
		return nil
	}
	return n.Parent.operands[len(n.Parent.operands)-1]
}

// LeftOperand returns the operand below the top of the parent's operand
// stack, or nil when there are fewer than two operands.
func (n *Node) LeftOperand() *Node {
	if n == nil || n.Parent == nil || len(n.Parent.operands) < 2 {
		return nil
	}
	return n.Parent.operands[len(n.Parent.operands)-2]
}

// RightOperand returns the top of the parent's operand stack, or nil when
// there are fewer than two operands.
func (n *Node) RightOperand() *Node {
	if n == nil || n.Parent == nil || len(n.Parent.operands) < 2 {
		return nil
	}
	return n.Parent.operands[len(n.Parent.operands)-1]
}

func (n *Node) HasOperand() bool      { return n.Operand() != nil }
func (n *Node) HasLeftOperand() bool  { return n.LeftOperand() != nil }
func (n *Node) HasRightOperand() bool { return n.RightOperand() != nil }

// Walk visits n and its descendants in document order. Returning false from
// fn skips the children of the visited node.
func (n *Node) Walk(fn func(node *Node, depth int) bool) {
	var walk func(*Node, int)
	walk = func(node *Node, depth int) {
		if !fn(node, depth) {
			return
		}
		for _, c := range node.children {
			walk(c, depth+1)
		}
	}
	if n != nil {
		walk(n, 0)
	}
}

// Dump returns an indented outline of the tree, one node per line.
func (n *Node) Dump() string {
	var sb strings.Builder
	n.Walk(func(node *Node, depth int) bool {
		id := node.TokenID()
		if node.IsRoot() {
			id = "<root>"
		}
		fmt.Fprintf(&sb, "%s%s [%d,%d) %q\n", strings.Repeat("  ", depth), id, node.Begin, node.End, node.Value)
		return true
	})
	return sb.String()
}

// BuildTree turns the flat list of captures of one match into a parse tree.
//
// Captures are sorted by descending begin, ascending end, descending group
// index and descending capture index. In that order the parent of a capture
// is the first later capture whose end is not before its own end; regex
// groups never overlap partially, so that capture contains it. Siblings are
// keyed by the negated scan position, which restores document order.
//
// Empty captures and captures of unknown groups are discarded. Without a
// KeyRoot capture, a synthetic root spanning text is created.
func BuildTree(text string, captures []Span, tokens map[string]*Token) *Node {
	sorted := make([]Span, 0, len(captures))
	for _, c := range captures {
		if c.Value == "" {
			continue
		}
		if _, known := tokens[c.Name]; !known && c.Name != KeyRoot {
			continue
		}
		sorted = append(sorted, c)
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Begin != b.Begin {
			return a.Begin > b.Begin
		}
		if a.End != b.End {
			return a.End < b.End
		}
		if a.GroupIdx != b.GroupIdx {
			return a.GroupIdx > b.GroupIdx
		}
		return a.CaptureIdx > b.CaptureIdx
	})

	seen := make(map[string]bool, len(sorted))
	nodes := make([]*Node, len(sorted))
	for i, c := range sorted {
		n := &Node{
			CaptureID:  c.Name,
			Token:      tokens[c.Name],
			Value:      c.Value,
			Begin:      c.Begin,
			End:        c.End,
			GroupIdx:   c.GroupIdx,
			CaptureIdx: c.CaptureIdx,
		}
		if seen[n.Key()] {
			// same group and span reported twice: keep the first
			continue
		}
		seen[n.Key()] = true
		nodes[i] = n
	}

	// parent(i) = first j > i with End(j) >= End(i), found with a
	// monotonic stack scanned right to left
	parents := make([]*Node, len(nodes))
	var stack []*Node
	for i := len(nodes) - 1; i >= 0; i-- {
		n := nodes[i]
		if n == nil {
			continue
		}
		for len(stack) > 0 && stack[len(stack)-1].End < n.End {
			stack = stack[:len(stack)-1]
		}
		if len(stack) > 0 {
			parents[i] = stack[len(stack)-1]
		}
		stack = append(stack, n)
	}

	var root *Node
	for _, n := range nodes {
		if n != nil && n.CaptureID == KeyRoot {
			root = n
			break
		}
	}
	if root == nil {
		root = &Node{CaptureID: KeyRoot, Token: tokens[KeyRoot], Value: text, End: len(text)}
	}

	for i, n := range nodes {
		if n == nil || n == root {
			continue
		}
		parent := parents[i]
		if parent == nil {
			parent = root
		}
		n.orderKey = -i
		n.Parent = parent
		parent.children = append(parent.children, n)
	}
	root.Walk(func(node *Node, _ int) bool {
		sort.Slice(node.children, func(i, j int) bool {
			return node.children[i].orderKey < node.children[j].orderKey
		})
		for i, c := range node.children {
			c.idx = i
		}
		return true
	})
	return root
}
