package grammar

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/gnoswap-labs/rxparse/regexpr"
)

type actionFunc func() *regexpr.Action

var actions = map[string]actionFunc{
	"text":   textAction,
	"int":    intAction,
	"float":  floatAction,
	"bool":   boolAction,
	"list":   listAction,
	"object": objectAction,
	"first":  firstAction,
	"arith":  arithAction,
	"group":  groupAction,
}

// Actions returns the names of the built-in actions, "defer" included.
func Actions() []string {
	names := make([]string, 0, len(actions)+1)
	for name := range actions {
		names = append(names, name)
	}
	names = append(names, "defer")
	sort.Strings(names)
	return names
}

var selectors = map[string]func(n *regexpr.Node) bool{
	"first": func(n *regexpr.Node) bool { return n.IsFirst() },
	"last":  func(n *regexpr.Node) bool { return n.IsLast() },
	// leading nodes start an operand: a prefix operator position.
	"leading": func(n *regexpr.Node) bool {
		if n.IsFirst() {
			return true
		}
		r := n.Prev().Rule()
		return r != nil && (r.Delimiter == regexpr.DelimiterLeft || r.Operands&regexpr.OperandRight != 0)
	},
	"trailing": func(n *regexpr.Node) bool {
		if n.IsLast() {
			return true
		}
		r := n.Next().Rule()
		return r != nil && (r.Delimiter == regexpr.DelimiterRight || r.Operands&regexpr.OperandLeft != 0)
	},
}

// tokenRules builds the production rules of a token node.
func tokenRules(n *Node, path string) ([]*regexpr.Rule, error) {
	if len(n.Rules) == 0 {
		name := n.Action
		deferred := n.Defer
		if name == "defer" {
			name, deferred = "text", true
		}
		if name == "" {
			name = "text"
		}
		if name == "text" && !deferred {
			return nil, nil
		}
		a, ok := actions[name]
		if !ok {
			return nil, errorf(path, "unknown action %q", name)
		}
		r := regexpr.NewRule(a())
		if deferred {
			r.Defer(rawValue)
		}
		return []*regexpr.Rule{r}, nil
	}

	rules := make([]*regexpr.Rule, 0, len(n.Rules))
	for i, spec := range n.Rules {
		r, err := spec.rule(fmt.Sprintf("%s/rules/%d", path, i))
		if err != nil {
			return nil, err
		}
		if n.Defer {
			r.Defer(rawValue)
		}
		rules = append(rules, r)
	}
	return rules, nil
}

func (s RuleSpec) rule(path string) (*regexpr.Rule, error) {
	var (
		r   *regexpr.Rule
		def string
	)
	switch s.Kind {
	case "", "plain":
		r, def = regexpr.NewRule(), "text"
	case "prefix":
		r, def = regexpr.PrefixRule(s.Priority), "arith"
	case "postfix":
		r, def = regexpr.PostfixRule(s.Priority), "arith"
	case "infix":
		r, def = regexpr.InfixRule(s.Priority), "arith"
	case "left":
		r, def = regexpr.LeftDelimiterRule(), "text"
	case "right":
		r, def = regexpr.RightDelimiterRule(), "group"
	default:
		return nil, errorf(path, "unknown rule kind %q", s.Kind)
	}

	name := s.Action
	if name == "" {
		name = def
	}
	a, ok := actions[name]
	if !ok {
		return nil, errorf(path, "unknown action %q", name)
	}
	r.Actions = append(r.Actions, a())

	if s.When != "" {
		sel, ok := selectors[s.When]
		if !ok {
			return nil, errorf(path, "unknown selector %q", s.When)
		}
		r.When(sel)
	}
	return r, nil
}

func textAction() *regexpr.Action {
	return regexpr.Capture(func(v string) (string, error) { return v, nil })
}

func intAction() *regexpr.Action {
	return regexpr.Capture(func(v string) (int64, error) {
		return strconv.ParseInt(strings.TrimSpace(v), 0, 64)
	})
}

func floatAction() *regexpr.Action {
	return regexpr.Capture(func(v string) (float64, error) {
		return strconv.ParseFloat(strings.TrimSpace(v), 64)
	})
}

func boolAction() *regexpr.Action {
	return regexpr.Capture(func(v string) (bool, error) {
		return strconv.ParseBool(strings.TrimSpace(v))
	})
}

// listAction collects the child productions in order.
func listAction() *regexpr.Action {
	return regexpr.Func(func(n *regexpr.Node, _ any, _ []any) (any, error) {
		all := n.ChildProductions().All()
		out := make([]any, 0, len(all))
		for _, p := range all {
			classify(p.Value)
			out = append(out, p.Value)
		}
		return out, nil
	})
}

// objectAction maps token ids to child productions. A token producing more
// than once maps to the list of its productions.
func objectAction() *regexpr.Action {
	return regexpr.Func(func(n *regexpr.Node, _ any, _ []any) (any, error) {
		out := make(map[string]any)
		repeated := make(map[string]bool)
		for _, p := range n.ChildProductions().All() {
			classify(p.Value)
			prev, ok := out[p.TokenID]
			switch {
			case !ok:
				out[p.TokenID] = p.Value
			case repeated[p.TokenID]:
				out[p.TokenID] = append(prev.([]any), p.Value)
			default:
				out[p.TokenID] = []any{prev, p.Value}
				repeated[p.TokenID] = true
			}
		}
		return out, nil
	})
}

// firstAction forwards the first child production, or the captured text
// when there is none.
func firstAction() *regexpr.Action {
	return regexpr.Func(func(n *regexpr.Node, _ any, _ []any) (any, error) {
		all := n.ChildProductions().All()
		if len(all) == 0 {
			return n.Value, nil
		}
		classify(all[0].Value)
		return all[0].Value, nil
	})
}

// groupAction yields the enclosed expression of a delimiter pair.
func groupAction() *regexpr.Action {
	return regexpr.Func(func(_ *regexpr.Node, prod any, ops []any) (any, error) {
		if len(ops) < 2 {
			return prod, nil
		}
		return ops[1], nil
	})
}

var errDivisionByZero = errors.New("division by zero")

// arithAction applies the operator captured by the node to its operands.
func arithAction() *regexpr.Action {
	return regexpr.Func(func(n *regexpr.Node, _ any, ops []any) (any, error) {
		op := strings.TrimSpace(n.Value)
		nums := make([]number, len(ops))
		for i, v := range ops {
			x, ok := toNumber(regexpr.Unwrap(v))
			if !ok {
				return nil, fmt.Errorf("operand %v of %q is not a number", v, op)
			}
			nums[i] = x
		}
		switch len(nums) {
		case 1:
			switch op {
			case "-":
				return nums[0].neg().value(), nil
			case "+":
				return nums[0].value(), nil
			}
		case 2:
			r, err := binary(op, nums[0], nums[1])
			if err != nil {
				return nil, err
			}
			return r.value(), nil
		}
		return nil, fmt.Errorf("unsupported operator %q with %d operands", op, len(nums))
	})
}

type number struct {
	i       int64
	f       float64
	isFloat bool
}

func toNumber(v any) (number, bool) {
	switch x := v.(type) {
	case int64:
		return number{i: x}, true
	case int:
		return number{i: int64(x)}, true
	case float64:
		return number{f: x, isFloat: true}, true
	case string:
		if i, err := strconv.ParseInt(strings.TrimSpace(x), 0, 64); err == nil {
			return number{i: i}, true
		}
		if f, err := strconv.ParseFloat(strings.TrimSpace(x), 64); err == nil {
			return number{f: f, isFloat: true}, true
		}
	}
	return number{}, false
}

func (x number) float() float64 {
	if x.isFloat {
		return x.f
	}
	return float64(x.i)
}

func (x number) neg() number {
	if x.isFloat {
		return number{f: -x.f, isFloat: true}
	}
	return number{i: -x.i}
}

func (x number) value() any {
	if x.isFloat {
		return x.f
	}
	return x.i
}

func binary(op string, a, b number) (number, error) {
	if !a.isFloat && !b.isFloat {
		switch op {
		case "+":
			return number{i: a.i + b.i}, nil
		case "-":
			return number{i: a.i - b.i}, nil
		case "*":
			return number{i: a.i * b.i}, nil
		case "/":
			if b.i == 0 {
				return number{}, errDivisionByZero
			}
			if a.i%b.i == 0 {
				return number{i: a.i / b.i}, nil
			}
			return number{f: float64(a.i) / float64(b.i), isFloat: true}, nil
		case "%":
			if b.i == 0 {
				return number{}, errDivisionByZero
			}
			return number{i: a.i % b.i}, nil
		}
		return number{}, fmt.Errorf("unknown operator %q", op)
	}

	x, y := a.float(), b.float()
	switch op {
	case "+":
		return number{f: x + y, isFloat: true}, nil
	case "-":
		return number{f: x - y, isFloat: true}, nil
	case "*":
		return number{f: x * y, isFloat: true}, nil
	case "/":
		if y == 0 {
			return number{}, errDivisionByZero
		}
		return number{f: x / y, isFloat: true}, nil
	case "%":
		if y == 0 {
			return number{}, errDivisionByZero
		}
		return number{f: math.Mod(x, y), isFloat: true}, nil
	}
	return number{}, fmt.Errorf("unknown operator %q", op)
}

// classify binds inferScalar to a deferred production that no inner rule
// classified.
func classify(v any) {
	if d, ok := v.(*regexpr.Deferred); ok {
		d.Bind(inferScalar)
	}
}

// inferScalar resolves a deferred text production into an int64, float64
// or bool when the text reads as one.
func inferScalar(d *regexpr.Deferred) (any, error) {
	s, ok := d.Raw.(string)
	if !ok {
		return d.Raw, nil
	}
	t := strings.TrimSpace(s)
	if i, err := strconv.ParseInt(t, 0, 64); err == nil {
		return i, nil
	}
	if f, err := strconv.ParseFloat(t, 64); err == nil {
		return f, nil
	}
	if b, err := strconv.ParseBool(t); err == nil {
		return b, nil
	}
	return s, nil
}

func rawValue(d *regexpr.Deferred) (any, error) { return d.Raw, nil }

// Normalize replaces deferred productions by their objects, recursively
// through lists and objects. A pending deferred production stands for its
// raw value.
func Normalize(v any) any {
	switch x := v.(type) {
	case *regexpr.Deferred:
		if x.HasData() {
			return Normalize(x.Object())
		}
		return Normalize(x.Raw)
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = Normalize(e)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[k] = Normalize(e)
		}
		return out
	}
	return v
}
