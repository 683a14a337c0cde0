package regexpr

import (
	"errors"
	"fmt"
)

// Action is one step of a production rule. Actions of a rule run in order,
// each one receiving the production built so far.
//
// An action with a Source token id runs once per child production of that
// token, in document order, with the child production as its only operand.
// Other actions receive the rule operands. An action is skipped when its
// operands are missing or of another type, or when its predicate rejects
// them.
type Action struct {
	Source string
	run    func(n *Node, prod any, operands []any) (any, bool, error)
}

func (a *Action) apply(n *Node, prod any, operands []any) (any, error) {
	out, ok, err := a.run(n, prod, operands)
	if err != nil {
		var pe *ParseError
		switch {
		case errors.As(err, &pe):
			if pe.Pos < 0 {
				pe.Pos = n.Begin
			}
			return nil, pe
		case errors.Is(err, ErrProduction):
			return nil, err
		}
		return nil, parseErrorf(n.Begin, "%s %q: %v", n.TokenID(), n.Value, err)
	}
	if !ok {
		return prod, nil
	}
	return out, nil
}

// operand returns operands[i] as a T. A resolved deferred object stands for
// its resolved value.
func operand[T any](operands []any, i int) (T, bool) {
	var zero T
	if i >= len(operands) || operands[i] == nil {
		return zero, false
	}
	if v, ok := operands[i].(T); ok {
		return v, true
	}
	if d, ok := operands[i].(*Deferred); ok && d.HasData() {
		v, ok := d.Object().(T)
		return v, ok
	}
	return zero, false
}

// current returns the production under construction as a T. A nil
// production is the zero T.
func current[T any](prod any) (T, bool) {
	var zero T
	if prod == nil {
		return zero, true
	}
	v, ok := prod.(T)
	return v, ok
}

// Capture sets the production from the captured text.
func Capture[T any](fn func(value string) (T, error)) *Action {
	return &Action{run: func(n *Node, prod any, _ []any) (any, bool, error) {
		v, err := fn(n.Value)
		if err != nil {
			return nil, false, err
		}
		return v, true, nil
	}}
}

// Create1 sets the production from one operand.
func Create1[T, A any](source string, pred func(A) bool, fn func(A) T) *Action {
	return &Action{Source: source, run: func(_ *Node, prod any, ops []any) (any, bool, error) {
		x, ok := operand[A](ops, 0)
		if !ok || (pred != nil && !pred(x)) {
			return prod, false, nil
		}
		return fn(x), true, nil
	}}
}

// Create2 sets the production from two operands.
func Create2[T, A, B any](pred func(A, B) bool, fn func(A, B) T) *Action {
	return &Action{run: func(_ *Node, prod any, ops []any) (any, bool, error) {
		x, okx := operand[A](ops, 0)
		y, oky := operand[B](ops, 1)
		if !okx || !oky || (pred != nil && !pred(x, y)) {
			return prod, false, nil
		}
		return fn(x, y), true, nil
	}}
}

// Transform1 replaces the production with a function of itself and one
// operand.
func Transform1[T, A any](source string, pred func(T, A) bool, fn func(T, A) T) *Action {
	return &Action{Source: source, run: func(_ *Node, prod any, ops []any) (any, bool, error) {
		p, okp := current[T](prod)
		x, okx := operand[A](ops, 0)
		if !okp || !okx || (pred != nil && !pred(p, x)) {
			return prod, false, nil
		}
		return fn(p, x), true, nil
	}}
}

// Update1 modifies the production in place from one operand. T is usually
// a pointer or map type.
func Update1[T, A any](source string, pred func(T, A) bool, fn func(T, A)) *Action {
	return &Action{Source: source, run: func(_ *Node, prod any, ops []any) (any, bool, error) {
		p, okp := current[T](prod)
		x, okx := operand[A](ops, 0)
		if !okp || !okx || (pred != nil && !pred(p, x)) {
			return prod, false, nil
		}
		fn(p, x)
		return p, true, nil
	}}
}

// Error1 fails the parse with the message returned by fn when pred accepts
// the production and one operand.
func Error1[T, A any](source string, pred func(T, A) bool, fn func(T, A) string) *Action {
	return &Action{Source: source, run: func(_ *Node, prod any, ops []any) (any, bool, error) {
		p, okp := current[T](prod)
		x, okx := operand[A](ops, 0)
		if !okp || !okx || (pred != nil && !pred(p, x)) {
			return prod, false, nil
		}
		return nil, false, &ParseError{Msg: fn(p, x), Pos: -1}
	}}
}

// Error2 is Error1 for two operands.
func Error2[T, A, B any](pred func(T, A, B) bool, fn func(T, A, B) string) *Action {
	return &Action{run: func(_ *Node, prod any, ops []any) (any, bool, error) {
		p, okp := current[T](prod)
		x, okx := operand[A](ops, 0)
		y, oky := operand[B](ops, 1)
		if !okp || !okx || !oky || (pred != nil && !pred(p, x, y)) {
			return prod, false, nil
		}
		return nil, false, &ParseError{Msg: fn(p, x, y), Pos: -1}
	}}
}

// Classify binds resolve to deferred operands, so that they are constructed
// by resolve when the parse context is drained. The production is left
// unchanged.
func Classify(source string, resolve func(d *Deferred) (any, error)) *Action {
	return &Action{Source: source, run: func(_ *Node, prod any, ops []any) (any, bool, error) {
		d, ok := operand[*Deferred](ops, 0)
		if !ok {
			return prod, false, nil
		}
		d.Bind(resolve)
		return prod, true, nil
	}}
}

// Func returns an action running fn on the node, the production built so
// far and the rule operands. fn returns the new production; an error fails
// the parse.
func Func(fn func(n *Node, prod any, operands []any) (any, error)) *Action {
	return &Action{run: func(n *Node, prod any, ops []any) (any, bool, error) {
		out, err := fn(n, prod, ops)
		if err != nil {
			return nil, false, err
		}
		return out, true, nil
	}}
}

func (a *Action) String() string {
	if a.Source == "" {
		return "Action"
	}
	return fmt.Sprintf("Action(%s)", a.Source)
}
