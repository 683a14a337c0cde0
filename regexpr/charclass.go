package regexpr

import (
	"fmt"
	"strings"
)

// ClassElement is an expression that can be combined into a CharSet.
type ClassElement interface {
	Expr
	classElement()
}

// CharClass is an elementary character class: a list of characters, or a raw
// class escape such as `\d`.
type CharClass struct {
	Chars string
	// IsRaw marks Chars as already in regex class syntax.
	IsRaw bool
}

// Chars returns a class matching any of the given characters.
func Chars(chars string) *CharClass { return &CharClass{Chars: chars} }

// RawChars returns a class element written in regex class syntax, e.g. `\w`.
func RawChars(class string) *CharClass { return &CharClass{Chars: class, IsRaw: true} }

func (c *CharClass) Type() ExprType { return ExprChars }
func (c *CharClass) String() string {
	if c.IsRaw {
		return fmt.Sprintf("RawChars(%q)", c.Chars)
	}
	return fmt.Sprintf("Chars(%q)", c.Chars)
}
func (c *CharClass) classElement() {}

// CharRange matches characters between Lo and Hi inclusive.
type CharRange struct {
	Lo, Hi rune
}

// Range returns a character range.
func Range(lo, hi rune) *CharRange { return &CharRange{Lo: lo, Hi: hi} }

func (r *CharRange) Type() ExprType  { return ExprRange }
func (r *CharRange) String() string { return fmt.Sprintf("Range(%q-%q)", r.Lo, r.Hi) }
func (r *CharRange) classElement()  {}

// CharSet combines class elements: it matches a character accepted by one of
// the positive elements and rejected by all the negative ones.
type CharSet struct {
	Positives []ClassElement
	Negatives []ClassElement
}

// Set returns the union of the given elements. Nested sets are merged.
func Set(elems ...ClassElement) *CharSet {
	s := &CharSet{}
	s.add(false, elems)
	return s
}

// NotSet returns a set matching any character not matched by elems.
func NotSet(elems ...ClassElement) *CharSet {
	s := &CharSet{}
	s.add(true, elems)
	return s
}

// Invert swaps positive and negative elements.
func (s *CharSet) Invert() *CharSet {
	return &CharSet{
		Positives: append([]ClassElement(nil), s.Negatives...),
		Negatives: append([]ClassElement(nil), s.Positives...),
	}
}

// Minus returns a copy of s which also excludes elems.
func (s *CharSet) Minus(elems ...ClassElement) *CharSet {
	out := &CharSet{
		Positives: append([]ClassElement(nil), s.Positives...),
		Negatives: append([]ClassElement(nil), s.Negatives...),
	}
	out.add(true, elems)
	return out
}

func (s *CharSet) add(negative bool, elems []ClassElement) {
	for _, e := range elems {
		if nested, ok := e.(*CharSet); ok {
			if negative {
				nested = nested.Invert()
			}
			s.Positives = append(s.Positives, nested.Positives...)
			s.Negatives = append(s.Negatives, nested.Negatives...)
			continue
		}
		if negative {
			s.Negatives = append(s.Negatives, e)
		} else {
			s.Positives = append(s.Positives, e)
		}
	}
}

func (s *CharSet) Type() ExprType { return ExprSet }
func (s *CharSet) String() string {
	var b strings.Builder
	b.WriteString("Set(")
	for i, e := range s.Positives {
		if i > 0 {
			b.WriteString(" + ")
		}
		b.WriteString(e.String())
	}
	for _, e := range s.Negatives {
		b.WriteString(" - ")
		b.WriteString(e.String())
	}
	b.WriteString(")")
	return b.String()
}
func (s *CharSet) classElement() {}
