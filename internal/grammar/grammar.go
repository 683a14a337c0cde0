package grammar

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultFile is the grammar file used when none is given.
const DefaultFile = ".rxparse.yaml"

// ErrGrammar is matched by every error in a grammar file.
var ErrGrammar = errors.New("grammar error")

// Error reports a malformed grammar. Path locates the offending node, e.g.
// "root/seq/1/expr".
type Error struct {
	Path string
	Msg  string
}

func (e *Error) Error() string {
	if e.Path == "" {
		return "grammar: " + e.Msg
	}
	return fmt.Sprintf("grammar: %s: %s", e.Path, e.Msg)
}

func (e *Error) Unwrap() error { return ErrGrammar }

func errorf(path, format string, args ...any) *Error {
	return &Error{Path: path, Msg: fmt.Sprintf(format, args...)}
}

// Grammar is the content of a grammar file.
type Grammar struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
	// Extensions restricts directory walks to files with these extensions.
	Extensions []string `yaml:"extensions,omitempty"`
	// Whitespace is skipped in front of every token. It defaults to \s*.
	Whitespace *Node `yaml:"whitespace,omitempty"`
	// SkipWs set to false disables the default whitespace.
	SkipWs      *bool            `yaml:"skipws,omitempty"`
	Definitions map[string]*Node `yaml:"definitions,omitempty"`
	Root        *Node            `yaml:"root"`
}

// Node is one expression of a grammar. Exactly one of the kind keys (lit,
// raw, chars, class, range, set, seq, alt, anchor, ref, ahead, behind,
// repeat, token, skipws) must be set; min, max and optional wrap any kind in
// a repetition.
type Node struct {
	Lit    *string     `yaml:"lit,omitempty"`
	Raw    *string     `yaml:"raw,omitempty"`
	Chars  *string     `yaml:"chars,omitempty"`
	Class  *string     `yaml:"class,omitempty"`
	Range  *string     `yaml:"range,omitempty"`
	Set    *SetSpec    `yaml:"set,omitempty"`
	Seq    []*Node     `yaml:"seq,omitempty"`
	Alt    []*Node     `yaml:"alt,omitempty"`
	Anchor *string     `yaml:"anchor,omitempty"`
	Ref    *string     `yaml:"ref,omitempty"`
	Ahead  *Node       `yaml:"ahead,omitempty"`
	Behind *Node       `yaml:"behind,omitempty"`
	Negate bool        `yaml:"negate,omitempty"`
	Repeat *RepeatSpec `yaml:"repeat,omitempty"`

	Token  *string    `yaml:"token,omitempty"`
	Expr   *Node      `yaml:"expr,omitempty"`
	Name   string     `yaml:"name,omitempty"`
	Action string     `yaml:"action,omitempty"`
	Rules  []RuleSpec `yaml:"rules,omitempty"`
	Ws     *Node      `yaml:"ws,omitempty"`
	SkipWs *bool      `yaml:"skipws,omitempty"`
	Defer  bool       `yaml:"defer,omitempty"`

	Min      *int `yaml:"min,omitempty"`
	Max      *int `yaml:"max,omitempty"`
	Optional bool `yaml:"optional,omitempty"`
}

// SetSpec is a character set: the characters of Include, minus those of
// Exclude. Negate matches the characters of neither.
type SetSpec struct {
	Include []*Node `yaml:"include,omitempty"`
	Exclude []*Node `yaml:"exclude,omitempty"`
	Negate  bool    `yaml:"negate,omitempty"`
}

// RepeatSpec bounds a repetition; a missing Max is unbounded.
type RepeatSpec struct {
	Min int  `yaml:"min"`
	Max *int `yaml:"max,omitempty"`
}

// RuleSpec is one production rule of a token.
type RuleSpec struct {
	// Kind is plain (default), prefix, postfix, infix, left or right.
	Kind     string `yaml:"kind,omitempty"`
	Priority int    `yaml:"priority,omitempty"`
	Action   string `yaml:"action,omitempty"`
	// When selects the nodes the rule applies to: first, last, leading or
	// trailing. Rules without When are the default.
	When string `yaml:"when,omitempty"`
}

// Load reads and validates a grammar file.
func Load(path string) (*Grammar, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	g, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return g, nil
}

// Parse decodes a grammar. Unknown keys are rejected.
func Parse(data []byte) (*Grammar, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var g Grammar
	if err := dec.Decode(&g); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errorf("", "empty grammar")
		}
		return nil, errorf("", "%v", err)
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return &g, nil
}

// Validate checks the structure of every node without compiling the
// grammar.
func (g *Grammar) Validate() error {
	if g.Root == nil {
		return errorf("", "missing root")
	}
	for _, name := range g.DefinitionNames() {
		if err := g.Definitions[name].validate("definitions/" + name); err != nil {
			return err
		}
	}
	if g.Whitespace != nil {
		if err := g.Whitespace.validate("whitespace"); err != nil {
			return err
		}
	}
	return g.Root.validate("root")
}

// DefinitionNames returns the definition names in sorted order.
func (g *Grammar) DefinitionNames() []string {
	names := make([]string, 0, len(g.Definitions))
	for name := range g.Definitions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Marshal encodes the grammar as YAML.
func (g *Grammar) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(g); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// kind returns the expression kind of the node.
func (n *Node) kind(path string) (string, error) {
	var kinds []string
	add := func(set bool, kind string) {
		if set {
			kinds = append(kinds, kind)
		}
	}
	add(n.Lit != nil, "lit")
	add(n.Raw != nil, "raw")
	add(n.Chars != nil, "chars")
	add(n.Class != nil, "class")
	add(n.Range != nil, "range")
	add(n.Set != nil, "set")
	add(n.Seq != nil, "seq")
	add(n.Alt != nil, "alt")
	add(n.Anchor != nil, "anchor")
	add(n.Ref != nil, "ref")
	add(n.Ahead != nil, "ahead")
	add(n.Behind != nil, "behind")
	add(n.Repeat != nil, "repeat")
	add(n.Token != nil, "token")
	add(n.Token == nil && n.SkipWs != nil, "skipws")

	switch len(kinds) {
	case 0:
		return "", errorf(path, "node has no expression kind")
	case 1:
		return kinds[0], nil
	}
	return "", errorf(path, "node has several expression kinds: %s", strings.Join(kinds, ", "))
}

func (n *Node) validate(path string) error {
	if n == nil {
		return errorf(path, "missing expression")
	}
	kind, err := n.kind(path)
	if err != nil {
		return err
	}

	if n.Expr != nil && kind != "token" && kind != "repeat" {
		return errorf(path, "expr is only allowed with token or repeat")
	}
	if n.Negate && kind != "ahead" && kind != "behind" {
		return errorf(path, "negate is only allowed with ahead or behind")
	}
	if kind != "token" && (n.Name != "" || n.Action != "" || len(n.Rules) > 0 || n.Ws != nil || n.Defer) {
		return errorf(path, "token attributes on a %s node", kind)
	}
	if n.Optional && (n.Min != nil || n.Max != nil) {
		return errorf(path, "optional cannot be combined with min or max")
	}
	if kind == "repeat" && (n.Optional || n.Min != nil || n.Max != nil) {
		return errorf(path, "nested repetition")
	}
	if kind == "skipws" && !*n.SkipWs {
		return errorf(path, "skipws: false is only allowed on a token")
	}

	switch kind {
	case "seq":
		for i, item := range n.Seq {
			if err := item.validate(fmt.Sprintf("%s/seq/%d", path, i)); err != nil {
				return err
			}
		}
	case "alt":
		for i, item := range n.Alt {
			if err := item.validate(fmt.Sprintf("%s/alt/%d", path, i)); err != nil {
				return err
			}
		}
	case "set":
		for i, item := range n.Set.Include {
			if err := item.validate(fmt.Sprintf("%s/set/include/%d", path, i)); err != nil {
				return err
			}
		}
		for i, item := range n.Set.Exclude {
			if err := item.validate(fmt.Sprintf("%s/set/exclude/%d", path, i)); err != nil {
				return err
			}
		}
	case "ahead":
		return n.Ahead.validate(path + "/ahead")
	case "behind":
		return n.Behind.validate(path + "/behind")
	case "repeat":
		return n.Expr.validate(path + "/expr")
	case "token":
		if *n.Token == "" {
			return errorf(path, "empty token id")
		}
		if n.Action != "" && len(n.Rules) > 0 {
			return errorf(path, "token %q has both action and rules", *n.Token)
		}
		if n.Ws != nil {
			if err := n.Ws.validate(path + "/ws"); err != nil {
				return err
			}
		}
		return n.Expr.validate(path + "/expr")
	}
	return nil
}
