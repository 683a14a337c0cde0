package regexpr

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/dlclark/regexp2"
)

// KeyRoot is the capture id of the synthetic root: the whole match.
const KeyRoot = "0"

// Pattern is the rendering of an expression tree: the regular expression and
// the token bound to each capture group. It is immutable; any change to the
// expression tree requires a new Compile.
type Pattern struct {
	Expr Expr
	Ws   Expr
	// Regex is the rendered regular expression.
	Regex string
	// Tokens maps capture-group names to tokens. KeyRoot maps to Root.
	Tokens map[string]*Token
	// Names lists capture-group names in render order.
	Names []string
	Root  *Token

	re *regexp2.Regexp
}

var (
	captureNameRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	nonWordRegex     = regexp.MustCompile(`[^A-Za-z0-9_]`)
	// single char, backslash escape, control escape, hex and unicode escapes
	atomRegex = regexp.MustCompile(`(?s)^(?:.|\\.|\\c.|\\x[0-9A-Fa-f]{2}|\\u[0-9A-Fa-f]{4})$`)
)

// Compile renders root into a Pattern. defaultWs, when not nil, is matched in
// front of every token that does not override or disable whitespace skipping.
func Compile(root Expr, defaultWs Expr) (*Pattern, error) {
	r := &renderer{tokens: make(map[string]*Token)}
	if err := r.render(root, defaultWs); err != nil {
		return nil, err
	}

	rootToken := &Token{}
	r.tokens[KeyRoot] = rootToken

	regex := r.sb.String()
	if regex == "" {
		return nil, compileErrorf("expression renders an empty pattern")
	}
	re, err := regexp2.Compile(regex, regexp2.Multiline)
	if err != nil {
		return nil, compileErrorf("invalid pattern %q: %v", regex, err)
	}

	return &Pattern{
		Expr:   root,
		Ws:     defaultWs,
		Regex:  regex,
		Tokens: r.tokens,
		Names:  r.names,
		Root:   rootToken,
		re:     re,
	}, nil
}

type renderer struct {
	sb       strings.Builder
	tokens   map[string]*Token
	names    []string
	seq      int
	inAssert bool
}

func (r *renderer) render(e Expr, ws Expr) error {
	switch v := e.(type) {
	case *Literal:
		if v.Text == "" {
			return compileErrorf("empty literal")
		}
		r.sb.WriteString(escapeLiteral(v.Text))

	case *RawPattern:
		if v.Pattern == "" {
			return compileErrorf("empty raw pattern")
		}
		r.sb.WriteString(v.Pattern)

	case *CharClass, *CharRange, *CharSet:
		return r.renderClass(v.(ClassElement))

	case *Sequence:
		if len(v.Items) == 0 {
			return compileErrorf("empty sequence")
		}
		for _, item := range v.Items {
			if err := r.render(item, ws); err != nil {
				return err
			}
		}

	case *Choice:
		if len(v.Items) == 0 {
			return compileErrorf("empty choice")
		}
		r.sb.WriteString("(?:")
		for i, item := range v.Items {
			if i > 0 {
				r.sb.WriteString("|")
			}
			if err := r.render(item, ws); err != nil {
				return err
			}
		}
		r.sb.WriteString(")")

	case *Repetition:
		return r.renderRepeat(v, ws)

	case *Token:
		return r.renderToken(v, ws)

	case *Assertion:
		return r.renderAssert(v, ws)

	case nil:
		return compileErrorf("nil expression")

	default:
		return compileErrorf("unsupported expression %T", e)
	}
	return nil
}

func (r *renderer) renderRepeat(v *Repetition, ws Expr) error {
	if _, nested := v.Expr.(*Repetition); nested {
		return compileErrorf("nested repetition: %s", v)
	}
	if v.Min < 0 || (v.Max != Unbounded && (v.Max < v.Min || v.Max == 0)) {
		return compileErrorf("invalid repetition bounds {%d,%d}", v.Min, v.Max)
	}

	group := r.needsGroup(v.Expr)
	if group {
		r.sb.WriteString("(?:")
	}
	before := r.sb.Len()
	if err := r.render(v.Expr, ws); err != nil {
		return err
	}
	if r.sb.Len() == before {
		return compileErrorf("repetition of an empty expression: %s", v)
	}
	if group {
		r.sb.WriteString(")")
	}

	switch {
	case v.Min == 0 && v.Max == 1:
		r.sb.WriteString("?")
	case v.Min == 0 && v.Max == Unbounded:
		r.sb.WriteString("*")
	case v.Min == 1 && v.Max == Unbounded:
		r.sb.WriteString("+")
	case v.Min == v.Max:
		fmt.Fprintf(&r.sb, "{%d}", v.Min)
	case v.Max == Unbounded:
		fmt.Fprintf(&r.sb, "{%d,}", v.Min)
	default:
		fmt.Fprintf(&r.sb, "{%d,%d}", v.Min, v.Max)
	}
	return nil
}

func (r *renderer) renderToken(t *Token, ws Expr) error {
	tokenWs := t.leadingWs(ws)
	wsGroup := false
	if tokenWs != nil {
		r.sb.WriteString("(?:")
		switch tokenWs.(type) {
		case *Literal, *Sequence:
			wsGroup = !r.inAssert
		}
		if wsGroup {
			r.sb.WriteString("(?:")
		}
		// whitespace never skips whitespace in front of itself
		if err := r.render(tokenWs, nil); err != nil {
			return err
		}
		if wsGroup {
			r.sb.WriteString(")")
		}
	}

	if t.Expr != nil {
		if !r.inAssert && t.ID != "" {
			name, err := r.captureName(t)
			if err != nil {
				return err
			}
			r.sb.WriteString("(?<" + name + ">")
		} else {
			r.sb.WriteString("(?:")
		}
		if err := r.render(t.Expr, ws); err != nil {
			return err
		}
		r.sb.WriteString(")")
	}

	if tokenWs != nil {
		r.sb.WriteString(")")
	}
	return nil
}

func (r *renderer) renderAssert(a *Assertion, ws Expr) error {
	if r.inAssert {
		return compileErrorf("nested assertion: %s", a)
	}
	switch {
	case !a.Behind && !a.Negative:
		r.sb.WriteString("(?=")
	case !a.Behind && a.Negative:
		r.sb.WriteString("(?!")
	case a.Behind && !a.Negative:
		r.sb.WriteString("(?<=")
	default:
		r.sb.WriteString("(?<!")
	}
	r.inAssert = true
	err := r.render(a.Expr, ws)
	r.inAssert = false
	if err != nil {
		return err
	}
	r.sb.WriteString(")")
	return nil
}

func (r *renderer) renderClass(e ClassElement) error {
	switch v := e.(type) {
	case *CharClass:
		body, err := classBody([]ClassElement{v})
		if err != nil {
			return err
		}
		r.sb.WriteString("[" + body + "]")
	case *CharRange:
		body, err := classBody([]ClassElement{v})
		if err != nil {
			return err
		}
		r.sb.WriteString("[" + body + "]")
	case *CharSet:
		pos, err := classBody(v.Positives)
		if err != nil {
			return err
		}
		neg, err := classBody(v.Negatives)
		if err != nil {
			return err
		}
		switch {
		case pos != "" && neg != "":
			r.sb.WriteString("[" + pos + "-[" + neg + "]]")
		case pos != "":
			r.sb.WriteString("[" + pos + "]")
		case neg != "":
			r.sb.WriteString("[^" + neg + "]")
		default:
			return compileErrorf("empty character set")
		}
	}
	return nil
}

func classBody(elems []ClassElement) (string, error) {
	var sb strings.Builder
	for _, e := range elems {
		switch v := e.(type) {
		case *CharClass:
			if v.Chars == "" {
				return "", compileErrorf("empty character class")
			}
			if v.IsRaw {
				sb.WriteString(v.Chars)
			} else {
				sb.WriteString(escapeLiteral(v.Chars))
			}
		case *CharRange:
			if v.Hi < v.Lo {
				return "", compileErrorf("invalid character range %s", v)
			}
			sb.WriteString(escapeLiteral(string(v.Lo)) + "-" + escapeLiteral(string(v.Hi)))
		case *CharSet:
			if len(v.Negatives) > 0 {
				return "", compileErrorf("negative elements in a nested character set: %s", v)
			}
			body, err := classBody(v.Positives)
			if err != nil {
				return "", err
			}
			sb.WriteString(body)
		}
	}
	return sb.String(), nil
}

func (r *renderer) captureName(t *Token) (string, error) {
	name := t.Name
	if name != "" {
		if !captureNameRegex.MatchString(name) {
			return "", compileErrorf("invalid capture name %q for token %q", name, t.ID)
		}
	} else {
		r.seq++
		name = "T" + strconv.Itoa(r.seq) + "_" + nonWordRegex.ReplaceAllString(t.ID, "_")
	}
	if _, dup := r.tokens[name]; dup {
		return "", compileErrorf("duplicate capture name %q", name)
	}
	r.tokens[name] = t
	r.names = append(r.names, name)
	return name, nil
}

// needsGroup reports whether e must be wrapped in a non-capturing group
// before a quantifier is applied to it.
func (r *renderer) needsGroup(e Expr) bool {
	switch v := e.(type) {
	case *Sequence:
		return true
	case *Literal:
		return !atomRegex.MatchString(escapeLiteral(v.Text))
	case *RawPattern:
		return !atomRegex.MatchString(v.Pattern)
	}
	return false
}

// escapeLiteral escapes regex meta-characters and writes whitespace
// characters in their escape form.
func escapeLiteral(s string) string {
	var sb strings.Builder
	for _, c := range s {
		switch c {
		case '[', ']', '\\', '/', '#', '^', '$', '.', '|', '?', '*', '+', '(', ')', '{', '}', '-':
			sb.WriteByte('\\')
			sb.WriteRune(c)
		case ' ':
			sb.WriteString(`\x20`)
		case '\t':
			sb.WriteString(`\t`)
		case '\r':
			sb.WriteString(`\r`)
		case '\n':
			sb.WriteString(`\n`)
		default:
			sb.WriteRune(c)
		}
	}
	return sb.String()
}
