package regexpr

import (
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/dlclark/regexp2"
)

// Parser matches input text against a compiled pattern and turns the
// captures into a parse tree and productions.
//
// A Parser is safe for concurrent use. Each Parse call owns its tree and its
// production Context.
type Parser struct {
	mu      sync.RWMutex
	pattern *Pattern
	// timeout bounds a single match; zero never times out.
	timeout time.Duration
}

// Render compiles expr and returns a parser for it.
func Render(expr Expr, defaultWs Expr) (*Parser, error) {
	pattern, err := Compile(expr, defaultWs)
	if err != nil {
		return nil, err
	}
	return &Parser{pattern: pattern}, nil
}

// NewParser returns a parser for an already compiled pattern.
func NewParser(pattern *Pattern) *Parser {
	return &Parser{pattern: pattern}
}

// Refresh recompiles the parser from a new expression tree. On error the
// previous pattern stays in use.
func (p *Parser) Refresh(expr Expr, defaultWs Expr) error {
	pattern, err := Compile(expr, defaultWs)
	if err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	pattern.re.MatchTimeout = matchTimeout(p.timeout)
	p.pattern = pattern
	return nil
}

// SetMatchTimeout bounds the time a single match may take. It applies to the
// current pattern and to every pattern installed by Refresh. Zero or a
// negative duration removes the bound.
func (p *Parser) SetMatchTimeout(d time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	pattern, err := p.pattern.withMatchTimeout(d)
	if err != nil {
		return err
	}
	p.pattern = pattern
	p.timeout = d
	return nil
}

// MatchTimeout returns the bound set by SetMatchTimeout, zero when unbounded.
func (p *Parser) MatchTimeout() time.Duration {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.timeout
}

// withMatchTimeout returns a copy of pt matching with timeout d. The regexp
// is compiled anew since patterns in use are shared between goroutines.
func (pt *Pattern) withMatchTimeout(d time.Duration) (*Pattern, error) {
	re, err := regexp2.Compile(pt.Regex, regexp2.Multiline)
	if err != nil {
		return nil, compileErrorf("invalid pattern %q: %v", pt.Regex, err)
	}
	re.MatchTimeout = matchTimeout(d)
	cp := *pt
	cp.re = re
	return &cp, nil
}

func matchTimeout(d time.Duration) time.Duration {
	if d <= 0 {
		return regexp2.DefaultMatchTimeout
	}
	return d
}

// Pattern returns the compiled pattern currently in use.
func (p *Parser) Pattern() *Pattern {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.pattern
}

// Match is Pattern.Match on the pattern currently in use.
func (p *Parser) Match(text string) ([]Span, error) {
	return p.Pattern().Match(text)
}

// Match runs the pattern against text with multiline semantics and returns
// every non-empty capture of the first match, offsets in bytes.
func (pt *Pattern) Match(text string) ([]Span, error) {
	m, err := pt.re.FindStringMatch(text)
	if err != nil {
		// the matcher's message quotes the whole input
		if strings.HasPrefix(err.Error(), "match timeout") {
			return nil, parseErrorf(-1, "match timeout after %v", pt.re.MatchTimeout)
		}
		return nil, parseErrorf(-1, "%v", err)
	}
	if m == nil {
		return nil, &ParseError{Msg: "input does not match", Pos: -1}
	}
	if m.Length == 0 {
		return nil, parseErrorf(m.Index, "empty match")
	}

	offset := byteOffsets(text)
	var captures []Span
	for _, g := range m.Groups() {
		idx := pt.re.GroupNumberFromName(g.Name)
		n := 0
		for i := range g.Captures {
			c := &g.Captures[i]
			if c.Length == 0 {
				continue
			}
			begin, end := offset(c.Index), offset(c.Index+c.Length)
			captures = append(captures, Span{
				Name:       g.Name,
				GroupIdx:   idx,
				CaptureIdx: n,
				Begin:      begin,
				End:        end,
				Value:      text[begin:end],
			})
			n++
		}
	}
	return captures, nil
}

// byteOffsets maps rune offsets reported by the engine to byte offsets.
func byteOffsets(text string) func(int) int {
	if utf8.RuneCountInString(text) == len(text) {
		return func(i int) int { return i }
	}
	offsets := make([]int, 0, len(text)+1)
	for i := range text {
		offsets = append(offsets, i)
	}
	offsets = append(offsets, len(text))
	return func(i int) int { return offsets[i] }
}

// ParseTree matches text and builds its parse tree.
func (p *Parser) ParseTree(text string) (*Node, error) {
	pattern := p.Pattern()
	captures, err := pattern.Match(text)
	if err != nil {
		return nil, err
	}
	return BuildTree(text, captures, pattern.Tokens), nil
}

// Produce parses text and generates its productions within ctx. Deferred
// objects are left pending in ctx.
func (p *Parser) Produce(ctx *Context, text string) (*Node, *Productions, error) {
	root, err := p.ParseTree(text)
	if err != nil {
		return nil, nil, err
	}
	prods, err := Produce(ctx, root)
	if err != nil {
		return nil, nil, err
	}
	return root, prods, nil
}

// Parse parses text and returns its productions by token id. Every
// deferred object created on the way is resolved before Parse returns.
func (p *Parser) Parse(text string) (*Productions, error) {
	_, prods, err := p.Analyze(text)
	return prods, err
}

// Analyze is Parse that also returns the parse tree.
func (p *Parser) Analyze(text string) (*Node, *Productions, error) {
	ctx := NewContext()
	root, prods, err := p.Produce(ctx, text)
	if err != nil {
		return nil, nil, err
	}
	if err := ctx.Drain(); err != nil {
		return nil, nil, err
	}
	return root, prods, nil
}

// Regex returns the rendered regular expression.
func (p *Parser) Regex() string { return p.Pattern().Regex }
