package internal

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/gnoswap-labs/rxparse/internal/grammar"
	tt "github.com/gnoswap-labs/rxparse/internal/types"
	"github.com/gnoswap-labs/rxparse/regexpr"
)

// Engine parses inputs with the parser compiled from a grammar file.
type Engine struct {
	grammarPath string
	logger      *zap.Logger

	mu      sync.RWMutex
	grammar *grammar.Grammar
	parser  *regexpr.Parser
	cache   *Cache

	watcher    *fsnotify.Watcher
	watchDirs  []string
	isWatching atomic.Bool
	done       chan struct{}
	// report receives the result of every reparse in watch mode.
	report func(path string, result *tt.Result, err error)
}

// NewEngine loads and compiles the grammar at grammarPath. An empty path
// selects the built-in sample grammar.
func NewEngine(grammarPath string, logger *zap.Logger) (*Engine, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Engine{grammarPath: grammarPath, logger: logger}

	g, err := e.loadGrammar()
	if err != nil {
		return nil, err
	}
	parser, err := grammar.Build(g)
	if err != nil {
		return nil, fmt.Errorf("error compiling grammar: %w", err)
	}
	e.grammar = g
	e.parser = parser

	logger.Debug("grammar compiled",
		zap.String("grammar", g.Name),
		zap.Int("tokens", len(parser.Pattern().Names)))
	return e, nil
}

func (e *Engine) loadGrammar() (*grammar.Grammar, error) {
	if e.grammarPath == "" {
		return grammar.Default(), nil
	}
	g, err := grammar.Load(e.grammarPath)
	if err != nil {
		return nil, fmt.Errorf("error loading grammar: %w", err)
	}
	return g, nil
}

// Grammar returns the grammar in use.
func (e *Engine) Grammar() *grammar.Grammar {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.grammar
}

// Parser returns the compiled parser.
func (e *Engine) Parser() *regexpr.Parser {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.parser
}

// GrammarPath returns the grammar file, empty for the built-in grammar.
func (e *Engine) GrammarPath() string { return e.grammarPath }

// Reload reads and recompiles the grammar file. On failure the engine keeps
// the previous parser.
func (e *Engine) Reload() error {
	g, err := e.loadGrammar()
	if err != nil {
		return err
	}
	root, ws, err := grammar.Compile(g)
	if err != nil {
		return fmt.Errorf("error compiling grammar: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.parser.Refresh(root, ws); err != nil {
		return fmt.Errorf("error compiling grammar: %w", err)
	}
	e.grammar = g
	if e.cache != nil {
		e.cache.InvalidateAll()
	}
	e.logger.Info("grammar reloaded", zap.String("grammar", g.Name))
	return nil
}

// SetMatchTimeout bounds the time a single input may take to match. Input
// that exceeds it yields a parse failure.
func (e *Engine) SetMatchTimeout(d time.Duration) error {
	return e.Parser().SetMatchTimeout(d)
}

// EnableCache stores results in cacheDir. Entries older than maxAge, when
// positive, are parsed again.
func (e *Engine) EnableCache(cacheDir string, maxAge time.Duration) error {
	var deps []string
	if e.grammarPath != "" {
		deps = append(deps, e.grammarPath)
	}
	cache, err := NewCache(cacheDir, deps...)
	if err != nil {
		return err
	}
	cache.SetMaxAge(maxAge)

	e.mu.Lock()
	e.cache = cache
	e.mu.Unlock()
	return nil
}

// Accepts reports whether a file found in a directory walk is an input of
// the grammar.
func (e *Engine) Accepts(path string) bool {
	exts := e.Grammar().Extensions
	if len(exts) == 0 {
		return true
	}
	ext := filepath.Ext(path)
	for _, x := range exts {
		if strings.EqualFold(x, ext) {
			return true
		}
	}
	return false
}

// Run parses the file at path. Input that does not parse yields a result
// with a Failure; the error is reserved for unreadable files.
func (e *Engine) Run(path string) (*tt.Result, error) {
	e.mu.RLock()
	cache := e.cache
	e.mu.RUnlock()

	if cache != nil {
		if res, ok := cache.Get(path); ok {
			e.logger.Debug("cache hit", zap.String("file", path))
			return res, nil
		}
	}

	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading file: %w", err)
	}
	res := e.parse(path, string(source))

	if cache != nil {
		if err := cache.Set(path, res); err != nil {
			e.logger.Warn("error caching result", zap.String("file", path), zap.Error(err))
		}
	}
	return res, nil
}

// RunSource parses source.
func (e *Engine) RunSource(source []byte) (*tt.Result, error) {
	return e.parse("", string(source)), nil
}

func (e *Engine) parse(filename, text string) *tt.Result {
	res := &tt.Result{Filename: filename}

	root, prods, err := e.Parser().Analyze(text)
	if err != nil {
		res.Failure = newFailure(text, err)
		e.logger.Debug("parse failed", zap.String("file", filename), zap.Error(err))
		return res
	}

	for _, p := range root.ChildProductions().All() {
		line, col := Position(text, p.Begin)
		res.Records = append(res.Records, tt.Record{
			Token:  p.TokenID,
			Value:  grammar.Normalize(p.Value),
			Begin:  p.Begin,
			End:    p.End,
			Line:   line,
			Column: col,
		})
	}
	res.Tree = detach(root)
	e.logger.Debug("parsed",
		zap.String("file", filename),
		zap.Int("records", len(res.Records)),
		zap.Int("productions", prods.Len()))
	return res
}

func newFailure(text string, err error) *tt.Failure {
	f := &tt.Failure{Kind: "parse", Message: err.Error(), Pos: -1}

	var pe *regexpr.ParseError
	var prodErr *regexpr.ProductionError
	switch {
	case errors.As(err, &pe):
		f.Message = pe.Msg
		f.Pos = pe.Pos
	case errors.As(err, &prodErr):
		f.Kind = "production"
		f.Message = prodErr.Error()
	}
	if f.Pos >= 0 {
		f.Line, f.Column = Position(text, f.Pos)
	}
	return f
}

// detach copies the parse tree into plain nodes.
func detach(n *regexpr.Node) *tt.Node {
	out := &tt.Node{
		Token: n.TokenID(),
		Text:  n.Value,
		Begin: n.Begin,
		End:   n.End,
	}
	if n.Production != nil {
		out.Production = grammar.Normalize(n.Production)
	}
	for _, c := range n.Children() {
		out.Children = append(out.Children, detach(c))
	}
	return out
}

// Position converts a byte offset into a 1-based line and column. Columns
// count runes.
func Position(text string, offset int) (line, column int) {
	if offset < 0 {
		return 0, 0
	}
	if offset > len(text) {
		offset = len(text)
	}
	line, column = 1, 1
	for _, r := range text[:offset] {
		if r == '\n' {
			line++
			column = 1
			continue
		}
		column++
	}
	return line, column
}
