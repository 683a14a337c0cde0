package regexpr

import (
	"errors"
	"fmt"
)

var (
	// ErrCompile is matched by every error raised while rendering an expression tree.
	ErrCompile = errors.New("regexpr: compile error")
	// ErrParse is matched by every error caused by the input text.
	ErrParse = errors.New("regexpr: parse error")
	// ErrProduction is matched by every grammar-definition error found while producing.
	ErrProduction = errors.New("regexpr: production error")
)

// CompileError reports a malformed expression tree.
type CompileError struct {
	Msg string
}

func (e *CompileError) Error() string { return "compile error: " + e.Msg }
func (e *CompileError) Unwrap() error { return ErrCompile }

func compileErrorf(format string, args ...any) *CompileError {
	return &CompileError{Msg: fmt.Sprintf(format, args...)}
}

// ParseError reports input text that does not match the pattern, or that
// matches but cannot be turned into productions.
type ParseError struct {
	Msg string
	// Pos is the byte offset the error refers to, or -1 when unknown.
	Pos int
}

func (e *ParseError) Error() string {
	switch {
	case e.Msg == "":
		return "parse error"
	case e.Pos >= 0:
		return fmt.Sprintf("parse error at offset %d: %s", e.Pos, e.Msg)
	default:
		return "parse error: " + e.Msg
	}
}

func (e *ParseError) Unwrap() error { return ErrParse }

func parseErrorf(pos int, format string, args ...any) *ParseError {
	return &ParseError{Msg: fmt.Sprintf(format, args...), Pos: pos}
}

// ProductionError reports a grammar-definition bug: a token whose rules
// cannot handle a node, or a deferred object nobody resolved.
type ProductionError struct {
	TokenID string
	Msg     string
}

func (e *ProductionError) Error() string {
	if e.TokenID == "" {
		return "production error: " + e.Msg
	}
	return fmt.Sprintf("production error in token %q: %s", e.TokenID, e.Msg)
}

func (e *ProductionError) Unwrap() error { return ErrProduction }
