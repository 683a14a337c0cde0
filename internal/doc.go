// Package internal runs grammar files over inputs.
//
// Key components:
//
// Engine: loads a grammar file, compiles it into a regexpr.Parser and parses
// files or in-memory sources into types.Result values. Reload recompiles the
// grammar in place; a parse never sees a half-built parser.
//
// Cache: an optional on-disk store of results keyed by input path. Entries
// are dropped when the input, the grammar file or the entry age changes.
//
// Watch mode: StartWatching reparses inputs as they are written and reloads
// the grammar when it changes.
//
// FormatTree and FormatParseFailure render results for terminals.
//
// Usage:
//
//	engine, err := internal.NewEngine(".rxparse.yaml", logger)
//	if err != nil {
//	    // handle error
//	}
//
//	result, err := engine.Run("input.calc")
//	if err != nil {
//	    // unreadable file
//	}
//	if !result.OK() {
//	    fmt.Print(internal.FormatParseFailure(result.Filename, source, result.Failure))
//	}
//
// This package is intended for internal use within rxparse and should not be
// imported by external packages.
package internal
