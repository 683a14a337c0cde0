package rxparse

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/gnoswap-labs/rxparse/internal"
	tt "github.com/gnoswap-labs/rxparse/internal/types"
)

// Output formats accepted by FormatResults.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Formats lists the output formats.
var Formats = []string{FormatText, FormatJSON, FormatYAML}

// FormatResults writes results to w in the given format. The text format
// lists one record per line and renders failures against the failing
// source line.
func FormatResults(w io.Writer, results []*tt.Result, format string) error {
	switch format {
	case "", FormatText:
		return formatText(w, results)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(nonNil(results))
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(nonNil(results)); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

func nonNil(results []*tt.Result) []*tt.Result {
	if results == nil {
		return []*tt.Result{}
	}
	return results
}

func formatText(w io.Writer, results []*tt.Result) error {
	for _, res := range results {
		name := res.Filename
		if name == "" {
			name = "<input>"
		}
		if !res.OK() {
			source := readSource(res.Filename)
			if _, err := io.WriteString(w, internal.FormatParseFailure(res.Filename, source, res.Failure)); err != nil {
				return err
			}
			continue
		}
		for _, rec := range res.Records {
			if _, err := fmt.Fprintf(w, "%s:%d:%d: %s %v\n", name, rec.Line, rec.Column, rec.Token, rec.Value); err != nil {
				return err
			}
		}
	}
	return nil
}

// readSource returns the file content, empty when it cannot be read.
func readSource(filename string) string {
	if filename == "" {
		return ""
	}
	data, err := os.ReadFile(filename)
	if err != nil {
		return ""
	}
	return string(data)
}

// CountFailures returns the number of results that did not parse.
func CountFailures(results []*tt.Result) int {
	n := 0
	for _, res := range results {
		if !res.OK() {
			n++
		}
	}
	return n
}
