package rxparse

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	tt "github.com/gnoswap-labs/rxparse/internal/types"
)

func init() {
	color.NoColor = true
}

func sampleResults() []*tt.Result {
	return []*tt.Result{
		{
			Filename: "a.calc",
			Records: []tt.Record{
				{Token: "assign", Value: map[string]any{"name": "x", "value": int64(14)}, Begin: 0, End: 15, Line: 1, Column: 1},
				{Token: "assign", Value: map[string]any{"name": "y", "value": int64(1)}, Begin: 16, End: 21, Line: 2, Column: 1},
			},
		},
	}
}

func TestFormatResultsText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, FormatResults(&buf, sampleResults(), FormatText))
	assert.Equal(t,
		"a.calc:1:1: assign map[name:x value:14]\n"+
			"a.calc:2:1: assign map[name:y value:1]\n",
		buf.String())
}

func TestFormatResultsTextFailure(t *testing.T) {
	dir := t.TempDir()
	path := writeInput(t, dir, "bad.calc", "x = 1\ny = \n")

	results := []*tt.Result{{
		Filename: path,
		Failure:  &tt.Failure{Kind: "parse", Message: "unexpected input", Pos: 6, Line: 2, Column: 1},
	}}

	var buf bytes.Buffer
	require.NoError(t, FormatResults(&buf, results, FormatText))

	want := "error: parse\n" +
		" --> " + filepath.ToSlash(path) + ":2:1\n" +
		"  |\n" +
		"2 | y = \n" +
		"  | ^ unexpected input\n\n"
	assert.Equal(t, want, filepath.ToSlash(buf.String()))
}

func TestFormatResultsJSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, FormatResults(&buf, sampleResults(), FormatJSON))

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, "a.calc", decoded[0]["filename"])

	records := decoded[0]["records"].([]any)
	require.Len(t, records, 2)
	first := records[0].(map[string]any)
	assert.Equal(t, "assign", first["token"])
	assert.Equal(t, map[string]any{"name": "x", "value": float64(14)}, first["value"])
	assert.NotContains(t, buf.String(), "failure")
}

func TestFormatResultsYAML(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, FormatResults(&buf, sampleResults(), FormatYAML))

	var decoded []struct {
		Filename string `yaml:"filename"`
		Records  []struct {
			Token string         `yaml:"token"`
			Value map[string]any `yaml:"value"`
			Line  int            `yaml:"line"`
		} `yaml:"records"`
	}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 1)
	require.Len(t, decoded[0].Records, 2)
	assert.Equal(t, 2, decoded[0].Records[1].Line)
	assert.Equal(t, "y", decoded[0].Records[1].Value["name"])
	assert.Equal(t, 1, decoded[0].Records[1].Value["value"])
}

func TestFormatResultsEmpty(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, FormatResults(&buf, nil, FormatJSON))
	assert.Equal(t, "[]\n", buf.String())
}

func TestFormatResultsUnknown(t *testing.T) {
	t.Parallel()

	err := FormatResults(&bytes.Buffer{}, nil, "xml")
	assert.EqualError(t, err, `unknown format "xml"`)
}
