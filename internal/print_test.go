package internal

import (
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"

	tt "github.com/gnoswap-labs/rxparse/internal/types"
)

func init() {
	color.NoColor = true
}

func TestFormatTree(t *testing.T) {
	t.Parallel()

	root := &tt.Node{
		Text: "x = 1",
		End:  5,
		Children: []*tt.Node{{
			Token:      "assign",
			Text:       "x = 1",
			End:        5,
			Production: map[string]any{"name": "x", "value": int64(1)},
			Children: []*tt.Node{
				{Token: "name", Text: "x", End: 1, Production: "x"},
				{Token: "value", Text: "1", Begin: 4, End: 5, Production: int64(1)},
			},
		}},
	}

	expected := `<root> [0:5] "x = 1"
  assign [0:5] "x = 1" => map[name:x value:1]
    name [0:1] "x"
    value [4:5] "1" => 1
`
	assert.Equal(t, expected, FormatTree(root))
}

func TestQuoteText(t *testing.T) {
	t.Parallel()

	assert.Equal(t, `"a\nb"`, quoteText("a\nb"))

	long := "0123456789012345678901234567890123456789tail"
	assert.Equal(t, `"0123456789012345678901234567890123456789"...`, quoteText(long))
}

func TestFormatParseFailure(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		filename string
		source   string
		failure  *tt.Failure
		expected string
	}{
		{
			name:     "with position",
			filename: "calc.txt",
			source:   "x = 1\ny = 1 / 0",
			failure:  &tt.Failure{Kind: "parse", Message: "division by zero", Pos: 12, Line: 2, Column: 7},
			expected: "error: parse\n" +
				" --> calc.txt:2:7\n" +
				"  |\n" +
				"2 | y = 1 / 0\n" +
				"  |       ^ division by zero\n\n",
		},
		{
			name:     "tab before the column",
			filename: "calc.txt",
			source:   "\tx = ?",
			failure:  &tt.Failure{Kind: "parse", Message: "unexpected", Pos: 5, Line: 1, Column: 6},
			expected: "error: parse\n" +
				" --> calc.txt:1:6\n" +
				"  |\n" +
				"1 |         x = ?\n" +
				"  |             ^ unexpected\n\n",
		},
		{
			name:     "without position",
			source:   "x = ",
			failure:  &tt.Failure{Kind: "parse", Message: "input does not match", Pos: -1},
			expected: "error: parse\n --> <input>\n  | input does not match\n\n",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.expected, FormatParseFailure(tc.filename, tc.source, tc.failure))
		})
	}
}

func TestExpandTabs(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "        a", expandTabs("\ta"))
	assert.Equal(t, "ab      c", expandTabs("ab\tc"))
	assert.Equal(t, "no tabs", expandTabs("no tabs"))
}
