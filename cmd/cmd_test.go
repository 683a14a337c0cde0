package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/gnoswap-labs/rxparse"
	"github.com/gnoswap-labs/rxparse/internal/grammar"
	"github.com/gnoswap-labs/rxparse/regexpr"
)

func init() {
	color.NoColor = true
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestRunParse(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.calc"), "x = 1\n")

	engine, err := rxparse.New("", nil)
	require.NoError(t, err)

	var buf bytes.Buffer
	err = runParse(context.Background(), zap.NewNop(), engine, []string{dir}, rxparse.FormatText, &buf)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "a.calc")+":1:1: assign map[name:x value:1]\n", buf.String())

	t.Run("failures", func(t *testing.T) {
		bad := filepath.Join(t.TempDir(), "bad.calc")
		writeFile(t, bad, "y = \n")

		var buf bytes.Buffer
		err := runParse(context.Background(), zap.NewNop(), engine, []string{bad}, rxparse.FormatText, &buf)
		assert.ErrorIs(t, err, ErrFailures)
		assert.Contains(t, buf.String(), "error: parse")
	})

	t.Run("unknown format", func(t *testing.T) {
		err := runParse(context.Background(), zap.NewNop(), engine, []string{dir}, "xml", &bytes.Buffer{})
		assert.ErrorContains(t, err, `unknown format "xml"`)
	})
}

func TestRunTree(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "a.calc")
	writeFile(t, path, "x = 1\n")

	engine, err := rxparse.New("", nil)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, runTree(context.Background(), nil, engine, []string{path}, &buf))

	out := buf.String()
	assert.Contains(t, out, path+"\n")
	assert.Contains(t, out, "<root> [0:6]")
	assert.Contains(t, out, `  assign [0:5] "x = 1" => map[name:x value:1]`)
	assert.Contains(t, out, `    name [0:1] "x"`)
}

func TestRunRender(t *testing.T) {
	t.Parallel()

	engine, err := rxparse.New("", nil)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, runRender(engine.Parser().Pattern(), &buf))

	out := buf.String()
	assert.Contains(t, out, engine.Parser().Regex()+"\n\n")
	assert.Contains(t, out, "GROUP")
	assert.Contains(t, out, "assign")
	assert.Contains(t, out, "infix(20)")
}

func TestDescribeRules(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		rules []*regexpr.Rule
		want  string
	}{
		{name: "none", want: "-"},
		{name: "plain", rules: []*regexpr.Rule{regexpr.NewRule()}, want: "plain"},
		{
			name: "operators",
			rules: []*regexpr.Rule{
				regexpr.PrefixRule(30).When(func(*regexpr.Node) bool { return true }),
				regexpr.InfixRule(10),
				regexpr.PostfixRule(5),
			},
			want: "prefix(30)? infix(10) postfix(5)",
		},
		{
			name:  "delimiters",
			rules: []*regexpr.Rule{regexpr.LeftDelimiterRule(), regexpr.RightDelimiterRule()},
			want:  "left right",
		},
		{name: "deferred", rules: []*regexpr.Rule{regexpr.NewRule().Defer(nil)}, want: "plain*"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, describeRules(tc.rules))
		})
	}
}

func TestInitGrammarFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), grammar.DefaultFile)
	require.NoError(t, initGrammarFile(path, false))

	g, err := grammar.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "assignments", g.Name)

	err = initGrammarFile(path, false)
	assert.ErrorContains(t, err, "already exists")

	require.NoError(t, initGrammarFile(path, true))
}
