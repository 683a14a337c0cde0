package internal

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnoswap-labs/rxparse/internal/grammar"
)

const numberGrammar = "root: {token: num, action: int, expr: {class: '\\d', min: 1}}\n"

const wordGrammar = "root: {token: word, expr: {class: '\\w', min: 1}}\n"

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestNewEngine(t *testing.T) {
	t.Parallel()

	t.Run("built-in grammar", func(t *testing.T) {
		engine, err := NewEngine("", nil)
		require.NoError(t, err)
		assert.Equal(t, "assignments", engine.Grammar().Name)
		assert.NotEmpty(t, engine.Parser().Regex())
	})

	t.Run("missing grammar file", func(t *testing.T) {
		_, err := NewEngine(filepath.Join(t.TempDir(), "nope.yaml"), nil)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("invalid grammar", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), grammar.DefaultFile)
		writeFile(t, path, "root: {ref: nope}\n")
		_, err := NewEngine(path, nil)
		assert.ErrorIs(t, err, grammar.ErrGrammar)
	})
}

func TestEngine_RunSource(t *testing.T) {
	t.Parallel()

	engine, err := NewEngine("", nil)
	require.NoError(t, err)

	res, err := engine.RunSource([]byte("x = 2 * (3 + 4)\ny = -1 # neg\n"))
	require.NoError(t, err)
	require.True(t, res.OK())
	require.Len(t, res.Records, 2)

	first := res.Records[0]
	assert.Equal(t, "assign", first.Token)
	assert.Equal(t, map[string]any{"name": "x", "value": int64(14)}, first.Value)
	assert.Equal(t, 0, first.Begin)
	assert.Equal(t, 15, first.End)
	assert.Equal(t, 1, first.Line)
	assert.Equal(t, 1, first.Column)

	second := res.Records[1]
	assert.Equal(t, map[string]any{"name": "y", "value": int64(-1), "note": " neg"}, second.Value)
	assert.Equal(t, 16, second.Begin)
	assert.Equal(t, 2, second.Line)
	assert.Equal(t, 1, second.Column)

	require.NotNil(t, res.Tree)
	require.Len(t, res.Tree.Children, 2)
	assert.Equal(t, "assign", res.Tree.Children[0].Token)
	assert.Equal(t, "x = 2 * (3 + 4)", res.Tree.Children[0].Text)
}

func TestEngine_RunSourceFailure(t *testing.T) {
	t.Parallel()

	engine, err := NewEngine("", nil)
	require.NoError(t, err)

	tests := []struct {
		name     string
		input    string
		wantMsg  string
		wantLine int
		wantCol  int
	}{
		{name: "division by zero", input: "x = 1\ny = 1 / 0", wantMsg: "division by zero", wantLine: 2, wantCol: 7},
		{name: "no match", input: "x = ", wantMsg: "input does not match"},
		{name: "empty group after operand", input: "x = 1 ()", wantMsg: "empty expression", wantLine: 1, wantCol: 7},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			res, err := engine.RunSource([]byte(tt.input))
			require.NoError(t, err)
			require.False(t, res.OK())
			assert.Equal(t, "parse", res.Failure.Kind)
			assert.Contains(t, res.Failure.Message, tt.wantMsg)
			assert.Equal(t, tt.wantLine, res.Failure.Line)
			assert.Equal(t, tt.wantCol, res.Failure.Column)
			assert.Empty(t, res.Records)
		})
	}
}

func TestEngine_RunWithCache(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	grammarPath := filepath.Join(dir, grammar.DefaultFile)
	writeFile(t, grammarPath, numberGrammar)
	input := filepath.Join(dir, "input.txt")
	writeFile(t, input, "42")

	engine, err := NewEngine(grammarPath, nil)
	require.NoError(t, err)
	require.NoError(t, engine.EnableCache(filepath.Join(dir, "cache"), 0))

	first, err := engine.Run(input)
	require.NoError(t, err)
	require.True(t, first.OK())
	require.Len(t, first.Records, 1)
	assert.Equal(t, int64(42), first.Records[0].Value)
	assert.Equal(t, input, first.Filename)

	second, err := engine.Run(input)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, engine.cache.Len())

	// a grammar change invalidates cached results
	writeFile(t, grammarPath, numberGrammar+"# changed\n")
	_, ok := engine.cache.Get(input)
	assert.False(t, ok)
}

func TestEngine_RunMissingFile(t *testing.T) {
	t.Parallel()

	engine, err := NewEngine("", nil)
	require.NoError(t, err)
	_, err = engine.Run(filepath.Join(t.TempDir(), "missing.calc"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestEngine_Reload(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	grammarPath := filepath.Join(dir, grammar.DefaultFile)
	writeFile(t, grammarPath, numberGrammar)

	engine, err := NewEngine(grammarPath, nil)
	require.NoError(t, err)

	res, err := engine.RunSource([]byte("12"))
	require.NoError(t, err)
	require.Len(t, res.Records, 1)
	assert.Equal(t, "num", res.Records[0].Token)
	assert.Equal(t, int64(12), res.Records[0].Value)

	writeFile(t, grammarPath, wordGrammar)
	require.NoError(t, engine.Reload())

	res, err = engine.RunSource([]byte("ab"))
	require.NoError(t, err)
	require.Len(t, res.Records, 1)
	assert.Equal(t, "word", res.Records[0].Token)
	assert.Equal(t, "ab", res.Records[0].Value)

	// a broken grammar keeps the previous parser
	writeFile(t, grammarPath, "root: {ref: nope}\n")
	assert.Error(t, engine.Reload())

	res, err = engine.RunSource([]byte("cd"))
	require.NoError(t, err)
	require.True(t, res.OK())
	assert.Equal(t, "cd", res.Records[0].Value)
}

func TestEngine_SetMatchTimeout(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	grammarPath := filepath.Join(dir, grammar.DefaultFile)
	writeFile(t, grammarPath, numberGrammar)

	engine, err := NewEngine(grammarPath, nil)
	require.NoError(t, err)
	require.NoError(t, engine.SetMatchTimeout(time.Second))
	assert.Equal(t, time.Second, engine.Parser().MatchTimeout())

	writeFile(t, grammarPath, wordGrammar)
	require.NoError(t, engine.Reload())
	assert.Equal(t, time.Second, engine.Parser().MatchTimeout())

	res, err := engine.RunSource([]byte("ab"))
	require.NoError(t, err)
	assert.True(t, res.OK())
}

func TestEngine_Accepts(t *testing.T) {
	t.Parallel()

	engine, err := NewEngine("", nil)
	require.NoError(t, err)

	tests := []struct {
		path string
		want bool
	}{
		{path: "a.calc", want: true},
		{path: "dir/b.txt", want: true},
		{path: "C.CALC", want: true},
		{path: "main.go", want: false},
		{path: "README", want: false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, engine.Accepts(tt.path), tt.path)
	}

	dir := t.TempDir()
	grammarPath := filepath.Join(dir, grammar.DefaultFile)
	writeFile(t, grammarPath, numberGrammar)
	unfiltered, err := NewEngine(grammarPath, nil)
	require.NoError(t, err)
	assert.True(t, unfiltered.Accepts("main.go"))
}

func TestPosition(t *testing.T) {
	t.Parallel()

	text := "ab\ncd\n\tgröße"
	tests := []struct {
		offset   int
		wantLine int
		wantCol  int
	}{
		{offset: 0, wantLine: 1, wantCol: 1},
		{offset: 2, wantLine: 1, wantCol: 3},
		{offset: 3, wantLine: 2, wantCol: 1},
		{offset: 7, wantLine: 3, wantCol: 2},
		// "grö" is four bytes
		{offset: 11, wantLine: 3, wantCol: 5},
		{offset: 100, wantLine: 3, wantCol: 7},
		{offset: -1, wantLine: 0, wantCol: 0},
	}
	for _, tt := range tests {
		line, col := Position(text, tt.offset)
		assert.Equal(t, tt.wantLine, line, "offset %d", tt.offset)
		assert.Equal(t, tt.wantCol, col, "offset %d", tt.offset)
	}
}
