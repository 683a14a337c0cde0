package internal

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnoswap-labs/rxparse/internal/grammar"
	tt "github.com/gnoswap-labs/rxparse/internal/types"
)

type report struct {
	path   string
	result *tt.Result
	err    error
}

func TestWatchReparsesInput(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	engine, err := NewEngine("", nil)
	require.NoError(t, err)

	reports := make(chan report, 16)
	engine.OnReport(func(path string, result *tt.Result, err error) {
		reports <- report{path: path, result: result, err: err}
	})

	require.NoError(t, engine.StartWatching(dir))
	t.Cleanup(func() { _ = engine.StopWatching() })
	assert.Error(t, engine.StartWatching(dir))

	input := filepath.Join(dir, "input.calc")
	writeFile(t, input, "x = 1 + 2\n")

	select {
	case r := <-reports:
		require.NoError(t, r.err)
		assert.Equal(t, input, r.path)
		require.True(t, r.result.OK())
		assert.Equal(t, map[string]any{"name": "x", "value": int64(3)}, r.result.Records[0].Value)
	case <-time.After(5 * time.Second):
		t.Fatal("no report for the written input")
	}
}

func TestWatchReloadsGrammar(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	grammarPath := filepath.Join(dir, grammar.DefaultFile)
	writeFile(t, grammarPath, numberGrammar)

	engine, err := NewEngine(grammarPath, nil)
	require.NoError(t, err)
	require.NoError(t, engine.StartWatching())
	t.Cleanup(func() { _ = engine.StopWatching() })

	writeFile(t, grammarPath, wordGrammar)

	assert.Eventually(t, func() bool {
		res, err := engine.RunSource([]byte("ab"))
		return err == nil && res.OK()
	}, 5*time.Second, 50*time.Millisecond)
}

func TestStopWatchingWithoutStart(t *testing.T) {
	t.Parallel()

	engine, err := NewEngine("", nil)
	require.NoError(t, err)
	assert.Error(t, engine.StopWatching())
}
