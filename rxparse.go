package rxparse

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"sync"

	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/gnoswap-labs/rxparse/internal"
	tt "github.com/gnoswap-labs/rxparse/internal/types"
)

// Engine parses files and sources with a compiled grammar.
type Engine interface {
	Run(filePath string) (*tt.Result, error)
	RunSource(source []byte) (*tt.Result, error)
	// Accepts reports whether a file found in a directory walk is an input.
	Accepts(filePath string) bool
}

// progressOutput receives the progress bar of directory walks.
var progressOutput io.Writer = os.Stderr

// New returns an engine for the grammar file at grammarPath. An empty path
// selects the built-in sample grammar.
func New(grammarPath string, logger *zap.Logger) (*internal.Engine, error) {
	return internal.NewEngine(grammarPath, logger)
}

func ProcessSources(
	ctx context.Context,
	logger *zap.Logger,
	engine Engine,
	sources [][]byte,
	processor func(Engine, []byte) (*tt.Result, error),
) ([]*tt.Result, error) {
	results := make([]*tt.Result, 0, len(sources))
	for i, source := range sources {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		result, err := processor(engine, source)
		if err != nil {
			if logger != nil {
				logger.Error("Error processing source", zap.Int("source", i), zap.Error(err))
			}
			return nil, err
		}
		results = append(results, result)
	}

	return results, nil
}

func ProcessFiles(
	ctx context.Context,
	logger *zap.Logger,
	engine Engine,
	paths []string,
	processor func(Engine, string) (*tt.Result, error),
) ([]*tt.Result, error) {
	var allResults []*tt.Result
	for _, path := range paths {
		results, err := ProcessPath(ctx, logger, engine, path, processor)
		if err != nil {
			if logger != nil {
				logger.Error("Error processing path", zap.String("path", path), zap.Error(err))
			}
			return allResults, err
		}
		allResults = append(allResults, results...)
	}

	return allResults, nil
}

// ProcessPath parses path. A directory is walked and every file the engine
// accepts is parsed by a bounded pool of workers; files that cannot be
// processed are logged and skipped. A file given directly is always parsed.
// When ctx ends early the results gathered so far are returned with the
// context error.
func ProcessPath(
	ctx context.Context,
	logger *zap.Logger,
	engine Engine,
	path string,
	processor func(Engine, string) (*tt.Result, error),
) ([]*tt.Result, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("error accessing %s: %w", path, err)
	}

	if !info.IsDir() {
		result, err := processor(engine, path)
		if err != nil {
			return nil, err
		}
		return []*tt.Result{result}, nil
	}

	files, err := collectFiles(engine, path)
	if err != nil {
		return nil, err
	}

	bar := progressbar.NewOptions(len(files),
		progressbar.OptionSetWriter(progressOutput),
		progressbar.OptionSetDescription(path),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))

	var (
		mu      sync.Mutex
		results = make([]*tt.Result, 0, len(files))
	)

	// workers never fail the group; errors are per file
	var g errgroup.Group
	g.SetLimit(runtime.NumCPU())

	for _, filePath := range files {
		if ctx.Err() != nil {
			break
		}
		fp := filePath
		g.Go(func() error {
			defer func() { _ = bar.Add(1) }()

			if ctx.Err() != nil {
				return nil
			}
			result, err := processor(engine, fp)
			if err != nil {
				if logger != nil {
					logger.Error("Error processing file", zap.String("file", fp), zap.Error(err))
				}
				return nil
			}
			mu.Lock()
			results = append(results, result)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	_ = bar.Finish()

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Filename < results[j].Filename
	})

	return results, ctx.Err()
}

func collectFiles(engine Engine, root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(filePath string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && engine.Accepts(filePath) {
			files = append(files, filePath)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error walking directory %s: %w", root, err)
	}
	return files, nil
}

func ProcessFile(engine Engine, filePath string) (*tt.Result, error) {
	return engine.Run(filePath)
}

func ProcessSource(engine Engine, source []byte) (*tt.Result, error) {
	return engine.RunSource(source)
}
