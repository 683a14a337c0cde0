package internal

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	tt "github.com/gnoswap-labs/rxparse/internal/types"
)

// settleDelay lets a burst of writes to one file end before it is read.
const settleDelay = 100 * time.Millisecond

// OnReport sets the function receiving the results of watch-mode reparses.
// Results are logged when none is set.
func (e *Engine) OnReport(fn func(path string, result *tt.Result, err error)) {
	e.report = fn
}

// StartWatching watches the grammar file and the given input directories.
// A write to the grammar reloads it; a write to an input reparses it.
func (e *Engine) StartWatching(dirs ...string) error {
	if e.isWatching.Load() {
		return fmt.Errorf("already watching")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("error creating watcher: %w", err)
	}
	e.watcher = watcher
	e.watchDirs = dirs

	if e.grammarPath != "" {
		if err := watcher.Add(filepath.Dir(e.grammarPath)); err != nil {
			watcher.Close()
			return fmt.Errorf("error watching grammar: %w", err)
		}
	}
	for _, dir := range e.watchDirs {
		err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if info.IsDir() {
				return watcher.Add(path)
			}
			return nil
		})
		if err != nil {
			watcher.Close()
			return fmt.Errorf("error adding directory to watcher: %w", err)
		}
	}

	e.done = make(chan struct{})
	e.isWatching.Store(true)
	go e.watchLoop(watcher, e.done)
	return nil
}

// StopWatching stops the watcher and waits for its loop to end.
func (e *Engine) StopWatching() error {
	if !e.isWatching.Swap(false) {
		return errors.New("not watching")
	}
	err := e.watcher.Close()
	<-e.done
	return err
}

func (e *Engine) watchLoop(watcher *fsnotify.Watcher, done chan struct{}) {
	defer close(done)
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			e.handleFileEvent(event)
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			e.logger.Error("watch error", zap.Error(err))
		}
	}
}

func (e *Engine) handleFileEvent(event fsnotify.Event) {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return
	}

	if e.isGrammar(event.Name) {
		time.Sleep(settleDelay)
		if err := e.Reload(); err != nil {
			e.logger.Error("error reloading grammar", zap.String("grammar", event.Name), zap.Error(err))
		}
		return
	}

	if !e.underWatchDir(event.Name) || !e.Accepts(event.Name) {
		return
	}
	info, err := os.Stat(event.Name)
	if err != nil || info.IsDir() {
		return
	}

	time.Sleep(settleDelay)
	result, err := e.Run(event.Name)
	e.reportResult(event.Name, result, err)
}

func (e *Engine) isGrammar(path string) bool {
	if e.grammarPath == "" {
		return false
	}
	a, err1 := filepath.Abs(path)
	b, err2 := filepath.Abs(e.grammarPath)
	return err1 == nil && err2 == nil && a == b
}

func (e *Engine) underWatchDir(path string) bool {
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	for _, dir := range e.watchDirs {
		d, err := filepath.Abs(dir)
		if err != nil {
			continue
		}
		if rel, err := filepath.Rel(d, abs); err == nil && rel != ".." && !startsWithParent(rel) {
			return true
		}
	}
	return false
}

func startsWithParent(rel string) bool {
	return len(rel) >= 3 && rel[:3] == ".."+string(filepath.Separator)
}

func (e *Engine) reportResult(path string, result *tt.Result, err error) {
	if e.report != nil {
		e.report(path, result, err)
		return
	}
	switch {
	case err != nil:
		e.logger.Error("error parsing file", zap.String("file", path), zap.Error(err))
	case !result.OK():
		e.logger.Warn("parse failed",
			zap.String("file", path),
			zap.String("kind", result.Failure.Kind),
			zap.Int("line", result.Failure.Line),
			zap.Int("column", result.Failure.Column),
			zap.String("message", result.Failure.Message))
	default:
		e.logger.Info("parsed", zap.String("file", path), zap.Int("records", len(result.Records)))
	}
}
