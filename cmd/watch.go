package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/gnoswap-labs/rxparse"
	"github.com/gnoswap-labs/rxparse/internal"
	tt "github.com/gnoswap-labs/rxparse/internal/types"
)

var watchCmd = &cobra.Command{
	Use:   "watch [dirs...]",
	Short: "Reparse files as they change, reloading the grammar when it changes",
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			args = []string{"."}
		}
		engine, err := newEngine()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return runWatch(ctx, engine, args, cmd.OutOrStdout())
	},
}

// runWatch reports every reparse to out until ctx ends.
func runWatch(ctx context.Context, engine *internal.Engine, dirs []string, out io.Writer) error {
	var mu sync.Mutex
	engine.OnReport(func(path string, result *tt.Result, err error) {
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			fmt.Fprintf(out, "%s: %v\n", path, err)
			return
		}
		_ = rxparse.FormatResults(out, []*tt.Result{result}, rxparse.FormatText)
	})

	if err := engine.StartWatching(dirs...); err != nil {
		return err
	}
	fmt.Fprintf(out, "watching %v for changes\n", dirs)

	<-ctx.Done()
	return engine.StopWatching()
}
