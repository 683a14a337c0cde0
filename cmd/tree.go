package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/gnoswap-labs/rxparse"
	"github.com/gnoswap-labs/rxparse/internal"
)

var treeCmd = &cobra.Command{
	Use:   "tree [paths...]",
	Short: "Print the parse tree of files",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(context.Background(), viper.GetDuration("timeout"))
		defer cancel()

		engine, err := newEngine()
		if err != nil {
			return err
		}
		return runTree(ctx, logger, engine, args, cmd.OutOrStdout())
	},
}

var headerStyle = color.New(color.FgCyan, color.Bold, color.Underline)

func runTree(ctx context.Context, logger *zap.Logger, engine rxparse.Engine, paths []string, out io.Writer) error {
	results, err := rxparse.ProcessFiles(ctx, logger, engine, paths, rxparse.ProcessFile)
	if err != nil {
		return fmt.Errorf("error processing files: %w", err)
	}

	failed := 0
	for _, res := range results {
		fmt.Fprintln(out, headerStyle.Sprint(res.Filename))
		if !res.OK() {
			failed++
			source, _ := os.ReadFile(res.Filename)
			fmt.Fprint(out, internal.FormatParseFailure(res.Filename, string(source), res.Failure))
			continue
		}
		fmt.Fprint(out, internal.FormatTree(res.Tree))
	}

	if failed > 0 {
		return fmt.Errorf("%w: %d of %d", ErrFailures, failed, len(results))
	}
	return nil
}
