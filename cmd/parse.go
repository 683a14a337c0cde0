package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/gnoswap-labs/rxparse"
)

var (
	outputFormat string
	outPath      string
)

var parseCmd = &cobra.Command{
	Use:   "parse [paths...]",
	Short: "Parse files and print their productions",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(context.Background(), viper.GetDuration("timeout"))
		defer cancel()

		engine, err := newEngine()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if outPath != "" {
			f, err := os.Create(outPath)
			if err != nil {
				return fmt.Errorf("error creating output file: %w", err)
			}
			defer f.Close()
			out = f
		}

		return runParse(ctx, logger, engine, args, outputFormat, out)
	},
}

func init() {
	parseCmd.Flags().StringVarP(&outputFormat, "format", "f", rxparse.FormatText,
		"Output format ("+strings.Join(rxparse.Formats, ", ")+")")
	parseCmd.Flags().StringVarP(&outPath, "output", "o", "", "Write output to this file")
}

func runParse(ctx context.Context, logger *zap.Logger, engine rxparse.Engine, paths []string, format string, out io.Writer) error {
	results, err := rxparse.ProcessFiles(ctx, logger, engine, paths, rxparse.ProcessFile)
	if err != nil {
		return fmt.Errorf("error processing files: %w", err)
	}

	if err := rxparse.FormatResults(out, results, format); err != nil {
		return fmt.Errorf("error writing results: %w", err)
	}

	if n := rxparse.CountFailures(results); n > 0 {
		return fmt.Errorf("%w: %d of %d", ErrFailures, n, len(results))
	}
	return nil
}
