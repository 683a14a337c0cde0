package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/gnoswap-labs/rxparse"
	"github.com/gnoswap-labs/rxparse/internal"
	"github.com/gnoswap-labs/rxparse/internal/grammar"
)

const defaultTimeout = 5 * time.Minute

var logger *zap.Logger

// ErrFailures is returned when at least one input did not parse. The
// failures themselves are already in the output.
var ErrFailures = errors.New("some inputs did not parse")

var rootCmd = &cobra.Command{
	Use:   "rxparse [paths...]",
	Short: "rxparse - parse text with grammars compiled to one regular expression",
	Long: `rxparse compiles a YAML grammar into a single regular expression,
matches it against input files and turns the captures into a parse tree
and typed productions.`,
	TraverseChildren: true, // Prioritize subcommands
	SilenceUsage:     true,
	SilenceErrors:    true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initLogger()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		// no subcommand
		if len(args) == 0 {
			return cmd.Help()
		}
		// Format: rxparse [path1 path2 ...] => behaves like the parse subcommand
		return parseCmd.RunE(cmd, args)
	},
}

func Execute() error {
	defer func() {
		if logger != nil {
			_ = logger.Sync()
		}
	}()
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringP("grammar", "g", "", "Grammar file (default "+grammar.DefaultFile+" when present, else the built-in grammar)")
	flags.Duration("timeout", defaultTimeout, "Abort processing after this duration, which also bounds the match of a single input")
	flags.BoolP("verbose", "v", false, "Enable debug logging")
	flags.String("cache-dir", "", "Cache parse results in this directory")
	flags.Duration("cache-max-age", 0, "Reparse cached results older than this (0 keeps them until inputs change)")

	// Bind flags to Viper
	_ = viper.BindPFlags(flags)

	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(treeCmd)
	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(watchCmd)
}

// initConfig binds RXPARSE_* environment variables, e.g. RXPARSE_CACHE_DIR.
func initConfig() {
	viper.SetEnvPrefix("RXPARSE")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func initLogger() error {
	var err error
	if viper.GetBool("verbose") {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return fmt.Errorf("error initializing logger: %w", err)
	}
	return nil
}

// grammarPath returns the configured grammar file. Without one, the default
// file in the working directory is used when it exists, else the built-in
// grammar (empty path).
func grammarPath() string {
	if path := viper.GetString("grammar"); path != "" {
		return path
	}
	if _, err := os.Stat(grammar.DefaultFile); err == nil {
		return grammar.DefaultFile
	}
	return ""
}

func newEngine() (*internal.Engine, error) {
	engine, err := rxparse.New(grammarPath(), logger)
	if err != nil {
		return nil, err
	}
	if err := engine.SetMatchTimeout(viper.GetDuration("timeout")); err != nil {
		return nil, err
	}
	if dir := viper.GetString("cache-dir"); dir != "" {
		if err := engine.EnableCache(dir, viper.GetDuration("cache-max-age")); err != nil {
			return nil, err
		}
	}
	return engine, nil
}
