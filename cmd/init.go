package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/gnoswap-labs/rxparse/internal/grammar"
)

var forceInit bool

// initCmd: rxparse init
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a sample grammar file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := viper.GetString("grammar")
		if path == "" {
			path = grammar.DefaultFile
		}
		if err := initGrammarFile(path, forceInit); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Grammar file created: %s\n", path)
		return nil
	},
}

func init() {
	initCmd.Flags().BoolVar(&forceInit, "force", false, "Overwrite an existing grammar file")
}

func initGrammarFile(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists, use --force to overwrite", path)
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}

	// the sample must stay loadable
	if _, err := grammar.Parse([]byte(grammar.Sample)); err != nil {
		return fmt.Errorf("error validating sample grammar: %w", err)
	}

	return os.WriteFile(path, []byte(grammar.Sample), 0o644)
}
