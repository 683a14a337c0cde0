package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/gnoswap-labs/rxparse/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		if !errors.Is(err, cmd.ErrFailures) {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		os.Exit(1)
	}
}
