// Package main provides the entry point for the runhost CLI.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/opencode-ai/runhost/cmd/runhost/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		var exitErr *commands.ExitError
		if errors.As(err, &exitErr) {
			if exitErr.Message != "" {
				fmt.Fprintln(os.Stderr, exitErr.Message)
			}
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
