// Package main provides the entry point for the prefpane CLI.
package main

import (
	"fmt"
	"os"

	"github.com/prefpane/prefpane/cmd/prefpane/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
