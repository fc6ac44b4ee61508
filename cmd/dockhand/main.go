// Package main is the entry point for the dockhand CLI.
package main

import (
	"os"

	"github.com/quayside/dockhand/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
