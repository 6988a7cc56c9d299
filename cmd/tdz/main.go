// Package main is the entry point for the tdz CLI tool.
package main

import (
	"os"

	"github.com/tdzio/tdz/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
