// Package main is the entry point of the yql CLI.
package main

import (
	"os"

	"github.com/leapstack-labs/yql/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
