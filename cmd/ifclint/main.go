// Package main provides the ifclint command.
package main

import (
	"os"

	"github.com/leapstack-labs/ifclint/internal/cli"
)

// Set by the release build with -ldflags "-X main.version=...".
var (
	version = ""
	commit  = ""
	date    = ""
)

func main() {
	if version != "" {
		cli.Version = version
	}
	if commit != "" {
		cli.GitCommit = commit
	}
	if date != "" {
		cli.BuildDate = date
	}
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
