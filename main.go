// Copyright (c) 2026 ToeiRei
// Boardlock - classroom display board lock manager
// This source code is licensed under the MIT license found in the LICENSE file.

// Command-line entrypoint for Boardlock.
//
// Usage:
//
//	go run . [flags]
//	./boardlock [flags]
//
// Without a subcommand the interactive dashboard starts. See --help.
package main

import (
	"os"

	"github.com/toeirei/boardlock/internal/logging"
	"github.com/toeirei/boardlock/ui/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		logging.Errorf("boardlock: %v", err)
		os.Exit(1)
	}
}
