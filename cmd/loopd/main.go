// Package main is the entry point for loopd.
// Its sole responsibility is handing control to the cli package.
// No business logic belongs here.
package main

import (
	"fmt"
	"os"

	"github.com/loopspot/loopspot/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
