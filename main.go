// Package main is the entry point for choreo.
package main

import (
	"fmt"
	"os"

	"github.com/cladam/choreo/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
	os.Exit(cmd.RunExitCode)
}
