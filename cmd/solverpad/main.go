// Package main provides the solverpad binary entry point: a host CLI around
// the acquisition, session, dispatch and activity subsystems.
package main

import (
	"fmt"
	"os"

	// Register AI providers via init()
	_ "github.com/solverpad/solverpad/llm/providers"

	"github.com/solverpad/solverpad/commands"
)

const version = "0.1.0"

func main() {
	if err := commands.NewRootCmd(version).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
