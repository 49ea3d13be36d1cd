package main

import (
	"fmt"
	"os"

	"github.com/stacks-network/migration-sync/cmd/cli"
)

const (
	exitErrorTemplateConstant = "%v\n"
)

// main executes the migration-sync command-line application.
func main() {
	if executionError := cli.Execute(); executionError != nil {
		fmt.Fprintf(os.Stderr, exitErrorTemplateConstant, executionError)
		os.Exit(1)
	}
}
