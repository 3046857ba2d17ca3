// Command matchrunner runs a single Planet Wars match from the command
// line: a map file plus one local-subprocess bot per slot, to completion.
package main

import (
	"fmt"
	"os"

	"github.com/iasoon/planetwars-matchrunner/internal/adapters/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
