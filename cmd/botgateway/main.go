// Command botgateway starts the remote-bot gRPC gateway server standalone,
// without the rest of the matchrunner CLI surface.
package main

import (
	"fmt"
	"os"

	"github.com/iasoon/planetwars-matchrunner/internal/adapters/cli"
)

func main() {
	root := cli.NewRootCommand()
	root.SetArgs(append([]string{"gateway"}, os.Args[1:]...))
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
