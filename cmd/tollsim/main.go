// Command tollsim runs and verifies toll plaza traffic simulations.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/tollsim/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
