// Command recon compiles reconciliation table configs into SQL.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/roach88/recon/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		// commands report their own ExitErrors
		var exitErr *cli.ExitError
		if !errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(cli.GetExitCode(err))
	}
}
