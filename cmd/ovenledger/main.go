// Command ovenledger tracks cylinders through oven cycles.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/roach88/ovenledger/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		// Ledger errors were already reported by the command in the
		// requested format; anything else (bad flags, bad args) was not.
		var exitErr *cli.ExitError
		if !errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(cli.GetExitCode(err))
	}
}
