// Command hypergeom evaluates hypergeometric tail probabilities and
// outlier scores from the command line.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/ecanvass/hypergeom/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		// Commands format their own error output before returning an
		// ExitError; only surface errors that bypassed that path.
		var exitErr *cli.ExitError
		if !errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(cli.GetExitCode(err))
	}
}
