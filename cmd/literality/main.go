// Command literality judges whether string-building expressions produce
// values known at analysis time.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/literality/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
