package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/manaforge/synergraph/internal/cli"
)

func main() {
	err := cli.NewRootCommand().Execute()
	if err == nil {
		return
	}
	// Subcommands silence cobra's own error printing; surface theirs here.
	// Root-level errors (unknown command, bad flags) were already printed.
	var exitErr *cli.ExitError
	if errors.As(err, &exitErr) {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	os.Exit(cli.GetExitCode(err))
}
