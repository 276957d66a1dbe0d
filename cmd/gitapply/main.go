// Command gitapply is the CLI surface wrapping the batch apply entry
// point (batch.Repo.Apply): a single patch set, read from a structured JSON
// document (package patchsource), is applied against a working directory,
// a persisted index, or both.
package main

import (
	"fmt"
	"os"

	"github.com/kestrelpatch/gitapply/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
