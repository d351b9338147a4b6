// Command treesupport drives the tree-support generator from the command
// line: it loads a 3MF model and a TOML config, runs support.Generate, and
// writes the result as a msgpack checkpoint, per spec.md §6's collaborator
// contract with a real (if minimal) mesh slicer standing in for the slicer
// this module doesn't implement.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:           "treesupport",
		Short:         "Generate tree supports for a 3MF model",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newGenerateCmd())
	root.AddCommand(newValidateConfigCmd())
	root.AddCommand(newCheckpointCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "treesupport:", err)
		os.Exit(1)
	}
}
