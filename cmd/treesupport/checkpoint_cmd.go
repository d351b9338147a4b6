package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/chazu/lignin/treesupport/pkg/checkpoint"
)

func newCheckpointCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "checkpoint",
		Short: "Inspect a saved support-generation checkpoint",
	}
	cmd.AddCommand(newCheckpointInspectCmd())
	return cmd
}

func newCheckpointInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <checkpoint-file>",
		Short: "Print a summary of a msgpack checkpoint",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open checkpoint: %w", err)
			}
			defer f.Close()

			result, err := checkpoint.Load(f)
			if err != nil {
				return fmt.Errorf("load checkpoint: %w", err)
			}

			fmt.Printf("generated: %v\n", result.Generated)
			fmt.Printf("layers: %d\n", len(result.Layers))
			fmt.Printf("max filled layer: %d\n", result.MaxFilledLayer)

			var infill, roof, floor int
			for _, l := range result.Layers {
				infill += len(l.InfillParts)
				if !l.SupportRoof.Empty() {
					roof++
				}
				if !l.SupportBottom.Empty() {
					floor++
				}
			}
			fmt.Printf("infill parts: %d\n", infill)
			fmt.Printf("layers with roof: %d\n", roof)
			fmt.Printf("layers with floor: %d\n", floor)
			return nil
		},
	}
}
