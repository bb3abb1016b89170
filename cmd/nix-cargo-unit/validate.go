package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/andrewgazelka/nix-cargo-unit/internal/unitgraph"
)

func newValidateCommand() *cobra.Command {
	var inputPath string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Parse a unit graph and report every structural inconsistency found",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(inputPath)
			if err != nil {
				return err
			}

			if _, err := unitgraph.Parse(data); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "unit graph is valid")
			return nil
		},
	}

	cmd.Flags().StringVar(&inputPath, "input", "", "read unit-graph JSON from this file instead of stdin")

	return cmd
}
