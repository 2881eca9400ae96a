/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: utilities.go
Description: Small informational commands: list-harnesses, mode and init-config.
*/

package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/kleascm/akaylee-boundary/pkg/boundary"
	"github.com/kleascm/akaylee-boundary/pkg/config"
	"github.com/kleascm/akaylee-boundary/pkg/harness"
	"github.com/spf13/cobra"
)

func newListHarnessesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list-harnesses",
		Short: "List registered harnesses",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, e := range harness.List() {
				fmt.Fprintf(tw, "%s\t%s\n", e.Name, e.Description)
			}
			tw.Flush()
		},
	}
}

func newModeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "mode",
		Short: "Print the compiled boundary mode",
		Long: `Print whether this binary was built with the exception-safe boundary (default)
or the pass-through boundary (-tags boundary_passthrough).`,
		Args: cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s (sentinel %d)\n", boundary.ActiveMode, boundary.Sentinel)
		},
	}
}

func newInitConfigCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "init-config PATH",
		Short: "Write a default TOML configuration file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.WriteDefault(args[0]); err != nil {
				return err
			}
			okColor.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", args[0])
			return nil
		},
	}
}
