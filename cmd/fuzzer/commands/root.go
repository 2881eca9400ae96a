/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: root.go
Description: Command tree for the boundary tools. Flags are bound into a viper instance so
config files, AKAYLEE_* environment variables and flags resolve the same keys.
*/

package commands

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// NewRootCommand builds the command tree around v
func NewRootCommand(v *viper.Viper) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "akaylee-boundary",
		Short: "Akaylee Boundary - crash-isolating harness runner",
		Long: `Akaylee Boundary replays inputs through an in-process harness behind an
invocation boundary. A harness that panics is reported as a crash (status -2)
instead of taking the engine down with it.`,
		Version:       "1.0.0",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().String("config", "", "Configuration file path")
	rootCmd.PersistentFlags().String("log-level", "info", "Logging level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "custom", "Log format (text, json, custom)")
	rootCmd.PersistentFlags().String("log-dir", "", "Log output directory (empty = console only)")
	rootCmd.PersistentFlags().Bool("no-color", false, "Disable coloured output")

	v.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	v.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	v.BindPFlag("log.format", rootCmd.PersistentFlags().Lookup("log-format"))
	v.BindPFlag("log.output_dir", rootCmd.PersistentFlags().Lookup("log-dir"))
	v.BindPFlag("no_color", rootCmd.PersistentFlags().Lookup("no-color"))

	rootCmd.AddCommand(
		newRunCommand(v),
		newReproduceCommand(v),
		newListHarnessesCommand(),
		newModeCommand(),
		newInitConfigCommand(),
	)
	return rootCmd
}
