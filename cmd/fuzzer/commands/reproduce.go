/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: reproduce.go
Description: reproduce command. Re-runs a saved artifact and checks that the harness still
ends the same way it did when the artifact was recorded.
*/

package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/kleascm/akaylee-boundary/pkg/engine"
	"github.com/kleascm/akaylee-boundary/pkg/harness"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// ErrNotReproduced is returned when the replayed outcome differs from the recorded one
var ErrNotReproduced = errors.New("artifact did not reproduce")

func newReproduceCommand(v *viper.Viper) *cobra.Command {
	reproduceCmd := &cobra.Command{
		Use:   "reproduce [flags] ARTIFACT",
		Short: "Re-run a saved artifact",
		Long: `Re-run an artifact written by 'run' and compare the outcome with its recorded
metadata. The harness recorded in the metadata is used unless --harness is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, _ := cmd.Flags().GetString("harness")
			timeout, _ := cmd.Flags().GetDuration("timeout")
			return Reproduce(cmd.Context(), v, args[0], name, timeout, cmd.OutOrStdout())
		},
	}
	reproduceCmd.Flags().String("harness", "", "Harness to use (default: from artifact metadata)")
	reproduceCmd.Flags().Duration("timeout", 0, "Watchdog for the replay (0 disables)")
	return reproduceCmd
}

// Reproduce replays one artifact
func Reproduce(ctx context.Context, v *viper.Viper, path, harnessName string, timeout time.Duration, out io.Writer) error {
	cfg, err := LoadConfig(v)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logger, err := SetupLogging(cfg, os.Stderr)
	if err != nil {
		return err
	}
	defer logger.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read artifact: %w", err)
	}
	meta, metaErr := engine.ReadArtifactMeta(path)
	if metaErr != nil && !errors.Is(metaErr, os.ErrNotExist) {
		return metaErr
	}
	hasMeta := metaErr == nil

	if harnessName == "" {
		harnessName = meta.Harness
	}
	if harnessName == "" {
		harnessName = cfg.Run.Harness
	}
	entry, err := harness.Lookup(harnessName)
	if err != nil {
		return err
	}

	if ctx == nil {
		ctx = context.Background()
	}
	in := engine.NewInput(filepath.Base(path), data)
	in.Path = path
	e := engine.New(entry.Name, entry.Func, engine.Config{Timeout: timeout}, logger.GetLogger())
	report, runErr := e.Run(ctx, []engine.Input{in})
	if report == nil || len(report.Executions) == 0 {
		if runErr == nil {
			runErr = fmt.Errorf("artifact was not executed")
		}
		return runErr
	}
	got := report.Executions[0]

	fmt.Fprintln(out)
	printField(out, "artifact", path)
	printField(out, "harness", entry.Name)
	printField(out, "status", got.Status)
	printField(out, "observed", got.Kind)
	if !hasMeta {
		warnColor.Fprintln(out, "No metadata sidecar; nothing to compare against")
		return nil
	}
	printField(out, "recorded", meta.Kind)
	if got.Kind != meta.Kind {
		errorColor.Fprintln(out, "Not reproduced")
		return fmt.Errorf("%w: recorded %s, observed %s", ErrNotReproduced, meta.Kind, got.Kind)
	}
	okColor.Fprintln(out, "Reproduced")
	return nil
}
