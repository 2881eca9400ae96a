/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: run.go
Description: run command. Replays inputs through a registered harness and exits non-zero when
a crash or hang was recorded.
*/

package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/kleascm/akaylee-boundary/pkg/config"
	"github.com/kleascm/akaylee-boundary/pkg/engine"
	"github.com/kleascm/akaylee-boundary/pkg/harness"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// ErrRunFailed is returned when the run recorded crashes or hangs
var ErrRunFailed = errors.New("run recorded crashes or hangs")

func newRunCommand(v *viper.Viper) *cobra.Command {
	runCmd := &cobra.Command{
		Use:   "run [flags] PATH...",
		Short: "Replay inputs through a harness",
		Long: `Replay every file in the given paths through the selected harness. Crashes,
hangs and harness-reported findings are saved under the artifact prefix.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return RunReplay(cmd.Context(), v, args, cmd.OutOrStdout())
		},
	}

	runCmd.Flags().String("harness", "demo", "Registered harness to run")
	runCmd.Flags().Int("workers", 1, "Number of concurrent invocations")
	runCmd.Flags().Int("runs", 1, "Times each input is replayed")
	runCmd.Flags().Duration("timeout", 0, "Per-input watchdog (0 disables)")
	runCmd.Flags().Int("max-crashes", 0, "Stop after this many crashes (0 = unlimited)")
	runCmd.Flags().String("artifact-prefix", "./", "Where to save artifacts (dir/ or dir/file-prefix)")
	runCmd.Flags().String("report-dir", "", "Directory for the JSON run report (empty = none)")

	v.BindPFlag("run.harness", runCmd.Flags().Lookup("harness"))
	v.BindPFlag("run.workers", runCmd.Flags().Lookup("workers"))
	v.BindPFlag("run.runs", runCmd.Flags().Lookup("runs"))
	v.BindPFlag("run.timeout", runCmd.Flags().Lookup("timeout"))
	v.BindPFlag("run.max_crashes", runCmd.Flags().Lookup("max-crashes"))
	v.BindPFlag("run.artifact_prefix", runCmd.Flags().Lookup("artifact-prefix"))
	v.BindPFlag("run.report_dir", runCmd.Flags().Lookup("report-dir"))

	return runCmd
}

// RunReplay loads inputs from paths and runs them through the configured harness
func RunReplay(ctx context.Context, v *viper.Viper, paths []string, out io.Writer) error {
	cfg, err := LoadConfig(v)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logger, err := SetupLogging(cfg, os.Stderr)
	if err != nil {
		return err
	}
	defer logger.Close()

	entry, err := harness.Lookup(cfg.Run.Harness)
	if err != nil {
		return err
	}
	inputs, err := engine.LoadInputs(paths...)
	if err != nil {
		return err
	}

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	e := engine.New(entry.Name, entry.Func, engineConfig(cfg.Run), logger.GetLogger())
	e.AddReporter(engine.NewLoggerReporter(logger))

	report, runErr := e.Run(ctx, inputs)
	if report == nil {
		return runErr
	}

	printSummary(out, report)
	if cfg.Run.ReportDir != "" {
		path, err := report.Write(cfg.Run.ReportDir)
		if err != nil {
			return err
		}
		printField(out, "report", path)
	}

	if runErr != nil {
		return runErr
	}
	if report.Failed() {
		return ErrRunFailed
	}
	return nil
}

func engineConfig(rc config.RunConfig) engine.Config {
	prefix := engine.ParseArtifactPrefix(rc.ArtifactPrefix)
	return engine.Config{
		Workers:    rc.Workers,
		Runs:       rc.Runs,
		Timeout:    rc.Timeout,
		MaxCrashes: rc.MaxCrashes,
		Artifacts:  &prefix,
	}
}

func printSummary(w io.Writer, report *engine.Report) {
	s := report.Stats
	fmt.Fprintln(w)
	switch {
	case report.Failed():
		errorColor.Fprintln(w, "Run finished with failures")
	case s.Findings > 0:
		warnColor.Fprintln(w, "Run finished with findings")
	default:
		okColor.Fprintln(w, "Run finished cleanly")
	}
	printField(w, "harness", report.Harness)
	printField(w, "mode", report.Mode)
	printField(w, "run id", report.RunID)
	printField(w, "stopped", report.StopReason)
	printField(w, "executions", s.Executions)
	printField(w, "ok", s.OK)
	printField(w, "rejected", s.Rejected)
	printField(w, "findings", s.Findings)
	printField(w, "crashes", s.Crashes)
	printField(w, "timeouts", s.Timeouts)
	printField(w, "exec/sec", fmt.Sprintf("%.1f", s.ExecutionsPerSecond))
	for _, ex := range report.Executions {
		if ex.Artifact != "" {
			printField(w, string(ex.Kind), ex.Artifact)
		}
	}
}
