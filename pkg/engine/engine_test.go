//go:build !boundary_passthrough

/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: engine_test.go
Description: Engine tests: classification, artifacts, crash limits, watchdog, cancellation,
concurrency and reporting.
*/

package engine_test

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kleascm/akaylee-boundary/pkg/boundary"
	"github.com/kleascm/akaylee-boundary/pkg/engine"
	"github.com/kleascm/akaylee-boundary/pkg/harness"
	"github.com/kleascm/akaylee-boundary/pkg/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func inputs(data ...string) []engine.Input {
	out := make([]engine.Input, 0, len(data))
	for i, d := range data {
		out = append(out, engine.NewInput(string(rune('a'+i)), []byte(d)))
	}
	return out
}

func TestClassify(t *testing.T) {
	assert.Equal(t, engine.KindOK, engine.Classify(0))
	assert.Equal(t, engine.KindRejected, engine.Classify(-1))
	assert.Equal(t, engine.KindCrash, engine.Classify(boundary.Sentinel))
	assert.Equal(t, engine.KindFinding, engine.Classify(1))
	assert.Equal(t, engine.KindFinding, engine.Classify(-3))
	assert.Equal(t, engine.KindFinding, engine.Classify(1000))

	assert.True(t, engine.KindCrash.KeepsArtifact())
	assert.True(t, engine.KindTimeout.KeepsArtifact())
	assert.True(t, engine.KindFinding.KeepsArtifact())
	assert.False(t, engine.KindOK.KeepsArtifact())
	assert.False(t, engine.KindRejected.KeepsArtifact())
}

func TestRunDemoHarness(t *testing.T) {
	prefix := engine.ParseArtifactPrefix(t.TempDir() + "/")
	e := engine.New("demo", harness.FuzzMe, engine.Config{Artifacts: &prefix}, nil)

	report, err := e.Run(context.Background(), inputs("hello", "ABCD", "CRSH", "ab", ""))
	require.NoError(t, err)

	assert.Equal(t, engine.StopCompleted, report.StopReason)
	assert.Equal(t, boundary.ActiveMode, report.Mode)
	assert.Equal(t, e.RunID(), report.RunID)
	assert.Equal(t, int64(5), report.Stats.Executions)
	assert.Equal(t, int64(2), report.Stats.OK)
	assert.Equal(t, int64(1), report.Stats.Findings)
	assert.Equal(t, int64(1), report.Stats.Crashes)
	assert.Equal(t, int64(1), report.Stats.Rejected)
	assert.True(t, report.Failed())

	kinds := map[string]engine.ExitKind{}
	for _, ex := range report.Executions {
		kinds[ex.InputName] = ex.Kind
	}
	assert.Equal(t, map[string]engine.ExitKind{
		"a": engine.KindOK,
		"b": engine.KindFinding,
		"c": engine.KindCrash,
		"d": engine.KindRejected,
		"e": engine.KindOK,
	}, kinds)

	crashPath := prefix.Path(engine.KindCrash, []byte("CRSH"))
	data, err := os.ReadFile(crashPath)
	require.NoError(t, err)
	assert.Equal(t, []byte("CRSH"), data)

	meta, err := engine.ReadArtifactMeta(crashPath)
	require.NoError(t, err)
	assert.Equal(t, engine.KindCrash, meta.Kind)
	assert.Equal(t, boundary.Sentinel, meta.Status)
	assert.Equal(t, "demo", meta.Harness)
	assert.Equal(t, "c", meta.InputName)
	assert.Equal(t, e.RunID(), meta.RunID)
	assert.Equal(t, 4, meta.Size)

	_, err = os.Stat(prefix.Path(engine.KindFinding, []byte("ABCD")))
	assert.NoError(t, err)
	_, err = os.Stat(prefix.Path(engine.KindOK, []byte("hello")))
	assert.True(t, os.IsNotExist(err))
}

func TestRunRequiresInputs(t *testing.T) {
	e := engine.New("demo", harness.FuzzMe, engine.Config{}, nil)
	_, err := e.Run(context.Background(), nil)
	assert.ErrorIs(t, err, engine.ErrNoInputs)
}

func TestRunStopsAtMaxCrashes(t *testing.T) {
	for _, workers := range []int{1, 8} {
		t.Run(fmt.Sprintf("workers=%d", workers), func(t *testing.T) {
			var calls int64
			h := func([]byte) int {
				atomic.AddInt64(&calls, 1)
				panic("crash")
			}
			prefix := engine.ParseArtifactPrefix(t.TempDir() + "/")
			e := engine.New("panicky", h, engine.Config{MaxCrashes: 2, Workers: workers, Artifacts: &prefix}, nil)

			report, err := e.Run(context.Background(), inputs("0", "1", "2", "3", "4", "5", "6", "7", "8", "9"))
			require.NoError(t, err)
			assert.Equal(t, engine.StopMaxCrashes, report.StopReason)
			assert.Equal(t, int64(2), report.Stats.Crashes)
			assert.Equal(t, int64(2), report.Stats.Executions)
			assert.Len(t, report.Executions, 2)
			if workers == 1 {
				assert.Equal(t, int64(2), atomic.LoadInt64(&calls))
			}

			files, err := filepath.Glob(filepath.Join(prefix.Dir, "crash-*"+engine.MetaSuffix))
			require.NoError(t, err)
			assert.Len(t, files, 2)
		})
	}
}

func TestRunTwiceStartsFresh(t *testing.T) {
	e := engine.New("echo", harness.EchoLen, engine.Config{Workers: 2}, nil)

	first, err := e.Run(context.Background(), inputs("a", "bb"))
	require.NoError(t, err)
	second, err := e.Run(context.Background(), inputs("ccc"))
	require.NoError(t, err)

	assert.Equal(t, int64(2), first.Stats.Executions)
	assert.Equal(t, int64(1), second.Stats.Executions)
	assert.Len(t, second.Executions, 1)
	assert.Equal(t, 3, second.Executions[0].Status)
	assert.NotEqual(t, first.RunID, second.RunID)
	assert.Equal(t, second.RunID, e.RunID())
}

func TestRunWatchdogAbortsOnHang(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	h := func(data []byte) int {
		if string(data) == "hang" {
			<-release
		}
		return 0
	}
	prefix := engine.ParseArtifactPrefix(filepath.Join(t.TempDir(), "hang-"))
	e := engine.New("hanger", h, engine.Config{Timeout: 20 * time.Millisecond, Artifacts: &prefix}, nil)

	report, err := e.Run(context.Background(), inputs("fine", "hang", "never"))
	assert.ErrorIs(t, err, engine.ErrHarnessHung)
	require.NotNil(t, report)
	assert.Equal(t, engine.StopHung, report.StopReason)
	assert.Equal(t, int64(1), report.Stats.Timeouts)
	assert.Equal(t, int64(1), report.Stats.OK)
	assert.True(t, report.Failed())

	path := prefix.Path(engine.KindTimeout, []byte("hang"))
	assert.True(t, strings.HasPrefix(filepath.Base(path), "hang-timeout-"), path)
	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestRunWithTimeoutStillClassifies(t *testing.T) {
	e := engine.New("demo", harness.FuzzMe, engine.Config{Timeout: time.Second}, nil)
	report, err := e.Run(context.Background(), inputs("CRSH", "ABCD"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), report.Stats.Crashes)
	assert.Equal(t, int64(1), report.Stats.Findings)
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	e := engine.New("echo", harness.EchoLen, engine.Config{}, nil)
	report, err := e.Run(ctx, inputs("a", "b"))
	require.NoError(t, err)
	assert.Equal(t, engine.StopInterrupted, report.StopReason)
	assert.Equal(t, int64(0), report.Stats.Executions)
}

func TestRunConcurrentRepeats(t *testing.T) {
	h := func(data []byte) int {
		if data[0] == 'x' {
			panic("x")
		}
		return int(data[0])
	}
	e := engine.New("byte", h, engine.Config{Workers: 8, Runs: 25}, nil)

	report, err := e.Run(context.Background(), inputs("x", "\x00", "\x05", "\xff"))
	require.NoError(t, err)
	assert.Equal(t, int64(100), report.Stats.Executions)
	assert.Equal(t, int64(25), report.Stats.Crashes)
	assert.Equal(t, int64(25), report.Stats.OK)
	assert.Equal(t, int64(50), report.Stats.Findings)
	require.Len(t, report.Executions, 100)

	for _, ex := range report.Executions {
		switch ex.InputName {
		case "a":
			assert.Equal(t, boundary.Sentinel, ex.Status)
		case "b":
			assert.Equal(t, 0, ex.Status)
		case "c":
			assert.Equal(t, 5, ex.Status)
		case "d":
			assert.Equal(t, 255, ex.Status)
		}
	}
	for i := 1; i < len(report.Executions); i++ {
		assert.LessOrEqual(t, report.Executions[i-1].Run, report.Executions[i].Run)
	}
}

func TestHarnessCannotCorruptInput(t *testing.T) {
	h := func(data []byte) int {
		for i := range data {
			data[i] = 0
		}
		return 0
	}
	in := inputs("keep me")
	e := engine.New("scribbler", h, engine.Config{Runs: 3}, nil)
	_, err := e.Run(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, []byte("keep me"), in[0].Data)
}

type recordingReporter struct {
	mu       sync.Mutex
	kinds    []engine.ExitKind
	finished *engine.Report
}

func (r *recordingReporter) OnExecuted(exec engine.Execution) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.kinds = append(r.kinds, exec.Kind)
}

func (r *recordingReporter) OnRunFinished(report *engine.Report) {
	r.finished = report
}

func TestReportersAreNotified(t *testing.T) {
	var buf bytes.Buffer
	cfg := logging.DefaultLoggerConfig()
	cfg.Colors = false
	cfg.Timestamp = false
	logger, err := logging.NewLogger(cfg, &buf)
	require.NoError(t, err)
	defer logger.Close()

	rec := &recordingReporter{}
	e := engine.New("demo", harness.FuzzMe, engine.Config{}, logger.GetLogger())
	e.AddReporter(rec)
	e.AddReporter(engine.NewLoggerReporter(logger))

	report, err := e.Run(context.Background(), inputs("CRSH", "ABCD", "zzzz"))
	require.NoError(t, err)

	assert.ElementsMatch(t, []engine.ExitKind{engine.KindCrash, engine.KindFinding, engine.KindOK}, rec.kinds)
	assert.Same(t, report, rec.finished)

	out := buf.String()
	assert.Contains(t, out, "Engine starting")
	assert.Contains(t, out, "Crash detected")
	assert.Contains(t, out, "Finding reported by harness")
	assert.Contains(t, out, "Statistics update")
	assert.Contains(t, out, "Engine finished")
}

func TestReportWrite(t *testing.T) {
	e := engine.New("echo", harness.EchoLen, engine.Config{}, nil)
	report, err := e.Run(context.Background(), inputs("abc"))
	require.NoError(t, err)
	assert.False(t, report.Failed())

	path, err := report.Write(filepath.Join(t.TempDir(), "reports"))
	require.NoError(t, err)
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"run_id": "`+report.RunID+`"`)
	assert.Contains(t, string(raw), `"boundary_mode": "safe"`)
	assert.Contains(t, string(raw), `"kind": "finding"`)
}
