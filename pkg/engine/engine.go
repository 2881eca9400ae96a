/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: engine.go
Description: Replay engine. Feeds inputs through the invocation boundary with a bounded pool of
workers, classifies every status, saves interesting inputs, and stops on crash limits, hangs
or cancellation. This is the engine loop the boundary reports to; it does not mutate inputs.
*/

package engine

import (
	"context"
	"errors"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/kleascm/akaylee-boundary/pkg/boundary"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// ErrHarnessHung aborts a run: a goroutine stuck in the harness cannot be killed in-process.
var ErrHarnessHung = errors.New("harness exceeded timeout")

// errCrashLimit stops the worker group once MaxCrashes is reached.
var errCrashLimit = errors.New("crash limit reached")

// Config controls a run
type Config struct {
	Workers    int           // Concurrent invocations (<= 0 means 1)
	Runs       int           // Times each input is replayed (<= 0 means 1)
	Timeout    time.Duration // Per-call watchdog, 0 disables it
	MaxCrashes int           // Stop after this many crashes, 0 = unlimited
	Artifacts  *ArtifactPrefix
}

// Engine drives a single harness. Runs on the same Engine must not overlap.
type Engine struct {
	name      string
	harness   boundary.Harness
	config    Config
	logger    logrus.FieldLogger
	reporters []Reporter

	runID   string
	started bool
	stats   Stats
	crashes int64 // crash slots claimed this run, bounded by MaxCrashes

	mu         sync.Mutex
	executions []Execution
}

// New creates an engine for the named harness
func New(name string, h boundary.Harness, config Config, logger logrus.FieldLogger) *Engine {
	if config.Workers <= 0 {
		config.Workers = 1
	}
	if config.Runs <= 0 {
		config.Runs = 1
	}
	if logger == nil {
		l := logrus.New()
		l.SetLevel(logrus.PanicLevel)
		logger = l
	}
	return &Engine{
		name:    name,
		harness: h,
		config:  config,
		logger:  logger,
		runID:   uuid.NewString(),
	}
}

// AddReporter registers a reporter
func (e *Engine) AddReporter(r Reporter) {
	e.reporters = append(e.reporters, r)
}

// RunID identifies this engine's run in reports and artifact metadata
func (e *Engine) RunID() string { return e.runID }

// Stats returns the live statistics
func (e *Engine) Stats() StatsSnapshot { return e.stats.Snapshot() }

// Run executes every input config.Runs times and returns the report.
// Crash limits and cancellation end the run early without an error; a hang returns
// ErrHarnessHung alongside the report. Each call to Run starts from fresh statistics
// and, after the first, a new run ID.
func (e *Engine) Run(ctx context.Context, inputs []Input) (*Report, error) {
	if len(inputs) == 0 {
		return nil, ErrNoInputs
	}

	e.reset()
	e.stats.StartTime = time.Now()
	log := e.logger.WithFields(logrus.Fields{"run_id": e.runID, "harness": e.name})
	log.WithFields(logrus.Fields{
		"inputs":      len(inputs),
		"runs":        e.config.Runs,
		"workers":     e.config.Workers,
		"mode":        boundary.ActiveMode,
		"timeout":     e.config.Timeout,
		"max_crashes": e.config.MaxCrashes,
	}).Info("Engine starting")

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.config.Workers)

schedule:
	for run := 0; run < e.config.Runs; run++ {
		for _, in := range inputs {
			select {
			case <-gctx.Done():
				break schedule
			default:
			}
			run, in := run, in
			g.Go(func() error {
				return e.execute(gctx, run, in)
			})
		}
	}
	err := g.Wait()

	report := e.report()
	switch {
	case errors.Is(err, ErrHarnessHung):
		report.StopReason = StopHung
	case errors.Is(err, errCrashLimit):
		report.StopReason = StopMaxCrashes
		err = nil
	case ctx.Err() != nil:
		report.StopReason = StopInterrupted
	default:
		report.StopReason = StopCompleted
	}

	for _, r := range e.reporters {
		r.OnRunFinished(report)
	}
	log.WithFields(logrus.Fields{
		"stop_reason": report.StopReason,
		"executions":  report.Stats.Executions,
		"crashes":     report.Stats.Crashes,
	}).Info("Engine finished")
	return report, err
}

func (e *Engine) reset() {
	if e.started {
		e.runID = uuid.NewString()
	}
	e.started = true
	e.stats = Stats{}
	atomic.StoreInt64(&e.crashes, 0)
	e.mu.Lock()
	e.executions = nil
	e.mu.Unlock()
}

// claimCrash reserves one of the MaxCrashes slots. ok is false once the limit is used up;
// last is true for the crash that uses the final slot.
func (e *Engine) claimCrash() (ok, last bool) {
	limit := int64(e.config.MaxCrashes)
	for {
		n := atomic.LoadInt64(&e.crashes)
		if limit > 0 && n >= limit {
			return false, true
		}
		if atomic.CompareAndSwapInt64(&e.crashes, n, n+1) {
			return true, limit > 0 && n+1 >= limit
		}
	}
}

// execute runs one input through the boundary and records the outcome.
// Results that arrive after the group has started stopping are dropped, so a run
// never records more crashes than MaxCrashes.
func (e *Engine) execute(ctx context.Context, run int, in Input) error {
	if ctx.Err() != nil {
		return nil
	}

	// the harness gets its own copy so a misbehaving target cannot corrupt the stored input
	buf := append([]byte(nil), in.Data...)

	start := time.Now()
	status, finished := e.invoke(buf)
	exec := Execution{
		InputID:   in.ID,
		InputName: in.Name,
		Run:       run,
		Status:    status,
		Duration:  time.Since(start),
	}
	if finished {
		exec.Kind = Classify(status)
	} else {
		exec.Kind = KindTimeout
	}

	if ctx.Err() != nil {
		return nil
	}
	lastCrash := false
	if exec.Kind == KindCrash {
		ok, last := e.claimCrash()
		if !ok {
			return errCrashLimit
		}
		lastCrash = last
	}

	if exec.Kind.KeepsArtifact() && e.config.Artifacts != nil {
		path, err := e.config.Artifacts.Write(in.Data, ArtifactMeta{
			Kind:       exec.Kind,
			Status:     status,
			Harness:    e.name,
			InputName:  in.Name,
			RunID:      e.runID,
			RecordedAt: time.Now().UTC(),
		})
		if err != nil {
			e.logger.WithError(err).WithField("input_id", in.ID).Error("Failed to save artifact")
		}
		exec.Artifact = path
	}

	e.stats.Record(exec.Kind)
	e.mu.Lock()
	e.executions = append(e.executions, exec)
	e.mu.Unlock()
	for _, r := range e.reporters {
		r.OnExecuted(exec)
	}

	switch {
	case exec.Kind == KindTimeout:
		return ErrHarnessHung
	case lastCrash:
		return errCrashLimit
	}
	return nil
}

// invoke calls the boundary, under the watchdog when a timeout is configured.
// finished is false when the call did not return in time; the goroutine is abandoned.
func (e *Engine) invoke(data []byte) (status int, finished bool) {
	if e.config.Timeout <= 0 {
		return boundary.Invoke(e.harness, data), true
	}

	done := make(chan int, 1)
	go func() {
		done <- boundary.Invoke(e.harness, data)
	}()

	timer := time.NewTimer(e.config.Timeout)
	defer timer.Stop()
	select {
	case status = <-done:
		return status, true
	case <-timer.C:
		return 0, false
	}
}

func (e *Engine) report() *Report {
	e.mu.Lock()
	executions := make([]Execution, len(e.executions))
	copy(executions, e.executions)
	e.mu.Unlock()

	sort.SliceStable(executions, func(i, j int) bool {
		if executions[i].Run != executions[j].Run {
			return executions[i].Run < executions[j].Run
		}
		return executions[i].InputName < executions[j].InputName
	})

	return &Report{
		RunID:      e.runID,
		Harness:    e.name,
		Mode:       boundary.ActiveMode,
		StartedAt:  e.stats.StartTime,
		FinishedAt: time.Now(),
		Stats:      e.stats.Snapshot(),
		Executions: executions,
	}
}
