/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: reporter.go
Description: Reporter hooks for execution events. The boundary never logs, so this is where a
sentinel status becomes a log line.
*/

package engine

import (
	"github.com/kleascm/akaylee-boundary/pkg/logging"
)

// Reporter is notified of engine events. Implementations must be safe for concurrent use.
type Reporter interface {
	// OnExecuted is called after every harness invocation.
	OnExecuted(exec Execution)
	// OnRunFinished is called once with the final report.
	OnRunFinished(report *Report)
}

// LoggerReporter logs execution events through the logging package
type LoggerReporter struct {
	logger *logging.Logger
}

// NewLoggerReporter creates a new LoggerReporter.
func NewLoggerReporter(logger *logging.Logger) *LoggerReporter {
	return &LoggerReporter{logger: logger}
}

// OnExecuted logs crashes and hangs loudly, findings as warnings, everything else at debug.
func (r *LoggerReporter) OnExecuted(exec Execution) {
	switch exec.Kind {
	case KindCrash:
		r.logger.LogCrash(exec.InputID, exec.Artifact)
	case KindTimeout:
		r.logger.LogTimeout(exec.InputID, exec.Duration)
	case KindFinding:
		r.logger.GetLogger().WithField("input_id", exec.InputID).
			WithField("status", exec.Status).
			WithField("artifact", exec.Artifact).
			Warn("Finding reported by harness")
	default:
		r.logger.LogExecution(exec.InputID, exec.Duration, exec.Status, string(exec.Kind))
	}
}

// OnRunFinished logs the final statistics
func (r *LoggerReporter) OnRunFinished(report *Report) {
	s := report.Stats
	r.logger.LogStats(s.Executions, s.Crashes, s.Findings, s.ExecutionsPerSecond)
}
