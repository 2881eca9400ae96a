/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: types.go
Description: Core types for the replay engine: inputs, exit kinds, execution records and
run statistics. Statistics use atomic counters so workers can update them without locking.
*/

package engine

import (
	"sync/atomic"
	"time"

	"github.com/kleascm/akaylee-boundary/pkg/boundary"
)

// RejectStatus is the harness convention for "valid run, do not keep this input".
const RejectStatus = -1

// Input is one buffer to hand to the harness
type Input struct {
	ID   string `json:"id"`   // Unique identifier
	Name string `json:"name"` // Display name, usually the file name
	Path string `json:"path"` // Source file, empty for in-memory inputs
	Data []byte `json:"-"`    // The bytes passed to the harness
}

// ExitKind is the engine's interpretation of one invocation
type ExitKind string

const (
	KindOK       ExitKind = "ok"
	KindRejected ExitKind = "rejected"
	KindFinding  ExitKind = "finding"
	KindCrash    ExitKind = "crash"
	KindTimeout  ExitKind = "timeout"
)

// Classify maps a boundary status to an ExitKind.
// Any status other than 0, -1 and the sentinel is a harness-reported finding.
func Classify(status int) ExitKind {
	switch status {
	case 0:
		return KindOK
	case RejectStatus:
		return KindRejected
	case boundary.Sentinel:
		return KindCrash
	default:
		return KindFinding
	}
}

// KeepsArtifact reports whether inputs of this kind are saved to disk
func (k ExitKind) KeepsArtifact() bool {
	return k == KindCrash || k == KindTimeout || k == KindFinding
}

// Execution records one harness invocation
type Execution struct {
	InputID   string        `json:"input_id"`
	InputName string        `json:"input_name"`
	Run       int           `json:"run"`                // Replay round, starting at 0
	Status    int           `json:"status"`             // Raw boundary status (meaningless for timeouts)
	Kind      ExitKind      `json:"kind"`               // Interpretation of Status
	Duration  time.Duration `json:"duration"`           // Wall time of the call
	Artifact  string        `json:"artifact,omitempty"` // Saved input, if any
}

// Stats tracks run statistics.
// Uses atomic operations for thread-safe updates
type Stats struct {
	Executions int64
	OK         int64
	Rejected   int64
	Findings   int64
	Crashes    int64
	Timeouts   int64
	StartTime  time.Time
}

// StatsSnapshot is a consistent-enough copy of Stats for reporting
type StatsSnapshot struct {
	Executions          int64   `json:"executions"`
	OK                  int64   `json:"ok"`
	Rejected            int64   `json:"rejected"`
	Findings            int64   `json:"findings"`
	Crashes             int64   `json:"crashes"`
	Timeouts            int64   `json:"timeouts"`
	ExecutionsPerSecond float64 `json:"executions_per_second"`
}

// Record atomically counts one execution of the given kind and returns the new count for that kind.
func (s *Stats) Record(kind ExitKind) int64 {
	atomic.AddInt64(&s.Executions, 1)
	switch kind {
	case KindOK:
		return atomic.AddInt64(&s.OK, 1)
	case KindRejected:
		return atomic.AddInt64(&s.Rejected, 1)
	case KindFinding:
		return atomic.AddInt64(&s.Findings, 1)
	case KindCrash:
		return atomic.AddInt64(&s.Crashes, 1)
	case KindTimeout:
		return atomic.AddInt64(&s.Timeouts, 1)
	}
	return 0
}

// Snapshot loads all counters
func (s *Stats) Snapshot() StatsSnapshot {
	snap := StatsSnapshot{
		Executions: atomic.LoadInt64(&s.Executions),
		OK:         atomic.LoadInt64(&s.OK),
		Rejected:   atomic.LoadInt64(&s.Rejected),
		Findings:   atomic.LoadInt64(&s.Findings),
		Crashes:    atomic.LoadInt64(&s.Crashes),
		Timeouts:   atomic.LoadInt64(&s.Timeouts),
	}
	if elapsed := time.Since(s.StartTime).Seconds(); !s.StartTime.IsZero() && elapsed > 0 {
		snap.ExecutionsPerSecond = float64(snap.Executions) / elapsed
	}
	return snap
}
