/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: report.go
Description: Run report: identity, boundary mode, statistics and every execution, written as
timestamped JSON.
*/

package engine

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kleascm/akaylee-boundary/pkg/boundary"
)

// Stop reasons
const (
	StopCompleted   = "completed"
	StopMaxCrashes  = "max_crashes"
	StopHung        = "harness_hung"
	StopInterrupted = "interrupted"
)

// Report summarises one engine run
type Report struct {
	RunID      string        `json:"run_id"`
	Harness    string        `json:"harness"`
	Mode       boundary.Mode `json:"boundary_mode"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
	StopReason string        `json:"stop_reason"`
	Stats      StatsSnapshot `json:"stats"`
	Executions []Execution   `json:"executions"`
}

// Failed reports whether the run recorded a crash or a hang
func (r *Report) Failed() bool {
	return r.Stats.Crashes > 0 || r.Stats.Timeouts > 0
}

// Write stores the report as JSON in dir and returns the file path
func (r *Report) Write(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}
	id := r.RunID
	if len(id) > 8 {
		id = id[:8]
	}
	path := filepath.Join(dir, fmt.Sprintf("boundary_report_%s_%s.json", r.StartedAt.Format("2006-01-02_15-04-05"), id))

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create report file: %w", err)
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		f.Close()
		return "", fmt.Errorf("failed to write report: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to close report: %w", err)
	}
	return path, nil
}
