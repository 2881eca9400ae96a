/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: boundary.go
Description: Harness invocation boundary. Calls a user harness with one input and turns an
escaping panic into a fixed sentinel status so the engine loop can record a crash and keep going.
*/

// Package boundary is the failure-isolation point between an engine loop and the harness
// it calls. It holds no state and never logs; interpreting the status is the caller's job.
package boundary

// Harness is a fuzz target. It receives a read-only view of the input and returns a
// harness-defined status, conventionally 0 for "no finding". It must not retain data.
type Harness func(data []byte) int

// Sentinel is returned by Invoke when the harness did not return normally.
// It must stay outside the range a harness is allowed to return.
const Sentinel = -2

// Mode names the interception strategy compiled into this build.
type Mode string

const (
	// ModeSafe intercepts every panic escaping the harness.
	ModeSafe Mode = "safe"
	// ModePassThrough calls the harness with no interception (build tag boundary_passthrough).
	ModePassThrough Mode = "passthrough"
)

// String implements fmt.Stringer
func (m Mode) String() string { return string(m) }
