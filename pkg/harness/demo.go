/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: demo.go
Description: Built-in demo harnesses. FuzzMe has several code paths, a finding and a crash on a
magic input, which makes it useful for exercising the engine end to end.
*/

package harness

import "bytes"

// Status values used by the demo harnesses
const (
	StatusOK      = 0
	StatusFinding = 1
	StatusReject  = -1
)

// MagicCrash makes FuzzMe panic
var MagicCrash = []byte("CRSH")

// FuzzMe is the demo target.
//   - empty input: 0
//   - shorter than 4 bytes: -1 (reject)
//   - "CRSH": panics
//   - prefix "ABC": 1 (finding)
func FuzzMe(data []byte) int {
	if len(data) == 0 {
		return StatusOK
	}
	if len(data) < 4 {
		return StatusReject
	}
	if bytes.Equal(data, MagicCrash) {
		panic("demo crash: magic input detected!")
	}
	if data[0] == 'A' && data[1] == 'B' && data[2] == 'C' {
		return StatusFinding
	}
	if data[0] == 0xFF && data[1] == 0x00 {
		// index past the end on purpose: a runtime error, not an explicit panic
		return int(data[len(data)])
	}
	return StatusOK
}

// AlwaysPanic panics on every input
func AlwaysPanic(data []byte) int {
	panic("always-panic harness")
}

// EchoLen returns the input length
func EchoLen(data []byte) int {
	return len(data)
}

func init() {
	MustRegister("demo", "multi-path demo target: finding on ABC prefix, panic on CRSH, runtime error on FF00 prefix", FuzzMe)
	MustRegister("always-panic", "panics on any input", AlwaysPanic)
	MustRegister("echo-len", "returns the input length", EchoLen)
}
