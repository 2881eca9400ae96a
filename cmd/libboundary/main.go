//go:build cgo

/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: main.go
Description: C ABI export of the invocation boundary. Build with -buildmode=c-shared or
c-archive and call akaylee_test_one_input from the engine loop.
*/

package main

/*
#include <stddef.h>
#include <stdint.h>

typedef int (*akaylee_harness_fn)(const uint8_t *, size_t);

static inline int akaylee_call_harness(akaylee_harness_fn h, const uint8_t *data, size_t len) {
	return h(data, len);
}
*/
import "C"

import (
	"fortio.org/safecast"
	"github.com/kleascm/akaylee-boundary/pkg/boundary"
)

// akaylee_test_one_input calls harness(data, len) through the boundary.
// The original pointer and length reach the harness untouched, including len == 0 with a
// NULL data pointer. C code cannot unwind into Go, so for native harnesses this behaves
// as pass-through.
//
//export akaylee_test_one_input
func akaylee_test_one_input(harness C.akaylee_harness_fn, data *C.uint8_t, size C.size_t) C.int {
	// the C harness reads the buffer itself, so the boundary gets no Go view of it
	status := boundary.Invoke(func([]byte) int {
		return int(C.akaylee_call_harness(harness, data, size))
	}, nil)

	out, err := safecast.Conv[int32](status)
	if err != nil {
		return C.int(boundary.Sentinel)
	}
	return C.int(out)
}

// akaylee_boundary_mode returns 1 for the exception-safe build and 0 for pass-through.
//
//export akaylee_boundary_mode
func akaylee_boundary_mode() C.int {
	if boundary.ActiveMode == boundary.ModeSafe {
		return 1
	}
	return 0
}

func main() {}
