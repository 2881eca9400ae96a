//go:build cgo

/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: harnesses.go
Description: Native harnesses for checking the exported entry point from Go. Each one is a
plain C function handed to akaylee_test_one_input by pointer, the way a C engine would.
*/

package main

/*
#include <stddef.h>
#include <stdint.h>

typedef int (*akaylee_harness_fn)(const uint8_t *, size_t);

static int akaylee_len_harness(const uint8_t *data, size_t len) { return (int)len; }
static int akaylee_first_byte_harness(const uint8_t *data, size_t len) { return len > 0 ? data[0] : -1; }
static int akaylee_zero_harness(const uint8_t *data, size_t len) { return 0; }
static int akaylee_finding_harness(const uint8_t *data, size_t len) { return 1; }
static int akaylee_negative_harness(const uint8_t *data, size_t len) { return -7; }
static int akaylee_null_check_harness(const uint8_t *data, size_t len) { return data == NULL ? 1 : 0; }

static akaylee_harness_fn akaylee_native_harness(int id) {
	switch (id) {
	case 0: return akaylee_len_harness;
	case 1: return akaylee_first_byte_harness;
	case 2: return akaylee_zero_harness;
	case 3: return akaylee_finding_harness;
	case 4: return akaylee_negative_harness;
	case 5: return akaylee_null_check_harness;
	}
	return NULL;
}
*/
import "C"

import "unsafe"

// nativeHarness selects one of the C harnesses above
type nativeHarness int

const (
	nativeLen nativeHarness = iota
	nativeFirstByte
	nativeZero
	nativeFinding
	nativeNegative
	nativeNullCheck
)

// callNative runs the exported entry point with a C harness. An empty data slice is
// passed as a NULL pointer with length 0.
func callNative(h nativeHarness, data []byte) int {
	var ptr *C.uint8_t
	if len(data) > 0 {
		ptr = (*C.uint8_t)(unsafe.Pointer(&data[0]))
	}
	return int(akaylee_test_one_input(C.akaylee_native_harness(C.int(h)), ptr, C.size_t(len(data))))
}

// exportedMode reports what akaylee_boundary_mode returns
func exportedMode() int {
	return int(akaylee_boundary_mode())
}
