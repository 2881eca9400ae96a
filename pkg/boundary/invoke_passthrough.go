//go:build boundary_passthrough

/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: invoke_passthrough.go
Description: Pass-through invocation for builds where the harness cannot unwind into Go or is
known not to panic. Nothing is intercepted.
*/

package boundary

// ActiveMode is the interception strategy of this build.
const ActiveMode = ModePassThrough

// Invoke calls h with data and returns its status unchanged.
// A panic escaping h is not converted; it unwinds to the caller as usual.
func Invoke(h Harness, data []byte) int {
	return h(data)
}
