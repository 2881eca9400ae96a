//go:build !boundary_passthrough

/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: invoke_safe.go
Description: Exception-safe invocation. Any panic raised by the harness is recovered and
reported as Sentinel.
*/

package boundary

// ActiveMode is the interception strategy of this build.
const ActiveMode = ModeSafe

// Invoke calls h with data in the calling goroutine and returns its status.
// A panic of any payload, runtime errors and panic(nil) included, yields Sentinel.
// Fatal runtime errors, runtime.Goexit and os.Exit are not interceptable and pass through.
func Invoke(h Harness, data []byte) (status int) {
	defer func() {
		if recover() != nil {
			status = Sentinel
		}
	}()
	return h(data)
}
